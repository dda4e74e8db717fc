// SPDX-License-Identifier: EPL-2.0

package arena

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_InsertGetRemove(t *testing.T) {
	t.Parallel()

	a := New[string](NewController(4))

	key, err := a.Controller().Reserve()
	require.NoError(t, err)
	require.NoError(t, a.Insert(key, "kick"))

	v, ok := a.Get(key)
	require.True(t, ok)
	assert.Equal(t, "kick", *v)
	assert.Equal(t, 1, a.Len())

	removed, ok := a.Remove(key)
	assert.True(t, ok)
	assert.Equal(t, "kick", removed)

	_, ok = a.Get(key)
	assert.False(t, ok, "removed key must not resolve")

	_, ok = a.Remove(key)
	assert.False(t, ok, "second remove must report absence")
}

func TestArena_CapacityExceeded(t *testing.T) {
	t.Parallel()

	ctrl := NewController(2)

	_, err := ctrl.Reserve()
	require.NoError(t, err)
	_, err = ctrl.Reserve()
	require.NoError(t, err)

	_, err = ctrl.Reserve()
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 2, ctrl.Live())
}

func TestArena_StaleKeyNeverAliases(t *testing.T) {
	t.Parallel()

	a := New[int](NewController(1))

	old, err := a.Controller().Reserve()
	require.NoError(t, err)
	require.NoError(t, a.Insert(old, 1))
	_, ok := a.Remove(old)
	require.True(t, ok)

	fresh, err := a.Controller().Reserve()
	require.NoError(t, err)
	require.NoError(t, a.Insert(fresh, 2))

	assert.Equal(t, old.Index, fresh.Index, "single slot must be reused")
	assert.NotEqual(t, old.Generation, fresh.Generation)

	_, ok = a.Get(old)
	assert.False(t, ok)

	err = a.Insert(old, 3)
	assert.ErrorIs(t, err, ErrStaleKey)
}

func TestArena_ZeroKeyIsNeverLive(t *testing.T) {
	t.Parallel()

	a := New[int](NewController(2))
	key, err := a.Controller().Reserve()
	require.NoError(t, err)
	require.NoError(t, a.Insert(key, 7))

	assert.False(t, key.IsZero())
	_, ok := a.Get(Key{})
	assert.False(t, ok)
}

func TestArena_ReleaseUninserted(t *testing.T) {
	t.Parallel()

	ctrl := NewController(1)
	key, err := ctrl.Reserve()
	require.NoError(t, err)

	ctrl.Release(key)
	assert.Equal(t, 0, ctrl.Live())

	again, err := ctrl.Reserve()
	require.NoError(t, err)
	assert.NotEqual(t, key, again)

	// releasing a stale key is a no-op
	ctrl.Release(key)
	assert.Equal(t, 1, ctrl.Live())
}

func TestArena_InsertionOrderIteration(t *testing.T) {
	t.Parallel()

	a := New[int](NewController(8))
	keys := make([]Key, 0, 5)
	for i := range 5 {
		k, err := a.Controller().Reserve()
		require.NoError(t, err)
		require.NoError(t, a.Insert(k, i))
		keys = append(keys, k)
	}

	_, ok := a.Remove(keys[2])
	require.True(t, ok)

	var got []int
	a.Each(func(_ Key, v *int) bool {
		got = append(got, *v)
		return true
	})
	assert.Equal(t, []int{0, 1, 3, 4}, got)
}

func TestArena_EachAllowsRemovingVisitedKey(t *testing.T) {
	t.Parallel()

	a := New[int](NewController(8))
	for i := range 6 {
		k, err := a.Controller().Reserve()
		require.NoError(t, err)
		require.NoError(t, a.Insert(k, i))
	}

	a.Each(func(k Key, v *int) bool {
		if *v%2 == 0 {
			a.Remove(k)
		}
		return true
	})

	assert.Equal(t, 3, a.Len())
	a.Each(func(_ Key, v *int) bool {
		assert.Equal(t, 1, *v%2)
		return true
	})
}

// TestArena_RandomOperationsKeepKeysUnique runs a random allocate/remove
// workload and checks that no two live keys are ever equal and that no
// removed key resolves again.
func TestArena_RandomOperationsKeepKeysUnique(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	a := New[int](NewController(16))
	live := map[Key]bool{}
	var dead []Key

	for i := range 5000 {
		if rng.Intn(2) == 0 && len(live) < a.Capacity() {
			k, err := a.Controller().Reserve()
			require.NoError(t, err)
			require.False(t, live[k], "duplicate live key %v", k)
			require.NoError(t, a.Insert(k, i))
			live[k] = true
			continue
		}

		for k := range live {
			_, ok := a.Remove(k)
			require.True(t, ok)
			delete(live, k)
			dead = append(dead, k)
			break
		}
	}

	for _, k := range dead {
		if live[k] {
			t.Fatalf("removed key %v reissued", k)
		}
		if _, ok := a.Get(k); ok {
			t.Fatalf("removed key %v still resolves", k)
		}
	}
	assert.Equal(t, len(live), a.Len())
}

func TestController_ConcurrentReserve(t *testing.T) {
	t.Parallel()

	const capacity = 256
	ctrl := NewController(capacity)

	var (
		mu   sync.Mutex
		seen = map[Key]bool{}
		wg   sync.WaitGroup
	)

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				k, err := ctrl.Reserve()
				if err != nil {
					return
				}
				mu.Lock()
				if seen[k] {
					t.Errorf("key %v handed out twice", k)
				}
				seen[k] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, capacity)
}

func BenchmarkArena_ReserveInsertRemove(b *testing.B) {
	a := New[int](NewController(1024))

	b.ReportAllocs()
	b.ResetTimer()

	for i := range b.N {
		k, err := a.Controller().Reserve()
		if err != nil {
			b.Fatal(err)
		}
		if err := a.Insert(k, i); err != nil {
			b.Fatal(err)
		}
		a.Remove(k)
	}
}

func TestArena_ReserveInsertRemoveDoNotAllocate(t *testing.T) {
	a := New[int](NewController(8))

	allocs := testing.AllocsPerRun(100, func() {
		key, err := a.Controller().Reserve()
		if err != nil {
			panic(err)
		}
		if err := a.Insert(key, 1); err != nil {
			panic(err)
		}
		a.Each(func(Key, *int) bool { return true })
		a.Remove(key)
	})
	assert.Zero(t, allocs)
	assert.Zero(t, a.Len())
}
