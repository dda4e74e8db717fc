// SPDX-License-Identifier: EPL-2.0

package tween

import (
	"math"
	"testing"
	"time"

	"github.com/ik5/audmix/arena"
	"github.com/stretchr/testify/assert"
)

type fakeParams map[arena.Key]float64

func (f fakeParams) ParameterValue(id arena.Key) (float64, bool) {
	v, ok := f[id]
	return v, ok
}

func TestTween_Endpoints(t *testing.T) {
	t.Parallel()

	easings := []Easing{
		{Kind: Linear},
		{Kind: InPowi, Power: 3},
		{Kind: OutPowi, Power: 2},
		{Kind: InOutPowi, Power: 4},
		{Kind: InPowf, Power: 1.5},
		{Kind: OutPowf, Power: 0.5},
		{Kind: InOutPowf, Power: 2.5},
	}

	for _, e := range easings {
		t.Run(e.Kind.String(), func(t *testing.T) {
			t.Parallel()

			tw := Tween{Duration: 2 * time.Second, Easing: e}
			assert.Equal(t, 0.25, tw.Value(0.25, 0.75, 0))
			assert.Equal(t, 0.75, tw.Value(0.25, 0.75, 2))
			assert.Equal(t, 0.75, tw.Value(0.25, 0.75, 10))
			assert.Equal(t, 0.25, tw.Value(0.25, 0.75, -1), "negative elapsed clamps to start")
		})
	}
}

func TestTween_LinearMidpoint(t *testing.T) {
	t.Parallel()

	tw := LinearOver(time.Second)
	assert.InDelta(t, 5.0, tw.Value(0, 10, 0.5), 1e-9)
	assert.InDelta(t, 2.5, tw.Value(0, 10, 0.25), 1e-9)
}

func TestTween_ZeroDurationIsInstant(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3.0, Tween{}.Value(1, 3, 0))
}

func TestEasing_Monotonic(t *testing.T) {
	t.Parallel()

	for _, e := range []Easing{{Kind: InPowi, Power: 2}, {Kind: OutPowf, Power: 3}, {Kind: InOutPowi, Power: 3}} {
		prev := -1.0
		for i := 0; i <= 100; i++ {
			y := e.Apply(float64(i) / 100)
			if y < prev {
				t.Fatalf("%v not monotonic at %d: %v < %v", e.Kind, i, y, prev)
			}
			prev = y
		}
	}
}

func TestTweenable_ReachesTargetAndRetires(t *testing.T) {
	t.Parallel()

	v := NewTweenable(Fixed(1))
	v.Set(Fixed(0), LinearOver(100*time.Millisecond))
	assert.True(t, v.Transitioning())

	for range 9 {
		v.Update(0.01, nil)
	}
	assert.True(t, v.Transitioning())
	assert.InDelta(t, 0.1, v.Value(), 1e-9)

	assert.Equal(t, 0.0, v.Update(0.01, nil))
	assert.False(t, v.Transitioning())
}

// TestTweenable_RetargetIsContinuous checks that retargeting mid-tween
// moves no further than one step at the rate already in effect.
func TestTweenable_RetargetIsContinuous(t *testing.T) {
	t.Parallel()

	const dt = 0.01

	v := NewTweenable(Fixed(0))
	v.Set(Fixed(1), LinearOver(time.Second))

	prev := 0.0
	for range 40 {
		prev = v.Value()
		v.Update(dt, nil)
	}
	rate := v.Value() - prev
	atRetarget := v.Value()

	v.Set(Fixed(-1), LinearOver(time.Second))
	assert.Equal(t, atRetarget, v.Value(), "retarget must not move the value")

	v.Update(dt, nil)
	jump := math.Abs(v.Value() - atRetarget)
	assert.LessOrEqual(t, jump, 2*rate+1e-9)
}

func TestValue_ResolveParameter(t *testing.T) {
	t.Parallel()

	id := arena.Key{Index: 3, Generation: 1}
	params := fakeParams{id: 0.5}

	assert.Equal(t, 0.5, FromParameter(id).Resolve(params, 9))

	mapped := FromParameterMapped(id, Mapping{Input: [2]float64{0, 1}, Output: [2]float64{100, 200}})
	assert.InDelta(t, 150.0, mapped.Resolve(params, 0), 1e-9)

	missing := FromParameter(arena.Key{Index: 4, Generation: 1})
	assert.Equal(t, 9.0, missing.Resolve(params, 9), "missing parameter keeps the fallback")

	assert.Equal(t, 2.0, Fixed(2).Resolve(nil, 0))
	assert.InDelta(t, 0.5012, Decibels(-6).Resolve(nil, 0), 1e-4)
	assert.Zero(t, Decibels(-90).Resolve(nil, 1))
}

func TestMapping_Clamp(t *testing.T) {
	t.Parallel()

	m := Mapping{Input: [2]float64{0, 1}, Output: [2]float64{1, 0}, ClampBottom: true, ClampTop: true}
	assert.Equal(t, 0.0, m.Map(5))
	assert.Equal(t, 1.0, m.Map(-5))
	assert.InDelta(t, 0.75, m.Map(0.25), 1e-9)
}

func TestTweenable_FollowsParameter(t *testing.T) {
	t.Parallel()

	id := arena.Key{Index: 1, Generation: 1}
	params := fakeParams{id: 0.2}

	v := NewTweenable(FromParameter(id))
	assert.Equal(t, 0.2, v.Update(0.01, params))

	params[id] = 0.4
	assert.Equal(t, 0.4, v.Update(0.01, params))
}
