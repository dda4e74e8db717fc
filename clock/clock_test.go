// SPDX-License-Identifier: EPL-2.0

package clock

import (
	"testing"
	"time"

	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/tween"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_StartReportsTickZero(t *testing.T) {
	t.Parallel()

	c := New(Settings{Speed: tween.Fixed(10)})
	_, fired := c.Update(0.01, nil)
	assert.False(t, fired, "a stopped clock does not tick")
	assert.False(t, c.Reached(0))

	c.Start()
	span, fired := c.Update(0.01, nil)
	require.True(t, fired)
	assert.Equal(t, Span{First: 0, Last: 0}, span)
	assert.True(t, c.Reached(0))
	assert.False(t, c.Reached(1))
	assert.InDelta(t, 0.1, c.Fraction(), 1e-9)
}

func TestClock_CrossesTicks(t *testing.T) {
	t.Parallel()

	c := New(Settings{Speed: tween.Fixed(4)})
	c.Start()
	c.Update(0, nil)

	tests := []struct {
		dt    float64
		fired bool
		span  Span
	}{
		{0.125, false, Span{}},
		{0.125, true, Span{First: 1, Last: 1}},
		{0.75, true, Span{First: 2, Last: 4}},
		{0.1, false, Span{}},
	}

	for i, tt := range tests {
		span, fired := c.Update(tt.dt, nil)
		assert.Equal(t, tt.fired, fired, "step %d", i)
		if tt.fired {
			assert.Equal(t, tt.span, span, "step %d", i)
		}
	}
	assert.Equal(t, uint64(4), c.Ticks())
}

func TestClock_PauseAndStop(t *testing.T) {
	t.Parallel()

	c := New(Settings{Speed: tween.Fixed(1)})
	c.Start()
	c.Update(2.5, nil)
	assert.Equal(t, uint64(2), c.Ticks())

	c.Pause()
	assert.Equal(t, Paused, c.State())
	_, fired := c.Update(10, nil)
	assert.False(t, fired)
	assert.Equal(t, uint64(2), c.Ticks(), "paused clocks keep their position")

	c.Start()
	span, fired := c.Update(0.5, nil)
	assert.True(t, fired, "resuming does not report tick 0 again")
	assert.Equal(t, Span{First: 3, Last: 3}, span)

	c.Stop()
	assert.Equal(t, Stopped, c.State())
	assert.Equal(t, uint64(0), c.Ticks())
	assert.Zero(t, c.Fraction())
	assert.False(t, c.Reached(0))
}

func TestClock_SpeedTween(t *testing.T) {
	t.Parallel()

	c := New(Settings{Speed: tween.Fixed(0)})
	c.Start()
	c.SetSpeed(tween.Fixed(10), tween.LinearOver(time.Second))

	for range 10 {
		c.Update(0.1, nil)
	}
	assert.InDelta(t, 10, c.Speed(), 1e-9)
	// the speed ramps 1..10 over the updates: 5.5 ticks in total
	assert.InDelta(t, 5.5, c.Time(), 1e-6)
}

func TestClock_NegativeSpeed(t *testing.T) {
	t.Parallel()

	c := New(Settings{Speed: tween.Fixed(-3)})
	c.Start()
	c.Update(1, nil)
	assert.Zero(t, c.Time())
}

func TestSet(t *testing.T) {
	t.Parallel()

	s := NewSet(arena.NewController(2))
	id, err := s.Controller().Reserve()
	require.NoError(t, err)
	require.NoError(t, s.Add(id, New(Settings{Speed: TicksPerMinute(120)})))

	c, ok := s.Get(id)
	require.True(t, ok)
	c.Start()

	s.Update(1, nil)
	reached, exists := s.Reached(id, 2)
	assert.True(t, exists)
	assert.True(t, reached)

	require.True(t, s.Remove(id))
	_, exists = s.Reached(id, 0)
	assert.False(t, exists)
	assert.Equal(t, 0, s.Len())
}
