// SPDX-License-Identifier: EPL-2.0

package command

import (
	"errors"

	"github.com/ik5/audmix/queue"
)

var ErrQueueFull = errors.New("command queue is full")

// Queue carries commands from any number of producers to the renderer.
type Queue struct {
	ring *queue.Ring[Command]
}

func NewQueue(capacity int) *Queue {
	return &Queue{ring: queue.New[Command](capacity)}
}

// Producer returns a handle for sending. Handles are cheap to copy and
// safe to use from any goroutine.
func (q *Queue) Producer() Producer { return Producer{ring: q.ring} }

func (q *Queue) Cap() int { return q.ring.Cap() }

// Len is approximate while producers are active.
func (q *Queue) Len() int { return q.ring.Len() }

// Drain passes queued commands to fn in claim order and returns how many
// were applied. At most Cap commands are applied per call; the rest wait
// for the next one.
func (q *Queue) Drain(fn func(Command)) int {
	n := 0
	for n < q.ring.Cap() {
		c, ok := q.ring.TryPop()
		if !ok {
			return n
		}
		fn(c)
		n++
	}
	return n
}

// Producer sends commands without blocking.
type Producer struct {
	ring *queue.Ring[Command]
}

// Send enqueues c or returns ErrQueueFull. It never blocks.
func (p Producer) Send(c Command) error {
	if !p.ring.TryPush(c) {
		return ErrQueueFull
	}
	return nil
}
