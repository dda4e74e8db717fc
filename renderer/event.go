// SPDX-License-Identifier: EPL-2.0

package renderer

import "fmt"

type EventKind uint8

const (
	InstanceFinished EventKind = iota
	SequenceFinished
	// Custom carries a payload emitted by a sequence step, or by an
	// EmitCustomEvent command with a zero ID.
	Custom
	Fault
)

func (k EventKind) String() string {
	switch k {
	case InstanceFinished:
		return "instance finished"
	case SequenceFinished:
		return "sequence finished"
	case Custom:
		return "custom"
	case Fault:
		return "fault"
	default:
		return fmt.Sprintf("EventKind(%d)", k)
	}
}

// FaultKind says what went wrong in a render fault. Faults are contained:
// the offending path goes silent and rendering carries on.
type FaultKind uint8

const (
	NoFault FaultKind = iota
	RouteCycle
	MissingTrack
	CapacityExceeded
	InvalidStep
	EffectFault
	// InvalidCommand is a command the mixer refused for a reason other than
	// its target being gone.
	InvalidCommand
)

func (k FaultKind) String() string {
	switch k {
	case NoFault:
		return "none"
	case RouteCycle:
		return "route cycle"
	case MissingTrack:
		return "missing track"
	case CapacityExceeded:
		return "capacity exceeded"
	case InvalidStep:
		return "invalid sequence step"
	case EffectFault:
		return "effect fault"
	case InvalidCommand:
		return "invalid command"
	default:
		return fmt.Sprintf("FaultKind(%d)", k)
	}
}

// Event is sent from the render goroutine to the control side. ID is the
// resource concerned: the instance, the sequence, or for faults whatever
// the fault was found on.
type Event struct {
	Kind    EventKind
	ID      Key
	Payload any
	Fault   FaultKind
}

// Overflow decides what happens when the event channel is full.
type Overflow uint8

const (
	// DropOldest discards the oldest unread events to make room.
	DropOldest Overflow = iota
	// DropNewest discards the event being sent.
	DropNewest
)

func (o Overflow) String() string {
	switch o {
	case DropOldest:
		return "drop-oldest"
	case DropNewest:
		return "drop-newest"
	default:
		return fmt.Sprintf("Overflow(%d)", o)
	}
}

// ParseOverflow reads the names returned by String.
func ParseOverflow(s string) (Overflow, error) {
	switch s {
	case "drop-oldest", "":
		return DropOldest, nil
	case "drop-newest":
		return DropNewest, nil
	default:
		return DropOldest, fmt.Errorf("%w: overflow policy %q", ErrInvalidConfig, s)
	}
}
