// SPDX-License-Identifier: EPL-2.0

// Package sequence scripts playback against a clock. A Sequence is a list
// of steps, each an action at a tick; a Runner walks it on the render side
// as the clock advances and hands the due actions to the renderer.
package sequence

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/instance"
	"github.com/ik5/audmix/tween"
)

var (
	ErrInvalidLoop    = errors.New("loop start must lie before the sequence length")
	ErrStepOutOfLoop  = errors.New("step lies past the end of a looping sequence")
	ErrInvalidActions = errors.New("actions per block must be positive")
)

type ActionKind uint8

const (
	PlaySound ActionKind = iota
	PauseInstances
	ResumeInstances
	StopInstances
	EmitEvent
)

func (k ActionKind) String() string {
	switch k {
	case PlaySound:
		return "play"
	case PauseInstances:
		return "pause"
	case ResumeInstances:
		return "resume"
	case StopInstances:
		return "stop"
	case EmitEvent:
		return "emit"
	default:
		return fmt.Sprintf("ActionKind(%d)", k)
	}
}

// Action is what a step does. The instance actions apply to every
// instance the sequence has started.
type Action struct {
	Kind     ActionKind
	Sound    arena.Key
	Settings instance.Settings
	Fade     tween.Tween
	Payload  any
}

func Play(sound arena.Key, s instance.Settings) Action {
	return Action{Kind: PlaySound, Sound: sound, Settings: s}
}

func Pause(fade tween.Tween) Action  { return Action{Kind: PauseInstances, Fade: fade} }
func Resume(fade tween.Tween) Action { return Action{Kind: ResumeInstances, Fade: fade} }
func Stop(fade tween.Tween) Action   { return Action{Kind: StopInstances, Fade: fade} }

// Emit sends payload to the control side as a custom event.
func Emit(payload any) Action { return Action{Kind: EmitEvent, Payload: payload} }

type Step struct {
	At     uint64
	Action Action
}

// Sequence is built on the control side. With Loop set, playback jumps
// back to LoopStart on reaching Length, forever.
type Sequence struct {
	Steps     []Step
	Loop      bool
	LoopStart uint64
	Length    uint64
}

// Add appends a step at tick at.
func (s *Sequence) Add(at uint64, a Action) *Sequence {
	s.Steps = append(s.Steps, Step{At: at, Action: a})
	return s
}

// Validate checks the loop bounds.
func (s *Sequence) Validate() error {
	if !s.Loop {
		return nil
	}
	if s.LoopStart >= s.Length {
		return fmt.Errorf("%w: start %d, length %d", ErrInvalidLoop, s.LoopStart, s.Length)
	}
	for _, st := range s.Steps {
		if st.At >= s.Length {
			return fmt.Errorf("%w: tick %d, length %d", ErrStepOutOfLoop, st.At, s.Length)
		}
	}
	return nil
}

// sorted returns a copy of the steps in tick order. Steps on the same tick
// keep the order they were added in.
func (s *Sequence) sorted() []Step {
	steps := slices.Clone(s.Steps)
	slices.SortStableFunc(steps, func(a, b Step) int { return cmp.Compare(a.At, b.At) })
	return steps
}
