// SPDX-License-Identifier: EPL-2.0

package audmix

import "github.com/ik5/audmix/arena"

// Typed ids keep a sound key from being passed where a track key is
// wanted. Each converts to the arena key the lower packages use.
type (
	SoundID       arena.Key
	ArrangementID arena.Key
	InstanceID    arena.Key
	TrackID       arena.Key
	EffectID      arena.Key
	ClockID       arena.Key
	SequenceID    arena.Key
	ParameterID   arena.Key
)

func (id SoundID) Key() arena.Key       { return arena.Key(id) }
func (id ArrangementID) Key() arena.Key { return arena.Key(id) }
func (id InstanceID) Key() arena.Key    { return arena.Key(id) }
func (id TrackID) Key() arena.Key       { return arena.Key(id) }
func (id EffectID) Key() arena.Key      { return arena.Key(id) }
func (id ClockID) Key() arena.Key       { return arena.Key(id) }
func (id SequenceID) Key() arena.Key    { return arena.Key(id) }
func (id ParameterID) Key() arena.Key   { return arena.Key(id) }

func (id SoundID) String() string       { return "sound " + id.Key().String() }
func (id ArrangementID) String() string { return "arrangement " + id.Key().String() }
func (id InstanceID) String() string    { return "instance " + id.Key().String() }
func (id TrackID) String() string       { return "track " + id.Key().String() }
func (id EffectID) String() string      { return "effect " + id.Key().String() }
func (id ClockID) String() string       { return "clock " + id.Key().String() }
func (id SequenceID) String() string    { return "sequence " + id.Key().String() }
func (id ParameterID) String() string   { return "parameter " + id.Key().String() }

// Playable is anything Play starts an instance of: a SoundID or an
// ArrangementID.
type Playable interface {
	Key() arena.Key
	String() string
	playable()
}

func (SoundID) playable()       {}
func (ArrangementID) playable() {}
