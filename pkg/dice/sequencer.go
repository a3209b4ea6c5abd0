// Package dice sequences the presentation of dice rolls: a fresh roll is
// animated in an overlay before it becomes the persistently displayed roll,
// while stale rolls (loading a game in progress, catching up after being
// away) settle immediately.
package dice

import (
	"sync"

	"github.com/catanatron/gameclient/pkg/game/types"
)

type State int

const (
	// StateIdle: no unconsumed roll.
	StateIdle State = iota
	// StateRevealing: an overlay animation is showing an unrevealed roll.
	StateRevealing
	// StateSettled: the most recent roll is in the persistent display.
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRevealing:
		return "Revealing"
	case StateSettled:
		return "Settled"
	}
	return "Unknown"
}

// Sequencer tracks which roll is settled, which is mid-reveal, and which
// arrived during a reveal. Roll identity includes the history index, so an
// identical pair rolled twice in a row is still two reveal events.
type Sequencer struct {
	mu        sync.Mutex
	state     State
	revealing types.RollRecord
	settled   types.RollRecord
	pending   *pendingRoll
}

type pendingRoll struct {
	roll  types.RollRecord
	fresh bool
}

func NewSequencer() *Sequencer {
	return &Sequencer{state: StateIdle}
}

// Observe feeds a snapshot into the sequencer. A nil snapshot (session
// reset) forces back to Idle. A reveal in flight is never preempted: rolls
// arriving mid-reveal are held and picked up on the next settle.
func (s *Sequencer) Observe(snapshot *types.GameSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot == nil {
		s.state = StateIdle
		s.pending = nil
		return
	}

	roll, ok := snapshot.LatestRoll()
	if !ok {
		s.state = StateIdle
		s.pending = nil
		return
	}

	identity := roll.Identity()
	switch s.state {
	case StateRevealing:
		if identity == s.revealing.Identity() {
			return
		}
		s.pending = &pendingRoll{roll: roll, fresh: isFresh(roll, snapshot)}
	case StateSettled:
		if identity == s.settled.Identity() {
			return
		}
		s.begin(roll, isFresh(roll, snapshot))
	case StateIdle:
		s.begin(roll, isFresh(roll, snapshot))
	}
}

// RevealComplete is the presentation layer's signal that the overlay
// animation finished. The revealing roll settles, and any roll that arrived
// mid-reveal is handled as a new arrival.
func (s *Sequencer) RevealComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRevealing {
		return
	}
	s.settled = s.revealing
	s.state = StateSettled
	if s.pending != nil {
		next := *s.pending
		s.pending = nil
		if next.roll.Identity() != s.settled.Identity() {
			s.begin(next.roll, next.fresh)
		}
	}
}

// State returns the current presentation state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Settled returns the roll in the persistent display.
func (s *Sequencer) Settled() (types.RollRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settled, s.state == StateSettled
}

// Revealing returns the roll currently animating.
func (s *Sequencer) Revealing() (types.RollRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealing, s.state == StateRevealing
}

func (s *Sequencer) begin(roll types.RollRecord, fresh bool) {
	if fresh {
		s.revealing = roll
		s.state = StateRevealing
		return
	}
	s.settled = roll
	s.state = StateSettled
}

// A roll is fresh when the roller is still the actor to move, i.e. it is
// happening "now" from the viewer's perspective.
func isFresh(roll types.RollRecord, snapshot *types.GameSnapshot) bool {
	return roll.Color == snapshot.CurrentColor
}
