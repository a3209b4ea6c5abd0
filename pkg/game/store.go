package game

import (
	"reflect"
	"sync"

	"github.com/catanatron/gameclient/pkg/game/types"
	"github.com/catanatron/gameclient/pkg/log"
)

// BuildingMode is the ephemeral "building X" UI mode.
type BuildingMode string

const (
	BuildingModeNone       BuildingMode = ""
	BuildingModeSettlement BuildingMode = "SETTLEMENT"
	BuildingModeCity       BuildingMode = "CITY"
	BuildingModeRoad       BuildingMode = "ROAD"
)

// Subscriber receives every snapshot the store accepts.
type Subscriber func(snapshot *types.GameSnapshot)

// Store is the process-wide container for the latest authoritative game
// snapshot plus ephemeral UI flags. Replace is the only mutator; snapshots
// are treated as immutable once published.
type Store struct {
	mu           sync.Mutex
	gameID       string
	snapshot     *types.GameSnapshot
	subscribers  map[int]Subscriber
	nextSubID    int
	drawerOpen   bool
	buildingMode BuildingMode
}

func NewStore() *Store {
	return &Store{
		subscribers: make(map[int]Subscriber),
	}
}

// SetGame switches the store to a new game identity, discarding the held
// snapshot. UI flags reset with it.
func (s *Store) SetGame(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gameID == gameID {
		return
	}
	s.gameID = gameID
	s.snapshot = nil
	s.drawerOpen = false
	s.buildingMode = BuildingModeNone
}

// GameID returns the identity of the game the store is following.
func (s *Store) GameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID
}

// Current returns the held snapshot, or nil if none has arrived yet.
func (s *Store) Current() *types.GameSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Replace offers a snapshot to the store and reports whether it was
// accepted. A snapshot older than the held one (same game) is dropped, so
// poll results and submission responses may race through here in any
// order. Equal state_index with identical content is a no-op; equal index
// with different content applies last-write-wins. A shrinking action
// history means a different game or a replay seek and is accepted
// wholesale. Accepted snapshots fan out to subscribers.
func (s *Store) Replace(snapshot *types.GameSnapshot) bool {
	if snapshot == nil {
		return false
	}

	s.mu.Lock()
	prev := s.snapshot
	if prev != nil && sameGame(prev, snapshot) && !historyReset(prev, snapshot) {
		if snapshot.StateIndex < prev.StateIndex {
			s.mu.Unlock()
			log.Debug("Dropping stale snapshot %d (holding %d)", snapshot.StateIndex, prev.StateIndex)
			return false
		}
		if snapshot.StateIndex == prev.StateIndex && reflect.DeepEqual(prev, snapshot) {
			s.mu.Unlock()
			return false
		}
	}
	if snapshot.GameID != "" && snapshot.GameID != s.gameID {
		// Same reset as SetGame: UI flags never outlive a game switch,
		// whichever path the switch arrives through.
		s.gameID = snapshot.GameID
		s.drawerOpen = false
		s.buildingMode = BuildingModeNone
	}
	s.snapshot = snapshot
	subscribers := make([]Subscriber, 0, len(s.subscribers))
	for _, subscriber := range s.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	s.mu.Unlock()

	for _, subscriber := range subscribers {
		subscriber(snapshot)
	}
	return true
}

// Subscribe registers a subscriber and returns its unsubscribe function.
// Subscribers run synchronously on the goroutine that called Replace.
func (s *Store) Subscribe(subscriber Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = subscriber
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) DrawerOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawerOpen
}

func (s *Store) SetDrawerOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawerOpen = open
}

func (s *Store) BuildingMode() BuildingMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildingMode
}

func (s *Store) SetBuildingMode(mode BuildingMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildingMode = mode
}

// NewRecords returns the action records present in next beyond the length
// of prev's history. Consumers needing deltas diff successive snapshots.
func NewRecords(prev, next *types.GameSnapshot) []types.ActionRecord {
	if next == nil {
		return nil
	}
	if prev == nil || len(prev.ActionRecords) > len(next.ActionRecords) {
		return next.ActionRecords
	}
	return next.ActionRecords[len(prev.ActionRecords):]
}

func sameGame(prev, next *types.GameSnapshot) bool {
	if prev.GameID == "" || next.GameID == "" {
		return true
	}
	return prev.GameID == next.GameID
}

// historyReset reports a shrink of the authoritative history, which only
// happens across games or replay seeks, never within a live game.
func historyReset(prev, next *types.GameSnapshot) bool {
	return len(next.ActionRecords) < len(prev.ActionRecords) && next.StateIndex < prev.StateIndex
}
