// Package poll keeps the store synchronized with an externally-owned game
// that can change versions out from under the client (PvP). Snapshots are
// fetched on a fixed interval and offered through the store's single entry
// point, so the monotonic state_index guard holds regardless of whether an
// update came from polling or a local submission.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/catanatron/gameclient/pkg/api"
	"github.com/catanatron/gameclient/pkg/game"
	"github.com/catanatron/gameclient/pkg/game/types"
	"github.com/catanatron/gameclient/pkg/log"
)

const DefaultInterval = 2 * time.Second

// Fetcher fetches one game state. api.RoomSession satisfies this directly;
// GameFetcher adapts the plain client.
type Fetcher interface {
	GetState(ctx context.Context, stateIndex int) (*types.GameSnapshot, error)
}

// GameFetcher binds a plain API client to one game id.
type GameFetcher struct {
	Client *api.Client
	GameID string
}

func (f *GameFetcher) GetState(ctx context.Context, stateIndex int) (*types.GameSnapshot, error) {
	return f.Client.GetState(ctx, f.GameID, stateIndex)
}

// Poller runs the fixed-interval fetch loop.
type Poller struct {
	fetcher  Fetcher
	store    *game.Store
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type NewPollerOptions struct {
	Fetcher  Fetcher
	Store    *game.Store
	Interval time.Duration
}

func NewPoller(opts NewPollerOptions) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:  opts.Fetcher,
		store:    opts.Store,
		interval: interval,
	}
}

// Start begins polling. Starting an already-started poller restarts it.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop cancels the poll loop and waits for it to exit, so no stale fetch
// mutates the store after teardown.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
	<-p.done
	p.done = nil
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	snapshot, err := p.fetcher.GetState(ctx, api.StateLatest)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn("Poll fetch failed: %v", err)
		return
	}
	if ctx.Err() != nil {
		// Torn down while the fetch was in flight; never mutate the store
		// of a session the user has left.
		return
	}
	p.store.Replace(snapshot)
}
