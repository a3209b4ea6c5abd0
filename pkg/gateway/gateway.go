// Package gateway serializes action submissions against the authoritative
// service and normalizes the outcome into store updates and transient
// notifications.
package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/catanatron/gameclient/pkg/game"
	"github.com/catanatron/gameclient/pkg/game/types"
	"github.com/catanatron/gameclient/pkg/log"
	"github.com/catanatron/gameclient/pkg/notifications"
)

// Submitter performs the single network round trip of a submission. A nil
// action means "let the server decide" (bot advancement).
type Submitter interface {
	PostAction(ctx context.Context, gameID string, action *types.Action) (*types.GameSnapshot, error)
}

// Gateway submits one action at a time. Submissions are never pipelined:
// a second Submit blocks until the prior response (success or failure) has
// been observed. On success the store's snapshot is replaced and the newest
// action record is described as a transient notification. On failure the
// snapshot is left untouched and the error goes back to the caller; no
// automatic retry.
type Gateway struct {
	submitter     Submitter
	store         *game.Store
	notifications *notifications.Queue

	submitMu sync.Mutex

	mu      sync.Mutex
	pending bool
}

type NewGatewayOptions struct {
	Submitter     Submitter
	Store         *game.Store
	Notifications *notifications.Queue
}

func NewGateway(opts NewGatewayOptions) *Gateway {
	return &Gateway{
		submitter:     opts.Submitter,
		store:         opts.Store,
		notifications: opts.Notifications,
	}
}

// Pending reports whether a submission round trip is in flight. The UI
// disables action controls while this holds.
func (g *Gateway) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

func (g *Gateway) setPending(pending bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = pending
}

// Submit performs exactly one submission round trip.
func (g *Gateway) Submit(ctx context.Context, gameID string, action *types.Action) (*types.GameSnapshot, error) {
	g.submitMu.Lock()
	defer g.submitMu.Unlock()

	g.setPending(true)
	defer g.setPending(false)

	prev := g.store.Current()
	snapshot, err := g.submitter.PostAction(ctx, gameID, action)
	if err != nil {
		log.Warn("Action submission failed: %v", err)
		if g.notifications != nil {
			g.notifications.Error(fmt.Sprintf("action failed: %v", err))
		}
		return nil, fmt.Errorf("failed to submit action: %w", err)
	}

	applied := g.store.Replace(snapshot)
	if applied && g.notifications != nil {
		newRecords := game.NewRecords(prev, snapshot)
		if len(newRecords) > 0 {
			g.notifications.Info(DescribeRecord(newRecords[len(newRecords)-1]))
		}
	}
	return snapshot, nil
}
