// Package bot drives the turn loop forward while the authoritative actor
// is not human-controlled, pacing primary moves so a watching human can
// follow, and stopping the moment a human is to act, the game ends, or the
// session is torn down.
package bot

import (
	"context"
	"sync"
	"time"

	"github.com/catanatron/gameclient/pkg/game"
	"github.com/catanatron/gameclient/pkg/game/types"
	"github.com/catanatron/gameclient/pkg/log"
)

// DefaultPacingDelay is the human-perceptible wait before an automated
// primary move.
const DefaultPacingDelay = 600 * time.Millisecond

// Advancer submits the "advance" request: no explicit action payload, the
// server decides the automated move.
type Advancer interface {
	Submit(ctx context.Context, gameID string, action *types.Action) (*types.GameSnapshot, error)
}

// Runner owns one drive session per game. At most one drive loop is in
// flight per session; snapshot arrivals during a pass latch a recheck that
// is consumed when the pass finishes. inFlight and recheck belong to the
// current session and reset on teardown, so a pass still draining from a
// previous session never blocks or consumes the new one.
type Runner struct {
	advancer    Advancer
	store       *game.Store
	pacingDelay time.Duration

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	gameID      string
	inFlight    bool
	recheck     bool
	unsubscribe func()
}

type NewRunnerOptions struct {
	Advancer Advancer
	Store    *game.Store
	// PacingDelay overrides DefaultPacingDelay when positive.
	PacingDelay time.Duration
}

func NewRunner(opts NewRunnerOptions) *Runner {
	pacingDelay := opts.PacingDelay
	if pacingDelay <= 0 {
		pacingDelay = DefaultPacingDelay
	}
	return &Runner{
		advancer:    opts.Advancer,
		store:       opts.Store,
		pacingDelay: pacingDelay,
	}
}

// Start binds the runner to a game, subscribes to store updates and
// evaluates once immediately. Starting while already started switches
// sessions: the previous session's waits and continuations become no-ops.
func (r *Runner) Start(gameID string) {
	r.mu.Lock()
	r.teardown()
	ctx, cancel := context.WithCancel(context.Background())
	r.ctx = ctx
	r.cancel = cancel
	r.gameID = gameID
	r.unsubscribe = r.store.Subscribe(func(*types.GameSnapshot) {
		r.Kick()
	})
	r.mu.Unlock()

	r.Kick()
}

// Stop cancels the session. Any in-flight wait or pending continuation
// never fires a submission afterward.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardown()
}

func (r *Runner) teardown() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	r.gameID = ""
	r.inFlight = false
	r.recheck = false
}

// Kick re-evaluates whether the runner should be driving. Called on every
// accepted snapshot; a kick during a running pass only latches a recheck.
func (r *Runner) Kick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx := r.ctx
	gameID := r.gameID
	if ctx == nil || ctx.Err() != nil {
		return
	}
	if r.inFlight {
		r.recheck = true
		return
	}
	snapshot := r.store.Current()
	if !ShouldDrive(snapshot) {
		return
	}
	r.inFlight = true
	go r.drive(ctx, gameID)
}

// InFlight reports whether a drive pass is running.
func (r *Runner) InFlight() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight
}

func (r *Runner) drive(ctx context.Context, gameID string) {
	for {
		r.drivePass(ctx, gameID)

		r.mu.Lock()
		if r.recheck && ctx.Err() == nil {
			r.recheck = false
			r.mu.Unlock()
			continue
		}
		if r.ctx == ctx {
			r.inFlight = false
		}
		stale := r.ctx != ctx
		r.mu.Unlock()
		if stale {
			// A newer session may have had its kick swallowed while this
			// pass was still draining.
			r.Kick()
		}
		return
	}
}

// drivePass submits automated advances until the actor becomes human, the
// game ends, a submission fails, or the session is cancelled.
func (r *Runner) drivePass(ctx context.Context, gameID string) {
	for {
		if ctx.Err() != nil {
			return
		}
		snapshot := r.store.Current()
		if !ShouldDrive(snapshot) {
			return
		}
		if NeedsPacing(snapshot) {
			select {
			case <-time.After(r.pacingDelay):
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		if _, err := r.advancer.Submit(ctx, gameID, nil); err != nil {
			// Loop-fatal, not session-fatal: the next snapshot change
			// rechecks naturally.
			log.Warn("Bot advance failed for game %s: %v", gameID, err)
			return
		}
	}
}

// ShouldDrive reports whether the authoritative actor is non-human: the
// seat to move is a bot, or a trade decision has automated acceptees that
// have not responded yet.
func ShouldDrive(snapshot *types.GameSnapshot) bool {
	if snapshot == nil || snapshot.Ended() {
		return false
	}
	if snapshot.IsBot(snapshot.CurrentColor) {
		return true
	}
	if snapshot.CurrentPrompt == types.PromptDecideTrade && snapshot.Trade != nil {
		for _, acceptee := range snapshot.Trade.Acceptees {
			if !acceptee.Responded && snapshot.IsBot(acceptee.Color) {
				return true
			}
		}
	}
	return false
}

// NeedsPacing reports whether the upcoming automated submission is a
// primary human-paced move: ordinary turn play or a robber move, outside
// the initial placement phase, with at least one human seated. Forced
// rolls, discards and trade responses fire immediately.
func NeedsPacing(snapshot *types.GameSnapshot) bool {
	if snapshot == nil || !snapshot.HasHumanPlayer || snapshot.IsInitialBuildPhase {
		return false
	}
	switch snapshot.CurrentPrompt {
	case types.PromptPlayTurn, types.PromptMoveRobber:
		return true
	default:
		return false
	}
}
