package gateway

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catanatron/gameclient/pkg/game"
	"github.com/catanatron/gameclient/pkg/game/types"
	"github.com/catanatron/gameclient/pkg/notifications"
)

type fakeSubmitter struct {
	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
	response    *types.GameSnapshot
	err         error
	delay       time.Duration
}

func (f *fakeSubmitter) PostAction(ctx context.Context, gameID string, action *types.Action) (*types.GameSnapshot, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	response := f.response
	err := f.err
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return response, err
}

func snapshotWith(stateIndex int, records ...types.ActionRecord) *types.GameSnapshot {
	return &types.GameSnapshot{
		GameID:        "game-1",
		StateIndex:    stateIndex,
		CurrentColor:  types.ColorRed,
		CurrentPrompt: types.PromptPlayTurn,
		Colors:        []types.Color{types.ColorRed, types.ColorBlue},
		ActionRecords: records,
	}
}

func rollRecord(color types.Color, die1, die2 int) types.ActionRecord {
	action := types.NewAction(color, types.ActionTypeRoll, []int{die1, die2})
	return types.ActionRecord{Request: action, Outcome: action}
}

func TestGateway_SubmitSuccess(t *testing.T) {
	store := game.NewStore()
	queue := notifications.NewQueue(0)
	require.True(t, store.Replace(snapshotWith(1)))

	response := snapshotWith(2, rollRecord(types.ColorRed, 3, 4))
	submitter := &fakeSubmitter{response: response}
	gw := NewGateway(NewGatewayOptions{Submitter: submitter, Store: store, Notifications: queue})

	snapshot, err := gw.Submit(context.Background(), "game-1", nil)
	require.NoError(t, err)
	assert.Equal(t, response, snapshot)
	assert.Equal(t, 2, store.Current().StateIndex)

	drained := queue.Drain()
	require.Len(t, drained, 1)
	assert.Equal(t, "RED rolled 3 + 4", drained[0].Text)
	assert.Equal(t, notifications.SeverityInfo, drained[0].Severity)
	assert.False(t, gw.Pending())
}

func TestGateway_SubmitFailureLeavesStoreUntouched(t *testing.T) {
	store := game.NewStore()
	queue := notifications.NewQueue(0)
	held := snapshotWith(5)
	require.True(t, store.Replace(held))

	submitter := &fakeSubmitter{err: assert.AnError}
	gw := NewGateway(NewGatewayOptions{Submitter: submitter, Store: store, Notifications: queue})

	snapshot, err := gw.Submit(context.Background(), "game-1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, snapshot)
	assert.Same(t, held, store.Current())

	drained := queue.Drain()
	require.Len(t, drained, 1)
	assert.Equal(t, notifications.SeverityError, drained[0].Severity)
}

func TestGateway_SubmitStaleResponseNotDescribed(t *testing.T) {
	store := game.NewStore()
	queue := notifications.NewQueue(0)
	require.True(t, store.Replace(snapshotWith(5)))

	// A response that lost the race against a poll is dropped quietly.
	submitter := &fakeSubmitter{response: snapshotWith(3, rollRecord(types.ColorRed, 1, 2))}
	gw := NewGateway(NewGatewayOptions{Submitter: submitter, Store: store, Notifications: queue})

	_, err := gw.Submit(context.Background(), "game-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, store.Current().StateIndex)
	assert.Zero(t, queue.Size())
}

func TestGateway_SubmissionsNeverPipelined(t *testing.T) {
	store := game.NewStore()
	require.True(t, store.Replace(snapshotWith(1)))

	submitter := &fakeSubmitter{response: snapshotWith(2), delay: 30 * time.Millisecond}
	gw := NewGateway(NewGatewayOptions{Submitter: submitter, Store: store})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gw.Submit(context.Background(), "game-1", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	submitter.mu.Lock()
	defer submitter.mu.Unlock()
	assert.Equal(t, 4, submitter.calls)
	assert.Equal(t, 1, submitter.maxInFlight)
}

func TestDescribeRecord(t *testing.T) {
	plain := func(color types.Color, actionType types.ActionType) types.ActionRecord {
		action := types.NewAction(color, actionType, nil)
		return types.ActionRecord{Request: action, Outcome: action}
	}
	offer := types.NewAction(types.ColorBlue, types.ActionTypeOfferTrade,
		[]int{2, 0, 0, 0, 0, 0, 0, 0, 0, 1})

	tests := []struct {
		name   string
		record types.ActionRecord
		want   string
	}{
		{name: "roll", record: rollRecord(types.ColorRed, 3, 4), want: "RED rolled 3 + 4"},
		{name: "end turn", record: plain(types.ColorRed, types.ActionTypeEndTurn), want: "RED ended their turn"},
		{name: "build settlement", record: plain(types.ColorBlue, types.ActionTypeBuildSettlement), want: "BLUE built a settlement"},
		{name: "offer trade", record: types.ActionRecord{Request: offer, Outcome: offer}, want: "BLUE offered 2 WOOD for 1 ORE"},
		{name: "confirm trade", record: plain(types.ColorRed, types.ActionTypeConfirmTrade), want: "RED completed the trade"},
		{name: "unknown type", record: plain(types.ColorRed, types.ActionType("SOMETHING_NEW")), want: "RED: SOMETHING_NEW"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeRecord(tt.record))
		})
	}
}

func TestFormatResources(t *testing.T) {
	assert.Equal(t, "nothing", FormatResources([5]int{}))
	assert.Equal(t, "2 WOOD, 1 WHEAT", FormatResources([5]int{2, 0, 0, 1, 0}))
}
