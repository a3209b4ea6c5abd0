package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotFixture = `{
	"state_index": 42,
	"current_color": "RED",
	"current_prompt": "PLAY_TURN",
	"colors": ["RED", "BLUE", "WHITE", "ORANGE"],
	"bot_colors": ["BLUE", "WHITE", "ORANGE"],
	"player_state": {
		"P0_WOOD_IN_HAND": 2,
		"P0_BRICK_IN_HAND": 0,
		"P0_SHEEP_IN_HAND": 1,
		"P0_WHEAT_IN_HAND": 0,
		"P0_ORE_IN_HAND": 3,
		"P0_HAS_ROLLED": true,
		"P1_HAS_ROLLED": false
	},
	"action_records": [
		[["RED", "ROLL", null], ["RED", "ROLL", [3, 4]]],
		[["RED", "BUILD_SETTLEMENT", 12], ["RED", "BUILD_SETTLEMENT", 12]]
	],
	"action_timestamps": [1700000000.5, 1700000001.5],
	"trade": {
		"offerer_color": "RED",
		"offer": [1, 0, 0, 0, 0],
		"request": [0, 0, 0, 1, 0],
		"acceptees": [
			{"color": "BLUE", "accepted": false, "responded": true},
			{"color": "WHITE", "accepted": true, "responded": true},
			{"color": "ORANGE", "accepted": false, "responded": false}
		]
	},
	"winning_color": null,
	"is_initial_build_phase": false,
	"has_human_player": true,
	"num_turns": 7
}`

func TestGameSnapshot_Decode(t *testing.T) {
	snapshot := &GameSnapshot{}
	require.NoError(t, json.Unmarshal([]byte(snapshotFixture), snapshot))

	assert.Equal(t, 42, snapshot.StateIndex)
	assert.Equal(t, ColorRed, snapshot.CurrentColor)
	assert.Equal(t, PromptPlayTurn, snapshot.CurrentPrompt)
	assert.False(t, snapshot.Ended())
	assert.True(t, snapshot.HasHumanPlayer)
	assert.Len(t, snapshot.ActionRecords, 2)

	die1, die2, ok := snapshot.ActionRecords[0].Outcome.Dice()
	require.True(t, ok)
	assert.Equal(t, 3, die1)
	assert.Equal(t, 4, die2)
	_, _, ok = snapshot.ActionRecords[0].Request.Dice()
	assert.False(t, ok, "unexecuted roll carries no dice")

	require.NotNil(t, snapshot.Trade)
	assert.Equal(t, ColorRed, snapshot.Trade.OffererColor)
	acceptee, ok := snapshot.Trade.Acceptee(ColorWhite)
	require.True(t, ok)
	assert.True(t, acceptee.Accepted)
}

func TestGameSnapshot_Accessors(t *testing.T) {
	snapshot := &GameSnapshot{}
	require.NoError(t, json.Unmarshal([]byte(snapshotFixture), snapshot))

	index, ok := snapshot.SeatIndex(ColorBlue)
	require.True(t, ok)
	assert.Equal(t, 1, index)
	_, ok = snapshot.SeatIndex(Color("GREEN"))
	assert.False(t, ok)

	assert.True(t, snapshot.IsBot(ColorBlue))
	assert.False(t, snapshot.IsBot(ColorRed))

	hand, ok := snapshot.ResourcesInHand(ColorRed)
	require.True(t, ok)
	assert.Equal(t, [5]int{2, 0, 1, 0, 3}, hand)
	_, ok = snapshot.ResourcesInHand(ColorBlue)
	assert.False(t, ok, "no holdings in the fixture for BLUE")

	assert.True(t, snapshot.HasRolled(ColorRed))
	assert.False(t, snapshot.HasRolled(ColorBlue))
}

func TestAction_MarshalRoundTrip(t *testing.T) {
	action := NewAction(ColorBlue, ActionTypeOfferTrade, []int{1, 0, 0, 0, 0, 0, 0, 1, 0, 0})
	encoded, err := json.Marshal(action)
	require.NoError(t, err)
	assert.JSONEq(t, `["BLUE", "OFFER_TRADE", [1,0,0,0,0,0,0,1,0,0]]`, string(encoded))

	decoded := Action{}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, ColorBlue, decoded.Color)
	assert.Equal(t, ActionTypeOfferTrade, decoded.Type)
	vector, ok := decoded.TradeVector()
	require.True(t, ok)
	assert.Equal(t, [10]int{1, 0, 0, 0, 0, 0, 0, 1, 0, 0}, vector)
}

func TestAction_MarshalNilValue(t *testing.T) {
	encoded, err := json.Marshal(Action{Color: ColorRed, Type: ActionTypeEndTurn})
	require.NoError(t, err)
	assert.JSONEq(t, `["RED", "END_TURN", null]`, string(encoded))
}

func TestActionRecord_SingleElement(t *testing.T) {
	record := &ActionRecord{}
	require.NoError(t, json.Unmarshal([]byte(`[["RED", "END_TURN", null]]`), record))
	assert.Equal(t, ActionTypeEndTurn, record.Outcome.Type)
	assert.Equal(t, record.Request, record.Outcome)
}

func TestLatestRoll(t *testing.T) {
	rollRecord := func(color Color, die1, die2 int) ActionRecord {
		action := NewAction(color, ActionTypeRoll, []int{die1, die2})
		return ActionRecord{Request: action, Outcome: action}
	}
	plain := func(color Color, actionType ActionType) ActionRecord {
		action := NewAction(color, actionType, nil)
		return ActionRecord{Request: action, Outcome: action}
	}

	tests := []struct {
		name    string
		records []ActionRecord
		want    RollRecord
		wantOK  bool
	}{
		{
			name:   "no records",
			wantOK: false,
		},
		{
			name:    "no rolls",
			records: []ActionRecord{plain(ColorRed, ActionTypeEndTurn)},
			wantOK:  false,
		},
		{
			name: "latest of several",
			records: []ActionRecord{
				rollRecord(ColorRed, 1, 2),
				plain(ColorRed, ActionTypeEndTurn),
				rollRecord(ColorBlue, 6, 6),
				plain(ColorBlue, ActionTypeBuildRoad),
			},
			want:   RollRecord{Color: ColorBlue, Die1: 6, Die2: 6, Index: 2},
			wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := &GameSnapshot{ActionRecords: tt.records}
			roll, ok := snapshot.LatestRoll()
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, roll)
			}
		})
	}
}

func TestRollIdentity_DistinguishesHistoryPosition(t *testing.T) {
	first := RollRecord{Color: ColorRed, Die1: 3, Die2: 3, Index: 5}
	second := RollRecord{Color: ColorRed, Die1: 3, Die2: 3, Index: 9}
	assert.NotEqual(t, first.Identity(), second.Identity())
}
