package types

import (
	"encoding/json"
	"fmt"
)

// Color identifies a seat in a game. Seat order is fixed by the server and
// reported in GameSnapshot.Colors.
type Color string

const (
	ColorRed    Color = "RED"
	ColorBlue   Color = "BLUE"
	ColorWhite  Color = "WHITE"
	ColorOrange Color = "ORANGE"
)

// Resource is one of the five tradeable resource kinds. Trade vectors are
// always ordered wood, brick, sheep, wheat, ore.
type Resource string

const (
	ResourceWood  Resource = "WOOD"
	ResourceBrick Resource = "BRICK"
	ResourceSheep Resource = "SHEEP"
	ResourceWheat Resource = "WHEAT"
	ResourceOre   Resource = "ORE"
)

// Resources lists all resource kinds in trade-vector order.
var Resources = [5]Resource{ResourceWood, ResourceBrick, ResourceSheep, ResourceWheat, ResourceOre}

// ActionType is the symbolic name of a game action as used on the wire.
type ActionType string

const (
	ActionTypeRoll                   ActionType = "ROLL"
	ActionTypeMoveRobber             ActionType = "MOVE_ROBBER"
	ActionTypeDiscard                ActionType = "DISCARD"
	ActionTypeBuildRoad              ActionType = "BUILD_ROAD"
	ActionTypeBuildSettlement        ActionType = "BUILD_SETTLEMENT"
	ActionTypeBuildCity              ActionType = "BUILD_CITY"
	ActionTypeBuyDevelopmentCard     ActionType = "BUY_DEVELOPMENT_CARD"
	ActionTypePlayKnightCard         ActionType = "PLAY_KNIGHT_CARD"
	ActionTypePlayYearOfPlenty       ActionType = "PLAY_YEAR_OF_PLENTY"
	ActionTypePlayMonopoly           ActionType = "PLAY_MONOPOLY"
	ActionTypePlayRoadBuilding       ActionType = "PLAY_ROAD_BUILDING"
	ActionTypeMaritimeTrade          ActionType = "MARITIME_TRADE"
	ActionTypeOfferTrade             ActionType = "OFFER_TRADE"
	ActionTypeAcceptTrade            ActionType = "ACCEPT_TRADE"
	ActionTypeRejectTrade            ActionType = "REJECT_TRADE"
	ActionTypeConfirmTrade           ActionType = "CONFIRM_TRADE"
	ActionTypeCancelTrade            ActionType = "CANCEL_TRADE"
	ActionTypeEndTurn                ActionType = "END_TURN"
)

// Prompt is the symbolic name of the action category the server expects next.
type Prompt string

const (
	PromptBuildInitialSettlement Prompt = "BUILD_INITIAL_SETTLEMENT"
	PromptBuildInitialRoad       Prompt = "BUILD_INITIAL_ROAD"
	PromptPlayTurn               Prompt = "PLAY_TURN"
	PromptDiscard                Prompt = "DISCARD"
	PromptMoveRobber             Prompt = "MOVE_ROBBER"
	PromptDecideTrade            Prompt = "DECIDE_TRADE"
	PromptDecideAcceptees        Prompt = "DECIDE_ACCEPTEES"
)

// Action is a single game action. On the wire it is a three-element array:
// [color, action_type, value]. Value stays raw because its shape depends on
// the action type (dice pair, trade vector, node id, ...).
type Action struct {
	Color Color
	Type  ActionType
	Value json.RawMessage
}

// NewAction builds an Action with a JSON-encoded value. It panics only if
// value is not JSON-encodable, which is a programming error.
func NewAction(color Color, actionType ActionType, value interface{}) Action {
	raw, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("failed to encode action value: %v", err))
	}
	return Action{Color: color, Type: actionType, Value: raw}
}

func (a Action) MarshalJSON() ([]byte, error) {
	value := a.Value
	if len(value) == 0 {
		value = json.RawMessage("null")
	}
	return json.Marshal([3]json.RawMessage{
		mustMarshal(a.Color),
		mustMarshal(a.Type),
		value,
	})
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("failed to decode action: %v", err)
	}
	if len(parts) < 3 {
		return fmt.Errorf("action has %d elements, want 3", len(parts))
	}
	if err := json.Unmarshal(parts[0], &a.Color); err != nil {
		return fmt.Errorf("failed to decode action color: %v", err)
	}
	if err := json.Unmarshal(parts[1], &a.Type); err != nil {
		return fmt.Errorf("failed to decode action type: %v", err)
	}
	a.Value = parts[2]
	return nil
}

// Dice returns the two die values carried by a ROLL action outcome.
func (a Action) Dice() (die1, die2 int, ok bool) {
	if a.Type != ActionTypeRoll {
		return 0, 0, false
	}
	var dice []int
	if err := json.Unmarshal(a.Value, &dice); err != nil || len(dice) < 2 {
		return 0, 0, false
	}
	return dice[0], dice[1], true
}

// TradeVector returns the ten-element offer+request vector carried by trade
// actions. Trailing elements (the offerer index or the confirmed partner)
// are ignored.
func (a Action) TradeVector() ([10]int, bool) {
	var vector [10]int
	var parts []json.RawMessage
	if err := json.Unmarshal(a.Value, &parts); err != nil || len(parts) < 10 {
		return vector, false
	}
	for i := 0; i < 10; i++ {
		if err := json.Unmarshal(parts[i], &vector[i]); err != nil {
			return [10]int{}, false
		}
	}
	return vector, true
}

func mustMarshal(v interface{}) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("failed to encode value: %v", err))
	}
	return raw
}

// ActionRecord is one entry of the authoritative history: the action as
// requested and the action as executed (with server-decided values such as
// dice filled in). On the wire it is a two-element array of actions.
type ActionRecord struct {
	Request Action
	Outcome Action
}

func (r ActionRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]Action{r.Request, r.Outcome})
}

func (r *ActionRecord) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("failed to decode action record: %v", err)
	}
	switch len(parts) {
	case 0:
		return fmt.Errorf("action record is empty")
	case 1:
		// Some server builds log only the executed action.
		if err := json.Unmarshal(parts[0], &r.Outcome); err != nil {
			return err
		}
		r.Request = r.Outcome
		return nil
	default:
		if err := json.Unmarshal(parts[0], &r.Request); err != nil {
			return err
		}
		return json.Unmarshal(parts[1], &r.Outcome)
	}
}

// Acceptee is a non-offering seat's response status for the active trade.
type Acceptee struct {
	Color     Color `json:"color"`
	Accepted  bool  `json:"accepted"`
	Responded bool  `json:"responded"`
}

// TradeProposal is the at-most-one active trade carried by a snapshot.
type TradeProposal struct {
	OffererColor Color      `json:"offerer_color"`
	Offer        [5]int     `json:"offer"`
	Request      [5]int     `json:"request"`
	Acceptees    []Acceptee `json:"acceptees"`
}

// Acceptee returns the response entry for the given seat, if present.
func (t *TradeProposal) Acceptee(color Color) (Acceptee, bool) {
	for _, acceptee := range t.Acceptees {
		if acceptee.Color == color {
			return acceptee, true
		}
	}
	return Acceptee{}, false
}

// GameSnapshot is one immutable, fully-specified state of a game. Snapshots
// are replaced wholesale, never mutated in place.
type GameSnapshot struct {
	GameID              string                     `json:"game_id,omitempty"`
	StateIndex          int                        `json:"state_index"`
	CurrentColor        Color                      `json:"current_color"`
	CurrentPrompt       Prompt                     `json:"current_prompt"`
	Colors              []Color                    `json:"colors"`
	BotColors           []Color                    `json:"bot_colors"`
	PlayerState         map[string]json.RawMessage `json:"player_state"`
	ActionRecords       []ActionRecord             `json:"action_records"`
	ActionTimestamps    []float64                  `json:"action_timestamps,omitempty"`
	Trade               *TradeProposal             `json:"trade,omitempty"`
	WinningColor        *Color                     `json:"winning_color"`
	IsInitialBuildPhase bool                       `json:"is_initial_build_phase"`
	HasHumanPlayer      bool                       `json:"has_human_player"`
	NumTurns            int                        `json:"num_turns"`
}

// SeatIndex returns the positional index of a seat in the fixed seat order.
func (s *GameSnapshot) SeatIndex(color Color) (int, bool) {
	for i, c := range s.Colors {
		if c == color {
			return i, true
		}
	}
	return 0, false
}

// IsBot reports whether a seat is driven automatically by the server.
func (s *GameSnapshot) IsBot(color Color) bool {
	for _, c := range s.BotColors {
		if c == color {
			return true
		}
	}
	return false
}

// Ended reports whether the game has a winner.
func (s *GameSnapshot) Ended() bool {
	return s.WinningColor != nil
}

// PlayerInt reads an integer counter from the flat per-seat state map, e.g.
// key "WOOD_IN_HAND" for seat 0 resolves to "P0_WOOD_IN_HAND".
func (s *GameSnapshot) PlayerInt(seatIndex int, key string) (int, bool) {
	raw, ok := s.PlayerState[fmt.Sprintf("P%d_%s", seatIndex, key)]
	if !ok {
		return 0, false
	}
	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, false
	}
	return value, true
}

// PlayerBool reads a boolean flag from the flat per-seat state map.
func (s *GameSnapshot) PlayerBool(seatIndex int, key string) bool {
	raw, ok := s.PlayerState[fmt.Sprintf("P%d_%s", seatIndex, key)]
	if !ok {
		return false
	}
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return false
	}
	return value
}

// ResourcesInHand returns the viewer-known holdings of a seat in
// trade-vector order.
func (s *GameSnapshot) ResourcesInHand(color Color) ([5]int, bool) {
	seatIndex, ok := s.SeatIndex(color)
	if !ok {
		return [5]int{}, false
	}
	var hand [5]int
	for i, resource := range Resources {
		count, ok := s.PlayerInt(seatIndex, string(resource)+"_IN_HAND")
		if !ok {
			return [5]int{}, false
		}
		hand[i] = count
	}
	return hand, true
}

// HasRolled reports whether a seat has completed its mandatory roll this turn.
func (s *GameSnapshot) HasRolled(color Color) bool {
	seatIndex, ok := s.SeatIndex(color)
	if !ok {
		return false
	}
	return s.PlayerBool(seatIndex, "HAS_ROLLED")
}
