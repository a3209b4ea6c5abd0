package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/catanatron/gameclient/pkg/game/types"
)

// PVPTokenHeader carries the room session token on every session-scoped
// request.
const PVPTokenHeader = "X-PVP-Token"

// Seat is one player slot of a PvP room.
type Seat struct {
	Color    types.Color `json:"color"`
	UserName *string     `json:"user_name"`
	IsYou    bool        `json:"is_you"`
}

// Room is the lobby state of a PvP room. BoardPreview stays raw: board
// geometry belongs to the rendering layer, not this client.
type Room struct {
	RoomID       string          `json:"room_id"`
	RoomName     string          `json:"room_name"`
	Seats        []Seat          `json:"seats"`
	Started      bool            `json:"started"`
	GameID       *string         `json:"game_id"`
	StateIndex   *int            `json:"state_index"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
	BoardPreview json.RawMessage `json:"board_preview"`
}

// CreateRoom creates a PvP room.
func (c *Client) CreateRoom(ctx context.Context, roomName string) (*Room, error) {
	body := map[string]interface{}{}
	if roomName != "" {
		body["room_name"] = roomName
	}
	room := &Room{}
	if err := c.doJSON(ctx, http.MethodPost, "/api/pvp/rooms", nil, body, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return room, nil
}

// ListRooms lists available PvP rooms.
func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	var response struct {
		Rooms []Room `json:"rooms"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/pvp/rooms", nil, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return response.Rooms, nil
}

// RoomSession is an authenticated membership in one room: a seat for
// players, no seat for spectators. All session-scoped calls carry the
// token; an UnauthorizedError from any of them means the session is gone
// and the caller must rejoin.
type RoomSession struct {
	client      *Client
	roomID      string
	token       string
	UserName    string
	SeatColor   *types.Color
	IsSpectator bool
}

// JoinRoom joins (or rejoins, by user name) a room and returns the
// session. Joining a started or full room yields a spectator session.
func (c *Client) JoinRoom(ctx context.Context, roomID, userName string) (*RoomSession, *Room, error) {
	body := map[string]interface{}{"user_name": userName}
	var response struct {
		Token       string       `json:"token"`
		SeatColor   *types.Color `json:"seat_color"`
		UserName    string       `json:"user_name"`
		IsSpectator bool         `json:"is_spectator"`
		Room        *Room        `json:"room"`
	}
	path := fmt.Sprintf("/api/pvp/rooms/%s/join", roomID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, body, &response); err != nil {
		return nil, nil, fmt.Errorf("failed to join room: %w", err)
	}
	session := &RoomSession{
		client:      c,
		roomID:      roomID,
		token:       response.Token,
		UserName:    response.UserName,
		SeatColor:   response.SeatColor,
		IsSpectator: response.IsSpectator,
	}
	return session, response.Room, nil
}

// RoomID returns the room this session belongs to.
func (s *RoomSession) RoomID() string {
	return s.roomID
}

// Token returns the session token, e.g. for persisting a session across
// restarts.
func (s *RoomSession) Token() string {
	return s.token
}

func (s *RoomSession) headers() map[string]string {
	return map[string]string{PVPTokenHeader: s.token}
}

// Status fetches the current room state.
func (s *RoomSession) Status(ctx context.Context) (*Room, error) {
	room := &Room{}
	path := fmt.Sprintf("/api/pvp/rooms/%s/status", s.roomID)
	if err := s.client.doJSON(ctx, http.MethodGet, path, s.headers(), nil, room); err != nil {
		return nil, fmt.Errorf("failed to fetch room status: %w", err)
	}
	return room, nil
}

// Leave gives up the session's seat. Seated players cannot leave a started
// game; the server rejects that with a 400.
func (s *RoomSession) Leave(ctx context.Context) (*Room, error) {
	var response struct {
		Room *Room `json:"room"`
	}
	path := fmt.Sprintf("/api/pvp/rooms/%s/leave", s.roomID)
	if err := s.client.doJSON(ctx, http.MethodPost, path, s.headers(), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to leave room: %w", err)
	}
	return response.Room, nil
}

// Start begins the game. Host only (the first seat).
func (s *RoomSession) Start(ctx context.Context) (string, error) {
	var response struct {
		GameID string `json:"game_id"`
	}
	path := fmt.Sprintf("/api/pvp/rooms/%s/start", s.roomID)
	if err := s.client.doJSON(ctx, http.MethodPost, path, s.headers(), nil, &response); err != nil {
		return "", fmt.Errorf("failed to start room: %w", err)
	}
	return response.GameID, nil
}

// RefreshBoard rerolls the lobby board preview. Host only, pre-start only.
func (s *RoomSession) RefreshBoard(ctx context.Context) (*Room, error) {
	var response struct {
		Room *Room `json:"room"`
	}
	path := fmt.Sprintf("/api/pvp/rooms/%s/board", s.roomID)
	if err := s.client.doJSON(ctx, http.MethodPost, path, s.headers(), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to refresh room board: %w", err)
	}
	return response.Room, nil
}

// GetState fetches the room's game state. Pass StateLatest for the newest.
func (s *RoomSession) GetState(ctx context.Context, stateIndex int) (*types.GameSnapshot, error) {
	path := fmt.Sprintf("/api/pvp/rooms/%s/game?state=%s", s.roomID, formatStateIndex(stateIndex))
	snapshot := &types.GameSnapshot{}
	if err := s.client.doJSON(ctx, http.MethodGet, path, s.headers(), nil, snapshot); err != nil {
		return nil, fmt.Errorf("failed to fetch room game state: %w", err)
	}
	return snapshot, nil
}

// SubmitAction submits one action against the room's game.
// expectedStateIndex is the state_index of the snapshot the action was
// decided on; the server answers 409 (StaleStateError) when it has moved
// past it, in which case re-fetch, never blind-retry.
func (s *RoomSession) SubmitAction(ctx context.Context, action types.Action, expectedStateIndex int) (*types.GameSnapshot, error) {
	body := map[string]interface{}{
		"action":               action,
		"expected_state_index": expectedStateIndex,
	}
	path := fmt.Sprintf("/api/pvp/rooms/%s/action", s.roomID)
	snapshot := &types.GameSnapshot{}
	if err := s.client.doJSON(ctx, http.MethodPost, path, s.headers(), body, snapshot); err != nil {
		return nil, fmt.Errorf("failed to submit room action: %w", err)
	}
	return snapshot, nil
}
