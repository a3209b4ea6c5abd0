// Package api is the HTTP client for the Catanatron game service. The
// service owns all game rules and state; this layer performs schema-
// compatible consumption and maps failure statuses onto typed errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/catanatron/gameclient/pkg/game/types"
)

const (
	DefaultBaseURL = "http://localhost:5001"

	defaultTimeout = 30 * time.Second
)

// StateLatest requests the newest stored state of a game.
const StateLatest = -1

// Player keys accepted by the create-game endpoint.
const (
	PlayerKeyHuman      = "HUMAN"
	PlayerKeyRandom     = "RANDOM"
	PlayerKeyCatanatron = "CATANATRON"
)

// Client talks to one game service instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type NewClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(opts NewClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// CreateGame creates a game with the given seat configuration and returns
// its identifier. Seats are assigned colors in fixed server order.
func (c *Client) CreateGame(ctx context.Context, playerKeys []string) (string, error) {
	body := map[string]interface{}{"players": playerKeys}
	var response struct {
		GameID string `json:"game_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/games", nil, body, &response); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	return response.GameID, nil
}

// GetState fetches one state of a game. Pass StateLatest for the newest.
// The returned snapshot carries the game id for store reconciliation.
func (c *Client) GetState(ctx context.Context, gameID string, stateIndex int) (*types.GameSnapshot, error) {
	path := fmt.Sprintf("/api/games/%s/states/%s", gameID, formatStateIndex(stateIndex))
	snapshot := &types.GameSnapshot{}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, snapshot); err != nil {
		return nil, fmt.Errorf("failed to fetch game state: %w", err)
	}
	snapshot.GameID = gameID
	return snapshot, nil
}

// PostAction submits one action against a game and returns the resulting
// snapshot. A nil action sends an empty body, meaning "server picks the
// automated move" (bot tick or pending bot trade responses).
func (c *Client) PostAction(ctx context.Context, gameID string, action *types.Action) (*types.GameSnapshot, error) {
	path := fmt.Sprintf("/api/games/%s/actions", gameID)
	var body interface{}
	if action != nil {
		body = action
	}
	snapshot := &types.GameSnapshot{}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, body, snapshot); err != nil {
		return nil, fmt.Errorf("failed to post action: %w", err)
	}
	snapshot.GameID = gameID
	return snapshot, nil
}

// GameSummary is one row of the saved-games listing.
type GameSummary struct {
	GameID         string        `json:"game_id"`
	StateIndex     int           `json:"state_index"`
	WinningColor   *types.Color  `json:"winning_color"`
	CurrentColor   *types.Color  `json:"current_color"`
	PlayerColors   []types.Color `json:"player_colors"`
	TurnsCompleted *int          `json:"turns_completed"`
	UpdatedAt      *string       `json:"updated_at"`
}

// ListGames lists recent saved games.
func (c *Client) ListGames(ctx context.Context) ([]GameSummary, error) {
	var response struct {
		Games []GameSummary `json:"games"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/games", nil, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return response.Games, nil
}

// DeleteGame deletes a saved game.
func (c *Client) DeleteGame(ctx context.Context, gameID string) error {
	var response struct {
		Deleted bool   `json:"deleted"`
		GameID  string `json:"game_id"`
	}
	path := fmt.Sprintf("/api/games/%s", gameID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, &response); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if !response.Deleted {
		return fmt.Errorf("server did not delete game %s", gameID)
	}
	return nil
}

// GameEvent is one entry of a game's event log.
type GameEvent struct {
	EventID    int             `json:"event_id"`
	GameID     string          `json:"game_id"`
	EventType  string          `json:"event_type"`
	StateIndex *int            `json:"state_index"`
	CreatedAt  *string         `json:"created_at"`
	Payload    json.RawMessage `json:"payload"`
}

// ListEvents fetches a game's event log, optionally filtered by type.
func (c *Client) ListEvents(ctx context.Context, gameID, eventType string) ([]GameEvent, error) {
	path := fmt.Sprintf("/api/games/%s/events", gameID)
	if eventType != "" {
		path += "?event_type=" + eventType
	}
	var response struct {
		Events []GameEvent `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to list game events: %w", err)
	}
	return response.Events, nil
}

func formatStateIndex(stateIndex int) string {
	if stateIndex < 0 {
		return "latest"
	}
	return strconv.Itoa(stateIndex)
}

// doJSON performs one round trip. Non-2xx statuses map to the typed errors
// in errors.go; response bodies decode into out when non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, headers map[string]string, body, out interface{}) error {
	var requestBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		requestBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, requestBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusToError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusToError(resp *http.Response) error {
	message := readErrorMessage(resp.Body)
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &UnauthorizedError{Message: message}
	case http.StatusForbidden:
		return &ForbiddenError{Message: message}
	case http.StatusNotFound:
		return &NotFoundError{Message: message}
	case http.StatusConflict:
		return &StaleStateError{Message: message}
	default:
		return &StatusError{StatusCode: resp.StatusCode, Message: message}
	}
}

func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	// Flask aborts carry {"message": ...} when JSON is negotiated.
	var decoded struct {
		Message     string `json:"message"`
		Description string `json:"description"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(raw, &decoded); err == nil {
		switch {
		case decoded.Message != "":
			return decoded.Message
		case decoded.Description != "":
			return decoded.Description
		case decoded.Error != "":
			return decoded.Error
		}
	}
	return string(raw)
}
