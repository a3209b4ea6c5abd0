package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/catanatron/gameclient/pkg/game/types"
)

// AdviceRequest asks the service's negotiation-advice endpoint for
// free-text guidance. Purely advisory: nothing here feeds back into the
// game state machine.
type AdviceRequest struct {
	// BoardImage is an optional rendered board as a data URL.
	BoardImage string `json:"board_image,omitempty"`
	// RequesterColor is the seat asking for advice. When omitted the
	// server infers it (current human, or the only human seated).
	RequesterColor types.Color `json:"requester_color,omitempty"`
}

// AdviceResponse carries the advice text, or the provider error when
// Success is false.
type AdviceResponse struct {
	Success bool   `json:"success"`
	Advice  string `json:"advice"`
	Error   string `json:"error"`
}

// NegotiationAdvice requests advice for one game state. Pass StateLatest
// for the newest. A 503 means the advice provider is not configured; that
// surfaces as a StatusError, not a failure of the game session.
func (c *Client) NegotiationAdvice(ctx context.Context, gameID string, stateIndex int, request AdviceRequest) (*AdviceResponse, error) {
	path := fmt.Sprintf("/api/games/%s/states/%s/negotiation-advice", gameID, formatStateIndex(stateIndex))
	response := &AdviceResponse{}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, request, response); err != nil {
		return nil, fmt.Errorf("failed to request negotiation advice: %w", err)
	}
	return response, nil
}
