// Package apitest is an in-memory stand-in for the game service, serving
// scripted snapshot sequences. It owns no game rules: every submitted
// action simply advances the script by one state, which is exactly what
// client-side tests need to exercise fetch, submit, polling and staleness
// paths.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/catanatron/gameclient/pkg/api"
	"github.com/catanatron/gameclient/pkg/game/types"
)

type scriptedGame struct {
	states  []*types.GameSnapshot
	cursor  int
	actions []json.RawMessage
	deleted bool
}

type room struct {
	id        string
	name      string
	seats     []seat
	started   bool
	gameID    string
	boardSeed string
}

type seat struct {
	color    types.Color
	userName *string
}

type session struct {
	token     string
	roomID    string
	seatColor *types.Color
	userName  string
}

// Server scripts the REST surface the client consumes.
type Server struct {
	mu       sync.Mutex
	games    map[string]*scriptedGame
	rooms    map[string]*room
	sessions map[string]*session
	pending  []string
	advice   string

	Router *mux.Router
}

func NewServer() *Server {
	s := &Server{
		games:    make(map[string]*scriptedGame),
		rooms:    make(map[string]*room),
		sessions: make(map[string]*session),
	}
	r := mux.NewRouter()
	r.HandleFunc("/api/games", s.handleCreateGame).Methods(http.MethodPost)
	r.HandleFunc("/api/games", s.handleListGames).Methods(http.MethodGet)
	r.HandleFunc("/api/games/{gameID}", s.handleDeleteGame).Methods(http.MethodDelete)
	r.HandleFunc("/api/games/{gameID}/states/{stateIndex}", s.handleGetState).Methods(http.MethodGet)
	r.HandleFunc("/api/games/{gameID}/actions", s.handlePostAction).Methods(http.MethodPost)
	r.HandleFunc("/api/games/{gameID}/events", s.handleListEvents).Methods(http.MethodGet)
	r.HandleFunc("/api/games/{gameID}/states/{stateIndex}/negotiation-advice", s.handleAdvice).Methods(http.MethodPost)
	r.HandleFunc("/api/pvp/rooms", s.handleCreateRoom).Methods(http.MethodPost)
	r.HandleFunc("/api/pvp/rooms", s.handleListRooms).Methods(http.MethodGet)
	r.HandleFunc("/api/pvp/rooms/{roomID}/join", s.handleJoinRoom).Methods(http.MethodPost)
	r.HandleFunc("/api/pvp/rooms/{roomID}/status", s.handleRoomStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/pvp/rooms/{roomID}/leave", s.handleLeaveRoom).Methods(http.MethodPost)
	r.HandleFunc("/api/pvp/rooms/{roomID}/board", s.handleRefreshBoard).Methods(http.MethodPost)
	r.HandleFunc("/api/pvp/rooms/{roomID}/start", s.handleStartRoom).Methods(http.MethodPost)
	r.HandleFunc("/api/pvp/rooms/{roomID}/game", s.handleRoomGame).Methods(http.MethodGet)
	r.HandleFunc("/api/pvp/rooms/{roomID}/action", s.handleRoomAction).Methods(http.MethodPost)
	s.Router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// AddGame registers a scripted game. Each submitted action advances the
// script one state; fetching "latest" returns the state at the cursor.
func (s *Server) AddGame(gameID string, states ...*types.GameSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[gameID] = &scriptedGame{states: states}
	s.pending = append(s.pending, gameID)
}

// Actions returns the raw action bodies submitted against a game. Empty
// bodies (server-decides advances) appear as empty raw messages.
func (s *Server) Actions(gameID string) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok {
		return nil
	}
	actions := make([]json.RawMessage, len(g.actions))
	copy(actions, g.actions)
	return actions
}

// Advance moves a game's cursor forward without a submission, simulating
// another client acting (the PvP case polling is for).
func (s *Server) Advance(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.games[gameID]; ok && g.cursor < len(g.states)-1 {
		g.cursor++
	}
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Players []string `json:"players"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Players) == 0 {
		httpError(w, http.StatusBadRequest, "'players' key required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		httpError(w, http.StatusInternalServerError, "no scripted game registered")
		return
	}
	gameID := s.pending[0]
	s.pending = s.pending[1:]
	writeJSON(w, http.StatusOK, map[string]string{"game_id": gameID})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	games := []map[string]interface{}{}
	for gameID, g := range s.games {
		if g.deleted || len(g.states) == 0 {
			continue
		}
		state := g.states[g.cursor]
		games = append(games, map[string]interface{}{
			"game_id":       gameID,
			"state_index":   state.StateIndex,
			"winning_color": state.WinningColor,
			"current_color": state.CurrentColor,
			"player_colors": state.Colors,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"games": games})
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameID"]
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok || g.deleted {
		httpError(w, http.StatusNotFound, "Resource not found")
		return
	}
	g.deleted = true
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "game_id": gameID})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[vars["gameID"]]
	if !ok || g.deleted {
		httpError(w, http.StatusNotFound, "Resource not found")
		return
	}
	state := g.stateAt(vars["stateIndex"])
	if state == nil {
		httpError(w, http.StatusNotFound, "Resource not found")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handlePostAction(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameID"]
	var body json.RawMessage
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok || g.deleted {
		httpError(w, http.StatusNotFound, "Resource not found")
		return
	}
	g.actions = append(g.actions, body)
	if g.cursor < len(g.states)-1 {
		g.cursor++
	}
	writeJSON(w, http.StatusOK, g.states[g.cursor])
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": []interface{}{}})
}

// SetAdvice scripts the negotiation-advice response text. Empty means the
// provider is not configured and the endpoint answers 503.
func (s *Server) SetAdvice(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advice = text
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[vars["gameID"]]
	if !ok || g.deleted || g.stateAt(vars["stateIndex"]) == nil {
		httpError(w, http.StatusNotFound, "Resource not found")
		return
	}
	if s.advice == "" {
		httpError(w, http.StatusServiceUnavailable, "advice provider not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "advice": s.advice})
}

func (g *scriptedGame) stateAt(stateIndex string) *types.GameSnapshot {
	if len(g.states) == 0 {
		return nil
	}
	if stateIndex == "latest" {
		return g.states[g.cursor]
	}
	var index int
	if _, err := fmt.Sscanf(stateIndex, "%d", &index); err != nil {
		return nil
	}
	for _, state := range g.states {
		if state.StateIndex == index {
			return state
		}
	}
	return nil
}

var seatOrder = []types.Color{types.ColorRed, types.ColorBlue, types.ColorWhite, types.ColorOrange}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RoomName string `json:"room_name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	name := body.RoomName
	if name == "" {
		name = "Room"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rm := &room{id: uuid.NewString(), name: name, boardSeed: uuid.NewString()}
	for _, color := range seatOrder {
		rm.seats = append(rm.seats, seat{color: color})
	}
	s.rooms[rm.id] = rm
	writeJSON(w, http.StatusCreated, rm.serialize(nil))
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := []map[string]interface{}{}
	for _, rm := range s.rooms {
		rooms = append(rooms, rm.serialize(nil))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": rooms})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	var body struct {
		UserName string `json:"user_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserName == "" {
		httpError(w, http.StatusBadRequest, "user_name required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[roomID]
	if !ok {
		httpError(w, http.StatusNotFound, "room not found")
		return
	}
	sess := &session{token: uuid.NewString(), roomID: roomID, userName: body.UserName}
	if !rm.started {
		for i := range rm.seats {
			if rm.seats[i].userName == nil {
				rm.seats[i].userName = &body.UserName
				color := rm.seats[i].color
				sess.seatColor = &color
				break
			}
		}
	}
	s.sessions[sess.token] = sess
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":        sess.token,
		"seat_color":   sess.seatColor,
		"user_name":    sess.userName,
		"is_spectator": sess.seatColor == nil,
		"room":         rm.serialize(sess),
	})
}

func (s *Server) handleRoomStatus(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[roomID]
	if !ok {
		httpError(w, http.StatusNotFound, "room not found")
		return
	}
	sess := s.sessions[r.Header.Get(api.PVPTokenHeader)]
	writeJSON(w, http.StatusOK, rm.serialize(sess))
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, rm, status, message := s.requireSession(r, roomID)
	if status != 0 {
		httpError(w, status, message)
		return
	}
	if sess.seatColor != nil && rm.started {
		httpError(w, http.StatusBadRequest, "seated players cannot leave a started game")
		return
	}
	if sess.seatColor != nil {
		for i := range rm.seats {
			if rm.seats[i].color == *sess.seatColor {
				rm.seats[i].userName = nil
			}
		}
	}
	delete(s.sessions, sess.token)
	writeJSON(w, http.StatusOK, map[string]interface{}{"room": rm.serialize(nil)})
}

func (s *Server) handleRefreshBoard(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, rm, status, message := s.requireSession(r, roomID)
	if status != 0 {
		httpError(w, status, message)
		return
	}
	if sess.seatColor == nil || *sess.seatColor != seatOrder[0] {
		httpError(w, http.StatusForbidden, "only the host may reroll the board")
		return
	}
	if rm.started {
		httpError(w, http.StatusBadRequest, "board is fixed once the game has started")
		return
	}
	rm.boardSeed = uuid.NewString()
	writeJSON(w, http.StatusOK, map[string]interface{}{"room": rm.serialize(sess)})
}

func (s *Server) handleStartRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, rm, status, message := s.requireSession(r, roomID)
	if status != 0 {
		httpError(w, status, message)
		return
	}
	if sess.seatColor == nil || *sess.seatColor != seatOrder[0] {
		httpError(w, http.StatusForbidden, "only the host may start")
		return
	}
	if !rm.started {
		if len(s.pending) == 0 {
			httpError(w, http.StatusInternalServerError, "no scripted game registered")
			return
		}
		rm.gameID = s.pending[0]
		s.pending = s.pending[1:]
		rm.started = true
	}
	writeJSON(w, http.StatusOK, map[string]string{"game_id": rm.gameID})
}

func (s *Server) handleRoomGame(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	s.mu.Lock()
	defer s.mu.Unlock()
	_, rm, status, message := s.requireSession(r, roomID)
	if status != 0 {
		httpError(w, status, message)
		return
	}
	g, ok := s.games[rm.gameID]
	if !ok || !rm.started {
		httpError(w, http.StatusBadRequest, "game has not started")
		return
	}
	stateIndex := r.URL.Query().Get("state")
	if stateIndex == "" {
		stateIndex = "latest"
	}
	state := g.stateAt(stateIndex)
	if state == nil {
		httpError(w, http.StatusNotFound, "Resource not found")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleRoomAction(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]

	var body struct {
		Action             json.RawMessage `json:"action"`
		ExpectedStateIndex *int            `json:"expected_state_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Action == nil {
		httpError(w, http.StatusBadRequest, "action field required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, rm, status, message := s.requireSession(r, roomID)
	if status != 0 {
		httpError(w, status, message)
		return
	}
	if sess.seatColor == nil {
		httpError(w, http.StatusForbidden, "spectators cannot act")
		return
	}
	g, ok := s.games[rm.gameID]
	if !ok || !rm.started {
		httpError(w, http.StatusBadRequest, "game has not started")
		return
	}
	current := g.states[g.cursor]
	if body.ExpectedStateIndex != nil && *body.ExpectedStateIndex != current.StateIndex {
		httpError(w, http.StatusConflict, "state is no longer current")
		return
	}
	g.actions = append(g.actions, body.Action)
	if g.cursor < len(g.states)-1 {
		g.cursor++
	}
	writeJSON(w, http.StatusOK, g.states[g.cursor])
}

// requireSession validates the token header. A zero status means OK.
func (s *Server) requireSession(r *http.Request, roomID string) (*session, *room, int, string) {
	token := r.Header.Get(api.PVPTokenHeader)
	if token == "" {
		return nil, nil, http.StatusUnauthorized, "PvP token required"
	}
	sess, ok := s.sessions[token]
	if !ok {
		return nil, nil, http.StatusUnauthorized, "PvP token invalid"
	}
	if sess.roomID != roomID {
		return nil, nil, http.StatusForbidden, "token is for another room"
	}
	rm, ok := s.rooms[roomID]
	if !ok {
		return nil, nil, http.StatusNotFound, "room not found"
	}
	return sess, rm, 0, ""
}

// RevokeSession invalidates a token, simulating session expiry.
func (s *Server) RevokeSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func (rm *room) serialize(sess *session) map[string]interface{} {
	seats := make([]map[string]interface{}, 0, len(rm.seats))
	for _, st := range rm.seats {
		isYou := sess != nil && sess.seatColor != nil && *sess.seatColor == st.color
		seats = append(seats, map[string]interface{}{
			"color":     st.color,
			"user_name": st.userName,
			"is_you":    isYou,
		})
	}
	var gameID *string
	if rm.gameID != "" {
		gameID = &rm.gameID
	}
	return map[string]interface{}{
		"room_id":       rm.id,
		"room_name":     rm.name,
		"seats":         seats,
		"started":       rm.started,
		"game_id":       gameID,
		"board_preview": map[string]string{"seed": rm.boardSeed},
		"created_at":    "1970-01-01T00:00:00",
		"updated_at":    "1970-01-01T00:00:00",
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func httpError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
