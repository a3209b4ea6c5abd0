package api_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catanatron/gameclient/pkg/api"
	"github.com/catanatron/gameclient/pkg/game/types"
)

func TestRoomLifecycle(t *testing.T) {
	client, stub := newTestClient(t)
	stub.AddGame("game-1", scriptState(0, types.ColorRed), scriptState(1, types.ColorBlue))

	room, err := client.CreateRoom(context.Background(), "friday night")
	require.NoError(t, err)
	assert.Equal(t, "friday night", room.RoomName)
	assert.False(t, room.Started)
	require.Len(t, room.Seats, 4)

	host, joined, err := client.JoinRoom(context.Background(), room.RoomID, "alice")
	require.NoError(t, err)
	require.NotNil(t, host.SeatColor)
	assert.Equal(t, types.ColorRed, *host.SeatColor, "first join takes the first seat")
	assert.False(t, host.IsSpectator)
	require.NotNil(t, joined)
	assert.True(t, joined.Seats[0].IsYou)

	guest, _, err := client.JoinRoom(context.Background(), room.RoomID, "bob")
	require.NoError(t, err)
	require.NotNil(t, guest.SeatColor)
	assert.Equal(t, types.ColorBlue, *guest.SeatColor)

	gameID, err := host.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "game-1", gameID)

	snapshot, err := guest.GetState(context.Background(), api.StateLatest)
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.StateIndex)
}

func TestRoomSession_SubmitAction(t *testing.T) {
	client, stub := newTestClient(t)
	stub.AddGame("game-1", scriptState(0, types.ColorRed), scriptState(1, types.ColorBlue))

	room, err := client.CreateRoom(context.Background(), "")
	require.NoError(t, err)
	host, _, err := client.JoinRoom(context.Background(), room.RoomID, "alice")
	require.NoError(t, err)
	_, err = host.Start(context.Background())
	require.NoError(t, err)

	action := types.NewAction(types.ColorRed, types.ActionTypeEndTurn, nil)
	snapshot, err := host.SubmitAction(context.Background(), action, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.StateIndex)
}

func TestRoomSession_StaleSubmission(t *testing.T) {
	client, stub := newTestClient(t)
	stub.AddGame("game-1", scriptState(0, types.ColorRed), scriptState(1, types.ColorBlue))

	room, err := client.CreateRoom(context.Background(), "")
	require.NoError(t, err)
	host, _, err := client.JoinRoom(context.Background(), room.RoomID, "alice")
	require.NoError(t, err)
	_, err = host.Start(context.Background())
	require.NoError(t, err)

	// Another client acted first; our expected index is behind.
	stub.Advance("game-1")

	action := types.NewAction(types.ColorRed, types.ActionTypeEndTurn, nil)
	_, err = host.SubmitAction(context.Background(), action, 0)
	require.Error(t, err)
	assert.True(t, api.IsStale(err))

	// Recovery path: re-fetch, then submit against the fresh index. The
	// script has no further states, so the cursor stays put.
	snapshot, err := host.GetState(context.Background(), api.StateLatest)
	require.NoError(t, err)
	_, err = host.SubmitAction(context.Background(), action, snapshot.StateIndex)
	require.NoError(t, err)
}

func TestRoomSession_RevokedToken(t *testing.T) {
	client, stub := newTestClient(t)
	stub.AddGame("game-1", scriptState(0, types.ColorRed))

	room, err := client.CreateRoom(context.Background(), "")
	require.NoError(t, err)
	host, _, err := client.JoinRoom(context.Background(), room.RoomID, "alice")
	require.NoError(t, err)
	_, err = host.Start(context.Background())
	require.NoError(t, err)

	stub.RevokeSession(host.Token())

	_, err = host.GetState(context.Background(), api.StateLatest)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.False(t, api.IsStale(err))
}

func TestRoomSession_SpectatorForbidden(t *testing.T) {
	client, stub := newTestClient(t)
	stub.AddGame("game-1", scriptState(0, types.ColorRed), scriptState(1, types.ColorBlue))

	room, err := client.CreateRoom(context.Background(), "")
	require.NoError(t, err)
	host, _, err := client.JoinRoom(context.Background(), room.RoomID, "alice")
	require.NoError(t, err)
	_, err = host.Start(context.Background())
	require.NoError(t, err)

	// Joining after start yields a spectator session.
	spectator, _, err := client.JoinRoom(context.Background(), room.RoomID, "carol")
	require.NoError(t, err)
	assert.True(t, spectator.IsSpectator)

	action := types.NewAction(types.ColorRed, types.ActionTypeEndTurn, nil)
	_, err = spectator.SubmitAction(context.Background(), action, 0)
	require.Error(t, err)
	var forbidden *api.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
}

func TestRoomSession_LeaveBeforeStartFreesSeat(t *testing.T) {
	client, _ := newTestClient(t)

	room, err := client.CreateRoom(context.Background(), "")
	require.NoError(t, err)
	_, _, err = client.JoinRoom(context.Background(), room.RoomID, "alice")
	require.NoError(t, err)
	guest, _, err := client.JoinRoom(context.Background(), room.RoomID, "bob")
	require.NoError(t, err)
	require.NotNil(t, guest.SeatColor)
	require.Equal(t, types.ColorBlue, *guest.SeatColor)

	after, err := guest.Leave(context.Background())
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Nil(t, after.Seats[1].UserName)

	// The vacated seat goes to the next joiner, and the old session token
	// is dead.
	replacement, _, err := client.JoinRoom(context.Background(), room.RoomID, "carol")
	require.NoError(t, err)
	require.NotNil(t, replacement.SeatColor)
	assert.Equal(t, types.ColorBlue, *replacement.SeatColor)

	_, err = guest.Status(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestRoomSession_SeatedPlayerCannotLeaveStartedGame(t *testing.T) {
	client, stub := newTestClient(t)
	stub.AddGame("game-1", scriptState(0, types.ColorRed))

	room, err := client.CreateRoom(context.Background(), "")
	require.NoError(t, err)
	host, _, err := client.JoinRoom(context.Background(), room.RoomID, "alice")
	require.NoError(t, err)
	_, err = host.Start(context.Background())
	require.NoError(t, err)

	_, err = host.Leave(context.Background())
	require.Error(t, err)
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 400, statusErr.StatusCode)

	// Spectators hold no seat and may leave at any time.
	spectator, _, err := client.JoinRoom(context.Background(), room.RoomID, "carol")
	require.NoError(t, err)
	require.True(t, spectator.IsSpectator)
	_, err = spectator.Leave(context.Background())
	require.NoError(t, err)
}

func TestRoomSession_RefreshBoard(t *testing.T) {
	client, stub := newTestClient(t)
	stub.AddGame("game-1", scriptState(0, types.ColorRed))

	room, err := client.CreateRoom(context.Background(), "")
	require.NoError(t, err)
	require.NotEmpty(t, room.BoardPreview)

	host, _, err := client.JoinRoom(context.Background(), room.RoomID, "alice")
	require.NoError(t, err)
	guest, _, err := client.JoinRoom(context.Background(), room.RoomID, "bob")
	require.NoError(t, err)

	refreshed, err := host.RefreshBoard(context.Background())
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	assert.NotEqual(t, string(room.BoardPreview), string(refreshed.BoardPreview))

	_, err = guest.RefreshBoard(context.Background())
	require.Error(t, err)
	var forbidden *api.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	// Once started the board is fixed.
	_, err = host.Start(context.Background())
	require.NoError(t, err)
	_, err = host.RefreshBoard(context.Background())
	require.Error(t, err)
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 400, statusErr.StatusCode)
}

func TestClient_ListRooms(t *testing.T) {
	client, _ := newTestClient(t)
	_, err := client.CreateRoom(context.Background(), "one")
	require.NoError(t, err)
	_, err = client.CreateRoom(context.Background(), "two")
	require.NoError(t, err)

	rooms, err := client.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}
