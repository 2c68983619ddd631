package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/testutil"
)

func TestHandler_CreateRoom(t *testing.T) {
	t.Parallel()

	h, rooms, _ := newTestHandler(t)
	client := testutil.NewSimpleClient("c1", "")
	mockRoom := room.NewMockRoom("ABC123", client, "Alice")
	rooms.On("CreateRoom", client, "Alice").Return(mockRoom, nil)

	h.Handle(client, codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{DisplayName: "Alice"}))

	msg := client.LastOfType(protocol.MsgRoomCreated)
	require.NotNil(t, msg)
	payload, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", payload.RoomCode)
	assert.Equal(t, "c1", payload.Player.ID)
	assert.Equal(t, "Alice", payload.Player.Name)
	assert.True(t, payload.Player.IsHost)
}

func TestHandler_CreateRoom_InvalidName(t *testing.T) {
	t.Parallel()

	h, rooms, _ := newTestHandler(t)
	client := testutil.NewSimpleClient("c1", "")
	rooms.On("CreateRoom", client, "").Return(nil, apperrors.ErrInvalidName)

	h.Handle(client, codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{}))

	assert.Equal(t, protocol.ErrCodeInvalidName, errorCode(t, client.LastOfType(protocol.MsgError)))
	assert.Nil(t, client.LastOfType(protocol.MsgRoomCreated))
}

func TestHandler_JoinRoom(t *testing.T) {
	t.Parallel()

	h, rooms, _ := newTestHandler(t)
	host := testutil.NewSimpleClient("c1", "")
	mockRoom := room.NewMockRoom("ABC123", host, "Alice")
	client := testutil.NewSimpleClient("c2", "")
	rooms.On("JoinRoom", client, "abc123", "Bob").Return(mockRoom, nil)

	h.Handle(client, codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode:    "abc123",
		DisplayName: "Bob",
	}))

	msg := client.LastOfType(protocol.MsgRoomJoined)
	require.NotNil(t, msg)
	payload, err := codec.ParsePayload[protocol.RoomJoinedPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", payload.RoomCode)
	require.Len(t, payload.Players, 1)
	assert.Equal(t, "Alice", payload.Players[0].Name)
}

func TestHandler_JoinRoom_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", apperrors.ErrRoomNotFound, protocol.ErrCodeRoomNotFound},
		{"locked", apperrors.ErrRoomLocked, protocol.ErrCodeRoomLocked},
		{"full", apperrors.ErrRoomFull, protocol.ErrCodeRoomFull},
		{"name taken", apperrors.ErrNameTaken, protocol.ErrCodeNameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, rooms, _ := newTestHandler(t)
			client := testutil.NewSimpleClient("c2", "")
			rooms.On("JoinRoom", client, "XYZ999", "Bob").Return(nil, tt.err)

			h.Handle(client, codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
				RoomCode:    "XYZ999",
				DisplayName: "Bob",
			}))

			assert.Equal(t, tt.wantCode, errorCode(t, client.LastOfType(protocol.MsgError)))
		})
	}
}

func TestHandler_ReconnectRoom(t *testing.T) {
	t.Parallel()

	h, rooms, _ := newTestHandler(t)
	client := testutil.NewSimpleClient("c9", "")
	rooms.On("Reconnect", client, "ABC123", "Bob").Return(&protocol.ResyncPayload{
		Room: protocol.RoomStatePayload{RoomCode: "ABC123", Phase: "drawing"},
	}, nil)

	h.Handle(client, codec.MustNewMessage(protocol.MsgReconnectRoom, protocol.ReconnectRoomPayload{
		RoomCode:    "ABC123",
		DisplayName: "Bob",
	}))

	assert.Nil(t, client.LastOfType(protocol.MsgError))
}

func TestHandler_ReconnectRoom_UnknownPlayer(t *testing.T) {
	t.Parallel()

	h, rooms, _ := newTestHandler(t)
	client := testutil.NewSimpleClient("c9", "")
	rooms.On("Reconnect", client, "ABC123", "Nobody").Return(nil, apperrors.ErrPlayerNotFound)

	h.Handle(client, codec.MustNewMessage(protocol.MsgReconnectRoom, protocol.ReconnectRoomPayload{
		RoomCode:    "ABC123",
		DisplayName: "Nobody",
	}))

	assert.Equal(t, protocol.ErrCodePlayerNotFound, errorCode(t, client.LastOfType(protocol.MsgError)))
}

func TestHandler_LeaveRoom(t *testing.T) {
	t.Parallel()

	t.Run("in room", func(t *testing.T) {
		t.Parallel()

		h, rooms, _ := newTestHandler(t)
		client := testutil.NewSimpleClient("c1", "")
		client.SetRoom("ABC123")
		rooms.On("LeaveRoom", client).Return()

		h.Handle(client, &protocol.Message{Type: protocol.MsgLeaveRoom})
	})

	t.Run("not in room", func(t *testing.T) {
		t.Parallel()

		h, _, _ := newTestHandler(t)
		client := testutil.NewSimpleClient("c1", "")

		h.Handle(client, &protocol.Message{Type: protocol.MsgLeaveRoom})

		assert.Equal(t, protocol.ErrCodeNotInRoom, errorCode(t, client.LastOfType(protocol.MsgError)))
	})
}

func TestHandler_GetRoomList(t *testing.T) {
	t.Parallel()

	h, rooms, _ := newTestHandler(t)
	client := testutil.NewSimpleClient("c1", "")
	rooms.On("GetRoomList").Return([]protocol.RoomListItem{
		{RoomCode: "ABC123", PlayerCount: 2, MaxPlayers: 12},
	})

	h.Handle(client, &protocol.Message{Type: protocol.MsgGetRoomList})

	msg := client.LastOfType(protocol.MsgRoomListResult)
	require.NotNil(t, msg)
	payload, err := codec.ParsePayload[protocol.RoomListResultPayload](msg)
	require.NoError(t, err)
	require.Len(t, payload.Rooms, 1)
	assert.Equal(t, "ABC123", payload.Rooms[0].RoomCode)
}
