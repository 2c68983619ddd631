package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *room.MockRoomManager, *testutil.MockChatLimiter) {
	t.Helper()
	rooms := new(room.MockRoomManager)
	limiter := new(testutil.MockChatLimiter)
	h := NewHandler(HandlerDeps{Rooms: rooms, ChatLimiter: limiter})
	t.Cleanup(func() {
		rooms.AssertExpectations(t)
		limiter.AssertExpectations(t)
	})
	return h, rooms, limiter
}

func errorCode(t *testing.T, msg *protocol.Message) int {
	t.Helper()
	require.NotNil(t, msg)
	payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	return payload.Code
}

func TestHandler_UnknownMessageType(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	client := testutil.NewSimpleClient("c1", "")

	h.Handle(client, &protocol.Message{Type: "paint_bucket"})

	assert.Equal(t, protocol.ErrCodeInvalidMsg, errorCode(t, client.LastOfType(protocol.MsgError)))
}

func TestHandler_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	h, rooms, _ := newTestHandler(t)
	client := testutil.NewSimpleClient("c1", "")
	rooms.On("StartGame", client).Run(func(mock.Arguments) { panic("boom") })

	assert.NotPanics(t, func() {
		h.Handle(client, &protocol.Message{Type: protocol.MsgStartGame})
	})
	assert.Equal(t, protocol.ErrCodeUnknown, errorCode(t, client.LastOfType(protocol.MsgError)))
}

func TestHandler_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantSent bool
	}{
		{name: "validation", err: apperrors.ErrWrongPhase, wantCode: protocol.ErrCodeWrongPhase, wantSent: true},
		{name: "authorization", err: apperrors.ErrNotHost, wantCode: protocol.ErrCodeNotHost, wantSent: true},
		{name: "stale is silent", err: apperrors.ErrStaleOperation},
		{name: "internal game error", err: apperrors.ErrIllegalTransition, wantCode: protocol.ErrCodeUnknown, wantSent: true},
		{name: "plain error", err: errors.New("redis down"), wantCode: protocol.ErrCodeUnknown, wantSent: true},
		{name: "no error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, rooms, _ := newTestHandler(t)
			client := testutil.NewSimpleClient("c1", "")
			rooms.On("StartGame", client).Return(tt.err)

			h.Handle(client, &protocol.Message{Type: protocol.MsgStartGame})

			last := client.LastOfType(protocol.MsgError)
			if !tt.wantSent {
				assert.Nil(t, last)
				return
			}
			assert.Equal(t, tt.wantCode, errorCode(t, last))
		})
	}
}

func TestHandler_InvalidPayload(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	client := testutil.NewSimpleClient("c1", "")

	h.Handle(client, &protocol.Message{Type: protocol.MsgJoinRoom, Payload: []byte(`"not an object"`)})

	assert.Equal(t, protocol.ErrCodeInvalidMsg, errorCode(t, client.LastOfType(protocol.MsgError)))
}

func TestHandler_Ping(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	client := testutil.NewSimpleClient("c1", "")

	h.Handle(client, codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: 1234}))

	pong := client.LastOfType(protocol.MsgPong)
	require.NotNil(t, pong)
	payload, err := codec.ParsePayload[protocol.PongPayload](pong)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), payload.ClientTimestamp)
	assert.Positive(t, payload.ServerTimestamp)
}

func TestHandler_OnDisconnect(t *testing.T) {
	t.Parallel()

	t.Run("in room", func(t *testing.T) {
		t.Parallel()

		h, rooms, limiter := newTestHandler(t)
		client := testutil.NewSimpleClient("c1", "")
		client.SetRoom("ABC123")
		rooms.On("Disconnect", client).Return()
		limiter.On("RemoveClient", "c1").Return()

		h.OnDisconnect(client)
	})

	t.Run("not in room", func(t *testing.T) {
		t.Parallel()

		// Any call not registered here, such as SendMessage, fails the test
		h, rooms, limiter := newTestHandler(t)
		client := new(testutil.MockClient)
		client.On("GetRoom").Return("")
		client.On("GetID").Return("c2")
		limiter.On("RemoveClient", "c2").Return()

		h.OnDisconnect(client)

		client.AssertExpectations(t)
		rooms.AssertNotCalled(t, "Disconnect", mock.Anything)
	})
}
