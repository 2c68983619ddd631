package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-and-guess/internal/config"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Redis.Enabled = false
	cfg.Server.WireFormat = "json"
	cfg.Server.MaxConnections = 16
	cfg.Security.AllowedOrigins = []string{"*"}
	cfg.Security.ConnLimit = config.RateLimitConfig{PerSecond: 100, Burst: 100}
	cfg.Security.ChatLimit = config.RateLimitConfig{PerSecond: 100, Burst: 100}
	return cfg
}

func startTestServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	s, err := NewServer(cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s, ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType, payload any) {
	t.Helper()
	data, err := codec.Encode(codec.FormatJSON, codec.MustNewMessage(msgType, payload))
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

// readUntil reads frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want protocol.MessageType) *protocol.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", want)
		var msg protocol.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == want {
			return &msg
		}
	}
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	_, ts := startTestServer(t, testConfig())

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.False(t, body.Redis)
}

func TestServer_PingPong(t *testing.T) {
	t.Parallel()

	_, ts := startTestServer(t, testConfig())
	conn := dial(t, ts)

	send(t, conn, protocol.MsgPing, protocol.PingPayload{Timestamp: 42})

	pong := readUntil(t, conn, protocol.MsgPong)
	payload, err := codec.ParsePayload[protocol.PongPayload](pong)
	require.NoError(t, err)
	assert.Equal(t, int64(42), payload.ClientTimestamp)
}

func TestServer_InvalidFrame(t *testing.T) {
	t.Parallel()

	_, ts := startTestServer(t, testConfig())
	conn := dial(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	msg := readUntil(t, conn, protocol.MsgError)
	payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, payload.Code)
}

func TestServer_CreateJoinAndList(t *testing.T) {
	t.Parallel()

	_, ts := startTestServer(t, testConfig())
	host := dial(t, ts)
	guest := dial(t, ts)

	send(t, host, protocol.MsgCreateRoom, protocol.CreateRoomPayload{DisplayName: "Alice"})
	created, err := codec.ParsePayload[protocol.RoomCreatedPayload](readUntil(t, host, protocol.MsgRoomCreated))
	require.NoError(t, err)
	require.Len(t, created.RoomCode, 6)

	resp, err := http.Get(ts.URL + "/rooms")
	require.NoError(t, err)
	var list protocol.RoomListResultPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	_ = resp.Body.Close()
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, created.RoomCode, list.Rooms[0].RoomCode)

	send(t, guest, protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode:    strings.ToLower(created.RoomCode),
		DisplayName: "Bob",
	})
	joined, err := codec.ParsePayload[protocol.RoomJoinedPayload](readUntil(t, guest, protocol.MsgRoomJoined))
	require.NoError(t, err)
	assert.Equal(t, created.RoomCode, joined.RoomCode)
	assert.Len(t, joined.Players, 2)

	// Duplicate name is rejected on a third connection
	third := dial(t, ts)
	send(t, third, protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: created.RoomCode, DisplayName: "bob"})
	errPayload, err := codec.ParsePayload[protocol.ErrorPayload](readUntil(t, third, protocol.MsgError))
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeNameTaken, errPayload.Code)
}

func TestServer_DisconnectMarksPlayerOffline(t *testing.T) {
	t.Parallel()

	_, ts := startTestServer(t, testConfig())
	host := dial(t, ts)
	guest := dial(t, ts)

	send(t, host, protocol.MsgCreateRoom, protocol.CreateRoomPayload{DisplayName: "Alice"})
	created, err := codec.ParsePayload[protocol.RoomCreatedPayload](readUntil(t, host, protocol.MsgRoomCreated))
	require.NoError(t, err)

	send(t, guest, protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: created.RoomCode, DisplayName: "Bob"})
	readUntil(t, guest, protocol.MsgRoomJoined)

	require.NoError(t, host.Close())

	for {
		state, err := codec.ParsePayload[protocol.RoomStatePayload](readUntil(t, guest, protocol.MsgRoomState))
		require.NoError(t, err)
		var alice *protocol.PlayerInfo
		for i := range state.Players {
			if state.Players[i].Name == "Alice" {
				alice = &state.Players[i]
			}
		}
		require.NotNil(t, alice)
		if !alice.Online {
			break
		}
	}
}

func TestServer_OriginRejected(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Security.AllowedOrigins = []string{"https://good.example"}
	_, ts := startTestServer(t, cfg)

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_ConnRateLimited(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Security.ConnLimit = config.RateLimitConfig{PerSecond: 0.001, Burst: 1}
	_, ts := startTestServer(t, cfg)

	dial(t, ts)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestServer_MaintenanceRejectsConnections(t *testing.T) {
	t.Parallel()

	s, ts := startTestServer(t, testConfig())
	s.EnterMaintenanceMode()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_ProtobufWireFormat(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Server.WireFormat = "protobuf"
	_, ts := startTestServer(t, cfg)
	conn := dial(t, ts)

	data, err := codec.Encode(codec.FormatProtobuf, codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: 7}))
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, data))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	frameType, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, frameType)

	msg, err := codec.Decode(codec.FormatProtobuf, raw)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgPong, msg.Type)
	pong, err := codec.ParsePayload[protocol.PongPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pong.ClientTimestamp)
}

func TestServer_ShutdownNotifiesClients(t *testing.T) {
	t.Parallel()

	s, ts := startTestServer(t, testConfig())
	conn := dial(t, ts)

	// Make sure the connection is registered before shutting down
	send(t, conn, protocol.MsgPing, protocol.PingPayload{})
	readUntil(t, conn, protocol.MsgPong)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Shutdown(ctx)

	msg := readUntil(t, conn, protocol.MsgError)
	payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeServerShutdown, payload.Code)
}

func TestServer_Leaderboard(t *testing.T) {
	t.Parallel()

	t.Run("disabled without redis", func(t *testing.T) {
		t.Parallel()

		_, ts := startTestServer(t, testConfig())
		resp, err := http.Get(ts.URL + "/leaderboard")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("with redis", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		cfg := testConfig()
		cfg.Redis.Enabled = true
		cfg.Redis.Addr = mr.Addr()
		s, ts := startTestServer(t, cfg)

		require.NoError(t, s.leaderboard.RecordGameResult(context.Background(), []protocol.RankingEntry{
			{Rank: 1, Name: "Alice", Score: 300},
			{Rank: 2, Name: "Bob", Score: 100},
		}))

		resp, err := http.Get(ts.URL + "/leaderboard?limit=1")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var entries []storage.LeaderboardEntry
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "Alice", entries[0].PlayerName)
		assert.Equal(t, 300, entries[0].Score)

		bad, err := http.Get(ts.URL + "/leaderboard?limit=abc")
		require.NoError(t, err)
		defer bad.Body.Close()
		assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
	})
}

func TestNewServer_RedisUnavailable(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = addr

	_, err = NewServer(cfg)
	assert.Error(t, err)
}
