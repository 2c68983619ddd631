package room

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-and-guess/internal/config"
	"github.com/palemoky/draw-and-guess/internal/game/timer"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/testutil"
)

type harness struct {
	t     *testing.T
	rm    *RoomManager
	clock *timer.FakeClock
}

func testGameConfig() config.GameConfig {
	return config.GameConfig{
		ChooseWordSeconds:   5,
		DrawingSeconds:      30,
		HintSeconds:         []int{10, 20},
		ResultsSeconds:      5,
		FinalResultsSeconds: 10,
		GraceSeconds:        3,
		RoomTimeout:         10,
		MaxPlayers:          8,
		MaxNameLength:       20,
		RoomCodeLength:      6,
		Words:               []string{"rocket", "banana", "castle"},
	}
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	return newHarnessWithConfig(t, testGameConfig(), opts...)
}

func newHarnessWithConfig(t *testing.T, cfg config.GameConfig, opts ...Option) *harness {
	t.Helper()
	clock := timer.NewFakeClock(time.Unix(1_700_000_000, 0))
	base := []Option{
		WithClock(clock),
		WithRand(func() *rand.Rand { return rand.New(rand.NewPCG(42, 7)) }),
	}
	rm := NewRoomManager(cfg, append(base, opts...)...)
	t.Cleanup(rm.Close)
	return &harness{t: t, rm: rm, clock: clock}
}

// setupRoom creates a room hosted by the first name and joins the rest
func (h *harness) setupRoom(names ...string) (*Room, []*testutil.SimpleClient) {
	h.t.Helper()
	clients := make([]*testutil.SimpleClient, len(names))
	for i, name := range names {
		clients[i] = testutil.NewSimpleClient("conn-"+name, name)
	}
	room, err := h.rm.CreateRoom(clients[0], names[0])
	require.NoError(h.t, err)
	for _, c := range clients[1:] {
		_, err := h.rm.JoinRoom(c, room.Code, c.Name)
		require.NoError(h.t, err)
	}
	return room, clients
}

// startedRoom returns a room in ChooseWord with the host as first drawer
func (h *harness) startedRoom(names ...string) (*Room, []*testutil.SimpleClient) {
	h.t.Helper()
	room, clients := h.setupRoom(names...)
	require.NoError(h.t, h.rm.StartGame(clients[0]))
	return room, clients
}

// drawingRoom returns a room in Drawing with the host drawing the given word
func (h *harness) drawingRoom(word string, names ...string) (*Room, []*testutil.SimpleClient) {
	h.t.Helper()
	room, clients := h.startedRoom(names...)
	require.NoError(h.t, h.rm.ChooseWord(clients[0], word))
	require.Equal(h.t, PhaseDrawing, room.Phase())
	return room, clients
}

// inspect runs fn with the room lock held
func inspect(r *Room, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

func payloadOf[T any](t *testing.T, msg *protocol.Message) *T {
	t.Helper()
	require.NotNil(t, msg)
	p, err := codec.ParsePayload[T](msg)
	require.NoError(t, err)
	return p
}

func scoreOf(r *Room, name string) int {
	score := -1
	inspect(r, func() {
		if p := r.playerByName(name); p != nil {
			score = p.Score
		}
	})
	return score
}
