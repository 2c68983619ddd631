package room

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-and-guess/internal/game/timer"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/testutil"
)

// faultyClient panics the first time it is sent a message of the given type
type faultyClient struct {
	*testutil.SimpleClient
	failOn protocol.MessageType
	failed atomic.Bool
}

func (c *faultyClient) SendMessage(msg *protocol.Message) {
	if msg.Type == c.failOn && c.failed.CompareAndSwap(false, true) {
		panic("send failed")
	}
	c.SimpleClient.SendMessage(msg)
}

func TestTimerPanic_ResultsAdvanceIsRearmed(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	host := testutil.NewSimpleClient("conn-Host", "Host")
	guest := &faultyClient{SimpleClient: testutil.NewSimpleClient("conn-P2", "P2"), failOn: protocol.MsgRoundResults}

	room, err := h.rm.CreateRoom(host, "Host")
	require.NoError(t, err)
	_, err = h.rm.JoinRoom(guest, room.Code, "P2")
	require.NoError(t, err)
	require.NoError(t, h.rm.StartGame(host))
	require.NoError(t, h.rm.ChooseWord(host, "rocket"))

	// roundEnd panics after entering Results but before scheduling the advance
	assert.NotPanics(t, func() { h.clock.Advance(30 * time.Second) })
	require.True(t, guest.failed.Load())

	inspect(room, func() {
		assert.Equal(t, PhaseResults, room.phase)
		assert.True(t, room.sched.Pending(timer.ResultsAdvance))
	})

	h.clock.Advance(5 * time.Second)
	inspect(room, func() {
		assert.Equal(t, PhaseChooseWord, room.phase)
		assert.Equal(t, 1, room.roundIndex)
		assert.Equal(t, "conn-P2", room.drawerID)
	})
}

func TestTimerPanic_RecoveryIsBounded(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, _ := h.drawingRoom("rocket", "Host", "P2")

	inspect(room, func() {
		room.sched.Cancel(timer.RoundEnd)
		for range maxTimerRecoveries {
			room.recoverTimer(timer.Hint1)
			require.True(t, room.sched.Pending(timer.RoundEnd))
			room.sched.Cancel(timer.RoundEnd)
		}
		room.recoverTimer(timer.Hint1)
		assert.False(t, room.sched.Pending(timer.RoundEnd))
	})
}

func TestTimerPanic_LivePhaseTimerIsKept(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, _ := h.drawingRoom("rocket", "Host", "P2")

	h.clock.Advance(10 * time.Second)
	inspect(room, func() {
		room.recoverTimer(timer.Hint1)
		assert.True(t, room.sched.Pending(timer.RoundEnd))
		assert.Equal(t, PhaseDrawing, room.phase)
	})

	// The original deadline still ends the round
	h.clock.Advance(20 * time.Second)
	assert.Equal(t, PhaseResults, room.Phase())
}
