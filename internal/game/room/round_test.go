package room

import (
	"slices"
	"sync"
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/game/scoring"
	"github.com/palemoky/draw-and-guess/internal/game/timer"
	"github.com/palemoky/draw-and-guess/internal/protocol"
)

func TestStartGame_TurnOrderIsHostFirstPermutation(t *testing.T) {
	t.Parallel()

	for n := 2; n <= 6; n++ {
		names := []string{"Host", "P2", "P3", "P4", "P5", "P6"}[:n]
		h := newHarness(t)
		room, clients := h.startedRoom(names...)

		inspect(room, func() {
			require.Len(t, room.turnOrder, n)
			assert.Equal(t, room.hostID, room.turnOrder[0])

			want := make([]string, 0, n)
			for _, c := range clients {
				want = append(want, c.GetID())
			}
			assert.ElementsMatch(t, want, room.turnOrder)
			assert.Equal(t, 0, room.roundIndex)
			assert.True(t, room.locked)
			assert.Equal(t, PhaseChooseWord, room.phase)
			assert.Equal(t, room.hostID, room.drawerID)
		})
	}
}

func TestStartGame_Errors(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	_, solo := h.setupRoom("Solo")
	assert.ErrorIs(t, h.rm.StartGame(solo[0]), apperrors.ErrNotEnoughPlayers)

	room, clients := h.setupRoom("Host", "P2")
	assert.ErrorIs(t, h.rm.StartGame(clients[1]), apperrors.ErrNotHost)
	assert.Equal(t, PhaseLobby, room.Phase())

	require.NoError(t, h.rm.StartGame(clients[0]))
	assert.ErrorIs(t, h.rm.StartGame(clients[0]), apperrors.ErrWrongPhase)
}

func TestStartGame_ResetsScores(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.setupRoom("Host", "P2")
	inspect(room, func() {
		for _, p := range room.players {
			p.Score = 999
		}
	})
	require.NoError(t, h.rm.StartGame(clients[0]))
	assert.Equal(t, 0, scoreOf(room, "Host"))
	assert.Equal(t, 0, scoreOf(room, "P2"))
}

func TestChooseWordPhase_Messages(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	_, clients := h.startedRoom("Host", "P2")
	host, p2 := clients[0], clients[1]

	options := payloadOf[protocol.WordOptionsPayload](t, host.LastOfType(protocol.MsgWordOptions))
	assert.ElementsMatch(t, []string{"rocket", "banana", "castle"}, options.Options)
	assert.Empty(t, p2.MessagesOfType(protocol.MsgWordOptions), "options are private to the drawer")

	announce := payloadOf[protocol.ChooseWordPhasePayload](t, p2.LastOfType(protocol.MsgChooseWordPhase))
	assert.Equal(t, "conn-Host", announce.DrawerID)
	assert.Equal(t, "Host", announce.DrawerName)
	assert.Equal(t, 1, announce.Round)
	assert.Equal(t, 2, announce.TotalRounds)
}

func TestChooseWord_Errors(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.setupRoom("Host", "P2")
	assert.ErrorIs(t, h.rm.ChooseWord(clients[0], "rocket"), apperrors.ErrWrongPhase)

	require.NoError(t, h.rm.StartGame(clients[0]))
	assert.ErrorIs(t, h.rm.ChooseWord(clients[1], "rocket"), apperrors.ErrNotDrawer)
	assert.ErrorIs(t, h.rm.ChooseWord(clients[0], "dragon"), apperrors.ErrInvalidWord)
	assert.Equal(t, PhaseChooseWord, room.Phase())
}

func TestChooseWord_ManualCancelsAutoSelect(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.startedRoom("Host", "P2")

	h.clock.Advance(2 * time.Second)
	require.NoError(t, h.rm.ChooseWord(clients[0], "rocket"))

	var scoresBefore []protocol.ScoreEntry
	inspect(room, func() {
		assert.False(t, room.sched.Pending(timer.AutoSelect))
		scoresBefore = slices.Clone(room.roundScores)
	})

	// The superseded auto-select deadline passes without effect
	h.clock.Advance(5 * time.Second)
	inspect(room, func() {
		assert.Equal(t, PhaseDrawing, room.phase)
		assert.Equal(t, "rocket", room.currentWord)
		assert.Equal(t, scoresBefore, room.roundScores)
	})
	assert.Len(t, clients[0].MessagesOfType(protocol.MsgSecretWord), 1)
}

func TestChooseWord_StaleAutoSelectIsNoop(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.drawingRoom("banana", "Host", "P2")

	// Invoking the auto-select body directly after a manual choice changes nothing
	room.mu.Lock()
	room.autoSelect()
	room.unlock()

	inspect(room, func() {
		assert.Equal(t, PhaseDrawing, room.phase)
		assert.Equal(t, "banana", room.currentWord)
		assert.Empty(t, room.roundScores)
	})
	assert.Len(t, clients[0].MessagesOfType(protocol.MsgSecretWord), 1)
}

func TestAutoSelect_PicksFromOriginalOptions(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.startedRoom("Host", "P2")
	options := payloadOf[protocol.WordOptionsPayload](t, clients[0].LastOfType(protocol.MsgWordOptions)).Options

	h.clock.Advance(5 * time.Second)

	inspect(room, func() {
		assert.Equal(t, PhaseDrawing, room.phase)
		assert.Contains(t, options, room.currentWord)
	})
	secret := payloadOf[protocol.SecretWordPayload](t, clients[0].LastOfType(protocol.MsgSecretWord))
	assert.Contains(t, options, secret.Word)
	assert.Empty(t, clients[1].MessagesOfType(protocol.MsgSecretWord))
}

func TestChooseWord_ConcurrentWithAutoSelect(t *testing.T) {
	t.Parallel()

	for range 20 {
		h := newHarness(t)
		room, clients := h.startedRoom("Host", "P2")
		h.clock.Advance(4*time.Second + 900*time.Millisecond)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = h.rm.ChooseWord(clients[0], "castle")
		}()
		go func() {
			defer wg.Done()
			h.clock.Advance(time.Second)
		}()
		wg.Wait()

		assert.Equal(t, PhaseDrawing, room.Phase())
		assert.Len(t, clients[0].MessagesOfType(protocol.MsgSecretWord), 1, "drawing is entered exactly once")
		assert.Len(t, clients[1].MessagesOfType(protocol.MsgDrawingPhase), 1)
	}
}

func TestDrawing_HintsRevealTwoNonWhitespacePositions(t *testing.T) {
	t.Parallel()

	cfg := testGameConfig()
	cfg.Words = []string{"hot dog", "ice cream", "fire truck"}
	h := newHarnessWithConfig(t, cfg)
	room, clients := h.drawingRoom("hot dog", "Host", "P2", "P3")

	h.clock.Advance(10 * time.Second)
	inspect(room, func() { assert.Len(t, room.revealed, 1) })
	h.clock.Advance(10 * time.Second)

	inspect(room, func() {
		require.Len(t, room.revealed, 2)
		word := []rune(room.currentWord)
		for _, pos := range room.revealed {
			assert.False(t, unicode.IsSpace(word[pos]))
		}
		assert.NotEqual(t, room.revealed[0], room.revealed[1])
	})

	assert.Empty(t, clients[0].MessagesOfType(protocol.MsgWordHint), "drawer gets no hints")
	hints := clients[1].MessagesOfType(protocol.MsgWordHint)
	require.Len(t, hints, 2)
	last := payloadOf[protocol.WordHintPayload](t, hints[1])
	assert.Equal(t, 7, len([]rune(last.MaskedWord)))
	assert.Equal(t, ' ', []rune(last.MaskedWord)[3])
	assert.Len(t, clients[2].MessagesOfType(protocol.MsgWordHint), 2)
}

func TestDrawing_HintSkippedAfterWordGuessed(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, _ := h.drawingRoom("rocket", "Host", "P2")

	inspect(room, func() {
		room.wordGuessed = true
		room.revealHint()
		assert.Empty(t, room.revealed)
	})
}

func TestScenario_ABC123(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.setupRoom("Host", "P2", "P3")
	host, p2, p3 := clients[0], clients[1], clients[2]

	// Rebind the generated room to the scenario's code
	h.rm.mu.Lock()
	delete(h.rm.rooms, room.Code)
	room.Code = "ABC123"
	h.rm.rooms[room.Code] = room
	h.rm.mu.Unlock()
	for _, c := range clients {
		c.SetRoom("ABC123")
	}

	require.NoError(t, h.rm.StartGame(host))
	inspect(room, func() {
		assert.Equal(t, "conn-Host", room.turnOrder[0])
		assert.ElementsMatch(t, []string{"conn-Host", "conn-P2", "conn-P3"}, room.turnOrder)
		assert.Equal(t, "conn-Host", room.drawerID)
	})

	// Host picks manually at t=2s: drawing starts without waiting for the 5s timer
	h.clock.Advance(2 * time.Second)
	require.NoError(t, h.rm.ChooseWord(host, "rocket"))
	assert.Equal(t, PhaseDrawing, room.Phase())

	// P2 guesses at t=10s of drawing
	h.clock.Advance(10 * time.Second)
	require.NoError(t, h.rm.SendMessage(p2, "rocket"))

	assert.Equal(t, 140, scoreOf(room, "P2"))
	assert.Equal(t, 50, scoreOf(room, "Host"))
	assert.Equal(t, 0, scoreOf(room, "P3"))

	result := payloadOf[protocol.GuessResultPayload](t, p2.LastOfType(protocol.MsgGuessResult))
	assert.True(t, result.Correct)
	assert.Equal(t, 140, result.Points)
	assert.Nil(t, p3.LastOfType(protocol.MsgGuessResult))

	inspect(room, func() {
		assert.Equal(t, []protocol.ScoreEntry{
			{PlayerID: "conn-P2", Points: 140, Reason: scoring.ReasonCorrectGuess},
			{PlayerID: "conn-Host", Points: 50, Reason: scoring.ReasonSuccessfulDrawing},
		}, room.roundScores)
	})

	// P3 has not guessed: the round runs until the 30s deadline
	h.clock.Advance(19 * time.Second)
	assert.Equal(t, PhaseDrawing, room.Phase())
	h.clock.Advance(time.Second)
	assert.Equal(t, PhaseResults, room.Phase())

	results := payloadOf[protocol.RoundResultsPayload](t, p3.LastOfType(protocol.MsgRoundResults))
	assert.Equal(t, "rocket", results.Word)
	assert.Equal(t, 1, results.Round)
	assert.Len(t, results.RoundScores, 2)
}

func TestDrawing_EarlyEndWhenAllGuessed(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.drawingRoom("castle", "Host", "P2", "P3", "P4")

	h.clock.Advance(3 * time.Second)
	require.NoError(t, h.rm.SendMessage(clients[1], "castle"))
	require.NoError(t, h.rm.SendMessage(clients[2], " CASTLE "))
	assert.Equal(t, PhaseDrawing, room.Phase())
	require.NoError(t, h.rm.SendMessage(clients[3], "Castle"))

	assert.Equal(t, PhaseResults, room.Phase(), "round ends before the 30s timer")
	inspect(room, func() {
		assert.True(t, room.wordGuessed)
		assert.False(t, room.sched.Pending(timer.RoundEnd))
		assert.True(t, room.sched.Pending(timer.ResultsAdvance))

		drawerAwards := 0
		for _, e := range room.roundScores {
			if e.Reason == scoring.ReasonSuccessfulDrawing {
				drawerAwards++
			}
		}
		assert.Equal(t, 1, drawerAwards, "drawer bonus is awarded once per round")
	})
	assert.Equal(t, 50, scoreOf(room, "Host"))
	assert.Equal(t, 147, scoreOf(room, "P2"))
}

func TestDrawing_TimeoutRevealsWord(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.drawingRoom("banana", "Host", "P2")

	h.clock.Advance(30 * time.Second)
	assert.Equal(t, PhaseResults, room.Phase())

	results := payloadOf[protocol.RoundResultsPayload](t, clients[1].LastOfType(protocol.MsgRoundResults))
	assert.Equal(t, "banana", results.Word)
	assert.Empty(t, results.RoundScores)

	sys := payloadOf[protocol.SystemPayload](t, clients[1].LastOfType(protocol.MsgSystem))
	assert.Contains(t, sys.Text, "banana")
}

func TestGuess_RejectedCases(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.drawingRoom("rocket", "Host", "P2", "P3")
	host, p2 := clients[0], clients[1]

	// The drawer typing the word scores nothing
	require.NoError(t, h.rm.SendMessage(host, "rocket"))
	assert.Equal(t, 0, scoreOf(room, "Host"))

	require.NoError(t, h.rm.SendMessage(p2, "rocket"))
	first := scoreOf(room, "P2")

	// A second correct guess is not scored again
	h.clock.Advance(5 * time.Second)
	require.NoError(t, h.rm.SendMessage(p2, "rocket"))
	assert.Equal(t, first, scoreOf(room, "P2"))
	assert.Len(t, p2.MessagesOfType(protocol.MsgGuessResult), 1)
}

func TestChat_LeakyMessagesStayPrivate(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.drawingRoom("rocket", "Host", "P2", "P3")
	host, p2, p3 := clients[0], clients[1], clients[2]

	require.NoError(t, h.rm.SendMessage(p2, "rocket"))
	host.Reset()
	p2.Reset()
	p3.Reset()

	// Correct guesser chatting: visible to drawer and correct guessers only
	require.NoError(t, h.rm.SendMessage(p2, "that was easy"))
	assert.Len(t, host.MessagesOfType(protocol.MsgChat), 1)
	assert.Len(t, p2.MessagesOfType(protocol.MsgChat), 1)
	assert.Empty(t, p3.MessagesOfType(protocol.MsgChat))

	// Drawer chatting is private too
	require.NoError(t, h.rm.SendMessage(host, "nice"))
	assert.Empty(t, p3.MessagesOfType(protocol.MsgChat))

	// A near-miss containing the answer is not broadcast
	require.NoError(t, h.rm.SendMessage(p3, "rocket ship?"))
	assert.Len(t, p3.MessagesOfType(protocol.MsgChat), 1)
	assert.Equal(t, 0, scoreOf(room, "P3"))

	// Ordinary chat goes to everyone and into history
	require.NoError(t, h.rm.SendMessage(p3, "is it a tower"))
	assert.Len(t, host.MessagesOfType(protocol.MsgChat), 4)
	inspect(room, func() {
		require.Len(t, room.chat, 1)
		assert.Equal(t, "is it a tower", room.chat[0].Text)
	})
}

func TestChat_OutsideDrawingIsPlainChat(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.setupRoom("Host", "P2")
	require.NoError(t, h.rm.SendMessage(clients[1], "hello"))
	require.NoError(t, h.rm.SendMessage(clients[1], "   "))

	assert.Len(t, clients[0].MessagesOfType(protocol.MsgChat), 1)
	inspect(room, func() { assert.Len(t, room.chat, 1) })
}

func TestChat_HistoryIsBounded(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.setupRoom("Host", "P2")
	for i := range chatHistoryCap + 20 {
		require.NoError(t, h.rm.SendMessage(clients[1], string(rune('a'+i%26))))
	}
	inspect(room, func() { assert.Len(t, room.chat, chatHistoryCap) })
}

func TestScenario_TurnOrderExhaustedGoesToFinalResults(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.startedRoom("Host", "P2")
	p2 := clients[1]

	// Round 1: auto-select, full drawing, results
	h.clock.Advance(5*time.Second + 30*time.Second + 5*time.Second)
	inspect(room, func() {
		assert.Equal(t, PhaseChooseWord, room.phase)
		assert.Equal(t, 1, room.roundIndex)
		assert.Equal(t, "conn-P2", room.drawerID)
	})

	// Round 2 ends; the turn order is exhausted
	h.clock.Advance(5*time.Second + 30*time.Second + 5*time.Second)
	inspect(room, func() {
		assert.Equal(t, PhaseFinalResults, room.phase)
		assert.Equal(t, len(room.turnOrder), room.roundIndex)
	})
	assert.Len(t, p2.MessagesOfType(protocol.MsgChooseWordPhase), 2, "ChooseWord is never re-entered")
	assert.NotNil(t, p2.LastOfType(protocol.MsgFinalResults))

	h.clock.Advance(10 * time.Second)
	assert.Equal(t, PhaseGameOver, room.Phase())
	over := payloadOf[protocol.GameOverPayload](t, p2.LastOfType(protocol.MsgGameOver))
	assert.Equal(t, "conn-Host", over.HostID)
	assert.Len(t, over.Ranking, 2)
}

func TestFinalResults_StableRanking(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, _ := h.setupRoom("A", "B", "C", "D")
	inspect(room, func() {
		room.players[0].Score = 100
		room.players[1].Score = 200
		room.players[2].Score = 100
		room.players[3].Score = 200

		ranking := room.rankPlayers()
		names := make([]string, len(ranking))
		for i, e := range ranking {
			names[i] = e.Name
			assert.Equal(t, i+1, e.Rank)
		}
		assert.Equal(t, []string{"B", "D", "A", "C"}, names)
	})
}

func TestNewGame_ReadinessGate(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.startedRoom("Host", "P2", "P3")
	host, p2, p3 := clients[0], clients[1], clients[2]

	assert.ErrorIs(t, h.rm.JoinNewGame(p2), apperrors.ErrWrongPhase)

	// Three rounds of auto-played turns, then final results
	h.clock.Advance(3*40*time.Second + 10*time.Second)
	require.Equal(t, PhaseGameOver, room.Phase())

	assert.ErrorIs(t, h.rm.StartNewGame(p2), apperrors.ErrNotHost)
	assert.ErrorIs(t, h.rm.StartNewGame(host), apperrors.ErrPlayersNotReady)

	require.NoError(t, h.rm.JoinNewGame(p2))
	assert.ErrorIs(t, h.rm.StartNewGame(host), apperrors.ErrPlayersNotReady)
	require.NoError(t, h.rm.JoinNewGame(p3))
	require.NoError(t, h.rm.StartNewGame(host))

	state := room.State()
	assert.Equal(t, "lobby", state.Phase)
	assert.False(t, state.Locked)

	// A fresh game can start from the lobby again
	require.NoError(t, h.rm.StartGame(host))
	assert.Equal(t, PhaseChooseWord, room.Phase())
}

func TestDrawerLeaves_SkipsToNextRound(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.drawingRoom("rocket", "Host", "P2", "P3")

	var second string
	inspect(room, func() { second = room.turnOrder[1] })

	h.rm.LeaveRoom(clients[0])

	inspect(room, func() {
		assert.Equal(t, PhaseChooseWord, room.phase)
		assert.Equal(t, 1, room.roundIndex)
		assert.Equal(t, second, room.drawerID)
		assert.Len(t, room.turnOrder, 3, "turn order keeps the departed slot")
		assert.False(t, room.sched.Pending(timer.RoundEnd))
		assert.False(t, room.sched.Pending(timer.Hint1))
		assert.True(t, room.sched.Pending(timer.AutoSelect))
		assert.NotEqual(t, "conn-Host", room.hostID)
	})
}

func TestChooseWord_SkipsDepartedDrawers(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.startedRoom("Host", "P2", "P3", "P4")

	var order []string
	inspect(room, func() { order = slices.Clone(room.turnOrder) })

	// The second drawer leaves while the host is still choosing
	for _, c := range clients {
		if c.GetID() == order[1] {
			h.rm.LeaveRoom(c)
		}
	}

	// Round 1 runs to completion; round 2's drawer is gone and gets skipped
	h.clock.Advance(40 * time.Second)
	inspect(room, func() {
		assert.Equal(t, PhaseChooseWord, room.phase)
		assert.Equal(t, 2, room.roundIndex)
		assert.Equal(t, order[2], room.drawerID)
	})
}

func TestPlayersDropBelowTwo_GoesToFinalResults(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.drawingRoom("rocket", "Host", "P2")

	h.rm.LeaveRoom(clients[1])
	assert.Equal(t, PhaseFinalResults, room.Phase())

	h.clock.Advance(10 * time.Second)
	assert.Equal(t, PhaseGameOver, room.Phase())
}

func TestLeave_AllRemainingGuessedEndsRound(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.drawingRoom("rocket", "Host", "P2", "P3")

	require.NoError(t, h.rm.SendMessage(clients[1], "rocket"))
	assert.Equal(t, PhaseDrawing, room.Phase())

	h.rm.LeaveRoom(clients[2])
	assert.Equal(t, PhaseResults, room.Phase())
}

func TestCanvasRelay(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	room, clients := h.drawingRoom("rocket", "Host", "P2")
	host, p2 := clients[0], clients[1]

	stroke := []byte(`{"points":[[1,2],[3,4]],"color":"#000"}`)
	require.NoError(t, h.rm.RelayDraw(host, stroke))
	assert.ErrorIs(t, h.rm.RelayDraw(p2, stroke), apperrors.ErrNotDrawer)

	relayed := payloadOf[protocol.DrawPayload](t, p2.LastOfType(protocol.MsgDraw))
	assert.JSONEq(t, string(stroke), string(relayed.Path))
	assert.Equal(t, "conn-Host", relayed.SenderID)
	assert.Empty(t, host.MessagesOfType(protocol.MsgDraw))
	inspect(room, func() { assert.Len(t, room.canvas, 1) })

	require.NoError(t, h.rm.ClearCanvas(host))
	assert.NotNil(t, p2.LastOfType(protocol.MsgCanvasCleared))
	inspect(room, func() { assert.Empty(t, room.canvas) })

	// Canvas history resets when the next drawing phase starts
	require.NoError(t, h.rm.RelayDraw(host, stroke))
	h.clock.Advance(30*time.Second + 5*time.Second + 5*time.Second)
	inspect(room, func() {
		assert.Equal(t, PhaseDrawing, room.phase)
		assert.Empty(t, room.canvas)
	})

	assert.ErrorIs(t, h.rm.ClearCanvas(host), apperrors.ErrNotDrawer, "the drawer has rotated to P2")
}
