package room

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/game/hint"
	"github.com/palemoky/draw-and-guess/internal/game/timer"
	"github.com/palemoky/draw-and-guess/internal/game/words"
	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

var hintTimers = []string{timer.Hint1, timer.Hint2}

const (
	// 同一阶段内最多恢复的回调异常次数
	maxTimerRecoveries = 3
	// 截止时间已过时，恢复后重试的延迟
	timerRetryDelay = time.Second
)

// StartGame 房主开始游戏
func (rm *RoomManager) StartGame(client types.ClientInterface) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.unlock()

	if room.closed {
		return apperrors.ErrRoomNotFound
	}
	if client.GetID() != room.hostID {
		return apperrors.ErrNotHost
	}
	if room.phase != PhaseLobby {
		return apperrors.ErrWrongPhase
	}
	if len(room.players) < minPlayers {
		return apperrors.ErrNotEnoughPlayers
	}

	room.startGame()
	return nil
}

// startGame 生成出题顺序（房主第一，其余随机），重置分数
func (r *Room) startGame() {
	rest := make([]string, 0, len(r.players)-1)
	for _, p := range r.players {
		p.Score = 0
		p.ReadyForNextGame = false
		if p.ID() != r.hostID {
			rest = append(rest, p.ID())
		}
	}
	r.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })

	r.turnOrder = append([]string{r.hostID}, rest...)
	r.roundIndex = 0
	r.locked = true
	r.roundResults = nil
	r.ranking = nil

	logger.Infof("🎮 房间 %s 游戏开始，共 %d 轮", r.Code, len(r.turnOrder))

	code, ids := r.Code, slices.Clone(r.turnOrder)
	r.manager.async("GameStarted", func(ctx context.Context) error {
		return r.manager.ledger.GameStarted(ctx, code, ids)
	})

	r.enterChooseWord()
	r.publishState()
}

// enterChooseWord 进入选词阶段，跳过已离开的画手；出题顺序用尽则进入最终结果
func (r *Room) enterChooseWord() {
	if len(r.players) < minPlayers {
		r.enterFinalResults()
		return
	}
	for r.roundIndex < len(r.turnOrder) && r.playerByID(r.turnOrder[r.roundIndex]) == nil {
		logger.Debugf("⏭️ 房间 %s 第 %d 轮画手已离开，跳过", r.Code, r.roundIndex+1)
		r.roundIndex++
	}
	if r.roundIndex >= len(r.turnOrder) {
		r.enterFinalResults()
		return
	}
	if !r.transition(PhaseChooseWord) {
		return
	}

	r.sched.Cancel(timer.RoundTimers...)
	r.drawerID = r.turnOrder[r.roundIndex]
	r.resetRound()
	r.wordOptions = r.bank.DrawOptions(words.DefaultOptionCount)

	d := r.manager.cfg.ChooseWordDuration()
	r.phaseDeadline = r.now().Add(d)
	r.sched.Schedule(timer.AutoSelect, d, r.autoSelect)

	r.sendTo(r.drawerID, codec.MustNewMessage(protocol.MsgWordOptions, protocol.WordOptionsPayload{
		Options:    slices.Clone(r.wordOptions),
		DeadlineMs: r.deadlineMs(),
	}))
	r.broadcast(codec.MustNewMessage(protocol.MsgChooseWordPhase, protocol.ChooseWordPhasePayload{
		DrawerID:    r.drawerID,
		DrawerName:  r.nameOf(r.drawerID),
		Round:       r.roundIndex + 1,
		TotalRounds: len(r.turnOrder),
		DeadlineMs:  r.deadlineMs(),
	}))
}

func (r *Room) resetRound() {
	clear(r.correctGuessers)
	r.roundScores = nil
	r.currentWord = ""
	r.wordOptions = nil
	r.revealed = nil
	r.wordGuessed = false
	r.roundResults = nil
}

// ChooseWord 画手从候选词中选词
func (rm *RoomManager) ChooseWord(client types.ClientInterface, word string) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.unlock()

	if room.phase != PhaseChooseWord {
		return apperrors.ErrWrongPhase
	}
	if client.GetID() != room.drawerID {
		return apperrors.ErrNotDrawer
	}
	if !slices.Contains(room.wordOptions, word) {
		return apperrors.ErrInvalidWord
	}

	room.sched.Cancel(timer.AutoSelect)
	room.enterDrawing(word)
	room.publishState()
	return nil
}

// autoSelect 选词超时，从原候选词中随机选一个
func (r *Room) autoSelect() {
	if r.phase != PhaseChooseWord || r.currentWord != "" || len(r.wordOptions) == 0 {
		logger.Debugf("⏱️ 房间 %s 自动选词已过期", r.Code)
		return
	}
	word := r.wordOptions[r.rng.IntN(len(r.wordOptions))]
	logger.Debugf("🎲 房间 %s 自动选词", r.Code)
	r.enterDrawing(word)
	r.publishState()
}

// enterDrawing 进入绘画阶段：清空提示与画布，启动提示和回合定时器
func (r *Room) enterDrawing(word string) {
	if !r.transition(PhaseDrawing) {
		return
	}

	now := r.now()
	r.currentWord = word
	r.wordOptions = nil
	r.revealed = nil
	r.canvas = nil
	r.drawingStartedAt = now

	cfg := &r.manager.cfg
	r.phaseDeadline = now.Add(cfg.DrawingDuration())
	for i, delay := range cfg.HintDelays() {
		if i >= len(hintTimers) {
			break
		}
		r.sched.Schedule(hintTimers[i], delay, r.revealHint)
	}
	r.sched.Schedule(timer.RoundEnd, cfg.DrawingDuration(), r.roundTimeout)

	r.sendTo(r.drawerID, codec.MustNewMessage(protocol.MsgSecretWord, protocol.SecretWordPayload{Word: word}))
	r.broadcast(codec.MustNewMessage(protocol.MsgDrawingPhase, protocol.DrawingPhasePayload{
		DrawerID:   r.drawerID,
		DrawerName: r.nameOf(r.drawerID),
		MaskedWord: hint.Mask(word, nil),
		DeadlineMs: r.deadlineMs(),
	}))
}

func (r *Room) roundTimeout() {
	r.endRound(true)
	r.publishState()
}

// revealHint 揭示一个字符，仅发送给非画手
func (r *Room) revealHint() {
	if r.phase != PhaseDrawing || r.wordGuessed || len(r.revealed) >= hint.MaxReveals {
		return
	}
	h, ok := hint.Reveal(r.currentWord, r.revealed, r.rng)
	if !ok {
		return
	}
	r.revealed = append(r.revealed, h.Position)

	r.broadcastExcept(r.drawerID, codec.MustNewMessage(protocol.MsgWordHint, protocol.WordHintPayload{
		Position:   h.Position,
		Char:       h.Char,
		MaskedWord: hint.Mask(r.currentWord, r.revealed),
	}))
}

// endRound 结束本轮进入结果展示，timeout 表示由回合定时器触发
func (r *Room) endRound(timeout bool) {
	if r.phase != PhaseDrawing {
		return
	}
	if !r.transition(PhaseResults) {
		return
	}
	r.sched.Cancel(timer.Hint1, timer.Hint2, timer.RoundEnd)
	r.wordGuessed = true

	if timeout {
		r.broadcastSystem("时间到！答案是 " + r.currentWord)
	}

	d := r.manager.cfg.ResultsDuration()
	r.phaseDeadline = r.now().Add(d)
	r.roundResults = &protocol.RoundResultsPayload{
		Word:        r.currentWord,
		Round:       r.roundIndex + 1,
		RoundScores: slices.Clone(r.roundScores),
		Players:     r.playerInfos(),
		DeadlineMs:  r.deadlineMs(),
	}
	r.broadcast(codec.MustNewMessage(protocol.MsgRoundResults, *r.roundResults))
	r.sched.Schedule(timer.ResultsAdvance, d, r.advanceRound)
}

// advanceRound 结果展示结束，进入下一轮或最终结果
func (r *Room) advanceRound() {
	if r.phase != PhaseResults {
		return
	}
	r.roundIndex++
	if r.roundIndex >= len(r.turnOrder) {
		r.enterFinalResults()
	} else {
		r.enterChooseWord()
	}
	r.publishState()
}

// drawerLeft 画手离开：取消本轮定时器，直接跳到下一轮
func (r *Room) drawerLeft() {
	r.sched.Cancel(timer.RoundTimers...)
	r.broadcastSystem("画手离开，跳过本轮")
	r.roundIndex++
	r.drawerID = ""
	r.currentWord = ""
	r.wordOptions = nil
	if r.roundIndex >= len(r.turnOrder) {
		r.enterFinalResults()
		return
	}
	r.enterChooseWord()
}

// enterFinalResults 计算排名并展示，随后进入游戏结束
func (r *Room) enterFinalResults() {
	if !r.transition(PhaseFinalResults) {
		return
	}
	r.sched.Cancel(timer.RoundTimers...)
	r.drawerID = ""
	r.currentWord = ""
	r.wordOptions = nil
	r.roundResults = nil
	r.ranking = r.rankPlayers()

	d := r.manager.cfg.FinalResultsDuration()
	r.phaseDeadline = r.now().Add(d)
	r.broadcast(codec.MustNewMessage(protocol.MsgFinalResults, protocol.FinalResultsPayload{
		Ranking:    slices.Clone(r.ranking),
		DeadlineMs: r.deadlineMs(),
	}))
	r.sched.Schedule(timer.FinalAdvance, d, r.finalAdvance)

	logger.Infof("🏁 房间 %s 游戏结束", r.Code)

	code, ranking := r.Code, slices.Clone(r.ranking)
	r.manager.async("GameEnded", func(ctx context.Context) error {
		return r.manager.ledger.GameEnded(ctx, code, ranking)
	})
	r.manager.async("RecordGameResult", func(ctx context.Context) error {
		return r.manager.leaderboard.RecordGameResult(ctx, ranking)
	})
}

// rankPlayers 按分数降序稳定排序，同分保持加入顺序
func (r *Room) rankPlayers() []protocol.RankingEntry {
	sorted := slices.Clone(r.players)
	slices.SortStableFunc(sorted, func(a, b *Player) int {
		return cmp.Compare(b.Score, a.Score)
	})
	ranking := make([]protocol.RankingEntry, len(sorted))
	for i, p := range sorted {
		ranking[i] = protocol.RankingEntry{Rank: i + 1, PlayerID: p.ID(), Name: p.Name, Score: p.Score}
	}
	return ranking
}

func (r *Room) finalAdvance() {
	r.enterGameOver()
	r.publishState()
}

// enterGameOver 进入游戏结束，等待房主发起新游戏
func (r *Room) enterGameOver() {
	if !r.transition(PhaseGameOver) {
		return
	}
	r.phaseDeadline = time.Time{}
	for _, p := range r.players {
		p.ReadyForNextGame = false
	}
	r.broadcast(codec.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		Ranking: slices.Clone(r.ranking),
		HostID:  r.hostID,
	}))
}

// JoinNewGame 非房主玩家表示准备参加下一局
func (rm *RoomManager) JoinNewGame(client types.ClientInterface) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.unlock()

	if room.phase != PhaseGameOver {
		return apperrors.ErrWrongPhase
	}
	p := room.playerByID(client.GetID())
	if p == nil {
		return apperrors.ErrNotInRoom
	}
	p.ReadyForNextGame = true
	room.publishState()
	return nil
}

// StartNewGame 房主在所有玩家准备后返回大厅
func (rm *RoomManager) StartNewGame(client types.ClientInterface) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.unlock()

	if client.GetID() != room.hostID {
		return apperrors.ErrNotHost
	}
	if room.phase != PhaseGameOver {
		return apperrors.ErrWrongPhase
	}
	for _, p := range room.players {
		if p.ID() != room.hostID && !p.ReadyForNextGame {
			return apperrors.ErrPlayersNotReady
		}
	}
	if !room.transition(PhaseLobby) {
		return apperrors.ErrIllegalTransition
	}

	room.locked = false
	room.turnOrder = nil
	room.roundIndex = 0
	room.drawerID = ""
	room.resetRound()
	room.ranking = nil
	room.canvas = nil
	room.phaseDeadline = time.Time{}
	room.lobbySince = room.now()
	for _, p := range room.players {
		p.ReadyForNextGame = false
	}

	room.broadcastSystem("房主开启了新一局，等待开始")
	room.publishState()
	return nil
}

// transition 按切换表变更阶段，非法切换记录错误并保持原状态
func (r *Room) transition(to Phase) bool {
	if !CanTransition(r.phase, to) {
		logger.Errorf("❌ 房间 %s %v: %s -> %s", r.Code, apperrors.ErrIllegalTransition, r.phase, to)
		return false
	}
	logger.Debugf("🔀 房间 %s 阶段 %s -> %s", r.Code, r.phase, to)
	r.phase = to
	r.recoveries = 0
	return true
}

// recoverTimer 定时器回调异常后，按原截止时间补挂当前阶段的推进定时器，
// 阶段保持不变。调用方（调度器）持有房间锁
func (r *Room) recoverTimer(name string) {
	r.recoveries++
	if r.recoveries > maxTimerRecoveries {
		logger.Errorf("❌ 房间 %s 阶段 %s 定时器连续异常，停止恢复", r.Code, r.phase)
		return
	}

	driver, fn := r.phaseDriver()
	if driver == "" || r.sched.Pending(driver) {
		return
	}
	d := max(r.phaseDeadline.Sub(r.now()), timerRetryDelay)
	r.sched.Schedule(driver, d, fn)

	logger.Warnf("⏱️ 房间 %s 定时器 %s 异常，已补挂 %s (%v 后)", r.Code, name, driver, d)
}

// phaseDriver 返回推动当前阶段结束的定时器
func (r *Room) phaseDriver() (string, func()) {
	switch r.phase {
	case PhaseChooseWord:
		return timer.AutoSelect, r.autoSelect
	case PhaseDrawing:
		return timer.RoundEnd, r.roundTimeout
	case PhaseResults:
		return timer.ResultsAdvance, r.advanceRound
	case PhaseFinalResults:
		return timer.FinalAdvance, r.finalAdvance
	default:
		return "", nil
	}
}
