package room

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/game/scoring"
	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// SendMessage 处理聊天消息：绘画阶段判定是否猜中，可能泄题的消息只发给画手和已猜中者
func (rm *RoomManager) SendMessage(client types.ClientInterface, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.unlock()

	id := client.GetID()
	sender := room.playerByID(id)
	if sender == nil {
		return apperrors.ErrNotInRoom
	}

	verdict := scoring.Evaluate(scoring.Guess{
		Drawing:        room.phase == PhaseDrawing && !room.wordGuessed,
		FromDrawer:     id == room.drawerID,
		AlreadyCorrect: room.correctGuessers[id],
		Text:           text,
		Word:           room.currentWord,
	})

	entry := protocol.ChatPayload{
		SenderID:   id,
		SenderName: sender.Name,
		Text:       text,
		Time:       room.now().UnixMilli(),
	}
	code := room.Code
	rm.async("AppendChat", func(ctx context.Context) error {
		return rm.events.Append(ctx, code, entry)
	})

	switch verdict {
	case scoring.VerdictCorrect:
		room.acceptGuess(sender)
	case scoring.VerdictLeaky:
		room.sendPrivateChat(entry)
	default:
		room.appendChat(entry)
		room.broadcast(codec.MustNewMessage(protocol.MsgChat, entry))
	}
	return nil
}

// acceptGuess 猜中：猜词者按用时得分，画手每轮只奖励一次
func (r *Room) acceptGuess(guesser *Player) {
	id := guesser.ID()
	points := scoring.Points(r.now().Sub(r.drawingStartedAt))

	guesser.Score += points
	r.correctGuessers[id] = true
	r.roundScores = append(r.roundScores, protocol.ScoreEntry{
		PlayerID: id,
		Points:   points,
		Reason:   scoring.ReasonCorrectGuess,
	})

	if drawer := r.playerByID(r.drawerID); drawer != nil && !r.drawerAwarded() {
		drawer.Score += scoring.DrawerBonus
		r.roundScores = append(r.roundScores, protocol.ScoreEntry{
			PlayerID: r.drawerID,
			Points:   scoring.DrawerBonus,
			Reason:   scoring.ReasonSuccessfulDrawing,
		})
	}

	logger.Debugf("🎯 房间 %s 玩家 %s 猜中，得 %d 分", r.Code, guesser.Name, points)

	r.sendTo(id, codec.MustNewMessage(protocol.MsgGuessResult, protocol.GuessResultPayload{
		Correct: true,
		Points:  points,
		Word:    r.currentWord,
	}))
	r.broadcastSystem(guesser.Name + " 猜中了！")

	if r.allGuessed() {
		r.endRound(false)
	}
	r.publishState()
}

// drawerAwarded 本轮画手是否已获得奖励
func (r *Room) drawerAwarded() bool {
	return slices.ContainsFunc(r.roundScores, func(e protocol.ScoreEntry) bool {
		return e.PlayerID == r.drawerID && e.Reason == scoring.ReasonSuccessfulDrawing
	})
}

// allGuessed 除画手外的所有玩家是否都已猜中
func (r *Room) allGuessed() bool {
	guessers := 0
	for _, p := range r.players {
		if p.ID() == r.drawerID {
			continue
		}
		guessers++
		if !r.correctGuessers[p.ID()] {
			return false
		}
	}
	return guessers > 0
}

// sendPrivateChat 只发给画手、已猜中者和发送者本人
func (r *Room) sendPrivateChat(entry protocol.ChatPayload) {
	msg := codec.MustNewMessage(protocol.MsgChat, entry)
	for _, p := range r.players {
		id := p.ID()
		if id == r.drawerID || r.correctGuessers[id] || id == entry.SenderID {
			p.Client.SendMessage(msg)
		}
	}
}

func (r *Room) appendChat(entry protocol.ChatPayload) {
	r.chat = append(r.chat, entry)
	if over := len(r.chat) - chatHistoryCap; over > 0 {
		r.chat = slices.Delete(r.chat, 0, over)
	}
}

// RelayDraw 转发画手的笔画并记入本轮画布历史
func (rm *RoomManager) RelayDraw(client types.ClientInterface, path json.RawMessage) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.unlock()

	if room.phase != PhaseDrawing {
		return apperrors.ErrWrongPhase
	}
	if client.GetID() != room.drawerID {
		return apperrors.ErrNotDrawer
	}

	stroke := append(json.RawMessage(nil), path...)
	room.canvas = append(room.canvas, stroke)
	room.broadcastExcept(room.drawerID, codec.MustNewMessage(protocol.MsgDraw, protocol.DrawPayload{
		SenderID: room.drawerID,
		Path:     stroke,
	}))
	return nil
}

// ClearCanvas 画手清空画布
func (rm *RoomManager) ClearCanvas(client types.ClientInterface) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.unlock()

	if room.phase != PhaseDrawing {
		return apperrors.ErrWrongPhase
	}
	if client.GetID() != room.drawerID {
		return apperrors.ErrNotDrawer
	}

	room.canvas = nil
	room.broadcastExcept(room.drawerID, codec.MustNewMessage(protocol.MsgCanvasCleared, nil))
	return nil
}
