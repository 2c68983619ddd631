package room

import (
	"slices"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/game/hint"
	"github.com/palemoky/draw-and-guess/internal/game/timer"
	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// Reconnect 按昵称找回原玩家，把旧连接标识原位替换为新连接，并下发按阶段裁剪的完整状态
func (rm *RoomManager) Reconnect(client types.ClientInterface, code, displayName string) (*protocol.ResyncPayload, error) {
	room := rm.GetRoom(code)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	if cur := client.GetRoom(); cur != "" && cur != room.Code {
		rm.LeaveRoom(client)
	}

	room.mu.Lock()
	defer room.unlock()

	if room.closed {
		return nil, apperrors.ErrRoomNotFound
	}
	player := room.playerByName(displayName)
	if player == nil {
		return nil, apperrors.ErrPlayerNotFound
	}

	oldID, newID := player.ID(), client.GetID()
	// 一个连接只能占一个座位
	if oldID != newID && room.playerByID(newID) != nil {
		return nil, apperrors.ErrAlreadyInRoom
	}
	room.sched.Cancel(timer.Grace(oldID))
	if oldID != newID {
		// 同名旧连接仍在线时由新连接接管
		player.Client.SetRoom("")
	}
	player.Client = client
	player.Online = true
	client.SetRoom(room.Code)
	room.rebind(oldID, newID)

	resync := room.resyncFor(player)
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomResync, resync))
	if resync.AlreadyGuessed {
		client.SendMessage(codec.MustNewMessage(protocol.MsgGuessResult, protocol.GuessResultPayload{
			Correct:        true,
			Word:           room.currentWord,
			AlreadyGuessed: true,
		}))
	}

	room.broadcastExcept(newID, codec.MustNewMessage(protocol.MsgSystem, protocol.SystemPayload{
		Text: player.Name + " 重新连接",
		Time: room.now().UnixMilli(),
	}))
	room.publishState()

	logger.Infof("📶 玩家 %s 重连到房间 %s (%s -> %s)", player.Name, room.Code, oldID, newID)

	return resync, nil
}

// rebind 将所有引用旧连接标识的位置原位改写为新标识
func (r *Room) rebind(oldID, newID string) {
	if oldID == newID {
		return
	}
	if r.hostID == oldID {
		r.hostID = newID
	}
	if r.drawerID == oldID {
		r.drawerID = newID
	}
	for i, id := range r.turnOrder {
		if id == oldID {
			r.turnOrder[i] = newID
		}
	}
	if r.correctGuessers[oldID] {
		delete(r.correctGuessers, oldID)
		r.correctGuessers[newID] = true
	}
	for i := range r.roundScores {
		if r.roundScores[i].PlayerID == oldID {
			r.roundScores[i].PlayerID = newID
		}
	}
	for i := range r.ranking {
		if r.ranking[i].PlayerID == oldID {
			r.ranking[i].PlayerID = newID
		}
	}
}

// resyncFor 构造重连同步数据，调用方持有房间锁
func (r *Room) resyncFor(p *Player) *protocol.ResyncPayload {
	id := p.ID()
	resync := &protocol.ResyncPayload{
		Room:            r.statePayload(),
		SelfID:          id,
		DrawerID:        r.drawerID,
		TotalRounds:     len(r.turnOrder),
		RemainingMs:     r.remainingMs(),
		ChatHistory:     slices.Clone(r.chat),
		ReadyForNewGame: p.ReadyForNextGame,
	}
	if r.phase.InGame() {
		resync.Round = r.roundIndex + 1
	}

	switch r.phase {
	case PhaseChooseWord:
		if id == r.drawerID {
			resync.WordOptions = slices.Clone(r.wordOptions)
		}
	case PhaseDrawing:
		resync.CanvasHistory = slices.Clone(r.canvas)
		resync.AlreadyGuessed = r.correctGuessers[id]
		if id == r.drawerID {
			resync.SecretWord = r.currentWord
		} else {
			resync.MaskedWord = hint.Mask(r.currentWord, r.revealed)
		}
	case PhaseResults:
		resync.CanvasHistory = slices.Clone(r.canvas)
		if r.roundResults != nil {
			results := *r.roundResults
			results.RoundScores = slices.Clone(r.roundScores)
			results.Players = r.playerInfos()
			resync.RoundResults = &results
		}
	case PhaseFinalResults, PhaseGameOver:
		resync.Ranking = slices.Clone(r.ranking)
	}
	return resync
}
