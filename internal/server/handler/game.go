package handler

import (
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// handleStartGame 房主开始游戏
func (h *Handler) handleStartGame(client types.ClientInterface) {
	h.sendError(client, "开始游戏", h.rooms.StartGame(client))
}

// handleWordChosen 画手选词
func (h *Handler) handleWordChosen(client types.ClientInterface, msg *protocol.Message) {
	payload, ok := parse[protocol.WordChosenPayload](client, msg)
	if !ok {
		return
	}
	h.sendError(client, "选词", h.rooms.ChooseWord(client, payload.Word))
}

// handleStartNewGame 房主开启新一局
func (h *Handler) handleStartNewGame(client types.ClientInterface) {
	h.sendError(client, "开启新一局", h.rooms.StartNewGame(client))
}

// handleJoinNewGame 玩家确认参加新一局
func (h *Handler) handleJoinNewGame(client types.ClientInterface) {
	h.sendError(client, "确认新一局", h.rooms.JoinNewGame(client))
}
