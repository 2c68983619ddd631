package handler

import (
	"strings"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// handleSendMessage 处理聊天/猜词
func (h *Handler) handleSendMessage(client types.ClientInterface, msg *protocol.Message) {
	payload, ok := parse[protocol.SendMessagePayload](client, msg)
	if !ok {
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		return
	}

	// 聊天限流检查
	if h.chatLimiter != nil {
		allowed, reason := h.chatLimiter.AllowChat(client.GetID())
		if !allowed {
			client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, reason))
			return
		}
	}

	h.sendError(client, "发送消息", h.rooms.SendMessage(client, payload.Text))
}

// handleDraw 透传画手笔画
func (h *Handler) handleDraw(client types.ClientInterface, msg *protocol.Message) {
	payload, ok := parse[protocol.DrawPayload](client, msg)
	if !ok {
		return
	}
	h.sendError(client, "笔画", h.rooms.RelayDraw(client, payload.Path))
}

// handleClearCanvas 画手清空画布
func (h *Handler) handleClearCanvas(client types.ClientInterface) {
	h.sendError(client, "清空画布", h.rooms.ClearCanvas(client))
}
