package handler

import (
	"time"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	// 立即回复 pong
	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// OnDisconnect 连接断开：玩家进入宽限期，释放限流器状态
func (h *Handler) OnDisconnect(client types.ClientInterface) {
	if client.GetRoom() != "" {
		h.rooms.Disconnect(client)
	}
	if h.chatLimiter != nil {
		h.chatLimiter.RemoveClient(client.GetID())
	}
}
