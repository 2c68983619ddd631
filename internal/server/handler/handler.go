package handler

import (
	"encoding/json"
	"errors"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// RoomService 房间编排服务，由 room.RoomManager 实现
type RoomService interface {
	CreateRoom(client types.ClientInterface, displayName string) (*room.Room, error)
	JoinRoom(client types.ClientInterface, code, displayName string) (*room.Room, error)
	Reconnect(client types.ClientInterface, code, displayName string) (*protocol.ResyncPayload, error)
	LeaveRoom(client types.ClientInterface)
	Disconnect(client types.ClientInterface)
	StartGame(client types.ClientInterface) error
	ChooseWord(client types.ClientInterface, word string) error
	SendMessage(client types.ClientInterface, text string) error
	RelayDraw(client types.ClientInterface, path json.RawMessage) error
	ClearCanvas(client types.ClientInterface) error
	StartNewGame(client types.ClientInterface) error
	JoinNewGame(client types.ClientInterface) error
	GetRoomList() []protocol.RoomListItem
	GetActiveGamesCount() int
}

var _ RoomService = (*room.RoomManager)(nil)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Rooms       RoomService
	ChatLimiter types.ChatLimiter
}

// Handler 消息处理器
type Handler struct {
	rooms       RoomService
	chatLimiter types.ChatLimiter
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		rooms:       deps.Rooms,
		chatLimiter: deps.ChatLimiter,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgCreateRoom:    h.handleCreateRoom,
		protocol.MsgJoinRoom:      h.handleJoinRoom,
		protocol.MsgReconnectRoom: h.handleReconnectRoom,
		protocol.MsgLeaveRoom:     func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveRoom(c) },
		protocol.MsgGetRoomList:   func(c types.ClientInterface, _ *protocol.Message) { h.handleGetRoomList(c) },

		// 游戏操作
		protocol.MsgStartGame:    func(c types.ClientInterface, _ *protocol.Message) { h.handleStartGame(c) },
		protocol.MsgWordChosen:   h.handleWordChosen,
		protocol.MsgStartNewGame: func(c types.ClientInterface, _ *protocol.Message) { h.handleStartNewGame(c) },
		protocol.MsgJoinNewGame:  func(c types.ClientInterface, _ *protocol.Message) { h.handleJoinNewGame(c) },

		// 聊天与画布
		protocol.MsgSendMessage: h.handleSendMessage,
		protocol.MsgDraw:        h.handleDraw,
		protocol.MsgClearCanvas: func(c types.ClientInterface, _ *protocol.Message) { h.handleClearCanvas(c) },
	}
}

// Handle 处理消息，处理器内的 panic 只影响本条消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
		}
	}()

	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	logger.Warnf("⚠️  未知消息类型: '%s' (连接: %s, Payload长度=%d bytes)", msg.Type, client.GetID(), len(msg.Payload))
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// sendError 把编排层错误映射为发给请求方的 error 消息
func (h *Handler) sendError(client types.ClientInterface, op string, err error) {
	if err == nil {
		return
	}

	var gameErr *apperrors.GameError
	switch {
	case apperrors.IsStale(err):
		logger.Debugf("⏭️ %s 已过期，忽略 (连接: %s)", op, client.GetID())
	case errors.As(err, &gameErr) && gameErr.Kind != apperrors.KindInternal:
		client.SendMessage(codec.NewErrorMessage(gameErr.Code))
	default:
		logger.Errorf("❌ %s 失败 (连接: %s): %v", op, client.GetID(), err)
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
	}
}

// parse 解析 payload，失败时回复 invalid_msg
func parse[T any](client types.ClientInterface, msg *protocol.Message) (*T, bool) {
	payload, err := codec.ParsePayload[T](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return nil, false
	}
	return payload, true
}
