package handler

import (
	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, ok := parse[protocol.CreateRoomPayload](client, msg)
	if !ok {
		return
	}

	room, err := h.rooms.CreateRoom(client, payload.DisplayName)
	if err != nil {
		h.sendError(client, "创建房间", err)
		return
	}

	player, _ := room.PlayerInfo(client.GetID())
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomCode: room.Code,
		Player:   player,
	}))
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, ok := parse[protocol.JoinRoomPayload](client, msg)
	if !ok {
		return
	}

	room, err := h.rooms.JoinRoom(client, payload.RoomCode, payload.DisplayName)
	if err != nil {
		h.sendError(client, "加入房间", err)
		return
	}

	player, _ := room.PlayerInfo(client.GetID())
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomCode: room.Code,
		Player:   player,
		Players:  room.State().Players,
	}))
}

// handleReconnectRoom 处理断线重连，room_resync 由房间直接下发
func (h *Handler) handleReconnectRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, ok := parse[protocol.ReconnectRoomPayload](client, msg)
	if !ok {
		return
	}

	resync, err := h.rooms.Reconnect(client, payload.RoomCode, payload.DisplayName)
	if err != nil {
		h.sendError(client, "重连", err)
		return
	}

	logger.Infof("🔄 %s 重连房间 %s 成功（阶段 %s）", payload.DisplayName, resync.Room.RoomCode, resync.Room.Phase)
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	if client.GetRoom() == "" {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}
	h.rooms.LeaveRoom(client)
}

// handleGetRoomList 获取可加入的房间列表
func (h *Handler) handleGetRoomList(client types.ClientInterface) {
	rooms := h.rooms.GetRoomList()
	if rooms == nil {
		rooms = []protocol.RoomListItem{}
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomListResult, protocol.RoomListResultPayload{
		Rooms: rooms,
	}))
}
