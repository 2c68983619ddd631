package transport

import (
	"encoding/json"
	"time"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
)

// --- 便捷方法 ---

// CreateRoom 创建房间
func (c *Client) CreateRoom(displayName string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{
		DisplayName: displayName,
	}))
}

// JoinRoom 加入房间
func (c *Client) JoinRoom(roomCode, displayName string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode:    roomCode,
		DisplayName: displayName,
	}))
}

// ReconnectRoom 以昵称找回房间中的座位
func (c *Client) ReconnectRoom(roomCode, displayName string) error {
	c.setRoom(roomCode, displayName)
	return c.SendMessage(codec.MustNewMessage(protocol.MsgReconnectRoom, protocol.ReconnectRoomPayload{
		RoomCode:    roomCode,
		DisplayName: displayName,
	}))
}

// LeaveRoom 离开房间
func (c *Client) LeaveRoom() error {
	c.setRoom("", "")
	return c.SendMessage(codec.MustNewMessage(protocol.MsgLeaveRoom, nil))
}

// GetRoomList 获取房间列表
func (c *Client) GetRoomList() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetRoomList, nil))
}

// StartGame 房主开始游戏
func (c *Client) StartGame() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgStartGame, nil))
}

// ChooseWord 画手选词
func (c *Client) ChooseWord(word string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgWordChosen, protocol.WordChosenPayload{Word: word}))
}

// Say 聊天或猜词
func (c *Client) Say(text string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgSendMessage, protocol.SendMessagePayload{Text: text}))
}

// Draw 发送一段笔画
func (c *Client) Draw(path json.RawMessage) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgDraw, protocol.DrawPayload{Path: path}))
}

// ClearCanvas 清空画布
func (c *Client) ClearCanvas() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgClearCanvas, nil))
}

// StartNewGame 房主开启新一局
func (c *Client) StartNewGame() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgStartNewGame, nil))
}

// JoinNewGame 确认参加新一局
func (c *Client) JoinNewGame() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgJoinNewGame, nil))
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}
