package transport

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
)

// start 为一条新连接启动读写协程，读协程退出时通知写协程
func (c *Client) start(conn *websocket.Conn) {
	stop := make(chan struct{})
	go c.readPump(conn, stop)
	go c.writePump(conn, stop)
}

// readPump 从服务器读取消息
func (c *Client) readPump(conn *websocket.Conn, stop chan struct{}) {
	defer c.handleReadExit()
	defer close(stop)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) && c.OnError != nil {
				c.OnError(err)
			}
			return
		}

		msg, err := codec.Decode(c.Format, data)
		if err != nil {
			logger.Debugf("消息解析错误: %v", err)
			continue
		}

		c.processMessage(msg)
	}
}

func (c *Client) handleReadExit() {
	if r := recover(); r != nil {
		logger.LogPanic(r)
	}

	// 主动关闭时不重连
	select {
	case <-c.done:
		if c.OnClose != nil {
			c.OnClose()
		}
		return
	default:
	}

	if c.RoomCode() != "" && !c.reconnecting.Load() {
		go c.tryReconnect()
		return
	}
	c.Close()
	if c.OnClose != nil {
		c.OnClose()
	}
}

func (c *Client) processMessage(msg *protocol.Message) {
	c.handleInternalMessage(msg)

	// 回调处理
	if c.OnMessage != nil {
		c.OnMessage(msg)
	}

	// 同时发送到 channel，无人读取时丢弃
	select {
	case c.receive <- msg:
	default:
	}
}

// handleInternalMessage 记录重连所需的房间信息和延迟
func (c *Client) handleInternalMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgRoomCreated:
		if payload, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg); err == nil {
			c.setRoom(payload.RoomCode, payload.Player.Name)
		}
	case protocol.MsgRoomJoined:
		if payload, err := codec.ParsePayload[protocol.RoomJoinedPayload](msg); err == nil {
			c.setRoom(payload.RoomCode, payload.Player.Name)
		}
	case protocol.MsgRoomResync:
		c.reconnecting.Store(false)
		c.mu.Lock()
		c.reconnectCount = 0
		c.mu.Unlock()
	case protocol.MsgError:
		// 座位已被移除（宽限期已过），放弃找回
		if c.reconnecting.CompareAndSwap(true, false) {
			c.setRoom("", "")
		}
	case protocol.MsgPong:
		if payload, err := codec.ParsePayload[protocol.PongPayload](msg); err == nil {
			latency := time.Now().UnixMilli() - payload.ClientTimestamp
			c.latency.Store(latency)
			if c.OnLatencyUpdate != nil {
				c.OnLatencyUpdate(latency)
			}
		}
	}
}

func (c *Client) setRoom(code, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
	if name != "" {
		c.displayName = name
	}
}

// writePump 向服务器写入消息
func (c *Client) writePump(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.Format == codec.FormatProtobuf {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(frameType, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-stop:
			return
		}
	}
}
