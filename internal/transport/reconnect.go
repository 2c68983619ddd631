package transport

import (
	"time"

	"github.com/palemoky/draw-and-guess/internal/logger"
)

// StartHeartbeat 启动心跳检测
func (c *Client) StartHeartbeat() {
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if c.IsConnected() && !c.IsReconnecting() {
					_ = c.Ping()
				}
			case <-c.done:
				return
			}
		}
	}()
}

// tryReconnect 断线后按指数退避重连，成功后以昵称找回座位
func (c *Client) tryReconnect() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			c.reconnecting.Store(false)
		}
	}()

	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}

	c.mu.RLock()
	backoff := c.reconnectDelay
	c.mu.RUnlock()

	for {
		c.mu.Lock()
		if c.reconnectCount >= maxReconnectAttempts {
			c.mu.Unlock()
			break
		}
		c.reconnectCount++
		attempt := c.reconnectCount
		c.mu.Unlock()

		if c.OnReconnecting != nil {
			c.OnReconnecting(attempt, maxReconnectAttempts)
		}

		select {
		case <-time.After(backoff):
		case <-c.done:
			c.reconnecting.Store(false)
			return
		}

		// 计算下一次退避时间 (最大 30 秒)
		backoff = min(backoff*2, 30*time.Second)

		conn, err := dial(c.ServerURL)
		if err != nil {
			logger.Debugf("第 %d 次重连失败: %v", attempt, err)
			continue
		}

		c.mu.Lock()
		c.conn = conn
		code, name := c.roomCode, c.displayName
		c.mu.Unlock()

		c.start(conn)

		// room_resync 到达时清除重连状态
		if err := c.ReconnectRoom(code, name); err != nil {
			_ = conn.Close()
			continue
		}
		return
	}

	// 重连失败
	c.reconnecting.Store(false)
	c.Close()
	if c.OnClose != nil {
		c.OnClose()
	}
}
