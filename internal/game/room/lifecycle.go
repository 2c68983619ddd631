package room

import (
	"math/rand/v2"
	"time"

	"github.com/palemoky/draw-and-guess/internal/game/timer"
	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// Disconnect 连接断开：标记离线并启动宽限期，到期仍未重连则移除
func (rm *RoomManager) Disconnect(client types.ClientInterface) {
	room := rm.GetRoom(client.GetRoom())
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.unlock()

	id := client.GetID()
	player := room.playerByID(id)
	if player == nil || room.closed {
		return
	}
	player.Online = false

	room.sched.Schedule(timer.Grace(id), rm.cfg.GraceDuration(), func() { room.graceExpired(id) })
	room.broadcastSystem(player.Name + " 掉线了")
	room.publishState()

	logger.Infof("📴 玩家 %s 在房间 %s 中掉线，%v 后移除", player.Name, room.Code, rm.cfg.GraceDuration())
}

// graceExpired 宽限期到期。重连会改写连接标识，旧标识查不到玩家即为已重连
func (r *Room) graceExpired(id string) {
	p := r.playerByID(id)
	if p == nil || p.Online {
		logger.Debugf("⏱️ 房间 %s 玩家 %s 已重连，跳过移除", r.Code, id)
		return
	}
	r.removePlayer(id, false)
}

// generateRoomCode 生成房间号，调用方持有管理器锁
func (rm *RoomManager) generateRoomCode() string {
	length := rm.cfg.RoomCodeLength
	if length <= 0 {
		length = 6
	}
	for {
		code := make([]byte, length)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := rm.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}

// cleanupLoop 定期清理超时房间
func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rm.cleanup()
		case <-rm.stop:
			return
		}
	}
}

// cleanup 清理在大厅中等待过久的房间
func (rm *RoomManager) cleanup() {
	timeout := rm.cfg.RoomTimeoutDuration()
	if timeout <= 0 {
		return
	}

	rm.mu.RLock()
	candidates := make([]*Room, 0)
	for _, room := range rm.rooms {
		candidates = append(candidates, room)
	}
	rm.mu.RUnlock()

	now := rm.clock.Now()
	for _, room := range candidates {
		room.mu.Lock()
		if room.phase == PhaseLobby && !room.closed && now.Sub(room.lobbySince) > timeout {
			// 通知所有玩家房间已关闭
			room.broadcast(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "房间超时已关闭"))
			for _, p := range room.players {
				p.Client.SetRoom("")
			}
			room.players = nil
			room.destroy()
			logger.Infof("🏠 房间 %s 超时已清理", room.Code)
		}
		room.unlock()
	}
}
