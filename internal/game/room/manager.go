package room

import (
	"strings"
	"unicode/utf8"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/game/timer"
	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// CreateRoom 创建房间，创建者为房主
func (rm *RoomManager) CreateRoom(client types.ClientInterface, displayName string) (*Room, error) {
	name, err := rm.validateName(displayName)
	if err != nil {
		return nil, err
	}
	if client.GetRoom() != "" {
		rm.LeaveRoom(client)
	}

	rm.mu.Lock()
	code := rm.generateRoomCode()
	room := rm.newRoom(code)
	room.players = append(room.players, &Player{Client: client, Name: name, Online: true})
	room.hostID = client.GetID()
	rm.rooms[code] = room
	rm.mu.Unlock()

	client.SetRoom(code)

	room.mu.Lock()
	defer room.unlock()
	room.publishState()

	logger.Infof("🏠 房间 %s 已创建，房主 %s", code, name)

	return room, nil
}

// JoinRoom 加入房间
func (rm *RoomManager) JoinRoom(client types.ClientInterface, code, displayName string) (*Room, error) {
	name, err := rm.validateName(displayName)
	if err != nil {
		return nil, err
	}
	code = normalizeCode(code)

	room := rm.GetRoom(code)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	if client.GetRoom() != "" && client.GetRoom() != code {
		rm.LeaveRoom(client)
	}

	room.mu.Lock()
	defer room.unlock()

	if room.closed {
		return nil, apperrors.ErrRoomNotFound
	}
	if room.locked {
		return nil, apperrors.ErrRoomLocked
	}
	if room.playerByName(name) != nil {
		return nil, apperrors.ErrNameTaken
	}
	if len(room.players) >= rm.cfg.MaxPlayers {
		return nil, apperrors.ErrRoomFull
	}

	room.players = append(room.players, &Player{Client: client, Name: name, Online: true})
	client.SetRoom(code)

	room.broadcastSystem(name + " 加入了房间")
	room.publishState()

	logger.Infof("👤 玩家 %s 加入房间 %s", name, code)

	return room, nil
}

// LeaveRoom 主动离开房间
func (rm *RoomManager) LeaveRoom(client types.ClientInterface) {
	room := rm.GetRoom(client.GetRoom())
	if room == nil {
		client.SetRoom("")
		return
	}

	room.mu.Lock()
	defer room.unlock()

	room.removePlayer(client.GetID(), true)
}

// removePlayer 移除玩家（主动离开或断线宽限期到期），调用方持有房间锁
func (r *Room) removePlayer(id string, voluntary bool) {
	idx := r.playerIndex(id)
	if idx < 0 {
		return
	}
	p := r.players[idx]
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	delete(r.correctGuessers, id)
	r.sched.Cancel(timer.Grace(id))
	if voluntary {
		p.Client.SetRoom("")
	}

	logger.Infof("👋 玩家 %s 离开房间 %s (主动: %v)", p.Name, r.Code, voluntary)

	if len(r.players) == 0 {
		r.destroy()
		return
	}

	if r.hostID == id {
		r.hostID = r.players[0].ID()
		r.broadcastSystem(r.players[0].Name + " 成为新房主")
	}
	r.broadcastSystem(p.Name + " 离开了房间")

	switch {
	case r.phase.InGame() && len(r.players) < minPlayers:
		r.broadcastSystem("玩家不足，游戏提前结束")
		r.enterFinalResults()
	case id == r.drawerID && (r.phase == PhaseChooseWord || r.phase == PhaseDrawing):
		r.drawerLeft()
	case r.phase == PhaseDrawing && !r.wordGuessed && r.allGuessed():
		r.endRound(false)
	}

	r.publishState()
}

// destroy 解散房间：取消全部定时器，释放锁后从管理器移除
func (r *Room) destroy() {
	r.closed = true
	r.sched.CancelAll()
	r.deferUnlock(func() { r.manager.forget(r) })
}

// forget 从管理器移除房间，只删除仍指向该实例的映射
func (rm *RoomManager) forget(room *Room) {
	rm.mu.Lock()
	if rm.rooms[room.Code] == room {
		delete(rm.rooms, room.Code)
	}
	rm.mu.Unlock()

	rm.deleteSnapshot(room.Code)
	logger.Infof("🏠 房间 %s 已解散", room.Code)
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(code string) *Room {
	if code == "" {
		return nil
	}
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[normalizeCode(code)]
}

// GetRoomList 获取可加入的房间列表
func (rm *RoomManager) GetRoomList() []protocol.RoomListItem {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	rooms := make([]protocol.RoomListItem, 0)
	for code, room := range rm.rooms {
		room.mu.Lock()
		// 只返回大厅中且未满的房间
		if !room.locked && !room.closed && len(room.players) < rm.cfg.MaxPlayers {
			rooms = append(rooms, protocol.RoomListItem{
				RoomCode:    code,
				PlayerCount: len(room.players),
				MaxPlayers:  rm.cfg.MaxPlayers,
			})
		}
		room.mu.Unlock()
	}
	return rooms
}

// GetActiveGamesCount 获取进行中的游戏数量
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		room.mu.Lock()
		if room.phase.InGame() {
			count++
		}
		room.mu.Unlock()
	}
	return count
}

// RoomCount 当前房间数量
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// roomOf 查找客户端所在房间
func (rm *RoomManager) roomOf(client types.ClientInterface) (*Room, error) {
	if client.GetRoom() == "" {
		return nil, apperrors.ErrNotInRoom
	}
	room := rm.GetRoom(client.GetRoom())
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	return room, nil
}

func (rm *RoomManager) validateName(displayName string) (string, error) {
	name := strings.TrimSpace(displayName)
	if name == "" || utf8.RuneCountInString(name) > rm.cfg.MaxNameLength {
		return "", apperrors.ErrInvalidName
	}
	return name, nil
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
