package room

import (
	"context"
	"time"

	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
)

// 外部协作者调用超时
const collaboratorTimeout = 5 * time.Second

// broadcast 广播消息给房间内所有在线玩家
func (r *Room) broadcast(msg *protocol.Message) {
	for _, p := range r.players {
		if p.Online {
			p.Client.SendMessage(msg)
		}
	}
}

// broadcastExcept 广播消息给除指定玩家外的所有在线玩家
func (r *Room) broadcastExcept(excludeID string, msg *protocol.Message) {
	for _, p := range r.players {
		if p.Online && p.ID() != excludeID {
			p.Client.SendMessage(msg)
		}
	}
}

// sendTo 私发消息
func (r *Room) sendTo(id string, msg *protocol.Message) {
	if p := r.playerByID(id); p != nil && p.Online {
		p.Client.SendMessage(msg)
	}
}

func (r *Room) broadcastSystem(text string) {
	r.broadcast(codec.MustNewMessage(protocol.MsgSystem, protocol.SystemPayload{
		Text: text,
		Time: r.now().UnixMilli(),
	}))
}

func (r *Room) nameOf(id string) string {
	if p := r.playerByID(id); p != nil {
		return p.Name
	}
	return ""
}

// playerInfos 玩家列表（按加入顺序）
func (r *Room) playerInfos() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		infos = append(infos, r.playerInfo(p))
	}
	return infos
}

func (r *Room) playerInfo(p *Player) protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:     p.ID(),
		Name:   p.Name,
		Score:  p.Score,
		IsHost: p.ID() == r.hostID,
		Online: p.Online,
		Ready:  p.ReadyForNextGame,
	}
}

// statePayload 房间快照：成员、房主、锁定状态、阶段与分数
func (r *Room) statePayload() protocol.RoomStatePayload {
	return protocol.RoomStatePayload{
		RoomCode: r.Code,
		HostID:   r.hostID,
		Locked:   r.locked,
		Phase:    r.phase.String(),
		Players:  r.playerInfos(),
	}
}

// publishState 每次变更后广播房间快照并异步保存
func (r *Room) publishState() {
	if r.closed {
		return
	}
	r.broadcast(codec.MustNewMessage(protocol.MsgRoomState, r.statePayload()))

	snap := r.toSnapshot()
	r.manager.async("SaveRoom", func(ctx context.Context) error {
		return r.manager.store.SaveRoom(ctx, snap)
	})
}

// State 返回房间快照
func (r *Room) State() protocol.RoomStatePayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statePayload()
}

// Phase 当前阶段
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// PlayerInfo 返回指定玩家信息
func (r *Room) PlayerInfo(id string) (protocol.PlayerInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.playerByID(id)
	if p == nil {
		return protocol.PlayerInfo{}, false
	}
	return r.playerInfo(p), true
}

func (rm *RoomManager) deleteSnapshot(code string) {
	rm.async("DeleteRoom", func(ctx context.Context) error {
		return rm.store.DeleteRoom(ctx, code)
	})
}

// async 异步调用外部协作者，失败只记录日志
func (rm *RoomManager) async(op string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.LogPanic(r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logger.Warnf("⚠️ %s 失败: %v", op, err)
		}
	}()
}
