package room

import (
	"slices"

	"github.com/palemoky/draw-and-guess/internal/types"
)

// toSnapshot 将 Room 转换为可持久化的快照，调用方持有房间锁
func (r *Room) toSnapshot() *types.RoomSnapshot {
	snap := &types.RoomSnapshot{
		Code:        r.Code,
		Phase:       r.phase.String(),
		HostID:      r.hostID,
		Locked:      r.locked,
		Players:     make([]types.PlayerSnapshot, 0, len(r.players)),
		TurnOrder:   slices.Clone(r.turnOrder),
		RoundIndex:  r.roundIndex,
		DrawerID:    r.drawerID,
		CreatedAt:   r.CreatedAt.Unix(),
		UpdatedAtMs: r.now().UnixMilli(),
	}

	for _, p := range r.players {
		snap.Players = append(snap.Players, types.PlayerSnapshot{
			ID:     p.ID(),
			Name:   p.Name,
			Score:  p.Score,
			Online: p.Online,
		})
	}

	return snap
}
