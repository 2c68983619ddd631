package types

import (
	"context"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// ClientInterface 定义客户端接口，ID 即连接标识
type ClientInterface interface {
	GetID() string
	GetName() string
	GetRoom() string
	SetRoom(code string)
	SendMessage(msg *protocol.Message)
	Close()
}

// RoomSnapshot 房间快照（用于持久化）
type RoomSnapshot struct {
	Code        string           `json:"code"`
	Phase       string           `json:"phase"`
	HostID      string           `json:"host_id"`
	Locked      bool             `json:"locked"`
	Players     []PlayerSnapshot `json:"players"`
	TurnOrder   []string         `json:"turn_order"`
	RoundIndex  int              `json:"round_index"`
	DrawerID    string           `json:"drawer_id,omitempty"`
	CreatedAt   int64            `json:"created_at"`
	UpdatedAtMs int64            `json:"updated_at_ms"`
}

// PlayerSnapshot 玩家快照
type PlayerSnapshot struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Online bool   `json:"online"`
}

// RoomStore 房间快照存储
type RoomStore interface {
	SaveRoom(ctx context.Context, snap *RoomSnapshot) error
	DeleteRoom(ctx context.Context, code string) error
}

// EventLog 聊天/事件日志，只追加
type EventLog interface {
	Append(ctx context.Context, roomCode string, entry protocol.ChatPayload) error
}

// Leaderboard 跨房间累计积分
type Leaderboard interface {
	RecordGameResult(ctx context.Context, ranking []protocol.RankingEntry) error
}

// StakingLedger 可选的押注账本，在游戏开始/结束时调用
type StakingLedger interface {
	GameStarted(ctx context.Context, roomCode string, playerIDs []string) error
	GameEnded(ctx context.Context, roomCode string, ranking []protocol.RankingEntry) error
}

// ChatLimiter 聊天速率限制器接口
type ChatLimiter interface {
	AllowChat(clientID string) (allowed bool, reason string)
	RemoveClient(clientID string)
}
