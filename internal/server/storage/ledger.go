package storage

import (
	"context"

	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/types"
)

var _ types.StakingLedger = LogLedger{}

// LogLedger 未接入链上押注时使用的账本，只记录日志
type LogLedger struct{}

// GameStarted 记录游戏开始
func (LogLedger) GameStarted(_ context.Context, roomCode string, playerIDs []string) error {
	logger.Infof("🎲 房间 %s 开局，%d 名玩家入场", roomCode, len(playerIDs))
	return nil
}

// GameEnded 记录游戏结束
func (LogLedger) GameEnded(_ context.Context, roomCode string, ranking []protocol.RankingEntry) error {
	if len(ranking) > 0 {
		logger.Infof("🏆 房间 %s 结束，冠军 %s（%d 分）", roomCode, ranking[0].Name, ranking[0].Score)
	}
	return nil
}
