package room

import (
	"context"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// 未配置外部协作者时的空实现

type nopStore struct{}

func (nopStore) SaveRoom(context.Context, *types.RoomSnapshot) error { return nil }
func (nopStore) DeleteRoom(context.Context, string) error            { return nil }

type nopEvents struct{}

func (nopEvents) Append(context.Context, string, protocol.ChatPayload) error { return nil }

type nopLeaderboard struct{}

func (nopLeaderboard) RecordGameResult(context.Context, []protocol.RankingEntry) error { return nil }

type nopLedger struct{}

func (nopLedger) GameStarted(context.Context, string, []string) error              { return nil }
func (nopLedger) GameEnded(context.Context, string, []protocol.RankingEntry) error { return nil }
