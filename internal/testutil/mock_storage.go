//go:build !production

package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// MockLeaderboard 排行榜 mock
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) RecordGameResult(ctx context.Context, ranking []protocol.RankingEntry) error {
	args := m.Called(ctx, ranking)
	return args.Error(0)
}

// MockRoomStore 房间存储 mock
type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) SaveRoom(ctx context.Context, snap *types.RoomSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockRoomStore) DeleteRoom(ctx context.Context, roomCode string) error {
	args := m.Called(ctx, roomCode)
	return args.Error(0)
}

// MockLedger 押注账本 mock
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) GameStarted(ctx context.Context, roomCode string, playerIDs []string) error {
	args := m.Called(ctx, roomCode, playerIDs)
	return args.Error(0)
}

func (m *MockLedger) GameEnded(ctx context.Context, roomCode string, ranking []protocol.RankingEntry) error {
	args := m.Called(ctx, roomCode, ranking)
	return args.Error(0)
}

// MemoryEventLog 内存事件日志，记录追加的聊天
type MemoryEventLog struct {
	mu      sync.Mutex
	entries map[string][]protocol.ChatPayload
}

func (l *MemoryEventLog) Append(_ context.Context, roomCode string, entry protocol.ChatPayload) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entries == nil {
		l.entries = make(map[string][]protocol.ChatPayload)
	}
	l.entries[roomCode] = append(l.entries[roomCode], entry)
	return nil
}

// Entries 返回房间的日志
func (l *MemoryEventLog) Entries(roomCode string) []protocol.ChatPayload {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]protocol.ChatPayload(nil), l.entries[roomCode]...)
}
