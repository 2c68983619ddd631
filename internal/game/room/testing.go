//go:build !production

package room

import (
	"encoding/json"
	"math/rand/v2"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/draw-and-guess/internal/game/timer"
	"github.com/palemoky/draw-and-guess/internal/game/words"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// MockRoomManager 房间管理器 mock
type MockRoomManager struct {
	mock.Mock
}

func (m *MockRoomManager) CreateRoom(client types.ClientInterface, displayName string) (*Room, error) {
	args := m.Called(client, displayName)
	room, _ := args.Get(0).(*Room)
	return room, args.Error(1)
}

func (m *MockRoomManager) JoinRoom(client types.ClientInterface, code, displayName string) (*Room, error) {
	args := m.Called(client, code, displayName)
	room, _ := args.Get(0).(*Room)
	return room, args.Error(1)
}

func (m *MockRoomManager) Reconnect(client types.ClientInterface, code, displayName string) (*protocol.ResyncPayload, error) {
	args := m.Called(client, code, displayName)
	resync, _ := args.Get(0).(*protocol.ResyncPayload)
	return resync, args.Error(1)
}

func (m *MockRoomManager) LeaveRoom(client types.ClientInterface) {
	m.Called(client)
}

func (m *MockRoomManager) Disconnect(client types.ClientInterface) {
	m.Called(client)
}

func (m *MockRoomManager) StartGame(client types.ClientInterface) error {
	return m.Called(client).Error(0)
}

func (m *MockRoomManager) ChooseWord(client types.ClientInterface, word string) error {
	return m.Called(client, word).Error(0)
}

func (m *MockRoomManager) SendMessage(client types.ClientInterface, text string) error {
	return m.Called(client, text).Error(0)
}

func (m *MockRoomManager) RelayDraw(client types.ClientInterface, path json.RawMessage) error {
	return m.Called(client, path).Error(0)
}

func (m *MockRoomManager) ClearCanvas(client types.ClientInterface) error {
	return m.Called(client).Error(0)
}

func (m *MockRoomManager) StartNewGame(client types.ClientInterface) error {
	return m.Called(client).Error(0)
}

func (m *MockRoomManager) JoinNewGame(client types.ClientInterface) error {
	return m.Called(client).Error(0)
}

func (m *MockRoomManager) GetRoomList() []protocol.RoomListItem {
	args := m.Called()
	items, _ := args.Get(0).([]protocol.RoomListItem)
	return items
}

func (m *MockRoomManager) GetActiveGamesCount() int {
	return m.Called().Int(0)
}

// NewMockRoom 创建测试用的 Room，client 为房主
func NewMockRoom(code string, client types.ClientInterface, name string) *Room {
	rm := &RoomManager{
		clock:       timer.RealClock{},
		store:       nopStore{},
		events:      nopEvents{},
		leaderboard: nopLeaderboard{},
		ledger:      nopLedger{},
		rooms:       make(map[string]*Room),
		seed: func() *rand.Rand {
			return rand.New(rand.NewPCG(1, 1))
		},
	}
	room := rm.newRoom(code)
	if client != nil {
		room.players = append(room.players, &Player{Client: client, Name: name, Online: true})
		room.hostID = client.GetID()
	}
	return room
}

// AddRoomForTest 添加房间用于测试
func (rm *RoomManager) AddRoomForTest(room *Room) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	room.manager = rm
	room.bank = words.NewBank(rm.vocabulary, room.rng)
	room.sched = timer.NewScheduler(rm.clock, roomLocker{room}, room.Code)
	room.sched.OnPanic(room.recoverTimer)
	rm.rooms[room.Code] = room
}
