package room

import (
	"encoding/json"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/palemoky/draw-and-guess/internal/config"
	"github.com/palemoky/draw-and-guess/internal/game/timer"
	"github.com/palemoky/draw-and-guess/internal/game/words"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/types"
)

const (
	roomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789" // 房间号字符集
	chatHistoryCap = 100                                    // 聊天记录保留条数
	minPlayers     = 2
)

// Player 房间中的玩家，Client 的 ID 即连接标识
type Player struct {
	Client           types.ClientInterface
	Name             string
	Score            int
	ReadyForNextGame bool
	Online           bool
}

// ID 当前连接标识
func (p *Player) ID() string {
	return p.Client.GetID()
}

// Room 游戏房间。所有字段由 mu 保护，所有变更入口与定时器回调都在锁内执行。
type Room struct {
	Code      string    // 房间号
	CreatedAt time.Time // 创建时间

	mu      sync.Mutex
	manager *RoomManager
	sched   *timer.Scheduler
	rng     *rand.Rand
	bank    *words.Bank
	after   []func() // 释放锁后执行

	hostID  string
	locked  bool
	players []*Player // 按加入顺序
	phase   Phase

	turnOrder  []string
	roundIndex int
	drawerID   string

	currentWord      string
	wordOptions      []string
	correctGuessers  map[string]bool
	revealed         []int
	roundScores      []protocol.ScoreEntry
	phaseDeadline    time.Time
	drawingStartedAt time.Time
	wordGuessed      bool

	canvas       []json.RawMessage
	chat         []protocol.ChatPayload
	roundResults *protocol.RoundResultsPayload
	ranking      []protocol.RankingEntry

	lobbySince time.Time // 进入大厅的时间，用于超时清理
	closed     bool
	recoveries int // 本阶段内定时器回调异常次数
}

// roomLocker 让调度器回调复用房间的加解锁流程
type roomLocker struct{ r *Room }

func (l roomLocker) Lock()   { l.r.mu.Lock() }
func (l roomLocker) Unlock() { l.r.unlock() }

// RoomManager 房间管理器
type RoomManager struct {
	cfg         config.GameConfig
	clock       timer.Clock
	store       types.RoomStore
	events      types.EventLog
	leaderboard types.Leaderboard
	ledger      types.StakingLedger
	vocabulary  []string
	seed        func() *rand.Rand

	rooms map[string]*Room
	mu    sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// Option 房间管理器选项
type Option func(*RoomManager)

// WithClock 指定时钟（测试中使用 FakeClock）
func WithClock(c timer.Clock) Option {
	return func(rm *RoomManager) { rm.clock = c }
}

// WithStore 指定房间快照存储
func WithStore(s types.RoomStore) Option {
	return func(rm *RoomManager) { rm.store = s }
}

// WithEventLog 指定聊天日志
func WithEventLog(e types.EventLog) Option {
	return func(rm *RoomManager) { rm.events = e }
}

// WithLeaderboard 指定排行榜
func WithLeaderboard(l types.Leaderboard) Option {
	return func(rm *RoomManager) { rm.leaderboard = l }
}

// WithLedger 指定押注账本
func WithLedger(l types.StakingLedger) Option {
	return func(rm *RoomManager) { rm.ledger = l }
}

// WithRand 指定随机源构造函数，每个房间独立一个
func WithRand(seed func() *rand.Rand) Option {
	return func(rm *RoomManager) { rm.seed = seed }
}

// NewRoomManager 创建房间管理器
func NewRoomManager(cfg config.GameConfig, opts ...Option) *RoomManager {
	rm := &RoomManager{
		cfg:         cfg,
		clock:       timer.RealClock{},
		store:       nopStore{},
		events:      nopEvents{},
		leaderboard: nopLeaderboard{},
		ledger:      nopLedger{},
		vocabulary:  cfg.Words,
		rooms:       make(map[string]*Room),
		stop:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rm)
	}
	if rm.seed == nil {
		rm.seed = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}

	// 启动房间清理协程
	go rm.cleanupLoop()

	return rm
}

// Close 停止后台清理
func (rm *RoomManager) Close() {
	rm.stopOnce.Do(func() { close(rm.stop) })
}

func (rm *RoomManager) newRoom(code string) *Room {
	rng := rm.seed()
	now := rm.clock.Now()
	r := &Room{
		Code:            code,
		CreatedAt:       now,
		lobbySince:      now,
		manager:         rm,
		rng:             rng,
		bank:            words.NewBank(rm.vocabulary, rng),
		phase:           PhaseLobby,
		correctGuessers: make(map[string]bool),
	}
	r.sched = timer.NewScheduler(rm.clock, roomLocker{r}, code)
	r.sched.OnPanic(r.recoverTimer)
	return r
}

// unlock 释放房间锁，然后执行挂起的动作（删除房间需要管理器锁，不能在房间锁内执行）
func (r *Room) unlock() {
	after := r.after
	r.after = nil
	r.mu.Unlock()
	for _, f := range after {
		f()
	}
}

// deferUnlock 登记释放锁后执行的动作
func (r *Room) deferUnlock(f func()) {
	r.after = append(r.after, f)
}

func (r *Room) playerByID(id string) *Player {
	for _, p := range r.players {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

func (r *Room) playerIndex(id string) int {
	for i, p := range r.players {
		if p.ID() == id {
			return i
		}
	}
	return -1
}

func (r *Room) playerByName(name string) *Player {
	for _, p := range r.players {
		if sameName(p.Name, name) {
			return p
		}
	}
	return nil
}

func (r *Room) now() time.Time {
	return r.sched.Now()
}

func (r *Room) remainingMs() int64 {
	if r.phaseDeadline.IsZero() {
		return 0
	}
	return max(0, r.phaseDeadline.Sub(r.now()).Milliseconds())
}

func (r *Room) deadlineMs() int64 {
	if r.phaseDeadline.IsZero() {
		return 0
	}
	return r.phaseDeadline.UnixMilli()
}
