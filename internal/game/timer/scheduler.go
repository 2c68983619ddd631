package timer

import (
	"strings"
	"sync"
	"time"

	"github.com/palemoky/draw-and-guess/internal/logger"
)

// 定时器名称
const (
	AutoSelect     = "autoSelect"
	Hint1          = "hint1"
	Hint2          = "hint2"
	RoundEnd       = "roundEnd"
	ResultsAdvance = "resultsAdvance"
	FinalAdvance   = "finalAdvance"

	gracePrefix = "grace:"
)

// RoundTimers 一轮内的定时器，换轮或画手离开时一并取消
var RoundTimers = []string{AutoSelect, Hint1, Hint2, RoundEnd, ResultsAdvance}

// Grace 断线宽限定时器名称
func Grace(connID string) string {
	return gracePrefix + connID
}

// IsGrace 是否为断线宽限定时器
func IsGrace(name string) bool {
	return strings.HasPrefix(name, gracePrefix)
}

type handle struct {
	stop  Stopper
	token uint64
}

// Scheduler 房间级定时器表。每个名称最多一个有效句柄，
// 回调在房间锁内执行，并校验 token，过期回调直接丢弃。
//
// Schedule / Cancel / CancelAll 须在持有房间锁时调用。
type Scheduler struct {
	clock   Clock
	locker  sync.Locker
	owner   string
	handles map[string]*handle
	token   uint64
	closed  bool
	onPanic func(name string)
}

// NewScheduler 创建调度器，locker 为房间锁
func NewScheduler(clock Clock, locker sync.Locker, owner string) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{
		clock:   clock,
		locker:  locker,
		owner:   owner,
		handles: make(map[string]*handle),
	}
}

// OnPanic 设置回调异常后的恢复钩子，钩子在房间锁内执行
func (s *Scheduler) OnPanic(fn func(name string)) {
	s.onPanic = fn
}

// Now 当前时间
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Schedule 注册定时器，同名的旧定时器会被替换
func (s *Scheduler) Schedule(name string, d time.Duration, fn func()) {
	s.cancel(name)
	if s.closed {
		return
	}

	s.token++
	token := s.token
	h := &handle{token: token}
	s.handles[name] = h
	h.stop = s.clock.AfterFunc(d, func() { s.fire(name, token, fn) })
}

// Cancel 取消指定定时器
func (s *Scheduler) Cancel(names ...string) {
	for _, name := range names {
		s.cancel(name)
	}
}

// CancelAll 取消所有定时器并关闭调度器，之后的 Schedule 无效
func (s *Scheduler) CancelAll() {
	for name := range s.handles {
		s.cancel(name)
	}
	s.closed = true
}

// Pending 定时器是否仍有效
func (s *Scheduler) Pending(name string) bool {
	_, ok := s.handles[name]
	return ok
}

// Len 有效定时器数量
func (s *Scheduler) Len() int {
	return len(s.handles)
}

// Closed 调度器是否已关闭
func (s *Scheduler) Closed() bool {
	return s.closed
}

func (s *Scheduler) cancel(name string) {
	h, ok := s.handles[name]
	if !ok {
		return
	}
	delete(s.handles, name)
	if h.stop != nil {
		h.stop.Stop()
	}
}

func (s *Scheduler) fire(name string, token uint64, fn func()) {
	s.locker.Lock()
	defer s.locker.Unlock()

	h, ok := s.handles[name]
	if s.closed || !ok || h.token != token {
		logger.Debugf("⏱️ 房间 %s 定时器 %s 已失效，忽略", s.owner, name)
		return
	}
	delete(s.handles, name)

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("❌ 房间 %s 定时器 %s 回调异常", s.owner, name)
			logger.LogPanic(r)
			s.recoverFrom(name)
		}
	}()
	fn()
}

func (s *Scheduler) recoverFrom(name string) {
	if s.onPanic == nil || s.closed {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("❌ 房间 %s 定时器 %s 恢复失败", s.owner, name)
			logger.LogPanic(r)
		}
	}()
	s.onPanic(name)
}
