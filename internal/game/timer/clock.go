package timer

import "time"

// Stopper 可取消的定时器句柄
type Stopper interface {
	Stop() bool
}

// Clock 时钟抽象，便于测试中手动推进时间
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// RealClock 基于 time 包的真实时钟
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}
