package game

import "time"

// Scheduler 在 d 之后调用 f，返回的 stop 函数用于取消
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// RealScheduler 基于 time.AfterFunc
func RealScheduler() Scheduler {
	return realScheduler{}
}

// Timing 汇总回合中所有由服务端驱动的时长
type Timing struct {
	// 设置中的 turn_duration 以该单位计
	TurnUnit time.Duration
	// 揭示身份后进入提示阶段前额外等待的时间
	RevealGrace time.Duration
	// 卧底被抓后猜词的时间窗口
	SpyChanceWindow time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		TurnUnit:        time.Second,
		RevealGrace:     3 * time.Second,
		SpyChanceWindow: 15 * time.Second,
	}
}

func (t Timing) revealDuration(turnDuration int) time.Duration {
	return time.Duration(turnDuration)*t.TurnUnit + t.RevealGrace
}
