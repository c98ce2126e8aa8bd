package consumer

import "time"

// Clock 时钟接口。核心计算只用传入的 now，
// 这里是唯一读系统时钟的地方，测试里换成固定时钟
type Clock interface {
	Now() time.Time
}

// SystemClock 系统时钟
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
