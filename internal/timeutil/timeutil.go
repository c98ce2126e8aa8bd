// Package timeutil 提供床旁统计用的时间推算：在院午夜数、已过小时数、术后天数。
// 所有函数接收显式的 now，同一次渲染/评估内共用同一个时钟值。
package timeutil

import (
	"math"
	"strings"
	"time"
)

// ClockLayout 存储中时间戳的标准格式（与表单 datetime-local 一致）
const ClockLayout = "2006-01-02T15:04"

// DateLayout 仅含日期的字段格式（如剖宫产日期）
const DateLayout = "2006-01-02"

var layouts = []string{
	ClockLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	DateLayout,
}

// Parse 解析存储的时间戳字符串，空串或无法解析时 ok 为 false
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Format 按存储格式输出时间戳
func Format(t time.Time) string {
	return t.Format(ClockLayout)
}

// MidnightsSince 从 s 所在日历日到 now 所在日历日跨越的午夜数，下限 0。
// s 缺失或无法解析时 ok 为 false（显示层据此输出未知占位）
func MidnightsSince(s string, now time.Time) (int, bool) {
	t, ok := Parse(s)
	if !ok {
		return 0, false
	}
	n := daysBetween(t, now)
	if n < 0 {
		n = 0
	}
	return n, true
}

// HoursSince 从 s 到 now 的小时数，保留一位小数，下限 0
func HoursSince(s string, now time.Time) (float64, bool) {
	t, ok := Parse(s)
	if !ok {
		return 0, false
	}
	h := now.Sub(t).Hours()
	if h < 0 {
		h = 0
	}
	return math.Round(h*10) / 10, true
}

// PostOpDays 术后天数（按跨越的午夜数计），基准时间缺失时返回 nil，
// 调用方据此隐藏整个统计项而不是显示占位
func PostOpDays(s string, now time.Time) *int {
	t, ok := Parse(s)
	if !ok {
		return nil
	}
	n := daysBetween(t, now)
	if n < 0 {
		n = 0
	}
	return &n
}

// daysBetween a 到 b 跨越的日历日边界数（可为负）。
// 午夜差经过夏令时会偏移一小时，取整消除
func daysBetween(a, b time.Time) int {
	d := startOfDay(b).Sub(startOfDay(a))
	return int(math.Round(d.Hours() / 24))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
