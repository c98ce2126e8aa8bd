// Package scheduler 实现报警到期判定的周期推算。
// 重复报警视为从 Start 起每隔 Repeat 小时触发一次的时钟，
// 每次触发后保持 DueWindow 的"到期"状态，然后静默到下一周期。
package scheduler

import (
	"time"

	"obtracker/internal/models"
	"obtracker/internal/timeutil"
)

// DueWindow 触发时刻之后算作"到期中"的窗口长度
const DueWindow = 15 * time.Minute

// DueAlert 一条到期报警（归属患者 + 报警 + 本次触发时刻）
type DueAlert struct {
	Patient models.Patient
	Alert   models.Alert
	DueAt   time.Time
}

// Key 到期项的身份：同一报警的不同周期算不同的到期项
func (d DueAlert) Key() string {
	return d.Alert.ID + "@" + d.DueAt.Format(time.RFC3339)
}

// UpcomingAlert 报警的下一次触发视图（详情页用）
type UpcomingAlert struct {
	models.Alert
	// NextDue 下一次触发时刻；Start 无法解析时为零值
	NextDue time.Time
	// Past 一次性报警已过窗口且无人处理
	Past bool
}

// cycle 推算当前周期：lastDue 为最近一次已触发时刻，nextDue 为下一次。
// 一次性报警的 lastDue/nextDue 恒为 Start；Start 在未来时 lastDue 置零
func cycle(a models.Alert, now time.Time) (lastDue, nextDue time.Time, ok bool) {
	start, ok := timeutil.Parse(a.Start)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if !a.Recurring() {
		return start, start, true
	}
	interval := time.Duration(float64(a.Repeat) * float64(time.Hour))
	elapsed := now.Sub(start)
	if elapsed < 0 {
		return time.Time{}, start, true
	}
	cycles := elapsed / interval
	lastDue = start.Add(cycles * interval)
	nextDue = start.Add((cycles + 1) * interval)
	return lastDue, nextDue, true
}

// IsDue 报警当前是否到期；已忽略的报警永远不到期
func IsDue(a models.Alert, now time.Time) bool {
	if a.Dismissed {
		return false
	}
	lastDue, _, ok := cycle(a, now)
	if !ok || lastDue.IsZero() {
		return false
	}
	since := now.Sub(lastDue)
	return since >= 0 && since < DueWindow
}

// NextOccurrence 报警的下一次触发时刻。
// 一次性报警永远报告 Start 本身（不随时间推进）
func NextOccurrence(a models.Alert, now time.Time) (time.Time, bool) {
	_, nextDue, ok := cycle(a, now)
	return nextDue, ok
}

// IsPast 一次性报警是否已过窗口（纯显示分类，不是状态迁移）
func IsPast(a models.Alert, now time.Time) bool {
	if a.Recurring() {
		return false
	}
	start, ok := timeutil.Parse(a.Start)
	if !ok {
		return false
	}
	return now.Sub(start) >= DueWindow
}

// UpcomingAlerts 患者全部报警的下一次触发视图，保持输入顺序
func UpcomingAlerts(p models.Patient, now time.Time) []UpcomingAlert {
	if len(p.Alerts) == 0 {
		return nil
	}
	out := make([]UpcomingAlert, 0, len(p.Alerts))
	for _, a := range p.Alerts {
		u := UpcomingAlert{Alert: a, Past: IsPast(a, now)}
		if next, ok := NextOccurrence(a, now); ok {
			u.NextDue = next
		}
		out = append(out, u)
	}
	return out
}

// DueSet 扫描所有患者的未忽略报警，收集当前到期的条目。
// 顺序跟随输入的患者和报警顺序，保证结果可复现
func DueSet(patients []models.Patient, now time.Time) []DueAlert {
	var due []DueAlert
	for _, p := range patients {
		for _, a := range p.Alerts {
			if !IsDue(a, now) {
				continue
			}
			lastDue, _, _ := cycle(a, now)
			due = append(due, DueAlert{Patient: p, Alert: a, DueAt: lastDue})
		}
	}
	return due
}

// HasActiveAlert 患者是否存在到期中的报警（徽标用，命中即返回）
func HasActiveAlert(p models.Patient, now time.Time) bool {
	for _, a := range p.Alerts {
		if IsDue(a, now) {
			return true
		}
	}
	return false
}

// NewlyDue 两次相邻检查之间新出现的到期项，按 (报警ID, 触发时刻) 判等。
// 上一轮到期集由调用方显式持有并传入，替代隐藏的模块级状态
func NewlyDue(prev, curr []DueAlert) []DueAlert {
	seen := make(map[string]struct{}, len(prev))
	for _, d := range prev {
		seen[d.Key()] = struct{}{}
	}
	var fresh []DueAlert
	for _, d := range curr {
		if _, ok := seen[d.Key()]; !ok {
			fresh = append(fresh, d)
		}
	}
	return fresh
}
