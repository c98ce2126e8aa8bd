package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obtracker/internal/models"
)

// t0 周期推算的基准时刻
var t0 = time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)

func newAlert(start string, repeat models.Hours) models.Alert {
	return models.Alert{
		ID:     uuid.NewString(),
		Label:  "Test Alert",
		Start:  start,
		Repeat: repeat,
	}
}

func startAt(t time.Time) string {
	return t.Format("2006-01-02T15:04")
}

// ============================================
// 到期判定
// ============================================

func TestIsDue_Recurring(t *testing.T) {
	a := newAlert(startAt(t0), 2)

	// 起点即到期
	assert.True(t, IsDue(a, t0))
	// 窗口内
	assert.True(t, IsDue(a, t0.Add(14*time.Minute)))
	// 窗口边界（左闭右开）
	assert.False(t, IsDue(a, t0.Add(DueWindow)))
	// 周期中段
	assert.False(t, IsDue(a, t0.Add(time.Hour)))
	// 下一周期再次到期
	assert.True(t, IsDue(a, t0.Add(2*time.Hour)))
	assert.True(t, IsDue(a, t0.Add(2*time.Hour+10*time.Minute)))
	// 多个周期之后
	assert.True(t, IsDue(a, t0.Add(10*time.Hour)))
	assert.False(t, IsDue(a, t0.Add(11*time.Hour)))
}

func TestIsDue_OneTime(t *testing.T) {
	a := newAlert(startAt(t0), 0)

	assert.False(t, IsDue(a, t0.Add(-time.Minute)))
	assert.True(t, IsDue(a, t0))
	assert.True(t, IsDue(a, t0.Add(14*time.Minute)))
	// 过窗不再到期
	assert.False(t, IsDue(a, t0.Add(16*time.Minute)))
	assert.False(t, IsDue(a, t0.Add(24*time.Hour)))
}

func TestIsDue_FutureStart(t *testing.T) {
	a := newAlert(startAt(t0.Add(3*time.Hour)), 2)
	assert.False(t, IsDue(a, t0))
}

func TestIsDue_Dismissed(t *testing.T) {
	a := newAlert(startAt(t0), 2)
	a.Dismissed = true

	// 已忽略的报警在任何时刻都不到期
	for _, now := range []time.Time{t0, t0.Add(2 * time.Hour), t0.Add(100 * time.Hour)} {
		assert.False(t, IsDue(a, now))
	}
}

func TestIsDue_NegativeRepeatTreatedAsOneTime(t *testing.T) {
	a := newAlert(startAt(t0), -3)

	assert.True(t, IsDue(a, t0.Add(5*time.Minute)))
	assert.False(t, IsDue(a, t0.Add(2*time.Hour)))
}

func TestIsDue_UnparseableStart(t *testing.T) {
	a := newAlert("not-a-time", 2)
	assert.False(t, IsDue(a, t0))
}

// ============================================
// 下一次触发
// ============================================

func TestNextOccurrence_Recurring(t *testing.T) {
	a := newAlert(startAt(t0), 2)

	// 窗口内也报告下一周期，而不是刚触发的这一周期
	next, ok := NextOccurrence(a, t0.Add(time.Minute))
	require.True(t, ok)
	assert.True(t, t0.Add(2*time.Hour).Equal(next))

	// 周期中段
	next, ok = NextOccurrence(a, t0.Add(time.Hour))
	require.True(t, ok)
	assert.True(t, t0.Add(2*time.Hour).Equal(next))

	// 起点在未来：下一次就是起点
	future := newAlert(startAt(t0.Add(3*time.Hour)), 2)
	next, ok = NextOccurrence(future, t0)
	require.True(t, ok)
	assert.True(t, t0.Add(3*time.Hour).Equal(next))
}

func TestNextOccurrence_StrictlyIncreases(t *testing.T) {
	a := newAlert(startAt(t0), 2)

	prev, ok := NextOccurrence(a, t0)
	require.True(t, ok)
	for i := 1; i <= 8; i++ {
		now := t0.Add(time.Duration(i) * 2 * time.Hour)
		next, ok := NextOccurrence(a, now)
		require.True(t, ok)
		assert.True(t, next.After(prev), "next occurrence must advance past %v", prev)
		assert.True(t, next.After(now), "next occurrence must stay ahead of now")
		prev = next
	}
}

func TestNextOccurrence_OneTimeNeverAdvances(t *testing.T) {
	a := newAlert(startAt(t0), 0)

	for _, now := range []time.Time{t0.Add(-time.Hour), t0, t0.Add(48 * time.Hour)} {
		next, ok := NextOccurrence(a, now)
		require.True(t, ok)
		assert.True(t, t0.Equal(next))
	}
}

func TestNextOccurrence_UnparseableStart(t *testing.T) {
	a := newAlert("", 2)
	_, ok := NextOccurrence(a, t0)
	assert.False(t, ok)
}

func TestIsPast(t *testing.T) {
	oneTime := newAlert(startAt(t0), 0)
	assert.False(t, IsPast(oneTime, t0))
	assert.False(t, IsPast(oneTime, t0.Add(14*time.Minute)))
	assert.True(t, IsPast(oneTime, t0.Add(16*time.Minute)))

	// 重复报警没有"已过"分类
	recurring := newAlert(startAt(t0), 2)
	assert.False(t, IsPast(recurring, t0.Add(100*time.Hour)))
}

func TestUpcomingAlerts(t *testing.T) {
	p := models.Patient{
		ID:   uuid.NewString(),
		Room: "12",
		Name: "Test",
		Type: models.PatientMother,
		Alerts: []models.Alert{
			newAlert(startAt(t0), 2),
			newAlert(startAt(t0.Add(-time.Hour)), 0),
		},
	}

	upcoming := UpcomingAlerts(p, t0.Add(time.Hour))
	require.Len(t, upcoming, 2)

	assert.True(t, t0.Add(2*time.Hour).Equal(upcoming[0].NextDue))
	assert.False(t, upcoming[0].Past)

	assert.True(t, t0.Add(-time.Hour).Equal(upcoming[1].NextDue))
	assert.True(t, upcoming[1].Past)
}

// ============================================
// 跨患者到期集
// ============================================

func TestDueSet_Empty(t *testing.T) {
	assert.Empty(t, DueSet(nil, t0))
	assert.Empty(t, DueSet([]models.Patient{}, t0))

	// 有患者但没有报警
	patients := []models.Patient{
		{ID: "a", Room: "1"},
		{ID: "b", Room: "2"},
		{ID: "c", Room: "3"},
	}
	assert.Empty(t, DueSet(patients, t0))
}

func TestDueSet_CollectsAcrossPatients(t *testing.T) {
	dueAlert := newAlert(startAt(t0), 2)
	quietAlert := newAlert(startAt(t0.Add(-time.Hour)), 0)
	dismissed := newAlert(startAt(t0), 2)
	dismissed.Dismissed = true

	patients := []models.Patient{
		{ID: "a", Room: "1", Name: "Alpha", Alerts: []models.Alert{dueAlert, quietAlert}},
		{ID: "b", Room: "2", Name: "Beta", Alerts: []models.Alert{dismissed}},
		{ID: "c", Room: "3", Name: "Gamma", Alerts: []models.Alert{newAlert(startAt(t0), 0)}},
	}

	now := t0.Add(4*time.Hour + 5*time.Minute)
	due := DueSet(patients, now)
	require.Len(t, due, 1)
	assert.Equal(t, "a", due[0].Patient.ID)
	assert.Equal(t, dueAlert.ID, due[0].Alert.ID)
	assert.True(t, t0.Add(4*time.Hour).Equal(due[0].DueAt))

	// 一次性报警在窗口内时两个患者都命中，顺序跟随输入
	due = DueSet(patients, t0.Add(5*time.Minute))
	require.Len(t, due, 2)
	assert.Equal(t, "a", due[0].Patient.ID)
	assert.Equal(t, "c", due[1].Patient.ID)
	assert.True(t, t0.Equal(due[1].DueAt))
}

func TestHasActiveAlert(t *testing.T) {
	p := models.Patient{
		ID: "a",
		Alerts: []models.Alert{
			newAlert(startAt(t0.Add(-time.Hour)), 0),
			newAlert(startAt(t0), 2),
		},
	}

	assert.True(t, HasActiveAlert(p, t0.Add(5*time.Minute)))
	assert.False(t, HasActiveAlert(p, t0.Add(time.Hour)))
	assert.False(t, HasActiveAlert(models.Patient{ID: "b"}, t0))
}

// ============================================
// 新到期差集
// ============================================

func TestNewlyDue(t *testing.T) {
	a := newAlert(startAt(t0), 2)
	p := models.Patient{ID: "a", Room: "1", Alerts: []models.Alert{a}}

	first := DueSet([]models.Patient{p}, t0.Add(time.Minute))
	require.Len(t, first, 1)

	// 上一轮为空：整个到期集都是新的
	fresh := NewlyDue(nil, first)
	assert.Len(t, fresh, 1)

	// 同一周期内再查：没有新到期
	second := DueSet([]models.Patient{p}, t0.Add(10*time.Minute))
	assert.Empty(t, NewlyDue(first, second))

	// 下一周期触发：同一报警算新的到期项
	third := DueSet([]models.Patient{p}, t0.Add(2*time.Hour+time.Minute))
	fresh = NewlyDue(second, third)
	require.Len(t, fresh, 1)
	assert.Equal(t, a.ID, fresh[0].Alert.ID)
	assert.True(t, t0.Add(2*time.Hour).Equal(fresh[0].DueAt))
}
