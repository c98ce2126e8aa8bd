package autoalert

import (
	"time"

	"obtracker/internal/models"
	"obtracker/internal/timeutil"
)

// magCheckRule 硫酸镁监测：子痫前期 q2h 重复提醒。
// 起点取记录的镁剂开始时间，未填则取当前时刻；
// 标记撤销后删除对应的托管报警
type magCheckRule struct {
	gen *Generator
}

func (r *magCheckRule) Name() string { return "mag_check" }

func (r *magCheckRule) Apply(p models.Patient, alerts []models.Alert, now time.Time) []models.Alert {
	if p.Type != models.PatientMother || p.Mother == nil {
		return alerts
	}
	if !p.Mother.Preeclamptic {
		return removeAuto(alerts, models.AutoMagCheck)
	}
	if hasAuto(alerts, models.AutoMagCheck) {
		return alerts
	}
	start := p.Mother.MagStart
	if start == "" {
		start = timeutil.Format(now)
	}
	return r.gen.insert(alerts, models.PresetMagCheck, models.AutoMagCheck, start, models.PresetMagCheck.RepeatHours())
}
