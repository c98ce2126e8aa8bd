package autoalert

import (
	"time"

	"obtracker/internal/models"
	"obtracker/internal/timeutil"
)

// cbcRule 产后 CBC 复查：分娩次日早 06:00 一次性提醒。
// 只在"已分娩且分娩时间可解析"时插入，不做反向删除
type cbcRule struct {
	gen *Generator
}

func (r *cbcRule) Name() string { return "cbc" }

func (r *cbcRule) Apply(p models.Patient, alerts []models.Alert, now time.Time) []models.Alert {
	if p.Type != models.PatientMother || p.Mother == nil {
		return alerts
	}
	if !p.Mother.Delivered {
		return alerts
	}
	delivered, ok := timeutil.Parse(p.Mother.DeliveryTime)
	if !ok {
		return alerts
	}
	if hasAuto(alerts, models.AutoCBC) {
		return alerts
	}
	morning := time.Date(delivered.Year(), delivered.Month(), delivered.Day()+1, 6, 0, 0, 0, delivered.Location())
	return r.gen.insert(alerts, models.PresetCBC, models.AutoCBC, timeutil.Format(morning), 0)
}
