package autoalert

import (
	"time"

	"obtracker/internal/models"
	"obtracker/internal/timeutil"
)

// baby24hrRule 新生儿 24 小时查体：时间基准（出生时间，旧记录回退入院时间）
// 后 24 小时的一次性提醒
type baby24hrRule struct {
	gen *Generator
}

func (r *baby24hrRule) Name() string { return "baby_24hr" }

func (r *baby24hrRule) Apply(p models.Patient, alerts []models.Alert, now time.Time) []models.Alert {
	if p.Type != models.PatientBaby {
		return alerts
	}
	ref, ok := timeutil.Parse(p.TimeRef())
	if !ok {
		return alerts
	}
	if hasAuto(alerts, models.AutoBaby24hr) {
		return alerts
	}
	check := ref.Add(24 * time.Hour)
	return r.gen.insert(alerts, models.PresetBaby24hr, models.AutoBaby24hr, timeutil.Format(check), 0)
}
