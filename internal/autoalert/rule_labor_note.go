package autoalert

import (
	"time"

	"obtracker/internal/models"
	"obtracker/internal/timeutil"
)

// laborNoteRule 产程记录：临产 q4h 重复提醒，结构与 magCheckRule 相同
type laborNoteRule struct {
	gen *Generator
}

func (r *laborNoteRule) Name() string { return "labor_note" }

func (r *laborNoteRule) Apply(p models.Patient, alerts []models.Alert, now time.Time) []models.Alert {
	if p.Type != models.PatientMother || p.Mother == nil {
		return alerts
	}
	if !p.Mother.Labor {
		return removeAuto(alerts, models.AutoLaborNote)
	}
	if hasAuto(alerts, models.AutoLaborNote) {
		return alerts
	}
	start := p.Mother.LaborStart
	if start == "" {
		start = timeutil.Format(now)
	}
	return r.gen.insert(alerts, models.PresetLaborNote, models.AutoLaborNote, start, models.PresetLaborNote.RepeatHours())
}
