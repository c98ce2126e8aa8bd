// Package autoalert 在患者记录创建或编辑后对账系统托管报警：
// 按当前状态快照增删带 autoType 的条目，用户自建报警一律不动。
package autoalert

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"obtracker/internal/models"
)

// rule 单条对账规则。对同一状态重复执行必须是幂等的
type rule interface {
	Name() string
	Apply(p models.Patient, alerts []models.Alert, now time.Time) []models.Alert
}

// Generator 报警对账器
type Generator struct {
	logger *zap.Logger
	rules  []rule

	// newID 生成报警 ID，测试里可替换
	newID func() string
}

// NewGenerator 创建对账器
func NewGenerator(logger *zap.Logger) *Generator {
	g := &Generator{
		logger: logger,
		newID:  uuid.NewString,
	}
	g.rules = []rule{
		&cbcRule{gen: g},
		&magCheckRule{gen: g},
		&laborNoteRule{gen: g},
		&baby24hrRule{gen: g},
	}
	return g
}

// Generate 对患者状态快照执行全部规则，返回新的报警列表。
// 不修改传入的记录；每次编辑后全表执行，而不是只看变更的字段
func (g *Generator) Generate(p models.Patient, now time.Time) []models.Alert {
	alerts := append([]models.Alert(nil), p.Alerts...)
	for _, r := range g.rules {
		alerts = r.Apply(p, alerts, now)
	}
	return alerts
}

// hasAuto 列表中是否已有该 autoType 的报警
func hasAuto(alerts []models.Alert, t models.AutoType) bool {
	for _, a := range alerts {
		if a.AutoType == t {
			return true
		}
	}
	return false
}

// removeAuto 删除该 autoType 的全部报警，只按 autoType 匹配，不看文案
func removeAuto(alerts []models.Alert, t models.AutoType) []models.Alert {
	out := alerts[:0]
	for _, a := range alerts {
		if a.AutoType != t {
			out = append(out, a)
		}
	}
	return out
}

// insert 追加一条系统托管报警
func (g *Generator) insert(alerts []models.Alert, preset models.Preset, auto models.AutoType, start string, repeat models.Hours) []models.Alert {
	a := models.Alert{
		ID:       g.newID(),
		Label:    preset.Label(),
		AutoType: auto,
		Start:    start,
		Repeat:   repeat,
	}
	g.logger.Debug("Auto alert inserted",
		zap.String("auto_type", string(auto)),
		zap.String("start", start),
	)
	return append(alerts, a)
}
