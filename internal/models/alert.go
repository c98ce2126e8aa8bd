package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// AutoType 系统托管报警的类型标记，空串表示用户自建报警
type AutoType string

const (
	AutoNone      AutoType = ""
	AutoCBC       AutoType = "cbc"
	AutoMagCheck  AutoType = "mag_check"
	AutoLaborNote AutoType = "labor_note"
	AutoBaby24hr  AutoType = "baby_24hr"
)

// Alert 定时提醒
// Start 为首次（或唯一一次）触发时刻；RepeatHours > 0 时按该间隔无限重复
type Alert struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	AutoType  AutoType `json:"autoType,omitempty"`
	Start     string   `json:"start"`
	Repeat    Hours    `json:"repeatHours"`
	Dismissed bool     `json:"dismissed"`
}

// Recurring 是否为重复报警（间隔必须严格为正，0 和负值都按一次性处理）
func (a *Alert) Recurring() bool {
	return a.Repeat > 0
}

// Hours 小时数。旧快照里 repeatHours 可能是字符串、null 或垃圾值，
// 统一宽容解析，解析不了归 0（一次性语义）
type Hours float64

func (h *Hours) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*h = Hours(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*h = Hours(f)
			return nil
		}
	}
	*h = 0
	return nil
}

// Preset 报警预设（下拉选项的枚举化版本）
type Preset string

const (
	PresetCustom    Preset = "custom"
	PresetBloodDraw Preset = "blood_draw"
	PresetMagCheck  Preset = "mag_check"
	PresetLaborNote Preset = "labor_note"
	PresetCBC       Preset = "cbc"
	PresetBaby24hr  Preset = "baby_24hr"
)

// Label 预设的显示文案
func (p Preset) Label() string {
	switch p {
	case PresetBloodDraw:
		return "🩸 Blood Draw"
	case PresetMagCheck:
		return "💊 Mag Check"
	case PresetLaborNote:
		return "📝 Labor Note"
	case PresetCBC:
		return "🧪 CBC Check"
	case PresetBaby24hr:
		return "👶 24hr Check"
	default:
		return "Custom Alert"
	}
}

// RepeatHours 预设的重复间隔（小时），一次性预设为 0
func (p Preset) RepeatHours() Hours {
	switch p {
	case PresetMagCheck:
		return 2
	case PresetLaborNote:
		return 4
	default:
		return 0
	}
}

// Valid 是否为已知预设
func (p Preset) Valid() bool {
	switch p {
	case PresetCustom, PresetBloodDraw, PresetMagCheck, PresetLaborNote, PresetCBC, PresetBaby24hr:
		return true
	}
	return false
}
