package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortByRoom(t *testing.T) {
	patients := []Patient{
		{ID: "a", Room: "12B"},
		{ID: "b", Room: "2"},
		{ID: "c", Room: "12A"},
		{ID: "d", Room: "Triage"},
		{ID: "e", Room: "101"},
	}

	SortByRoom(patients)

	// 无数字前缀的房间排最前（按 0 处理），数字升序，同号按字典序
	rooms := make([]string, 0, len(patients))
	for _, p := range patients {
		rooms = append(rooms, p.Room)
	}
	assert.Equal(t, []string{"Triage", "2", "12A", "12B", "101"}, rooms)
}

func TestSortByRoom_Stable(t *testing.T) {
	patients := []Patient{
		{ID: "first", Room: "5"},
		{ID: "second", Room: "5"},
	}
	SortByRoom(patients)
	assert.Equal(t, "first", patients[0].ID)
	assert.Equal(t, "second", patients[1].ID)
}

func TestHours_UnmarshalCoercion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Hours
	}{
		{"number", `{"repeatHours": 2.5}`, 2.5},
		{"numeric string", `{"repeatHours": "4"}`, 4},
		{"garbage string", `{"repeatHours": "often"}`, 0},
		{"null", `{"repeatHours": null}`, 0},
		{"missing", `{}`, 0},
		{"bool", `{"repeatHours": true}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Alert
			require.NoError(t, json.Unmarshal([]byte(tt.input), &a))
			assert.Equal(t, tt.want, a.Repeat)
		})
	}
}

func TestAlert_Recurring(t *testing.T) {
	assert.True(t, (&Alert{Repeat: 2}).Recurring())
	assert.False(t, (&Alert{Repeat: 0}).Recurring())
	// 负值不应出现，但出现了也按一次性处理
	assert.False(t, (&Alert{Repeat: -1}).Recurring())
}

func TestPreset_Mapping(t *testing.T) {
	assert.Equal(t, "💊 Mag Check", PresetMagCheck.Label())
	assert.Equal(t, Hours(2), PresetMagCheck.RepeatHours())
	assert.Equal(t, Hours(4), PresetLaborNote.RepeatHours())
	assert.Equal(t, Hours(0), PresetCBC.RepeatHours())
	assert.Equal(t, "Custom Alert", PresetCustom.Label())

	assert.True(t, PresetBaby24hr.Valid())
	assert.False(t, Preset("bloodraw").Valid())
}

func TestFeeding_Icon(t *testing.T) {
	assert.Equal(t, "🍼", FeedingFormula.Icon())
	assert.Equal(t, "", Feeding("").Icon())
}

func TestPatient_TimeRef(t *testing.T) {
	baby := Patient{
		Type:     PatientBaby,
		Admitted: "2024-01-05T10:00",
		Baby:     &BabyInfo{Born: "2024-01-05T08:00"},
	}
	assert.Equal(t, "2024-01-05T08:00", baby.TimeRef())

	// 旧记录没有出生时间
	baby.Baby.Born = ""
	assert.Equal(t, "2024-01-05T10:00", baby.TimeRef())

	mother := Patient{Type: PatientMother, Admitted: "2024-01-05T10:00"}
	assert.Equal(t, "2024-01-05T10:00", mother.TimeRef())
}

func TestPatient_FindAlert(t *testing.T) {
	p := Patient{Alerts: []Alert{{ID: "a1"}, {ID: "a2"}}}

	found := p.FindAlert("a2")
	require.NotNil(t, found)
	assert.Equal(t, "a2", found.ID)

	assert.Nil(t, p.FindAlert("missing"))
}

func TestPatient_JSONRoundTrip(t *testing.T) {
	p := Patient{
		ID:       "m1",
		Room:     "12",
		Name:     "Doe, Jane",
		Type:     PatientMother,
		Status:   StatusCaution,
		Admitted: "2024-01-09T20:00",
		Alerts: []Alert{
			{ID: "a1", Label: "💊 Mag Check", AutoType: AutoMagCheck, Start: "2024-01-09T20:00", Repeat: 2},
		},
		Mother: &MotherInfo{
			Preeclamptic: true,
			Gravida:      2,
			Para:         1,
			Gestation:    "39+2",
			EBL:          "350",
			MagStart:     "2024-01-09T20:00",
		},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var back Patient
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)

	// 变体字段保持变体归属：产妇记录没有 baby 段
	assert.Nil(t, back.Baby)
}
