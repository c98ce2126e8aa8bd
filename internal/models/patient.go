package models

import (
	"sort"
)

// PatientType 病区记录类型（产妇或新生儿）
type PatientType string

const (
	PatientMother PatientType = "mother"
	PatientBaby   PatientType = "baby"
)

// Status 病情分级（卡片颜色标记）
type Status string

const (
	StatusStable   Status = "green"
	StatusCaution  Status = "yellow"
	StatusCritical Status = "red"
)

// Patient 床旁跟踪记录（对应存储中的一条患者记录）
// Mother/Baby 二选一，由 Type 决定，避免单一松散结构里读错变体字段
type Patient struct {
	ID       string      `json:"id"`
	Room     string      `json:"room"`
	Name     string      `json:"name"`
	Type     PatientType `json:"type"`
	Status   Status      `json:"status"`
	DOB      string      `json:"dob,omitempty"`
	Admitted string      `json:"admitted,omitempty"`
	Notes    string      `json:"notes"`
	Alerts   []Alert     `json:"alerts"`

	Mother *MotherInfo `json:"mother,omitempty"`
	Baby   *BabyInfo   `json:"baby,omitempty"`
}

// MotherInfo 产妇记录特有字段
type MotherInfo struct {
	Preeclamptic bool   `json:"preeclamptic"`
	Labor        bool   `json:"labor"`
	Csection     bool   `json:"csection"`
	CsectionDate string `json:"csectionDate,omitempty"`
	Delivered    bool   `json:"delivered"`
	DeliveryTime string `json:"deliveryTime,omitempty"`
	EBL          string `json:"ebl,omitempty"`
	Gravida      int    `json:"gravida,omitempty"`
	Para         int    `json:"para,omitempty"`
	Gestation    string `json:"gestation,omitempty"`
	GBSPositive  bool   `json:"gbs"`
	MagStart     string `json:"magStart,omitempty"`
	LaborStart   string `json:"laborStart,omitempty"`
	CBCDone      bool   `json:"cbcDone"`
}

// BabyInfo 新生儿记录特有字段
type BabyInfo struct {
	Born        string        `json:"born,omitempty"`
	WeightGrams int           `json:"weightGrams,omitempty"`
	Feeding     Feeding       `json:"feeding,omitempty"`
	NICU        bool          `json:"nicu"`
	Bilirubin   float64       `json:"bilirubin,omitempty"`
	PhotoLight  bool          `json:"photoLight"`
	Screen      NewbornScreen `json:"screen"`
	Check24Done bool          `json:"check24Done"`
}

// NewbornScreen 新生儿筛查结果
type NewbornScreen struct {
	HearingRight ScreenResult `json:"hearingRight,omitempty"`
	HearingLeft  ScreenResult `json:"hearingLeft,omitempty"`
	Cardiac      ScreenResult `json:"cardiac,omitempty"`
}

// ScreenResult 筛查结果三态：空串表示未测
type ScreenResult string

const (
	ScreenUntested ScreenResult = ""
	ScreenPass     ScreenResult = "pass"
	ScreenFail     ScreenResult = "fail"
)

// Feeding 喂养方式
type Feeding string

const (
	FeedingBreast  Feeding = "breast"
	FeedingFormula Feeding = "formula"
	FeedingMixed   Feeding = "mixed"
	FeedingTube    Feeding = "tube"
)

// Icon 喂养方式的显示图标（枚举穷举，替代字符串查表）
func (f Feeding) Icon() string {
	switch f {
	case FeedingBreast:
		return "🤱"
	case FeedingFormula:
		return "🍼"
	case FeedingMixed:
		return "🤱🍼"
	case FeedingTube:
		return "🩹"
	default:
		return ""
	}
}

// TimeRef 新生儿的时间基准：优先出生时间，旧记录回退到入院时间
func (p *Patient) TimeRef() string {
	if p.Type == PatientBaby && p.Baby != nil && p.Baby.Born != "" {
		return p.Baby.Born
	}
	return p.Admitted
}

// FindAlert 按 ID 查找报警，未找到返回 nil
func (p *Patient) FindAlert(alertID string) *Alert {
	for i := range p.Alerts {
		if p.Alerts[i].ID == alertID {
			return &p.Alerts[i]
		}
	}
	return nil
}

// SortByRoom 按房间号排序：数字前缀升序，相同时按整串字典序
func SortByRoom(patients []Patient) {
	sort.SliceStable(patients, func(i, j int) bool {
		ni, nj := roomNumber(patients[i].Room), roomNumber(patients[j].Room)
		if ni != nj {
			return ni < nj
		}
		return patients[i].Room < patients[j].Room
	})
}

// roomNumber 提取房间号的前导数字，无数字时归 0
func roomNumber(room string) int {
	n := 0
	seen := false
	for _, r := range room {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		seen = true
	}
	if !seen {
		return 0
	}
	return n
}
