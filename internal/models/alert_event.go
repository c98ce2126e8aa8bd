package models

import (
	"time"
)

// 报警事件状态
const (
	EventStatusActive       = "active"
	EventStatusAcknowledged = "acknowledged"
)

// AlertEvent 到期报警事件（对应 alert_events 表）
// 每条新到期的报警在通知时落一行，供交接班回溯
type AlertEvent struct {
	EventID     string     `json:"event_id" db:"event_id"`
	PatientID   string     `json:"patient_id" db:"patient_id"`
	Room        string     `json:"room" db:"room"`
	PatientName string     `json:"patient_name" db:"patient_name"`
	AlertID     string     `json:"alert_id" db:"alert_id"`
	Label       string     `json:"label" db:"label"`
	AutoType    AutoType   `json:"auto_type,omitempty" db:"auto_type"`
	DueAt       time.Time  `json:"due_at" db:"due_at"`
	NotifiedAt  time.Time  `json:"notified_at" db:"notified_at"`
	Status      string     `json:"status" db:"status"`
	Handler     *string    `json:"handler,omitempty" db:"handler"`
	HandTime    *time.Time `json:"hand_time,omitempty" db:"hand_time"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
