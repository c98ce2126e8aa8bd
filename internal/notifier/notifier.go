// Package notifier 把新到期的报警送出设备：日志输出或 MQTT 发布。
// 标题取 "Rm <房间>: <姓名>"，正文取报警文案。
package notifier

import (
	"context"

	"go.uber.org/zap"

	"obtracker/internal/scheduler"
)

// Notifier 通知发送接口，每条新到期报警调用一次
type Notifier interface {
	Notify(ctx context.Context, due scheduler.DueAlert) error
	Close()
}

// Title 通知标题
func Title(due scheduler.DueAlert) string {
	return "Rm " + due.Patient.Room + ": " + due.Patient.Name
}

// Body 通知正文
func Body(due scheduler.DueAlert) string {
	return due.Alert.Label
}

// LogNotifier 仅写日志的通知器（未配置 MQTT 时的默认实现）
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, due scheduler.DueAlert) error {
	n.logger.Info("Alert due",
		zap.String("title", Title(due)),
		zap.String("body", Body(due)),
		zap.String("patient_id", due.Patient.ID),
		zap.String("alert_id", due.Alert.ID),
		zap.Time("due_at", due.DueAt),
	)
	return nil
}

func (n *LogNotifier) Close() {}
