package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"obtracker/internal/config"
	"obtracker/internal/scheduler"
)

// MQTTNotifier 把到期报警以 JSON 发布到 MQTT 主题
type MQTTNotifier struct {
	client mqtt.Client
	topic  string
	logger *zap.Logger
}

// mqttPayload 发布的消息体
type mqttPayload struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	PatientID string    `json:"patient_id"`
	Room      string    `json:"room"`
	Name      string    `json:"name"`
	AlertID   string    `json:"alert_id"`
	Label     string    `json:"label"`
	AutoType  string    `json:"auto_type,omitempty"`
	DueAt     time.Time `json:"due_at"`
}

// NewMQTTNotifier 创建 MQTT 通知器并建立连接
func NewMQTTNotifier(cfg *config.MQTTConfig, logger *zap.Logger) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTNotifier{
		client: client,
		topic:  cfg.Topic,
		logger: logger,
	}, nil
}

func (n *MQTTNotifier) Notify(ctx context.Context, due scheduler.DueAlert) error {
	payload := mqttPayload{
		Title:     Title(due),
		Body:      Body(due),
		PatientID: due.Patient.ID,
		Room:      due.Patient.Room,
		Name:      due.Patient.Name,
		AlertID:   due.Alert.ID,
		Label:     due.Alert.Label,
		AutoType:  string(due.Alert.AutoType),
		DueAt:     due.DueAt,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	token := n.client.Publish(n.topic, 1, false, jsonData)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", n.topic, token.Error())
	}

	n.logger.Debug("Published alert notification",
		zap.String("topic", n.topic),
		zap.String("alert_id", due.Alert.ID),
	)
	return nil
}

func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}
