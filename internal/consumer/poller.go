// Package consumer 周期性到期检查：轮询患者存储，算出到期集，
// 对比上一轮找出新到期项，逐条通知并落库，最后刷新到期缓存。
package consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"obtracker/internal/config"
	"obtracker/internal/models"
	"obtracker/internal/notifier"
	"obtracker/internal/repository"
	"obtracker/internal/scheduler"
	"obtracker/internal/store"
)

// Poller 到期检查轮询器
type Poller struct {
	config     *config.Config
	patients   *store.PatientStore
	dueCache   *store.DueCache
	eventsRepo *repository.AlertEventsRepository
	notifier   notifier.Notifier
	clock      Clock
	logger     *zap.Logger

	// prev 上一轮的到期集。"新到期"是相邻两轮到期集的差，
	// 状态由轮询器显式持有而不是藏在包级变量里
	prev []scheduler.DueAlert
}

// NewPoller 创建轮询器
func NewPoller(
	cfg *config.Config,
	patients *store.PatientStore,
	dueCache *store.DueCache,
	eventsRepo *repository.AlertEventsRepository,
	n notifier.Notifier,
	clock Clock,
	logger *zap.Logger,
) *Poller {
	return &Poller{
		config:     cfg,
		patients:   patients,
		dueCache:   dueCache,
		eventsRepo: eventsRepo,
		notifier:   n,
		clock:      clock,
		logger:     logger,
	}
}

// Start 启动轮询（阻塞到 ctx 取消）
func (p *Poller) Start(ctx context.Context) error {
	p.logger.Info("Due-check poller started",
		zap.Int("poll_interval", p.config.Tracker.PollInterval),
	)

	ticker := time.NewTicker(time.Duration(p.config.Tracker.PollInterval) * time.Second)
	defer ticker.Stop()

	// 立即执行一次
	if err := p.checkOnce(ctx); err != nil {
		p.logger.Error("Failed to run due check on startup",
			zap.Error(err),
		)
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Due-check poller stopped")
			return nil
		case <-ticker.C:
			if err := p.checkOnce(ctx); err != nil {
				p.logger.Error("Failed to run due check",
					zap.Error(err),
				)
				// 继续下一轮，不中断
			}
		}
	}
}

// checkOnce 执行一轮到期检查
func (p *Poller) checkOnce(ctx context.Context) error {
	patients, err := p.patients.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load patients: %w", err)
	}

	now := p.clock.Now()
	due := scheduler.DueSet(patients, now)
	fresh := scheduler.NewlyDue(p.prev, due)

	p.logger.Debug("Due check",
		zap.Int("patient_count", len(patients)),
		zap.Int("due_count", len(due)),
		zap.Int("newly_due", len(fresh)),
	)

	for _, d := range fresh {
		if err := p.notifier.Notify(ctx, d); err != nil {
			p.logger.Error("Failed to notify alert",
				zap.String("alert_id", d.Alert.ID),
				zap.Error(err),
			)
			// 通知失败不影响落库
		}

		event := p.buildEvent(d, now)
		if err := p.eventsRepo.CreateAlertEvent(ctx, event); err != nil {
			p.logger.Error("Failed to create alert event",
				zap.String("event_id", event.EventID),
				zap.String("alert_id", d.Alert.ID),
				zap.Error(err),
			)
		} else {
			p.logger.Info("Alert event created",
				zap.String("event_id", event.EventID),
				zap.String("room", d.Patient.Room),
				zap.String("label", d.Alert.Label),
				zap.Time("due_at", d.DueAt),
			)
		}
	}

	entries := make([]store.DueEntry, 0, len(due))
	for _, d := range due {
		entries = append(entries, store.DueEntry{
			PatientID: d.Patient.ID,
			Room:      d.Patient.Room,
			Name:      d.Patient.Name,
			AlertID:   d.Alert.ID,
			Label:     d.Alert.Label,
			AutoType:  d.Alert.AutoType,
			DueAt:     d.DueAt,
		})
	}
	if err := p.dueCache.Update(ctx, entries); err != nil {
		p.logger.Error("Failed to update due cache",
			zap.Error(err),
		)
	}

	p.prev = due
	return nil
}

// buildEvent 把到期项转成落库的事件行
func (p *Poller) buildEvent(d scheduler.DueAlert, now time.Time) *models.AlertEvent {
	return &models.AlertEvent{
		EventID:     uuid.NewString(),
		PatientID:   d.Patient.ID,
		Room:        d.Patient.Room,
		PatientName: d.Patient.Name,
		AlertID:     d.Alert.ID,
		Label:       d.Alert.Label,
		AutoType:    d.Alert.AutoType,
		DueAt:       d.DueAt,
		NotifiedAt:  now,
		Status:      models.EventStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
