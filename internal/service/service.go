package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"obtracker/internal/autoalert"
	"obtracker/internal/config"
	"obtracker/internal/consumer"
	"obtracker/internal/export"
	"obtracker/internal/models"
	"obtracker/internal/notifier"
	"obtracker/internal/repository"
	"obtracker/internal/scheduler"
	"obtracker/internal/store"
	"obtracker/internal/timeutil"
)

// TrackerService 床旁跟踪服务（整合各层）
type TrackerService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger

	patients   *store.PatientStore
	dueCache   *store.DueCache
	eventsRepo *repository.AlertEventsRepository
	generator  *autoalert.Generator
	notifier   notifier.Notifier
	clock      consumer.Clock
	poller     *consumer.Poller
}

// NewTrackerService 创建跟踪服务
func NewTrackerService(cfg *config.Config, logger *zap.Logger) (*TrackerService, error) {
	// 1. 连接数据库
	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 2. 连接 Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	// 3. 通知器：配置了 Broker 用 MQTT，否则仅写日志
	var n notifier.Notifier
	if cfg.MQTT.Broker != "" {
		n, err = notifier.NewMQTTNotifier(&cfg.MQTT, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create mqtt notifier: %w", err)
		}
	} else {
		n = notifier.NewLogNotifier(logger)
	}

	// 4. 组装各层
	patients := store.NewPatientStore(redisClient, cfg.Tracker.StorageKey, logger)
	dueCache := store.NewDueCache(redisClient, cfg.Tracker.DueCacheKey,
		time.Duration(cfg.Tracker.DueCacheTTL)*time.Second, logger)
	eventsRepo := repository.NewAlertEventsRepository(db, logger)
	generator := autoalert.NewGenerator(logger)
	clock := consumer.SystemClock{}

	poller := consumer.NewPoller(cfg, patients, dueCache, eventsRepo, n, clock, logger)

	return &TrackerService{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		patients:    patients,
		dueCache:    dueCache,
		eventsRepo:  eventsRepo,
		generator:   generator,
		notifier:    n,
		clock:       clock,
		poller:      poller,
	}, nil
}

// Start 启动到期检查轮询
func (s *TrackerService) Start(ctx context.Context) error {
	s.logger.Info("Starting tracker service")
	return s.poller.Start(ctx)
}

// Stop 停止服务并释放连接
func (s *TrackerService) Stop() error {
	s.logger.Info("Stopping tracker service")

	s.notifier.Close()

	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database",
			zap.Error(err),
		)
	}
	if err := s.redisClient.Close(); err != nil {
		s.logger.Error("Failed to close redis",
			zap.Error(err),
		)
	}
	return nil
}

// ============================================
// 患者记录操作
// ============================================

// Patients 全部患者记录，按房间号排序
func (s *TrackerService) Patients(ctx context.Context) ([]models.Patient, error) {
	patients, err := s.patients.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	models.SortByRoom(patients)
	return patients, nil
}

// CreatePatient 创建患者记录：分配 ID，按状态生成默认报警
func (s *TrackerService) CreatePatient(ctx context.Context, p models.Patient) (*models.Patient, error) {
	if strings.TrimSpace(p.Room) == "" {
		return nil, fmt.Errorf("room is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.StatusStable
	}
	p.Alerts = s.generator.Generate(p, s.clock.Now())

	if err := s.patients.Append(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Patient created",
		zap.String("patient_id", p.ID),
		zap.String("room", p.Room),
		zap.String("type", string(p.Type)),
	)
	return &p, nil
}

// UpdatePatient 编辑患者记录并按新状态快照重新对账托管报警。
// ID 不存在时静默返回
func (s *TrackerService) UpdatePatient(ctx context.Context, id string, apply func(*models.Patient)) error {
	now := s.clock.Now()
	return s.patients.Update(ctx, id, func(p *models.Patient) {
		apply(p)
		p.Alerts = s.generator.Generate(*p, now)
	})
}

// DeletePatient 删除患者记录及其报警；ID 不存在时静默返回
func (s *TrackerService) DeletePatient(ctx context.Context, id string) error {
	return s.patients.Delete(ctx, id)
}

// SetNotes 更新备注
func (s *TrackerService) SetNotes(ctx context.Context, id, notes string) error {
	return s.patients.Update(ctx, id, func(p *models.Patient) {
		p.Notes = notes
	})
}

// SetCBCDone 勾选产后 CBC 完成项（仅产妇记录）
func (s *TrackerService) SetCBCDone(ctx context.Context, id string, done bool) error {
	return s.patients.Update(ctx, id, func(p *models.Patient) {
		if p.Mother != nil {
			p.Mother.CBCDone = done
		}
	})
}

// SetCheck24Done 勾选 24 小时查体完成项（仅新生儿记录）
func (s *TrackerService) SetCheck24Done(ctx context.Context, id string, done bool) error {
	return s.patients.Update(ctx, id, func(p *models.Patient) {
		if p.Baby != nil {
			p.Baby.Check24Done = done
		}
	})
}

// ============================================
// 报警操作
// ============================================

// AddAlert 给患者添加报警。preset 为 custom 时用调用方给的文案和间隔，
// 否则文案与间隔取预设
func (s *TrackerService) AddAlert(ctx context.Context, patientID string, preset models.Preset, label, start string, repeat models.Hours) error {
	if !preset.Valid() {
		preset = models.PresetCustom
	}
	if preset != models.PresetCustom {
		label = preset.Label()
		repeat = preset.RepeatHours()
	}
	if strings.TrimSpace(label) == "" {
		label = models.PresetCustom.Label()
	}
	if repeat < 0 {
		repeat = 0
	}
	if strings.TrimSpace(start) == "" {
		start = timeutil.Format(s.clock.Now())
	}

	alert := models.Alert{
		ID:     uuid.NewString(),
		Label:  label,
		Start:  start,
		Repeat: repeat,
	}
	return s.patients.Update(ctx, patientID, func(p *models.Patient) {
		p.Alerts = append(p.Alerts, alert)
	})
}

// RemoveAlert 删除患者的一条报警；患者或报警不存在时静默返回
func (s *TrackerService) RemoveAlert(ctx context.Context, patientID, alertID string) error {
	return s.patients.Update(ctx, patientID, func(p *models.Patient) {
		out := p.Alerts[:0]
		for _, a := range p.Alerts {
			if a.ID != alertID {
				out = append(out, a)
			}
		}
		p.Alerts = out
	})
}

// DismissAlert 忽略一条报警（终态，之后不再参与到期判定）
func (s *TrackerService) DismissAlert(ctx context.Context, patientID, alertID string) error {
	return s.patients.Update(ctx, patientID, func(p *models.Patient) {
		if a := p.FindAlert(alertID); a != nil {
			a.Dismissed = true
		}
	})
}

// DueNow 当前到期的报警集（按存储顺序）
func (s *TrackerService) DueNow(ctx context.Context) ([]scheduler.DueAlert, error) {
	patients, err := s.patients.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return scheduler.DueSet(patients, s.clock.Now()), nil
}

// ============================================
// 报警事件查询
// ============================================

// ListAlertEvents 查询报警事件（分页过滤）
func (s *TrackerService) ListAlertEvents(ctx context.Context, filters repository.AlertEventFilters, page, size int) ([]*models.AlertEvent, int, error) {
	if size > 100 {
		size = 100
	}
	events, total, err := s.eventsRepo.ListAlertEvents(ctx, filters, page, size)
	if err != nil {
		s.logger.Error("Failed to list alert events",
			zap.Error(err),
		)
		return nil, 0, err
	}
	return events, total, nil
}

// AcknowledgeAlertEvent 确认报警事件
func (s *TrackerService) AcknowledgeAlertEvent(ctx context.Context, eventID, handler string) error {
	return s.eventsRepo.AcknowledgeAlertEvent(ctx, eventID, handler)
}

// ============================================
// 快照导入导出
// ============================================

// ExportSnapshot 导出患者表快照
func (s *TrackerService) ExportSnapshot(ctx context.Context) ([]byte, error) {
	patients, err := s.patients.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return export.Snapshot(patients)
}

// ImportSnapshot 导入患者表快照，返回导入后的记录总数
func (s *TrackerService) ImportSnapshot(ctx context.Context, data []byte, mode export.Mode) (int, error) {
	incoming, err := export.Parse(data)
	if err != nil {
		return 0, err
	}

	var merged []models.Patient
	switch mode {
	case export.ModeReplace:
		merged = incoming
	default:
		existing, err := s.patients.LoadAll(ctx)
		if err != nil {
			return 0, err
		}
		merged = export.Merge(existing, incoming)
	}

	if err := s.patients.SaveAll(ctx, merged); err != nil {
		return 0, err
	}
	s.logger.Info("Snapshot imported",
		zap.String("mode", string(mode)),
		zap.Int("incoming", len(incoming)),
		zap.Int("total", len(merged)),
	)
	return len(merged), nil
}
