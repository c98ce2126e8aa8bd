package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"obtracker/internal/models"
)

// AlertEventsRepository 报警事件仓库
type AlertEventsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertEventsRepository 创建报警事件仓库
func NewAlertEventsRepository(db *sql.DB, logger *zap.Logger) *AlertEventsRepository {
	return &AlertEventsRepository{
		db:     db,
		logger: logger,
	}
}

// AlertEventFilters 报警事件过滤条件
type AlertEventFilters struct {
	// 时间段过滤（按 due_at）
	StartTime *time.Time
	EndTime   *time.Time

	// 患者过滤
	PatientID *string
	Room      *string

	// 报警类型过滤
	AutoType *models.AutoType

	// 状态过滤
	Status   *string
	Statuses []string
}

// ============================================
// 基础 CRUD 操作
// ============================================

// CreateAlertEvent 创建报警事件
func (r *AlertEventsRepository) CreateAlertEvent(ctx context.Context, event *models.AlertEvent) error {
	if event == nil {
		return fmt.Errorf("event is required")
	}
	if event.EventID == "" {
		return fmt.Errorf("event_id is required")
	}

	query := `
		INSERT INTO alert_events (
			event_id,
			patient_id,
			room,
			patient_name,
			alert_id,
			label,
			auto_type,
			due_at,
			notified_at,
			status,
			handler,
			hand_time,
			created_at,
			updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	_, err := r.db.ExecContext(ctx,
		query,
		event.EventID,
		event.PatientID,
		event.Room,
		event.PatientName,
		event.AlertID,
		event.Label,
		string(event.AutoType),
		event.DueAt,
		event.NotifiedAt,
		event.Status,
		event.Handler,
		event.HandTime,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create alert event: %w", err)
	}

	return nil
}

// GetAlertEvent 根据 event_id 获取单条报警事件
func (r *AlertEventsRepository) GetAlertEvent(ctx context.Context, eventID string) (*models.AlertEvent, error) {
	if eventID == "" {
		return nil, fmt.Errorf("event_id is required")
	}

	query := `
		SELECT
			event_id,
			patient_id,
			room,
			patient_name,
			alert_id,
			label,
			auto_type,
			due_at,
			notified_at,
			status,
			handler,
			hand_time,
			created_at,
			updated_at
		FROM alert_events
		WHERE event_id = $1
	`

	event, err := r.scanAlertEvent(r.db.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("alert event not found: %s", eventID)
		}
		return nil, fmt.Errorf("failed to query alert event: %w", err)
	}

	return event, nil
}

// rowScanner QueryRow 和 Rows 的公共扫描接口
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAlertEvent 扫描一行报警事件，处理可空列
func (r *AlertEventsRepository) scanAlertEvent(row rowScanner) (*models.AlertEvent, error) {
	var event models.AlertEvent
	var autoType sql.NullString
	var handler sql.NullString
	var handTime sql.NullTime

	err := row.Scan(
		&event.EventID,
		&event.PatientID,
		&event.Room,
		&event.PatientName,
		&event.AlertID,
		&event.Label,
		&autoType,
		&event.DueAt,
		&event.NotifiedAt,
		&event.Status,
		&handler,
		&handTime,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if autoType.Valid {
		event.AutoType = models.AutoType(autoType.String)
	}
	if handler.Valid {
		event.Handler = &handler.String
	}
	if handTime.Valid {
		event.HandTime = &handTime.Time
	}

	return &event, nil
}

// ============================================
// 查询操作
// ============================================

// buildWhereClause 构建 WHERE 子句（用于 List/Count 查询）
func (r *AlertEventsRepository) buildWhereClause(filters AlertEventFilters, args *[]interface{}, argN *int) []string {
	where := []string{"1=1"}

	// 时间段过滤
	if filters.StartTime != nil {
		where = append(where, fmt.Sprintf("due_at >= $%d", *argN))
		*args = append(*args, *filters.StartTime)
		*argN++
	}
	if filters.EndTime != nil {
		where = append(where, fmt.Sprintf("due_at <= $%d", *argN))
		*args = append(*args, *filters.EndTime)
		*argN++
	}

	// 患者过滤
	if filters.PatientID != nil {
		where = append(where, fmt.Sprintf("patient_id = $%d", *argN))
		*args = append(*args, *filters.PatientID)
		*argN++
	}
	if filters.Room != nil {
		where = append(where, fmt.Sprintf("room = $%d", *argN))
		*args = append(*args, *filters.Room)
		*argN++
	}

	// 报警类型过滤
	if filters.AutoType != nil {
		where = append(where, fmt.Sprintf("auto_type = $%d", *argN))
		*args = append(*args, string(*filters.AutoType))
		*argN++
	}

	// 状态过滤
	if filters.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", *argN))
		*args = append(*args, *filters.Status)
		*argN++
	}
	if len(filters.Statuses) > 0 {
		placeholders := make([]string, len(filters.Statuses))
		for i := range filters.Statuses {
			placeholders[i] = fmt.Sprintf("$%d", *argN)
			*args = append(*args, filters.Statuses[i])
			*argN++
		}
		where = append(where, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}

	return where
}

// ListAlertEvents 列表查询（支持多条件过滤、分页），按 due_at 倒序
func (r *AlertEventsRepository) ListAlertEvents(ctx context.Context, filters AlertEventFilters, page, size int) ([]*models.AlertEvent, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	var args []interface{}
	argN := 1
	where := r.buildWhereClause(filters, &args, &argN)
	whereClause := strings.Join(where, " AND ")

	// 先取总数，再取当前页
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM alert_events WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count alert events: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT
			event_id,
			patient_id,
			room,
			patient_name,
			alert_id,
			label,
			auto_type,
			due_at,
			notified_at,
			status,
			handler,
			hand_time,
			created_at,
			updated_at
		FROM alert_events
		WHERE %s
		ORDER BY due_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argN, argN+1)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alert events: %w", err)
	}
	defer rows.Close()

	var events []*models.AlertEvent
	for rows.Next() {
		event, err := r.scanAlertEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan alert event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate alert events: %w", err)
	}

	return events, total, nil
}

// ============================================
// 状态管理
// ============================================

// AcknowledgeAlertEvent 确认报警事件（记录处理人和处理时间）
func (r *AlertEventsRepository) AcknowledgeAlertEvent(ctx context.Context, eventID, handler string) error {
	if eventID == "" {
		return fmt.Errorf("event_id is required")
	}

	query := `
		UPDATE alert_events
		SET status = $1, handler = $2, hand_time = $3, updated_at = $3
		WHERE event_id = $4
	`

	result, err := r.db.ExecContext(ctx, query, models.EventStatusAcknowledged, handler, time.Now(), eventID)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alert event not found: %s", eventID)
	}

	return nil
}

// ============================================
// 统计查询
// ============================================

// CountAlertEvents 统计报警事件数量（按条件）
func (r *AlertEventsRepository) CountAlertEvents(ctx context.Context, filters AlertEventFilters) (int, error) {
	var args []interface{}
	argN := 1
	where := r.buildWhereClause(filters, &args, &argN)

	query := fmt.Sprintf("SELECT COUNT(*) FROM alert_events WHERE %s", strings.Join(where, " AND "))

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alert events: %w", err)
	}

	return count, nil
}
