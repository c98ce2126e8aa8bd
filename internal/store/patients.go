// Package store 持久化患者记录与到期报警缓存（Redis）。
// 患者表整体存于单键 JSON，单写者串行读改写。
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"obtracker/internal/models"
)

// PatientStore 患者记录存储
type PatientStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewPatientStore 创建患者记录存储
func NewPatientStore(client *redis.Client, key string, logger *zap.Logger) *PatientStore {
	return &PatientStore{
		client: client,
		key:    key,
		logger: logger,
	}
}

// LoadAll 读取全部患者记录。
// 键不存在或内容损坏时返回空列表而不是错误，存储损坏不应打断上层
func (s *PatientStore) LoadAll(ctx context.Context) ([]models.Patient, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return []models.Patient{}, nil
		}
		return nil, fmt.Errorf("failed to load patients: %w", err)
	}

	var patients []models.Patient
	if err := json.Unmarshal([]byte(val), &patients); err != nil {
		s.logger.Warn("Patient store corrupt, starting empty",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return []models.Patient{}, nil
	}
	if patients == nil {
		patients = []models.Patient{}
	}
	return patients, nil
}

// SaveAll 覆盖写入全部患者记录
func (s *PatientStore) SaveAll(ctx context.Context, patients []models.Patient) error {
	jsonData, err := json.Marshal(patients)
	if err != nil {
		return fmt.Errorf("failed to marshal patients: %w", err)
	}
	if err := s.client.Set(ctx, s.key, jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to save patients: %w", err)
	}
	return nil
}

// Get 按 ID 查找患者，不存在时返回 nil（上层按无此记录静默处理）
func (s *PatientStore) Get(ctx context.Context, id string) (*models.Patient, error) {
	patients, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range patients {
		if patients[i].ID == id {
			return &patients[i], nil
		}
	}
	return nil, nil
}

// Update 读改写单条患者记录；ID 不存在时不做任何事
func (s *PatientStore) Update(ctx context.Context, id string, mutate func(*models.Patient)) error {
	patients, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	for i := range patients {
		if patients[i].ID == id {
			mutate(&patients[i])
			return s.SaveAll(ctx, patients)
		}
	}
	return nil
}

// Append 追加一条患者记录
func (s *PatientStore) Append(ctx context.Context, p models.Patient) error {
	patients, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	return s.SaveAll(ctx, append(patients, p))
}

// Delete 删除患者记录及其全部报警；ID 不存在时不做任何事
func (s *PatientStore) Delete(ctx context.Context, id string) error {
	patients, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	out := patients[:0]
	removed := false
	for _, p := range patients {
		if p.ID == id {
			removed = true
			continue
		}
		out = append(out, p)
	}
	if !removed {
		return nil
	}
	return s.SaveAll(ctx, out)
}
