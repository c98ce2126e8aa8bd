// Package export 患者表的 JSON 快照导入导出。
// 快照就是存储层的患者数组，导出导入无损往返。
package export

import (
	"encoding/json"
	"fmt"

	"obtracker/internal/models"
)

// Mode 导入模式
type Mode string

const (
	// ModeMerge 合并：跳过 ID 已存在的记录
	ModeMerge Mode = "merge"
	// ModeReplace 替换：丢弃现有记录
	ModeReplace Mode = "replace"
)

// Snapshot 导出患者表为 JSON 文档
func Snapshot(patients []models.Patient) ([]byte, error) {
	jsonData, err := json.MarshalIndent(patients, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return jsonData, nil
}

// Parse 解析快照文档
func Parse(data []byte) ([]models.Patient, error) {
	var patients []models.Patient
	if err := json.Unmarshal(data, &patients); err != nil {
		return nil, fmt.Errorf("invalid import file: %w", err)
	}
	return patients, nil
}

// Merge 合并导入：已有 ID 的记录保持不变，其余追加
func Merge(existing, incoming []models.Patient) []models.Patient {
	seen := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		seen[p.ID] = struct{}{}
	}
	out := append([]models.Patient(nil), existing...)
	for _, p := range incoming {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}
