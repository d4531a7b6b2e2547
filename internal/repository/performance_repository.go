package repository

import (
	"fmt"

	"guideline-tutor-go/internal/model"

	"gorm.io/gorm"
)

// PerformanceRepository 定义了成绩记录的持久化接口。
// 难度控制器只关心最近若干条，FindRecentByUser 按时间倒序返回后由调用方反转。
type PerformanceRepository interface {
	Create(record *model.PerformanceRecord) error
	FindRecentByUser(userID string, limit int) ([]model.PerformanceRecord, error)
}

type mysqlPerformanceRepository struct {
	db *gorm.DB
}

// NewPerformanceRepository 创建一个新的 PerformanceRepository 实例。
func NewPerformanceRepository(db *gorm.DB) PerformanceRepository {
	return &mysqlPerformanceRepository{db: db}
}

func (r *mysqlPerformanceRepository) Create(record *model.PerformanceRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create performance record: %w", err)
	}
	return nil
}

// FindRecentByUser 返回该用户最近的 limit 条成绩，按时间从旧到新排列。
func (r *mysqlPerformanceRepository) FindRecentByUser(userID string, limit int) ([]model.PerformanceRecord, error) {
	var records []model.PerformanceRecord
	err := r.db.Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query performance records: %w", err)
	}
	// 倒序查询结果反转为时间正序
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
