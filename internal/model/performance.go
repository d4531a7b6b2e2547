package model

import "time"

// PerformanceRecord 是一次步骤评估产生的成绩记录。
// 持久化在 MySQL 中，按用户累积，作为难度控制器的滚动历史。
type PerformanceRecord struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID     string    `gorm:"type:varchar(64);index;not null" json:"-"`
	Score      float64   `gorm:"not null" json:"score"`
	Difficulty int       `gorm:"not null" json:"difficulty"`
	Date       time.Time `gorm:"autoCreateTime" json:"date"`
}

func (PerformanceRecord) TableName() string {
	return "performance_records"
}
