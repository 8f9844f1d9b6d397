package models

import (
	"time"

	"gorm.io/datatypes"
)

// TestType 测评类型
type TestType struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"uniqueIndex;size:50;not null" json:"code"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
	BaseModel
}

// AssessmentBatch 测评批次
type AssessmentBatch struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	TestTypeID   uint           `gorm:"not null;index" json:"test_type_id"`
	DepartmentID *uint          `gorm:"index" json:"department_id"`
	Settings     datatypes.JSON `json:"settings"` // 批次配置（题量、时长等）
	OpensAt      *time.Time     `json:"opens_at"`
	ClosesAt     *time.Time     `json:"closes_at"`
	Status       string         `gorm:"default:'draft';size:20" json:"status"`
	BaseModel

	// 关联关系
	TestType   *TestType   `gorm:"foreignKey:TestTypeID" json:"test_type,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

// 批次状态常量
const (
	BatchStatusDraft  = "draft"
	BatchStatusOpen   = "open"
	BatchStatusClosed = "closed"
)
