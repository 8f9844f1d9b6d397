package services

import (
	"adminhub/internal/database"
	"adminhub/internal/models"
	apperrors "adminhub/pkg/errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssessmentService struct {
	db *gorm.DB
}

func NewAssessmentService() *AssessmentService {
	return &AssessmentService{
		db: database.GetDB(),
	}
}

// ========== 测评类型 ==========

// CreateTestType 创建测评类型
func (s *AssessmentService) CreateTestType(code, name, description string) (*models.TestType, error) {
	if code == "" || name == "" {
		return nil, fmt.Errorf("测评类型编码和名称不能为空")
	}

	var count int64
	s.db.Model(&models.TestType{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("测评类型编码已存在: %w", apperrors.ErrConflict)
	}

	tt := &models.TestType{Code: code, Name: name, Description: description, IsActive: true}
	err := s.db.Create(tt).Error
	return tt, err
}

// GetTestTypesWithPage 分页获取测评类型
func (s *AssessmentService) GetTestTypesWithPage(keyword string, page, pageSize int) ([]*models.TestType, int64, error) {
	var types []*models.TestType
	var total int64

	query := s.db.Model(&models.TestType{})
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("code LIKE ? OR name LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("code ASC").Offset(offset).Limit(pageSize).Find(&types).Error
	if err != nil {
		return nil, 0, err
	}
	return types, total, nil
}

// UpdateTestType 更新测评类型
func (s *AssessmentService) UpdateTestType(id uint, name, description string, isActive bool) (*models.TestType, error) {
	var tt models.TestType
	if err := s.db.First(&tt, id).Error; err != nil {
		return nil, err
	}

	tt.Name = name
	tt.Description = description
	tt.IsActive = isActive

	err := s.db.Save(&tt).Error
	return &tt, err
}

// DeleteTestType 删除测评类型，仍有批次引用时拒绝
func (s *AssessmentService) DeleteTestType(id uint) error {
	var batchCount int64
	s.db.Model(&models.AssessmentBatch{}).Where("test_type_id = ?", id).Count(&batchCount)
	if batchCount > 0 {
		return fmt.Errorf("测评类型仍被 %d 个批次引用，无法删除: %w", batchCount, apperrors.ErrConflict)
	}

	result := s.db.Delete(&models.TestType{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ========== 测评批次 ==========

// CreateBatch 创建测评批次
func (s *AssessmentService) CreateBatch(name string, testTypeID uint, departmentID *uint, settings datatypes.JSON, opensAt, closesAt *time.Time) (*models.AssessmentBatch, error) {
	if name == "" {
		return nil, fmt.Errorf("批次名称不能为空")
	}

	var ttCount int64
	s.db.Model(&models.TestType{}).Where("id = ?", testTypeID).Count(&ttCount)
	if ttCount == 0 {
		return nil, fmt.Errorf("测评类型不存在: %w", apperrors.ErrNotFound)
	}

	if departmentID != nil {
		var deptCount int64
		s.db.Model(&models.Department{}).Where("id = ?", *departmentID).Count(&deptCount)
		if deptCount == 0 {
			return nil, fmt.Errorf("部门不存在: %w", apperrors.ErrNotFound)
		}
	}

	if opensAt != nil && closesAt != nil && !closesAt.After(*opensAt) {
		return nil, fmt.Errorf("关闭时间必须晚于开放时间")
	}

	batch := &models.AssessmentBatch{
		Name:         name,
		TestTypeID:   testTypeID,
		DepartmentID: departmentID,
		Settings:     settings,
		OpensAt:      opensAt,
		ClosesAt:     closesAt,
		Status:       models.BatchStatusDraft,
	}
	err := s.db.Create(batch).Error
	return batch, err
}

// GetBatchByID 根据ID获取批次
func (s *AssessmentService) GetBatchByID(id uint) (*models.AssessmentBatch, error) {
	var batch models.AssessmentBatch
	err := s.db.Preload("TestType").Preload("Department").First(&batch, id).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetBatchesWithPage 分页获取批次
func (s *AssessmentService) GetBatchesWithPage(testTypeID, departmentID *uint, status string, page, pageSize int) ([]*models.AssessmentBatch, int64, error) {
	var batches []*models.AssessmentBatch
	var total int64

	query := s.db.Model(&models.AssessmentBatch{})
	if testTypeID != nil {
		query = query.Where("test_type_id = ?", *testTypeID)
	}
	if departmentID != nil {
		query = query.Where("department_id = ?", *departmentID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("TestType").Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&batches).Error
	if err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

// UpdateBatchStatus 流转批次状态
func (s *AssessmentService) UpdateBatchStatus(id uint, status string) (*models.AssessmentBatch, error) {
	switch status {
	case models.BatchStatusDraft, models.BatchStatusOpen, models.BatchStatusClosed:
	default:
		return nil, fmt.Errorf("状态只能是draft、open或closed")
	}

	var batch models.AssessmentBatch
	if err := s.db.First(&batch, id).Error; err != nil {
		return nil, err
	}

	batch.Status = status
	err := s.db.Save(&batch).Error
	return &batch, err
}

// DeleteBatch 删除批次
func (s *AssessmentService) DeleteBatch(id uint) error {
	result := s.db.Delete(&models.AssessmentBatch{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
