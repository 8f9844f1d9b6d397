package services

import (
	"adminhub/internal/database"
	"adminhub/internal/models"
	apperrors "adminhub/pkg/errors"
	"fmt"

	"gorm.io/gorm"
)

type DepartmentService struct {
	db *gorm.DB
}

func NewDepartmentService() *DepartmentService {
	return &DepartmentService{
		db: database.GetDB(),
	}
}

// Create 创建部门
func (s *DepartmentService) Create(code, name, description string) (*models.Department, error) {
	if code == "" || name == "" {
		return nil, fmt.Errorf("部门编码和名称不能为空")
	}

	var count int64
	s.db.Model(&models.Department{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("部门编码已存在: %w", apperrors.ErrConflict)
	}

	dept := &models.Department{
		Code:        code,
		Name:        name,
		Description: description,
		IsActive:    true,
	}
	err := s.db.Create(dept).Error
	return dept, err
}

// GetByID 根据ID获取部门
func (s *DepartmentService) GetByID(id uint) (*models.Department, error) {
	var dept models.Department
	err := s.db.First(&dept, id).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

// GetWithPage 分页获取部门
func (s *DepartmentService) GetWithPage(keyword string, page, pageSize int, order string) ([]*models.Department, int64, error) {
	var depts []*models.Department
	var total int64

	query := s.db.Model(&models.Department{})

	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("code LIKE ? OR name LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if order == "" {
		order = "code ASC"
	}
	err := query.Order(order).Offset(offset).Limit(pageSize).Find(&depts).Error
	if err != nil {
		return nil, 0, err
	}

	return depts, total, nil
}

// Update 更新部门
func (s *DepartmentService) Update(id uint, name, description string, isActive bool) (*models.Department, error) {
	var dept models.Department
	err := s.db.First(&dept, id).Error
	if err != nil {
		return nil, err
	}

	dept.Name = name
	dept.Description = description
	dept.IsActive = isActive

	err = s.db.Save(&dept).Error
	return &dept, err
}

// Delete 删除部门，仍有学生挂靠时拒绝
func (s *DepartmentService) Delete(id uint) error {
	var studentCount int64
	s.db.Model(&models.Student{}).Where("department_id = ?", id).Count(&studentCount)
	if studentCount > 0 {
		return fmt.Errorf("部门下仍有 %d 名学生，无法删除: %w", studentCount, apperrors.ErrConflict)
	}

	result := s.db.Delete(&models.Department{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
