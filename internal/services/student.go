package services

import (
	"adminhub/internal/database"
	"adminhub/internal/models"
	apperrors "adminhub/pkg/errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentService struct {
	db *gorm.DB
}

func NewStudentService() *StudentService {
	return &StudentService{
		db: database.GetDB(),
	}
}

// StudentFilter 学生列表过滤条件
type StudentFilter struct {
	Keyword      string
	DepartmentID *uint
	Status       string
	// ManagedByIDs 非空时限定负责人范围（SELF_MANAGED场景传调用者的管理子树）
	ManagedByIDs []string
}

// Create 创建学生
func (s *StudentService) Create(code, fullName string, email *string, departmentID *uint, managedByID *string) (*models.Student, error) {
	if code == "" || fullName == "" {
		return nil, fmt.Errorf("学号和姓名不能为空")
	}

	var count int64
	s.db.Model(&models.Student{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("学号已存在: %w", apperrors.ErrConflict)
	}

	if departmentID != nil {
		var deptCount int64
		s.db.Model(&models.Department{}).Where("id = ?", *departmentID).Count(&deptCount)
		if deptCount == 0 {
			return nil, fmt.Errorf("部门不存在: %w", apperrors.ErrNotFound)
		}
	}

	if managedByID != nil {
		var userCount int64
		s.db.Model(&models.User{}).Where("id = ?", *managedByID).Count(&userCount)
		if userCount == 0 {
			return nil, fmt.Errorf("负责人不存在: %w", apperrors.ErrNotFound)
		}
	}

	student := &models.Student{
		ID:           uuid.NewString(),
		Code:         code,
		FullName:     fullName,
		Email:        email,
		DepartmentID: departmentID,
		ManagedByID:  managedByID,
		Status:       models.StudentStatusActive,
	}
	err := s.db.Create(student).Error
	return student, err
}

// GetByID 根据ID获取学生
func (s *StudentService) GetByID(id string) (*models.Student, error) {
	var student models.Student
	err := s.db.Preload("Department").Where("id = ?", id).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *StudentService) GetWithFiltersAndPage(filter StudentFilter, page, pageSize int, order string) ([]*models.Student, int64, error) {
	var students []*models.Student
	var total int64

	query := s.db.Model(&models.Student{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if len(filter.ManagedByIDs) > 0 {
		query = query.Where("managed_by_id IN ?", filter.ManagedByIDs)
	}
	if filter.Keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", filter.Keyword)
		query = query.Where("code LIKE ? OR full_name LIKE ? OR email LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if order == "" {
		order = "code ASC"
	}
	err := query.Preload("Department").Order(order).Offset(offset).Limit(pageSize).Find(&students).Error
	if err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

// Update 更新学生
func (s *StudentService) Update(id, fullName string, email *string, departmentID *uint, managedByID *string, status string) (*models.Student, error) {
	var student models.Student
	err := s.db.Where("id = ?", id).First(&student).Error
	if err != nil {
		return nil, err
	}

	if departmentID != nil {
		var deptCount int64
		s.db.Model(&models.Department{}).Where("id = ?", *departmentID).Count(&deptCount)
		if deptCount == 0 {
			return nil, fmt.Errorf("部门不存在: %w", apperrors.ErrNotFound)
		}
	}

	student.FullName = fullName
	student.Email = email
	student.DepartmentID = departmentID
	student.ManagedByID = managedByID
	student.Status = status

	err = s.db.Save(&student).Error
	return &student, err
}

// Delete 删除学生
func (s *StudentService) Delete(id string) error {
	result := s.db.Where("id = ?", id).Delete(&models.Student{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
