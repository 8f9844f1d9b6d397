package services

import (
	"adminhub/internal/database"
	"adminhub/internal/models"
	apperrors "adminhub/pkg/errors"
	"fmt"

	"gorm.io/gorm"
)

type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService() *PermissionService {
	return &PermissionService{
		db: database.GetDB(),
	}
}

// ComposePermissionID 按 {动作}_{实体}_{角色} 拼接权限主键
func ComposePermissionID(actionID, entityID string, roleID *string) string {
	rid := ""
	if roleID != nil {
		rid = *roleID
	}
	return fmt.Sprintf("%s_%s_%s", actionID, entityID, rid)
}

// ComposePermissionCode 权限串，如 "READ.Students"
func ComposePermissionCode(actionID, entityID string) string {
	return fmt.Sprintf("%s.%s", actionID, entityID)
}

// ========== 基础CRUD方法 ==========

// Create 创建权限：ID由三元组拼接，名称由动作名+实体名合成，重复三元组报冲突
func (s *PermissionService) Create(actionID, entityID string, roleID *string, timeWindowID *uint) (*models.Permission, error) {
	var action models.Action
	if err := s.db.Where("id = ?", actionID).First(&action).Error; err != nil {
		return nil, fmt.Errorf("动作不存在: %w", apperrors.ErrNotFound)
	}

	var entity models.Entity
	if err := s.db.Where("id = ?", entityID).First(&entity).Error; err != nil {
		return nil, fmt.Errorf("实体不存在: %w", apperrors.ErrNotFound)
	}

	if roleID != nil {
		var roleCount int64
		s.db.Model(&models.Role{}).Where("id = ?", *roleID).Count(&roleCount)
		if roleCount == 0 {
			return nil, fmt.Errorf("角色不存在: %w", apperrors.ErrNotFound)
		}
	}

	if timeWindowID != nil {
		var windowCount int64
		s.db.Model(&models.TimeWindow{}).Where("id = ?", *timeWindowID).Count(&windowCount)
		if windowCount == 0 {
			return nil, fmt.Errorf("有效期窗口不存在: %w", apperrors.ErrNotFound)
		}
	}

	id := ComposePermissionID(actionID, entityID, roleID)

	// 三元组唯一性检查
	var count int64
	s.db.Model(&models.Permission{}).Where("id = ?", id).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("权限 %s 已存在: %w", id, apperrors.ErrConflict)
	}

	permission := &models.Permission{
		ID:           id,
		Code:         ComposePermissionCode(actionID, entityID),
		Name:         fmt.Sprintf("%s %s", action.Name, entity.Name),
		ActionID:     actionID,
		EntityID:     entityID,
		RoleID:       roleID,
		IsActive:     true,
		TimeWindowID: timeWindowID,
	}

	err := s.db.Create(permission).Error
	return permission, err
}

// GetByID 根据ID获取权限
func (s *PermissionService) GetByID(id string) (*models.Permission, error) {
	var permission models.Permission
	err := s.db.Preload("Action").Preload("Entity").Where("id = ?", id).First(&permission).Error
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

// GetWithPage 分页获取权限
func (s *PermissionService) GetWithPage(actionID, entityID string, activeOnly bool, page, pageSize int) ([]*models.Permission, int64, error) {
	var permissions []*models.Permission
	var total int64

	query := s.db.Model(&models.Permission{})

	if actionID != "" {
		query = query.Where("action_id = ?", actionID)
	}
	if entityID != "" {
		query = query.Where("entity_id = ?", entityID)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&permissions).Error
	if err != nil {
		return nil, 0, err
	}

	return permissions, total, nil
}

// SoftDelete 软删除权限（置停用标志）
func (s *PermissionService) SoftDelete(id string) error {
	result := s.db.Model(&models.Permission{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HardDelete 硬删除权限，先摘除角色关联
func (s *PermissionService) HardDelete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Permission{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
