package services

import (
	"adminhub/internal/database"
	"adminhub/internal/models"
	apperrors "adminhub/pkg/errors"
	"fmt"

	"gorm.io/gorm"
)

// RegistryService 动作/实体登记表，权限的两个组成维度
type RegistryService struct {
	db *gorm.DB
}

func NewRegistryService() *RegistryService {
	return &RegistryService{
		db: database.GetDB(),
	}
}

// ========== 动作 ==========

// CreateAction 创建动作
func (s *RegistryService) CreateAction(id, name, code string) (*models.Action, error) {
	if id == "" || name == "" {
		return nil, fmt.Errorf("动作标识和名称不能为空")
	}

	var count int64
	s.db.Model(&models.Action{}).Where("id = ?", id).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("动作 %s 已存在: %w", id, apperrors.ErrConflict)
	}

	action := &models.Action{ID: id, Name: name, Code: code, IsActive: true}
	err := s.db.Create(action).Error
	return action, err
}

// GetActions 获取所有动作
func (s *RegistryService) GetActions(activeOnly bool) ([]*models.Action, error) {
	var actions []*models.Action
	query := s.db.Model(&models.Action{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("id").Find(&actions).Error
	return actions, err
}

// UpdateAction 更新动作
func (s *RegistryService) UpdateAction(id, name, code string, isActive bool) (*models.Action, error) {
	var action models.Action
	if err := s.db.Where("id = ?", id).First(&action).Error; err != nil {
		return nil, err
	}

	action.Name = name
	action.Code = code
	action.IsActive = isActive

	err := s.db.Save(&action).Error
	return &action, err
}

// DeleteAction 删除动作，仍被权限引用时拒绝
func (s *RegistryService) DeleteAction(id string) error {
	var refCount int64
	s.db.Model(&models.Permission{}).Where("action_id = ?", id).Count(&refCount)
	if refCount > 0 {
		return fmt.Errorf("动作仍被 %d 条权限引用，无法删除: %w", refCount, apperrors.ErrConflict)
	}

	result := s.db.Where("id = ?", id).Delete(&models.Action{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ========== 实体 ==========

// CreateEntity 创建实体
func (s *RegistryService) CreateEntity(id, name, entityType string, securityLevel int) (*models.Entity, error) {
	if id == "" || name == "" {
		return nil, fmt.Errorf("实体标识和名称不能为空")
	}
	if securityLevel < models.SecurityLevelAdmin || securityLevel > models.SecurityLevelMin {
		return nil, fmt.Errorf("安全等级必须在1-5之间")
	}

	var count int64
	s.db.Model(&models.Entity{}).Where("id = ?", id).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("实体 %s 已存在: %w", id, apperrors.ErrConflict)
	}

	entity := &models.Entity{
		ID:            id,
		Name:          name,
		Type:          entityType,
		SecurityLevel: securityLevel,
		IsActive:      true,
	}
	err := s.db.Create(entity).Error
	return entity, err
}

// GetEntities 获取所有实体
func (s *RegistryService) GetEntities(activeOnly bool) ([]*models.Entity, error) {
	var entities []*models.Entity
	query := s.db.Model(&models.Entity{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("id").Find(&entities).Error
	return entities, err
}

// UpdateEntity 更新实体
func (s *RegistryService) UpdateEntity(id, name, entityType string, securityLevel int, isActive bool) (*models.Entity, error) {
	var entity models.Entity
	if err := s.db.Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}

	entity.Name = name
	entity.Type = entityType
	entity.SecurityLevel = securityLevel
	entity.IsActive = isActive

	err := s.db.Save(&entity).Error
	return &entity, err
}

// DeleteEntity 删除实体，仍被权限引用时拒绝
func (s *RegistryService) DeleteEntity(id string) error {
	var refCount int64
	s.db.Model(&models.Permission{}).Where("entity_id = ?", id).Count(&refCount)
	if refCount > 0 {
		return fmt.Errorf("实体仍被 %d 条权限引用，无法删除: %w", refCount, apperrors.ErrConflict)
	}

	result := s.db.Where("id = ?", id).Delete(&models.Entity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// KnownPermissionCodes 返回由当前动作/实体登记表能构成的全部权限串
// 路由上声明的权限表达式在启动时据此校验，拼写错误直接拒绝启动
func (s *RegistryService) KnownPermissionCodes() (map[string]bool, error) {
	actions, err := s.GetActions(false)
	if err != nil {
		return nil, err
	}
	entities, err := s.GetEntities(false)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(actions)*len(entities))
	for _, a := range actions {
		for _, e := range entities {
			known[ComposePermissionCode(a.ID, e.ID)] = true
		}
	}
	return known, nil
}
