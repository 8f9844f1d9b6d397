package services

import (
	"adminhub/internal/database"
	"adminhub/internal/models"
	apperrors "adminhub/pkg/errors"
	"adminhub/pkg/slug"
	"fmt"
	"unicode/utf8"

	"gorm.io/gorm"
)

type RoleService struct {
	db *gorm.DB
}

func NewRoleService() *RoleService {
	return &RoleService{
		db: database.GetDB(),
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建角色，ID由名称派生，派生冲突直接报错
func (s *RoleService) Create(name, description string) (*models.Role, error) {
	if !s.ValidateName(name) {
		return nil, fmt.Errorf("角色名称长度必须在2-100个字符之间")
	}

	id := slug.Derive(name)
	if id == "" {
		return nil, fmt.Errorf("角色名称无法派生出有效标识")
	}

	// 派生ID冲突检查
	var count int64
	s.db.Model(&models.Role{}).Where("id = ?", id).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("角色标识 %s 已存在: %w", id, apperrors.ErrConflict)
	}

	role := &models.Role{
		ID:          id,
		Name:        name,
		Description: description,
		IsActive:    true,
		IsSystem:    false,
	}

	err := s.db.Create(role).Error
	return role, err
}

// GetByID 根据ID获取角色（软删除的角色仍可按ID取回）
func (s *RoleService) GetByID(id string) (*models.Role, error) {
	var role models.Role
	err := s.db.Preload("Permissions").Where("id = ?", id).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetWithPage 分页获取角色
func (s *RoleService) GetWithPage(keyword string, activeOnly bool, page, pageSize int) ([]*models.Role, int64, error) {
	var roles []*models.Role
	var total int64

	query := s.db.Model(&models.Role{})

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("id LIKE ? OR name LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Permissions").Offset(offset).Limit(pageSize).Find(&roles).Error
	if err != nil {
		return nil, 0, err
	}

	return roles, total, nil
}

// Update 更新角色
func (s *RoleService) Update(id, name, description string) (*models.Role, error) {
	if !s.ValidateName(name) {
		return nil, fmt.Errorf("角色名称长度必须在2-100个字符之间")
	}

	var role models.Role
	err := s.db.Where("id = ?", id).First(&role).Error
	if err != nil {
		return nil, err
	}

	if role.IsSystem {
		return nil, fmt.Errorf("系统角色不允许修改")
	}

	role.Name = name
	role.Description = description

	err = s.db.Save(&role).Error
	return &role, err
}

// SoftDelete 软删除角色：置停用标志，行保留，可按ID取回
func (s *RoleService) SoftDelete(id string) error {
	var role models.Role
	if err := s.db.Where("id = ?", id).First(&role).Error; err != nil {
		return err
	}
	if role.IsSystem {
		return fmt.Errorf("系统角色不允许删除")
	}
	return s.db.Model(&role).Update("is_active", false).Error
}

// Restore 恢复软删除的角色
func (s *RoleService) Restore(id string) error {
	result := s.db.Model(&models.Role{}).Where("id = ?", id).Update("is_active", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HardDelete 硬删除角色：先摘除用户/用户组/权限三类关联，再删行
func (s *RoleService) HardDelete(id string) error {
	var role models.Role
	if err := s.db.Where("id = ?", id).First(&role).Error; err != nil {
		return err
	}
	if role.IsSystem {
		return fmt.Errorf("系统角色不允许删除")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.GroupRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Role{}).Error
	})
}

// ========== 权限管理方法 ==========

// ReplacePermissions 替换角色的权限集合：整体清除后重建
func (s *RoleService) ReplacePermissions(roleID string, permissionIDs []string) error {
	var role models.Role
	err := s.db.Where("id = ?", roleID).First(&role).Error
	if err != nil {
		return err
	}

	var count int64
	s.db.Model(&models.Permission{}).Where("id IN ?", permissionIDs).Count(&count)
	if count != int64(len(permissionIDs)) {
		return fmt.Errorf("部分权限不存在: %w", apperrors.ErrNotFound)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		for _, pid := range permissionIDs {
			link := models.RolePermission{RoleID: roleID, PermissionID: pid}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetRolePermissions 获取角色的权限
func (s *RoleService) GetRolePermissions(roleID string) ([]models.Permission, error) {
	var role models.Role
	err := s.db.Preload("Permissions").Where("id = ?", roleID).First(&role).Error
	if err != nil {
		return nil, err
	}
	return role.Permissions, nil
}

// ========== 验证方法 ==========

// ValidateName 验证角色名称
func (s *RoleService) ValidateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 100
}
