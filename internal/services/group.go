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

type GroupService struct {
	db *gorm.DB
}

func NewGroupService() *GroupService {
	return &GroupService{
		db: database.GetDB(),
	}
}

// RoleAssignment 角色分配项（带备注）
type RoleAssignment struct {
	RoleID string `json:"role_id"`
	Note   string `json:"note"`
}

// ========== 基础CRUD方法 ==========

// Create 创建用户组，ID由名称派生，派生冲突直接报错
func (s *GroupService) Create(name, description string, timeWindowID *uint) (*models.Group, error) {
	if !s.ValidateName(name) {
		return nil, fmt.Errorf("用户组名称长度必须在2-100个字符之间")
	}

	id := slug.Derive(name)
	if id == "" {
		return nil, fmt.Errorf("用户组名称无法派生出有效标识")
	}

	// 派生ID冲突检查
	var count int64
	s.db.Model(&models.Group{}).Where("id = ?", id).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("用户组标识 %s 已存在: %w", id, apperrors.ErrConflict)
	}

	if timeWindowID != nil {
		var windowCount int64
		s.db.Model(&models.TimeWindow{}).Where("id = ?", *timeWindowID).Count(&windowCount)
		if windowCount == 0 {
			return nil, fmt.Errorf("有效期窗口不存在: %w", apperrors.ErrNotFound)
		}
	}

	group := &models.Group{
		ID:           id,
		Name:         name,
		Description:  description,
		IsActive:     true,
		TimeWindowID: timeWindowID,
	}

	err := s.db.Create(group).Error
	return group, err
}

// GetByID 根据ID获取用户组
func (s *GroupService) GetByID(id string) (*models.Group, error) {
	var group models.Group
	err := s.db.Preload("Roles").Preload("TimeWindow").Where("id = ?", id).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetWithPage 分页获取用户组
func (s *GroupService) GetWithPage(keyword string, activeOnly bool, page, pageSize int) ([]*models.Group, int64, error) {
	var groups []*models.Group
	var total int64

	query := s.db.Model(&models.Group{})

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
	err := query.Preload("Roles").Offset(offset).Limit(pageSize).Find(&groups).Error
	if err != nil {
		return nil, 0, err
	}

	return groups, total, nil
}

// Update 更新用户组（标识不可变，名称仅作展示修改）
func (s *GroupService) Update(id, name, description string, timeWindowID *uint) (*models.Group, error) {
	if !s.ValidateName(name) {
		return nil, fmt.Errorf("用户组名称长度必须在2-100个字符之间")
	}

	var group models.Group
	err := s.db.Where("id = ?", id).First(&group).Error
	if err != nil {
		return nil, err
	}

	if timeWindowID != nil {
		var windowCount int64
		s.db.Model(&models.TimeWindow{}).Where("id = ?", *timeWindowID).Count(&windowCount)
		if windowCount == 0 {
			return nil, fmt.Errorf("有效期窗口不存在: %w", apperrors.ErrNotFound)
		}
	}

	group.Name = name
	group.Description = description
	group.TimeWindowID = timeWindowID

	err = s.db.Save(&group).Error
	return &group, err
}

// SoftDelete 软删除用户组（仅置停用标志）
func (s *GroupService) SoftDelete(id string) error {
	result := s.db.Model(&models.Group{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Restore 恢复软删除的用户组
func (s *GroupService) Restore(id string) error {
	result := s.db.Model(&models.Group{}).Where("id = ?", id).Update("is_active", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HardDelete 硬删除用户组：先摘除角色关联、置空成员的归属，再删行
func (s *GroupService) HardDelete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupRole{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("group_id = ?", id).Update("group_id", nil).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Group{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ========== 角色管理方法 ==========

// ReplaceRoles 替换用户组的角色集合：整体清除后重建
func (s *GroupService) ReplaceRoles(groupID string, assignments []RoleAssignment) error {
	var group models.Group
	err := s.db.Where("id = ?", groupID).First(&group).Error
	if err != nil {
		return err
	}

	// 确保所有角色存在
	roleIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		roleIDs = append(roleIDs, a.RoleID)
	}
	var count int64
	s.db.Model(&models.Role{}).Where("id IN ?", roleIDs).Count(&count)
	if count != int64(len(roleIDs)) {
		return fmt.Errorf("部分角色不存在: %w", apperrors.ErrNotFound)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupRole{}).Error; err != nil {
			return err
		}
		for _, a := range assignments {
			link := models.GroupRole{
				GroupID: groupID,
				RoleID:  a.RoleID,
				Note:    a.Note,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetGroupRoles 获取用户组的角色及分配备注
func (s *GroupService) GetGroupRoles(groupID string) ([]models.GroupRole, error) {
	var group models.Group
	if err := s.db.Where("id = ?", groupID).First(&group).Error; err != nil {
		return nil, err
	}

	var links []models.GroupRole
	err := s.db.Where("group_id = ?", groupID).Find(&links).Error
	return links, err
}

// ========== 验证方法 ==========

// ValidateName 验证用户组名称
func (s *GroupService) ValidateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 100
}
