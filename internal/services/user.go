package services

import (
	"fmt"
	"time"
	"unicode/utf8"

	"adminhub/internal/database"
	"adminhub/internal/models"
	apperrors "adminhub/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService() *UserService {
	return &UserService{
		db: database.GetDB(),
	}
}

// 管理者链的最大深度，防止坏数据导致死循环
const maxManagerChainDepth = 100

// ========== 基础CRUD方法 ==========

// Create 创建用户，新用户处于待首登状态
func (s *UserService) Create(username, password, fullName string, email *string, securityLevel int, groupID, managerID *string) (*models.User, error) {
	// 验证参数
	if err := s.ValidateCreateParams(username, password, fullName, securityLevel); err != nil {
		return nil, err
	}

	// 检查用户名是否重复
	var usernameCount int64
	s.db.Model(&models.User{}).Where("username = ?", username).Count(&usernameCount)
	if usernameCount > 0 {
		return nil, fmt.Errorf("用户名已存在: %w", apperrors.ErrConflict)
	}

	// 检查用户组是否存在
	if groupID != nil {
		var groupCount int64
		s.db.Model(&models.Group{}).Where("id = ?", *groupID).Count(&groupCount)
		if groupCount == 0 {
			return nil, fmt.Errorf("用户组不存在: %w", apperrors.ErrNotFound)
		}
	}

	// 检查管理者是否存在
	if managerID != nil {
		var managerCount int64
		s.db.Model(&models.User{}).Where("id = ?", *managerID).Count(&managerCount)
		if managerCount == 0 {
			return nil, fmt.Errorf("管理者不存在: %w", apperrors.ErrNotFound)
		}
	}

	user := &models.User{
		ID:            uuid.NewString(),
		Username:      username,
		FullName:      fullName,
		Email:         email,
		SecurityLevel: securityLevel,
		Status:        models.UserStatusPending,
		GroupID:       groupID,
		ManagerID:     managerID,
	}

	// 设置密码
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("密码加密失败: %v", err)
	}

	err := s.db.Create(user).Error
	return user, err
}

// GetByID 根据ID获取用户
func (s *UserService) GetByID(id string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Group").Preload("Roles").Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Group").Preload("Roles").Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *UserService) GetWithFiltersAndPage(status, keyword string, groupID *string, page, pageSize int, order string) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := s.db.Model(&models.User{})

	// 添加过滤条件；默认不返回软删除用户
	if status != "" {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status != ?", models.UserStatusDeleted)
	}
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("username LIKE ? OR full_name LIKE ? OR email LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	// 计算总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if order == "" {
		order = "created_at DESC"
	}
	err := query.Preload("Group").Order(order).Offset(offset).Limit(pageSize).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update 更新用户
func (s *UserService) Update(id, fullName string, email *string, securityLevel int, status string) (*models.User, error) {
	if err := s.ValidateUpdateParams(fullName, securityLevel, status); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}

	user.FullName = fullName
	user.Email = email
	user.SecurityLevel = securityLevel
	user.Status = status

	err = s.db.Save(&user).Error
	return &user, err
}

// SetGroup 设置用户所属用户组（nil表示移出用户组）
func (s *UserService) SetGroup(id string, groupID *string) (*models.User, error) {
	var user models.User
	err := s.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}

	if groupID != nil {
		var count int64
		s.db.Model(&models.Group{}).Where("id = ?", *groupID).Count(&count)
		if count == 0 {
			return nil, fmt.Errorf("用户组不存在: %w", apperrors.ErrNotFound)
		}
	}

	err = s.db.Model(&user).Update("group_id", groupID).Error
	if err != nil {
		return nil, err
	}
	user.GroupID = groupID
	return &user, nil
}

// SetManager 设置用户的管理者，写入前检查管理链无环
func (s *UserService) SetManager(id string, managerID *string) (*models.User, error) {
	var user models.User
	err := s.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}

	if managerID != nil {
		if *managerID == id {
			return nil, fmt.Errorf("不能把自己设为自己的管理者")
		}

		// 沿管理链上溯，出现自身即为环
		current := *managerID
		for depth := 0; depth < maxManagerChainDepth; depth++ {
			var manager models.User
			if err := s.db.Select("id", "manager_id").Where("id = ?", current).First(&manager).Error; err != nil {
				return nil, fmt.Errorf("管理者不存在: %w", apperrors.ErrNotFound)
			}
			if manager.ID == id {
				return nil, fmt.Errorf("管理链出现循环，拒绝设置")
			}
			if manager.ManagerID == nil {
				break
			}
			current = *manager.ManagerID
		}
	}

	err = s.db.Model(&user).Update("manager_id", managerID).Error
	if err != nil {
		return nil, err
	}
	user.ManagerID = managerID
	return &user, nil
}

// SoftDelete 软删除用户（行保留，状态置deleted）
func (s *UserService) SoftDelete(id string) error {
	result := s.db.Model(&models.User{}).Where("id = ?", id).Update("status", models.UserStatusDeleted)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HardDelete 硬删除用户，先清理角色关联
func (s *UserService) HardDelete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ========== 快捷操作方法 ==========

// Activate 激活用户
func (s *UserService) Activate(id string) (*models.User, error) {
	return s.setStatus(id, models.UserStatusActive)
}

// Suspend 停用用户
func (s *UserService) Suspend(id string) (*models.User, error) {
	return s.setStatus(id, models.UserStatusSuspended)
}

func (s *UserService) setStatus(id, status string) (*models.User, error) {
	var user models.User
	err := s.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}

	user.Status = status
	err = s.db.Save(&user).Error
	return &user, err
}

// ResetPassword 重置密码
func (s *UserService) ResetPassword(id string, newPassword string) (*models.User, error) {
	if err := s.ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}

	if err := user.SetPassword(newPassword); err != nil {
		return nil, fmt.Errorf("密码加密失败: %v", err)
	}

	err = s.db.Save(&user).Error
	return &user, err
}

// UpdateLastLogin 更新最后登录时间，待首登用户随之转为激活
func (s *UserService) UpdateLastLogin(id string) error {
	now := time.Now()
	updates := map[string]interface{}{"last_login_at": now}

	var user models.User
	if err := s.db.Select("status").Where("id = ?", id).First(&user).Error; err != nil {
		return err
	}
	if user.Status == models.UserStatusPending {
		updates["status"] = models.UserStatusActive
	}

	return s.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

// ========== 业务逻辑方法 ==========

// IsActive 检查用户是否可登录（active或待首登）
func (s *UserService) IsActive(user *models.User) bool {
	return user.Status == models.UserStatusActive || user.Status == models.UserStatusPending
}

// IsValidStatus 检查用户状态是否有效
func (s *UserService) IsValidStatus(status string) bool {
	switch status {
	case models.UserStatusActive, models.UserStatusPending, models.UserStatusSuspended, models.UserStatusDeleted:
		return true
	default:
		return false
	}
}

// ========== 验证相关方法 ==========

// ValidateUsername 验证用户名
func (s *UserService) ValidateUsername(username string) bool {
	if len(username) < 3 || len(username) > 50 {
		return false
	}
	// 只允许字母、数字和下划线
	for _, r := range username {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_') {
			return false
		}
	}
	return true
}

// ValidatePassword 验证密码
func (s *UserService) ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("密码长度不能少于6位")
	}
	if len(password) > 50 {
		return fmt.Errorf("密码长度不能超过50位")
	}
	return nil
}

// ValidateFullName 验证姓名（按字符数而非字节数）
func (s *UserService) ValidateFullName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 50
}

// ValidateSecurityLevel 验证安全等级
func (s *UserService) ValidateSecurityLevel(level int) bool {
	return level >= models.SecurityLevelAdmin && level <= models.SecurityLevelMin
}

// ValidateCreateParams 验证创建用户的参数
func (s *UserService) ValidateCreateParams(username, password, fullName string, securityLevel int) error {
	if !s.ValidateUsername(username) {
		return fmt.Errorf("用户名长度必须在3-50个字符之间，且只能包含字母、数字和下划线")
	}
	if err := s.ValidatePassword(password); err != nil {
		return err
	}
	if !s.ValidateFullName(fullName) {
		return fmt.Errorf("姓名长度必须在2-50个字符之间")
	}
	if !s.ValidateSecurityLevel(securityLevel) {
		return fmt.Errorf("安全等级必须在1-5之间")
	}
	return nil
}

// ValidateUpdateParams 验证更新用户的参数
func (s *UserService) ValidateUpdateParams(fullName string, securityLevel int, status string) error {
	if !s.ValidateFullName(fullName) {
		return fmt.Errorf("姓名长度必须在2-50个字符之间")
	}
	if !s.ValidateSecurityLevel(securityLevel) {
		return fmt.Errorf("安全等级必须在1-5之间")
	}
	if !s.IsValidStatus(status) {
		return fmt.Errorf("状态只能是active、pending、suspended或deleted")
	}
	return nil
}

// ========== 角色管理方法 ==========

// ReplaceRoles 替换用户的角色集合：整体清除后重建，不做差量合并
func (s *UserService) ReplaceRoles(userID string, roleIDs []string, operatorID string) error {
	var user models.User
	err := s.db.Where("id = ?", userID).First(&user).Error
	if err != nil {
		return err
	}

	// 获取角色，确保全部存在
	var roles []models.Role
	err = s.db.Where("id IN ?", roleIDs).Find(&roles).Error
	if err != nil {
		return err
	}
	if len(roles) != len(roleIDs) {
		return fmt.Errorf("部分角色不存在: %w", apperrors.ErrNotFound)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		for _, role := range roles {
			link := models.UserRole{
				UserID:    userID,
				RoleID:    role.ID,
				CreatedBy: operatorID,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AddRole 为用户添加单个角色
func (s *UserService) AddRole(userID, roleID, operatorID string) error {
	var user models.User
	err := s.db.Where("id = ?", userID).First(&user).Error
	if err != nil {
		return err
	}

	var role models.Role
	err = s.db.Where("id = ?", roleID).First(&role).Error
	if err != nil {
		return fmt.Errorf("角色不存在: %w", apperrors.ErrNotFound)
	}

	// 检查用户是否已有该角色
	var count int64
	s.db.Model(&models.UserRole{}).Where("user_id = ? AND role_id = ?", userID, roleID).Count(&count)
	if count > 0 {
		return fmt.Errorf("用户已拥有该角色: %w", apperrors.ErrConflict)
	}

	link := models.UserRole{UserID: userID, RoleID: roleID, CreatedBy: operatorID}
	return s.db.Create(&link).Error
}

// RemoveRole 移除用户的角色
func (s *UserService) RemoveRole(userID, roleID string) error {
	return s.db.Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&models.UserRole{}).Error
}

// GetUserRoles 获取用户的角色列表
func (s *UserService) GetUserRoles(userID string) ([]models.Role, error) {
	var user models.User
	err := s.db.Preload("Roles").Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return user.Roles, nil
}

// GetManagedUserIDs 获取管理子树内所有用户ID（含自身），用于SELF_MANAGED范围
func (s *UserService) GetManagedUserIDs(userID string) ([]string, error) {
	ids := []string{userID}
	frontier := []string{userID}

	// 逐层向下收集直接下属，深度封顶防止坏数据
	for depth := 0; depth < maxManagerChainDepth && len(frontier) > 0; depth++ {
		var next []string
		if err := s.db.Model(&models.User{}).Where("manager_id IN ?", frontier).Pluck("id", &next).Error; err != nil {
			return nil, err
		}
		if len(next) == 0 {
			break
		}
		ids = append(ids, next...)
		frontier = next
	}
	return ids, nil
}
