package services

import (
	"adminhub/internal/database"
	"adminhub/internal/models"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ResolverService 有效权限解析
// 原始系统把这一步交给数据库存储过程，这里改为进程内的显式查询：
// 用户直连角色 ∪ 用户组角色 -> 角色权限，每一跳都过滤掉停用项
type ResolverService struct {
	db *gorm.DB
}

func NewResolverService() *ResolverService {
	return &ResolverService{
		db: database.GetDB(),
	}
}

// ParseExpression 解析权限表达式：逗号分隔的权限串析取
func ParseExpression(expr string) []string {
	parts := strings.Split(expr, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			codes = append(codes, trimmed)
		}
	}
	return codes
}

// MatchAnyPermission 判定持有权限串集合是否命中表达式中的任意一项
// 纯字面量精确匹配，无通配、无层级、无否定
func MatchAnyPermission(held []string, expr string) bool {
	required := ParseExpression(expr)
	if len(required) == 0 {
		return false
	}

	heldSet := make(map[string]bool, len(held))
	for _, h := range held {
		heldSet[h] = true
	}

	for _, r := range required {
		if heldSet[r] {
			return true
		}
	}
	return false
}

// ResolveByUserID 计算用户的有效权限列表
// 结果按需计算，不做任何缓存；按权限ID去重并排序保证输出稳定
func (s *ResolverService) ResolveByUserID(userID string) ([]models.Permission, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Permission{}, nil
		}
		return nil, fmt.Errorf("解析有效权限失败: %v", err)
	}

	roleIDs, err := s.collectRoleIDs(&user)
	if err != nil {
		return nil, fmt.Errorf("解析有效权限失败: %v", err)
	}
	if len(roleIDs) == 0 {
		return []models.Permission{}, nil
	}

	// 只保留启用的角色
	var activeRoleIDs []string
	if err := s.db.Model(&models.Role{}).
		Where("id IN ? AND is_active = ?", roleIDs, true).
		Pluck("id", &activeRoleIDs).Error; err != nil {
		return nil, fmt.Errorf("解析有效权限失败: %v", err)
	}
	if len(activeRoleIDs) == 0 {
		return []models.Permission{}, nil
	}

	// 角色 -> 启用的权限
	var permissions []models.Permission
	err = s.db.
		Joins("JOIN role_permissions rp ON rp.permission_id = permissions.id").
		Where("rp.role_id IN ?", activeRoleIDs).
		Where("permissions.is_active = ?", true).
		Find(&permissions).Error
	if err != nil {
		return nil, fmt.Errorf("解析有效权限失败: %v", err)
	}

	// 按权限ID去重
	seen := make(map[string]bool, len(permissions))
	deduped := make([]models.Permission, 0, len(permissions))
	for _, p := range permissions {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		deduped = append(deduped, p)
	}

	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].ID < deduped[j].ID
	})
	return deduped, nil
}

// ResolveByUsername 按用户名解析有效权限，用户名不存在返回空列表而非错误
func (s *ResolverService) ResolveByUsername(username string) ([]models.Permission, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Permission{}, nil
		}
		return nil, fmt.Errorf("解析有效权限失败: %v", err)
	}
	return s.ResolveByUserID(user.ID)
}

// ResolveCodes 有效权限的权限串集合
func (s *ResolverService) ResolveCodes(userID string) ([]string, error) {
	permissions, err := s.ResolveByUserID(userID)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(permissions))
	seen := make(map[string]bool, len(permissions))
	for _, p := range permissions {
		if seen[p.Code] {
			continue
		}
		seen[p.Code] = true
		codes = append(codes, p.Code)
	}
	return codes, nil
}

// HasAnyPermission 判定用户能否通过表达式中的任意一项
// 最高安全等级的用户直接放行
func (s *ResolverService) HasAnyPermission(user *models.User, expr string) (bool, error) {
	if user.SecurityLevel == models.SecurityLevelAdmin {
		return true, nil
	}

	codes, err := s.ResolveCodes(user.ID)
	if err != nil {
		return false, err
	}
	return MatchAnyPermission(codes, expr), nil
}

// collectRoleIDs 汇总用户直连角色与所属用户组的角色
func (s *ResolverService) collectRoleIDs(user *models.User) ([]string, error) {
	var direct []string
	if err := s.db.Model(&models.UserRole{}).
		Where("user_id = ?", user.ID).
		Pluck("role_id", &direct).Error; err != nil {
		return nil, err
	}

	var fromGroup []string
	if user.GroupID != nil {
		// 用户组本身停用时，组内角色整体失效
		var group models.Group
		err := s.db.Where("id = ? AND is_active = ?", *user.GroupID, true).First(&group).Error
		if err == nil {
			if err := s.db.Model(&models.GroupRole{}).
				Where("group_id = ?", group.ID).
				Pluck("role_id", &fromGroup).Error; err != nil {
				return nil, err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	// 合并去重
	seen := make(map[string]bool, len(direct)+len(fromGroup))
	merged := make([]string, 0, len(direct)+len(fromGroup))
	for _, id := range append(direct, fromGroup...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		merged = append(merged, id)
	}
	return merged, nil
}
