package services

import (
	"errors"
	"testing"

	"adminhub/internal/models"
	apperrors "adminhub/pkg/errors"

	"gorm.io/gorm"
)

func TestRoleIDDerivedFromName(t *testing.T) {
	setupTestDB(t)

	svc := NewRoleService()
	role, err := svc.Create("Giáo viên chủ nhiệm", "班主任角色")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if role.ID != "Giaovienchunhiem" {
		t.Errorf("派生标识 = %q, want Giaovienchunhiem", role.ID)
	}
}

func TestRoleDerivedIDCollision(t *testing.T) {
	setupTestDB(t)

	svc := NewRoleService()
	if _, err := svc.Create("Quản lý", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := svc.Create("Quan ly", "")
	if !apperrors.IsConflict(err) {
		t.Errorf("派生标识冲突应报错, got %v", err)
	}
}

func TestSoftDeletedRoleStillRetrievable(t *testing.T) {
	setupTestDB(t)

	svc := NewRoleService()
	role, _ := svc.Create("班主任", "")

	if err := svc.SoftDelete(role.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	// 按ID取回：行还在，只是停用
	reloaded, err := svc.GetByID(role.ID)
	if err != nil {
		t.Fatalf("软删除的角色应可按ID取回: %v", err)
	}
	if reloaded.IsActive {
		t.Error("软删除后应为停用状态")
	}

	// activeOnly列表不含软删除角色
	roles, _, err := svc.GetWithPage("", true, 1, 10)
	if err != nil {
		t.Fatalf("GetWithPage: %v", err)
	}
	for _, r := range roles {
		if r.ID == role.ID {
			t.Error("停用角色不应出现在活跃列表中")
		}
	}
}

func TestSystemRoleGuardedFromChanges(t *testing.T) {
	db := setupTestDB(t)

	system := &models.Role{ID: "admin", Name: "系统管理员", IsActive: true, IsSystem: true}
	if err := db.Create(system).Error; err != nil {
		t.Fatalf("创建系统角色失败: %v", err)
	}

	svc := NewRoleService()
	if _, err := svc.Update(system.ID, "改名", ""); err == nil {
		t.Error("系统角色不应允许修改")
	}
	if err := svc.SoftDelete(system.ID); err == nil {
		t.Error("系统角色不应允许软删除")
	}
	if err := svc.HardDelete(system.ID); err == nil {
		t.Error("系统角色不应允许硬删除")
	}
}

func TestRoleHardDeleteDetachesAllJoins(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedEntity(t, db, "Students", "学生")
	p := seedPermission(t, db, "READ", "Students", true)

	svc := NewRoleService()
	role, _ := svc.Create("班主任", "")
	if err := svc.ReplacePermissions(role.ID, []string{p.ID}); err != nil {
		t.Fatalf("ReplacePermissions: %v", err)
	}

	userSvc := NewUserService()
	user, _ := userSvc.Create("alice", "secret123", "张三丰", nil, 4, nil, nil)
	attachRole(t, db, user.ID, role.ID)

	group := &models.Group{ID: "faculty", Name: "教职组", IsActive: true}
	db.Create(group)
	db.Create(&models.GroupRole{GroupID: group.ID, RoleID: role.ID})

	if err := svc.HardDelete(role.ID); err != nil {
		t.Fatalf("HardDelete: %v", err)
	}

	var userLinks, groupLinks, permLinks int64
	db.Model(&models.UserRole{}).Where("role_id = ?", role.ID).Count(&userLinks)
	db.Model(&models.GroupRole{}).Where("role_id = ?", role.ID).Count(&groupLinks)
	db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&permLinks)
	if userLinks != 0 || groupLinks != 0 || permLinks != 0 {
		t.Errorf("硬删除后残留关联: user=%d group=%d perm=%d", userLinks, groupLinks, permLinks)
	}

	// 权限本身不受角色删除影响
	var permCount int64
	db.Model(&models.Permission{}).Where("id = ?", p.ID).Count(&permCount)
	if permCount != 1 {
		t.Error("删除角色不应删除权限行")
	}
}

func TestReplacePermissionsIsTotalReplace(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedAction(t, db, "CREATE", "创建")
	seedEntity(t, db, "Students", "学生")
	p1 := seedPermission(t, db, "READ", "Students", true)
	p2 := seedPermission(t, db, "CREATE", "Students", true)

	svc := NewRoleService()
	role, _ := svc.Create("班主任", "")

	svc.ReplacePermissions(role.ID, []string{p1.ID})
	svc.ReplacePermissions(role.ID, []string{p2.ID})

	permissions, err := svc.GetRolePermissions(role.ID)
	if err != nil {
		t.Fatalf("GetRolePermissions: %v", err)
	}
	if len(permissions) != 1 || permissions[0].ID != p2.ID {
		t.Errorf("替换后权限 = %v, want 仅p2", permissions)
	}
}

func TestReplacePermissionsMissingPermissionFails(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedEntity(t, db, "Students", "学生")
	p1 := seedPermission(t, db, "READ", "Students", true)

	svc := NewRoleService()
	role, _ := svc.Create("班主任", "")

	err := svc.ReplacePermissions(role.ID, []string{p1.ID, "no-such-permission"})
	if !apperrors.IsNotFound(err) {
		t.Errorf("部分权限不存在应整体失败, got %v", err)
	}
}

func TestRoleNotFound(t *testing.T) {
	setupTestDB(t)

	svc := NewRoleService()
	_, err := svc.GetByID("ghost")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("不存在的角色应返回记录不存在, got %v", err)
	}
}
