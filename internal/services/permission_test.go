package services

import (
	"testing"

	"adminhub/internal/models"
	apperrors "adminhub/pkg/errors"
)

func TestComposePermissionID(t *testing.T) {
	roleID := "admin"

	tests := []struct {
		name     string
		actionID string
		entityID string
		roleID   *string
		want     string
	}{
		{"无角色限定", "READ", "Students", nil, "READ_Students_"},
		{"带角色限定", "READ", "Students", &roleID, "READ_Students_admin"},
		{"自管动作", "READ_SELF_MANAGED", "Students", nil, "READ_SELF_MANAGED_Students_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComposePermissionID(tt.actionID, tt.entityID, tt.roleID); got != tt.want {
				t.Errorf("ComposePermissionID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposePermissionCode(t *testing.T) {
	if got := ComposePermissionCode("READ", "Students"); got != "READ.Students" {
		t.Errorf("ComposePermissionCode = %q, want READ.Students", got)
	}
}

func TestCreatePermissionSynthesizesName(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedEntity(t, db, "Students", "学生")

	svc := NewPermissionService()
	permission, err := svc.Create("READ", "Students", nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if permission.Name != "查看 学生" {
		t.Errorf("合成名称 = %q, want 查看 学生", permission.Name)
	}
	if permission.Code != "READ.Students" {
		t.Errorf("权限串 = %q, want READ.Students", permission.Code)
	}
	if permission.ID != "READ_Students_" {
		t.Errorf("权限ID = %q, want READ_Students_", permission.ID)
	}
	if !permission.IsActive {
		t.Error("新建权限应默认启用")
	}
}

func TestCreatePermissionDuplicateTripleConflict(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedEntity(t, db, "Students", "学生")

	svc := NewPermissionService()
	if _, err := svc.Create("READ", "Students", nil, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := svc.Create("READ", "Students", nil, nil)
	if !apperrors.IsConflict(err) {
		t.Errorf("重复三元组应报冲突, got %v", err)
	}
}

func TestCreatePermissionUnknownReferences(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedEntity(t, db, "Students", "学生")

	svc := NewPermissionService()

	if _, err := svc.Create("GHOST", "Students", nil, nil); !apperrors.IsNotFound(err) {
		t.Errorf("未知动作应报不存在, got %v", err)
	}
	if _, err := svc.Create("READ", "Ghosts", nil, nil); !apperrors.IsNotFound(err) {
		t.Errorf("未知实体应报不存在, got %v", err)
	}

	ghostRole := "no-such-role"
	if _, err := svc.Create("READ", "Students", &ghostRole, nil); !apperrors.IsNotFound(err) {
		t.Errorf("未知角色应报不存在, got %v", err)
	}
}

func TestPermissionRoleScopedTriplesCoexist(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedEntity(t, db, "Students", "学生")
	seedRole(t, db, "teacher", true)

	svc := NewPermissionService()
	if _, err := svc.Create("READ", "Students", nil, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 同一动作/实体但限定到角色，是另一条三元组
	teacher := "teacher"
	scoped, err := svc.Create("READ", "Students", &teacher, nil)
	if err != nil {
		t.Fatalf("角色限定的三元组应可共存: %v", err)
	}
	if scoped.ID != "READ_Students_teacher" {
		t.Errorf("权限ID = %q, want READ_Students_teacher", scoped.ID)
	}
}

func TestPermissionHardDeleteDetachesRoleLinks(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedEntity(t, db, "Students", "学生")
	role := seedRole(t, db, "teacher", true)

	svc := NewPermissionService()
	permission, _ := svc.Create("READ", "Students", nil, nil)
	grantPermission(t, db, role.ID, permission.ID)

	if err := svc.HardDelete(permission.ID); err != nil {
		t.Fatalf("HardDelete: %v", err)
	}

	var linkCount int64
	db.Model(&models.RolePermission{}).Where("permission_id = ?", permission.ID).Count(&linkCount)
	if linkCount != 0 {
		t.Errorf("硬删除后残留 %d 条角色关联", linkCount)
	}
}

func TestKnownPermissionCodes(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedAction(t, db, "CREATE", "创建")
	seedEntity(t, db, "Students", "学生")
	seedEntity(t, db, "Users", "用户")

	registry := NewRegistryService()
	known, err := registry.KnownPermissionCodes()
	if err != nil {
		t.Fatalf("KnownPermissionCodes: %v", err)
	}

	for _, code := range []string{"READ.Students", "READ.Users", "CREATE.Students", "CREATE.Users"} {
		if !known[code] {
			t.Errorf("缺少可构成的权限串 %s", code)
		}
	}
	if known["DELETE.Students"] {
		t.Error("未登记的动作不应出现在可构成集合中")
	}
}

func TestRegistryDeleteGuardedByReferences(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedEntity(t, db, "Students", "学生")

	permSvc := NewPermissionService()
	if _, err := permSvc.Create("READ", "Students", nil, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	registry := NewRegistryService()
	if err := registry.DeleteAction("READ"); !apperrors.IsConflict(err) {
		t.Errorf("被引用的动作不应允许删除, got %v", err)
	}
	if err := registry.DeleteEntity("Students"); !apperrors.IsConflict(err) {
		t.Errorf("被引用的实体不应允许删除, got %v", err)
	}

	// 摘除引用后可删
	if err := permSvc.HardDelete("READ_Students_"); err != nil {
		t.Fatalf("HardDelete: %v", err)
	}
	if err := registry.DeleteAction("READ"); err != nil {
		t.Errorf("无引用的动作应可删除: %v", err)
	}
}
