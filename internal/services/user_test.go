package services

import (
	"testing"

	"adminhub/internal/models"
	apperrors "adminhub/pkg/errors"
)

func TestCreateUserStartsPending(t *testing.T) {
	setupTestDB(t)

	svc := NewUserService()
	user, err := svc.Create("alice", "secret123", "张三丰", nil, 4, nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.Status != models.UserStatusPending {
		t.Errorf("新用户状态 = %q, want pending", user.Status)
	}
	if user.ID == "" {
		t.Error("未生成用户ID")
	}
	if !user.CheckPassword("secret123") {
		t.Error("密码校验失败")
	}
	if user.CheckPassword("wrong") {
		t.Error("错误密码不应通过")
	}
}

func TestCreateDuplicateUsernameConflict(t *testing.T) {
	setupTestDB(t)

	svc := NewUserService()
	if _, err := svc.Create("alice", "secret123", "张三丰", nil, 4, nil, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := svc.Create("alice", "other456", "李四", nil, 4, nil, nil)
	if !apperrors.IsConflict(err) {
		t.Errorf("重复用户名应报冲突, got %v", err)
	}
}

func TestFirstLoginActivatesPendingUser(t *testing.T) {
	db := setupTestDB(t)

	svc := NewUserService()
	user, err := svc.Create("alice", "secret123", "张三丰", nil, 4, nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.UpdateLastLogin(user.ID); err != nil {
		t.Fatalf("UpdateLastLogin: %v", err)
	}

	var reloaded models.User
	if err := db.Where("id = ?", user.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("重新加载用户失败: %v", err)
	}
	if reloaded.Status != models.UserStatusActive {
		t.Errorf("首次登录后状态 = %q, want active", reloaded.Status)
	}
	if reloaded.LastLoginAt == nil {
		t.Error("未记录最后登录时间")
	}
}

func TestSetManagerRejectsCycle(t *testing.T) {
	setupTestDB(t)

	svc := NewUserService()
	a, _ := svc.Create("user_a", "secret123", "用户甲", nil, 4, nil, nil)
	b, _ := svc.Create("user_b", "secret123", "用户乙", nil, 4, nil, nil)
	c, _ := svc.Create("user_c", "secret123", "用户丙", nil, 4, nil, nil)

	// a <- b <- c 合法链
	if _, err := svc.SetManager(b.ID, &a.ID); err != nil {
		t.Fatalf("SetManager(b, a): %v", err)
	}
	if _, err := svc.SetManager(c.ID, &b.ID); err != nil {
		t.Fatalf("SetManager(c, b): %v", err)
	}

	// a的管理者设为c会形成环
	if _, err := svc.SetManager(a.ID, &c.ID); err == nil {
		t.Error("管理链成环应被拒绝")
	}

	// 自己管理自己
	if _, err := svc.SetManager(a.ID, &a.ID); err == nil {
		t.Error("自己作为自己的管理者应被拒绝")
	}
}

func TestGetManagedUserIDsWalksSubtree(t *testing.T) {
	setupTestDB(t)

	svc := NewUserService()
	root, _ := svc.Create("mgr_root", "secret123", "根管理", nil, 3, nil, nil)
	mid, _ := svc.Create("mgr_mid", "secret123", "中层管理", nil, 4, nil, nil)
	leaf, _ := svc.Create("mgr_leaf", "secret123", "末端用户", nil, 5, nil, nil)
	outsider, _ := svc.Create("outsider", "secret123", "无关用户", nil, 5, nil, nil)

	svc.SetManager(mid.ID, &root.ID)
	svc.SetManager(leaf.ID, &mid.ID)

	ids, err := svc.GetManagedUserIDs(root.ID)
	if err != nil {
		t.Fatalf("GetManagedUserIDs: %v", err)
	}

	want := map[string]bool{root.ID: true, mid.ID: true, leaf.ID: true}
	if len(ids) != 3 {
		t.Fatalf("管理子树大小 = %d, want 3", len(ids))
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("子树中出现意外用户 %s", id)
		}
		if id == outsider.ID {
			t.Error("无关用户不应出现在管理子树中")
		}
	}
}

func TestReplaceRolesIsTotalReplace(t *testing.T) {
	db := setupTestDB(t)

	r1 := seedRole(t, db, "r1", true)
	r2 := seedRole(t, db, "r2", true)
	r3 := seedRole(t, db, "r3", true)

	svc := NewUserService()
	user, _ := svc.Create("alice", "secret123", "张三丰", nil, 4, nil, nil)

	if err := svc.ReplaceRoles(user.ID, []string{r1.ID, r2.ID}, "op"); err != nil {
		t.Fatalf("ReplaceRoles: %v", err)
	}

	// 整体替换：不保留旧集合
	if err := svc.ReplaceRoles(user.ID, []string{r3.ID}, "op"); err != nil {
		t.Fatalf("ReplaceRoles: %v", err)
	}

	roles, err := svc.GetUserRoles(user.ID)
	if err != nil {
		t.Fatalf("GetUserRoles: %v", err)
	}
	if len(roles) != 1 || roles[0].ID != r3.ID {
		t.Errorf("替换后角色 = %v, want [r3]", roles)
	}
}

func TestReplaceRolesMissingRoleFailsWholeBatch(t *testing.T) {
	db := setupTestDB(t)

	r1 := seedRole(t, db, "r1", true)

	svc := NewUserService()
	user, _ := svc.Create("alice", "secret123", "张三丰", nil, 4, nil, nil)
	svc.ReplaceRoles(user.ID, []string{r1.ID}, "op")

	err := svc.ReplaceRoles(user.ID, []string{r1.ID, "no-such-role"}, "op")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("部分角色不存在应整体失败, got %v", err)
	}

	// 旧集合保持不变
	roles, _ := svc.GetUserRoles(user.ID)
	if len(roles) != 1 || roles[0].ID != r1.ID {
		t.Errorf("失败的替换不应动旧集合, got %v", roles)
	}
}

func TestSoftDeleteExcludedFromDefaultList(t *testing.T) {
	setupTestDB(t)

	svc := NewUserService()
	user, _ := svc.Create("alice", "secret123", "张三丰", nil, 4, nil, nil)
	svc.Create("bob", "secret123", "宋远桥", nil, 4, nil, nil)

	if err := svc.SoftDelete(user.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	// 默认列表不含软删除用户
	users, total, err := svc.GetWithFiltersAndPage("", "", nil, 1, 10, "")
	if err != nil {
		t.Fatalf("GetWithFiltersAndPage: %v", err)
	}
	if total != 1 || len(users) != 1 || users[0].Username != "bob" {
		t.Errorf("默认列表 = %d条, want 仅bob", total)
	}

	// 按ID仍可取回
	deleted, err := svc.GetByID(user.ID)
	if err != nil {
		t.Fatalf("软删除用户应可按ID取回: %v", err)
	}
	if deleted.Status != models.UserStatusDeleted {
		t.Errorf("状态 = %q, want deleted", deleted.Status)
	}

	// 显式按deleted状态过滤可见
	users, _, err = svc.GetWithFiltersAndPage(models.UserStatusDeleted, "", nil, 1, 10, "")
	if err != nil {
		t.Fatalf("GetWithFiltersAndPage: %v", err)
	}
	if len(users) != 1 || users[0].ID != user.ID {
		t.Errorf("按deleted过滤应返回软删除用户")
	}
}

func TestHardDeleteDetachesRoleLinks(t *testing.T) {
	db := setupTestDB(t)

	r1 := seedRole(t, db, "r1", true)

	svc := NewUserService()
	user, _ := svc.Create("alice", "secret123", "张三丰", nil, 4, nil, nil)
	svc.ReplaceRoles(user.ID, []string{r1.ID}, "op")

	if err := svc.HardDelete(user.ID); err != nil {
		t.Fatalf("HardDelete: %v", err)
	}

	var linkCount int64
	db.Model(&models.UserRole{}).Where("user_id = ?", user.ID).Count(&linkCount)
	if linkCount != 0 {
		t.Errorf("硬删除后残留 %d 条角色关联", linkCount)
	}

	if _, err := svc.GetByID(user.ID); err == nil {
		t.Error("硬删除后不应取回用户")
	}
}

func TestIsActiveAllowsPendingLogin(t *testing.T) {
	setupTestDB(t)

	svc := NewUserService()
	if !svc.IsActive(&models.User{Status: models.UserStatusPending}) {
		t.Error("待首登用户应允许登录")
	}
	if !svc.IsActive(&models.User{Status: models.UserStatusActive}) {
		t.Error("激活用户应允许登录")
	}
	if svc.IsActive(&models.User{Status: models.UserStatusSuspended}) {
		t.Error("停用用户不应允许登录")
	}
	if svc.IsActive(&models.User{Status: models.UserStatusDeleted}) {
		t.Error("已删除用户不应允许登录")
	}
}
