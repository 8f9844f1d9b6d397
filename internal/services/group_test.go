package services

import (
	"testing"

	"adminhub/internal/models"
	apperrors "adminhub/pkg/errors"
)

func TestGroupIDDerivedFromName(t *testing.T) {
	setupTestDB(t)

	svc := NewGroupService()
	group, err := svc.Create("Quản trị viên", "管理组", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if group.ID != "Quantrivien" {
		t.Errorf("派生标识 = %q, want Quantrivien", group.ID)
	}
}

func TestGroupDerivedIDCollision(t *testing.T) {
	setupTestDB(t)

	svc := NewGroupService()
	if _, err := svc.Create("Quản trị viên", "", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 变音符号不同但骨架相同，派生出同一标识
	_, err := svc.Create("Quan tri vien", "", nil)
	if !apperrors.IsConflict(err) {
		t.Errorf("派生标识冲突应报错, got %v", err)
	}
}

func TestGroupUpdateKeepsID(t *testing.T) {
	setupTestDB(t)

	svc := NewGroupService()
	group, _ := svc.Create("教职工组", "", nil)

	updated, err := svc.Update(group.ID, "改名后的组", "新描述", nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	// 标识不可变，改名只动展示名称
	if updated.ID != group.ID {
		t.Errorf("更新后标识变化: %q -> %q", group.ID, updated.ID)
	}
	if updated.Name != "改名后的组" {
		t.Errorf("名称未更新: %q", updated.Name)
	}
}

func TestGroupUpdateRejectsUnknownTimeWindow(t *testing.T) {
	setupTestDB(t)

	svc := NewGroupService()
	group, _ := svc.Create("教职工组", "", nil)

	ghost := uint(99)
	_, err := svc.Update(group.ID, "教职工组", "", &ghost)
	if !apperrors.IsNotFound(err) {
		t.Errorf("未知有效期窗口应报不存在, got %v", err)
	}
}

func TestGroupSoftDeleteAndRestore(t *testing.T) {
	setupTestDB(t)

	svc := NewGroupService()
	group, _ := svc.Create("教职工组", "", nil)

	if err := svc.SoftDelete(group.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	reloaded, err := svc.GetByID(group.ID)
	if err != nil {
		t.Fatalf("软删除的用户组应可按ID取回: %v", err)
	}
	if reloaded.IsActive {
		t.Error("软删除后应为停用状态")
	}

	if err := svc.Restore(group.ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	reloaded, _ = svc.GetByID(group.ID)
	if !reloaded.IsActive {
		t.Error("恢复后应为启用状态")
	}
}

func TestGroupHardDeleteDetachesMembersAndRoles(t *testing.T) {
	db := setupTestDB(t)

	role := seedRole(t, db, "staff", true)

	svc := NewGroupService()
	group, _ := svc.Create("教职工组", "", nil)
	if err := svc.ReplaceRoles(group.ID, []RoleAssignment{{RoleID: role.ID, Note: "批量分配"}}); err != nil {
		t.Fatalf("ReplaceRoles: %v", err)
	}

	userSvc := NewUserService()
	user, _ := userSvc.Create("alice", "secret123", "张三丰", nil, 4, nil, nil)
	if _, err := userSvc.SetGroup(user.ID, &group.ID); err != nil {
		t.Fatalf("SetGroup: %v", err)
	}

	if err := svc.HardDelete(group.ID); err != nil {
		t.Fatalf("HardDelete: %v", err)
	}

	// 成员归属被置空而非删除
	reloaded, err := userSvc.GetByID(user.ID)
	if err != nil {
		t.Fatalf("成员用户应保留: %v", err)
	}
	if reloaded.GroupID != nil {
		t.Errorf("成员归属未置空: %v", *reloaded.GroupID)
	}

	var linkCount int64
	db.Model(&models.GroupRole{}).Where("group_id = ?", group.ID).Count(&linkCount)
	if linkCount != 0 {
		t.Errorf("硬删除后残留 %d 条角色关联", linkCount)
	}
}

func TestGroupReplaceRolesKeepsNotes(t *testing.T) {
	db := setupTestDB(t)

	r1 := seedRole(t, db, "r1", true)
	r2 := seedRole(t, db, "r2", true)

	svc := NewGroupService()
	group, _ := svc.Create("教职工组", "", nil)

	err := svc.ReplaceRoles(group.ID, []RoleAssignment{
		{RoleID: r1.ID, Note: "学期初分配"},
		{RoleID: r2.ID, Note: ""},
	})
	if err != nil {
		t.Fatalf("ReplaceRoles: %v", err)
	}

	links, err := svc.GetGroupRoles(group.ID)
	if err != nil {
		t.Fatalf("GetGroupRoles: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("角色数 = %d, want 2", len(links))
	}

	found := false
	for _, link := range links {
		if link.RoleID == r1.ID && link.Note == "学期初分配" {
			found = true
		}
	}
	if !found {
		t.Error("分配备注丢失")
	}
}

