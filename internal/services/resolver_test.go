package services

import (
	"testing"

	"adminhub/internal/models"
)

func TestParseExpression(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []string
	}{
		{"单项", "READ.Students", []string{"READ.Students"}},
		{"多项析取", "READ.Students,READ_SELF_MANAGED.Students", []string{"READ.Students", "READ_SELF_MANAGED.Students"}},
		{"带空格", " READ.Users , CREATE.Users ", []string{"READ.Users", "CREATE.Users"}},
		{"空串", "", nil},
		{"只有逗号", ",,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseExpression(tt.expr)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseExpression(%q) = %v, want %v", tt.expr, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseExpression(%q)[%d] = %q, want %q", tt.expr, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMatchAnyPermission(t *testing.T) {
	held := []string{"READ.Students", "CREATE.Users"}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"精确命中", "READ.Students", true},
		{"析取命中第二项", "DELETE.Users,CREATE.Users", true},
		{"全部未命中", "DELETE.Users,UPDATE.Users", false},
		{"空表达式不放行", "", false},
		{"无通配符语义", "READ.*", false},
		{"大小写敏感", "read.students", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchAnyPermission(held, tt.expr); got != tt.want {
				t.Errorf("MatchAnyPermission(%v, %q) = %v, want %v", held, tt.expr, got, tt.want)
			}
		})
	}
}

func TestResolveUnionAndDedupe(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedAction(t, db, "CREATE", "创建")
	seedEntity(t, db, "Students", "学生")
	seedEntity(t, db, "Users", "用户")

	pRead := seedPermission(t, db, "READ", "Students", true)
	pCreate := seedPermission(t, db, "CREATE", "Users", true)

	// 直连角色和组角色共享一条权限，用于验证去重
	direct := seedRole(t, db, "teacher", true)
	grantPermission(t, db, direct.ID, pRead.ID)

	groupRole := seedRole(t, db, "staff", true)
	grantPermission(t, db, groupRole.ID, pRead.ID)
	grantPermission(t, db, groupRole.ID, pCreate.ID)

	group := &models.Group{ID: "faculty", Name: "教职组", IsActive: true}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("创建用户组失败: %v", err)
	}
	if err := db.Create(&models.GroupRole{GroupID: group.ID, RoleID: groupRole.ID}).Error; err != nil {
		t.Fatalf("绑定组角色失败: %v", err)
	}

	user := seedUser(t, db, "alice", 4)
	attachRole(t, db, user.ID, direct.ID)
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("group_id", group.ID).Error; err != nil {
		t.Fatalf("设置用户组失败: %v", err)
	}

	resolver := NewResolverService()
	permissions, err := resolver.ResolveByUserID(user.ID)
	if err != nil {
		t.Fatalf("ResolveByUserID: %v", err)
	}

	if len(permissions) != 2 {
		t.Fatalf("有效权限数 = %d, want 2（共享权限应去重）", len(permissions))
	}
	// 按ID排序保证输出稳定
	if permissions[0].ID > permissions[1].ID {
		t.Errorf("结果未排序: %s, %s", permissions[0].ID, permissions[1].ID)
	}
}

func TestResolveFiltersInactiveHops(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedAction(t, db, "DELETE", "删除")
	seedAction(t, db, "UPDATE", "更新")
	seedEntity(t, db, "Students", "学生")

	pActive := seedPermission(t, db, "READ", "Students", true)
	pInactive := seedPermission(t, db, "DELETE", "Students", false)
	pViaInactiveRole := seedPermission(t, db, "UPDATE", "Students", true)

	activeRole := seedRole(t, db, "teacher", true)
	grantPermission(t, db, activeRole.ID, pActive.ID)
	grantPermission(t, db, activeRole.ID, pInactive.ID)

	inactiveRole := seedRole(t, db, "suspended-role", false)
	grantPermission(t, db, inactiveRole.ID, pViaInactiveRole.ID)

	user := seedUser(t, db, "bob", 4)
	attachRole(t, db, user.ID, activeRole.ID)
	attachRole(t, db, user.ID, inactiveRole.ID)

	resolver := NewResolverService()
	codes, err := resolver.ResolveCodes(user.ID)
	if err != nil {
		t.Fatalf("ResolveCodes: %v", err)
	}

	if len(codes) != 1 || codes[0] != "READ.Students" {
		t.Errorf("有效权限 = %v, want [READ.Students]（停用的角色和权限都应过滤）", codes)
	}
}

func TestResolveInactiveGroupDropsGroupRoles(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedEntity(t, db, "Students", "学生")
	p := seedPermission(t, db, "READ", "Students", true)

	role := seedRole(t, db, "staff", true)
	grantPermission(t, db, role.ID, p.ID)

	group := &models.Group{ID: "faculty", Name: "教职组", IsActive: false}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("创建用户组失败: %v", err)
	}
	if err := db.Create(&models.GroupRole{GroupID: group.ID, RoleID: role.ID}).Error; err != nil {
		t.Fatalf("绑定组角色失败: %v", err)
	}

	user := seedUser(t, db, "carol", 4)
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("group_id", group.ID).Error; err != nil {
		t.Fatalf("设置用户组失败: %v", err)
	}

	resolver := NewResolverService()
	permissions, err := resolver.ResolveByUserID(user.ID)
	if err != nil {
		t.Fatalf("ResolveByUserID: %v", err)
	}

	if len(permissions) != 0 {
		t.Errorf("停用用户组的角色不应生效，got %v", permissions)
	}
}

func TestResolveReflectsGroupRoleRemoval(t *testing.T) {
	db := setupTestDB(t)

	seedAction(t, db, "READ", "查看")
	seedEntity(t, db, "Students", "学生")
	p := seedPermission(t, db, "READ", "Students", true)

	role := seedRole(t, db, "staff", true)
	grantPermission(t, db, role.ID, p.ID)

	groupSvc := NewGroupService()
	group, err := groupSvc.Create("教职组", "", nil)
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}
	if err := groupSvc.ReplaceRoles(group.ID, []RoleAssignment{{RoleID: role.ID}}); err != nil {
		t.Fatalf("ReplaceRoles: %v", err)
	}

	user := seedUser(t, db, "erin", 4)
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("group_id", group.ID).Error; err != nil {
		t.Fatalf("设置用户组失败: %v", err)
	}

	resolver := NewResolverService()
	codes, err := resolver.ResolveCodes(user.ID)
	if err != nil {
		t.Fatalf("ResolveCodes: %v", err)
	}
	if len(codes) != 1 || codes[0] != "READ.Students" {
		t.Fatalf("摘除前有效权限 = %v, want [READ.Students]", codes)
	}

	// 清空组角色后再次解析：每次解析都是实时计算，不留缓存
	if err := groupSvc.ReplaceRoles(group.ID, nil); err != nil {
		t.Fatalf("ReplaceRoles: %v", err)
	}
	codes, err = resolver.ResolveCodes(user.ID)
	if err != nil {
		t.Fatalf("ResolveCodes: %v", err)
	}
	if len(codes) != 0 {
		t.Errorf("摘除组角色后有效权限 = %v, want 空", codes)
	}
}

func TestResolveUnknownUserReturnsEmpty(t *testing.T) {
	setupTestDB(t)

	resolver := NewResolverService()

	permissions, err := resolver.ResolveByUsername("ghost")
	if err != nil {
		t.Fatalf("未知用户名应返回空列表而非错误: %v", err)
	}
	if len(permissions) != 0 {
		t.Errorf("未知用户的权限 = %v, want 空", permissions)
	}
}

func TestHasAnyPermissionAdminShortcut(t *testing.T) {
	db := setupTestDB(t)

	admin := seedUser(t, db, "root", models.SecurityLevelAdmin)

	resolver := NewResolverService()
	ok, err := resolver.HasAnyPermission(admin, "DELETE.Users")
	if err != nil {
		t.Fatalf("HasAnyPermission: %v", err)
	}
	if !ok {
		t.Error("最高安全等级的用户应直接放行")
	}
}

func TestHasAnyPermissionDeniesWithoutGrant(t *testing.T) {
	db := setupTestDB(t)

	user := seedUser(t, db, "dave", 5)

	resolver := NewResolverService()
	ok, err := resolver.HasAnyPermission(user, "READ.Students")
	if err != nil {
		t.Fatalf("HasAnyPermission: %v", err)
	}
	if ok {
		t.Error("未授权用户不应放行")
	}
}
