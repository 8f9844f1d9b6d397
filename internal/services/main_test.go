package services

import (
	"testing"

	"adminhub/internal/database"
	"adminhub/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB 用内存sqlite替换全局数据库实例
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&models.TimeWindow{},
		&models.Action{},
		&models.Entity{},
		&models.Role{},
		&models.Permission{},
		&models.Group{},
		&models.User{},
		&models.RolePermission{},
		&models.GroupRole{},
		&models.UserRole{},
		&models.Department{},
		&models.Student{},
		&models.TestType{},
		&models.AssessmentBatch{},
	)
	if err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	database.SetDB(db)
	return db
}

// ========== 测试夹具 ==========

func seedAction(t *testing.T, db *gorm.DB, id, name string) *models.Action {
	t.Helper()
	action := &models.Action{ID: id, Name: name, IsActive: true}
	if err := db.Create(action).Error; err != nil {
		t.Fatalf("创建动作失败: %v", err)
	}
	return action
}

func seedEntity(t *testing.T, db *gorm.DB, id, name string) *models.Entity {
	t.Helper()
	entity := &models.Entity{ID: id, Name: name, SecurityLevel: 3, IsActive: true}
	if err := db.Create(entity).Error; err != nil {
		t.Fatalf("创建实体失败: %v", err)
	}
	return entity
}

func seedRole(t *testing.T, db *gorm.DB, id string, active bool) *models.Role {
	t.Helper()
	role := &models.Role{ID: id, Name: id, IsActive: active}
	if err := db.Create(role).Error; err != nil {
		t.Fatalf("创建角色失败: %v", err)
	}
	return role
}

func seedPermission(t *testing.T, db *gorm.DB, actionID, entityID string, active bool) *models.Permission {
	t.Helper()
	permission := &models.Permission{
		ID:       ComposePermissionID(actionID, entityID, nil),
		Code:     ComposePermissionCode(actionID, entityID),
		ActionID: actionID,
		EntityID: entityID,
		IsActive: active,
	}
	if err := db.Create(permission).Error; err != nil {
		t.Fatalf("创建权限失败: %v", err)
	}
	return permission
}

func grantPermission(t *testing.T, db *gorm.DB, roleID, permissionID string) {
	t.Helper()
	if err := db.Create(&models.RolePermission{RoleID: roleID, PermissionID: permissionID}).Error; err != nil {
		t.Fatalf("授权失败: %v", err)
	}
}

func seedUser(t *testing.T, db *gorm.DB, username string, securityLevel int) *models.User {
	t.Helper()
	svc := NewUserService()
	user, err := svc.Create(username, "secret123", "测试用户"+username, nil, securityLevel, nil, nil)
	if err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return user
}

func attachRole(t *testing.T, db *gorm.DB, userID, roleID string) {
	t.Helper()
	if err := db.Create(&models.UserRole{UserID: userID, RoleID: roleID, CreatedBy: "test"}).Error; err != nil {
		t.Fatalf("绑定角色失败: %v", err)
	}
}
