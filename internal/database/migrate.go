package database

import (
	"adminhub/internal/models"
	"adminhub/pkg/logger"
)

// Migrate 执行数据库迁移
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := db.AutoMigrate(
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
		// 组织域
		&models.Department{},
		&models.Student{},
		&models.TestType{},
		&models.AssessmentBatch{},
	)

	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")
	return nil
}
