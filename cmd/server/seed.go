package main

import (
	"fmt"

	"adminhub/internal/database"
	"adminhub/internal/models"
	"adminhub/internal/services"
	"adminhub/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 初始化动作登记表
	if err := initializeActions(db); err != nil {
		return fmt.Errorf("初始化动作失败: %v", err)
	}

	// 2. 初始化实体登记表
	if err := initializeEntities(db); err != nil {
		return fmt.Errorf("初始化实体失败: %v", err)
	}

	// 3. 初始化基础权限
	if err := initializePermissions(db); err != nil {
		return fmt.Errorf("初始化权限失败: %v", err)
	}

	// 4. 创建系统管理员角色
	if err := createAdminRole(db); err != nil {
		return fmt.Errorf("创建管理员角色失败: %v", err)
	}

	// 5. 创建默认管理员用户
	if err := createDefaultAdmin(db); err != nil {
		return fmt.Errorf("创建默认管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// initializeActions 初始化动作登记表
func initializeActions(db *gorm.DB) error {
	defaultActions := []models.Action{
		{ID: models.ActionRead, Name: "查看", Code: "read", IsActive: true},
		{ID: models.ActionCreate, Name: "创建", Code: "create", IsActive: true},
		{ID: models.ActionUpdate, Name: "更新", Code: "update", IsActive: true},
		{ID: models.ActionDelete, Name: "删除", Code: "delete", IsActive: true},
		{ID: models.ActionReadSelfManaged, Name: "查看（自管范围）", Code: "read_self_managed", IsActive: true},
	}

	for _, action := range defaultActions {
		var count int64
		db.Model(&models.Action{}).Where("id = ?", action.ID).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&action).Error; err != nil {
			return err
		}
	}

	logger.GetLogger().Info("动作登记表初始化完成")
	return nil
}

// initializeEntities 初始化实体登记表
func initializeEntities(db *gorm.DB) error {
	defaultEntities := []models.Entity{
		{ID: "Users", Name: "用户", Type: "core", SecurityLevel: 2},
		{ID: "Groups", Name: "用户组", Type: "core", SecurityLevel: 2},
		{ID: "Roles", Name: "角色", Type: "core", SecurityLevel: 2},
		{ID: "Permissions", Name: "权限", Type: "core", SecurityLevel: 2},
		{ID: "Departments", Name: "部门", Type: "org", SecurityLevel: 3},
		{ID: "Students", Name: "学生", Type: "org", SecurityLevel: 4},
		{ID: "TestTypes", Name: "测评类型", Type: "org", SecurityLevel: 3},
		{ID: "AssessmentBatches", Name: "测评批次", Type: "org", SecurityLevel: 3},
		{ID: "Devices", Name: "设备", Type: "telemetry", SecurityLevel: 3},
		{ID: "SensorReadings", Name: "传感器读数", Type: "telemetry", SecurityLevel: 4},
		{ID: "AuditEvents", Name: "审计事件", Type: "telemetry", SecurityLevel: 2},
	}

	for _, entity := range defaultEntities {
		var count int64
		db.Model(&models.Entity{}).Where("id = ?", entity.ID).Count(&count)
		if count > 0 {
			continue
		}
		entity.IsActive = true
		if err := db.Create(&entity).Error; err != nil {
			return err
		}
	}

	logger.GetLogger().Info("实体登记表初始化完成")
	return nil
}

// initializePermissions 为每个实体生成四个基础动作的权限，学生额外生成自管读权限
func initializePermissions(db *gorm.DB) error {
	var actions []models.Action
	if err := db.Where("id IN ?", []string{
		models.ActionRead, models.ActionCreate, models.ActionUpdate, models.ActionDelete,
	}).Find(&actions).Error; err != nil {
		return err
	}

	var entities []models.Entity
	if err := db.Find(&entities).Error; err != nil {
		return err
	}

	create := func(action models.Action, entity models.Entity) error {
		id := services.ComposePermissionID(action.ID, entity.ID, nil)
		var count int64
		db.Model(&models.Permission{}).Where("id = ?", id).Count(&count)
		if count > 0 {
			return nil
		}
		permission := models.Permission{
			ID:       id,
			Code:     services.ComposePermissionCode(action.ID, entity.ID),
			Name:     fmt.Sprintf("%s %s", action.Name, entity.Name),
			ActionID: action.ID,
			EntityID: entity.ID,
			IsActive: true,
		}
		return db.Create(&permission).Error
	}

	for _, entity := range entities {
		for _, action := range actions {
			if err := create(action, entity); err != nil {
				return err
			}
		}
	}

	// 学生的自管范围读权限
	var selfManaged models.Action
	if err := db.Where("id = ?", models.ActionReadSelfManaged).First(&selfManaged).Error; err != nil {
		return err
	}
	var students models.Entity
	if err := db.Where("id = ?", "Students").First(&students).Error; err != nil {
		return err
	}
	if err := create(selfManaged, students); err != nil {
		return err
	}

	logger.GetLogger().Info("基础权限初始化完成")
	return nil
}

// createAdminRole 创建系统管理员角色并挂全部权限
func createAdminRole(db *gorm.DB) error {
	var role models.Role
	err := db.Where("id = ?", "admin").First(&role).Error
	if err == nil {
		logger.GetLogger().Info("管理员角色已存在，跳过创建")
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	role = models.Role{
		ID:          "admin",
		Name:        "系统管理员",
		Description: "拥有全部权限的内置角色",
		IsActive:    true,
		IsSystem:    true,
	}
	if err := db.Create(&role).Error; err != nil {
		return err
	}

	var permissionIDs []string
	if err := db.Model(&models.Permission{}).Pluck("id", &permissionIDs).Error; err != nil {
		return err
	}
	for _, pid := range permissionIDs {
		link := models.RolePermission{RoleID: role.ID, PermissionID: pid}
		if err := db.Create(&link).Error; err != nil {
			return err
		}
	}

	logger.GetLogger().Info("管理员角色创建成功")
	return nil
}

// createDefaultAdmin 创建默认管理员用户
func createDefaultAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("默认管理员已存在，跳过创建")
		return nil
	}

	admin := &models.User{
		ID:            uuid.NewString(),
		Username:      "admin",
		FullName:      "系统管理员",
		SecurityLevel: models.SecurityLevelAdmin,
		Status:        models.UserStatusActive,
	}
	if err := admin.SetPassword("Admin@123"); err != nil {
		return err
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	link := models.UserRole{UserID: admin.ID, RoleID: "admin", CreatedBy: admin.ID}
	if err := db.Create(&link).Error; err != nil {
		return err
	}

	logger.GetLogger().Warn("默认管理员创建成功（admin/Admin@123），请立即修改密码")
	return nil
}
