package router

import (
	"fmt"
	"sort"
	"time"

	"adminhub/internal/handlers"
	"adminhub/internal/middleware"
	"adminhub/internal/services"
	"adminhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// 路由上声明过的权限表达式，启动时统一校验
var declaredExpressions []string

// guard 记录表达式并返回对应的权限中间件
func guard(auth *middleware.AuthMiddleware, expr string) gin.HandlerFunc {
	declaredExpressions = append(declaredExpressions, expr)
	return auth.RequirePermission(expr)
}

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// ValidateDeclaredExpressions 校验路由上声明的权限表达式
// 每一项权限串都必须能由动作/实体登记表构成，拼写错误直接拒绝启动
func ValidateDeclaredExpressions() error {
	known, err := services.NewRegistryService().KnownPermissionCodes()
	if err != nil {
		return fmt.Errorf("加载动作/实体登记表失败: %v", err)
	}

	var bad []string
	for _, expr := range declaredExpressions {
		for _, code := range services.ParseExpression(expr) {
			if !known[code] {
				bad = append(bad, code)
			}
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("路由声明了未登记的权限串: %v", bad)
	}
	return nil
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {

	auth := middleware.NewAuthMiddleware()

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// JWT认证路由（无需认证）
		authHandler := handlers.NewAuthHandler()
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)          // 用户登录
			authGroup.POST("/logout", authHandler.Logout)        // 用户登出（吊销令牌）
			authGroup.POST("/refresh", authHandler.RefreshToken) // 刷新Token

			// 获取当前用户完整信息（含实时解析的有效权限）
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)
		}

		// 用户路由
		userHandler := handlers.NewUserHandler()
		users := api.Group("/users")
		users.Use(auth.RequireLogin())
		{
			users.POST("", guard(auth, "CREATE.Users"), userHandler.Create)
			users.GET("", guard(auth, "READ.Users"), userHandler.GetAll)
			users.GET("/:id", auth.RequireOwnerOrAdmin(), userHandler.GetByID) // 个人信息查看，自己或管理员
			users.PUT("/:id", guard(auth, "UPDATE.Users"), userHandler.Update)
			users.DELETE("/:id", guard(auth, "DELETE.Users"), userHandler.Delete)
			users.DELETE("/:id/hard", auth.RequireAdmin(), userHandler.HardDelete)

			// 快捷操作
			users.POST("/:id/activate", guard(auth, "UPDATE.Users"), userHandler.Activate)
			users.POST("/:id/suspend", guard(auth, "UPDATE.Users"), userHandler.Suspend)
			users.POST("/:id/reset-password", auth.RequireOwnerOrAdmin(), userHandler.ResetPassword)
			users.PUT("/:id/group", guard(auth, "UPDATE.Users"), userHandler.SetGroup)
			users.PUT("/:id/manager", guard(auth, "UPDATE.Users"), userHandler.SetManager)

			// 角色管理：整体替换为主，增删为辅
			users.PUT("/:id/roles", guard(auth, "UPDATE.Users"), userHandler.ReplaceRoles)
			users.POST("/:id/roles", guard(auth, "UPDATE.Users"), userHandler.AddRole)
			users.DELETE("/:id/roles/:roleId", guard(auth, "UPDATE.Users"), userHandler.RemoveRole)
			users.GET("/:id/roles", auth.RequireOwnerOrAdmin(), userHandler.GetRoles)
			users.GET("/:id/permissions", auth.RequireOwnerOrAdmin(), userHandler.GetEffectivePermissions)
		}

		// 用户组路由
		groupHandler := handlers.NewGroupHandler()
		groups := api.Group("/groups")
		groups.Use(auth.RequireLogin())
		{
			groups.POST("", guard(auth, "CREATE.Groups"), groupHandler.Create)
			groups.GET("", guard(auth, "READ.Groups"), groupHandler.GetAll)
			groups.GET("/:id", guard(auth, "READ.Groups"), groupHandler.GetByID)
			groups.PUT("/:id", guard(auth, "UPDATE.Groups"), groupHandler.Update)
			groups.DELETE("/:id", guard(auth, "DELETE.Groups"), groupHandler.Delete)
			groups.POST("/:id/restore", guard(auth, "UPDATE.Groups"), groupHandler.Restore)
			groups.DELETE("/:id/hard", auth.RequireAdmin(), groupHandler.HardDelete)

			groups.PUT("/:id/roles", guard(auth, "UPDATE.Groups"), groupHandler.ReplaceRoles)
			groups.GET("/:id/roles", guard(auth, "READ.Groups"), groupHandler.GetRoles)
		}

		// 角色路由
		roleHandler := handlers.NewRoleHandler()
		roles := api.Group("/roles")
		roles.Use(auth.RequireLogin())
		{
			roles.POST("", guard(auth, "CREATE.Roles"), roleHandler.Create)
			roles.GET("", guard(auth, "READ.Roles"), roleHandler.GetAll)
			roles.GET("/:id", guard(auth, "READ.Roles"), roleHandler.GetByID)
			roles.PUT("/:id", guard(auth, "UPDATE.Roles"), roleHandler.Update)
			roles.DELETE("/:id", guard(auth, "DELETE.Roles"), roleHandler.Delete)
			roles.POST("/:id/restore", guard(auth, "UPDATE.Roles"), roleHandler.Restore)
			roles.DELETE("/:id/hard", auth.RequireAdmin(), roleHandler.HardDelete)

			roles.PUT("/:id/permissions", guard(auth, "UPDATE.Roles"), roleHandler.ReplacePermissions)
			roles.GET("/:id/permissions", guard(auth, "READ.Roles"), roleHandler.GetPermissions)
		}

		// 权限路由
		permissionHandler := handlers.NewPermissionHandler()
		permissions := api.Group("/permissions")
		permissions.Use(auth.RequireLogin())
		{
			permissions.POST("", guard(auth, "CREATE.Permissions"), permissionHandler.Create)
			permissions.GET("", guard(auth, "READ.Permissions"), permissionHandler.GetAll)
			permissions.GET("/:id", guard(auth, "READ.Permissions"), permissionHandler.GetByID)
			permissions.DELETE("/:id", guard(auth, "DELETE.Permissions"), permissionHandler.Delete)
			permissions.DELETE("/:id/hard", auth.RequireAdmin(), permissionHandler.HardDelete)
		}

		// 动作/实体登记表路由（仅管理员可写）
		registryHandler := handlers.NewRegistryHandler()
		actions := api.Group("/actions")
		actions.Use(auth.RequireLogin())
		{
			actions.POST("", auth.RequireAdmin(), registryHandler.CreateAction)
			actions.GET("", guard(auth, "READ.Permissions"), registryHandler.GetActions)
			actions.PUT("/:id", auth.RequireAdmin(), registryHandler.UpdateAction)
			actions.DELETE("/:id", auth.RequireAdmin(), registryHandler.DeleteAction)
		}
		entities := api.Group("/entities")
		entities.Use(auth.RequireLogin())
		{
			entities.POST("", auth.RequireAdmin(), registryHandler.CreateEntity)
			entities.GET("", guard(auth, "READ.Permissions"), registryHandler.GetEntities)
			entities.PUT("/:id", auth.RequireAdmin(), registryHandler.UpdateEntity)
			entities.DELETE("/:id", auth.RequireAdmin(), registryHandler.DeleteEntity)
		}

		// 部门路由
		departmentHandler := handlers.NewDepartmentHandler()
		departments := api.Group("/departments")
		departments.Use(auth.RequireLogin())
		{
			departments.POST("", guard(auth, "CREATE.Departments"), departmentHandler.Create)
			departments.GET("", guard(auth, "READ.Departments"), departmentHandler.GetAll)
			departments.GET("/:id", guard(auth, "READ.Departments"), departmentHandler.GetByID)
			departments.PUT("/:id", guard(auth, "UPDATE.Departments"), departmentHandler.Update)
			departments.DELETE("/:id", guard(auth, "DELETE.Departments"), departmentHandler.Delete)
		}

		// 学生路由：读接口允许全量或自管两种权限，自管范围在处理器内收窄
		studentHandler := handlers.NewStudentHandler()
		students := api.Group("/students")
		students.Use(auth.RequireLogin())
		{
			students.POST("", guard(auth, "CREATE.Students"), studentHandler.Create)
			students.GET("", guard(auth, "READ.Students,READ_SELF_MANAGED.Students"), studentHandler.GetAll)
			students.GET("/:id", guard(auth, "READ.Students,READ_SELF_MANAGED.Students"), studentHandler.GetByID)
			students.PUT("/:id", guard(auth, "UPDATE.Students"), studentHandler.Update)
			students.DELETE("/:id", guard(auth, "DELETE.Students"), studentHandler.Delete)
		}

		// 测评类型与批次路由
		assessmentHandler := handlers.NewAssessmentHandler()
		testTypes := api.Group("/test-types")
		testTypes.Use(auth.RequireLogin())
		{
			testTypes.POST("", guard(auth, "CREATE.TestTypes"), assessmentHandler.CreateTestType)
			testTypes.GET("", guard(auth, "READ.TestTypes"), assessmentHandler.GetTestTypes)
			testTypes.PUT("/:id", guard(auth, "UPDATE.TestTypes"), assessmentHandler.UpdateTestType)
			testTypes.DELETE("/:id", guard(auth, "DELETE.TestTypes"), assessmentHandler.DeleteTestType)
		}
		batches := api.Group("/assessment-batches")
		batches.Use(auth.RequireLogin())
		{
			batches.POST("", guard(auth, "CREATE.AssessmentBatches"), assessmentHandler.CreateBatch)
			batches.GET("", guard(auth, "READ.AssessmentBatches"), assessmentHandler.GetBatches)
			batches.GET("/:id", guard(auth, "READ.AssessmentBatches"), assessmentHandler.GetBatchByID)
			batches.PUT("/:id/status", guard(auth, "UPDATE.AssessmentBatches"), assessmentHandler.UpdateBatchStatus)
			batches.DELETE("/:id", guard(auth, "DELETE.AssessmentBatches"), assessmentHandler.DeleteBatch)
		}

		// 文档库路由：传感器读数、设备登记表、审计事件
		telemetryHandler := handlers.NewTelemetryHandler()
		readings := api.Group("/sensor-readings")
		readings.Use(auth.RequireLogin())
		{
			readings.GET("", guard(auth, "READ.SensorReadings"), telemetryHandler.GetReadings)
		}
		devices := api.Group("/devices")
		devices.Use(auth.RequireLogin())
		{
			devices.GET("", guard(auth, "READ.Devices"), telemetryHandler.GetDevices)
			devices.GET("/:id", guard(auth, "READ.Devices"), telemetryHandler.GetDevice)
			devices.PUT("/:id", guard(auth, "UPDATE.Devices"), telemetryHandler.UpsertDevice)
		}
		auditEvents := api.Group("/audit-events")
		auditEvents.Use(auth.RequireLogin())
		{
			auditEvents.GET("", guard(auth, "READ.AuditEvents"), telemetryHandler.GetAuditEvents)
		}

		// WebSocket路由：审计事件实时流（token走查询参数，权限在处理器内检查）
		streamHandler := handlers.NewStreamHandler()
		api.GET("/ws/audit-events", streamHandler.AuditEvents)
	}
}

func healthCheck(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "AdminHub",
		"version":   "1.0.0",
	}
	response.Success(c, data)
}

func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}
