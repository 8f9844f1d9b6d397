package handlers

import (
	"strings"
	"time"

	"adminhub/internal/database"
	"adminhub/internal/models"
	"adminhub/internal/services"
	"adminhub/pkg/jwt"
	"adminhub/pkg/logger"
	"adminhub/pkg/response"
	"adminhub/pkg/revocation"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService *services.UserService
	resolver    *services.ResolverService
	jwtManager  *jwt.JWTManager
	revocation  *revocation.Store
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		userService: services.NewUserService(),
		resolver:    services.NewResolverService(),
		jwtManager:  jwt.GetJWTManager(), // 使用全局JWT管理器
		revocation:  database.GetRevocationStore(),
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      UserInfo `json:"user"`
}

type UserInfo struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	FullName      string  `json:"full_name"`
	Email         *string `json:"email"`
	SecurityLevel int     `json:"security_level"`
	Status        string  `json:"status"`
	GroupID       *string `json:"group_id"`
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	// 根据用户名获取用户
	user, err := h.userService.GetByUsername(req.Username)
	if err != nil {
		services.GetAuditService().Record(models.AuditLoginFailed, "", req.Username, "用户不存在", c.ClientIP())
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	// 检查用户状态
	if !h.userService.IsActive(user) {
		services.GetAuditService().Record(models.AuditLoginFailed, user.ID, user.Username, "用户已被禁用", c.ClientIP())
		response.Unauthorized(c, "用户已被禁用")
		return
	}

	// 验证密码
	if !user.CheckPassword(req.Password) {
		services.GetAuditService().Record(models.AuditLoginFailed, user.ID, user.Username, "密码错误", c.ClientIP())
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	// 生成Token，角色代码随令牌下发
	roleIDs := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roleIDs = append(roleIDs, role.ID)
	}
	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.SecurityLevel, roleIDs)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	// 更新最后登录时间（待首登用户随之激活），失败不影响登录流程
	if err := h.userService.UpdateLastLogin(user.ID); err != nil {
		logger.GetLogger().Warnf("更新用户 %s 最后登录时间失败: %v", user.Username, err)
	}

	services.GetAuditService().Record(models.AuditLoginSuccess, user.ID, user.Username, "", c.ClientIP())

	// 计算过期时间
	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()

	resp := LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:            user.ID,
			Username:      user.Username,
			FullName:      user.FullName,
			Email:         user.Email,
			SecurityLevel: user.SecurityLevel,
			Status:        user.Status,
			GroupID:       user.GroupID,
		},
	}

	response.Success(c, resp)
}

// Logout 用户登出：把当前令牌的jti送入吊销名单，直到其自然过期
func (h *AuthHandler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		// 没有有效token也算登出成功
		response.Success(c, gin.H{"message": "登出成功"})
		return
	}

	tokenString := authHeader[7:] // 去掉 "Bearer "

	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		// token无效也算登出成功
		response.Success(c, gin.H{"message": "登出成功"})
		return
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := h.revocation.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
		response.ServerError(c, "登出失败")
		return
	}

	services.GetAuditService().Record(models.AuditLogout, claims.UserID, claims.Username, "", c.ClientIP())

	response.Success(c, gin.H{
		"message":     "登出成功",
		"user_id":     claims.UserID,
		"username":    claims.Username,
		"logout_time": time.Now(),
	})
}

// RefreshToken 刷新Token：签发新令牌并吊销旧令牌
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c, "缺少认证头")
		return
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		response.Unauthorized(c, "认证头格式错误")
		return
	}

	tokenString := authHeader[7:] // 去掉 "Bearer "

	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		response.Unauthorized(c, "Token无效")
		return
	}

	if h.revocation.IsRevoked(c.Request.Context(), claims.ID) {
		response.Unauthorized(c, "Token已登出")
		return
	}

	// 获取用户信息
	user, err := h.userService.GetByID(claims.UserID)
	if err != nil {
		response.Unauthorized(c, "用户不存在")
		return
	}

	// 检查用户状态
	if !h.userService.IsActive(user) {
		response.Unauthorized(c, "用户已被禁用")
		return
	}

	// 生成新Token
	roleIDs := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roleIDs = append(roleIDs, role.ID)
	}
	newToken, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.SecurityLevel, roleIDs)
	if err != nil {
		response.ServerError(c, "生成新Token失败")
		return
	}

	// 旧令牌即刻失效
	if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
		_ = h.revocation.Revoke(c.Request.Context(), claims.ID, ttl)
	}

	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()

	response.Success(c, gin.H{
		"token":      newToken,
		"expires_at": expiresAt,
		"message":    "Token刷新成功",
	})
}

// Me 获取当前登录用户的完整信息
func (h *AuthHandler) Me(c *gin.Context) {
	claims, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}
	userClaims := claims.(*jwt.JWTClaims)

	// 获取用户详细信息
	user, err := h.userService.GetByID(userClaims.UserID)
	if err != nil {
		response.NotFound(c, "用户不存在")
		return
	}

	// 获取用户角色
	roles, err := h.userService.GetUserRoles(user.ID)
	if err != nil {
		roles = []models.Role{} // 如果获取失败，返回空数组
	}

	// 实时解析有效权限
	permissions, err := h.resolver.ResolveCodes(user.ID)
	if err != nil {
		permissions = []string{}
	}

	responseData := gin.H{
		"user": gin.H{
			"id":             user.ID,
			"username":       user.Username,
			"full_name":      user.FullName,
			"email":          user.Email,
			"security_level": user.SecurityLevel,
			"status":         user.Status,
			"group_id":       user.GroupID,
			"manager_id":     user.ManagerID,
			"created_at":     user.CreatedAt,
			"last_login_at":  user.LastLoginAt,
		},
		"roles":       h.formatRoles(roles),
		"permissions": permissions,
	}

	response.Success(c, responseData)
}

// 格式化角色列表
func (h *AuthHandler) formatRoles(roles []models.Role) []gin.H {
	result := make([]gin.H, 0, len(roles))
	for _, role := range roles {
		result = append(result, gin.H{
			"id":          role.ID,
			"name":        role.Name,
			"description": role.Description,
			"is_active":   role.IsActive,
		})
	}
	return result
}
