package middleware

import (
	"adminhub/internal/database"
	"adminhub/internal/models"
	"adminhub/internal/services"
	"adminhub/pkg/jwt"
	"adminhub/pkg/response"
	"adminhub/pkg/revocation"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 权限中间件
type AuthMiddleware struct {
	userService *services.UserService
	resolver    *services.ResolverService
	jwtManager  *jwt.JWTManager
	revocation  *revocation.Store
}

func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{
		userService: services.NewUserService(),
		resolver:    services.NewResolverService(),
		jwtManager:  jwt.GetJWTManager(), // 使用全局JWT管理器
		revocation:  database.GetRevocationStore(),
	}
}

// RequireLogin 要求携带有效且未吊销的令牌
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Authorization头获取JWT token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "认证头格式错误")
			c.Abort()
			return
		}

		// 提取token
		tokenString := authHeader[7:] // 去掉 "Bearer "

		// 验证token
		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		// 登出过的令牌在自然过期前都在吊销名单内
		if m.revocation.IsRevoked(c.Request.Context(), claims.ID) {
			response.Unauthorized(c, "Token已登出")
			c.Abort()
			return
		}

		// 获取用户信息
		user, err := m.userService.GetByID(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "用户不存在")
			c.Abort()
			return
		}

		// 检查用户状态
		if !m.userService.IsActive(user) {
			response.Unauthorized(c, "用户已被禁用")
			c.Abort()
			return
		}

		// 将用户信息保存到上下文
		c.Set("user", user)
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("security_level", user.SecurityLevel)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequirePermission 要求命中权限表达式中的任意一项
// 表达式为逗号分隔的权限串析取，如 "READ.Students,READ_SELF_MANAGED.Students"
func (m *AuthMiddleware) RequirePermission(expr string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 先检查登录
		userObj, exists := c.Get("user")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		user := userObj.(*models.User)

		// 检查权限：每次请求都重新解析，不做缓存
		hasPermission, err := m.resolver.HasAnyPermission(user, expr)
		if err != nil {
			response.ServerError(c, "权限检查失败")
			c.Abort()
			return
		}

		if !hasPermission {
			services.GetAuditService().Record(
				models.AuditAccessDenied,
				user.ID,
				user.Username,
				"需要 "+expr,
				c.ClientIP(),
			)
			response.Forbidden(c, "权限不足：需要 "+expr)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin 要求最高安全等级
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userObj, exists := c.Get("user")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if userObj.(*models.User).SecurityLevel != models.SecurityLevelAdmin {
			response.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireOwnerOrAdmin 要求是资源所有者或管理员（用于用户自助接口）
func (m *AuthMiddleware) RequireOwnerOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userObj, exists := c.Get("user")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		user := userObj.(*models.User)

		if user.SecurityLevel == models.SecurityLevelAdmin {
			c.Next()
			return
		}

		if resourceID := c.Param("id"); resourceID != "" && resourceID == user.ID {
			c.Next()
			return
		}

		response.Forbidden(c, "只能操作自己的资源")
		c.Abort()
	}
}

// RevokeToken 吊销令牌直到其自然过期
func (m *AuthMiddleware) RevokeToken(c *gin.Context, claims *jwt.JWTClaims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	return m.revocation.Revoke(c.Request.Context(), claims.ID, ttl)
}
