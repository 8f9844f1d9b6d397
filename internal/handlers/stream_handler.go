package handlers

import (
	"net/http"
	"strings"
	"time"

	"adminhub/internal/services"
	"adminhub/pkg/config"
	"adminhub/pkg/jwt"
	"adminhub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// StreamHandler 审计事件实时推送（WebSocket）
type StreamHandler struct {
	upgrader    websocket.Upgrader
	log         *logrus.Logger
	jwtManager  *jwt.JWTManager
	userService *services.UserService
	resolver    *services.ResolverService
	audit       *services.AuditService
}

// NewStreamHandler 创建WebSocket处理器
func NewStreamHandler() *StreamHandler {
	// 获取CORS配置
	cfg := config.GetConfig()
	allowedOrigins := cfg.CORS.AllowOrigins

	return &StreamHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// 如果允许所有源
				for _, allowed := range allowedOrigins {
					if allowed == "*" {
						return true
					}
				}

				// Origin为空（同源请求），允许
				if origin == "" {
					return true
				}

				for _, allowed := range allowedOrigins {
					if matchOrigin(origin, allowed) {
						return true
					}
				}

				logger.GetLogger().Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024 * 32,
			WriteBufferSize: 1024 * 32,
		},
		log:         logger.GetLogger(),
		jwtManager:  jwt.GetJWTManager(), // 使用全局JWT管理器
		userService: services.NewUserService(),
		resolver:    services.NewResolverService(),
		audit:       services.GetAuditService(),
	}
}

// AuditEvents 实时订阅审计事件流
func (h *StreamHandler) AuditEvents(c *gin.Context) {
	// 从查询参数获取token（WebSocket不支持自定义header）
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少认证令牌"})
		return
	}

	// 验证token
	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的令牌"})
		return
	}

	user, err := h.userService.GetByID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "用户不存在"})
		return
	}
	if !h.userService.IsActive(user) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "用户已被禁用"})
		return
	}

	// 验证是否有权限订阅审计事件
	hasPermission, err := h.resolver.HasAnyPermission(user, "READ.AuditEvents")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "权限检查失败"})
		return
	}
	if !hasPermission {
		c.JSON(http.StatusForbidden, gin.H{"error": "权限不足：需要 READ.AuditEvents 权限"})
		return
	}

	// 升级为WebSocket连接
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorf("WebSocket升级失败: %v", err)
		return
	}
	defer conn.Close()

	h.log.Infof("用户 %s 订阅审计事件流", user.Username)

	events := h.audit.Subscribe()
	defer h.audit.Unsubscribe(events)

	// 读协程只用于感知客户端断开
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(event); err != nil {
				h.log.Warnf("推送审计事件失败: %v", err)
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// matchOrigin 检查origin是否匹配allowed模式
// 支持精确匹配和通配符匹配（如 *.example.com）
func matchOrigin(origin, allowed string) bool {
	// 精确匹配
	if origin == allowed {
		return true
	}

	// 通配符模式
	if strings.HasPrefix(allowed, "*.") {
		domain := allowed[2:]
		originHost := origin
		if idx := strings.Index(origin, "://"); idx != -1 {
			originHost = origin[idx+3:]
		}
		if idx := strings.Index(originHost, ":"); idx != -1 {
			originHost = originHost[:idx]
		}
		return originHost == domain || strings.HasSuffix(originHost, "."+domain)
	}

	return false
}
