package handlers

import (
	"errors"
	"strings"

	"adminhub/internal/services"
	apperrors "adminhub/pkg/errors"
	"adminhub/pkg/pagination"
	"adminhub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Username      string  `json:"username" binding:"required"`
	Password      string  `json:"password" binding:"required"`
	FullName      string  `json:"full_name" binding:"required"`
	Email         *string `json:"email"`
	SecurityLevel int     `json:"security_level" binding:"required,min=1,max=5"`
	GroupID       *string `json:"group_id"`
	ManagerID     *string `json:"manager_id"`
}

type UpdateUserRequest struct {
	FullName      string  `json:"full_name" binding:"required"`
	Email         *string `json:"email"`
	SecurityLevel int     `json:"security_level" binding:"required,min=1,max=5"`
	Status        string  `json:"status" binding:"required"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

type SetGroupRequest struct {
	GroupID *string `json:"group_id"`
}

type SetManagerRequest struct {
	ManagerID *string `json:"manager_id"`
}

type ReplaceRolesRequest struct {
	RoleIDs []string `json:"role_ids"`
}

type AddRoleRequest struct {
	RoleID string `json:"role_id" binding:"required"`
}

type UserHandler struct {
	service  *services.UserService
	resolver *services.ResolverService
}

func NewUserHandler() *UserHandler {
	return &UserHandler{
		service:  services.NewUserService(),
		resolver: services.NewResolverService(),
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建用户
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	user, err := h.service.Create(req.Username, req.Password, req.FullName, req.Email, req.SecurityLevel, req.GroupID, req.ManagerID)
	if err != nil {
		if apperrors.IsConflict(err) {
			response.Conflict(c, err.Error())
			return
		}
		if apperrors.IsNotFound(err) {
			response.BadRequest(c, err.Error())
			return
		}

		errMsg := err.Error()
		// 参数验证错误 -> 400
		if strings.Contains(errMsg, "用户名长度") ||
			strings.Contains(errMsg, "密码长度") ||
			strings.Contains(errMsg, "姓名长度") ||
			strings.Contains(errMsg, "安全等级") {
			response.BadRequest(c, errMsg)
			return
		}

		response.ServerError(c, "创建失败")
		return
	}

	response.Success(c, user)
}

// GetByID 获取用户
func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.service.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, user)
}

// GetAll 获取所有用户
func (h *UserHandler) GetAll(c *gin.Context) {
	// 解析分页参数
	pageParams := pagination.ParsePageParams(c)

	// 支持按状态、用户组筛选和关键词搜索
	status := c.Query("status")
	keyword := c.Query("keyword")

	var groupID *string
	if g := c.Query("group_id"); g != "" {
		groupID = &g
	}

	order := pagination.ParseSortParam(c, "created_at DESC", "username", "created_at", "last_login_at", "security_level")

	users, total, err := h.service.GetWithFiltersAndPage(status, keyword, groupID, pageParams.Page, pageParams.PageSize, order)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, users, pageInfo)
}

// Update 更新用户
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	user, err := h.service.Update(c.Param("id"), req.FullName, req.Email, req.SecurityLevel, req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}

		errMsg := err.Error()
		if strings.Contains(errMsg, "姓名长度") ||
			strings.Contains(errMsg, "安全等级") ||
			strings.Contains(errMsg, "状态只能") {
			response.BadRequest(c, errMsg)
			return
		}

		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, user)
}

// Delete 软删除用户（行保留，状态置deleted）
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.SoftDelete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}

// HardDelete 硬删除用户，连同角色关联一并清理
func (h *UserHandler) HardDelete(c *gin.Context) {
	if err := h.service.HardDelete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}

// ========== 快捷操作方法 ==========

// Activate 激活用户
func (h *UserHandler) Activate(c *gin.Context) {
	user, err := h.service.Activate(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		response.ServerError(c, "操作失败")
		return
	}

	response.Success(c, user)
}

// Suspend 停用用户
func (h *UserHandler) Suspend(c *gin.Context) {
	user, err := h.service.Suspend(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		response.ServerError(c, "操作失败")
		return
	}

	response.Success(c, user)
}

// ResetPassword 重置密码
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	if _, err := h.service.ResetPassword(c.Param("id"), req.NewPassword); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		if strings.Contains(err.Error(), "密码长度") {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "重置密码失败")
		return
	}

	response.Success(c, gin.H{"message": "密码重置成功"})
}

// SetGroup 设置用户所属用户组
func (h *UserHandler) SetGroup(c *gin.Context) {
	var req SetGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	user, err := h.service.SetGroup(c.Param("id"), req.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		if apperrors.IsNotFound(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "设置用户组失败")
		return
	}

	response.Success(c, user)
}

// SetManager 设置用户的管理者
func (h *UserHandler) SetManager(c *gin.Context) {
	var req SetManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	user, err := h.service.SetManager(c.Param("id"), req.ManagerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		if apperrors.IsNotFound(err) {
			response.BadRequest(c, err.Error())
			return
		}

		errMsg := err.Error()
		if strings.Contains(errMsg, "管理链出现循环") || strings.Contains(errMsg, "自己的管理者") {
			response.BadRequest(c, errMsg)
			return
		}
		response.ServerError(c, "设置管理者失败")
		return
	}

	response.Success(c, user)
}

// ========== 角色管理方法 ==========

// ReplaceRoles 整体替换用户的角色集合
func (h *UserHandler) ReplaceRoles(c *gin.Context) {
	var req ReplaceRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	operatorID := c.GetString("user_id")
	if err := h.service.ReplaceRoles(c.Param("id"), req.RoleIDs, operatorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		if apperrors.IsNotFound(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "分配角色失败")
		return
	}

	response.Success(c, gin.H{"message": "角色分配成功"})
}

// AddRole 为用户添加单个角色
func (h *UserHandler) AddRole(c *gin.Context) {
	var req AddRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	operatorID := c.GetString("user_id")
	if err := h.service.AddRole(c.Param("id"), req.RoleID, operatorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		if apperrors.IsConflict(err) {
			response.Conflict(c, err.Error())
			return
		}
		if apperrors.IsNotFound(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "添加角色失败")
		return
	}

	response.Success(c, gin.H{"message": "角色添加成功"})
}

// RemoveRole 移除用户的角色
func (h *UserHandler) RemoveRole(c *gin.Context) {
	if err := h.service.RemoveRole(c.Param("id"), c.Param("roleId")); err != nil {
		response.ServerError(c, "移除角色失败")
		return
	}

	response.Success(c, gin.H{"message": "角色移除成功"})
}

// GetRoles 获取用户的角色列表
func (h *UserHandler) GetRoles(c *gin.Context) {
	roles, err := h.service.GetUserRoles(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, roles)
}

// GetEffectivePermissions 获取用户的有效权限（实时解析）
func (h *UserHandler) GetEffectivePermissions(c *gin.Context) {
	permissions, err := h.resolver.ResolveByUserID(c.Param("id"))
	if err != nil {
		response.ServerError(c, "解析有效权限失败")
		return
	}

	response.Success(c, permissions)
}
