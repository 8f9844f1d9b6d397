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

type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type ReplacePermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids"`
}

type RoleHandler struct {
	service *services.RoleService
}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{
		service: services.NewRoleService(),
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建角色，标识由名称派生
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	role, err := h.service.Create(req.Name, req.Description)
	if err != nil {
		if apperrors.IsConflict(err) {
			response.Conflict(c, err.Error())
			return
		}
		if strings.Contains(err.Error(), "名称") {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "创建失败")
		return
	}

	response.Success(c, role)
}

// GetByID 获取角色（软删除的角色仍可取回）
func (h *RoleHandler) GetByID(c *gin.Context) {
	role, err := h.service.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "角色不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, role)
}

// GetAll 获取所有角色
func (h *RoleHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	keyword := c.Query("keyword")
	activeOnly := c.Query("active_only") == "true"

	roles, total, err := h.service.GetWithPage(keyword, activeOnly, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, roles, pageInfo)
}

// Update 更新角色
func (h *RoleHandler) Update(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	role, err := h.service.Update(c.Param("id"), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "角色不存在")
			return
		}

		errMsg := err.Error()
		if strings.Contains(errMsg, "系统角色") || strings.Contains(errMsg, "名称") {
			response.BadRequest(c, errMsg)
			return
		}
		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, role)
}

// Delete 软删除角色
func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.service.SoftDelete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "角色不存在")
			return
		}
		if strings.Contains(err.Error(), "系统角色") {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}

// Restore 恢复软删除的角色
func (h *RoleHandler) Restore(c *gin.Context) {
	if err := h.service.Restore(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "角色不存在")
			return
		}
		response.ServerError(c, "恢复失败")
		return
	}

	response.Success(c, nil)
}

// HardDelete 硬删除角色，连同三类关联一并清理
func (h *RoleHandler) HardDelete(c *gin.Context) {
	if err := h.service.HardDelete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "角色不存在")
			return
		}
		if strings.Contains(err.Error(), "系统角色") {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}

// ========== 权限管理方法 ==========

// ReplacePermissions 整体替换角色的权限集合
func (h *RoleHandler) ReplacePermissions(c *gin.Context) {
	var req ReplacePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	if err := h.service.ReplacePermissions(c.Param("id"), req.PermissionIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "角色不存在")
			return
		}
		if apperrors.IsNotFound(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "分配权限失败")
		return
	}

	response.Success(c, gin.H{"message": "权限分配成功"})
}

// GetPermissions 获取角色的权限
func (h *RoleHandler) GetPermissions(c *gin.Context) {
	permissions, err := h.service.GetRolePermissions(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "角色不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, permissions)
}
