package handlers

import (
	"errors"

	"adminhub/internal/services"
	apperrors "adminhub/pkg/errors"
	"adminhub/pkg/pagination"
	"adminhub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreatePermissionRequest struct {
	ActionID     string  `json:"action_id" binding:"required"`
	EntityID     string  `json:"entity_id" binding:"required"`
	RoleID       *string `json:"role_id"`
	TimeWindowID *uint   `json:"time_window_id"`
}

type PermissionHandler struct {
	service *services.PermissionService
}

func NewPermissionHandler() *PermissionHandler {
	return &PermissionHandler{
		service: services.NewPermissionService(),
	}
}

// Create 创建权限：ID由动作/实体/角色三元组拼接，名称自动合成
func (h *PermissionHandler) Create(c *gin.Context) {
	var req CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	permission, err := h.service.Create(req.ActionID, req.EntityID, req.RoleID, req.TimeWindowID)
	if err != nil {
		if apperrors.IsConflict(err) {
			response.Conflict(c, err.Error())
			return
		}
		if apperrors.IsNotFound(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "创建失败")
		return
	}

	response.Success(c, permission)
}

// GetByID 获取权限
func (h *PermissionHandler) GetByID(c *gin.Context) {
	permission, err := h.service.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "权限不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, permission)
}

// GetAll 获取所有权限
func (h *PermissionHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	actionID := c.Query("action_id")
	entityID := c.Query("entity_id")
	activeOnly := c.Query("active_only") == "true"

	permissions, total, err := h.service.GetWithPage(actionID, entityID, activeOnly, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, permissions, pageInfo)
}

// Delete 软删除权限（置停用标志）
func (h *PermissionHandler) Delete(c *gin.Context) {
	if err := h.service.SoftDelete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "权限不存在")
			return
		}
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}

// HardDelete 硬删除权限，先摘除角色关联
func (h *PermissionHandler) HardDelete(c *gin.Context) {
	if err := h.service.HardDelete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "权限不存在")
			return
		}
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}
