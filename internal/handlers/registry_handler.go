package handlers

import (
	"errors"

	"adminhub/internal/services"
	apperrors "adminhub/pkg/errors"
	"adminhub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateActionRequest struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
	Code string `json:"code"`
}

type UpdateActionRequest struct {
	Name     string `json:"name" binding:"required"`
	Code     string `json:"code"`
	IsActive bool   `json:"is_active"`
}

type CreateEntityRequest struct {
	ID            string `json:"id" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Type          string `json:"type"`
	SecurityLevel int    `json:"security_level" binding:"required,min=1,max=5"`
}

type UpdateEntityRequest struct {
	Name          string `json:"name" binding:"required"`
	Type          string `json:"type"`
	SecurityLevel int    `json:"security_level" binding:"required,min=1,max=5"`
	IsActive      bool   `json:"is_active"`
}

// RegistryHandler 动作/实体登记表
type RegistryHandler struct {
	service *services.RegistryService
}

func NewRegistryHandler() *RegistryHandler {
	return &RegistryHandler{
		service: services.NewRegistryService(),
	}
}

// ========== 动作 ==========

// CreateAction 创建动作
func (h *RegistryHandler) CreateAction(c *gin.Context) {
	var req CreateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	action, err := h.service.CreateAction(req.ID, req.Name, req.Code)
	if err != nil {
		if apperrors.IsConflict(err) {
			response.Conflict(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, action)
}

// GetActions 获取所有动作
func (h *RegistryHandler) GetActions(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"

	actions, err := h.service.GetActions(activeOnly)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, actions)
}

// UpdateAction 更新动作
func (h *RegistryHandler) UpdateAction(c *gin.Context) {
	var req UpdateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	action, err := h.service.UpdateAction(c.Param("id"), req.Name, req.Code, req.IsActive)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "动作不存在")
			return
		}
		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, action)
}

// DeleteAction 删除动作，仍被权限引用时拒绝
func (h *RegistryHandler) DeleteAction(c *gin.Context) {
	if err := h.service.DeleteAction(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "动作不存在")
			return
		}
		if apperrors.IsConflict(err) {
			response.Conflict(c, err.Error())
			return
		}
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}

// ========== 实体 ==========

// CreateEntity 创建实体
func (h *RegistryHandler) CreateEntity(c *gin.Context) {
	var req CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	entity, err := h.service.CreateEntity(req.ID, req.Name, req.Type, req.SecurityLevel)
	if err != nil {
		if apperrors.IsConflict(err) {
			response.Conflict(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, entity)
}

// GetEntities 获取所有实体
func (h *RegistryHandler) GetEntities(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"

	entities, err := h.service.GetEntities(activeOnly)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, entities)
}

// UpdateEntity 更新实体
func (h *RegistryHandler) UpdateEntity(c *gin.Context) {
	var req UpdateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	entity, err := h.service.UpdateEntity(c.Param("id"), req.Name, req.Type, req.SecurityLevel, req.IsActive)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "实体不存在")
			return
		}
		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, entity)
}

// DeleteEntity 删除实体，仍被权限引用时拒绝
func (h *RegistryHandler) DeleteEntity(c *gin.Context) {
	if err := h.service.DeleteEntity(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "实体不存在")
			return
		}
		if apperrors.IsConflict(err) {
			response.Conflict(c, err.Error())
			return
		}
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}
