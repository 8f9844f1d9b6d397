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

type CreateGroupRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	TimeWindowID *uint  `json:"time_window_id"`
}

type UpdateGroupRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	TimeWindowID *uint  `json:"time_window_id"`
}

type ReplaceGroupRolesRequest struct {
	Roles []services.RoleAssignment `json:"roles"`
}

type GroupHandler struct {
	service *services.GroupService
}

func NewGroupHandler() *GroupHandler {
	return &GroupHandler{
		service: services.NewGroupService(),
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建用户组，标识由名称派生
func (h *GroupHandler) Create(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	group, err := h.service.Create(req.Name, req.Description, req.TimeWindowID)
	if err != nil {
		if apperrors.IsConflict(err) {
			response.Conflict(c, err.Error())
			return
		}
		if apperrors.IsNotFound(err) {
			response.BadRequest(c, err.Error())
			return
		}
		if strings.Contains(err.Error(), "名称") {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "创建失败")
		return
	}

	response.Success(c, group)
}

// GetByID 获取用户组
func (h *GroupHandler) GetByID(c *gin.Context) {
	group, err := h.service.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户组不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, group)
}

// GetAll 获取所有用户组
func (h *GroupHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	keyword := c.Query("keyword")
	activeOnly := c.Query("active_only") == "true"

	groups, total, err := h.service.GetWithPage(keyword, activeOnly, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, groups, pageInfo)
}

// Update 更新用户组（标识不可变）
func (h *GroupHandler) Update(c *gin.Context) {
	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	group, err := h.service.Update(c.Param("id"), req.Name, req.Description, req.TimeWindowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户组不存在")
			return
		}
		if strings.Contains(err.Error(), "名称") {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, group)
}

// Delete 软删除用户组（置停用标志）
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.service.SoftDelete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户组不存在")
			return
		}
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}

// Restore 恢复软删除的用户组
func (h *GroupHandler) Restore(c *gin.Context) {
	if err := h.service.Restore(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户组不存在")
			return
		}
		response.ServerError(c, "恢复失败")
		return
	}

	response.Success(c, nil)
}

// HardDelete 硬删除用户组：摘除角色关联、置空成员归属后删行
func (h *GroupHandler) HardDelete(c *gin.Context) {
	if err := h.service.HardDelete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户组不存在")
			return
		}
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}

// ========== 角色管理方法 ==========

// ReplaceRoles 整体替换用户组的角色集合
func (h *GroupHandler) ReplaceRoles(c *gin.Context) {
	var req ReplaceGroupRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	if err := h.service.ReplaceRoles(c.Param("id"), req.Roles); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户组不存在")
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

// GetRoles 获取用户组的角色及分配备注
func (h *GroupHandler) GetRoles(c *gin.Context) {
	links, err := h.service.GetGroupRoles(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户组不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, links)
}
