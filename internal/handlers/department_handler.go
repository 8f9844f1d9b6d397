package handlers

import (
	"errors"
	"strconv"

	"adminhub/internal/services"
	apperrors "adminhub/pkg/errors"
	"adminhub/pkg/pagination"
	"adminhub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateDepartmentRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type DepartmentHandler struct {
	service *services.DepartmentService
}

func NewDepartmentHandler() *DepartmentHandler {
	return &DepartmentHandler{
		service: services.NewDepartmentService(),
	}
}

// Create 创建部门
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	dept, err := h.service.Create(req.Code, req.Name, req.Description)
	if err != nil {
		if apperrors.IsConflict(err) {
			response.Conflict(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, dept)
}

// GetByID 获取部门
func (h *DepartmentHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	dept, err := h.service.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "部门不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, dept)
}

// GetAll 获取所有部门
func (h *DepartmentHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	keyword := c.Query("keyword")

	order := pagination.ParseSortParam(c, "code ASC", "code", "name", "created_at")

	depts, total, err := h.service.GetWithPage(keyword, pageParams.Page, pageParams.PageSize, order)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, depts, pageInfo)
}

// Update 更新部门
func (h *DepartmentHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	dept, err := h.service.Update(uint(id), req.Name, req.Description, req.IsActive)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "部门不存在")
			return
		}
		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, dept)
}

// Delete 删除部门，仍有学生挂靠时拒绝
func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	if err := h.service.Delete(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "部门不存在")
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
