package handlers

import (
	"errors"
	"strconv"
	"time"

	"adminhub/internal/services"
	apperrors "adminhub/pkg/errors"
	"adminhub/pkg/pagination"
	"adminhub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateTestTypeRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateTestTypeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type CreateBatchRequest struct {
	Name         string         `json:"name" binding:"required"`
	TestTypeID   uint           `json:"test_type_id" binding:"required"`
	DepartmentID *uint          `json:"department_id"`
	Settings     datatypes.JSON `json:"settings"`
	OpensAt      *time.Time     `json:"opens_at"`
	ClosesAt     *time.Time     `json:"closes_at"`
}

type UpdateBatchStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft open closed"`
}

type AssessmentHandler struct {
	service *services.AssessmentService
}

func NewAssessmentHandler() *AssessmentHandler {
	return &AssessmentHandler{
		service: services.NewAssessmentService(),
	}
}

// ========== 测评类型 ==========

// CreateTestType 创建测评类型
func (h *AssessmentHandler) CreateTestType(c *gin.Context) {
	var req CreateTestTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	tt, err := h.service.CreateTestType(req.Code, req.Name, req.Description)
	if err != nil {
		if apperrors.IsConflict(err) {
			response.Conflict(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, tt)
}

// GetTestTypes 分页获取测评类型
func (h *AssessmentHandler) GetTestTypes(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	keyword := c.Query("keyword")

	types, total, err := h.service.GetTestTypesWithPage(keyword, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, types, pageInfo)
}

// UpdateTestType 更新测评类型
func (h *AssessmentHandler) UpdateTestType(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateTestTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	tt, err := h.service.UpdateTestType(uint(id), req.Name, req.Description, req.IsActive)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "测评类型不存在")
			return
		}
		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, tt)
}

// DeleteTestType 删除测评类型，仍有批次引用时拒绝
func (h *AssessmentHandler) DeleteTestType(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	if err := h.service.DeleteTestType(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "测评类型不存在")
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

// ========== 测评批次 ==========

// CreateBatch 创建测评批次
func (h *AssessmentHandler) CreateBatch(c *gin.Context) {
	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	batch, err := h.service.CreateBatch(req.Name, req.TestTypeID, req.DepartmentID, req.Settings, req.OpensAt, req.ClosesAt)
	if err != nil {
		if apperrors.IsNotFound(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, batch)
}

// GetBatchByID 获取批次
func (h *AssessmentHandler) GetBatchByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	batch, err := h.service.GetBatchByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "批次不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, batch)
}

// GetBatches 分页获取批次
func (h *AssessmentHandler) GetBatches(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	status := c.Query("status")

	var testTypeID, departmentID *uint
	if t := c.Query("test_type_id"); t != "" {
		id, err := strconv.ParseUint(t, 10, 32)
		if err != nil {
			response.BadRequest(c, "测评类型ID格式错误")
			return
		}
		v := uint(id)
		testTypeID = &v
	}
	if d := c.Query("department_id"); d != "" {
		id, err := strconv.ParseUint(d, 10, 32)
		if err != nil {
			response.BadRequest(c, "部门ID格式错误")
			return
		}
		v := uint(id)
		departmentID = &v
	}

	batches, total, err := h.service.GetBatchesWithPage(testTypeID, departmentID, status, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, batches, pageInfo)
}

// UpdateBatchStatus 流转批次状态
func (h *AssessmentHandler) UpdateBatchStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateBatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	batch, err := h.service.UpdateBatchStatus(uint(id), req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "批次不存在")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, batch)
}

// DeleteBatch 删除批次
func (h *AssessmentHandler) DeleteBatch(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	if err := h.service.DeleteBatch(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "批次不存在")
			return
		}
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}
