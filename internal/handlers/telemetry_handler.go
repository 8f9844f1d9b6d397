package handlers

import (
	"time"

	"adminhub/internal/models"
	"adminhub/internal/services"
	apperrors "adminhub/pkg/errors"
	"adminhub/pkg/pagination"
	"adminhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type UpsertDeviceRequest struct {
	Name       string                 `json:"name" binding:"required"`
	Kind       string                 `json:"kind" binding:"required"`
	Location   string                 `json:"location"`
	Attributes map[string]interface{} `json:"attributes"`
}

type TelemetryHandler struct {
	service *services.TelemetryService
	audit   *services.AuditService
}

func NewTelemetryHandler() *TelemetryHandler {
	return &TelemetryHandler{
		service: services.NewTelemetryService(),
		audit:   services.GetAuditService(),
	}
}

// ========== 传感器读数 ==========

// GetReadings 分页查询传感器读数
func (h *TelemetryHandler) GetReadings(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	filter := services.ReadingFilter{
		DeviceID: c.Query("device_id"),
		Metric:   c.Query("metric"),
	}
	if f := c.Query("from"); f != "" {
		t, err := time.Parse(time.RFC3339, f)
		if err != nil {
			response.BadRequest(c, "from 时间格式错误，应为RFC3339")
			return
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			response.BadRequest(c, "to 时间格式错误，应为RFC3339")
			return
		}
		filter.To = &t
	}

	readings, total, err := h.service.ListReadings(c.Request.Context(), filter, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, readings, pageInfo)
}

// ========== 设备登记表 ==========

// GetDevices 分页查询设备
func (h *TelemetryHandler) GetDevices(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	kind := c.Query("kind")

	devices, total, err := h.service.ListDevices(c.Request.Context(), kind, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, devices, pageInfo)
}

// GetDevice 获取设备
func (h *TelemetryHandler) GetDevice(c *gin.Context) {
	device, err := h.service.GetDevice(c.Request.Context(), c.Param("id"))
	if err != nil {
		if apperrors.IsNotFound(err) {
			response.NotFound(c, "设备不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, device)
}

// UpsertDevice 登记或更新设备
func (h *TelemetryHandler) UpsertDevice(c *gin.Context) {
	var req UpsertDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	device := &models.Device{
		ID:         c.Param("id"),
		Name:       req.Name,
		Kind:       req.Kind,
		Location:   req.Location,
		Attributes: req.Attributes,
	}
	if err := h.service.UpsertDevice(c.Request.Context(), device); err != nil {
		response.ServerError(c, "登记设备失败")
		return
	}

	response.Success(c, device)
}

// ========== 审计事件 ==========

// GetAuditEvents 分页查询审计事件
func (h *TelemetryHandler) GetAuditEvents(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	userID := c.Query("user_id")
	eventType := c.Query("type")

	events, total, err := h.audit.List(c.Request.Context(), userID, eventType, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, events, pageInfo)
}
