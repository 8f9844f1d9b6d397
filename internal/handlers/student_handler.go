package handlers

import (
	"errors"
	"strconv"

	"adminhub/internal/models"
	"adminhub/internal/services"
	apperrors "adminhub/pkg/errors"
	"adminhub/pkg/pagination"
	"adminhub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateStudentRequest struct {
	Code         string  `json:"code" binding:"required"`
	FullName     string  `json:"full_name" binding:"required"`
	Email        *string `json:"email"`
	DepartmentID *uint   `json:"department_id"`
	ManagedByID  *string `json:"managed_by_id"`
}

type UpdateStudentRequest struct {
	FullName     string  `json:"full_name" binding:"required"`
	Email        *string `json:"email"`
	DepartmentID *uint   `json:"department_id"`
	ManagedByID  *string `json:"managed_by_id"`
	Status       string  `json:"status" binding:"required,oneof=active suspended graduated"`
}

type StudentHandler struct {
	service     *services.StudentService
	userService *services.UserService
	resolver    *services.ResolverService
}

func NewStudentHandler() *StudentHandler {
	return &StudentHandler{
		service:     services.NewStudentService(),
		userService: services.NewUserService(),
		resolver:    services.NewResolverService(),
	}
}

// scopeToManaged 判断调用者是否只持有自管范围的读权限
// 返回非nil时，列表查询须限定在调用者的管理子树内
func (h *StudentHandler) scopeToManaged(c *gin.Context) ([]string, error) {
	user := c.MustGet("user").(*models.User)

	// 最高安全等级或持有全量读权限的用户不受限
	if user.SecurityLevel == models.SecurityLevelAdmin {
		return nil, nil
	}
	codes, err := h.resolver.ResolveCodes(user.ID)
	if err != nil {
		return nil, err
	}
	if services.MatchAnyPermission(codes, "READ.Students") {
		return nil, nil
	}

	return h.userService.GetManagedUserIDs(user.ID)
}

// Create 创建学生
func (h *StudentHandler) Create(c *gin.Context) {
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	student, err := h.service.Create(req.Code, req.FullName, req.Email, req.DepartmentID, req.ManagedByID)
	if err != nil {
		if apperrors.IsConflict(err) {
			response.Conflict(c, err.Error())
			return
		}
		if apperrors.IsNotFound(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, student)
}

// GetByID 获取学生，自管范围的调用者只能查看管理子树内负责的学生
func (h *StudentHandler) GetByID(c *gin.Context) {
	student, err := h.service.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "学生不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	managedIDs, err := h.scopeToManaged(c)
	if err != nil {
		response.ServerError(c, "权限检查失败")
		return
	}
	if managedIDs != nil {
		allowed := false
		if student.ManagedByID != nil {
			for _, id := range managedIDs {
				if id == *student.ManagedByID {
					allowed = true
					break
				}
			}
		}
		if !allowed {
			response.Forbidden(c, "该学生不在您的管理范围内")
			return
		}
	}

	response.Success(c, student)
}

// GetAll 获取学生列表，自管范围的调用者只看到管理子树内负责的学生
func (h *StudentHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	filter := services.StudentFilter{
		Keyword: c.Query("keyword"),
		Status:  c.Query("status"),
	}
	if d := c.Query("department_id"); d != "" {
		id, err := strconv.ParseUint(d, 10, 32)
		if err != nil {
			response.BadRequest(c, "部门ID格式错误")
			return
		}
		deptID := uint(id)
		filter.DepartmentID = &deptID
	}

	managedIDs, err := h.scopeToManaged(c)
	if err != nil {
		response.ServerError(c, "权限检查失败")
		return
	}
	filter.ManagedByIDs = managedIDs

	order := pagination.ParseSortParam(c, "code ASC", "code", "full_name", "created_at")

	students, total, err := h.service.GetWithFiltersAndPage(filter, pageParams.Page, pageParams.PageSize, order)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, students, pageInfo)
}

// Update 更新学生
func (h *StudentHandler) Update(c *gin.Context) {
	var req UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	student, err := h.service.Update(c.Param("id"), req.FullName, req.Email, req.DepartmentID, req.ManagedByID, req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "学生不存在")
			return
		}
		if apperrors.IsNotFound(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, student)
}

// Delete 删除学生
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "学生不存在")
			return
		}
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}
