package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"attend-ease/backend/internal/dto"
	"attend-ease/backend/internal/model"
	"attend-ease/backend/internal/service"
	"attend-ease/backend/pkg/response"
)

// StudentHandler 学生档案 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// Get 查询学生档案
// GET /api/v1/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	result, err := h.studentSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, result)
}

// List 查询学生列表（讲师/admin）
// GET /api/v1/students
func (h *StudentHandler) List(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 更新学生档案（本人或 admin）
// PUT /api/v1/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}
	if role == model.RoleStudent {
		profileID, ok := MustGetProfileID(c)
		if !ok {
			return
		}
		if c.Param("id") != profileID {
			response.Forbidden(c, 10003, "无权修改他人档案")
			return
		}
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.studentSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 17001, "学生不存在")
	default:
		response.InternalError(c)
	}
}
