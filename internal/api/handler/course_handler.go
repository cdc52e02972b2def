package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"attend-ease/backend/internal/dto"
	"attend-ease/backend/internal/service"
	"attend-ease/backend/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// Create 创建课程（讲师/admin）
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.courseSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.Created(c, result)
}

// Get 查询课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	result, err := h.courseSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, result)
}

// List 查询课程列表
// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	result, err := h.courseSvc.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 更新课程
// PUT /api/v1/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.courseSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, result)
}

// Deactivate 下线课程
// DELETE /api/v1/courses/:id
func (h *CourseHandler) Deactivate(c *gin.Context) {
	if err := h.courseSvc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, nil)
}

// handleCourseError 课程模块业务错误 → HTTP 响应
func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12002, "课程不存在")
	case errors.Is(err, service.ErrCourseCodeTaken):
		response.Conflict(c, 12001, "课程代码已存在")
	default:
		response.InternalError(c)
	}
}
