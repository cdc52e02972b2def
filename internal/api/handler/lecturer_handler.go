package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"attend-ease/backend/internal/dto"
	"attend-ease/backend/internal/model"
	"attend-ease/backend/internal/service"
	"attend-ease/backend/pkg/response"
)

// LecturerHandler 讲师档案 HTTP 处理器
type LecturerHandler struct {
	lecturerSvc service.LecturerService
}

// NewLecturerHandler 创建 LecturerHandler
func NewLecturerHandler(lecturerSvc service.LecturerService) *LecturerHandler {
	return &LecturerHandler{lecturerSvc: lecturerSvc}
}

// Get 查询讲师档案
// GET /api/v1/lecturers/:id
func (h *LecturerHandler) Get(c *gin.Context) {
	result, err := h.lecturerSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleLecturerError(c, err)
		return
	}
	response.OK(c, result)
}

// List 查询讲师列表
// GET /api/v1/lecturers
func (h *LecturerHandler) List(c *gin.Context) {
	result, err := h.lecturerSvc.List(c.Request.Context(), c.Query("department"), c.Query("search"))
	if err != nil {
		h.handleLecturerError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 更新讲师档案（本人或 admin）
// PUT /api/v1/lecturers/:id
func (h *LecturerHandler) Update(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}
	if role == model.RoleLecturer {
		profileID, ok := MustGetProfileID(c)
		if !ok {
			return
		}
		if c.Param("id") != profileID {
			response.Forbidden(c, 10003, "无权修改他人档案")
			return
		}
	}

	var req dto.UpdateLecturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.lecturerSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleLecturerError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *LecturerHandler) handleLecturerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLecturerNotFound):
		response.NotFound(c, 17002, "讲师不存在")
	default:
		response.InternalError(c)
	}
}
