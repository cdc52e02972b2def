package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"attend-ease/backend/internal/dto"
	"attend-ease/backend/internal/model"
	"attend-ease/backend/internal/service"
	"attend-ease/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Mark 单条考勤录入（讲师）
// POST /api/v1/attendance
func (h *AttendanceHandler) Mark(c *gin.Context) {
	lecturerID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.Mark(c.Request.Context(), lecturerID, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.Created(c, result)
}

// MarkBulk 批量考勤录入（讲师）
// POST /api/v1/attendance/bulk
func (h *AttendanceHandler) MarkBulk(c *gin.Context) {
	lecturerID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	var req dto.BulkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	count, err := h.attendanceSvc.MarkBulk(c.Request.Context(), lecturerID, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.Created(c, gin.H{"marked_count": count})
}

// GetClassAttendance 查询班级某日考勤
// GET /api/v1/attendance/class/:class_id?date=2025-09-01
func (h *AttendanceHandler) GetClassAttendance(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.BadRequest(c, 10001, "缺少 date 参数")
		return
	}

	result, err := h.attendanceSvc.GetClassAttendance(c.Request.Context(), c.Param("class_id"), date)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetStudentAttendance 查询学生考勤历史
// GET /api/v1/attendance/student/:student_id
func (h *AttendanceHandler) GetStudentAttendance(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	studentID := c.Param("student_id")
	// 学生只能查自己的考勤
	if role == model.RoleStudent {
		profileID, ok := MustGetProfileID(c)
		if !ok {
			return
		}
		if studentID != profileID {
			response.Forbidden(c, 10003, "无权查看他人考勤")
			return
		}
	}

	var req dto.StudentAttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.GetStudentAttendance(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetClassStats 查询班级考勤统计
// GET /api/v1/attendance/class/:class_id/stats
func (h *AttendanceHandler) GetClassStats(c *gin.Context) {
	result, err := h.attendanceSvc.GetClassStats(
		c.Request.Context(),
		c.Param("class_id"),
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// handleAttendanceError 考勤模块业务错误 → HTTP 响应
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 14001, "非法的考勤状态")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14002, "日期格式错误")
	case errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 14003, "考勤记录不存在")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 13002, "班级不存在")
	case errors.Is(err, service.ErrNotEnrolled):
		response.BadRequest(c, 13008, "学生未选该班级")
	default:
		response.InternalError(c)
	}
}
