package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attend-ease/backend/internal/dto"
	"attend-ease/backend/internal/service"
	pkgerrors "attend-ease/backend/pkg/errors"
	"attend-ease/backend/pkg/response"
)

// CheckinHandler 扫码签到模块 HTTP 处理器
type CheckinHandler struct {
	checkinSvc service.CheckinService
}

// NewCheckinHandler 创建 CheckinHandler
func NewCheckinHandler(checkinSvc service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinSvc: checkinSvc}
}

// Issue 开启签到会话（讲师）
// POST /api/v1/checkin/sessions
func (h *CheckinHandler) Issue(c *gin.Context) {
	lecturerID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	var req dto.IssueSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.checkinSvc.Issue(c.Request.Context(), lecturerID, &req)
	if err != nil {
		h.handleCheckinError(c, err)
		return
	}
	response.Created(c, result)
}

// Validate 只读校验签到令牌
// POST /api/v1/checkin/validate
func (h *CheckinHandler) Validate(c *gin.Context) {
	var req dto.ValidateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.checkinSvc.Validate(c.Request.Context(), req.SessionToken)
	if err != nil {
		h.handleCheckinError(c, err)
		return
	}
	response.OK(c, result)
}

// Scan 学生扫码签到
// POST /api/v1/checkin/scan
func (h *CheckinHandler) Scan(c *gin.Context) {
	studentID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.checkinSvc.Scan(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleCheckinError(c, err)
		return
	}
	response.OK(c, result)
}

// Deactivate 提前关闭签到会话
// DELETE /api/v1/checkin/sessions/:id
func (h *CheckinHandler) Deactivate(c *gin.Context) {
	profileID, ok := MustGetProfileID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.checkinSvc.Deactivate(c.Request.Context(), c.Param("id"), profileID, role); err != nil {
		h.handleCheckinError(c, err)
		return
	}
	response.OK(c, nil)
}

// GetActiveSession 查询班级某日活跃会话
// GET /api/v1/checkin/sessions/active?class_id=...&date=...
func (h *CheckinHandler) GetActiveSession(c *gin.Context) {
	classID := c.Query("class_id")
	date := c.Query("date")
	if classID == "" || date == "" {
		response.BadRequest(c, 10001, "缺少 class_id 或 date 参数")
		return
	}

	result, err := h.checkinSvc.GetActiveSession(c.Request.Context(), classID, date)
	if err != nil {
		h.handleCheckinError(c, err)
		return
	}
	response.OK(c, result)
}

// GetScanLogs 查询会话扫码日志（会话创建者或 admin）
// GET /api/v1/checkin/sessions/:id/logs
func (h *CheckinHandler) GetScanLogs(c *gin.Context) {
	profileID, ok := MustGetProfileID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.checkinSvc.GetScanLogs(c.Request.Context(), c.Param("id"), profileID, role)
	if err != nil {
		h.handleCheckinError(c, err)
		return
	}
	response.OK(c, result)
}

// handleCheckinError 扫码签到模块业务错误 → HTTP 响应
func (h *CheckinHandler) handleCheckinError(c *gin.Context, err error) {
	var activeErr *pkgerrors.ActiveSessionError
	if errors.As(err, &activeErr) {
		response.ErrorWithData(c, http.StatusConflict, 15001, "该班级当日已有活跃签到会话", gin.H{
			"session_id": activeErr.SessionID,
			"expires_at": activeErr.ExpiresAt.Format(time.RFC3339),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrSessionInvalid):
		response.BadRequest(c, 15002, "签到码无效或已过期")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 15003, "签到会话不存在")
	case errors.Is(err, service.ErrNotSessionOwner):
		response.Forbidden(c, 15004, "无权操作他人签到会话")
	case errors.Is(err, service.ErrValidityTooLong):
		response.BadRequest(c, 15005, "签到窗口时长超出上限")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14002, "日期格式错误")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 13002, "班级不存在")
	case errors.Is(err, service.ErrNotClassOwner):
		response.Forbidden(c, 13004, "无权操作他人班级")
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, 13008, "未选该班级, 不能签到")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 17001, "学生不存在")
	default:
		response.InternalError(c)
	}
}
