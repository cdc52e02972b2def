package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"attend-ease/backend/internal/model"
	"attend-ease/backend/internal/service"
	"attend-ease/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportClassAttendance 导出班级考勤表为 Excel
// GET /api/v1/export/attendance/:class_id
func (h *ExportHandler) ExportClassAttendance(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportClassAttendance(
		c.Request.Context(),
		c.Param("class_id"),
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportTimetable 导出本人课表为 ICS
// GET /api/v1/export/timetable
func (h *ExportHandler) ExportTimetable(c *gin.Context) {
	profileID, ok := MustGetProfileID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var (
		content  string
		filename string
		err      error
	)
	switch role {
	case model.RoleStudent:
		content, filename, err = h.exportSvc.ExportStudentTimetable(c.Request.Context(), profileID)
	case model.RoleLecturer:
		content, filename, err = h.exportSvc.ExportLecturerTimetable(c.Request.Context(), profileID)
	default:
		response.BadRequest(c, 16001, "该角色无个人课表")
		return
	}
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, icsContentType, []byte(content))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoRecords):
		response.NotFound(c, 16101, "所选区间内无考勤记录")
	case errors.Is(err, service.ErrExportNoClasses):
		response.NotFound(c, 16102, "暂无可导出的课表")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 13002, "班级不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 17001, "学生不存在")
	case errors.Is(err, service.ErrLecturerNotFound):
		response.NotFound(c, 17002, "讲师不存在")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14002, "日期格式错误")
	default:
		response.InternalError(c)
	}
}
