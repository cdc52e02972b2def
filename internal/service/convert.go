package service

import (
	"time"

	"attend-ease/backend/internal/dto"
	"attend-ease/backend/internal/model"
)

// ── 格式常量与 DTO 转换 ──

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

func formatDate(t time.Time) string { return t.Format(dateLayout) }

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{
		ID:          c.CourseID,
		CourseCode:  c.CourseCode,
		CourseName:  c.CourseName,
		Description: c.Description,
		Credits:     c.Credits,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}

func toClassResponse(c *model.Class, enrolledCount int) *dto.ClassResponse {
	resp := &dto.ClassResponse{
		ID:            c.ClassID,
		CourseID:      c.CourseID,
		LecturerID:    c.LecturerID,
		ClassCode:     c.ClassCode,
		Section:       c.Section,
		DayOfWeek:     c.DayOfWeek,
		StartTime:     c.StartTime,
		EndTime:       c.EndTime,
		Location:      c.Location,
		MaxStudents:   c.MaxStudents,
		EnrolledCount: enrolledCount,
		Semester:      c.Semester,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339),
	}
	if c.Course != nil {
		resp.CourseCode = c.Course.CourseCode
		resp.CourseName = c.Course.CourseName
	}
	if c.Lecturer != nil {
		resp.LecturerName = c.Lecturer.FullName()
	}
	return resp
}

func toAttendanceResponse(r *model.AttendanceRecord) *dto.AttendanceResponse {
	resp := &dto.AttendanceResponse{
		ID:             r.AttendanceID,
		ClassID:        r.ClassID,
		StudentID:      r.StudentID,
		AttendanceDate: formatDate(r.AttendanceDate),
		Status:         r.Status,
		MarkedBy:       r.MarkedBy,
		Notes:          r.Notes,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      r.UpdatedAt.Format(time.RFC3339),
	}
	if r.Student != nil {
		resp.MatricNo = r.Student.MatricNo
		resp.StudentName = r.Student.FullName()
	}
	if r.Class != nil {
		resp.ClassCode = r.Class.ClassCode
		if r.Class.Course != nil {
			resp.CourseName = r.Class.Course.CourseName
		}
	}
	if r.Marker != nil {
		resp.MarkedByName = r.Marker.FullName()
	}
	return resp
}

// toSessionResponse 组装会话响应。
// Token 只在 Issue 时透出一次，其余读取路径一律不回传
func toSessionResponse(s *model.CheckinSession, includeToken bool) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		SessionID:      s.SessionID,
		ClassID:        s.ClassID,
		AttendanceDate: formatDate(s.AttendanceDate),
		ExpiresAt:      s.ExpiresAt.Format(time.RFC3339),
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
	}
	if includeToken {
		resp.SessionToken = s.SessionToken
	}
	if s.Class != nil {
		resp.ClassCode = s.Class.ClassCode
		if s.Class.Course != nil {
			resp.CourseName = s.Class.Course.CourseName
		}
	}
	return resp
}

func toStudentResponse(s *model.Student) *dto.StudentResponse {
	resp := &dto.StudentResponse{
		ID:         s.StudentID,
		MatricNo:   s.MatricNo,
		FullName:   s.FullName(),
		Department: s.Department,
		Level:      s.Level,
		Phone:      s.Phone,
	}
	if s.User != nil {
		resp.Email = s.User.Email
	}
	return resp
}

func toLecturerResponse(l *model.Lecturer) *dto.LecturerResponse {
	resp := &dto.LecturerResponse{
		ID:         l.LecturerID,
		StaffNo:    l.StaffNo,
		FullName:   l.FullName(),
		Title:      l.Title,
		Department: l.Department,
	}
	if l.User != nil {
		resp.Email = l.User.Email
	}
	return resp
}
