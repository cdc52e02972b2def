package dto

// ── 考勤模块 DTO ──

// MarkAttendanceRequest 单条考勤录入请求
type MarkAttendanceRequest struct {
	ClassID        string `json:"class_id"        binding:"required,uuid"`
	StudentID      string `json:"student_id"      binding:"required,uuid"`
	AttendanceDate string `json:"attendance_date" binding:"required"` // "2024-03-01"
	Status         string `json:"status"          binding:"required"`
	Notes          string `json:"notes"           binding:"omitempty,max=500"`
}

// BulkAttendanceRequest 批量考勤录入请求
// 整批为一个事务：任一条失败则全部回滚
type BulkAttendanceRequest struct {
	Records []MarkAttendanceRequest `json:"attendance_records" binding:"required,min=1,dive"`
}

// StudentAttendanceListRequest 学生考勤查询过滤
type StudentAttendanceListRequest struct {
	ClassID   string `form:"class_id"   binding:"omitempty,uuid"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// AttendanceResponse 考勤记录响应
type AttendanceResponse struct {
	ID             string `json:"id"`
	ClassID        string `json:"class_id"`
	ClassCode      string `json:"class_code,omitempty"`
	CourseName     string `json:"course_name,omitempty"`
	StudentID      string `json:"student_id"`
	MatricNo       string `json:"matric_no,omitempty"`
	StudentName    string `json:"student_name,omitempty"`
	AttendanceDate string `json:"attendance_date"`
	Status         string `json:"status"`
	MarkedBy       string `json:"marked_by"`
	MarkedByName   string `json:"marked_by_name,omitempty"`
	Notes          string `json:"notes,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// ClassStatsResponse 班级考勤统计
type ClassStatsResponse struct {
	TotalStudents     int     `json:"total_students"`
	TotalSessions     int     `json:"total_sessions"`
	TotalPresent      int     `json:"total_present"`
	TotalAbsent       int     `json:"total_absent"`
	TotalLate         int     `json:"total_late"`
	TotalExcused      int     `json:"total_excused"`
	AvgAttendanceRate float64 `json:"avg_attendance_rate"`
}
