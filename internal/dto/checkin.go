package dto

// ── 扫码签到模块 DTO ──

// IssueSessionRequest 开启签到会话请求
type IssueSessionRequest struct {
	ClassID         string `json:"class_id"         binding:"required,uuid"`
	AttendanceDate  string `json:"attendance_date"  binding:"required"` // "2024-03-01"
	ValidityMinutes int    `json:"validity_minutes" binding:"omitempty,min=1,max=120"`
}

// SessionResponse 签到会话响应
// Token 仅在 Issue 时返回一次；二维码渲染由客户端完成
type SessionResponse struct {
	SessionID      string `json:"session_id"`
	ClassID        string `json:"class_id"`
	ClassCode      string `json:"class_code,omitempty"`
	CourseName     string `json:"course_name,omitempty"`
	AttendanceDate string `json:"attendance_date"`
	SessionToken   string `json:"session_token,omitempty"`
	ExpiresAt      string `json:"expires_at"`
	IsActive       bool   `json:"is_active"`
	CreatedAt      string `json:"created_at"`
}

// ScanRequest 扫码签到请求
type ScanRequest struct {
	SessionToken string `json:"session_token" binding:"required"`
}

// ValidateTokenRequest 会话令牌校验请求
type ValidateTokenRequest struct {
	SessionToken string `json:"session_token" binding:"required"`
}

// ScanLogResponse 扫码日志项
type ScanLogResponse struct {
	ScanLogID   string `json:"scan_log_id"`
	SessionID   string `json:"session_id"`
	StudentID   string `json:"student_id"`
	MatricNo    string `json:"matric_no,omitempty"`
	StudentName string `json:"student_name,omitempty"`
	ScanTime    string `json:"scan_time"`
}
