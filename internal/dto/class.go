package dto

// ── 班级模块 DTO ──

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	CourseID    string `json:"course_id"    binding:"required,uuid"`
	ClassCode   string `json:"class_code"   binding:"required,max=50"`
	Section     string `json:"section"      binding:"omitempty,max=20"`
	DayOfWeek   string `json:"day_of_week"  binding:"required"`
	StartTime   string `json:"start_time"   binding:"required"` // "09:00"
	EndTime     string `json:"end_time"     binding:"required"` // "10:00"
	Location    string `json:"location"     binding:"required,max=200"`
	MaxStudents int    `json:"max_students" binding:"omitempty,min=1,max=1000"`
	Semester    string `json:"semester"     binding:"required,max=50"`
}

// UpdateClassRequest 更新班级请求（指针字段表示"未提供"）
type UpdateClassRequest struct {
	Section     *string `json:"section"      binding:"omitempty,max=20"`
	DayOfWeek   *string `json:"day_of_week"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Location    *string `json:"location"     binding:"omitempty,max=200"`
	MaxStudents *int    `json:"max_students" binding:"omitempty,min=1,max=1000"`
	Semester    *string `json:"semester"     binding:"omitempty,max=50"`
}

// ClassListRequest 班级列表过滤
type ClassListRequest struct {
	LecturerID string `form:"lecturer_id" binding:"omitempty,uuid"`
	CourseID   string `form:"course_id"   binding:"omitempty,uuid"`
	Semester   string `form:"semester"`
	DayOfWeek  string `form:"day_of_week"`
	Search     string `form:"search"`
}

// ClassResponse 班级信息响应
type ClassResponse struct {
	ID            string `json:"id"`
	CourseID      string `json:"course_id"`
	CourseCode    string `json:"course_code,omitempty"`
	CourseName    string `json:"course_name,omitempty"`
	LecturerID    string `json:"lecturer_id"`
	LecturerName  string `json:"lecturer_name,omitempty"`
	ClassCode     string `json:"class_code"`
	Section       string `json:"section,omitempty"`
	DayOfWeek     string `json:"day_of_week"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Location      string `json:"location"`
	MaxStudents   int    `json:"max_students"`
	EnrolledCount int    `json:"enrolled_count"`
	Semester      string `json:"semester"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// ConflictCheckRequest 课表冲突检测请求
type ConflictCheckRequest struct {
	DayOfWeek      string `json:"day_of_week" binding:"required"`
	StartTime      string `json:"start_time"  binding:"required"`
	EndTime        string `json:"end_time"    binding:"required"`
	ExcludeClassID string `json:"exclude_class_id" binding:"omitempty,uuid"`
}

// ConflictResponse 冲突区间
type ConflictResponse struct {
	ClassID    string `json:"class_id"`
	ClassCode  string `json:"class_code"`
	CourseName string `json:"course_name,omitempty"`
	DayOfWeek  string `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// EnrollRequest 选课请求
type EnrollRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
}

// EnrolledStudentResponse 班级学生列表项（含考勤占比）
type EnrolledStudentResponse struct {
	StudentID      string  `json:"student_id"`
	MatricNo       string  `json:"matric_no"`
	FullName       string  `json:"full_name"`
	Department     string  `json:"department,omitempty"`
	EnrolledAt     string  `json:"enrolled_at"`
	PresentCount   int     `json:"present_count"`
	TotalSessions  int     `json:"total_sessions"`
	AttendanceRate float64 `json:"attendance_rate"`
}
