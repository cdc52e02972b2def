package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	CourseCode  string `json:"course_code" binding:"required,max=20"`
	CourseName  string `json:"course_name" binding:"required,max=200"`
	Description string `json:"description" binding:"omitempty"`
	Credits     int    `json:"credits"     binding:"omitempty,min=0,max=30"`
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	CourseName  *string `json:"course_name" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	Credits     *int    `json:"credits"     binding:"omitempty,min=0,max=30"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID          string `json:"id"`
	CourseCode  string `json:"course_code"`
	CourseName  string `json:"course_name"`
	Description string `json:"description,omitempty"`
	Credits     int    `json:"credits"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ── 学生 / 讲师档案 DTO ──

// StudentResponse 学生档案响应
type StudentResponse struct {
	ID         string `json:"id"`
	MatricNo   string `json:"matric_no"`
	FullName   string `json:"full_name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
	Level      string `json:"level,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// StudentListRequest 学生列表过滤
type StudentListRequest struct {
	Department string `form:"department"`
	Level      string `form:"level"`
	Search     string `form:"search"`
}

// UpdateStudentRequest 更新学生档案请求
type UpdateStudentRequest struct {
	FirstName  *string `json:"first_name" binding:"omitempty,max=100"`
	LastName   *string `json:"last_name"  binding:"omitempty,max=100"`
	Department *string `json:"department" binding:"omitempty,max=100"`
	Level      *string `json:"level"      binding:"omitempty,max=20"`
	Phone      *string `json:"phone"      binding:"omitempty,max=30"`
}

// LecturerResponse 讲师档案响应
type LecturerResponse struct {
	ID         string `json:"id"`
	StaffNo    string `json:"staff_no"`
	FullName   string `json:"full_name"`
	Title      string `json:"title,omitempty"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
}

// UpdateLecturerRequest 更新讲师档案请求
type UpdateLecturerRequest struct {
	FirstName  *string `json:"first_name" binding:"omitempty,max=100"`
	LastName   *string `json:"last_name"  binding:"omitempty,max=100"`
	Title      *string `json:"title"      binding:"omitempty,max=50"`
	Department *string `json:"department" binding:"omitempty,max=100"`
}
