package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求
// 按 role 创建账号及对应角色档案
type RegisterRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role"     binding:"required,oneof=student lecturer"`

	// 档案字段（学生 / 讲师共用，按角色取用）
	FirstName  string `json:"first_name" binding:"required,max=100"`
	LastName   string `json:"last_name"  binding:"required,max=100"`
	MatricNo   string `json:"matric_no"  binding:"omitempty,max=50"` // 学生必填，Service 层校验
	StaffNo    string `json:"staff_no"   binding:"omitempty,max=50"` // 讲师必填，Service 层校验
	Department string `json:"department" binding:"omitempty,max=100"`
	Level      string `json:"level"      binding:"omitempty,max=20"`
	Title      string `json:"title"      binding:"omitempty,max=50"`
	Phone      string `json:"phone"      binding:"omitempty,max=30"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 登录/注册成功响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}

// UserResponse 基本账号信息
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ProfileID string `json:"profile_id,omitempty"` // student_id 或 lecturer_id
	FullName  string `json:"full_name,omitempty"`
}
