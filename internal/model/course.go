package model

// Course 课程表 — 对应 courses
type Course struct {
	CourseID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	CourseCode  string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"course_code"`
	CourseName  string `gorm:"type:varchar(200);not null"                     json:"course_name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	Credits     int    `gorm:"type:smallint;not null;default:0"               json:"credits"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

func (Course) TableName() string { return "courses" }
