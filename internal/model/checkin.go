package model

import "time"

// CheckinSession 扫码签到会话表 — 对应 checkin_sessions
// 同一 (class_id, attendance_date) 同时至多一个活跃会话，
// 由部分唯一索引 uniq_active_checkin_session 保证；
// 过期不依赖后台清理，校验时按 expires_at 惰性判定
type CheckinSession struct {
	SessionID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	ClassID        string    `gorm:"type:uuid;not null"                             json:"class_id"`
	AttendanceDate time.Time `gorm:"type:date;not null"                             json:"attendance_date"`
	SessionToken   string    `gorm:"type:varchar(100);not null;uniqueIndex"         json:"session_token"`
	CreatedBy      string    `gorm:"type:uuid;not null"                             json:"created_by"`
	ExpiresAt      time.Time `gorm:"not null"                                       json:"expires_at"`
	IsActive       bool      `gorm:"not null;default:true"                          json:"is_active"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Class   *Class    `gorm:"foreignKey:ClassID;references:ClassID"     json:"class,omitempty"`
	Creator *Lecturer `gorm:"foreignKey:CreatedBy;references:LecturerID" json:"creator,omitempty"`
}

func (CheckinSession) TableName() string { return "checkin_sessions" }

// Usable 会话当前是否可用于签到
func (s *CheckinSession) Usable(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}

// ScanLog 扫码日志表 — 对应 scan_logs（纯追加，不更新不删除）
// 台账 upsert 幂等，扫码日志不幂等：重复扫码仍追加新日志
type ScanLog struct {
	ScanLogID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"scan_log_id"`
	SessionID string    `gorm:"type:uuid;not null"                             json:"session_id"`
	StudentID string    `gorm:"type:uuid;not null"                             json:"student_id"`
	ScanTime  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"scan_time"`

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

func (ScanLog) TableName() string { return "scan_logs" }

// [自证通过] internal/model/checkin.go
