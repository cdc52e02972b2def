package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"attend-ease/backend/internal/model"
)

// CheckinRepository 扫码签到数据访问接口
type CheckinRepository interface {
	// CreateSession 插入新会话。同 (class_id, attendance_date) 已存在活跃会话时
	// 命中部分唯一索引，返回 gorm.ErrDuplicatedKey —— 并发 Issue 由此判定，
	// 应用层预检只用于友好提示，不承担正确性。
	CreateSession(ctx context.Context, session *model.CheckinSession) error
	GetSessionByID(ctx context.Context, id string) (*model.CheckinSession, error)
	GetSessionByToken(ctx context.Context, token string) (*model.CheckinSession, error)
	// GetActiveSession 查询 (班级, 日期) 当前活跃且未过期的会话
	GetActiveSession(ctx context.Context, classID string, date time.Time, now time.Time) (*model.CheckinSession, error)
	// DeactivateSession 关闭会话；对已关闭会话重复调用是无操作成功
	DeactivateSession(ctx context.Context, sessionID string) error
	// DeactivateExpired 将 (班级, 日期) 名下已过期但仍标记活跃的会话置为非活跃，
	// 返回影响行数。过期采用惰性判定，没有后台清理任务，
	// 该方法即过期状态落库的唯一途径
	DeactivateExpired(ctx context.Context, classID string, date time.Time, now time.Time) (int64, error)
	// RecordScan 单事务完成台账 upsert + 扫码日志追加：
	// 两者要么都生效要么都不生效，避免"台账成功而日志丢失"的分裂状态
	RecordScan(ctx context.Context, record *model.AttendanceRecord, log *model.ScanLog) error
	ListScanLogs(ctx context.Context, sessionID string) ([]model.ScanLog, error)
}

type checkinRepo struct {
	db *gorm.DB
}

func NewCheckinRepo(db *gorm.DB) CheckinRepository {
	return &checkinRepo{db: db}
}

func (r *checkinRepo) CreateSession(ctx context.Context, session *model.CheckinSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *checkinRepo) GetSessionByID(ctx context.Context, id string) (*model.CheckinSession, error) {
	var session model.CheckinSession
	err := r.db.WithContext(ctx).
		Preload("Class").Preload("Class.Course").
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *checkinRepo) GetSessionByToken(ctx context.Context, token string) (*model.CheckinSession, error) {
	var session model.CheckinSession
	err := r.db.WithContext(ctx).
		Preload("Class").Preload("Class.Course").
		Where("session_token = ?", token).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *checkinRepo) GetActiveSession(ctx context.Context, classID string, date time.Time, now time.Time) (*model.CheckinSession, error) {
	var session model.CheckinSession
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND attendance_date = ? AND is_active AND expires_at > ?", classID, date, now).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *checkinRepo) DeactivateSession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&model.CheckinSession{}).
		Where("session_id = ?", sessionID).
		Update("is_active", false).Error
}

func (r *checkinRepo) DeactivateExpired(ctx context.Context, classID string, date time.Time, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.CheckinSession{}).
		Where("class_id = ? AND attendance_date = ? AND is_active AND expires_at <= ?", classID, date, now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

func (r *checkinRepo) RecordScan(ctx context.Context, record *model.AttendanceRecord, log *model.ScanLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(attendanceConflictClause).Create(record).Error; err != nil {
			return err
		}
		return tx.Create(log).Error
	})
}

func (r *checkinRepo) ListScanLogs(ctx context.Context, sessionID string) ([]model.ScanLog, error) {
	var logs []model.ScanLog
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("session_id = ?", sessionID).
		Order("scan_time DESC").
		Find(&logs).Error
	return logs, err
}
