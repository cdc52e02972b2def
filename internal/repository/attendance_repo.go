package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attend-ease/backend/internal/model"
)

// AttendanceRepository 考勤台账数据访问接口
type AttendanceRepository interface {
	// Upsert 按 (class_id, student_id, attendance_date) 原子插入或覆盖。
	// 同键重复写入覆盖 status / marked_by / notes 并刷新 updated_at，
	// 不产生重复行（后写覆盖先写）。
	Upsert(ctx context.Context, record *model.AttendanceRecord) error
	// BulkUpsert 单事务批量 upsert：任一条失败则整批回滚。
	BulkUpsert(ctx context.Context, records []model.AttendanceRecord) error
	GetByKey(ctx context.Context, classID, studentID string, date time.Time) (*model.AttendanceRecord, error)
	ListByClassAndDate(ctx context.Context, classID string, date time.Time) ([]model.AttendanceRecord, error)
	ListByStudent(ctx context.Context, studentID string, f AttendanceFilter) ([]model.AttendanceRecord, error)
	GetClassStats(ctx context.Context, classID string, start, end time.Time) (*ClassStats, error)
}

// AttendanceFilter 学生考勤查询过滤条件
type AttendanceFilter struct {
	ClassID   string
	StartDate *time.Time
	EndDate   *time.Time
}

// ClassStats 班级考勤聚合结果
type ClassStats struct {
	TotalStudents     int     `gorm:"column:total_students"`
	TotalSessions     int     `gorm:"column:total_sessions"`
	TotalPresent      int     `gorm:"column:total_present"`
	TotalAbsent       int     `gorm:"column:total_absent"`
	TotalLate         int     `gorm:"column:total_late"`
	TotalExcused      int     `gorm:"column:total_excused"`
	AvgAttendanceRate float64 `gorm:"column:avg_attendance_rate"`
}

type attendanceRepo struct {
	db *gorm.DB
}

func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// attendanceConflictClause 台账唯一三元组上的 upsert 子句
// 原先"先查再写"的两步写法存在 check-then-act 竞态，统一改为数据库原子 upsert
var attendanceConflictClause = clause.OnConflict{
	Columns: []clause.Column{
		{Name: "class_id"}, {Name: "student_id"}, {Name: "attendance_date"},
	},
	DoUpdates: clause.AssignmentColumns([]string{"status", "marked_by", "notes", "updated_at"}),
}

func (r *attendanceRepo) Upsert(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).
		Clauses(attendanceConflictClause).
		Create(record).Error
}

func (r *attendanceRepo) BulkUpsert(ctx context.Context, records []model.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 逐条参数化 upsert；外键失败（班级/学生不存在）即回滚整批
		for i := range records {
			if err := tx.Clauses(attendanceConflictClause).Create(&records[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *attendanceRepo) GetByKey(ctx context.Context, classID, studentID string, date time.Time) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Class").Preload("Class.Course").
		Preload("Marker").
		Where("class_id = ? AND student_id = ? AND attendance_date = ?", classID, studentID, date).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepo) ListByClassAndDate(ctx context.Context, classID string, date time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Marker").
		Where("class_id = ? AND attendance_date = ?", classID, date).
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByStudent(ctx context.Context, studentID string, f AttendanceFilter) ([]model.AttendanceRecord, error) {
	q := r.db.WithContext(ctx).
		Preload("Class").Preload("Class.Course").
		Preload("Marker").
		Where("student_id = ?", studentID)

	if f.ClassID != "" {
		q = q.Where("class_id = ?", f.ClassID)
	}
	if f.StartDate != nil && f.EndDate != nil {
		q = q.Where("attendance_date BETWEEN ? AND ?", *f.StartDate, *f.EndDate)
	}

	var records []model.AttendanceRecord
	err := q.Order("attendance_date DESC").Find(&records).Error
	return records, err
}

func (r *attendanceRepo) GetClassStats(ctx context.Context, classID string, start, end time.Time) (*ClassStats, error) {
	var stats ClassStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(DISTINCT student_id)                                        AS total_students,
			COUNT(DISTINCT attendance_date)                                   AS total_sessions,
			COUNT(*) FILTER (WHERE status = 'Present')                        AS total_present,
			COUNT(*) FILTER (WHERE status = 'Absent')                         AS total_absent,
			COUNT(*) FILTER (WHERE status = 'Late')                           AS total_late,
			COUNT(*) FILTER (WHERE status = 'Excused')                        AS total_excused,
			COALESCE(ROUND(AVG(CASE WHEN status = 'Present' THEN 100.0 ELSE 0 END), 2), 0) AS avg_attendance_rate
		FROM attendance_records
		WHERE class_id = ? AND attendance_date BETWEEN ? AND ?`,
		classID, start, end,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
