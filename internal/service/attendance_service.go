package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attend-ease/backend/internal/dto"
	"attend-ease/backend/internal/model"
	"attend-ease/backend/internal/repository"
)

// ── 考勤模块业务错误 ──

var (
	ErrInvalidStatus      = errors.New("非法的考勤状态")
	ErrInvalidDate        = errors.New("日期格式错误, 应为 YYYY-MM-DD")
	ErrAttendanceNotFound = errors.New("考勤记录不存在")
)

// AttendanceService 考勤台账业务接口
type AttendanceService interface {
	// Mark 单条考勤录入。同 (班级, 学生, 日期) 重复录入按 upsert 覆盖，
	// 不产生重复行
	Mark(ctx context.Context, markedBy string, req *dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error)
	// MarkBulk 批量录入，整批一个事务，任一条失败全部回滚
	MarkBulk(ctx context.Context, markedBy string, req *dto.BulkAttendanceRequest) (int, error)
	GetRecord(ctx context.Context, classID, studentID, date string) (*dto.AttendanceResponse, error)
	GetClassAttendance(ctx context.Context, classID, date string) ([]dto.AttendanceResponse, error)
	GetStudentAttendance(ctx context.Context, studentID string, req *dto.StudentAttendanceListRequest) ([]dto.AttendanceResponse, error)
	GetClassStats(ctx context.Context, classID, startDate, endDate string) (*dto.ClassStatsResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

// ────────────────────── Mark ──────────────────────

func (s *attendanceService) Mark(ctx context.Context, markedBy string, req *dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error) {
	record, err := s.buildRecord(ctx, markedBy, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Attendance.Upsert(ctx, record); err != nil {
		s.logger.Error("考勤录入失败",
			zap.String("class_id", req.ClassID),
			zap.String("student_id", req.StudentID),
			zap.Error(err))
		return nil, err
	}

	return s.GetRecord(ctx, req.ClassID, req.StudentID, req.AttendanceDate)
}

// ────────────────────── MarkBulk ──────────────────────

func (s *attendanceService) MarkBulk(ctx context.Context, markedBy string, req *dto.BulkAttendanceRequest) (int, error) {
	// 先全量校验再落库：校验失败时不产生任何写入
	records := make([]model.AttendanceRecord, 0, len(req.Records))
	for i := range req.Records {
		record, err := s.buildRecord(ctx, markedBy, &req.Records[i])
		if err != nil {
			return 0, err
		}
		records = append(records, *record)
	}

	if err := s.repo.Attendance.BulkUpsert(ctx, records); err != nil {
		s.logger.Error("批量考勤录入失败", zap.Int("count", len(records)), zap.Error(err))
		return 0, err
	}

	s.logger.Info("批量考勤已录入",
		zap.Int("count", len(records)),
		zap.String("marked_by", markedBy))
	return len(records), nil
}

// ────────────────────── 查询 ──────────────────────

func (s *attendanceService) GetRecord(ctx context.Context, classID, studentID, date string) (*dto.AttendanceResponse, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	record, err := s.repo.Attendance.GetByKey(ctx, classID, studentID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, err
	}
	return toAttendanceResponse(record), nil
}

func (s *attendanceService) GetClassAttendance(ctx context.Context, classID, date string) ([]dto.AttendanceResponse, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	records, err := s.repo.Attendance.ListByClassAndDate(ctx, classID, day)
	if err != nil {
		s.logger.Error("查询班级考勤失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		resp = append(resp, *toAttendanceResponse(&records[i]))
	}
	return resp, nil
}

func (s *attendanceService) GetStudentAttendance(ctx context.Context, studentID string, req *dto.StudentAttendanceListRequest) ([]dto.AttendanceResponse, error) {
	f := repository.AttendanceFilter{ClassID: req.ClassID}
	if req.StartDate != "" && req.EndDate != "" {
		start, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		end, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		f.StartDate, f.EndDate = &start, &end
	}

	records, err := s.repo.Attendance.ListByStudent(ctx, studentID, f)
	if err != nil {
		s.logger.Error("查询学生考勤失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	resp := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		resp = append(resp, *toAttendanceResponse(&records[i]))
	}
	return resp, nil
}

func (s *attendanceService) GetClassStats(ctx context.Context, classID, startDate, endDate string) (*dto.ClassStatsResponse, error) {
	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	// 未指定区间时覆盖全部历史
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Now().AddDate(0, 0, 1)
	var err error
	if startDate != "" {
		if start, err = time.Parse(dateLayout, startDate); err != nil {
			return nil, ErrInvalidDate
		}
	}
	if endDate != "" {
		if end, err = time.Parse(dateLayout, endDate); err != nil {
			return nil, ErrInvalidDate
		}
	}

	stats, err := s.repo.Attendance.GetClassStats(ctx, classID, start, end)
	if err != nil {
		s.logger.Error("统计班级考勤失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	return &dto.ClassStatsResponse{
		TotalStudents:     stats.TotalStudents,
		TotalSessions:     stats.TotalSessions,
		TotalPresent:      stats.TotalPresent,
		TotalAbsent:       stats.TotalAbsent,
		TotalLate:         stats.TotalLate,
		TotalExcused:      stats.TotalExcused,
		AvgAttendanceRate: stats.AvgAttendanceRate,
	}, nil
}

// ── 内部辅助方法 ──

// buildRecord 校验单条录入请求并组装台账记录
func (s *attendanceService) buildRecord(ctx context.Context, markedBy string, req *dto.MarkAttendanceRequest) (*model.AttendanceRecord, error) {
	if !model.ValidAttendanceStatus(req.Status) {
		return nil, ErrInvalidStatus
	}
	day, err := time.Parse(dateLayout, req.AttendanceDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	if _, err := s.repo.Class.GetByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Enrollment.GetActive(ctx, req.ClassID, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	return &model.AttendanceRecord{
		ClassID:        req.ClassID,
		StudentID:      req.StudentID,
		AttendanceDate: day,
		Status:         req.Status,
		MarkedBy:       markedBy,
		Notes:          req.Notes,
	}, nil
}
