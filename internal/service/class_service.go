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
	pkgerrors "attend-ease/backend/pkg/errors"
)

// ── 班级模块业务错误 ──

var (
	ErrClassNotFound    = errors.New("班级不存在")
	ErrClassCodeTaken   = errors.New("班级代码已存在")
	ErrNotClassOwner    = errors.New("无权操作他人班级")
	ErrInvalidWeekday   = errors.New("非法的星期名")
	ErrInvalidTimeRange = errors.New("上课时间区间无效")
	ErrClassFull        = errors.New("班级人数已满")
	ErrAlreadyEnrolled  = errors.New("学生已选该班级")
	ErrNotEnrolled      = errors.New("学生未选该班级")
)

// ClassService 教学班业务接口
type ClassService interface {
	Create(ctx context.Context, lecturerID string, req *dto.CreateClassRequest) (*dto.ClassResponse, error)
	Get(ctx context.Context, classID string) (*dto.ClassResponse, error)
	List(ctx context.Context, req *dto.ClassListRequest) ([]dto.ClassResponse, error)
	Update(ctx context.Context, classID, callerProfileID, callerRole string, req *dto.UpdateClassRequest) (*dto.ClassResponse, error)
	Deactivate(ctx context.Context, classID, callerProfileID, callerRole string) error
	// CheckConflicts 只读冲突检测：返回讲师当天与候选区间重叠的全部班级
	CheckConflicts(ctx context.Context, lecturerID string, req *dto.ConflictCheckRequest) ([]dto.ConflictResponse, error)
	Enroll(ctx context.Context, classID, studentID string) error
	Unenroll(ctx context.Context, classID, studentID string) error
	GetStudents(ctx context.Context, classID string) ([]dto.EnrolledStudentResponse, error)
}

type classService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassService 创建 ClassService 实例
func NewClassService(repo *repository.Repository, logger *zap.Logger) ClassService {
	return &classService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *classService) Create(ctx context.Context, lecturerID string, req *dto.CreateClassRequest) (*dto.ClassResponse, error) {
	if err := validateWeeklySlot(req.DayOfWeek, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	// 课程必须存在且在用
	if _, err := s.repo.Course.GetByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	// 班级代码查重
	if _, err := s.repo.Class.GetByCode(ctx, req.ClassCode); err == nil {
		return nil, ErrClassCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, err
	}

	// 建班前强制做一次冲突检测：检出冲突即拒绝创建
	if err := s.rejectOnConflict(ctx, lecturerID, req.DayOfWeek, req.StartTime, req.EndTime, ""); err != nil {
		return nil, err
	}

	class := &model.Class{
		CourseID:    req.CourseID,
		LecturerID:  lecturerID,
		ClassCode:   req.ClassCode,
		Section:     req.Section,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		MaxStudents: req.MaxStudents,
		Semester:    req.Semester,
		IsActive:    true,
	}
	if class.MaxStudents == 0 {
		class.MaxStudents = 50
	}

	if err := s.repo.Class.Create(ctx, class); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrClassCodeTaken
		}
		s.logger.Error("创建班级失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("班级已创建",
		zap.String("class_id", class.ClassID),
		zap.String("class_code", class.ClassCode),
		zap.String("lecturer_id", lecturerID))

	return s.Get(ctx, class.ClassID)
}

// ────────────────────── Get / List ──────────────────────

func (s *classService) Get(ctx context.Context, classID string) (*dto.ClassResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("id", classID), zap.Error(err))
		return nil, err
	}

	count, err := s.repo.Enrollment.CountActive(ctx, classID)
	if err != nil {
		s.logger.Error("统计选课人数失败", zap.Error(err))
		return nil, err
	}

	return toClassResponse(class, int(count)), nil
}

func (s *classService) List(ctx context.Context, req *dto.ClassListRequest) ([]dto.ClassResponse, error) {
	classes, err := s.repo.Class.List(ctx, repository.ClassFilter{
		LecturerID: req.LecturerID,
		CourseID:   req.CourseID,
		Semester:   req.Semester,
		DayOfWeek:  req.DayOfWeek,
		Search:     req.Search,
	})
	if err != nil {
		s.logger.Error("查询班级列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		count, err := s.repo.Enrollment.CountActive(ctx, classes[i].ClassID)
		if err != nil {
			return nil, err
		}
		resp = append(resp, *toClassResponse(&classes[i], int(count)))
	}
	return resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *classService) Update(ctx context.Context, classID, callerProfileID, callerRole string, req *dto.UpdateClassRequest) (*dto.ClassResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	if callerRole != model.RoleAdmin && class.LecturerID != callerProfileID {
		return nil, ErrNotClassOwner
	}

	if req.Section != nil {
		class.Section = *req.Section
	}
	if req.DayOfWeek != nil {
		class.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		class.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		class.EndTime = *req.EndTime
	}
	if req.Location != nil {
		class.Location = *req.Location
	}
	if req.MaxStudents != nil {
		class.MaxStudents = *req.MaxStudents
	}
	if req.Semester != nil {
		class.Semester = *req.Semester
	}

	if err := validateWeeklySlot(class.DayOfWeek, class.StartTime, class.EndTime); err != nil {
		return nil, err
	}

	// 改期时重新检测冲突，排除本班自身
	if req.DayOfWeek != nil || req.StartTime != nil || req.EndTime != nil {
		if err := s.rejectOnConflict(ctx, class.LecturerID, class.DayOfWeek, class.StartTime, class.EndTime, classID); err != nil {
			return nil, err
		}
	}

	class.UpdatedAt = time.Now()
	if err := s.repo.Class.Update(ctx, class); err != nil {
		s.logger.Error("更新班级失败", zap.String("id", classID), zap.Error(err))
		return nil, err
	}

	return s.Get(ctx, classID)
}

// ────────────────────── Deactivate ──────────────────────

func (s *classService) Deactivate(ctx context.Context, classID, callerProfileID, callerRole string) error {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	if callerRole != model.RoleAdmin && class.LecturerID != callerProfileID {
		return ErrNotClassOwner
	}

	if err := s.repo.Class.Deactivate(ctx, classID); err != nil {
		s.logger.Error("停用班级失败", zap.String("id", classID), zap.Error(err))
		return err
	}

	s.logger.Info("班级已停用", zap.String("class_id", classID))
	return nil
}

// ────────────────────── CheckConflicts ──────────────────────

func (s *classService) CheckConflicts(ctx context.Context, lecturerID string, req *dto.ConflictCheckRequest) ([]dto.ConflictResponse, error) {
	if err := validateWeeklySlot(req.DayOfWeek, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	classes, err := s.repo.Class.FindOverlapping(ctx, lecturerID, req.DayOfWeek, req.StartTime, req.EndTime, req.ExcludeClassID)
	if err != nil {
		s.logger.Error("冲突检测失败", zap.Error(err))
		return nil, err
	}

	conflicts := make([]dto.ConflictResponse, 0, len(classes))
	for i := range classes {
		c := &classes[i]
		item := dto.ConflictResponse{
			ClassID:   c.ClassID,
			ClassCode: c.ClassCode,
			DayOfWeek: c.DayOfWeek,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
		}
		if c.Course != nil {
			item.CourseName = c.Course.CourseName
		}
		conflicts = append(conflicts, item)
	}
	return conflicts, nil
}

// ────────────────────── Enroll / Unenroll ──────────────────────

func (s *classService) Enroll(ctx context.Context, classID, studentID string) error {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	if _, err := s.repo.Enrollment.GetActive(ctx, classID, studentID); err == nil {
		return ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	count, err := s.repo.Enrollment.CountActive(ctx, classID)
	if err != nil {
		return err
	}
	if int(count) >= class.MaxStudents {
		return ErrClassFull
	}

	enrollment := &model.Enrollment{
		ClassID:    classID,
		StudentID:  studentID,
		Status:     "active",
		EnrolledAt: time.Now(),
	}
	if err := s.repo.Enrollment.Create(ctx, enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyEnrolled
		}
		s.logger.Error("选课失败", zap.Error(err))
		return err
	}

	s.logger.Info("学生已选课",
		zap.String("class_id", classID),
		zap.String("student_id", studentID))
	return nil
}

func (s *classService) Unenroll(ctx context.Context, classID, studentID string) error {
	affected, err := s.repo.Enrollment.Drop(ctx, classID, studentID)
	if err != nil {
		s.logger.Error("退课失败", zap.Error(err))
		return err
	}
	if affected == 0 {
		return ErrNotEnrolled
	}
	return nil
}

// ────────────────────── GetStudents ──────────────────────

func (s *classService) GetStudents(ctx context.Context, classID string) ([]dto.EnrolledStudentResponse, error) {
	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	enrollments, err := s.repo.Enrollment.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询班级学生失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.EnrolledStudentResponse, 0, len(enrollments))
	for i := range enrollments {
		e := &enrollments[i]
		item := dto.EnrolledStudentResponse{
			StudentID:  e.StudentID,
			EnrolledAt: e.EnrolledAt.Format(time.RFC3339),
		}
		if e.Student != nil {
			item.MatricNo = e.Student.MatricNo
			item.FullName = e.Student.FullName()
			item.Department = e.Student.Department
		}

		records, err := s.repo.Attendance.ListByStudent(ctx, e.StudentID, repository.AttendanceFilter{ClassID: classID})
		if err != nil {
			return nil, err
		}
		item.TotalSessions = len(records)
		for j := range records {
			if records[j].Status == model.StatusPresent {
				item.PresentCount++
			}
		}
		if item.TotalSessions > 0 {
			item.AttendanceRate = float64(item.PresentCount) / float64(item.TotalSessions) * 100
		}
		resp = append(resp, item)
	}
	return resp, nil
}

// ── 内部辅助方法 ──

// validateWeeklySlot 校验星期名与 "HH:MM" 区间（start 必须早于 end，不支持跨天）
func validateWeeklySlot(dayOfWeek, startTime, endTime string) error {
	if !model.ValidWeekday(dayOfWeek) {
		return ErrInvalidWeekday
	}
	if _, err := time.Parse(timeLayout, startTime); err != nil {
		return ErrInvalidTimeRange
	}
	if _, err := time.Parse(timeLayout, endTime); err != nil {
		return ErrInvalidTimeRange
	}
	if startTime >= endTime {
		return ErrInvalidTimeRange
	}
	return nil
}

// rejectOnConflict 检出任何重叠班级即返回携带明细的 ScheduleConflictError
func (s *classService) rejectOnConflict(ctx context.Context, lecturerID, dayOfWeek, startTime, endTime, excludeClassID string) error {
	classes, err := s.repo.Class.FindOverlapping(ctx, lecturerID, dayOfWeek, startTime, endTime, excludeClassID)
	if err != nil {
		s.logger.Error("冲突检测失败", zap.Error(err))
		return err
	}
	if len(classes) == 0 {
		return nil
	}

	conflicts := make([]pkgerrors.ConflictingInterval, 0, len(classes))
	for i := range classes {
		c := &classes[i]
		item := pkgerrors.ConflictingInterval{
			ClassID:   c.ClassID,
			ClassCode: c.ClassCode,
			DayOfWeek: c.DayOfWeek,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
		}
		if c.Course != nil {
			item.CourseName = c.Course.CourseName
		}
		conflicts = append(conflicts, item)
	}
	return &pkgerrors.ScheduleConflictError{Conflicts: conflicts}
}
