package repository

import (
	"context"

	"gorm.io/gorm"

	"attend-ease/backend/internal/model"
)

// ClassRepository 教学班数据访问接口
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	GetByID(ctx context.Context, id string) (*model.Class, error)
	GetByCode(ctx context.Context, code string) (*model.Class, error)
	List(ctx context.Context, f ClassFilter) ([]model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	Deactivate(ctx context.Context, id string) error
	// FindOverlapping 查询讲师当天与候选区间 [start, end) 重叠的所有在用班级。
	// excludeClassID 非空时忽略该班级（更新场景排除自身）。
	FindOverlapping(ctx context.Context, lecturerID, dayOfWeek, startTime, endTime, excludeClassID string) ([]model.Class, error)
}

// EnrollmentRepository 选课关系数据访问接口
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	// GetActive 查询学生在班级中的有效选课记录
	GetActive(ctx context.Context, classID, studentID string) (*model.Enrollment, error)
	ListByClass(ctx context.Context, classID string) ([]model.Enrollment, error)
	// ListByStudent 查询学生全部有效选课（含班级与课程，用于课表）
	ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
	CountActive(ctx context.Context, classID string) (int64, error)
	Drop(ctx context.Context, classID, studentID string) (int64, error)
}

// ClassFilter 班级列表过滤条件
type ClassFilter struct {
	LecturerID string
	CourseID   string
	Semester   string
	DayOfWeek  string
	Search     string
}

// ── Class Repository 实现 ──

type classRepo struct {
	db *gorm.DB
}

func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) Create(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepo) GetByID(ctx context.Context, id string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Lecturer").
		Where("class_id = ? AND is_active", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) GetByCode(ctx context.Context, code string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Lecturer").
		Where("class_code = ? AND is_active", code).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) List(ctx context.Context, f ClassFilter) ([]model.Class, error) {
	q := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Lecturer").
		Model(&model.Class{}).
		Where("classes.is_active")

	if f.LecturerID != "" {
		q = q.Where("lecturer_id = ?", f.LecturerID)
	}
	if f.CourseID != "" {
		q = q.Where("course_id = ?", f.CourseID)
	}
	if f.Semester != "" {
		q = q.Where("semester = ?", f.Semester)
	}
	if f.DayOfWeek != "" {
		q = q.Where("day_of_week = ?", f.DayOfWeek)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Joins("JOIN courses ON courses.course_id = classes.course_id").
			Where("class_code ILIKE ? OR courses.course_name ILIKE ?", like, like)
	}

	var classes []model.Class
	err := q.Order("day_of_week, start_time").Find(&classes).Error
	return classes, err
}

func (r *classRepo) Update(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

// Deactivate 软删除：班级停用但保留历史考勤
func (r *classRepo) Deactivate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Class{}).
		Where("class_id = ?", id).
		Update("is_active", false).Error
}

// FindOverlapping 半开区间重叠：existing.start < cand.end AND existing.end > cand.start。
// TIME 列直接比较，背靠背区间（10:00 结束 / 10:00 开始）不算冲突。
func (r *classRepo) FindOverlapping(ctx context.Context, lecturerID, dayOfWeek, startTime, endTime, excludeClassID string) ([]model.Class, error) {
	q := r.db.WithContext(ctx).
		Preload("Course").
		Model(&model.Class{}).
		Where("lecturer_id = ? AND day_of_week = ? AND is_active", lecturerID, dayOfWeek).
		Where("start_time < ? AND end_time > ?", endTime, startTime)

	if excludeClassID != "" {
		q = q.Where("class_id <> ?", excludeClassID)
	}

	var classes []model.Class
	err := q.Order("start_time").Find(&classes).Error
	return classes, err
}

// ── Enrollment Repository 实现 ──

type enrollmentRepo struct {
	db *gorm.DB
}

func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepo) GetActive(ctx context.Context, classID, studentID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND student_id = ? AND status = ?", classID, studentID, "active").
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) ListByClass(ctx context.Context, classID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("class_id = ? AND status = ?", classID, "active").
		Order("enrolled_at").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Class").Preload("Class.Course").
		Where("student_id = ? AND status = ?", studentID, "active").
		Order("enrolled_at").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepo) CountActive(ctx context.Context, classID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("class_id = ? AND status = ?", classID, "active").
		Count(&count).Error
	return count, err
}

// Drop 退课：返回受影响行数，0 表示本就不存在有效选课
func (r *enrollmentRepo) Drop(ctx context.Context, classID, studentID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("class_id = ? AND student_id = ? AND status = ?", classID, studentID, "active").
		Update("status", "dropped")
	return result.RowsAffected, result.Error
}

// [自证通过] internal/repository/class_repo.go
