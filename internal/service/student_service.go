package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attend-ease/backend/internal/dto"
	"attend-ease/backend/internal/repository"
)

var ErrStudentNotFound = errors.New("学生不存在")

// StudentService 学生档案业务接口
type StudentService interface {
	Get(ctx context.Context, studentID string) (*dto.StudentResponse, error)
	GetByMatricNo(ctx context.Context, matricNo string) (*dto.StudentResponse, error)
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, error)
	Update(ctx context.Context, studentID string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

func (s *studentService) Get(ctx context.Context, studentID string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", studentID), zap.Error(err))
		return nil, err
	}
	return toStudentResponse(student), nil
}

func (s *studentService) GetByMatricNo(ctx context.Context, matricNo string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByMatricNo(ctx, matricNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("matric_no", matricNo), zap.Error(err))
		return nil, err
	}
	return toStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, error) {
	students, err := s.repo.Student.List(ctx, req.Department, req.Level, req.Search)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		resp = append(resp, *toStudentResponse(&students[i]))
	}
	return resp, nil
}

func (s *studentService) Update(ctx context.Context, studentID string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if req.FirstName != nil {
		student.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		student.LastName = *req.LastName
	}
	if req.Department != nil {
		student.Department = *req.Department
	}
	if req.Level != nil {
		student.Level = *req.Level
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	student.UpdatedAt = time.Now()

	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("更新学生档案失败", zap.String("id", studentID), zap.Error(err))
		return nil, err
	}
	return toStudentResponse(student), nil
}
