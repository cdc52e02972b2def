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

var ErrLecturerNotFound = errors.New("讲师不存在")

// LecturerService 讲师档案业务接口
type LecturerService interface {
	Get(ctx context.Context, lecturerID string) (*dto.LecturerResponse, error)
	List(ctx context.Context, department, search string) ([]dto.LecturerResponse, error)
	Update(ctx context.Context, lecturerID string, req *dto.UpdateLecturerRequest) (*dto.LecturerResponse, error)
}

type lecturerService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLecturerService 创建 LecturerService 实例
func NewLecturerService(repo *repository.Repository, logger *zap.Logger) LecturerService {
	return &lecturerService{repo: repo, logger: logger}
}

func (s *lecturerService) Get(ctx context.Context, lecturerID string) (*dto.LecturerResponse, error) {
	lecturer, err := s.repo.Lecturer.GetByID(ctx, lecturerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLecturerNotFound
		}
		s.logger.Error("查询讲师失败", zap.String("id", lecturerID), zap.Error(err))
		return nil, err
	}
	return toLecturerResponse(lecturer), nil
}

func (s *lecturerService) List(ctx context.Context, department, search string) ([]dto.LecturerResponse, error) {
	lecturers, err := s.repo.Lecturer.List(ctx, department, search)
	if err != nil {
		s.logger.Error("查询讲师列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.LecturerResponse, 0, len(lecturers))
	for i := range lecturers {
		resp = append(resp, *toLecturerResponse(&lecturers[i]))
	}
	return resp, nil
}

func (s *lecturerService) Update(ctx context.Context, lecturerID string, req *dto.UpdateLecturerRequest) (*dto.LecturerResponse, error) {
	lecturer, err := s.repo.Lecturer.GetByID(ctx, lecturerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLecturerNotFound
		}
		return nil, err
	}

	if req.FirstName != nil {
		lecturer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		lecturer.LastName = *req.LastName
	}
	if req.Title != nil {
		lecturer.Title = *req.Title
	}
	if req.Department != nil {
		lecturer.Department = *req.Department
	}
	lecturer.UpdatedAt = time.Now()

	if err := s.repo.Lecturer.Update(ctx, lecturer); err != nil {
		s.logger.Error("更新讲师档案失败", zap.String("id", lecturerID), zap.Error(err))
		return nil, err
	}
	return toLecturerResponse(lecturer), nil
}
