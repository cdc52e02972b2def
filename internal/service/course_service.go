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

var (
	ErrCourseNotFound  = errors.New("课程不存在")
	ErrCourseCodeTaken = errors.New("课程代码已存在")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	Get(ctx context.Context, courseID string) (*dto.CourseResponse, error)
	List(ctx context.Context, search string) ([]dto.CourseResponse, error)
	Update(ctx context.Context, courseID string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	Deactivate(ctx context.Context, courseID string) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if _, err := s.repo.Course.GetByCode(ctx, req.CourseCode); err == nil {
		return nil, ErrCourseCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	course := &model.Course{
		CourseCode:  req.CourseCode,
		CourseName:  req.CourseName,
		Description: req.Description,
		Credits:     req.Credits,
		IsActive:    true,
	}
	if err := s.repo.Course.Create(ctx, course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCourseCodeTaken
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("课程已创建",
		zap.String("course_id", course.CourseID),
		zap.String("course_code", course.CourseCode))
	return toCourseResponse(course), nil
}

func (s *courseService) Get(ctx context.Context, courseID string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", courseID), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(course), nil
}

func (s *courseService) List(ctx context.Context, search string) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx, search)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		resp = append(resp, *toCourseResponse(&courses[i]))
	}
	return resp, nil
}

func (s *courseService) Update(ctx context.Context, courseID string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if req.CourseName != nil {
		course.CourseName = *req.CourseName
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}
	course.UpdatedAt = time.Now()

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", courseID), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(course), nil
}

func (s *courseService) Deactivate(ctx context.Context, courseID string) error {
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	if err := s.repo.Course.Deactivate(ctx, courseID); err != nil {
		s.logger.Error("下线课程失败", zap.String("id", courseID), zap.Error(err))
		return err
	}

	s.logger.Info("课程已下线", zap.String("course_id", courseID))
	return nil
}
