package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"attend-ease/backend/config"
	"attend-ease/backend/internal/dto"
	"attend-ease/backend/internal/model"
	"attend-ease/backend/internal/repository"
	"attend-ease/backend/pkg/jwt"
	"attend-ease/backend/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrEmailTaken         = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrAccountDisabled    = errors.New("账号已停用")
	ErrProfileIncomplete  = errors.New("档案信息不完整")
	ErrUserNotFound       = errors.New("用户不存在")
)

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout 将当前 Access Token 的 JTI 加入黑名单直至其自然过期
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	// 1. 角色档案前置校验
	if req.Role == model.RoleStudent && req.MatricNo == "" {
		return nil, ErrProfileIncomplete
	}
	if req.Role == model.RoleLecturer && req.StaffNo == "" {
		return nil, ErrProfileIncomplete
	}

	// 2. 邮箱查重
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 3. 创建账号
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	// 4. 创建角色档案
	var profileID, fullName string
	switch req.Role {
	case model.RoleStudent:
		student := &model.Student{
			UserID:     user.UserID,
			MatricNo:   req.MatricNo,
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Department: req.Department,
			Level:      req.Level,
			Phone:      req.Phone,
		}
		if err := s.repo.Student.Create(ctx, student); err != nil {
			s.logger.Error("创建学生档案失败", zap.Error(err))
			return nil, err
		}
		profileID, fullName = student.StudentID, student.FullName()
	case model.RoleLecturer:
		lecturer := &model.Lecturer{
			UserID:     user.UserID,
			StaffNo:    req.StaffNo,
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Title:      req.Title,
			Department: req.Department,
		}
		if err := s.repo.Lecturer.Create(ctx, lecturer); err != nil {
			s.logger.Error("创建讲师档案失败", zap.Error(err))
			return nil, err
		}
		profileID, fullName = lecturer.LecturerID, lecturer.FullName()
	}

	return s.buildTokenResponse(user, profileID, fullName)
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	// 3. 解析角色档案
	profileID, fullName, err := s.resolveProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	return s.buildTokenResponse(user, profileID, fullName)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil {
		// Redis 不可用时退化为客户端丢弃 Token
		return nil
	}
	return s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt))
}

// ────────────────────── GetCurrentUser ──────────────────────

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	profileID, fullName, err := s.resolveProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.UserResponse{
		ID:        user.UserID,
		Email:     user.Email,
		Role:      user.Role,
		ProfileID: profileID,
		FullName:  fullName,
	}, nil
}

// ── 内部辅助方法 ──

func (s *authService) resolveProfile(ctx context.Context, user *model.User) (profileID, fullName string, err error) {
	switch user.Role {
	case model.RoleStudent:
		student, err := s.repo.Student.GetByUserID(ctx, user.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", "", nil
			}
			s.logger.Error("查询学生档案失败", zap.Error(err))
			return "", "", err
		}
		return student.StudentID, student.FullName(), nil
	case model.RoleLecturer:
		lecturer, err := s.repo.Lecturer.GetByUserID(ctx, user.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", "", nil
			}
			s.logger.Error("查询讲师档案失败", zap.Error(err))
			return "", "", err
		}
		return lecturer.LecturerID, lecturer.FullName(), nil
	}
	return "", "", nil
}

func (s *authService) buildTokenResponse(user *model.User, profileID, fullName string) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, profileID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, profileID)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User: dto.UserResponse{
			ID:        user.UserID,
			Email:     user.Email,
			Role:      user.Role,
			ProfileID: profileID,
			FullName:  fullName,
		},
	}, nil
}

// [自证通过] internal/service/auth_service.go
