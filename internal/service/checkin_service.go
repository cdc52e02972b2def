package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"attend-ease/backend/config"
	"attend-ease/backend/internal/dto"
	"attend-ease/backend/internal/model"
	"attend-ease/backend/internal/repository"
	pkgerrors "attend-ease/backend/pkg/errors"
)

// ── 扫码签到模块业务错误 ──

var (
	// ErrSessionInvalid 对外统一表述：令牌不存在、会话已关闭、已过期
	// 三种情况不做区分，避免向扫码方泄露会话状态
	ErrSessionInvalid  = errors.New("签到码无效或已过期")
	ErrSessionNotFound = errors.New("签到会话不存在")
	ErrNotSessionOwner = errors.New("无权操作他人签到会话")
	ErrValidityTooLong = errors.New("签到窗口时长超出上限")
)

// CheckinService 扫码签到业务接口
type CheckinService interface {
	// Issue 为 (班级, 日期) 开启签到会话。同键已有活跃未过期会话时
	// 返回 *pkgerrors.ActiveSessionError，不重建不续期
	Issue(ctx context.Context, lecturerID string, req *dto.IssueSessionRequest) (*dto.SessionResponse, error)
	// Validate 只读校验令牌，不产生任何写入
	Validate(ctx context.Context, token string) (*dto.SessionResponse, error)
	// Scan 学生扫码签到：台账 upsert 为 Present 并追加扫码日志，
	// 两者在同一事务内完成。重复扫码台账不变、日志仍追加
	Scan(ctx context.Context, studentID string, req *dto.ScanRequest) (*dto.AttendanceResponse, error)
	// Deactivate 讲师提前关闭会话；重复关闭是无操作成功
	Deactivate(ctx context.Context, sessionID, callerProfileID, callerRole string) error
	GetActiveSession(ctx context.Context, classID, date string) (*dto.SessionResponse, error)
	GetScanLogs(ctx context.Context, sessionID, callerProfileID, callerRole string) ([]dto.ScanLogResponse, error)
}

type checkinService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger

	// now 可在测试中替换以构造过期场景
	now func() time.Time
}

// NewCheckinService 创建 CheckinService 实例
func NewCheckinService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) CheckinService {
	return &checkinService{
		cfg:    cfg,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── Issue ──────────────────────

func (s *checkinService) Issue(ctx context.Context, lecturerID string, req *dto.IssueSessionRequest) (*dto.SessionResponse, error) {
	day, err := time.Parse(dateLayout, req.AttendanceDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	class, err := s.repo.Class.GetByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if class.LecturerID != lecturerID {
		return nil, ErrNotClassOwner
	}

	validity := req.ValidityMinutes
	if validity == 0 {
		validity = s.cfg.Checkin.DefaultValidityMinutes
	}
	if validity > s.cfg.Checkin.MaxValidityMinutes {
		return nil, ErrValidityTooLong
	}

	now := s.now()

	// 预检仅用于返回友好的"已有会话"提示；并发下真正的唯一性
	// 由部分唯一索引保证，见下方 ErrDuplicatedKey 分支
	if existing, err := s.repo.Checkin.GetActiveSession(ctx, req.ClassID, day, now); err == nil {
		return nil, &pkgerrors.ActiveSessionError{
			SessionID: existing.SessionID,
			ExpiresAt: existing.ExpiresAt,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session := &model.CheckinSession{
		ClassID:        req.ClassID,
		AttendanceDate: day,
		SessionToken:   uuid.New().String(),
		CreatedBy:      lecturerID,
		ExpiresAt:      now.Add(time.Duration(validity) * time.Minute),
		IsActive:       true,
		CreatedAt:      now,
	}

	if err := s.repo.Checkin.CreateSession(ctx, session); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Error("创建签到会话失败", zap.String("class_id", req.ClassID), zap.Error(err))
			return nil, err
		}
		// 命中部分唯一索引。挡路的可能是真正活跃的会话，也可能是
		// 过期后仍挂着 is_active 的旧会话（过期是惰性判定，无人回写）。
		// 先清掉同键下已过期的行，清到了就重试一次插入
		swept, serr := s.repo.Checkin.DeactivateExpired(ctx, req.ClassID, day, now)
		if serr != nil {
			return nil, serr
		}
		if swept > 0 {
			err = s.repo.Checkin.CreateSession(ctx, session)
		}
		if err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				s.logger.Error("创建签到会话失败", zap.String("class_id", req.ClassID), zap.Error(err))
				return nil, err
			}
			// 输给并发 Issue 的一方：回查胜者会话返回冲突详情
			existing, qerr := s.repo.Checkin.GetActiveSession(ctx, req.ClassID, day, now)
			if qerr != nil {
				return nil, qerr
			}
			return nil, &pkgerrors.ActiveSessionError{
				SessionID: existing.SessionID,
				ExpiresAt: existing.ExpiresAt,
			}
		}
	}

	s.logger.Info("签到会话已开启",
		zap.String("session_id", session.SessionID),
		zap.String("class_id", req.ClassID),
		zap.Time("expires_at", session.ExpiresAt))

	session.Class = class
	return toSessionResponse(session, true), nil
}

// ────────────────────── Validate ──────────────────────

func (s *checkinService) Validate(ctx context.Context, token string) (*dto.SessionResponse, error) {
	session, err := s.usableSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session, false), nil
}

// ────────────────────── Scan ──────────────────────

func (s *checkinService) Scan(ctx context.Context, studentID string, req *dto.ScanRequest) (*dto.AttendanceResponse, error) {
	session, err := s.usableSession(ctx, req.SessionToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	// 仅限该班级有效选课学生
	if _, err := s.repo.Enrollment.GetActive(ctx, session.ClassID, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	now := s.now()
	record := &model.AttendanceRecord{
		ClassID:        session.ClassID,
		StudentID:      studentID,
		AttendanceDate: session.AttendanceDate,
		Status:         model.StatusPresent,
		MarkedBy:       session.CreatedBy,
		Notes:          "Marked via QR code",
	}
	scanLog := &model.ScanLog{
		SessionID: session.SessionID,
		StudentID: studentID,
		ScanTime:  now,
	}

	if err := s.repo.Checkin.RecordScan(ctx, record, scanLog); err != nil {
		s.logger.Error("扫码签到落库失败",
			zap.String("session_id", session.SessionID),
			zap.String("student_id", studentID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("扫码签到成功",
		zap.String("session_id", session.SessionID),
		zap.String("class_id", session.ClassID),
		zap.String("student_id", studentID))

	saved, err := s.repo.Attendance.GetByKey(ctx, session.ClassID, studentID, session.AttendanceDate)
	if err != nil {
		return nil, err
	}
	return toAttendanceResponse(saved), nil
}

// ────────────────────── Deactivate ──────────────────────

func (s *checkinService) Deactivate(ctx context.Context, sessionID, callerProfileID, callerRole string) error {
	session, err := s.repo.Checkin.GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if callerRole != model.RoleAdmin && session.CreatedBy != callerProfileID {
		return ErrNotSessionOwner
	}

	if err := s.repo.Checkin.DeactivateSession(ctx, sessionID); err != nil {
		s.logger.Error("关闭签到会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}

	s.logger.Info("签到会话已关闭", zap.String("session_id", sessionID))
	return nil
}

// ────────────────────── GetActiveSession / GetScanLogs ──────────────────────

func (s *checkinService) GetActiveSession(ctx context.Context, classID, date string) (*dto.SessionResponse, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	session, err := s.repo.Checkin.GetActiveSession(ctx, classID, day, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return toSessionResponse(session, false), nil
}

func (s *checkinService) GetScanLogs(ctx context.Context, sessionID, callerProfileID, callerRole string) ([]dto.ScanLogResponse, error) {
	session, err := s.repo.Checkin.GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if callerRole != model.RoleAdmin && session.CreatedBy != callerProfileID {
		return nil, ErrNotSessionOwner
	}

	logs, err := s.repo.Checkin.ListScanLogs(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询扫码日志失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	resp := make([]dto.ScanLogResponse, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		item := dto.ScanLogResponse{
			ScanLogID: l.ScanLogID,
			SessionID: l.SessionID,
			StudentID: l.StudentID,
			ScanTime:  l.ScanTime.Format(time.RFC3339),
		}
		if l.Student != nil {
			item.MatricNo = l.Student.MatricNo
			item.StudentName = l.Student.FullName()
		}
		resp = append(resp, item)
	}
	return resp, nil
}

// ── 内部辅助方法 ──

// usableSession 按令牌取会话并做惰性过期判定。
// 令牌不存在与会话不可用返回同一个 ErrSessionInvalid
func (s *checkinService) usableSession(ctx context.Context, token string) (*model.CheckinSession, error) {
	session, err := s.repo.Checkin.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	if !session.Usable(s.now()) {
		return nil, ErrSessionInvalid
	}
	return session, nil
}
