package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"attend-ease/backend/internal/dto"
	"attend-ease/backend/internal/service"
	pkgerrors "attend-ease/backend/pkg/errors"
	"attend-ease/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *dto.TokenResponse
	registerErr    error
	loginResult    *dto.TokenResponse
	loginErr       error
	logoutErr      error
	currentResult  *dto.UserResponse
	currentErr     error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.TokenResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string, _ time.Time) error {
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.currentResult, m.currentErr
}

// ── Mock CheckinService ──

type mockCheckinService struct {
	issueResult    *dto.SessionResponse
	issueErr       error
	validateResult *dto.SessionResponse
	validateErr    error
	scanResult     *dto.AttendanceResponse
	scanErr        error
	deactivateErr  error
	activeResult   *dto.SessionResponse
	activeErr      error
	logsResult     []dto.ScanLogResponse
	logsErr        error
}

func (m *mockCheckinService) Issue(_ context.Context, _ string, _ *dto.IssueSessionRequest) (*dto.SessionResponse, error) {
	return m.issueResult, m.issueErr
}
func (m *mockCheckinService) Validate(_ context.Context, _ string) (*dto.SessionResponse, error) {
	return m.validateResult, m.validateErr
}
func (m *mockCheckinService) Scan(_ context.Context, _ string, _ *dto.ScanRequest) (*dto.AttendanceResponse, error) {
	return m.scanResult, m.scanErr
}
func (m *mockCheckinService) Deactivate(_ context.Context, _, _, _ string) error {
	return m.deactivateErr
}
func (m *mockCheckinService) GetActiveSession(_ context.Context, _, _ string) (*dto.SessionResponse, error) {
	return m.activeResult, m.activeErr
}
func (m *mockCheckinService) GetScanLogs(_ context.Context, _, _, _ string) ([]dto.ScanLogResponse, error) {
	return m.logsResult, m.logsErr
}

// ── Mock ClassService ──

type mockClassService struct {
	createResult    *dto.ClassResponse
	createErr       error
	getResult       *dto.ClassResponse
	getErr          error
	listResult      []dto.ClassResponse
	listErr         error
	updateResult    *dto.ClassResponse
	updateErr       error
	deactivateErr   error
	conflictsResult []dto.ConflictResponse
	conflictsErr    error
	enrollErr       error
	unenrollErr     error
	studentsResult  []dto.EnrolledStudentResponse
	studentsErr     error
}

func (m *mockClassService) Create(_ context.Context, _ string, _ *dto.CreateClassRequest) (*dto.ClassResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockClassService) Get(_ context.Context, _ string) (*dto.ClassResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockClassService) List(_ context.Context, _ *dto.ClassListRequest) ([]dto.ClassResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockClassService) Update(_ context.Context, _, _, _ string, _ *dto.UpdateClassRequest) (*dto.ClassResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockClassService) Deactivate(_ context.Context, _, _, _ string) error {
	return m.deactivateErr
}
func (m *mockClassService) CheckConflicts(_ context.Context, _ string, _ *dto.ConflictCheckRequest) ([]dto.ConflictResponse, error) {
	return m.conflictsResult, m.conflictsErr
}
func (m *mockClassService) Enroll(_ context.Context, _, _ string) error {
	return m.enrollErr
}
func (m *mockClassService) Unenroll(_ context.Context, _, _ string) error {
	return m.unenrollErr
}
func (m *mockClassService) GetStudents(_ context.Context, _ string) ([]dto.EnrolledStudentResponse, error) {
	return m.studentsResult, m.studentsErr
}

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	markResult    *dto.AttendanceResponse
	markErr       error
	bulkCount     int
	bulkErr       error
	recordResult  *dto.AttendanceResponse
	recordErr     error
	classResult   []dto.AttendanceResponse
	classErr      error
	studentResult []dto.AttendanceResponse
	studentErr    error
	statsResult   *dto.ClassStatsResponse
	statsErr      error
}

func (m *mockAttendanceService) Mark(_ context.Context, _ string, _ *dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error) {
	return m.markResult, m.markErr
}
func (m *mockAttendanceService) MarkBulk(_ context.Context, _ string, _ *dto.BulkAttendanceRequest) (int, error) {
	return m.bulkCount, m.bulkErr
}
func (m *mockAttendanceService) GetRecord(_ context.Context, _, _, _ string) (*dto.AttendanceResponse, error) {
	return m.recordResult, m.recordErr
}
func (m *mockAttendanceService) GetClassAttendance(_ context.Context, _, _ string) ([]dto.AttendanceResponse, error) {
	return m.classResult, m.classErr
}
func (m *mockAttendanceService) GetStudentAttendance(_ context.Context, _ string, _ *dto.StudentAttendanceListRequest) ([]dto.AttendanceResponse, error) {
	return m.studentResult, m.studentErr
}
func (m *mockAttendanceService) GetClassStats(_ context.Context, _, _, _ string) (*dto.ClassStatsResponse, error) {
	return m.statsResult, m.statsErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

// setAuth 模拟 JWTAuth 中间件注入的上下文
func setAuth(role, profileID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", "test-user-id")
		c.Set("role", role)
		c.Set("profile_id", profileID)
		c.Set("jti", "test-jti")
		c.Set("token_expires_at", time.Now().Add(15*time.Minute))
	}
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "bola@edu.my",
		Password: "Test1234",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "bola@edu.my",
		Password: "wrong-password",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11002 {
		t.Errorf("expected error code 11002, got %d", resp.Code)
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{registerErr: service.ErrEmailTaken})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Email:     "bola@edu.my",
		Password:  "Test1234!",
		Role:      "student",
		FirstName: "Bola",
		LastName:  "Ade",
		MatricNo:  "MAT001",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	// 未经过 JWTAuth，上下文无 user_id
	r := gin.New()
	r.GET("/auth/me", h.Me)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10002 {
		t.Errorf("expected error code 10002, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CheckinHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCheckinHandler_Issue_ActiveSessionConflict(t *testing.T) {
	expiresAt := time.Now().Add(10 * time.Minute)
	mock := &mockCheckinService{
		issueErr: &pkgerrors.ActiveSessionError{SessionID: "sess-existing", ExpiresAt: expiresAt},
	}
	h := NewCheckinHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/checkin/sessions", jsonBody(dto.IssueSessionRequest{
		ClassID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		AttendanceDate: "2026-03-02",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/checkin/sessions", setAuth("lecturer", "lect-1"), h.Issue)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15001 {
		t.Errorf("expected error code 15001, got %d", resp.Code)
	}
	// 冲突响应携带已有会话信息，前端据此提示而非重建
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatal("conflict 响应应携带 data")
	}
	if data["session_id"] != "sess-existing" {
		t.Errorf("expected session_id sess-existing, got %v", data["session_id"])
	}
	if data["expires_at"] == "" {
		t.Error("expected expires_at in conflict data")
	}
}

func TestCheckinHandler_Validate_InvalidToken(t *testing.T) {
	h := NewCheckinHandler(&mockCheckinService{validateErr: service.ErrSessionInvalid})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/checkin/validate", jsonBody(dto.ValidateTokenRequest{
		SessionToken: "stale-token",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/checkin/validate", h.Validate)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15002 {
		t.Errorf("expected error code 15002, got %d", resp.Code)
	}
}

func TestCheckinHandler_Scan_Success(t *testing.T) {
	mock := &mockCheckinService{
		scanResult: &dto.AttendanceResponse{
			ID:             "att-1",
			StudentID:      "stu-1",
			Status:         "Present",
			AttendanceDate: "2026-03-02",
		},
	}
	h := NewCheckinHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/checkin/scan", jsonBody(dto.ScanRequest{
		SessionToken: "valid-token",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/checkin/scan", setAuth("student", "stu-1"), h.Scan)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	data, _ := resp.Data.(map[string]interface{})
	if data["status"] != "Present" {
		t.Errorf("expected status Present, got %v", data["status"])
	}
}

func TestCheckinHandler_Scan_NotEnrolled(t *testing.T) {
	h := NewCheckinHandler(&mockCheckinService{scanErr: service.ErrNotEnrolled})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/checkin/scan", jsonBody(dto.ScanRequest{
		SessionToken: "valid-token",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/checkin/scan", setAuth("student", "stu-9"), h.Scan)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13008 {
		t.Errorf("expected error code 13008, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ClassHandler Tests
// ═══════════════════════════════════════════════════════════

func TestClassHandler_Create_ScheduleConflict(t *testing.T) {
	mock := &mockClassService{
		createErr: &pkgerrors.ScheduleConflictError{Conflicts: []pkgerrors.ConflictingInterval{
			{ClassID: "class-1", ClassCode: "CSC101-A", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00"},
		}},
	}
	h := NewClassHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/classes", jsonBody(dto.CreateClassRequest{
		CourseID:  "0f8fad5b-d9cb-469f-a165-70867728950e",
		ClassCode: "CSC101-B",
		DayOfWeek: "Monday",
		StartTime: "09:30",
		EndTime:   "10:30",
		Location:  "LT2",
		Semester:  "2025/2026-1",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/classes", setAuth("lecturer", "lect-1"), h.Create)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13001 {
		t.Errorf("expected error code 13001, got %d", resp.Code)
	}
	data, _ := resp.Data.(map[string]interface{})
	conflicts, _ := data["conflicts"].([]interface{})
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict in data, got %d", len(conflicts))
	}
}

func TestClassHandler_CheckConflicts_NoConflict(t *testing.T) {
	h := NewClassHandler(&mockClassService{conflictsResult: nil})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/classes/conflicts", jsonBody(dto.ConflictCheckRequest{
		DayOfWeek: "Tuesday",
		StartTime: "09:00",
		EndTime:   "10:00",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/classes/conflicts", setAuth("lecturer", "lect-1"), h.CheckConflicts)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	data, _ := resp.Data.(map[string]interface{})
	if data["has_conflict"] != false {
		t.Errorf("expected has_conflict false, got %v", data["has_conflict"])
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_MarkBulk_Success(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{bulkCount: 3})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance/bulk", jsonBody(dto.BulkAttendanceRequest{
		Records: []dto.MarkAttendanceRequest{
			{ClassID: "0f8fad5b-d9cb-469f-a165-70867728950e", StudentID: "1f8fad5b-d9cb-469f-a165-70867728950e", AttendanceDate: "2026-03-02", Status: "Present"},
			{ClassID: "0f8fad5b-d9cb-469f-a165-70867728950e", StudentID: "2f8fad5b-d9cb-469f-a165-70867728950e", AttendanceDate: "2026-03-02", Status: "Absent"},
			{ClassID: "0f8fad5b-d9cb-469f-a165-70867728950e", StudentID: "3f8fad5b-d9cb-469f-a165-70867728950e", AttendanceDate: "2026-03-02", Status: "Late"},
		},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/bulk", setAuth("lecturer", "lect-1"), h.MarkBulk)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	resp := parseResponse(w)
	data, _ := resp.Data.(map[string]interface{})
	if data["marked_count"] != float64(3) {
		t.Errorf("expected marked_count 3, got %v", data["marked_count"])
	}
}

func TestAttendanceHandler_Mark_InvalidStatus(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{markErr: service.ErrInvalidStatus})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance", jsonBody(dto.MarkAttendanceRequest{
		ClassID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		StudentID:      "1f8fad5b-d9cb-469f-a165-70867728950e",
		AttendanceDate: "2026-03-02",
		Status:         "Sleeping",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance", setAuth("lecturer", "lect-1"), h.Mark)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14001 {
		t.Errorf("expected error code 14001, got %d", resp.Code)
	}
}
