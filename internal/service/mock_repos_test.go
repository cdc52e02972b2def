package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"attend-ease/backend/internal/model"
	"attend-ease/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
	seq      int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.StudentID == "" {
		m.seq++
		student.StudentID = fmt.Sprintf("stu-%d", m.seq)
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	for _, s := range m.students {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByMatricNo(_ context.Context, matricNo string) (*model.Student, error) {
	for _, s := range m.students {
		if s.MatricNo == matricNo {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context, department, level, _ string) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if department != "" && s.Department != department {
			continue
		}
		if level != "" && s.Level != level {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.students[student.StudentID] = student
	return nil
}

// ── Mock LecturerRepository ──

type mockLecturerRepo struct {
	lecturers map[string]*model.Lecturer
	seq       int
}

func newMockLecturerRepo() *mockLecturerRepo {
	return &mockLecturerRepo{lecturers: make(map[string]*model.Lecturer)}
}

func (m *mockLecturerRepo) Create(_ context.Context, lecturer *model.Lecturer) error {
	if lecturer.LecturerID == "" {
		m.seq++
		lecturer.LecturerID = fmt.Sprintf("lect-%d", m.seq)
	}
	m.lecturers[lecturer.LecturerID] = lecturer
	return nil
}

func (m *mockLecturerRepo) GetByID(_ context.Context, id string) (*model.Lecturer, error) {
	if l, ok := m.lecturers[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLecturerRepo) GetByUserID(_ context.Context, userID string) (*model.Lecturer, error) {
	for _, l := range m.lecturers {
		if l.UserID == userID {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLecturerRepo) List(_ context.Context, department, _ string) ([]model.Lecturer, error) {
	var result []model.Lecturer
	for _, l := range m.lecturers {
		if department != "" && l.Department != department {
			continue
		}
		result = append(result, *l)
	}
	return result, nil
}

func (m *mockLecturerRepo) Update(_ context.Context, lecturer *model.Lecturer) error {
	m.lecturers[lecturer.LecturerID] = lecturer
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	seq     int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		m.seq++
		course.CourseID = fmt.Sprintf("course-%d", m.seq)
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok && c.IsActive {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	for _, c := range m.courses {
		if c.CourseCode == code && c.IsActive {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context, _ string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if c.IsActive {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) Deactivate(_ context.Context, id string) error {
	if c, ok := m.courses[id]; ok {
		c.IsActive = false
	}
	return nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes map[string]*model.Class
	seq     int
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.Class)}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	if class.ClassID == "" {
		m.seq++
		class.ClassID = fmt.Sprintf("class-%d", m.seq)
	}
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	if c, ok := m.classes[id]; ok && c.IsActive {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) GetByCode(_ context.Context, code string) (*model.Class, error) {
	for _, c := range m.classes {
		if c.ClassCode == code && c.IsActive {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) List(_ context.Context, f repository.ClassFilter) ([]model.Class, error) {
	var result []model.Class
	for _, c := range m.classes {
		if !c.IsActive {
			continue
		}
		if f.LecturerID != "" && c.LecturerID != f.LecturerID {
			continue
		}
		if f.CourseID != "" && c.CourseID != f.CourseID {
			continue
		}
		if f.Semester != "" && c.Semester != f.Semester {
			continue
		}
		if f.DayOfWeek != "" && c.DayOfWeek != f.DayOfWeek {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) Deactivate(_ context.Context, id string) error {
	if c, ok := m.classes[id]; ok {
		c.IsActive = false
	}
	return nil
}

func (m *mockClassRepo) FindOverlapping(_ context.Context, lecturerID, dayOfWeek, startTime, endTime, excludeClassID string) ([]model.Class, error) {
	var result []model.Class
	for _, c := range m.classes {
		if !c.IsActive || c.LecturerID != lecturerID || c.DayOfWeek != dayOfWeek {
			continue
		}
		if excludeClassID != "" && c.ClassID == excludeClassID {
			continue
		}
		if c.Overlaps(startTime, endTime) {
			result = append(result, *c)
		}
	}
	return result, nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	enrollments []*model.Enrollment
	seq         int
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *model.Enrollment) error {
	for _, e := range m.enrollments {
		if e.ClassID == enrollment.ClassID && e.StudentID == enrollment.StudentID && e.Status == "active" {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	enrollment.EnrollmentID = fmt.Sprintf("enr-%d", m.seq)
	m.enrollments = append(m.enrollments, enrollment)
	return nil
}

func (m *mockEnrollmentRepo) GetActive(_ context.Context, classID, studentID string) (*model.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.ClassID == classID && e.StudentID == studentID && e.Status == "active" {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ListByClass(_ context.Context, classID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.ClassID == classID && e.Status == "active" {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.Status == "active" {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) CountActive(_ context.Context, classID string) (int64, error) {
	var count int64
	for _, e := range m.enrollments {
		if e.ClassID == classID && e.Status == "active" {
			count++
		}
	}
	return count, nil
}

func (m *mockEnrollmentRepo) Drop(_ context.Context, classID, studentID string) (int64, error) {
	for _, e := range m.enrollments {
		if e.ClassID == classID && e.StudentID == studentID && e.Status == "active" {
			e.Status = "dropped"
			return 1, nil
		}
	}
	return 0, nil
}

// ── Mock AttendanceRepository ──

// 台账以唯一三元组为键，复现数据库 upsert 语义
type mockAttendanceRepo struct {
	records map[string]*model.AttendanceRecord
	seq     int

	// failOnStudent 非空时，对该学生的写入返回错误（模拟外键失败）
	failOnStudent string
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.AttendanceRecord)}
}

func attendanceKey(classID, studentID string, date time.Time) string {
	return strings.Join([]string{classID, studentID, date.Format("2006-01-02")}, ":")
}

func (m *mockAttendanceRepo) upsertOne(record *model.AttendanceRecord) error {
	if m.failOnStudent != "" && record.StudentID == m.failOnStudent {
		return gorm.ErrForeignKeyViolated
	}
	key := attendanceKey(record.ClassID, record.StudentID, record.AttendanceDate)
	if existing, ok := m.records[key]; ok {
		existing.Status = record.Status
		existing.MarkedBy = record.MarkedBy
		existing.Notes = record.Notes
		existing.UpdatedAt = time.Now()
		return nil
	}
	m.seq++
	cp := *record
	cp.AttendanceID = fmt.Sprintf("att-%d", m.seq)
	m.records[key] = &cp
	return nil
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, record *model.AttendanceRecord) error {
	return m.upsertOne(record)
}

func (m *mockAttendanceRepo) BulkUpsert(_ context.Context, records []model.AttendanceRecord) error {
	// 模拟事务回滚：先暂存，任一条失败则丢弃全部
	staged := make(map[string]*model.AttendanceRecord, len(m.records))
	for k, v := range m.records {
		cp := *v
		staged[k] = &cp
	}
	for i := range records {
		if err := m.upsertOne(&records[i]); err != nil {
			m.records = staged
			return err
		}
	}
	return nil
}

func (m *mockAttendanceRepo) GetByKey(_ context.Context, classID, studentID string, date time.Time) (*model.AttendanceRecord, error) {
	if r, ok := m.records[attendanceKey(classID, studentID, date)]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) ListByClassAndDate(_ context.Context, classID string, date time.Time) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.ClassID == classID && r.AttendanceDate.Equal(date) {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListByStudent(_ context.Context, studentID string, f repository.AttendanceFilter) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.StudentID != studentID {
			continue
		}
		if f.ClassID != "" && r.ClassID != f.ClassID {
			continue
		}
		if f.StartDate != nil && r.AttendanceDate.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && r.AttendanceDate.After(*f.EndDate) {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

func (m *mockAttendanceRepo) GetClassStats(_ context.Context, classID string, start, end time.Time) (*repository.ClassStats, error) {
	stats := &repository.ClassStats{}
	studentSet := make(map[string]bool)
	dateSet := make(map[string]bool)
	total, present := 0, 0
	for _, r := range m.records {
		if r.ClassID != classID || r.AttendanceDate.Before(start) || r.AttendanceDate.After(end) {
			continue
		}
		studentSet[r.StudentID] = true
		dateSet[r.AttendanceDate.Format("2006-01-02")] = true
		total++
		switch r.Status {
		case model.StatusPresent:
			stats.TotalPresent++
			present++
		case model.StatusAbsent:
			stats.TotalAbsent++
		case model.StatusLate:
			stats.TotalLate++
		case model.StatusExcused:
			stats.TotalExcused++
		}
	}
	stats.TotalStudents = len(studentSet)
	stats.TotalSessions = len(dateSet)
	if total > 0 {
		stats.AvgAttendanceRate = float64(present) / float64(total) * 100
	}
	return stats, nil
}

// ── Mock CheckinRepository ──

type mockCheckinRepo struct {
	sessions map[string]*model.CheckinSession
	logs     []*model.ScanLog
	seq      int

	// attendance 指向同一聚合内的台账 mock，复现 RecordScan 单事务语义
	attendance *mockAttendanceRepo
}

func newMockCheckinRepo(attendance *mockAttendanceRepo) *mockCheckinRepo {
	return &mockCheckinRepo{
		sessions:   make(map[string]*model.CheckinSession),
		attendance: attendance,
	}
}

func (m *mockCheckinRepo) CreateSession(_ context.Context, session *model.CheckinSession) error {
	// 复现部分唯一索引：同 (班级, 日期) 已有活跃会话则冲突
	for _, s := range m.sessions {
		if s.ClassID == session.ClassID && s.AttendanceDate.Equal(session.AttendanceDate) && s.IsActive {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	session.SessionID = fmt.Sprintf("sess-%d", m.seq)
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockCheckinRepo) GetSessionByID(_ context.Context, id string) (*model.CheckinSession, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCheckinRepo) GetSessionByToken(_ context.Context, token string) (*model.CheckinSession, error) {
	for _, s := range m.sessions {
		if s.SessionToken == token {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCheckinRepo) GetActiveSession(_ context.Context, classID string, date time.Time, now time.Time) (*model.CheckinSession, error) {
	for _, s := range m.sessions {
		if s.ClassID == classID && s.AttendanceDate.Equal(date) && s.IsActive && s.ExpiresAt.After(now) {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCheckinRepo) DeactivateSession(_ context.Context, sessionID string) error {
	if s, ok := m.sessions[sessionID]; ok {
		s.IsActive = false
	}
	return nil
}

func (m *mockCheckinRepo) DeactivateExpired(_ context.Context, classID string, date time.Time, now time.Time) (int64, error) {
	var swept int64
	for _, s := range m.sessions {
		if s.ClassID == classID && s.AttendanceDate.Equal(date) && s.IsActive && !s.ExpiresAt.After(now) {
			s.IsActive = false
			swept++
		}
	}
	return swept, nil
}

func (m *mockCheckinRepo) RecordScan(_ context.Context, record *model.AttendanceRecord, log *model.ScanLog) error {
	// 台账失败则日志也不落，模拟同一事务
	if err := m.attendance.upsertOne(record); err != nil {
		return err
	}
	m.seq++
	log.ScanLogID = fmt.Sprintf("scan-%d", m.seq)
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockCheckinRepo) ListScanLogs(_ context.Context, sessionID string) ([]model.ScanLog, error) {
	var result []model.ScanLog
	for _, l := range m.logs {
		if l.SessionID == sessionID {
			result = append(result, *l)
		}
	}
	return result, nil
}

// ── 测试辅助：聚合 mock repos ──

type testRepos struct {
	user       *mockUserRepo
	student    *mockStudentRepo
	lecturer   *mockLecturerRepo
	course     *mockCourseRepo
	class      *mockClassRepo
	enrollment *mockEnrollmentRepo
	attendance *mockAttendanceRepo
	checkin    *mockCheckinRepo
}

func newTestRepos() *testRepos {
	attendance := newMockAttendanceRepo()
	return &testRepos{
		user:       newMockUserRepo(),
		student:    newMockStudentRepo(),
		lecturer:   newMockLecturerRepo(),
		course:     newMockCourseRepo(),
		class:      newMockClassRepo(),
		enrollment: newMockEnrollmentRepo(),
		attendance: attendance,
		checkin:    newMockCheckinRepo(attendance),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		User:       r.user,
		Student:    r.student,
		Lecturer:   r.lecturer,
		Course:     r.course,
		Class:      r.class,
		Enrollment: r.enrollment,
		Attendance: r.attendance,
		Checkin:    r.checkin,
	}
}

// seedClassroom 种子数据：1门课 + 1个班 + 2名已选课学生
func seedClassroom(repos *testRepos) {
	repos.course.courses["course-1"] = &model.Course{
		CourseID: "course-1", CourseCode: "CSC101", CourseName: "Introduction to Computing", IsActive: true,
	}
	repos.lecturer.lecturers["lect-1"] = &model.Lecturer{
		LecturerID: "lect-1", StaffNo: "STF001", FirstName: "Ada", LastName: "Obi",
	}
	repos.class.classes["class-1"] = &model.Class{
		ClassID: "class-1", CourseID: "course-1", LecturerID: "lect-1",
		ClassCode: "CSC101-A", DayOfWeek: "Monday",
		StartTime: "09:00", EndTime: "10:00",
		Location: "LT1", MaxStudents: 50, Semester: "2025/2026-1", IsActive: true,
	}
	repos.student.students["stu-1"] = &model.Student{
		StudentID: "stu-1", MatricNo: "MAT001", FirstName: "Bola", LastName: "Ade",
	}
	repos.student.students["stu-2"] = &model.Student{
		StudentID: "stu-2", MatricNo: "MAT002", FirstName: "Chidi", LastName: "Eze",
	}
	repos.enrollment.enrollments = []*model.Enrollment{
		{EnrollmentID: "enr-1", ClassID: "class-1", StudentID: "stu-1", Status: "active", EnrolledAt: time.Now()},
		{EnrollmentID: "enr-2", ClassID: "class-1", StudentID: "stu-2", Status: "active", EnrolledAt: time.Now()},
	}
}
