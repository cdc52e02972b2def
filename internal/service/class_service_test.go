package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"attend-ease/backend/internal/dto"
	"attend-ease/backend/internal/model"
	pkgerrors "attend-ease/backend/pkg/errors"
)

// ── 测试辅助 ──

func setupTestClassService() (ClassService, *testRepos) {
	repos := newTestRepos()
	seedClassroom(repos)
	svc := NewClassService(repos.toRepository(), zap.NewNop())
	return svc, repos
}

// ════════════════════════════════════════════════════════════
// 冲突检测测试
// ════════════════════════════════════════════════════════════

func TestClassService_Create_RejectsOverlap(t *testing.T) {
	svc, _ := setupTestClassService()

	// 已有班级 Monday 09:00-10:00，候选 09:30-10:30 重叠
	_, err := svc.Create(context.Background(), "lect-1", &dto.CreateClassRequest{
		CourseID: "course-1", ClassCode: "CSC101-B",
		DayOfWeek: "Monday", StartTime: "09:30", EndTime: "10:30",
		Location: "LT2", Semester: "2025/2026-1",
	})

	var conflictErr *pkgerrors.ScheduleConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("期望 ScheduleConflictError，实际=%v", err)
	}
	if len(conflictErr.Conflicts) != 1 {
		t.Fatalf("期望 1 个冲突区间，实际=%d", len(conflictErr.Conflicts))
	}
	if conflictErr.Conflicts[0].ClassID != "class-1" {
		t.Errorf("冲突应指向 class-1，实际=%s", conflictErr.Conflicts[0].ClassID)
	}
}

func TestClassService_Create_BackToBackNoConflict(t *testing.T) {
	svc, _ := setupTestClassService()

	// 半开区间：10:00 结束与 10:00 开始背靠背，不算冲突
	resp, err := svc.Create(context.Background(), "lect-1", &dto.CreateClassRequest{
		CourseID: "course-1", ClassCode: "CSC101-B",
		DayOfWeek: "Monday", StartTime: "10:00", EndTime: "11:00",
		Location: "LT2", Semester: "2025/2026-1",
	})
	if err != nil {
		t.Fatalf("背靠背班级应创建成功: %v", err)
	}
	if resp.StartTime != "10:00" {
		t.Errorf("start_time 不符，实际=%s", resp.StartTime)
	}
}

func TestClassService_Create_DifferentDayNoConflict(t *testing.T) {
	svc, _ := setupTestClassService()

	_, err := svc.Create(context.Background(), "lect-1", &dto.CreateClassRequest{
		CourseID: "course-1", ClassCode: "CSC101-B",
		DayOfWeek: "Tuesday", StartTime: "09:00", EndTime: "10:00",
		Location: "LT2", Semester: "2025/2026-1",
	})
	if err != nil {
		t.Fatalf("不同天同时段应创建成功: %v", err)
	}
}

func TestClassService_CheckConflicts_ReadOnly(t *testing.T) {
	svc, repos := setupTestClassService()

	conflicts, err := svc.CheckConflicts(context.Background(), "lect-1", &dto.ConflictCheckRequest{
		DayOfWeek: "Monday", StartTime: "08:30", EndTime: "09:30",
	})
	if err != nil {
		t.Fatalf("CheckConflicts 应成功: %v", err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("期望 1 个冲突，实际=%d", len(conflicts))
	}
	// 只读操作不应改变班级数量
	if len(repos.class.classes) != 1 {
		t.Error("冲突检测不应产生写入")
	}
}

func TestClassService_CheckConflicts_ExcludeSelf(t *testing.T) {
	svc, _ := setupTestClassService()

	// 更新场景：排除自身后与自己的旧时段不算冲突
	conflicts, err := svc.CheckConflicts(context.Background(), "lect-1", &dto.ConflictCheckRequest{
		DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00",
		ExcludeClassID: "class-1",
	})
	if err != nil {
		t.Fatalf("CheckConflicts 应成功: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("排除自身后应无冲突，实际=%d", len(conflicts))
	}
}

func TestClassService_Update_RescheduleConflict(t *testing.T) {
	svc, repos := setupTestClassService()
	repos.class.classes["class-2"] = &model.Class{
		ClassID: "class-2", CourseID: "course-1", LecturerID: "lect-1",
		ClassCode: "CSC101-B", DayOfWeek: "Monday",
		StartTime: "11:00", EndTime: "12:00",
		Location: "LT2", MaxStudents: 50, Semester: "2025/2026-1", IsActive: true,
	}

	// 把 class-2 改到与 class-1 重叠的时段
	start := "09:30"
	end := "10:30"
	_, err := svc.Update(context.Background(), "class-2", "lect-1", model.RoleLecturer, &dto.UpdateClassRequest{
		StartTime: &start, EndTime: &end,
	})
	var conflictErr *pkgerrors.ScheduleConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("期望 ScheduleConflictError，实际=%v", err)
	}
}

func TestClassService_Create_InvalidTimeRange(t *testing.T) {
	svc, _ := setupTestClassService()

	cases := []struct {
		name       string
		start, end string
	}{
		{"起止颠倒", "10:00", "09:00"},
		{"起止相等", "09:00", "09:00"},
		{"格式非法", "9am", "10am"},
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), "lect-1", &dto.CreateClassRequest{
			CourseID: "course-1", ClassCode: "CSC101-X",
			DayOfWeek: "Friday", StartTime: tc.start, EndTime: tc.end,
			Location: "LT2", Semester: "2025/2026-1",
		})
		if !errors.Is(err, ErrInvalidTimeRange) {
			t.Errorf("%s: 期望 ErrInvalidTimeRange，实际=%v", tc.name, err)
		}
	}
}

func TestClassService_Create_InvalidWeekday(t *testing.T) {
	svc, _ := setupTestClassService()

	_, err := svc.Create(context.Background(), "lect-1", &dto.CreateClassRequest{
		CourseID: "course-1", ClassCode: "CSC101-X",
		DayOfWeek: "Funday", StartTime: "09:00", EndTime: "10:00",
		Location: "LT2", Semester: "2025/2026-1",
	})
	if !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("期望 ErrInvalidWeekday，实际=%v", err)
	}
}

// ════════════════════════════════════════════════════════════
// 选课测试
// ════════════════════════════════════════════════════════════

func TestClassService_Enroll_Duplicate(t *testing.T) {
	svc, _ := setupTestClassService()

	err := svc.Enroll(context.Background(), "class-1", "stu-1")
	if !errors.Is(err, ErrAlreadyEnrolled) {
		t.Errorf("期望 ErrAlreadyEnrolled，实际=%v", err)
	}
}

func TestClassService_Enroll_ClassFull(t *testing.T) {
	svc, repos := setupTestClassService()
	repos.class.classes["class-1"].MaxStudents = 2
	repos.student.students["stu-3"] = &model.Student{StudentID: "stu-3", MatricNo: "MAT003"}

	err := svc.Enroll(context.Background(), "class-1", "stu-3")
	if !errors.Is(err, ErrClassFull) {
		t.Errorf("期望 ErrClassFull，实际=%v", err)
	}
}

func TestClassService_Unenroll(t *testing.T) {
	svc, _ := setupTestClassService()
	ctx := context.Background()

	if err := svc.Unenroll(ctx, "class-1", "stu-1"); err != nil {
		t.Fatalf("退课应成功: %v", err)
	}
	// 再退一次：已无有效选课
	if err := svc.Unenroll(ctx, "class-1", "stu-1"); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("期望 ErrNotEnrolled，实际=%v", err)
	}
	// 退课后可重新选课
	if err := svc.Enroll(ctx, "class-1", "stu-1"); err != nil {
		t.Errorf("退课后重新选课应成功: %v", err)
	}
}

func TestClassService_GetStudents_WithAttendanceRate(t *testing.T) {
	svc, repos := setupTestClassService()
	ctx := context.Background()

	attendanceSvc := NewAttendanceService(repos.toRepository(), zap.NewNop())
	seeds := []struct {
		date   string
		status string
	}{
		{"2025-09-01", model.StatusPresent},
		{"2025-09-08", model.StatusAbsent},
	}
	for _, seed := range seeds {
		if _, err := attendanceSvc.Mark(ctx, "lect-1", &dto.MarkAttendanceRequest{
			ClassID: "class-1", StudentID: "stu-1", AttendanceDate: seed.date, Status: seed.status,
		}); err != nil {
			t.Fatalf("录入失败: %v", err)
		}
	}

	students, err := svc.GetStudents(ctx, "class-1")
	if err != nil {
		t.Fatalf("GetStudents 应成功: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("期望 2 名学生，实际=%d", len(students))
	}
	for _, stu := range students {
		if stu.StudentID != "stu-1" {
			continue
		}
		if stu.TotalSessions != 2 || stu.PresentCount != 1 {
			t.Errorf("stu-1 统计不符: total=%d present=%d", stu.TotalSessions, stu.PresentCount)
		}
		if stu.AttendanceRate != 50 {
			t.Errorf("期望出勤率 50，实际=%v", stu.AttendanceRate)
		}
	}
}

// ════════════════════════════════════════════════════════════
// 权限测试
// ════════════════════════════════════════════════════════════

func TestClassService_Update_NotOwner(t *testing.T) {
	svc, _ := setupTestClassService()

	location := "LT9"
	_, err := svc.Update(context.Background(), "class-1", "lect-2", model.RoleLecturer, &dto.UpdateClassRequest{
		Location: &location,
	})
	if !errors.Is(err, ErrNotClassOwner) {
		t.Errorf("期望 ErrNotClassOwner，实际=%v", err)
	}
}

func TestClassService_Deactivate_AdminOverride(t *testing.T) {
	svc, repos := setupTestClassService()

	if err := svc.Deactivate(context.Background(), "class-1", "admin-1", model.RoleAdmin); err != nil {
		t.Fatalf("admin 停用应成功: %v", err)
	}
	if repos.class.classes["class-1"].IsActive {
		t.Error("班级应已停用")
	}
}
