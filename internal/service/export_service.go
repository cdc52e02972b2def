package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"attend-ease/backend/internal/model"
	"attend-ease/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRecords    = errors.New("所选区间内无考勤记录")
	ErrExportNoClasses    = errors.New("暂无可导出的课表")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 考勤表导出为 Excel (.xlsx)：行为学生，列为上课日期，单元格为考勤状态
//   - 课表导出为 iCalendar (.ics)：每个班级一个每周重复的 VEVENT
//   - Excel 以 bytes.Buffer 返回，ICS 以序列化字符串返回，
//     均由 Handler 层设置响应头后写入 Response
type ExportService interface {
	// ExportClassAttendance 导出班级考勤矩阵为 Excel
	ExportClassAttendance(ctx context.Context, classID, startDate, endDate string) (*bytes.Buffer, string, error)
	// ExportStudentTimetable 导出学生课表为 ICS
	ExportStudentTimetable(ctx context.Context, studentID string) (string, string, error)
	// ExportLecturerTimetable 导出讲师课表为 ICS
	ExportLecturerTimetable(ctx context.Context, lecturerID string) (string, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportClassAttendance — 导出班级考勤矩阵为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行：班级代码 + 课程名
//   - 表头: | 学号 | 姓名 | <日期1> | <日期2> | … | 出勤率 |
//   - 单元格：Present / Absent / Late / Excused，无记录为 "-"

func (s *exportService) ExportClassAttendance(ctx context.Context, classID, startDate, endDate string) (*bytes.Buffer, string, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, "", err
	}

	// 1. 查询区间内全部考勤记录
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Now().AddDate(0, 0, 1)
	if startDate != "" {
		if start, err = time.Parse(dateLayout, startDate); err != nil {
			return nil, "", ErrInvalidDate
		}
	}
	if endDate != "" {
		if end, err = time.Parse(dateLayout, endDate); err != nil {
			return nil, "", ErrInvalidDate
		}
	}

	enrollments, err := s.repo.Enrollment.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询班级学生失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 构建数据索引: "studentID:date" → status，并收集唯一日期
	statusIndex := make(map[string]string)
	dateSet := make(map[string]bool)
	for i := range enrollments {
		records, err := s.repo.Attendance.ListByStudent(ctx, enrollments[i].StudentID, repository.AttendanceFilter{
			ClassID:   classID,
			StartDate: &start,
			EndDate:   &end,
		})
		if err != nil {
			return nil, "", err
		}
		for j := range records {
			day := formatDate(records[j].AttendanceDate)
			statusIndex[records[j].StudentID+":"+day] = records[j].Status
			dateSet[day] = true
		}
	}
	if len(dateSet) == 0 {
		return nil, "", ErrExportNoRecords
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "考勤表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "B", 22)
	for i := range dates {
		col, _ := excelize.ColumnNumberToName(3 + i)
		f.SetColWidth(sheetName, col, col, 12)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	title := class.ClassCode
	if class.Course != nil {
		title = fmt.Sprintf("%s — %s", class.ClassCode, class.Course.CourseName)
	}
	f.SetCellValue(sheetName, "A1", title)
	lastCol, _ := excelize.ColumnNumberToName(3 + len(dates))
	f.MergeCell(sheetName, "A1", fmt.Sprintf("%s1", lastCol))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "学号")
	f.SetCellValue(sheetName, cell("B", row), "姓名")
	for i, d := range dates {
		col, _ := excelize.ColumnNumberToName(3 + i)
		f.SetCellValue(sheetName, cell(col, row), d)
	}
	f.SetCellValue(sheetName, cell(lastCol, row), "出勤率")

	// 数据行
	row = 3
	for i := range enrollments {
		e := &enrollments[i]
		if e.Student == nil {
			continue
		}
		f.SetCellValue(sheetName, cell("A", row), e.Student.MatricNo)
		f.SetCellValue(sheetName, cell("B", row), e.Student.FullName())

		present, total := 0, 0
		for j, d := range dates {
			col, _ := excelize.ColumnNumberToName(3 + j)
			status, ok := statusIndex[e.StudentID+":"+d]
			if !ok {
				f.SetCellValue(sheetName, cell(col, row), "-")
				continue
			}
			f.SetCellValue(sheetName, cell(col, row), status)
			total++
			if status == model.StatusPresent {
				present++
			}
		}
		rate := "-"
		if total > 0 {
			rate = fmt.Sprintf("%.1f%%", float64(present)/float64(total)*100)
		}
		f.SetCellValue(sheetName, cell(lastCol, row), rate)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance_%s.xlsx", class.ClassCode)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportStudentTimetable / ExportLecturerTimetable — 导出课表为 ICS
// ═══════════════════════════════════════════════════════════
//
// 每个班级生成一个 FREQ=WEEKLY 的 VEVENT，DTSTART 取下一次上课时间

func (s *exportService) ExportStudentTimetable(ctx context.Context, studentID string) (string, string, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrStudentNotFound
		}
		return "", "", err
	}

	enrollments, err := s.repo.Enrollment.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询学生选课失败", zap.Error(err))
		return "", "", err
	}

	classes := make([]model.Class, 0, len(enrollments))
	for i := range enrollments {
		if enrollments[i].Class != nil {
			classes = append(classes, *enrollments[i].Class)
		}
	}

	content, err := s.buildTimetableICS(classes)
	if err != nil {
		return "", "", err
	}
	return content, fmt.Sprintf("timetable_%s.ics", student.MatricNo), nil
}

func (s *exportService) ExportLecturerTimetable(ctx context.Context, lecturerID string) (string, string, error) {
	lecturer, err := s.repo.Lecturer.GetByID(ctx, lecturerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrLecturerNotFound
		}
		return "", "", err
	}

	classes, err := s.repo.Class.List(ctx, repository.ClassFilter{LecturerID: lecturerID})
	if err != nil {
		s.logger.Error("查询讲师班级失败", zap.Error(err))
		return "", "", err
	}

	content, err := s.buildTimetableICS(classes)
	if err != nil {
		return "", "", err
	}
	return content, fmt.Sprintf("timetable_%s.ics", lecturer.StaffNo), nil
}

// buildTimetableICS 将班级列表序列化为 iCalendar 内容
func (s *exportService) buildTimetableICS(classes []model.Class) (string, error) {
	if len(classes) == 0 {
		return "", ErrExportNoClasses
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//AttendEase//Timetable//EN")

	now := time.Now()
	for i := range classes {
		c := &classes[i]
		start, end, err := nextOccurrence(c, now)
		if err != nil {
			s.logger.Warn("班级时间格式异常, 跳过",
				zap.String("class_id", c.ClassID),
				zap.Error(err))
			continue
		}

		summary := c.ClassCode
		if c.Course != nil {
			summary = fmt.Sprintf("%s %s", c.Course.CourseCode, c.Course.CourseName)
		}

		evt := cal.AddEvent(fmt.Sprintf("%s@attend-ease", c.ClassID))
		evt.SetDtStampTime(now)
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		evt.SetSummary(summary)
		evt.SetLocation(c.Location)
		evt.AddRrule(fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s", icsWeekday(c.DayOfWeek)))
	}

	return cal.Serialize(), nil
}

// ── 辅助函数 ──

// nextOccurrence 计算班级从 now 起的下一次上课起止时间
func nextOccurrence(c *model.Class, now time.Time) (time.Time, time.Time, error) {
	startClock, err := time.Parse(timeLayout, c.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endClock, err := time.Parse(timeLayout, c.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	target, ok := weekdayByName(c.DayOfWeek)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("非法星期名: %s", c.DayOfWeek)
	}

	daysAhead := (int(target) - int(now.Weekday()) + 7) % 7
	day := now.AddDate(0, 0, daysAhead)
	start := time.Date(day.Year(), day.Month(), day.Day(), startClock.Hour(), startClock.Minute(), 0, 0, now.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), endClock.Hour(), endClock.Minute(), 0, 0, now.Location())
	if daysAhead == 0 && end.Before(now) {
		start = start.AddDate(0, 0, 7)
		end = end.AddDate(0, 0, 7)
	}
	return start, end, nil
}

func weekdayByName(name string) (time.Weekday, bool) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if wd.String() == name {
			return wd, true
		}
	}
	return 0, false
}

// icsWeekday 英文星期名 → RRULE BYDAY 两字母缩写
func icsWeekday(name string) string {
	byday := map[string]string{
		"Monday": "MO", "Tuesday": "TU", "Wednesday": "WE", "Thursday": "TH",
		"Friday": "FR", "Saturday": "SA", "Sunday": "SU",
	}
	if v, ok := byday[name]; ok {
		return v
	}
	return "MO"
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
