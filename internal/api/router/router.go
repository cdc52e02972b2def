package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attend-ease/backend/config"
	"attend-ease/backend/internal/api/handler"
	"attend-ease/backend/internal/api/middleware"
	"attend-ease/backend/pkg/jwt"
	"attend-ease/backend/pkg/redis"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 登录、注册与扫码接口单独限流
	authLimit := middleware.RateLimit(rdb, 10, time.Minute)
	scanLimit := middleware.RateLimit(rdb, 30, time.Minute)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authLimit, h.Auth.Register)
			auth.POST("/login", authLimit, h.Auth.Login)
		}

		// 签到码校验（扫码页在登录前也能预检）
		v1.POST("/checkin/validate", scanLimit, h.Checkin.Validate)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.List)
				courses.GET("/:id", h.Course.Get)
				courses.POST("", middleware.RoleAuth("admin"), h.Course.Create)
				courses.PUT("/:id", middleware.RoleAuth("admin"), h.Course.Update)
				courses.DELETE("/:id", middleware.RoleAuth("admin"), h.Course.Deactivate)
			}

			// 班级模块
			classes := authorized.Group("/classes")
			{
				classes.GET("", h.Class.List)
				classes.GET("/:id", h.Class.Get)
				classes.POST("", middleware.RoleAuth("lecturer", "admin"), h.Class.Create)
				classes.PUT("/:id", middleware.RoleAuth("lecturer", "admin"), h.Class.Update)
				classes.DELETE("/:id", middleware.RoleAuth("lecturer", "admin"), h.Class.Deactivate)
				classes.POST("/conflicts", middleware.RoleAuth("lecturer", "admin"), h.Class.CheckConflicts)
				classes.POST("/:id/enroll", h.Class.Enroll) // 学生仅能操作本人（Handler 层鉴权）
				classes.DELETE("/:id/enroll/:student_id", h.Class.Unenroll)
				classes.GET("/:id/students", middleware.RoleAuth("lecturer", "admin"), h.Class.GetStudents)
			}

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("", middleware.RoleAuth("lecturer", "admin"), h.Attendance.Mark)
				attendance.POST("/bulk", middleware.RoleAuth("lecturer", "admin"), h.Attendance.MarkBulk)
				attendance.GET("/class/:class_id", middleware.RoleAuth("lecturer", "admin"), h.Attendance.GetClassAttendance)
				attendance.GET("/class/:class_id/stats", middleware.RoleAuth("lecturer", "admin"), h.Attendance.GetClassStats)
				attendance.GET("/student/:student_id", h.Attendance.GetStudentAttendance) // 学生仅能查本人
			}

			// 签到模块
			checkin := authorized.Group("/checkin")
			{
				checkin.POST("/sessions", middleware.RoleAuth("lecturer", "admin"), h.Checkin.Issue)
				checkin.DELETE("/sessions/:id", middleware.RoleAuth("lecturer", "admin"), h.Checkin.Deactivate)
				checkin.GET("/sessions/active", middleware.RoleAuth("lecturer", "admin"), h.Checkin.GetActiveSession)
				checkin.GET("/sessions/:id/logs", middleware.RoleAuth("lecturer", "admin"), h.Checkin.GetScanLogs)
				checkin.POST("/scan", scanLimit, middleware.RoleAuth("student"), h.Checkin.Scan)
			}

			// 学生档案模块
			students := authorized.Group("/students")
			{
				students.GET("", middleware.RoleAuth("lecturer", "admin"), h.Student.List)
				students.GET("/:id", h.Student.Get)
				students.PUT("/:id", h.Student.Update) // admin 或本人（Handler 层鉴权）
			}

			// 讲师档案模块
			lecturers := authorized.Group("/lecturers")
			{
				lecturers.GET("", middleware.RoleAuth("admin"), h.Lecturer.List)
				lecturers.GET("/:id", h.Lecturer.Get)
				lecturers.PUT("/:id", h.Lecturer.Update) // admin 或本人（Handler 层鉴权）
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/attendance/:class_id", middleware.RoleAuth("lecturer", "admin"), h.Export.ExportClassAttendance)
				export.GET("/timetable", h.Export.ExportTimetable)
			}
		}
	}

	return r
}
