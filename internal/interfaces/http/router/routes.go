package router

import (
	"github.com/gin-gonic/gin"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/infrastructure/auth"
	"github.com/schoolhub/backend/internal/interfaces/http/handler"
	"github.com/schoolhub/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler mounted under the API prefix
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	School       *handler.SchoolHandler
	Student      *handler.StudentHandler
	Teacher      *handler.TeacherHandler
	Class        *handler.ClassHandler
	Subject      *handler.SubjectHandler
	Attendance   *handler.AttendanceHandler
	Exam         *handler.ExamHandler
	FeeStructure *handler.FeeStructureHandler
	Invoice      *handler.InvoiceHandler
	Inventory    *handler.InventoryHandler
	Announcement *handler.AnnouncementHandler
	Message      *handler.MessageHandler
	Statistics   *handler.StatisticsHandler
	Dashboard    *handler.DashboardHandler
	Report       *handler.ReportHandler
	System       *handler.SystemHandler

	// AuthLimiter throttles login and refresh per client IP. Optional.
	AuthLimiter *middleware.RateLimiter
}

// RegisterAPI registers every domain group on the router
func RegisterAPI(r *Router, h Handlers) *Router {
	for _, group := range h.Groups() {
		r.Register(group)
	}
	return r
}

// Groups builds the domain groups with their permission guards
func (h Handlers) Groups() []*DomainGroup {
	return []*DomainGroup{
		h.authRoutes(),
		h.systemRoutes(),
		h.userRoutes(),
		h.schoolRoutes(),
		h.settingsRoutes(),
		h.studentRoutes(),
		h.teacherRoutes(),
		h.classRoutes(),
		h.subjectRoutes(),
		h.attendanceRoutes(),
		h.examRoutes(),
		h.feeStructureRoutes(),
		h.invoiceRoutes(),
		h.inventoryRoutes(),
		h.announcementRoutes(),
		h.messageRoutes(),
		h.statisticsRoutes(),
		h.dashboardRoutes(),
		h.reportRoutes(),
	}
}

func (h Handlers) authRoutes() *DomainGroup {
	g := NewDomainGroup("auth", "/auth")
	if h.AuthLimiter != nil {
		g.POST("/login", middleware.AuthRateLimit(h.AuthLimiter), h.Auth.Login)
		g.POST("/refresh", middleware.AuthRateLimit(h.AuthLimiter), h.Auth.RefreshToken)
	} else {
		g.POST("/login", h.Auth.Login)
		g.POST("/refresh", h.Auth.RefreshToken)
	}
	g.POST("/logout", h.Auth.Logout)
	g.GET("/me", h.Auth.GetCurrentUser)
	g.PUT("/password", h.Auth.ChangePassword)
	return g
}

func (h Handlers) systemRoutes() *DomainGroup {
	g := NewDomainGroup("system", "")
	g.GET("/ping", h.System.Ping)
	g.GET("/system/info", h.System.GetSystemInfo)
	return g
}

func (h Handlers) userRoutes() *DomainGroup {
	g := NewDomainGroup("users", "/users")
	users := middleware.RequireResource(identity.ResourceUsers)
	update := middleware.RequirePermission(identity.ResourceUsers + ":" + identity.ActionUpdate)

	g.POST("", users, h.User.Create)
	g.GET("", users, h.User.List)
	g.GET("/:id", users, h.User.GetByID)
	g.PUT("/:id", users, h.User.Update)
	g.DELETE("/:id", users, h.User.Delete)
	g.POST("/:id/activate", update, h.User.Activate)
	g.POST("/:id/deactivate", update, h.User.Deactivate)
	g.POST("/:id/unlock", update, h.User.Unlock)
	g.POST("/:id/reset-password", middleware.RequirePermission(identity.PermUsersResetPass), h.User.ResetPassword)
	return g
}

func (h Handlers) schoolRoutes() *DomainGroup {
	g := NewDomainGroup("schools", "/schools").
		Use(middleware.RequireRole(identity.RoleSuperAdmin))

	g.POST("", h.School.Create)
	g.GET("", h.School.List)
	g.GET("/:id", h.School.GetByID)
	g.PUT("/:id", h.School.Update)
	g.DELETE("/:id", h.School.Delete)
	g.POST("/:id/suspend", h.School.Suspend)
	g.POST("/:id/activate", h.School.Activate)
	return g
}

func (h Handlers) settingsRoutes() *DomainGroup {
	g := NewDomainGroup("settings", "/settings").
		Use(middleware.RequireResource(identity.ResourceSettings))

	g.GET("", h.School.GetSettings)
	g.PUT("", h.School.UpdateSettings)
	return g
}

func (h Handlers) studentRoutes() *DomainGroup {
	g := NewDomainGroup("students", "/students")
	students := middleware.RequireResource(identity.ResourceStudents)
	update := middleware.RequirePermission(identity.ResourceStudents + ":" + identity.ActionUpdate)

	g.POST("", students, h.Student.Create)
	g.GET("", students, h.Student.List)
	g.GET("/mine", middleware.RequirePermission(identity.PermSelfRead), h.Student.Mine)
	g.GET("/export", middleware.RequirePermission(identity.PermReportsExport), h.Student.Export)
	g.POST("/import", middleware.RequirePermission(identity.PermStudentsImport), h.Student.Import)
	g.GET("/:id", students, h.Student.GetByID)
	g.PUT("/:id", students, h.Student.Update)
	g.DELETE("/:id", students, h.Student.Delete)
	g.PUT("/:id/class", update, h.Student.AssignClass)
	g.PUT("/:id/status", update, h.Student.ChangeStatus)

	examsRead := identity.ResourceExams + ":" + identity.ActionRead
	g.GET("/:id/results", selfOr(examsRead), h.Exam.StudentResults)
	g.GET("/:id/report-card", selfOr(examsRead), h.Exam.ReportCard)
	g.GET("/:id/report-card/pdf", selfOr(examsRead), h.Exam.ReportCardPDF)
	g.GET("/:id/invoices", selfOr(identity.ResourceInvoices+":"+identity.ActionRead), h.Invoice.StudentInvoices)
	return g
}

func (h Handlers) teacherRoutes() *DomainGroup {
	g := NewDomainGroup("teachers", "/teachers").
		Use(middleware.RequireResource(identity.ResourceTeachers))

	g.POST("", h.Teacher.Create)
	g.GET("", h.Teacher.List)
	g.GET("/:id", h.Teacher.GetByID)
	g.PUT("/:id", h.Teacher.Update)
	g.PUT("/:id/status", h.Teacher.ChangeStatus)
	g.DELETE("/:id", h.Teacher.Delete)
	return g
}

func (h Handlers) classRoutes() *DomainGroup {
	g := NewDomainGroup("classes", "/classes")
	classes := middleware.RequireResource(identity.ResourceClasses)
	update := middleware.RequirePermission(identity.ResourceClasses + ":" + identity.ActionUpdate)

	g.POST("", classes, h.Class.Create)
	g.GET("", classes, h.Class.List)
	g.GET("/mine", classes, h.Class.Mine)
	g.GET("/:id", classes, h.Class.GetByID)
	g.PUT("/:id", classes, h.Class.Update)
	g.DELETE("/:id", classes, h.Class.Delete)
	g.PUT("/:id/teacher", classes, h.Class.AssignTeacher)
	g.GET("/:id/subjects", classes, h.Class.ListSubjects)
	g.POST("/:id/subjects", update, h.Class.AssignSubject)
	g.DELETE("/:id/subjects/:subject_id", update, h.Class.RemoveSubject)
	return g
}

func (h Handlers) subjectRoutes() *DomainGroup {
	g := NewDomainGroup("subjects", "/subjects").
		Use(middleware.RequireResource(identity.ResourceSubjects))

	g.POST("", h.Subject.Create)
	g.GET("", h.Subject.List)
	g.GET("/:id", h.Subject.GetByID)
	g.PUT("/:id", h.Subject.Update)
	g.DELETE("/:id", h.Subject.Delete)
	return g
}

func (h Handlers) attendanceRoutes() *DomainGroup {
	g := NewDomainGroup("attendance", "/attendance")
	attendance := middleware.RequireResource(identity.ResourceAttendance)

	g.POST("", middleware.RequirePermission(identity.PermAttendanceMark), h.Attendance.Mark)
	g.GET("", attendance, h.Attendance.List)
	g.GET("/summary", attendance, h.Attendance.Summary)
	g.GET("/export", middleware.RequirePermission(identity.PermReportsExport), h.Attendance.Export)
	g.PUT("/:id", attendance, h.Attendance.Update)
	g.DELETE("/:id", attendance, h.Attendance.Delete)
	return g
}

func (h Handlers) examRoutes() *DomainGroup {
	g := NewDomainGroup("exams", "/exams")
	exams := middleware.RequireResource(identity.ResourceExams)
	update := middleware.RequirePermission(identity.ResourceExams + ":" + identity.ActionUpdate)

	g.POST("", exams, h.Exam.Create)
	g.GET("", exams, h.Exam.List)
	g.GET("/:id", exams, h.Exam.GetByID)
	g.PUT("/:id", exams, h.Exam.Update)
	g.DELETE("/:id", exams, h.Exam.Delete)
	g.POST("/:id/cancel", update, h.Exam.Cancel)
	g.POST("/:id/complete", update, h.Exam.Complete)
	g.POST("/:id/results", middleware.RequirePermission(identity.PermExamsGrade), h.Exam.RecordResults)
	g.GET("/:id/results", exams, h.Exam.ListResults)
	return g
}

func (h Handlers) feeStructureRoutes() *DomainGroup {
	g := NewDomainGroup("fee_structures", "/fee-structures")
	fees := middleware.RequireResource(identity.ResourceFeeStructures)
	update := middleware.RequirePermission(identity.ResourceFeeStructures + ":" + identity.ActionUpdate)

	g.POST("", fees, h.FeeStructure.Create)
	g.GET("", fees, h.FeeStructure.List)
	g.GET("/:id", fees, h.FeeStructure.GetByID)
	g.PUT("/:id", fees, h.FeeStructure.Update)
	g.DELETE("/:id", fees, h.FeeStructure.Delete)
	g.POST("/:id/activate", update, h.FeeStructure.Activate)
	g.POST("/:id/deactivate", update, h.FeeStructure.Deactivate)
	return g
}

func (h Handlers) invoiceRoutes() *DomainGroup {
	g := NewDomainGroup("invoices", "/invoices")
	invoices := middleware.RequireResource(identity.ResourceInvoices)

	g.POST("", invoices, h.Invoice.Create)
	g.GET("", invoices, h.Invoice.List)
	g.GET("/mine", middleware.RequirePermission(identity.PermSelfRead), h.Invoice.Mine)
	g.GET("/export", middleware.RequirePermission(identity.PermReportsExport), h.Invoice.Export)
	g.POST("/generate", invoices, h.Invoice.Generate)
	g.GET("/:id", invoices, h.Invoice.GetByID)
	g.PUT("/:id", invoices, h.Invoice.Update)
	g.DELETE("/:id", invoices, h.Invoice.Delete)
	g.POST("/:id/issue", middleware.RequirePermission(identity.PermInvoicesIssue), h.Invoice.Issue)
	g.POST("/:id/cancel", middleware.RequirePermission(identity.ResourceInvoices+":"+identity.ActionUpdate), h.Invoice.Cancel)
	g.POST("/:id/payments", middleware.RequirePermission(identity.PermInvoicesPay), h.Invoice.RecordPayment)
	g.GET("/:id/pdf", selfOr(identity.ResourceInvoices+":"+identity.ActionRead), h.Invoice.PDF)
	return g
}

func (h Handlers) inventoryRoutes() *DomainGroup {
	g := NewDomainGroup("inventory", "/inventory")
	items := g.Group("items", "/items")
	inventory := middleware.RequireResource(identity.ResourceInventory)

	items.POST("", inventory, h.Inventory.Create)
	items.GET("", inventory, h.Inventory.List)
	items.GET("/export", middleware.RequirePermission(identity.PermReportsExport), h.Inventory.Export)
	items.GET("/:id", inventory, h.Inventory.GetByID)
	items.PUT("/:id", inventory, h.Inventory.Update)
	items.DELETE("/:id", inventory, h.Inventory.Delete)
	items.POST("/:id/adjust", middleware.RequirePermission(identity.ResourceInventory+":"+identity.ActionUpdate), h.Inventory.AdjustStock)
	items.GET("/:id/movements", inventory, h.Inventory.Movements)
	return g
}

func (h Handlers) announcementRoutes() *DomainGroup {
	g := NewDomainGroup("announcements", "/announcements")
	announcements := middleware.RequireResource(identity.ResourceAnnouncements)
	update := middleware.RequirePermission(identity.ResourceAnnouncements + ":" + identity.ActionUpdate)

	g.POST("", announcements, h.Announcement.Create)
	g.GET("", announcements, h.Announcement.List)
	g.GET("/visible", announcements, h.Announcement.Visible)
	g.GET("/:id", announcements, h.Announcement.GetByID)
	g.PUT("/:id", announcements, h.Announcement.Update)
	g.DELETE("/:id", announcements, h.Announcement.Delete)
	g.POST("/:id/publish", update, h.Announcement.Publish)
	g.POST("/:id/archive", update, h.Announcement.Archive)
	return g
}

func (h Handlers) messageRoutes() *DomainGroup {
	g := NewDomainGroup("messages", "/messages")
	messages := middleware.RequireResource(identity.ResourceMessages)

	g.POST("", messages, h.Message.Send)
	g.GET("/inbox", messages, h.Message.Inbox)
	g.GET("/sent", messages, h.Message.Sent)
	g.GET("/unread-count", messages, h.Message.UnreadCount)
	g.POST("/attachments", messages, h.Message.AttachmentURL)
	g.GET("/:id", messages, h.Message.GetByID)
	g.DELETE("/:id", messages, h.Message.Delete)
	g.POST("/:id/read", middleware.RequirePermission(identity.ResourceMessages+":"+identity.ActionUpdate), h.Message.MarkRead)
	return g
}

func (h Handlers) statisticsRoutes() *DomainGroup {
	g := NewDomainGroup("statistics", "/statistics")
	statistics := middleware.RequireResource(identity.ResourceStatistics)

	g.GET("/overview", statistics, h.Statistics.Overview)
	g.GET("/attendance-trend", statistics, h.Statistics.AttendanceTrend)
	g.GET("/fee-trend", statistics, h.Statistics.FeeTrend)
	g.GET("/exam-performance", statistics, h.Statistics.ExamPerformance)
	g.GET("/enrollment", statistics, h.Statistics.Enrollment)
	g.GET("/platform", middleware.RequireRole(identity.RoleSuperAdmin), h.Statistics.Platform)
	return g
}

func (h Handlers) dashboardRoutes() *DomainGroup {
	return NewDomainGroup("dashboard", "/dashboard").
		GET("", middleware.RequireResource(identity.ResourceDashboard), h.Dashboard.Get)
}

func (h Handlers) reportRoutes() *DomainGroup {
	g := NewDomainGroup("reports", "/reports").
		Use(middleware.RequirePermission(identity.PermReportsExport))

	g.GET("/export", h.Report.Export)
	g.POST("/archive", h.Report.Archive)
	return g
}

// selfOr lets staff through on permission and lets students and parents
// through on self:read. The service narrows the latter to their own records.
func selfOr(permission string) gin.HandlerFunc {
	return middleware.RequireCustomPermission(func(claims *auth.Claims, _ *gin.Context) bool {
		if claims.HasPermission(permission) {
			return true
		}
		return !claims.GetRole().IsStaff() && claims.HasPermission(identity.PermSelfRead)
	})
}
