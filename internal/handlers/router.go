package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexlearn/campus-rewards/internal/auth"
	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/services"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

type HandlerManager struct {
	userHandler         *UserHandler
	taskHandler         *TaskHandler
	quizHandler         *QuizHandler
	redemptionHandler   *RedemptionHandler
	voucherHandler      *VoucherHandler
	rankingHandler      *RankingHandler
	reportHandler       *ReportHandler
	notificationHandler *NotificationHandler

	authenticator *auth.Authenticator
}

func NewHandlerManager(
	sm *services.ServiceManager,
	authenticator *auth.Authenticator,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		userHandler:         NewUserHandler(sm.Users, logger),
		taskHandler:         NewTaskHandler(sm.Tasks, sm.Ledger, logger),
		quizHandler:         NewQuizHandler(sm.Quiz, logger),
		redemptionHandler:   NewRedemptionHandler(sm.Ledger, validator, logger),
		voucherHandler:      NewVoucherHandler(sm.Vouchers, logger),
		rankingHandler:      NewRankingHandler(sm.Rankings, logger),
		reportHandler:       NewReportHandler(sm.Exports, logger),
		notificationHandler: NewNotificationHandler(sm.Notifications, logger),
		authenticator:       authenticator,
	}
}

// HealthCheck reports process liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authenticator.Middleware())

	staffLevel := auth.RequireRoles(models.RoleStaff, models.RoleAdmin, models.RoleSuperAdmin)
	teacherLevel := auth.RequireRoles(models.RoleTeacher, models.RoleAdmin, models.RoleSuperAdmin)
	adminLevel := auth.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
	studentOnly := auth.RequireRoles(models.RoleStudent)

	// User management
	users := v1.Group("/users")
	{
		users.GET("/me", hm.userHandler.GetMe)
		users.POST("", adminLevel, hm.userHandler.CreateUser)
		users.GET("", teacherLevel, hm.userHandler.ListUsers)
		users.GET("/:id", teacherLevel, hm.userHandler.GetUser)
		users.PUT("/:id", adminLevel, hm.userHandler.UpdateUser)
		users.DELETE("/:id", adminLevel, hm.userHandler.DeactivateUser)
	}

	// Tasks and submissions
	tasks := v1.Group("/tasks")
	{
		tasks.GET("", hm.taskHandler.ListTasks)
		tasks.GET("/:id", hm.taskHandler.GetTask)
		tasks.GET("/:id/attachment", hm.taskHandler.GetTaskAttachment)
		tasks.POST("", teacherLevel, hm.taskHandler.CreateTask)
		tasks.DELETE("/:id", teacherLevel, hm.taskHandler.DeleteTask)
		tasks.POST("/:id/submissions", studentOnly, hm.taskHandler.SubmitTask)
	}

	submissions := v1.Group("/submissions")
	{
		submissions.GET("", hm.taskHandler.ListSubmissions)
		submissions.GET("/:id", hm.taskHandler.GetSubmission)
		submissions.POST("/:id/grade", teacherLevel, hm.taskHandler.GradeSubmission)
		submissions.POST("/:id/reject", teacherLevel, hm.taskHandler.RejectSubmission)
	}

	// Verification quiz
	quiz := v1.Group("/quiz")
	{
		quiz.POST("/start", studentOnly, hm.quizHandler.StartQuiz)
		quiz.POST("/answer", studentOnly, hm.quizHandler.SubmitAnswer)
		quiz.POST("/focus-event", studentOnly, hm.quizHandler.ReportFocusEvent)
		quiz.POST("/abandon", studentOnly, hm.quizHandler.AbandonQuiz)
		quiz.GET("/status", studentOnly, hm.quizHandler.GetStatus)
		quiz.POST("/unlock/:student_id", teacherLevel, hm.quizHandler.UnlockStudent)
	}

	// Points and redemptions
	points := v1.Group("/points")
	{
		points.GET("/balance", studentOnly, hm.redemptionHandler.GetMyBalance)
		points.GET("/history", hm.redemptionHandler.GetHistory)
		points.POST("/adjust/:student_id", staffLevel, hm.redemptionHandler.AdjustPoints)
	}

	redemptions := v1.Group("/redemptions")
	{
		redemptions.POST("", studentOnly, hm.redemptionHandler.Redeem)
		redemptions.GET("", hm.redemptionHandler.ListRedemptions)
		redemptions.GET("/code/:code", staffLevel, hm.redemptionHandler.GetRedemptionByCode)
		redemptions.POST("/:id/process", staffLevel, hm.redemptionHandler.ProcessRedemption)
	}

	vouchers := v1.Group("/vouchers")
	{
		vouchers.GET("", hm.voucherHandler.ListLevels)
		vouchers.POST("", adminLevel, hm.voucherHandler.CreateLevel)
		vouchers.PUT("/:id", adminLevel, hm.voucherHandler.UpdateLevel)
		vouchers.DELETE("/:id", adminLevel, hm.voucherHandler.DeleteLevel)
	}

	// Rankings
	rankings := v1.Group("/rankings")
	{
		rankings.GET("", hm.rankingHandler.GetRankings)
		rankings.GET("/me", studentOnly, hm.rankingHandler.GetMyRank)
		rankings.GET("/:student_id", teacherLevel, hm.rankingHandler.GetStudentRank)
	}

	// Staff reports
	reports := v1.Group("/reports", staffLevel)
	{
		reports.GET("/redemptions.xlsx", hm.reportHandler.RedemptionsReport)
		reports.GET("/history.csv", hm.reportHandler.HistoryReport)
	}

	// Notifications
	notifications := v1.Group("/notifications")
	{
		notifications.GET("", hm.notificationHandler.ListNotifications)
		notifications.POST("/:id/read", hm.notificationHandler.MarkRead)
	}
}
