package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/config"
	"aptcare/backend/internal/api/handler"
	"aptcare/backend/internal/api/middleware"
	"aptcare/backend/internal/api/validation"
	"aptcare/backend/internal/model"
	"aptcare/backend/pkg/jwt"
	"aptcare/backend/pkg/redis"
)

const uploadLimitBytes = 50 << 20

var (
	admin        = string(model.RoleAdmin)
	manager      = string(model.RoleManager)
	receptionist = string(model.RoleReceptionist)
	lead         = string(model.RoleTechnicianLead)
	technician   = string(model.RoleTechnician)
	resident     = string(model.RoleResident)
)

// Setup builds the gin engine. rdb may be nil: blacklist and rate limiting are then skipped.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	validation.Register()

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitMB<<20, uploadLimitBytes))

	r.GET("/health", healthCheck(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}
	limit := middleware.RateLimit(limiter, cfg.Server.RateLimitRPM, time.Minute)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth", limit)
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist), limit)

		staff := middleware.RoleAuth(admin, manager, receptionist, lead, technician)
		office := middleware.RoleAuth(admin, manager, receptionist)
		managers := middleware.RoleAuth(admin, manager)
		leads := middleware.RoleAuth(admin, manager, lead)
		field := middleware.RoleAuth(lead, technician)

		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
			authorized.POST("/auth/devices", h.Auth.RegisterDevice)
			authorized.DELETE("/auth/devices/:token", h.Auth.RemoveDevice)

			users := authorized.Group("/users", office)
			{
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.POST("", managers, h.User.CreateUser)
				users.PUT("/:id", managers, h.User.UpdateUser)
				users.PUT("/:id/activate", managers, h.User.ActivateUser)
				users.PUT("/:id/deactivate", managers, h.User.DeactivateUser)
				users.POST("/:id/reset-password", managers, h.User.ResetPassword)
			}

			floors := authorized.Group("/floors")
			{
				floors.GET("", h.Floor.ListFloors)
				floors.GET("/:id", h.Floor.GetFloor)
				floors.POST("", managers, h.Floor.CreateFloor)
				floors.PUT("/:id", managers, h.Floor.UpdateFloor)
				floors.PUT("/:id/activate", managers, h.Floor.ActivateFloor)
				floors.PUT("/:id/deactivate", managers, h.Floor.DeactivateFloor)
			}

			apartments := authorized.Group("/apartments")
			{
				apartments.GET("", staff, h.Apartment.ListApartments)
				apartments.GET("/:id", h.Apartment.GetApartment)
				apartments.POST("", managers, h.Apartment.CreateApartment)
				apartments.PUT("/:id", managers, h.Apartment.UpdateApartment)
				apartments.PUT("/:id/activate", managers, h.Apartment.ActivateApartment)
				apartments.PUT("/:id/deactivate", managers, h.Apartment.DeactivateApartment)
				apartments.GET("/:id/residents", staff, h.Apartment.ListResidents)
				apartments.POST("/:id/residents", office, h.Apartment.AddResident)
				apartments.DELETE("/:id/residents/:user_id", office, h.Apartment.RemoveResident)
			}

			techniques := authorized.Group("/techniques")
			{
				techniques.GET("", h.Technique.ListTechniques)
				techniques.GET("/:id", h.Technique.GetTechnique)
				techniques.POST("", managers, h.Technique.CreateTechnique)
				techniques.PUT("/:id", managers, h.Technique.UpdateTechnique)
				techniques.DELETE("/:id", managers, h.Technique.DeleteTechnique)
			}

			technicians := authorized.Group("/technicians")
			{
				technicians.POST("/techniques", leads, h.Technique.AssignToTechnician)
				technicians.PUT("/techniques", leads, h.Technique.UpdateTechnician)
				technicians.GET("/me/work-orders", field, h.Appointment.MyWorkOrders)
				technicians.GET("/me/calendar.ics", field, h.Appointment.MyCalendar)
				technicians.GET("/:id/techniques", staff, h.Technique.ListByTechnician)
				technicians.DELETE("/:id/techniques/:technique_id", leads, h.Technique.RemoveFromTechnician)
				technicians.GET("/:id/work-orders", leads, h.Appointment.WorkOrders)
			}

			issues := authorized.Group("/issues")
			{
				issues.GET("", h.Issue.ListIssues)
				issues.GET("/:id", h.Issue.GetIssue)
				issues.POST("", managers, h.Issue.CreateIssue)
				issues.PUT("/:id", managers, h.Issue.UpdateIssue)
				issues.PUT("/:id/activate", managers, h.Issue.ActivateIssue)
				issues.PUT("/:id/deactivate", managers, h.Issue.DeactivateIssue)
			}

			accessories := authorized.Group("/accessories", staff)
			{
				accessories.GET("", h.Accessory.ListAccessories)
				accessories.GET("/:id", h.Accessory.GetAccessory)
				accessories.POST("", managers, h.Accessory.CreateAccessory)
				accessories.PUT("/:id", managers, h.Accessory.UpdateAccessory)
				accessories.DELETE("/:id", managers, h.Accessory.DeleteAccessory)
			}

			areas := authorized.Group("/common-areas")
			{
				areas.GET("", h.CommonArea.ListAreas)
				areas.GET("/:id", h.CommonArea.GetArea)
				areas.POST("", managers, h.CommonArea.CreateArea)
				areas.PUT("/:id", managers, h.CommonArea.UpdateArea)
				areas.PUT("/:id/activate", managers, h.CommonArea.ActivateArea)
				areas.PUT("/:id/deactivate", managers, h.CommonArea.DeactivateArea)
			}

			types := authorized.Group("/object-types", staff)
			{
				types.GET("", h.CommonArea.ListTypes)
				types.GET("/:id", h.CommonArea.GetType)
				types.GET("/:id/tasks", h.Maintenance.ListTasksByType)
				types.POST("", managers, h.CommonArea.CreateType)
				types.PUT("/:id", managers, h.CommonArea.UpdateType)
				types.DELETE("/:id", managers, h.CommonArea.DeleteType)
				types.PUT("/:id/activate", managers, h.CommonArea.ActivateType)
				types.PUT("/:id/deactivate", managers, h.CommonArea.DeactivateType)
			}

			objects := authorized.Group("/common-area-objects", staff)
			{
				objects.GET("", h.CommonArea.ListObjects)
				objects.GET("/:id", h.CommonArea.GetObject)
				objects.POST("", managers, h.CommonArea.CreateObject)
				objects.PUT("/:id", managers, h.CommonArea.UpdateObject)
				objects.PUT("/:id/activate", managers, h.CommonArea.ActivateObject)
				objects.PUT("/:id/deactivate", managers, h.CommonArea.DeactivateObject)
			}

			tasks := authorized.Group("/maintenance-tasks", staff)
			{
				tasks.GET("/:id", h.Maintenance.GetTask)
				tasks.POST("", managers, h.Maintenance.CreateTask)
				tasks.PUT("/:id", managers, h.Maintenance.UpdateTask)
				tasks.DELETE("/:id", managers, h.Maintenance.DeleteTask)
			}

			schedules := authorized.Group("/maintenance-schedules", staff)
			{
				schedules.GET("", h.Maintenance.ListSchedules)
				schedules.GET("/:id", h.Maintenance.GetSchedule)
				schedules.POST("", managers, h.Maintenance.CreateSchedule)
				schedules.PUT("/:id", managers, h.Maintenance.UpdateSchedule)
				schedules.PUT("/:id/activate", managers, h.Maintenance.ActivateSchedule)
				schedules.PUT("/:id/deactivate", managers, h.Maintenance.DeactivateSchedule)
			}

			requests := authorized.Group("/repair-requests")
			{
				requests.GET("", h.RepairRequest.ListRequests)
				requests.GET("/:id", h.RepairRequest.GetRequest)
				requests.GET("/:id/feedback", h.Feedback.ListByRequest)
				requests.POST("", middleware.RoleAuth(resident, receptionist, manager, admin), h.RepairRequest.CreateRequest)
				requests.POST("/maintenance", leads, h.RepairRequest.CreateFromSchedule)
				requests.PUT("/:id/status", h.RepairRequest.ToggleStatus) // residents may only cancel, checked in the service
			}

			appointments := authorized.Group("/appointments")
			{
				appointments.GET("", staff, h.Appointment.ListAppointments)
				appointments.GET("/:id", h.Appointment.GetAppointment)
				appointments.GET("/:id/inspection-reports", staff, h.Report.ListInspectionsByAppointment)
				appointments.PUT("/:id", office, h.Appointment.UpdateAppointment)
				appointments.PUT("/:id/status", staff, h.Appointment.ToggleStatus)
				appointments.PUT("/:id/complete", middleware.RoleAuth(admin, manager, lead, technician), h.Appointment.CompleteAppointment)
				appointments.POST("/:id/check-in", field, h.Appointment.CheckIn)
				appointments.POST("/:id/start-repair", field, h.Appointment.StartRepair)
				appointments.POST("/:id/finish", field, h.Appointment.FinishWork)
			}

			assignments := authorized.Group("/assignments", leads)
			{
				assignments.GET("/suggestions", h.Appointment.SuggestTechnicians)
				assignments.POST("", h.Appointment.Assign)
				assignments.DELETE("/:id", h.Appointment.CancelAssign)
				assignments.PUT("/:id/work-time", h.Appointment.UpdateWorkTime)
			}

			inspections := authorized.Group("/inspection-reports", staff)
			{
				inspections.GET("", h.Report.ListInspections)
				inspections.GET("/:id", h.Report.GetInspection)
				inspections.POST("", field, h.Report.CreateInspection)
				inspections.PUT("/:id", field, h.Report.UpdateInspection)
			}

			repairs := authorized.Group("/repair-reports", staff)
			{
				repairs.GET("", h.Report.ListRepairs)
				repairs.GET("/:id", h.Report.GetRepair)
				repairs.POST("", field, h.Report.CreateRepair)
				repairs.PUT("/:id", field, h.Report.UpdateRepair)
			}

			approvals := authorized.Group("/report-approvals", staff)
			{
				approvals.GET("", h.Report.ListApprovals)
				approvals.POST("", leads, h.Report.Approve)
			}

			contracts := authorized.Group("/contracts", staff)
			{
				contracts.GET("", h.Contract.ListContracts)
				contracts.GET("/:id", h.Contract.GetContract)
				contracts.POST("", managers, h.Contract.CreateContract)
				contracts.PUT("/:id", managers, h.Contract.UpdateContract)
				contracts.PUT("/:id/activate", managers, h.Contract.ActivateContract)
				contracts.PUT("/:id/deactivate", managers, h.Contract.DeactivateContract)
			}

			feedback := authorized.Group("/feedback")
			{
				feedback.POST("", h.Feedback.CreateFeedback)
				feedback.DELETE("/:id", h.Feedback.DeleteFeedback)
			}

			conversations := authorized.Group("/conversations")
			{
				conversations.GET("", h.Chat.ListConversations)
				conversations.POST("", h.Chat.CreateConversation)
				conversations.GET("/:id", h.Chat.GetConversation)
				conversations.GET("/:id/messages", h.Chat.ListMessages)
				conversations.POST("/:id/messages", h.Chat.SendMessage)
				conversations.PUT("/:id/delivered", h.Chat.MarkDelivered)
				conversations.PUT("/:id/read", h.Chat.MarkRead)
			}

			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListMine)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
			}

			export := authorized.Group("/export", office)
			{
				export.GET("/repair-requests", h.Export.ExportRepairRequests)
			}
		}
	}

	return r
}

// healthCheck reports the database and, when configured, Redis
func healthCheck(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "ok"}
		code := http.StatusOK

		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				status["status"], status["database"] = "degraded", "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(ctx); err != nil {
				// cache and blacklist fall back, so the service keeps serving
				status["redis"] = "unreachable"
			}
		} else {
			status["redis"] = "disabled"
		}

		c.JSON(code, status)
	}
}
