package service

import (
	"go.uber.org/zap"

	"aptcare/backend/config"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/jwt"
)

// Backends external stores the services talk to.
// A nil backend falls back to a no-op; uploads then fail.
type Backends struct {
	Cache     Cache
	Storage   FileStorage
	Publisher Publisher
	Blacklist TokenBlacklist
}

// Service aggregate entry point for every service
type Service struct {
	Auth AuthService
	User UserService

	Floor     FloorService
	Apartment ApartmentService
	Technique TechniqueService
	Issue     IssueService
	Accessory AccessoryService

	CommonArea       CommonAreaService
	ObjectType       ObjectTypeService
	CommonAreaObject CommonAreaObjectService
	MaintenanceTask  MaintenanceTaskService
	Schedule         MaintenanceScheduleService

	RepairRequest     RepairRequestService
	Appointment       AppointmentService
	AppointmentAssign AppointmentAssignService
	InspectionReport  InspectionReportService
	RepairReport      RepairReportService
	ReportApproval    ReportApprovalService
	Contract          ContractService
	Feedback          FeedbackService

	Conversation ConversationService
	Message      MessageService
	Notification NotificationService

	Export ExportService
}

// NewService wires every service
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	b Backends,
	logger *zap.Logger,
) *Service {
	if b.Cache == nil {
		b.Cache = NoopCache{}
	}
	if b.Publisher == nil {
		b.Publisher = NoopPublisher{}
	}
	if b.Storage == nil {
		b.Storage = NoStorage{}
	}
	if b.Blacklist == nil {
		b.Blacklist = NoopBlacklist{}
	}
	ttl := cfg.Cache.DefaultTTL

	notification := NewNotificationService(repo, b.Publisher, logger.Named("notification"))

	return &Service{
		Auth: NewAuthService(repo, jwtMgr, b.Blacklist, logger.Named("auth")),
		User: NewUserService(repo, b.Cache, ttl, cfg.Auth.DefaultPassword, logger.Named("user")),

		Floor:     NewFloorService(repo, b.Cache, ttl, logger.Named("floor")),
		Apartment: NewApartmentService(repo, b.Cache, ttl, logger.Named("apartment")),
		Technique: NewTechniqueService(repo, logger.Named("technique")),
		Issue:     NewIssueService(repo, b.Cache, ttl, logger.Named("issue")),
		Accessory: NewAccessoryService(repo, logger.Named("accessory")),

		CommonArea:       NewCommonAreaService(repo, logger.Named("common_area")),
		ObjectType:       NewObjectTypeService(repo, logger.Named("object_type")),
		CommonAreaObject: NewCommonAreaObjectService(repo, logger.Named("object")),
		MaintenanceTask:  NewMaintenanceTaskService(repo, logger.Named("maintenance_task")),
		Schedule:         NewMaintenanceScheduleService(repo, logger.Named("schedule")),

		RepairRequest:     NewRepairRequestService(repo, b.Storage, notification, logger.Named("repair_request")),
		Appointment:       NewAppointmentService(repo, notification, logger.Named("appointment")),
		AppointmentAssign: NewAppointmentAssignService(repo, notification, logger.Named("assign")),
		InspectionReport:  NewInspectionReportService(repo, b.Storage, notification, logger.Named("inspection_report")),
		RepairReport:      NewRepairReportService(repo, b.Storage, notification, logger.Named("repair_report")),
		ReportApproval:    NewReportApprovalService(repo, notification, logger.Named("approval")),
		Contract:          NewContractService(repo, b.Storage, logger.Named("contract")),
		Feedback:          NewFeedbackService(repo, notification, logger.Named("feedback")),

		Conversation: NewConversationService(repo, logger.Named("conversation")),
		Message:      NewMessageService(repo, b.Storage, b.Publisher, notification, logger.Named("message")),
		Notification: notification,

		Export: NewExportService(repo, logger.Named("export")),
	}
}
