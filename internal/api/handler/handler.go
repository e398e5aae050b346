package handler

import "aptcare/backend/internal/service"

// Handler aggregates every HTTP handler
type Handler struct {
	Auth          *AuthHandler
	User          *UserHandler
	Floor         *FloorHandler
	Apartment     *ApartmentHandler
	Technique     *TechniqueHandler
	Issue         *IssueHandler
	Accessory     *AccessoryHandler
	CommonArea    *CommonAreaHandler
	Maintenance   *MaintenanceHandler
	RepairRequest *RepairRequestHandler
	Appointment   *AppointmentHandler
	Report        *ReportHandler
	Contract      *ContractHandler
	Feedback      *FeedbackHandler
	Chat          *ChatHandler
	Notification  *NotificationHandler
	Export        *ExportHandler
}

// NewHandler creates the Handler aggregate
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:          NewAuthHandler(svc.Auth),
		User:          NewUserHandler(svc.User),
		Floor:         NewFloorHandler(svc.Floor),
		Apartment:     NewApartmentHandler(svc.Apartment),
		Technique:     NewTechniqueHandler(svc.Technique),
		Issue:         NewIssueHandler(svc.Issue),
		Accessory:     NewAccessoryHandler(svc.Accessory),
		CommonArea:    NewCommonAreaHandler(svc.CommonArea, svc.ObjectType, svc.CommonAreaObject),
		Maintenance:   NewMaintenanceHandler(svc.MaintenanceTask, svc.Schedule),
		RepairRequest: NewRepairRequestHandler(svc.RepairRequest),
		Appointment:   NewAppointmentHandler(svc.Appointment, svc.AppointmentAssign),
		Report:        NewReportHandler(svc.InspectionReport, svc.RepairReport, svc.ReportApproval),
		Contract:      NewContractHandler(svc.Contract),
		Feedback:      NewFeedbackHandler(svc.Feedback),
		Chat:          NewChatHandler(svc.Conversation, svc.Message),
		Notification:  NewNotificationHandler(svc.Notification),
		Export:        NewExportHandler(svc.Export),
	}
}
