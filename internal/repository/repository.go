package repository

import (
	"context"

	"gorm.io/gorm"
)

// Tx unit of work started by Repository.BeginTx
type Tx interface {
	Commit() error
	Rollback() error
}

// Transactor starts transactions; the gorm implementation is used in production,
// tests substitute their own to observe commits and rollbacks.
type Transactor interface {
	Begin(ctx context.Context) (Tx, error)
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) Commit() error   { return t.db.Commit().Error }
func (t *gormTx) Rollback() error { return t.db.Rollback().Error }

type gormTransactor struct {
	db *gorm.DB
}

func (t gormTransactor) Begin(ctx context.Context) (Tx, error) {
	tx := t.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &gormTx{db: tx}, nil
}

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

// Repository aggregate of every repository
type Repository struct {
	Transactor Transactor

	User             UserRepository
	Account          AccountRepository
	AccountToken     AccountTokenRepository
	Floor            FloorRepository
	Apartment        ApartmentRepository
	UserApartment    UserApartmentRepository
	Technique        TechniqueRepository
	UserTechnique    UserTechniqueRepository
	Issue            IssueRepository
	Accessory        AccessoryRepository
	CommonArea       CommonAreaRepository
	ObjectType       CommonAreaObjectTypeRepository
	CommonAreaObject CommonAreaObjectRepository
	MaintenanceTask  MaintenanceTaskRepository
	Schedule         MaintenanceScheduleRepository
	RepairRequest    RepairRequestRepository
	Appointment      AppointmentRepository
	Assign           AppointmentAssignRepository
	InspectionReport InspectionReportRepository
	RepairReport     RepairReportRepository
	ReportApproval   ReportApprovalRepository
	Contract         ContractRepository
	Media            MediaRepository
	Feedback         FeedbackRepository
	Conversation     ConversationRepository
	Message          MessageRepository
	Notification     NotificationRepository
}

// NewRepository wires every gorm repository on db
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Transactor: gormTransactor{db: db},

		User:             NewUserRepo(db),
		Account:          NewAccountRepo(db),
		AccountToken:     NewAccountTokenRepo(db),
		Floor:            NewFloorRepo(db),
		Apartment:        NewApartmentRepo(db),
		UserApartment:    NewUserApartmentRepo(db),
		Technique:        NewTechniqueRepo(db),
		UserTechnique:    NewUserTechniqueRepo(db),
		Issue:            NewIssueRepo(db),
		Accessory:        NewAccessoryRepo(db),
		CommonArea:       NewCommonAreaRepo(db),
		ObjectType:       NewCommonAreaObjectTypeRepo(db),
		CommonAreaObject: NewCommonAreaObjectRepo(db),
		MaintenanceTask:  NewMaintenanceTaskRepo(db),
		Schedule:         NewMaintenanceScheduleRepo(db),
		RepairRequest:    NewRepairRequestRepo(db),
		Appointment:      NewAppointmentRepo(db),
		Assign:           NewAppointmentAssignRepo(db),
		InspectionReport: NewInspectionReportRepo(db),
		RepairReport:     NewRepairReportRepo(db),
		ReportApproval:   NewReportApprovalRepo(db),
		Contract:         NewContractRepo(db),
		Media:            NewMediaRepo(db),
		Feedback:         NewFeedbackRepo(db),
		Conversation:     NewConversationRepo(db),
		Message:          NewMessageRepo(db),
		Notification:     NewNotificationRepo(db),
	}
}

// BeginTx starts a transaction. Without a Transactor (in-memory repositories)
// the returned Tx does nothing.
func (r *Repository) BeginTx(ctx context.Context) (Tx, error) {
	if r.Transactor == nil {
		return noopTx{}, nil
	}
	return r.Transactor.Begin(ctx)
}

// WithTx returns a Repository whose gorm repositories run inside tx.
// For any other Tx the receiver is returned unchanged.
func (r *Repository) WithTx(tx Tx) *Repository {
	gt, ok := tx.(*gormTx)
	if !ok {
		return r
	}
	return NewRepository(gt.db)
}
