//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("aptcare_test"),
		tcpostgres.WithUsername("aptcare"),
		tcpostgres.WithPassword("aptcare"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start postgres container: %v\n", err)
		os.Exit(1)
	}

	code := func() int {
		defer func() { _ = container.Terminate(ctx) }()

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Fprintf(os.Stderr, "connection string: %v\n", err)
			return 1
		}

		testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "open database: %v\n", err)
			return 1
		}

		sqlDB, err := testDB.DB()
		if err != nil {
			fmt.Fprintf(os.Stderr, "sql db: %v\n", err)
			return 1
		}
		if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			return 1
		}

		return m.Run()
	}()
	os.Exit(code)
}

func uniq(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func createUser(t *testing.T, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		FirstName:   "Test",
		LastName:    "User",
		Email:       uniq("user") + "@aptcare.vn",
		PhoneNumber: fmt.Sprintf("09%d", time.Now().UnixNano()%100000000),
		Role:        role,
		Status:      model.StatusActive,
	}
	require.NoError(t, testDB.Create(u).Error)
	return u
}

func createFloor(t *testing.T) *model.Floor {
	t.Helper()
	f := &model.Floor{FloorNumber: int(time.Now().UnixNano() % 1_000_000), Status: model.StatusActive}
	require.NoError(t, testDB.Create(f).Error)
	return f
}

// seedAppointment creates request → appointment with the given appointment tracking history
func seedAppointment(t *testing.T, resident *model.User, statuses ...model.AppointmentStatus) *model.Appointment {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	req := &model.RepairRequest{UserID: resident.UserID, Object: "Vòi nước", Description: "rò rỉ"}
	require.NoError(t, repo.RepairRequest.Create(ctx, req))

	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute)
	appt := &model.Appointment{RepairRequestID: req.RepairRequestID, StartTime: start, EndTime: start.Add(2 * time.Hour)}
	require.NoError(t, repo.Appointment.Create(ctx, appt))

	at := time.Now()
	for i, s := range statuses {
		require.NoError(t, repo.Appointment.AddTracking(ctx, &model.AppointmentTracking{
			AppointmentID: appt.AppointmentID,
			Status:        s,
			UpdatedBy:     resident.UserID,
			UpdatedAt:     at.Add(time.Duration(i) * time.Second),
		}))
	}
	return appt
}

// ═══════════════════════════════════════════════════════════
// Test: Transactions
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	floor := &model.Floor{FloorNumber: 900001, Status: model.StatusActive}
	require.NoError(t, repo.WithTx(tx).Floor.Create(ctx, floor))
	require.NoError(t, tx.Rollback())

	_, err = repo.Floor.GetByID(ctx, floor.FloorID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "rolled back floor must not be visible")
}

func TestTransaction_Commit(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	floor := &model.Floor{FloorNumber: 900002, Status: model.StatusActive}
	require.NoError(t, repo.WithTx(tx).Floor.Create(ctx, floor))
	require.NoError(t, tx.Commit())

	found, err := repo.Floor.GetByID(ctx, floor.FloorID)
	require.NoError(t, err)
	assert.Equal(t, 900002, found.FloorNumber)
}

// ═══════════════════════════════════════════════════════════
// Test: Apartments
// ═══════════════════════════════════════════════════════════

func TestApartment_ExistsActiveRoom(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	floor := createFloor(t)

	apt := &model.Apartment{FloorID: floor.FloorID, Room: "A101", Status: model.StatusActive}
	require.NoError(t, repo.Apartment.Create(ctx, apt))

	exists, err := repo.Apartment.ExistsActiveRoom(ctx, floor.FloorID, "A101", "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Apartment.ExistsActiveRoom(ctx, floor.FloorID, "A101", apt.ApartmentID)
	require.NoError(t, err)
	assert.False(t, exists, "the row being updated is excluded")

	apt.Status = model.StatusInactive
	require.NoError(t, repo.Apartment.Update(ctx, apt))

	exists, err = repo.Apartment.ExistsActiveRoom(ctx, floor.FloorID, "A101", "")
	require.NoError(t, err)
	assert.False(t, exists, "inactive apartments free the room label")
}

func TestApartment_ListFiltersByFloor(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	floor := createFloor(t)

	for _, room := range []string{"B201", "B202", "B203"} {
		require.NoError(t, repo.Apartment.Create(ctx, &model.Apartment{FloorID: floor.FloorID, Room: room, Status: model.StatusActive}))
	}

	items, total, err := repo.Apartment.List(ctx, repository.ApartmentFilter{
		FloorID: floor.FloorID,
		Page:    repository.Page{Limit: 2},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 2)
}

// ═══════════════════════════════════════════════════════════
// Test: Tracking-derived status
// ═══════════════════════════════════════════════════════════

func TestAppointment_LatestStatus(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	resident := createUser(t, model.RoleResident)

	appt := seedAppointment(t, resident, model.AppointmentPending, model.AppointmentAssigned, model.AppointmentConfirmed)

	latest, err := repo.Appointment.LatestTracking(ctx, appt.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentConfirmed, latest.Status)

	statuses, err := repo.Appointment.LatestStatuses(ctx, []string{appt.AppointmentID})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentConfirmed, statuses[appt.AppointmentID])

	items, _, err := repo.Appointment.List(ctx, repository.AppointmentFilter{
		RepairRequestID: appt.RepairRequestID,
		Status:          model.AppointmentConfirmed,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, _, err = repo.Appointment.List(ctx, repository.AppointmentFilter{
		RepairRequestID: appt.RepairRequestID,
		Status:          model.AppointmentPending,
	})
	require.NoError(t, err)
	assert.Empty(t, items, "only the latest tracking row counts")
}

// ═══════════════════════════════════════════════════════════
// Test: Technician overlap
// ═══════════════════════════════════════════════════════════

func TestAssign_HasOverlap(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	resident := createUser(t, model.RoleResident)
	tech := createUser(t, model.RoleTechnician)

	appt := seedAppointment(t, resident, model.AppointmentPending)
	require.NoError(t, repo.Assign.Create(ctx, &model.AppointmentAssign{
		AppointmentID:      appt.AppointmentID,
		TechnicianID:       tech.UserID,
		EstimatedStartTime: appt.StartTime,
		EstimatedEndTime:   appt.EndTime,
		Status:             model.WorkOrderPending,
	}))

	overlap, err := repo.Assign.HasOverlap(ctx, tech.UserID, appt.StartTime.Add(time.Hour), appt.EndTime.Add(time.Hour), "")
	require.NoError(t, err)
	assert.True(t, overlap)

	overlap, err = repo.Assign.HasOverlap(ctx, tech.UserID, appt.EndTime, appt.EndTime.Add(time.Hour), "")
	require.NoError(t, err)
	assert.False(t, overlap, "touching windows do not overlap")

	overlap, err = repo.Assign.HasOverlap(ctx, tech.UserID, appt.StartTime, appt.EndTime, appt.AppointmentID)
	require.NoError(t, err)
	assert.False(t, overlap)
}

// ═══════════════════════════════════════════════════════════
// Test: Report approvals
// ═══════════════════════════════════════════════════════════

func TestReportApproval_SinglePendingPerReport(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	resident := createUser(t, model.RoleResident)
	tech := createUser(t, model.RoleTechnician)
	appt := seedAppointment(t, resident, model.AppointmentPending)

	report := &model.InspectionReport{
		AppointmentID: appt.AppointmentID,
		UserID:        tech.UserID,
		FaultOwner:    model.FaultBuilding,
		SolutionType:  model.SolutionInternal,
		Description:   "ống nước vỡ",
		Status:        model.ReportPending,
	}
	require.NoError(t, repo.InspectionReport.Create(ctx, report))
	ref := model.InspectionReportRef(report.InspectionReportID)

	first := &model.ReportApproval{Role: model.RoleTechnicianLead, Status: model.ReportPending}
	first.Attach(ref)
	require.NoError(t, repo.ReportApproval.Create(ctx, first))

	second := &model.ReportApproval{Role: model.RoleManager, Status: model.ReportPending}
	second.Attach(ref)
	assert.Error(t, repo.ReportApproval.Create(ctx, second), "a second pending approval violates the partial unique index")

	pending, err := repo.ReportApproval.ListPending(ctx, ref)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.RoleTechnicianLead, pending[0].Role)

	_, err = repo.ReportApproval.ListPending(ctx, model.RepairReportRef(report.InspectionReportID))
	require.NoError(t, err)
}

// ═══════════════════════════════════════════════════════════
// Test: Messages
// ═══════════════════════════════════════════════════════════

func TestMessage_AdvanceStatusIsMonotonic(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	alice := createUser(t, model.RoleResident)
	bob := createUser(t, model.RoleReceptionist)

	conv := &model.Conversation{
		Participants: []model.ConversationParticipant{{UserID: alice.UserID}, {UserID: bob.UserID}},
	}
	require.NoError(t, repo.Conversation.Create(ctx, conv))

	msg := &model.Message{ConversationID: conv.ConversationID, SenderID: alice.UserID, Type: model.MessageText, Content: "xin chào", Status: model.MessageSent}
	require.NoError(t, repo.Message.Create(ctx, msg))

	n, err := repo.Message.AdvanceStatus(ctx, conv.ConversationID, bob.UserID, model.MessageRead, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.Message.AdvanceStatus(ctx, conv.ConversationID, bob.UserID, model.MessageDelivered, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "read messages never go back to delivered")

	unread, err := repo.Message.CountUnread(ctx, []string{conv.ConversationID}, bob.UserID)
	require.NoError(t, err)
	assert.Zero(t, unread[conv.ConversationID])

	ok, err := repo.Conversation.IsParticipant(ctx, conv.ConversationID, bob.UserID)
	require.NoError(t, err)
	assert.True(t, ok)
}
