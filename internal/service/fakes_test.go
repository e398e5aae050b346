package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
)

// In-memory repositories. Each fake embeds its interface and implements only
// the methods the services under test reach; anything else panics on the nil
// embedded value, which flags an unexpected call.

// ── transactions ──

type fakeTransactor struct {
	begun, commits, rollbacks int
}

func (f *fakeTransactor) Begin(context.Context) (repository.Tx, error) {
	f.begun++
	return fakeTx{f}, nil
}

type fakeTx struct{ t *fakeTransactor }

func (tx fakeTx) Commit() error   { tx.t.commits++; return nil }
func (tx fakeTx) Rollback() error { tx.t.rollbacks++; return nil }

// ── backends ──

type fakeCache struct {
	data          map[string][]byte
	invalidations []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.invalidations = append(c.invalidations, prefix)
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

type fakeStorage struct {
	uploads []string
	fail    bool
}

func (s *fakeStorage) UploadImage(_ context.Context, name, _ string, _ []byte) (string, error) {
	return s.put("images", name)
}

func (s *fakeStorage) UploadFile(_ context.Context, folder, name, _ string, _ []byte) (string, error) {
	return s.put(folder, name)
}

func (s *fakeStorage) put(folder, name string) (string, error) {
	if s.fail {
		return "", nil
	}
	key := folder + "/" + name
	s.uploads = append(s.uploads, key)
	return "https://files.test/" + key, nil
}

type sentNotification struct {
	users []string
	role  model.Role
	msg   dto.NotificationMessage
}

type fakeNotifier struct {
	sent []sentNotification
}

func (n *fakeNotifier) NotifyUsers(_ context.Context, userIDs []string, msg dto.NotificationMessage) error {
	n.sent = append(n.sent, sentNotification{users: userIDs, msg: msg})
	return nil
}

func (n *fakeNotifier) NotifyRole(_ context.Context, role model.Role, msg dto.NotificationMessage) error {
	n.sent = append(n.sent, sentNotification{role: role, msg: msg})
	return nil
}

type publishedEvent struct {
	topic, eventType string
	payload          any
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, topic, eventType string, payload any) error {
	p.events = append(p.events, publishedEvent{topic: topic, eventType: eventType, payload: payload})
	return nil
}

// ── ids ──

var fakeSeq int

func nextID(prefix string) string {
	fakeSeq++
	return fmt.Sprintf("%s-%04d", prefix, fakeSeq)
}

// ── catalog ──

type fakeFloorRepo struct {
	repository.FloorRepository
	rows    map[string]*model.Floor
	updates int
}

func (r *fakeFloorRepo) GetByID(_ context.Context, id string) (*model.Floor, error) {
	if f, ok := r.rows[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFloorRepo) Update(_ context.Context, f *model.Floor) error {
	r.updates++
	r.rows[f.FloorID] = f
	return nil
}

func (r *fakeFloorRepo) ExistsActiveNumber(_ context.Context, number int, excludeID string) (bool, error) {
	for id, f := range r.rows {
		if id != excludeID && f.FloorNumber == number && f.Status == model.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

type fakeIssueRepo struct {
	repository.IssueRepository
	rows map[string]*model.Issue
}

func (r *fakeIssueRepo) GetByID(_ context.Context, id string) (*model.Issue, error) {
	if i, ok := r.rows[id]; ok {
		return i, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeApartmentRepo struct {
	repository.ApartmentRepository
	rows      map[string]*model.Apartment
	creates   int
	updates   int
	roomTaken bool
}

func (r *fakeApartmentRepo) Create(_ context.Context, a *model.Apartment) error {
	r.creates++
	a.ApartmentID = nextID("apt")
	r.rows[a.ApartmentID] = a
	return nil
}

func (r *fakeApartmentRepo) GetByID(_ context.Context, id string) (*model.Apartment, error) {
	if a, ok := r.rows[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeApartmentRepo) ExistsActiveRoom(context.Context, string, string, string) (bool, error) {
	return r.roomTaken, nil
}

func (r *fakeApartmentRepo) Update(_ context.Context, a *model.Apartment) error {
	r.updates++
	r.rows[a.ApartmentID] = a
	return nil
}

func (r *fakeApartmentRepo) CountActiveByFloor(_ context.Context, floorID string) (int64, error) {
	var n int64
	for _, a := range r.rows {
		if a.FloorID == floorID && a.Status == model.StatusActive {
			n++
		}
	}
	return n, nil
}

type fakeUserApartmentRepo struct {
	repository.UserApartmentRepository
	active map[string]bool // userID:apartmentID
}

func (r *fakeUserApartmentRepo) GetActive(_ context.Context, userID, apartmentID string) (*model.UserApartment, error) {
	if r.active[userID+":"+apartmentID] {
		return &model.UserApartment{UserID: userID, ApartmentID: apartmentID}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserApartmentRepo) ListActiveByApartment(_ context.Context, apartmentID string) ([]model.UserApartment, error) {
	var out []model.UserApartment
	for key, ok := range r.active {
		userID, aptID, _ := strings.Cut(key, ":")
		if ok && aptID == apartmentID {
			out = append(out, model.UserApartment{UserID: userID, ApartmentID: aptID, Status: model.StatusActive})
		}
	}
	return out, nil
}

type fakeObjectTypeRepo struct {
	repository.CommonAreaObjectTypeRepository
	rows    map[string]*model.CommonAreaObjectType
	deleted []string
}

func (r *fakeObjectTypeRepo) GetByID(_ context.Context, id string) (*model.CommonAreaObjectType, error) {
	if t, ok := r.rows[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeObjectTypeRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	delete(r.rows, id)
	return nil
}

type fakeObjectRepo struct {
	repository.CommonAreaObjectRepository
	rows map[string]*model.CommonAreaObject
}

func (r *fakeObjectRepo) GetByID(_ context.Context, id string) (*model.CommonAreaObject, error) {
	if o, ok := r.rows[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeObjectRepo) Update(_ context.Context, o *model.CommonAreaObject) error {
	r.rows[o.CommonAreaObjectID] = o
	return nil
}

func (r *fakeObjectRepo) CountByType(_ context.Context, typeID string) (int64, error) {
	var n int64
	for _, o := range r.rows {
		if o.CommonAreaObjectTypeID == typeID {
			n++
		}
	}
	return n, nil
}

type fakeTaskRepo struct {
	repository.MaintenanceTaskRepository
	byType map[string][]model.MaintenanceTask
}

func (r *fakeTaskRepo) ListByType(_ context.Context, typeID string) ([]model.MaintenanceTask, error) {
	return r.byType[typeID], nil
}

func (r *fakeTaskRepo) Create(_ context.Context, t *model.MaintenanceTask) error {
	t.MaintenanceTaskID = nextID("task")
	r.byType[t.CommonAreaObjectTypeID] = append(r.byType[t.CommonAreaObjectTypeID], *t)
	return nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *model.MaintenanceTask) error {
	for typeID, tasks := range r.byType {
		for i := range tasks {
			if tasks[i].MaintenanceTaskID == t.MaintenanceTaskID {
				r.byType[typeID] = append(tasks[:i], tasks[i+1:]...)
				r.byType[t.CommonAreaObjectTypeID] = append(r.byType[t.CommonAreaObjectTypeID], *t)
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*model.MaintenanceTask, error) {
	for _, tasks := range r.byType {
		for i := range tasks {
			if tasks[i].MaintenanceTaskID == id {
				t := tasks[i]
				return &t, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTaskRepo) ExistsName(_ context.Context, typeID, name, excludeID string) (bool, error) {
	for _, t := range r.byType[typeID] {
		if t.MaintenanceTaskID != excludeID && strings.EqualFold(t.TaskName, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTaskRepo) ExistsDisplayOrder(_ context.Context, typeID string, order int, excludeID string) (bool, error) {
	for _, t := range r.byType[typeID] {
		if t.MaintenanceTaskID != excludeID && t.DisplayOrder == order {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTaskRepo) CountByType(_ context.Context, typeID string) (int64, error) {
	return int64(len(r.byType[typeID])), nil
}

type fakeScheduleRepo struct {
	repository.MaintenanceScheduleRepository
	rows      map[string]*model.MaintenanceSchedule
	trackings []model.MaintenanceScheduleTracking
	updates   int
}

func (r *fakeScheduleRepo) Create(_ context.Context, s *model.MaintenanceSchedule) error {
	s.MaintenanceScheduleID = nextID("sched")
	r.rows[s.MaintenanceScheduleID] = s
	return nil
}

func (r *fakeScheduleRepo) Update(_ context.Context, s *model.MaintenanceSchedule) error {
	r.updates++
	r.rows[s.MaintenanceScheduleID] = s
	return nil
}

func (r *fakeScheduleRepo) GetByID(_ context.Context, id string) (*model.MaintenanceSchedule, error) {
	if s, ok := r.rows[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeScheduleRepo) GetByObject(_ context.Context, objectID string) (*model.MaintenanceSchedule, error) {
	for _, s := range r.rows {
		if s.CommonAreaObjectID == objectID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeScheduleRepo) AddTrackings(_ context.Context, rows []model.MaintenanceScheduleTracking) error {
	r.trackings = append(r.trackings, rows...)
	return nil
}

func (r *fakeScheduleRepo) ListTrackings(_ context.Context, scheduleID string) ([]model.MaintenanceScheduleTracking, error) {
	var out []model.MaintenanceScheduleTracking
	for _, t := range r.trackings {
		if t.MaintenanceScheduleID == scheduleID {
			out = append(out, t)
		}
	}
	return out, nil
}

// ── requests and appointments ──

type fakeRequestRepo struct {
	repository.RepairRequestRepository
	rows        map[string]*model.RepairRequest
	order       []string
	trackings   []model.RequestTracking
	trackingErr error
	open        map[string]int64 // apartmentID
}

func (r *fakeRequestRepo) Create(_ context.Context, req *model.RepairRequest) error {
	req.RepairRequestID = nextID("req")
	r.add(req)
	return nil
}

func (r *fakeRequestRepo) add(req *model.RepairRequest) {
	r.rows[req.RepairRequestID] = req
	r.order = append(r.order, req.RepairRequestID)
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id string) (*model.RepairRequest, error) {
	if req, ok := r.rows[id]; ok {
		return req, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRequestRepo) List(context.Context, repository.RequestFilter) ([]model.RepairRequest, int64, error) {
	out := make([]model.RepairRequest, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.rows[id])
	}
	return out, int64(len(out)), nil
}

func (r *fakeRequestRepo) AddTracking(_ context.Context, t *model.RequestTracking) error {
	if r.trackingErr != nil {
		return r.trackingErr
	}
	r.trackings = append(r.trackings, *t)
	return nil
}

func (r *fakeRequestRepo) ListTrackings(_ context.Context, requestID string) ([]model.RequestTracking, error) {
	var out []model.RequestTracking
	for _, t := range r.trackings {
		if t.RepairRequestID == requestID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) LatestTracking(ctx context.Context, requestID string) (*model.RequestTracking, error) {
	rows, _ := r.ListTrackings(ctx, requestID)
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[len(rows)-1], nil
}

func (r *fakeRequestRepo) LatestStatuses(ctx context.Context, ids []string) (map[string]model.RequestStatus, error) {
	out := make(map[string]model.RequestStatus, len(ids))
	for _, id := range ids {
		if t, err := r.LatestTracking(ctx, id); err == nil {
			out[id] = t.Status
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) CountOpenByApartment(_ context.Context, apartmentID string) (int64, error) {
	return r.open[apartmentID], nil
}

type fakeAppointmentRepo struct {
	repository.AppointmentRepository
	rows      map[string]*model.Appointment
	trackings []model.AppointmentTracking
	updates   int
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id string) (*model.Appointment, error) {
	if a, ok := r.rows[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	a.AppointmentID = nextID("appt")
	r.rows[a.AppointmentID] = a
	return nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	r.updates++
	r.rows[a.AppointmentID] = a
	return nil
}

func (r *fakeAppointmentRepo) ListByRequest(_ context.Context, requestID string) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, a := range r.rows {
		if a.RepairRequestID == requestID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) CountByRequests(_ context.Context, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	for _, a := range r.rows {
		out[a.RepairRequestID]++
	}
	return out, nil
}

func (r *fakeAppointmentRepo) AddTracking(_ context.Context, t *model.AppointmentTracking) error {
	r.trackings = append(r.trackings, *t)
	return nil
}

func (r *fakeAppointmentRepo) ListTrackings(_ context.Context, id string) ([]model.AppointmentTracking, error) {
	var out []model.AppointmentTracking
	for _, t := range r.trackings {
		if t.AppointmentID == id {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) LatestTracking(_ context.Context, id string) (*model.AppointmentTracking, error) {
	for i := len(r.trackings) - 1; i >= 0; i-- {
		if r.trackings[i].AppointmentID == id {
			return &r.trackings[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAppointmentRepo) LatestStatuses(ctx context.Context, ids []string) (map[string]model.AppointmentStatus, error) {
	out := make(map[string]model.AppointmentStatus, len(ids))
	for _, id := range ids {
		if t, err := r.LatestTracking(ctx, id); err == nil {
			out[id] = t.Status
		}
	}
	return out, nil
}

type fakeAssignRepo struct {
	repository.AppointmentAssignRepository
	counts map[string]int64
	rows   []*model.AppointmentAssign
	busy   map[string]bool // technicianID
}

func (r *fakeAssignRepo) CountByAppointment(_ context.Context, appointmentID string) (int64, error) {
	return r.counts[appointmentID], nil
}

func (r *fakeAssignRepo) Create(_ context.Context, a *model.AppointmentAssign) error {
	a.AppointmentAssignID = nextID("assign")
	r.rows = append(r.rows, a)
	r.counts[a.AppointmentID]++
	return nil
}

func (r *fakeAssignRepo) Update(_ context.Context, a *model.AppointmentAssign) error {
	for _, row := range r.rows {
		if row.AppointmentAssignID == a.AppointmentAssignID {
			*row = *a
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeAssignRepo) Delete(_ context.Context, id string) error {
	for i, a := range r.rows {
		if a.AppointmentAssignID == id {
			r.counts[a.AppointmentID]--
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeAssignRepo) ListByAppointment(_ context.Context, appointmentID string) ([]model.AppointmentAssign, error) {
	var out []model.AppointmentAssign
	for _, a := range r.rows {
		if a.AppointmentID == appointmentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAssignRepo) Workload(_ context.Context, technicianIDs []string, _, _ time.Time) (map[string]int64, error) {
	out := make(map[string]int64, len(technicianIDs))
	for _, a := range r.rows {
		out[a.TechnicianID]++
	}
	return out, nil
}

// byAppointment the stored work orders of one appointment
func (r *fakeAssignRepo) byAppointment(appointmentID string) []*model.AppointmentAssign {
	var out []*model.AppointmentAssign
	for _, a := range r.rows {
		if a.AppointmentID == appointmentID {
			out = append(out, a)
		}
	}
	return out
}

func (r *fakeAssignRepo) GetByID(_ context.Context, id string) (*model.AppointmentAssign, error) {
	for _, a := range r.rows {
		if a.AppointmentAssignID == id {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAssignRepo) GetByAppointmentAndTechnician(_ context.Context, appointmentID, technicianID string) (*model.AppointmentAssign, error) {
	for _, a := range r.rows {
		if a.AppointmentID == appointmentID && a.TechnicianID == technicianID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAssignRepo) HasOverlap(_ context.Context, technicianID string, _, _ time.Time, _ string) (bool, error) {
	return r.busy[technicianID], nil
}

func (r *fakeAssignRepo) ListByTechnician(_ context.Context, technicianID string, _, _ *time.Time) ([]model.AppointmentAssign, error) {
	var out []model.AppointmentAssign
	for _, a := range r.rows {
		if a.TechnicianID == technicianID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeMediaRepo struct {
	repository.MediaRepository
	rows []model.Media
}

func (r *fakeMediaRepo) CreateBatch(_ context.Context, rows []model.Media) error {
	r.rows = append(r.rows, rows...)
	return nil
}

func (r *fakeMediaRepo) ListByEntity(_ context.Context, entity model.MediaEntity, entityID string) ([]model.Media, error) {
	var out []model.Media
	for _, m := range r.rows {
		if m.Entity == entity && m.EntityID == entityID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ── reports ──

type fakeInspectionRepo struct {
	repository.InspectionReportRepository
	rows map[string]*model.InspectionReport
}

func (r *fakeInspectionRepo) GetByID(_ context.Context, id string) (*model.InspectionReport, error) {
	if rep, ok := r.rows[id]; ok {
		return rep, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInspectionRepo) Create(_ context.Context, rep *model.InspectionReport) error {
	rep.InspectionReportID = nextID("ir")
	r.rows[rep.InspectionReportID] = rep
	return nil
}

func (r *fakeInspectionRepo) Update(_ context.Context, rep *model.InspectionReport) error {
	r.rows[rep.InspectionReportID] = rep
	return nil
}

func (r *fakeInspectionRepo) ListByAppointments(_ context.Context, ids []string) ([]model.InspectionReport, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.InspectionReport
	for _, rep := range r.rows {
		if want[rep.AppointmentID] {
			out = append(out, *rep)
		}
	}
	return out, nil
}

type fakeApprovalRepo struct {
	repository.ReportApprovalRepository
	rows    []model.ReportApproval
	creates int
}

func (r *fakeApprovalRepo) Create(_ context.Context, a *model.ReportApproval) error {
	r.creates++
	a.ReportApprovalID = nextID("appr")
	r.rows = append(r.rows, *a)
	return nil
}

func (r *fakeApprovalRepo) Update(_ context.Context, a *model.ReportApproval) error {
	for i := range r.rows {
		if r.rows[i].ReportApprovalID == a.ReportApprovalID {
			r.rows[i] = *a
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeApprovalRepo) ListByReport(_ context.Context, ref model.ReportRef) ([]model.ReportApproval, error) {
	var out []model.ReportApproval
	for _, a := range r.rows {
		if got := a.Ref(); got != nil && got == ref {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeApprovalRepo) ListPending(ctx context.Context, ref model.ReportRef) ([]model.ReportApproval, error) {
	all, _ := r.ListByReport(ctx, ref)
	var out []model.ReportApproval
	for _, a := range all {
		if a.Status == model.ReportPending {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeContractRepo struct {
	repository.ContractRepository
	creates int
	codes   map[string]bool
}

func (r *fakeContractRepo) Create(_ context.Context, c *model.Contract) error {
	r.creates++
	c.ContractID = nextID("contract")
	return nil
}

func (r *fakeContractRepo) ExistsCode(_ context.Context, code, _ string) (bool, error) {
	return r.codes[code], nil
}

// ── feedback ──

type fakeFeedbackRepo struct {
	repository.FeedbackRepository
	rows    []model.Feedback
	deleted []string
}

func (r *fakeFeedbackRepo) Create(_ context.Context, f *model.Feedback) error {
	f.FeedbackID = nextID("fb")
	r.rows = append(r.rows, *f)
	return nil
}

func (r *fakeFeedbackRepo) GetByID(_ context.Context, id string) (*model.Feedback, error) {
	for i := range r.rows {
		if r.rows[i].FeedbackID == id {
			f := r.rows[i]
			return &f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFeedbackRepo) ListByRequest(_ context.Context, requestID string) ([]model.Feedback, error) {
	var out []model.Feedback
	for _, f := range r.rows {
		if f.RepairRequestID == requestID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFeedbackRepo) DeleteByIDs(_ context.Context, ids []string) error {
	r.deleted = append(r.deleted, ids...)
	return nil
}

// ── fixture ──

// fixture a Repository backed by the fakes above
type fixture struct {
	tx          *fakeTransactor
	floors      *fakeFloorRepo
	apartments  *fakeApartmentRepo
	residents   *fakeUserApartmentRepo
	issues      *fakeIssueRepo
	users       *fakeUserRepo
	skills      *fakeUserTechniqueRepo
	objectTypes *fakeObjectTypeRepo
	objects     *fakeObjectRepo
	tasks       *fakeTaskRepo
	schedules   *fakeScheduleRepo
	requests    *fakeRequestRepo
	appts       *fakeAppointmentRepo
	assigns     *fakeAssignRepo
	media       *fakeMediaRepo
	inspections *fakeInspectionRepo
	approvals   *fakeApprovalRepo
	contracts   *fakeContractRepo
	feedback    *fakeFeedbackRepo

	repo *repository.Repository
}

func newFixture() *fixture {
	f := &fixture{
		tx:          &fakeTransactor{},
		floors:      &fakeFloorRepo{rows: map[string]*model.Floor{}},
		apartments:  &fakeApartmentRepo{rows: map[string]*model.Apartment{}},
		residents:   &fakeUserApartmentRepo{active: map[string]bool{}},
		issues:      &fakeIssueRepo{rows: map[string]*model.Issue{}},
		users:       &fakeUserRepo{},
		skills:      &fakeUserTechniqueRepo{},
		objectTypes: &fakeObjectTypeRepo{rows: map[string]*model.CommonAreaObjectType{}},
		objects:     &fakeObjectRepo{rows: map[string]*model.CommonAreaObject{}},
		tasks:       &fakeTaskRepo{byType: map[string][]model.MaintenanceTask{}},
		schedules:   &fakeScheduleRepo{rows: map[string]*model.MaintenanceSchedule{}},
		requests:    &fakeRequestRepo{rows: map[string]*model.RepairRequest{}, open: map[string]int64{}},
		appts:       &fakeAppointmentRepo{rows: map[string]*model.Appointment{}},
		assigns:     &fakeAssignRepo{counts: map[string]int64{}, busy: map[string]bool{}},
		media:       &fakeMediaRepo{},
		inspections: &fakeInspectionRepo{rows: map[string]*model.InspectionReport{}},
		approvals:   &fakeApprovalRepo{},
		contracts:   &fakeContractRepo{codes: map[string]bool{}},
		feedback:    &fakeFeedbackRepo{},
	}
	f.repo = &repository.Repository{
		Transactor:       f.tx,
		Floor:            f.floors,
		Apartment:        f.apartments,
		UserApartment:    f.residents,
		Issue:            f.issues,
		User:             f.users,
		UserTechnique:    f.skills,
		ObjectType:       f.objectTypes,
		CommonAreaObject: f.objects,
		MaintenanceTask:  f.tasks,
		Schedule:         f.schedules,
		RepairRequest:    f.requests,
		Appointment:      f.appts,
		Assign:           f.assigns,
		Media:            f.media,
		InspectionReport: f.inspections,
		ReportApproval:   f.approvals,
		Contract:         f.contracts,
		Feedback:         f.feedback,
	}
	return f
}

var (
	adminCaller    = dto.Caller{UserID: "admin-1", Role: model.RoleAdmin}
	managerCaller  = dto.Caller{UserID: "manager-1", Role: model.RoleManager}
	leadCaller     = dto.Caller{UserID: "lead-1", Role: model.RoleTechnicianLead}
	residentCaller = dto.Caller{UserID: "resident-1", Role: model.RoleResident}
)
