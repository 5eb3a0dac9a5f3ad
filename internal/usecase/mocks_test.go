package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"clinic-calendar/config"
	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/infrastructure/cache"
	"clinic-calendar/internal/service"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// mockAppointmentRepo keeps backend payloads in memory.
type mockAppointmentRepo struct {
	mu        sync.Mutex
	records   map[string]entity.AppointmentPayload
	nextID    int
	err       error
	emptyBody bool
	conflict  *entity.ConflictCheckPayload
	slots     []entity.AvailableSlotPayload
	slotCalls int
	calls     []string
}

func newMockAppointmentRepo(payloads ...entity.AppointmentPayload) *mockAppointmentRepo {
	r := &mockAppointmentRepo{records: map[string]entity.AppointmentPayload{}, nextID: 100}
	for _, p := range payloads {
		r.records[p.ID.String()] = p
	}
	return r
}

func (r *mockAppointmentRepo) record(call string) error {
	r.calls = append(r.calls, call)
	return r.err
}

func (r *mockAppointmentRepo) List(ctx context.Context, query entity.AppointmentQuery) ([]entity.AppointmentPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("list"); err != nil {
		return nil, err
	}
	var out []entity.AppointmentPayload
	for _, p := range r.records {
		if query.DoctorID != "" && p.DoctorID.String() != query.DoctorID {
			continue
		}
		if query.PatientID != "" && p.PatientID.String() != query.PatientID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *mockAppointmentRepo) FindByID(ctx context.Context, id string) (*entity.AppointmentPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("get " + id); err != nil {
		return nil, err
	}
	p, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *mockAppointmentRepo) Create(ctx context.Context, req entity.AppointmentRequest) (*entity.AppointmentPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("create"); err != nil {
		return nil, err
	}
	r.nextID++
	p := payloadFromRequest(fmt.Sprint(r.nextID), req)
	r.records[p.ID.String()] = p
	return &p, nil
}

func (r *mockAppointmentRepo) Update(ctx context.Context, id string, req entity.AppointmentRequest) (*entity.AppointmentPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("update " + id); err != nil {
		return nil, err
	}
	p := payloadFromRequest(id, req)
	r.records[id] = p
	return &p, nil
}

func (r *mockAppointmentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("delete " + id); err != nil {
		return err
	}
	delete(r.records, id)
	return nil
}

func (r *mockAppointmentRepo) setStatus(call, id string, status entity.AppointmentStatus) (*entity.AppointmentPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(call + " " + id); err != nil {
		return nil, err
	}
	p, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("no appointment %s", id)
	}
	p.Status = string(status)
	r.records[id] = p
	if r.emptyBody {
		return nil, nil
	}
	return &p, nil
}

func (r *mockAppointmentRepo) Confirm(ctx context.Context, id string) (*entity.AppointmentPayload, error) {
	return r.setStatus("confirm", id, entity.AppointmentStatusConfirmed)
}

func (r *mockAppointmentRepo) Cancel(ctx context.Context, id string, req entity.CancelRequest) (*entity.AppointmentPayload, error) {
	return r.setStatus("cancel", id, entity.AppointmentStatusCancelled)
}

func (r *mockAppointmentRepo) Complete(ctx context.Context, id string) (*entity.AppointmentPayload, error) {
	return r.setStatus("complete", id, entity.AppointmentStatusCompleted)
}

func (r *mockAppointmentRepo) MarkNoShow(ctx context.Context, id string) (*entity.AppointmentPayload, error) {
	return r.setStatus("no_show", id, entity.AppointmentStatusNoShow)
}

func (r *mockAppointmentRepo) Reschedule(ctx context.Context, id string, req entity.RescheduleRequest) (*entity.AppointmentPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("reschedule " + id); err != nil {
		return nil, err
	}
	p, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("no appointment %s", id)
	}
	p.AppointmentDatetimeStart = req.AppointmentDatetimeStart
	p.AppointmentDatetimeEnd = req.AppointmentDatetimeEnd
	p.Status = string(entity.AppointmentStatusScheduled)
	r.records[id] = p
	return &p, nil
}

func (r *mockAppointmentRepo) CheckConflict(ctx context.Context, req entity.ConflictCheckRequest) (*entity.ConflictCheckPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("conflict " + req.ExcludeID); err != nil {
		return nil, err
	}
	if r.conflict != nil {
		return r.conflict, nil
	}
	return &entity.ConflictCheckPayload{}, nil
}

func (r *mockAppointmentRepo) AvailableSlots(ctx context.Context, doctorID, date string, duration int) ([]entity.AvailableSlotPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slotCalls++
	if err := r.record("slots " + doctorID); err != nil {
		return nil, err
	}
	return r.slots, nil
}

func (r *mockAppointmentRepo) called(call string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if c == call {
			return true
		}
	}
	return false
}

func payloadFromRequest(id string, req entity.AppointmentRequest) entity.AppointmentPayload {
	return entity.AppointmentPayload{
		ID:                       entity.FlexibleID(id),
		PatientID:                entity.FlexibleID(req.PatientID),
		DoctorID:                 entity.FlexibleID(req.DoctorID),
		AppointmentDatetimeStart: req.AppointmentDatetimeStart,
		AppointmentDatetimeEnd:   req.AppointmentDatetimeEnd,
		Duration:                 req.Duration,
		AppointmentType:          req.Type,
		Status:                   req.Status,
		Reason:                   req.Reason,
		Notes:                    req.Notes,
	}
}

type mockBlockedRepo struct {
	mu        sync.Mutex
	records   map[string]entity.BlockedTimePayload
	nextID    int
	createErr error
	deleteErr error
	calls     []string
}

func newMockBlockedRepo(payloads ...entity.BlockedTimePayload) *mockBlockedRepo {
	r := &mockBlockedRepo{records: map[string]entity.BlockedTimePayload{}, nextID: 500}
	for _, p := range payloads {
		r.records[p.ID.String()] = p
	}
	return r
}

func (r *mockBlockedRepo) List(ctx context.Context, query entity.AppointmentQuery) ([]entity.BlockedTimePayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.BlockedTimePayload
	for _, p := range r.records {
		if query.DoctorID == "" || p.DoctorID.String() == query.DoctorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *mockBlockedRepo) Create(ctx context.Context, req entity.BlockedTimeRequest) (*entity.BlockedTimePayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "create")
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	p := entity.BlockedTimePayload{
		ID:            entity.FlexibleID(fmt.Sprint(r.nextID)),
		DoctorID:      entity.FlexibleID(req.DoctorID),
		StartDatetime: req.StartDatetime,
		EndDatetime:   req.EndDatetime,
		Reason:        req.Reason,
		Category:      req.Category,
	}
	r.records[p.ID.String()] = p
	return &p, nil
}

func (r *mockBlockedRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "delete "+id)
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.records, id)
	return nil
}

func (r *mockBlockedRepo) called(call string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if c == call {
			return true
		}
	}
	return false
}

type mockDoctorRepo struct {
	doctors []entity.DoctorPayload
	calls   int
}

func (r *mockDoctorRepo) FindAll(ctx context.Context) ([]entity.DoctorPayload, error) {
	r.calls++
	return r.doctors, nil
}

// memoryCache is a Cache without expiry.
type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dst any) error {
	c.mu.Lock()
	raw, ok := c.values[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dst)
}

func (c *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.values[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.values {
		if strings.HasPrefix(key, prefix) {
			delete(c.values, key)
		}
	}
	return nil
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []service.AuditEntry
}

func (a *recordingAudit) Record(ctx context.Context, entry service.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingAudit) last() service.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return service.AuditEntry{}
	}
	return a.entries[len(a.entries)-1]
}

type accessFixture struct {
	appointments *mockAppointmentRepo
	blocked      *mockBlockedRepo
	doctors      *mockDoctorRepo
	cache        *memoryCache
	audit        *recordingAudit
	usecase      AppointmentUsecase
}

func newAccessFixture(appointments *mockAppointmentRepo, blocked *mockBlockedRepo) *accessFixture {
	f := &accessFixture{
		appointments: appointments,
		blocked:      blocked,
		doctors: &mockDoctorRepo{doctors: []entity.DoctorPayload{
			{ID: "d1", Name: "Dr. Ana Putri", Specialization: "General"},
			{ID: "d2", Name: "Dr. Budi Santoso", Specialization: "Pediatrics"},
		}},
		cache: newMemoryCache(),
		audit: &recordingAudit{},
	}
	f.usecase = NewAppointmentUsecase(
		testLogger(),
		f.appointments,
		f.blocked,
		f.doctors,
		f.cache,
		f.audit,
		config.CalendarConfig{ResourceCacheTTL: time.Minute, SlotCacheTTL: time.Minute},
	)
	return f
}

func principalCtx(p entity.Principal) context.Context {
	return entity.WithPrincipal(context.Background(), p)
}

var (
	adminUser        = entity.Principal{SessionID: "s-admin", UserID: "u1", Role: entity.RoleAdmin}
	receptionistUser = entity.Principal{SessionID: "s-front", UserID: "u2", Role: entity.RoleReceptionist}
	doctorUser       = entity.Principal{SessionID: "s-doc", UserID: "u3", Role: entity.RoleDoctor, DoctorID: "d1"}
	patientUser      = entity.Principal{SessionID: "s-pat", UserID: "u4", Role: entity.RolePatient, PatientID: "p1"}
)

// futureSlot returns an API date-time pair a few days ahead at the given hour.
func futureSlot(hour int) (string, string) {
	day := time.Now().AddDate(0, 0, 3)
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.Local)
	return start.Format("2006-01-02 15:04:05"), start.Add(30 * time.Minute).Format("2006-01-02 15:04:05")
}

func appointmentPayload(id, doctorID, patientID string, start, end string, status entity.AppointmentStatus) entity.AppointmentPayload {
	return entity.AppointmentPayload{
		ID:                       entity.FlexibleID(id),
		DoctorID:                 entity.FlexibleID(doctorID),
		PatientID:                entity.FlexibleID(patientID),
		PatientName:              "Siti Rahma",
		AppointmentDatetimeStart: start,
		AppointmentDatetimeEnd:   end,
		AppointmentType:          string(entity.AppointmentTypeConsultation),
		Status:                   string(status),
	}
}
