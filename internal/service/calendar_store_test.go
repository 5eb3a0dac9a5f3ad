package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"clinic-calendar/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

type fakeSource struct {
	mu           sync.Mutex
	appointments []entity.Appointment
	blocked      []entity.Appointment
	resources    []entity.Resource
	apptErr      error
	blockedErr   error
	calls        int
}

func (f *fakeSource) ListByDateRange(ctx context.Context, start, end time.Time) ([]entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.appointments, f.apptErr
}

func (f *fakeSource) ListBlockedTime(ctx context.Context, start, end time.Time) ([]entity.Appointment, error) {
	return f.blocked, f.blockedErr
}

func (f *fakeSource) ListResources(ctx context.Context) ([]entity.Resource, error) {
	return f.resources, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var day = time.Date(2025, 7, 8, 0, 0, 0, 0, time.Local)

func appt(id, doctorID, patient string, hour int) entity.Appointment {
	start := day.Add(time.Duration(hour) * time.Hour)
	return entity.Appointment{
		ID:          id,
		Start:       start,
		End:         start.Add(30 * time.Minute),
		DoctorID:    doctorID,
		PatientID:   "p-" + id,
		PatientName: patient,
		Type:        entity.AppointmentTypeConsultation,
		Status:      entity.AppointmentStatusScheduled,
	}
}

func blockedSlot(id, doctorID string, hour int) entity.Appointment {
	start := day.Add(time.Duration(hour) * time.Hour)
	return entity.Appointment{
		ID:            id,
		Start:         start,
		End:           start.Add(time.Hour),
		DoctorID:      doctorID,
		Type:          entity.AppointmentTypeBlockedTime,
		Status:        entity.AppointmentStatusConfirmed,
		IsBlockedTime: true,
		BlockCategory: entity.BlockCategoryBreak,
	}
}

func eventIDs(events []entity.CalendarEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func sameIDs(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestCalendarStore_LoadConcatenatesAppointmentsFirst(t *testing.T) {
	src := &fakeSource{
		appointments: []entity.Appointment{appt("1", "d1", "John Smith", 8), appt("2", "d2", "Ana Lee", 9)},
		blocked:      []entity.Appointment{blockedSlot("7", "d1", 12)},
	}
	store := NewCalendarStore(src, entity.CalendarViewWeek, testLogger())

	if err := store.LoadAppointmentsByDateRange(context.Background(), day, day.Add(24*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := eventIDs(store.GetFilteredEvents())
	if !sameIDs(got, "1", "2", "blocked-7") {
		t.Errorf("unexpected events %v", got)
	}
}

func TestCalendarStore_BlockedTimeFailureDegradesToEmpty(t *testing.T) {
	src := &fakeSource{
		appointments: []entity.Appointment{appt("1", "d1", "John Smith", 8)},
		blockedErr:   errors.New("blocked-time endpoint down"),
	}
	store := NewCalendarStore(src, entity.CalendarViewWeek, testLogger())

	if err := store.LoadAppointmentsByDateRange(context.Background(), day, day.Add(24*time.Hour)); err != nil {
		t.Fatalf("blocked-time failure must not fail the load: %v", err)
	}
	if got := eventIDs(store.GetFilteredEvents()); !sameIDs(got, "1") {
		t.Errorf("unexpected events %v", got)
	}
	if snap := store.Snapshot(); snap.Error != "" {
		t.Errorf("expected no user-visible error, got %q", snap.Error)
	}
}

func TestCalendarStore_AppointmentFailureKeepsPreviousList(t *testing.T) {
	src := &fakeSource{appointments: []entity.Appointment{appt("1", "d1", "John Smith", 8)}}
	store := NewCalendarStore(src, entity.CalendarViewWeek, testLogger())
	ctx := context.Background()

	if err := store.LoadAppointmentsByDateRange(ctx, day, day.Add(24*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src.apptErr = errors.New("network unreachable")
	src.appointments = nil
	if err := store.LoadAppointmentsByDateRange(ctx, day, day.Add(48*time.Hour)); err == nil {
		t.Fatal("expected error")
	}

	snap := store.Snapshot()
	if !sameIDs(eventIDs(snap.Events), "1") {
		t.Errorf("previous list should be kept, got %v", eventIDs(snap.Events))
	}
	if snap.Error != "network unreachable" {
		t.Errorf("unexpected error field %q", snap.Error)
	}
	if snap.Loading {
		t.Error("loading flag left set")
	}
}

func TestCalendarStore_FiltersComposeAndIncludeAnnotations(t *testing.T) {
	src := &fakeSource{appointments: []entity.Appointment{
		appt("1", "d1", "John Smith", 8),
		appt("2", "d2", "Ana Smithson", 9),
		appt("3", "d2", "Mary Jones", 10),
	}}
	store := NewCalendarStore(src, entity.CalendarViewWeek, testLogger())
	if err := store.LoadAppointmentsByDateRange(context.Background(), day, day.Add(24*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.SetDoctorFilter([]string{"d2"})
	store.SetSearchQuery("smith")
	if got := eventIDs(store.GetFilteredEvents()); !sameIDs(got, "2") {
		t.Errorf("unexpected filtered events %v", got)
	}

	note, err := store.AddAnnotation("Smith family call", entity.DateRange{Start: day.Add(11 * time.Hour), End: day.Add(12 * time.Hour)}, "d2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := eventIDs(store.GetFilteredEvents()); !sameIDs(got, "2", note.ID) {
		t.Errorf("annotation should pass the same filters, got %v", got)
	}

	store.SetDoctorFilter(nil)
	store.SetSearchQuery("")
	if got := store.GetFilteredEvents(); len(got) != 4 {
		t.Errorf("expected all 4 entries with no filters, got %d", len(got))
	}

	if err := store.RemoveAnnotation(note.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.RemoveAnnotation(note.ID); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestCalendarStore_Mutators(t *testing.T) {
	store := NewCalendarStore(&fakeSource{}, entity.CalendarViewWeek, testLogger())

	a := appt("1", "d1", "John Smith", 8)
	store.AddEvent(&a)
	a.Status = entity.AppointmentStatusCancelled
	store.UpdateEvent(&a)

	events := store.GetFilteredEvents()
	if len(events) != 1 || events[0].ExtendedProps.Status != entity.AppointmentStatusCancelled {
		t.Fatalf("expected one cancelled event, got %+v", events)
	}

	b := blockedSlot("9", "d1", 12)
	store.AddBlockedTime(&b)
	if _, ok := store.FindEvent("blocked-9"); !ok {
		t.Error("blocked slot not added")
	}
	store.RemoveBlockedTime("9")
	if _, ok := store.FindEvent("blocked-9"); ok {
		t.Error("blocked slot not removed")
	}

	store.DeleteEvent("1")
	if len(store.GetFilteredEvents()) != 0 {
		t.Error("expected empty list after delete")
	}
}

func TestCalendarStore_AddIsIdempotentAndReplaceNeedsLoaded(t *testing.T) {
	store := NewCalendarStore(&fakeSource{}, entity.CalendarViewWeek, testLogger())

	b := blockedSlot("9", "d1", 12)
	store.AddBlockedTime(&b)
	store.AddBlockedTime(&b)
	if got := len(store.GetFilteredEvents()); got != 1 {
		t.Fatalf("expected one blocked slot, got %d", got)
	}

	a := appt("1", "d1", "John Smith", 8)
	if store.ReplaceEvent(&a) {
		t.Error("ReplaceEvent must not add an unloaded appointment")
	}
	store.AddEvent(&a)
	a.Status = entity.AppointmentStatusConfirmed
	if !store.ReplaceEvent(&a) {
		t.Fatal("expected loaded appointment to be replaced")
	}
	if e, _ := store.FindEvent("1"); e.ExtendedProps.Status != entity.AppointmentStatusConfirmed {
		t.Errorf("expected confirmed, got %s", e.ExtendedProps.Status)
	}
}

func TestCalendarStore_SubscribeCoalesces(t *testing.T) {
	store := NewCalendarStore(&fakeSource{}, entity.CalendarViewWeek, testLogger())
	ch, cancel, err := store.Subscribe()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cancel()

	before := store.Revision()
	store.SetView(entity.CalendarViewDay)
	store.SetDate(day)
	store.SetDoctorFilter([]string{"d1"})
	store.SetSearchQuery("x")

	select {
	case rev := <-ch:
		if rev != before+4 {
			t.Errorf("expected latest revision %d, got %d", before+4, rev)
		}
	default:
		t.Fatal("expected a notification")
	}

	select {
	case rev := <-ch:
		t.Errorf("burst should coalesce into one notification, got extra %d", rev)
	default:
	}
}

func TestCalendarStore_UnchangedInputsDoNotNotify(t *testing.T) {
	store := NewCalendarStore(&fakeSource{}, entity.CalendarViewWeek, testLogger())
	rev := store.Revision()

	store.SetView(entity.CalendarViewWeek)
	store.SetSearchQuery("")
	if store.Revision() != rev {
		t.Error("setting identical values should not bump the revision")
	}

	if err := store.SetView("agendaDay"); !errors.Is(err, ErrInvalidView) {
		t.Errorf("expected ErrInvalidView, got %v", err)
	}
}

func TestCalendarStore_TransitionEdit(t *testing.T) {
	store := NewCalendarStore(&fakeSource{}, entity.CalendarViewWeek, testLogger())

	if err := store.TransitionEdit(entity.SavingState{}); !errors.Is(err, ErrInvalidEditTransition) {
		t.Fatalf("idle -> saving must fail, got %v", err)
	}
	if err := store.TransitionEdit(entity.CreatingState{Start: day, End: day.Add(time.Hour)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.TransitionEdit(entity.DraftState{Kind: entity.DraftKindAppointment}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.EditState().Phase() != entity.EditPhaseDraft {
		t.Errorf("expected draft, got %s", store.EditState().Phase())
	}
	store.ResetEdit()
	if store.EditState().Phase() != entity.EditPhaseIdle {
		t.Error("expected idle after reset")
	}
}

func TestCalendarStore_CloseEndsSubscriptions(t *testing.T) {
	store := NewCalendarStore(&fakeSource{}, entity.CalendarViewWeek, testLogger())
	ch, _, err := store.Subscribe()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.Close()
	if _, ok := <-ch; ok {
		t.Error("expected closed channel")
	}
	if _, _, err := store.Subscribe(); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
}

func TestCalendarStore_Reload(t *testing.T) {
	src := &fakeSource{}
	store := NewCalendarStore(src, entity.CalendarViewWeek, testLogger())
	ctx := context.Background()

	if err := store.Reload(ctx); !errors.Is(err, ErrNoRangeLoaded) {
		t.Fatalf("expected ErrNoRangeLoaded, got %v", err)
	}
	store.LoadAppointmentsByDateRange(ctx, day, day.Add(24*time.Hour))
	if err := store.Reload(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 2 {
		t.Errorf("expected 2 fetches, got %d", src.calls)
	}
}
