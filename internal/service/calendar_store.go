package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"clinic-calendar/internal/converter"
	"clinic-calendar/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

var (
	ErrInvalidEditTransition = errors.New("invalid edit state transition")
	ErrInvalidView           = errors.New("invalid calendar view")
	ErrEventNotFound         = errors.New("calendar event not found")
	ErrNoRangeLoaded         = errors.New("no date range loaded yet")
	ErrStoreClosed           = errors.New("calendar store closed")
)

// CalendarSource is the read side of the appointment service a store loads from.
type CalendarSource interface {
	ListByDateRange(ctx context.Context, start, end time.Time) ([]entity.Appointment, error)
	ListBlockedTime(ctx context.Context, start, end time.Time) ([]entity.Appointment, error)
	ListResources(ctx context.Context) ([]entity.Resource, error)
}

// CalendarSnapshot is a consistent copy of the render inputs at one revision.
type CalendarSnapshot struct {
	Revision          uint64                 `json:"revision"`
	View              entity.CalendarView    `json:"view"`
	Date              time.Time              `json:"date"`
	Range             *entity.DateRange      `json:"range,omitempty"`
	Events            []entity.CalendarEvent `json:"events"`
	Resources         []entity.Resource      `json:"resources"`
	SelectedEvent     *entity.CalendarEvent  `json:"selected_event,omitempty"`
	FilteredDoctorIDs []string               `json:"filtered_doctor_ids"`
	SearchQuery       string                 `json:"search_query"`
	Loading           bool                   `json:"loading"`
	Error             string                 `json:"error,omitempty"`
	EditPhase         entity.EditPhase       `json:"edit_phase"`
	Edit              entity.EditState       `json:"edit"`
}

// CalendarStore holds the calendar state of one session. Every change to a render input
// bumps the revision and wakes subscribers.
type CalendarStore struct {
	mu     sync.RWMutex
	source CalendarSource
	log    *logrus.Logger

	events      []entity.CalendarEvent
	annotations []entity.CalendarEvent
	resources   []entity.Resource
	view        entity.CalendarView
	date        time.Time
	loaded      *entity.DateRange
	selectedID  string
	filter      entity.CalendarFilter
	loading     bool
	lastErr     string
	edit        entity.EditState

	revision uint64
	subs     map[int]chan uint64
	nextSub  int
	closed   bool

	lastUsed atomic.Int64
}

func NewCalendarStore(source CalendarSource, view entity.CalendarView, log *logrus.Logger) *CalendarStore {
	if !view.IsValid() {
		view = entity.CalendarViewWeek
	}
	s := &CalendarStore{
		source: source,
		log:    log,
		view:   view,
		date:   time.Now().In(converter.Location()),
		edit:   entity.IdleState{},
		subs:   make(map[int]chan uint64),
	}
	s.touch()
	return s
}

// LoadAppointmentsByDateRange fetches appointments and blocked time concurrently and
// replaces the event list in one step. A blocked-time failure degrades to an empty list;
// an appointment failure keeps the previous list and records the error.
func (s *CalendarStore) LoadAppointmentsByDateRange(ctx context.Context, start, end time.Time) error {
	s.touch()
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	var (
		appointments     []entity.Appointment
		blocked          []entity.Appointment
		apptErr, blkdErr error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		appointments, apptErr = s.source.ListByDateRange(ctx, start, end)
	})
	wg.Go(func() {
		blocked, blkdErr = s.source.ListBlockedTime(ctx, start, end)
	})
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if apptErr != nil {
		s.log.Warnf("Failed to load appointments for %s - %s: %+v", start.Format(time.RFC3339), end.Format(time.RFC3339), apptErr)
		s.lastErr = apptErr.Error()
		s.bumpLocked()
		return apptErr
	}
	if blkdErr != nil {
		s.log.Warnf("Failed to load blocked time, showing appointments only: %+v", blkdErr)
		blocked = nil
	}

	events := make([]entity.CalendarEvent, 0, len(appointments)+len(blocked))
	events = append(events, converter.MapAppointmentsToCalendarEvents(appointments)...)
	events = append(events, converter.MapAppointmentsToCalendarEvents(blocked)...)

	s.events = events
	s.loaded = &entity.DateRange{Start: start, End: end}
	s.lastErr = ""
	s.bumpLocked()
	return nil
}

// Reload refetches the last loaded range.
func (s *CalendarStore) Reload(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded == nil {
		return ErrNoRangeLoaded
	}
	return s.LoadAppointmentsByDateRange(ctx, loaded.Start, loaded.End)
}

func (s *CalendarStore) LoadResources(ctx context.Context) error {
	s.touch()
	resources, err := s.source.ListResources(ctx)
	if err != nil {
		s.log.Warnf("Failed to load calendar resources: %+v", err)
		return err
	}
	s.mu.Lock()
	s.resources = resources
	s.bumpLocked()
	s.mu.Unlock()
	return nil
}

// GetFilteredEvents applies the doctor filter then the search filter to loaded events
// and annotations. It is recomputed on every call.
func (s *CalendarStore) GetFilteredEvents() []entity.CalendarEvent {
	s.touch()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filteredLocked()
}

func (s *CalendarStore) filteredLocked() []entity.CalendarEvent {
	all := make([]entity.CalendarEvent, 0, len(s.events)+len(s.annotations))
	all = append(all, s.events...)
	all = append(all, s.annotations...)
	return s.filter.Apply(all)
}

// FindEvent looks up a loaded event or annotation by its display id.
func (s *CalendarStore) FindEvent(id string) (entity.CalendarEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(id)
}

func (s *CalendarStore) findLocked(id string) (entity.CalendarEvent, bool) {
	for _, list := range [][]entity.CalendarEvent{s.events, s.annotations} {
		for _, e := range list {
			if e.ID == id {
				return e, true
			}
		}
	}
	return entity.CalendarEvent{}, false
}

func (s *CalendarStore) Resources() []entity.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Resource(nil), s.resources...)
}

// AddEvent puts a backend-confirmed appointment or blocked slot on the calendar. An
// event with the same id is replaced.
func (s *CalendarStore) AddEvent(a *entity.Appointment) {
	s.UpdateEvent(a)
}

// UpdateEvent replaces the event of a backend-confirmed appointment, or appends it
// when it is not loaded.
func (s *CalendarStore) UpdateEvent(a *entity.Appointment) {
	event := converter.MapAppointmentToCalendarEvent(a)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.replaceLocked(event) {
		s.events = append(s.events, event)
	}
	s.bumpLocked()
}

// ReplaceEvent updates an appointment only when it is already loaded.
func (s *CalendarStore) ReplaceEvent(a *entity.Appointment) bool {
	event := converter.MapAppointmentToCalendarEvent(a)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.replaceLocked(event) {
		return false
	}
	s.bumpLocked()
	return true
}

func (s *CalendarStore) replaceLocked(event entity.CalendarEvent) bool {
	for i := range s.events {
		if s.events[i].ID == event.ID {
			s.events[i] = event
			return true
		}
	}
	return false
}

// DeleteEvent drops the appointment with the given backend id.
func (s *CalendarStore) DeleteEvent(appointmentID string) {
	s.removeByID(appointmentID)
}

func (s *CalendarStore) AddBlockedTime(a *entity.Appointment) {
	blocked := *a
	blocked.IsBlockedTime = true
	blocked.PatientID = ""
	s.AddEvent(&blocked)
}

// RemoveBlockedTime drops the blocked slot with the given backend id.
func (s *CalendarStore) RemoveBlockedTime(blockedID string) {
	s.removeByID(entity.BlockedEventPrefix + strings.TrimPrefix(blockedID, entity.BlockedEventPrefix))
}

func (s *CalendarStore) removeByID(eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0:0]
	for _, e := range s.events {
		if e.ID != eventID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(s.events) {
		return
	}
	s.events = kept
	if s.selectedID == eventID {
		s.selectedID = ""
	}
	s.bumpLocked()
}

// AddAnnotation places a local-only note on the calendar.
func (s *CalendarStore) AddAnnotation(title string, r entity.DateRange, resourceID string) (entity.CalendarEvent, error) {
	if strings.TrimSpace(title) == "" {
		return entity.CalendarEvent{}, errors.New("annotation title is required")
	}
	if !r.End.After(r.Start) {
		return entity.CalendarEvent{}, converter.ErrInvalidTimeRange
	}
	note := converter.NewAnnotationEvent(title, r, resourceID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations = append(s.annotations, note)
	s.bumpLocked()
	return note, nil
}

func (s *CalendarStore) RemoveAnnotation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.annotations {
		if n.ID == id {
			s.annotations = append(s.annotations[:i:i], s.annotations[i+1:]...)
			s.bumpLocked()
			return nil
		}
	}
	return ErrEventNotFound
}

// MoveAnnotation repositions a local note. Notes need no backend confirmation.
func (s *CalendarStore) MoveAnnotation(id string, r entity.DateRange, resourceID string) (entity.CalendarEvent, error) {
	if !r.End.After(r.Start) {
		return entity.CalendarEvent{}, converter.ErrInvalidTimeRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.annotations {
		if s.annotations[i].ID == id {
			s.annotations[i].Start = r.Start
			s.annotations[i].End = r.End
			if resourceID != "" {
				s.annotations[i].ResourceID = resourceID
			}
			s.bumpLocked()
			return s.annotations[i], nil
		}
	}
	return entity.CalendarEvent{}, ErrEventNotFound
}

func (s *CalendarStore) SetView(view entity.CalendarView) error {
	if !view.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidView, view)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != view {
		s.view = view
		s.bumpLocked()
	}
	return nil
}

func (s *CalendarStore) SetDate(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.date.Equal(date) {
		s.date = date
		s.bumpLocked()
	}
}

// SetDoctorFilter restricts displayed events to the given doctors; nil clears it.
func (s *CalendarStore) SetDoctorFilter(doctorIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = entity.NewCalendarFilter(doctorIDs, s.filter.SearchQuery)
	s.bumpLocked()
}

func (s *CalendarStore) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter.SearchQuery != query {
		s.filter.SearchQuery = query
		s.bumpLocked()
	}
}

// SelectEvent marks an event as selected; an empty id clears the selection.
func (s *CalendarStore) SelectEvent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = id
}

func (s *CalendarStore) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = msg
}

func (s *CalendarStore) EditState() entity.EditState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edit
}

// TransitionEdit moves the edit lifecycle to next when the current phase allows it.
func (s *CalendarStore) TransitionEdit(next entity.EditState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.edit.Phase()
	if !entity.CanTransition(from, next.Phase()) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidEditTransition, from, next.Phase())
	}
	s.edit = next
	if _, idle := next.(entity.IdleState); idle {
		s.selectedID = ""
	}
	return nil
}

// ResetEdit returns to idle from any phase.
func (s *CalendarStore) ResetEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = entity.IdleState{}
	s.selectedID = ""
}

func (s *CalendarStore) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *CalendarStore) Snapshot() CalendarSnapshot {
	s.touch()
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := CalendarSnapshot{
		Revision:          s.revision,
		View:              s.view,
		Date:              s.date,
		Events:            s.filteredLocked(),
		Resources:         append([]entity.Resource{}, s.resources...),
		FilteredDoctorIDs: make([]string, 0, len(s.filter.DoctorIDs)),
		SearchQuery:       s.filter.SearchQuery,
		Loading:           s.loading,
		Error:             s.lastErr,
		EditPhase:         s.edit.Phase(),
		Edit:              s.edit,
	}
	if s.loaded != nil {
		r := *s.loaded
		snap.Range = &r
	}
	for id := range s.filter.DoctorIDs {
		snap.FilteredDoctorIDs = append(snap.FilteredDoctorIDs, id)
	}
	if s.selectedID != "" {
		if e, ok := s.findLocked(s.selectedID); ok {
			snap.SelectedEvent = &e
		}
	}
	return snap
}

// Subscribe returns a channel that receives the latest revision after changes. A pending
// notification absorbs later ones, so a burst of changes yields one wake-up. The channel
// is closed by the cancel func or when the store closes.
func (s *CalendarStore) Subscribe() (<-chan uint64, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, nil, ErrStoreClosed
	}

	id := s.nextSub
	s.nextSub++
	ch := make(chan uint64, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel, nil
}

// Close releases subscribers. The store keeps answering reads.
func (s *CalendarStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// bumpLocked must be called with mu held for writing.
func (s *CalendarStore) bumpLocked() {
	s.revision++
	for _, ch := range s.subs {
		select {
		case ch <- s.revision:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s.revision:
			default:
			}
		}
	}
}

func (s *CalendarStore) touch() {
	s.lastUsed.Store(time.Now().Unix())
}

func (s *CalendarStore) idleSince() time.Time {
	return time.Unix(s.lastUsed.Load(), 0)
}
