package entity

import "strings"

// CalendarFilter is the client-side restriction applied to loaded events.
// An empty DoctorIDs set means no doctor restriction.
type CalendarFilter struct {
	DoctorIDs   map[string]struct{}
	SearchQuery string
}

// NewCalendarFilter builds a filter from a list of doctor ids and a search query.
func NewCalendarFilter(doctorIDs []string, query string) CalendarFilter {
	f := CalendarFilter{SearchQuery: query}
	if len(doctorIDs) > 0 {
		f.DoctorIDs = make(map[string]struct{}, len(doctorIDs))
		for _, id := range doctorIDs {
			f.DoctorIDs[id] = struct{}{}
		}
	}
	return f
}

// MatchesDoctor checks resource membership; every event passes an empty set.
func (f CalendarFilter) MatchesDoctor(e *CalendarEvent) bool {
	if len(f.DoctorIDs) == 0 {
		return true
	}
	_, ok := f.DoctorIDs[e.ResourceID]
	return ok
}

// MatchesSearch is a case-insensitive substring match on title, patient name, type
// or reason.
func (f CalendarFilter) MatchesSearch(e *CalendarEvent) bool {
	q := strings.ToLower(strings.TrimSpace(f.SearchQuery))
	if q == "" {
		return true
	}
	fields := []string{
		e.Title,
		e.ExtendedProps.PatientName,
		string(e.ExtendedProps.Type),
		e.ExtendedProps.Reason,
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Apply runs the doctor filter then the search filter. Input order is kept and events
// are copied, never modified.
func (f CalendarFilter) Apply(events []CalendarEvent) []CalendarEvent {
	filtered := make([]CalendarEvent, 0, len(events))
	for i := range events {
		if !f.MatchesDoctor(&events[i]) {
			continue
		}
		if !f.MatchesSearch(&events[i]) {
			continue
		}
		filtered = append(filtered, events[i])
	}
	return filtered
}

// AppointmentQuery scopes a backend appointment listing.
type AppointmentQuery struct {
	Start     string // YYYY-MM-DD HH:MM:SS
	End       string
	DoctorID  string
	PatientID string
}
