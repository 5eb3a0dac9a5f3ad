package converter

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"clinic-calendar/internal/domain/entity"
)

var (
	ErrMissingDateTime   = errors.New("appointment payload has no date-time field")
	ErrMalformedDateTime = errors.New("malformed appointment date-time")
	ErrInvalidTimeRange  = errors.New("appointment end must be after start")
)

const (
	// APIDateTimeLayout is the wall-clock format the clinic backend reads and writes.
	APIDateTimeLayout = "2006-01-02 15:04:05"
	DateLayout        = "2006-01-02"
	TimeOfDayLayout   = "15:04"
)

var (
	locationMu sync.RWMutex
	location   = time.Local
)

// SetLocation sets the zone backend wall-clock times are interpreted in.
func SetLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	locationMu.Lock()
	location = loc
	locationMu.Unlock()
}

// Location returns the zone backend wall-clock times are interpreted in.
func Location() *time.Location {
	locationMu.RLock()
	defer locationMu.RUnlock()
	return location
}

var wallClockLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseAPIDateTime normalizes "YYYY-MM-DD HH:mm[:ss]", T-delimited, multi-space and
// RFC3339 variants. Values without a zone are read in Location().
func ParseAPIDateTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrMissingDateTime
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	normalized := strings.Join(strings.Fields(s), "T")
	if t, err := time.Parse(time.RFC3339Nano, normalized); err == nil {
		return t, nil
	}
	loc := Location()
	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, normalized, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDateTime, raw)
}

// FormatAPIDateTime renders t as backend wall-clock time.
func FormatAPIDateTime(t time.Time) string {
	return t.In(Location()).Format(APIDateTimeLayout)
}

// MapAPIResponseToAppointment converts a backend payload. It fails rather than return an
// appointment without a valid time range.
func MapAPIResponseToAppointment(p *entity.AppointmentPayload) (*entity.Appointment, error) {
	if p == nil {
		return nil, ErrMissingDateTime
	}

	startRaw := p.AppointmentDatetimeStart
	if strings.TrimSpace(startRaw) == "" {
		startRaw = p.AppointmentDatetime
	}
	if strings.TrimSpace(startRaw) == "" {
		return nil, fmt.Errorf("appointment %s: %w", p.ID, ErrMissingDateTime)
	}

	start, err := ParseAPIDateTime(startRaw)
	if err != nil {
		return nil, fmt.Errorf("appointment %s start: %w", p.ID, err)
	}

	var end time.Time
	if strings.TrimSpace(p.AppointmentDatetimeEnd) != "" {
		end, err = ParseAPIDateTime(p.AppointmentDatetimeEnd)
		if err != nil {
			return nil, fmt.Errorf("appointment %s end: %w", p.ID, err)
		}
	} else {
		end = start.Add(durationOrDefault(p.Duration))
	}
	if !end.After(start) {
		return nil, fmt.Errorf("appointment %s: %w", p.ID, ErrInvalidTimeRange)
	}

	apptType := normalizeType(firstNonEmpty(p.Type, p.AppointmentType))
	isBlocked := p.IsBlockedTime || apptType == entity.AppointmentTypeBlockedTime
	if isBlocked {
		apptType = entity.AppointmentTypeBlockedTime
	}

	appt := &entity.Appointment{
		ID:            p.ID.String(),
		Start:         start,
		End:           end,
		PatientID:     p.PatientID.String(),
		PatientName:   strings.TrimSpace(p.PatientName),
		DoctorID:      p.DoctorID.String(),
		DoctorName:    strings.TrimSpace(p.DoctorName),
		Type:          apptType,
		Status:        normalizeStatus(p.Status),
		Reason:        strings.TrimSpace(p.Reason),
		Notes:         joinNotes(p.Notes, p.PatientNotes, p.StaffNotes),
		IsBlockedTime: isBlocked,
		Fee:           p.Fee,
	}
	if isBlocked {
		appt.PatientID = ""
		appt.PatientName = ""
		appt.BlockCategory = normalizeCategory(p.BlockCategory)
	}
	return appt, nil
}

// MapAPIResponsesToAppointments maps element-wise and keeps input order.
func MapAPIResponsesToAppointments(payloads []entity.AppointmentPayload) ([]entity.Appointment, error) {
	appointments := make([]entity.Appointment, 0, len(payloads))
	for i := range payloads {
		appt, err := MapAPIResponseToAppointment(&payloads[i])
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *appt)
	}
	return appointments, nil
}

// MapAppointmentToAPIRequest is the inverse of MapAPIResponseToAppointment. Non-empty
// patientID / doctorID override the appointment's own references.
func MapAppointmentToAPIRequest(a *entity.Appointment, patientID, doctorID string) entity.AppointmentRequest {
	end := a.End
	if end.IsZero() || !end.After(a.Start) {
		end = a.Start.Add(entity.DefaultAppointmentDuration)
	}

	req := entity.AppointmentRequest{
		PatientID:                firstNonEmpty(patientID, a.PatientID),
		DoctorID:                 firstNonEmpty(doctorID, a.DoctorID),
		AppointmentDatetimeStart: FormatAPIDateTime(a.Start),
		AppointmentDatetimeEnd:   FormatAPIDateTime(end),
		Duration:                 int(end.Sub(a.Start) / time.Minute),
		Type:                     string(a.Type),
		Status:                   string(a.Status),
		Reason:                   a.Reason,
		Notes:                    a.Notes,
		IsBlockedTime:            a.IsBlockedTime,
	}
	if a.IsBlockedTime {
		req.PatientID = ""
	}
	return req
}

// AppointmentFormToAppointment combines the form's date and time-of-day into absolute
// instants; the end comes from the duration in minutes (default 30).
func AppointmentFormToAppointment(form *entity.AppointmentForm) (*entity.Appointment, error) {
	start, err := combineDateAndTime(form.Date, form.Time)
	if err != nil {
		return nil, err
	}

	apptType := form.Type
	if form.IsBlockedTime {
		apptType = entity.AppointmentTypeBlockedTime
	} else if apptType == "" {
		apptType = entity.AppointmentTypeConsultation
	}

	appt := &entity.Appointment{
		Start:         start,
		End:           start.Add(durationOrDefault(form.Duration)),
		PatientID:     form.PatientID,
		DoctorID:      form.DoctorID,
		Type:          apptType,
		Status:        entity.AppointmentStatusScheduled,
		Reason:        strings.TrimSpace(form.Reason),
		Notes:         strings.TrimSpace(form.Notes),
		IsBlockedTime: form.IsBlockedTime,
	}
	if form.IsBlockedTime {
		appt.PatientID = ""
		appt.BlockCategory = normalizeCategory(string(form.BlockCategory))
	}
	return appt, nil
}

// AppointmentToForm opens an existing appointment in a form.
func AppointmentToForm(a *entity.Appointment) entity.AppointmentForm {
	start := a.Start.In(Location())
	return entity.AppointmentForm{
		Date:          start.Format(DateLayout),
		Time:          start.Format(TimeOfDayLayout),
		Duration:      int(a.Duration() / time.Minute),
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		Type:          a.Type,
		Reason:        a.Reason,
		Notes:         a.Notes,
		IsBlockedTime: a.IsBlockedTime,
		BlockCategory: a.BlockCategory,
	}
}

func combineDateAndTime(date, timeOfDay string) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeOfDay = strings.TrimSpace(timeOfDay)
	if date == "" || timeOfDay == "" {
		return time.Time{}, ErrMissingDateTime
	}
	loc := Location()
	for _, layout := range []string{DateLayout + " " + TimeOfDayLayout, DateLayout + " 15:04:05"} {
		if t, err := time.ParseInLocation(layout, date+" "+timeOfDay, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q %q", ErrMalformedDateTime, date, timeOfDay)
}

func durationOrDefault(minutes int) time.Duration {
	if minutes <= 0 {
		return entity.DefaultAppointmentDuration
	}
	return time.Duration(minutes) * time.Minute
}

func normalizeStatus(raw string) entity.AppointmentStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch s {
	case "":
		return entity.AppointmentStatusScheduled
	case "noshow":
		return entity.AppointmentStatusNoShow
	case "canceled":
		return entity.AppointmentStatusCancelled
	}
	return entity.AppointmentStatus(s)
}

func normalizeType(raw string) entity.AppointmentType {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch s {
	case "":
		return entity.AppointmentTypeConsultation
	case "followup":
		return entity.AppointmentTypeFollowUp
	case "blocked", "blocked_slot":
		return entity.AppointmentTypeBlockedTime
	}
	return entity.AppointmentType(s)
}

func normalizeCategory(raw string) entity.BlockCategory {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch entity.BlockCategory(s) {
	case entity.BlockCategoryBreak, entity.BlockCategoryMeeting, entity.BlockCategoryLeave, entity.BlockCategoryPersonal:
		return entity.BlockCategory(s)
	case "lunch":
		return entity.BlockCategoryBreak
	case "vacation":
		return entity.BlockCategoryLeave
	}
	return entity.BlockCategoryOther
}

// joinNotes prefers the split patient/staff segments when the backend sends them.
func joinNotes(notes, patientNotes, staffNotes string) string {
	var parts []string
	for _, s := range []string{patientNotes, staffNotes} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return strings.TrimSpace(notes)
	}
	return strings.Join(parts, "\n\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
