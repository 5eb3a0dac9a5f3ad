package converter

import (
	"fmt"
	"strings"

	"clinic-calendar/internal/domain/entity"

	"github.com/google/uuid"
)

const (
	ColorBlue   = "#4285F4"
	ColorGreen  = "#34A853"
	ColorRed    = "#EA4335"
	ColorOrange = "#FF9800"
	ColorWhite  = "#FFFFFF"
)

var statusColors = map[entity.AppointmentStatus]string{
	entity.AppointmentStatusPending:   ColorBlue,
	entity.AppointmentStatusScheduled: ColorBlue,
	entity.AppointmentStatusConfirmed: ColorBlue,
	entity.AppointmentStatusCompleted: ColorGreen,
	entity.AppointmentStatusCancelled: ColorRed,
	entity.AppointmentStatusNoShow:    ColorOrange,
}

var blockCategoryColors = map[entity.BlockCategory]string{
	entity.BlockCategoryBreak:    "#9E9E9E",
	entity.BlockCategoryMeeting:  "#795548",
	entity.BlockCategoryLeave:    "#607D8B",
	entity.BlockCategoryPersonal: "#757575",
	entity.BlockCategoryOther:    "#9E9E9E",
}

// StatusColor returns the display color of an appointment status; unknown statuses are blue.
func StatusColor(status entity.AppointmentStatus) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return ColorBlue
}

func BlockCategoryColor(category entity.BlockCategory) string {
	if c, ok := blockCategoryColors[category]; ok {
		return c
	}
	return blockCategoryColors[entity.BlockCategoryOther]
}

// MapAppointmentToCalendarEvent projects an appointment for display. The event keeps a
// copy of the appointment in its extended props.
func MapAppointmentToCalendarEvent(a *entity.Appointment) entity.CalendarEvent {
	appt := *a
	event := entity.CalendarEvent{
		ID:         a.ID,
		Title:      appointmentTitle(a),
		Start:      a.Start,
		End:        a.End,
		ResourceID: a.DoctorID,
		Color:      StatusColor(a.Status),
		TextColor:  ColorWhite,
		Editable:   !a.IsTerminal(),
		ExtendedProps: entity.EventExtendedProps{
			Appointment:   &appt,
			IsBlockedTime: a.IsBlockedTime,
			PatientName:   a.PatientName,
			Type:          a.Type,
			Reason:        a.Reason,
			Status:        a.Status,
		},
	}
	if a.IsBlockedTime {
		event.ID = entity.BlockedEventPrefix + a.ID
		event.Color = BlockCategoryColor(a.BlockCategory)
		event.Editable = true
	}
	return event
}

// MapAPIResponseToCalendarEvent maps a backend payload straight to a display event.
func MapAPIResponseToCalendarEvent(p *entity.AppointmentPayload) (entity.CalendarEvent, error) {
	appt, err := MapAPIResponseToAppointment(p)
	if err != nil {
		return entity.CalendarEvent{}, err
	}
	return MapAppointmentToCalendarEvent(appt), nil
}

func MapAppointmentsToCalendarEvents(appointments []entity.Appointment) []entity.CalendarEvent {
	events := make([]entity.CalendarEvent, len(appointments))
	for i := range appointments {
		events[i] = MapAppointmentToCalendarEvent(&appointments[i])
	}
	return events
}

func MapAPIResponsesToCalendarEvents(payloads []entity.AppointmentPayload) ([]entity.CalendarEvent, error) {
	appointments, err := MapAPIResponsesToAppointments(payloads)
	if err != nil {
		return nil, err
	}
	return MapAppointmentsToCalendarEvents(appointments), nil
}

// MapBlockedTimePayloadToAppointment reads a blocked-time slot as an Appointment variant
// with no patient.
func MapBlockedTimePayloadToAppointment(p *entity.BlockedTimePayload) (*entity.Appointment, error) {
	if p == nil {
		return nil, ErrMissingDateTime
	}
	return MapAPIResponseToAppointment(&entity.AppointmentPayload{
		ID:                       p.ID,
		DoctorID:                 p.DoctorID,
		DoctorName:               p.DoctorName,
		AppointmentDatetimeStart: p.StartDatetime,
		AppointmentDatetimeEnd:   p.EndDatetime,
		Type:                     string(entity.AppointmentTypeBlockedTime),
		Status:                   string(entity.AppointmentStatusConfirmed),
		Reason:                   p.Reason,
		IsBlockedTime:            true,
		BlockCategory:            p.Category,
	})
}

func MapBlockedTimePayloadsToAppointments(payloads []entity.BlockedTimePayload) ([]entity.Appointment, error) {
	appointments := make([]entity.Appointment, 0, len(payloads))
	for i := range payloads {
		appt, err := MapBlockedTimePayloadToAppointment(&payloads[i])
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *appt)
	}
	return appointments, nil
}

func MapBlockedTimeToAPIRequest(a *entity.Appointment) entity.BlockedTimeRequest {
	end := a.End
	if !end.After(a.Start) {
		end = a.Start.Add(entity.DefaultAppointmentDuration)
	}
	return entity.BlockedTimeRequest{
		DoctorID:      a.DoctorID,
		StartDatetime: FormatAPIDateTime(a.Start),
		EndDatetime:   FormatAPIDateTime(end),
		Reason:        a.Reason,
		Category:      string(a.BlockCategory),
	}
}

// NewAnnotationEvent builds a local-only calendar note. It has no appointment behind it.
func NewAnnotationEvent(title string, r entity.DateRange, resourceID string) entity.CalendarEvent {
	return entity.CalendarEvent{
		ID:         entity.AnnotationEventPrefix + uuid.NewString(),
		Title:      strings.TrimSpace(title),
		Start:      r.Start,
		End:        r.End,
		ResourceID: resourceID,
		Color:      "#FBBC04",
		TextColor:  "#202124",
		ExtendedProps: entity.EventExtendedProps{
			IsAnnotation: true,
		},
	}
}

func MapDoctorPayloadsToResources(payloads []entity.DoctorPayload) []entity.Resource {
	resources := make([]entity.Resource, len(payloads))
	for i, p := range payloads {
		resources[i] = entity.Resource{
			ID:             p.ID.String(),
			Title:          firstNonEmpty(p.FullName, p.Name, "Doctor "+p.ID.String()),
			Specialization: p.Specialization,
		}
	}
	return resources
}

func MapAvailableSlotPayloads(payloads []entity.AvailableSlotPayload) ([]entity.AvailableSlot, error) {
	slots := make([]entity.AvailableSlot, 0, len(payloads))
	for _, p := range payloads {
		start, err := ParseAPIDateTime(p.Start)
		if err != nil {
			return nil, fmt.Errorf("slot start: %w", err)
		}
		end, err := ParseAPIDateTime(p.End)
		if err != nil {
			return nil, fmt.Errorf("slot end: %w", err)
		}
		slots = append(slots, entity.AvailableSlot{Start: start, End: end})
	}
	return slots, nil
}

func MapConflictCheckPayload(p *entity.ConflictCheckPayload) (*entity.ConflictCheck, error) {
	conflicts, err := MapAPIResponsesToAppointments(p.Conflicts)
	if err != nil {
		return nil, err
	}
	return &entity.ConflictCheck{
		HasConflict: p.HasConflict || len(conflicts) > 0,
		Conflicts:   conflicts,
	}, nil
}

func appointmentTitle(a *entity.Appointment) string {
	if a.IsBlockedTime {
		if a.Reason != "" {
			return a.Reason
		}
		if a.BlockCategory != "" && a.BlockCategory != entity.BlockCategoryOther {
			return "Blocked: " + humanize(string(a.BlockCategory))
		}
		return "Blocked time"
	}
	switch {
	case a.PatientName != "" && a.Reason != "":
		return a.PatientName + " - " + a.Reason
	case a.PatientName != "":
		return a.PatientName
	case a.Reason != "":
		return a.Reason
	case a.Type != "":
		return humanize(string(a.Type))
	}
	return "Appointment"
}

func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
