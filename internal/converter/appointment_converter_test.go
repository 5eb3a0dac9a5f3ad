package converter

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"clinic-calendar/internal/domain/entity"
)

func TestMapAPIResponseToAppointment_StartOnlyScenario(t *testing.T) {
	payload := &entity.AppointmentPayload{
		ID:                       "42",
		AppointmentDatetimeStart: "2025-07-08 08:00",
		Type:                     "consultation",
		Status:                   "scheduled",
	}

	event, err := MapAPIResponseToCalendarEvent(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStart := time.Date(2025, 7, 8, 8, 0, 0, 0, time.Local)
	if !event.Start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, event.Start)
	}
	if !event.End.Equal(wantStart.Add(30 * time.Minute)) {
		t.Errorf("expected end 08:30, got %v", event.End)
	}
	if event.Color != "#4285F4" {
		t.Errorf("expected color #4285F4, got %s", event.Color)
	}
}

func TestMapAPIResponseToAppointment_DateTimeVariants(t *testing.T) {
	tests := []struct {
		name      string
		payload   entity.AppointmentPayload
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name: "start and end pair",
			payload: entity.AppointmentPayload{
				AppointmentDatetimeStart: "2025-07-08 09:15:00",
				AppointmentDatetimeEnd:   "2025-07-08 10:00:00",
			},
			wantStart: time.Date(2025, 7, 8, 9, 15, 0, 0, time.Local),
			wantEnd:   time.Date(2025, 7, 8, 10, 0, 0, 0, time.Local),
		},
		{
			name:      "single appointment_datetime",
			payload:   entity.AppointmentPayload{AppointmentDatetime: "2025-07-08T14:00"},
			wantStart: time.Date(2025, 7, 8, 14, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2025, 7, 8, 14, 30, 0, 0, time.Local),
		},
		{
			name:      "multiple spaces",
			payload:   entity.AppointmentPayload{AppointmentDatetime: " 2025-07-08   14:00:00 "},
			wantStart: time.Date(2025, 7, 8, 14, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2025, 7, 8, 14, 30, 0, 0, time.Local),
		},
		{
			name:      "explicit duration",
			payload:   entity.AppointmentPayload{AppointmentDatetime: "2025-07-08 14:00", Duration: 45},
			wantStart: time.Date(2025, 7, 8, 14, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2025, 7, 8, 14, 45, 0, 0, time.Local),
		},
		{
			name:      "rfc3339 with zone",
			payload:   entity.AppointmentPayload{AppointmentDatetimeStart: "2025-07-08T08:00:00Z"},
			wantStart: time.Date(2025, 7, 8, 8, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 7, 8, 8, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt, err := MapAPIResponseToAppointment(&tt.payload)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !appt.Start.Equal(tt.wantStart) {
				t.Errorf("start: want %v, got %v", tt.wantStart, appt.Start)
			}
			if !appt.End.Equal(tt.wantEnd) {
				t.Errorf("end: want %v, got %v", tt.wantEnd, appt.End)
			}
			if !appt.Start.Before(appt.End) {
				t.Errorf("expected start before end")
			}
		})
	}
}

func TestMapAPIResponseToAppointment_RejectsBadDateTimes(t *testing.T) {
	tests := []struct {
		name    string
		payload *entity.AppointmentPayload
		wantErr error
	}{
		{"nil payload", nil, ErrMissingDateTime},
		{"no date-time field", &entity.AppointmentPayload{ID: "1", Status: "scheduled"}, ErrMissingDateTime},
		{"garbage start", &entity.AppointmentPayload{AppointmentDatetimeStart: "tomorrow at eight"}, ErrMalformedDateTime},
		{"date only", &entity.AppointmentPayload{AppointmentDatetime: "2025-07-08"}, ErrMalformedDateTime},
		{"garbage end", &entity.AppointmentPayload{
			AppointmentDatetimeStart: "2025-07-08 08:00",
			AppointmentDatetimeEnd:   "08:30",
		}, ErrMalformedDateTime},
		{"end before start", &entity.AppointmentPayload{
			AppointmentDatetimeStart: "2025-07-08 08:00",
			AppointmentDatetimeEnd:   "2025-07-08 07:00",
		}, ErrInvalidTimeRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt, err := MapAPIResponseToAppointment(tt.payload)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if appt != nil {
				t.Errorf("expected no appointment on error, got %+v", appt)
			}
		})
	}
}

func TestMapAppointmentToAPIRequest_RoundTrip(t *testing.T) {
	payloads := []entity.AppointmentPayload{
		{ID: "1", DoctorID: "d1", PatientID: "p1", AppointmentDatetimeStart: "2025-07-08 08:00", AppointmentDatetimeEnd: "2025-07-08 08:45:30"},
		{ID: "2", DoctorID: "d1", PatientID: "p2", AppointmentDatetime: "2025-12-31 23:45"},
	}

	for _, p := range payloads {
		appt, err := MapAPIResponseToAppointment(&p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		req := MapAppointmentToAPIRequest(appt, "", "")

		start, err := ParseAPIDateTime(req.AppointmentDatetimeStart)
		if err != nil {
			t.Fatalf("request start unparsable: %v", err)
		}
		end, err := ParseAPIDateTime(req.AppointmentDatetimeEnd)
		if err != nil {
			t.Fatalf("request end unparsable: %v", err)
		}
		if !start.Truncate(time.Second).Equal(appt.Start.Truncate(time.Second)) {
			t.Errorf("start changed across round trip: %v vs %v", start, appt.Start)
		}
		if !end.Truncate(time.Second).Equal(appt.End.Truncate(time.Second)) {
			t.Errorf("end changed across round trip: %v vs %v", end, appt.End)
		}
		if req.PatientID != p.PatientID.String() || req.DoctorID != p.DoctorID.String() {
			t.Errorf("references not carried over: %+v", req)
		}
	}
}

func TestMapAppointmentToAPIRequest_Overrides(t *testing.T) {
	appt := &entity.Appointment{
		Start:     time.Date(2025, 7, 8, 8, 0, 0, 0, time.Local),
		PatientID: "p1",
		DoctorID:  "d1",
	}

	req := MapAppointmentToAPIRequest(appt, "p9", "d9")

	if req.PatientID != "p9" || req.DoctorID != "d9" {
		t.Errorf("expected overrides, got %+v", req)
	}
	if req.Duration != 30 {
		t.Errorf("expected default duration 30, got %d", req.Duration)
	}
	if req.AppointmentDatetimeEnd != "2025-07-08 08:30:00" {
		t.Errorf("unexpected end %s", req.AppointmentDatetimeEnd)
	}
}

func TestAppointmentFormToAppointment(t *testing.T) {
	form := &entity.AppointmentForm{
		Date:      "2025-07-08",
		Time:      "10:00",
		Duration:  60,
		PatientID: "p1",
		DoctorID:  "d1",
		Reason:    " Checkup ",
	}

	appt, err := AppointmentFormToAppointment(form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStart := time.Date(2025, 7, 8, 10, 0, 0, 0, time.Local)
	if !appt.Start.Equal(wantStart) || !appt.End.Equal(wantStart.Add(time.Hour)) {
		t.Errorf("unexpected range %v - %v", appt.Start, appt.End)
	}
	if appt.Type != entity.AppointmentTypeConsultation {
		t.Errorf("expected default type consultation, got %s", appt.Type)
	}
	if appt.Reason != "Checkup" {
		t.Errorf("expected trimmed reason, got %q", appt.Reason)
	}

	form.Duration = 0
	form.IsBlockedTime = true
	blocked, err := AppointmentFormToAppointment(form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocked.PatientID != "" || !blocked.IsBlockedTime || blocked.Type != entity.AppointmentTypeBlockedTime {
		t.Errorf("expected patientless blocked slot, got %+v", blocked)
	}
	if blocked.Duration() != 30*time.Minute {
		t.Errorf("expected default duration, got %v", blocked.Duration())
	}

	if _, err := AppointmentFormToAppointment(&entity.AppointmentForm{Date: "08/07/2025", Time: "10:00"}); !errors.Is(err, ErrMalformedDateTime) {
		t.Errorf("expected malformed error, got %v", err)
	}
}

func TestMapAPIResponseToAppointment_NotesAndNormalization(t *testing.T) {
	appt, err := MapAPIResponseToAppointment(&entity.AppointmentPayload{
		AppointmentDatetime: "2025-07-08 08:00",
		Notes:               "ignored when split notes exist",
		PatientNotes:        "Headache since Monday",
		StaffNotes:          "Bring previous labs",
		Status:              "No-Show",
		AppointmentType:     "Follow Up",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if appt.Notes != "Headache since Monday\n\nBring previous labs" {
		t.Errorf("unexpected notes %q", appt.Notes)
	}
	if appt.Status != entity.AppointmentStatusNoShow {
		t.Errorf("expected no_show, got %s", appt.Status)
	}
	if appt.Type != entity.AppointmentTypeFollowUp {
		t.Errorf("expected follow_up, got %s", appt.Type)
	}
}

func TestMapAPIResponsesToCalendarEvents_PreservesOrder(t *testing.T) {
	var payloads []entity.AppointmentPayload
	body := `[
		{"id": 3, "appointment_datetime": "2025-07-08 12:00"},
		{"id": "1", "appointment_datetime": "2025-07-08 08:00"},
		{"id": 2, "appointment_datetime": "2025-07-08 10:00", "fee": "150.00"}
	]`
	if err := json.Unmarshal([]byte(body), &payloads); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	events, err := MapAPIResponsesToCalendarEvents(payloads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := []string{events[0].ID, events[1].ID, events[2].ID}
	if ids[0] != "3" || ids[1] != "1" || ids[2] != "2" {
		t.Errorf("expected input order 3,1,2, got %v", ids)
	}
	fee := events[2].ExtendedProps.Appointment.Fee
	if !fee.Valid || fee.Decimal.String() != "150" {
		t.Errorf("expected fee 150, got %+v", fee)
	}

	payloads = append(payloads, entity.AppointmentPayload{ID: "4"})
	if _, err := MapAPIResponsesToCalendarEvents(payloads); !errors.Is(err, ErrMissingDateTime) {
		t.Errorf("expected array variant to fail on a bad element, got %v", err)
	}
}

func TestSetLocation(t *testing.T) {
	t.Cleanup(func() { SetLocation(time.Local) })

	jakarta := time.FixedZone("WIB", 7*3600)
	SetLocation(jakarta)

	got, err := ParseAPIDateTime("2025-07-08 08:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2025, 7, 8, 1, 0, 0, 0, time.UTC)) {
		t.Errorf("expected 01:00 UTC, got %v", got.UTC())
	}
	if s := FormatAPIDateTime(got); s != "2025-07-08 08:00:00" {
		t.Errorf("expected wall clock in configured zone, got %s", s)
	}
}

func TestParseAPIDateTime_FractionalSeconds(t *testing.T) {
	got, err := ParseAPIDateTime("2025-07-08 08:00:05.250")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 7, 8, 8, 0, 5, 250*int(time.Millisecond), Location())
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
