package usecase

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/infrastructure/cache"
	"clinic-calendar/internal/infrastructure/clinicapi"
)

func TestAppointmentUsecase_CreatePassesBackendErrorThrough(t *testing.T) {
	repo := newMockAppointmentRepo()
	backendErr := &clinicapi.APIError{StatusCode: http.StatusUnprocessableEntity, Message: "Doctor is not available at this time"}
	repo.err = backendErr
	f := newAccessFixture(repo, newMockBlockedRepo())

	start := time.Now().Add(48 * time.Hour)
	_, err := f.usecase.Create(principalCtx(receptionistUser), &entity.Appointment{
		Start:     start,
		End:       start.Add(30 * time.Minute),
		DoctorID:  "d1",
		PatientID: "p1",
	})

	var apiErr *clinicapi.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Doctor is not available at this time" {
		t.Fatalf("expected backend message verbatim, got %v", err)
	}
	if got := f.audit.last(); got.Action != entity.AuditActionAppointmentCreate || got.Outcome != entity.AuditOutcomeFailure {
		t.Errorf("unexpected audit entry %+v", got)
	}
}

func TestAppointmentUsecase_WorkflowRefetchesOnEmptyBody(t *testing.T) {
	start, end := futureSlot(10)
	repo := newMockAppointmentRepo(appointmentPayload("7", "d1", "p1", start, end, entity.AppointmentStatusScheduled))
	repo.emptyBody = true
	f := newAccessFixture(repo, newMockBlockedRepo())

	appt, err := f.usecase.Confirm(principalCtx(receptionistUser), "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Status != entity.AppointmentStatusConfirmed {
		t.Errorf("expected confirmed, got %s", appt.Status)
	}
	if !repo.called("get 7") {
		t.Error("expected a re-read after an empty workflow response")
	}
}

func TestAppointmentUsecase_GetMissing(t *testing.T) {
	f := newAccessFixture(newMockAppointmentRepo(), newMockBlockedRepo())
	if _, err := f.usecase.Get(principalCtx(adminUser), "404"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestAppointmentUsecase_UpdateBlockedTime(t *testing.T) {
	start := time.Date(2025, 7, 8, 12, 0, 0, 0, time.Local)
	existing := entity.BlockedTimePayload{ID: "15", DoctorID: "d1", StartDatetime: "2025-07-08 12:00:00", EndDatetime: "2025-07-08 13:00:00", Category: "break"}
	next := &entity.Appointment{
		Start:         start.Add(time.Hour),
		End:           start.Add(2 * time.Hour),
		DoctorID:      "d1",
		IsBlockedTime: true,
		BlockCategory: entity.BlockCategoryMeeting,
	}

	t.Run("replaces the slot", func(t *testing.T) {
		blocked := newMockBlockedRepo(existing)
		f := newAccessFixture(newMockAppointmentRepo(), blocked)

		updated, err := f.usecase.UpdateBlockedTime(principalCtx(doctorUser), "15", next)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.ID == "15" || !updated.IsBlockedTime || updated.BlockCategory != entity.BlockCategoryMeeting {
			t.Errorf("unexpected replacement %+v", updated)
		}
		if _, ok := blocked.records["15"]; ok {
			t.Error("old slot should be gone")
		}
	})

	t.Run("reports a partial failure", func(t *testing.T) {
		blocked := newMockBlockedRepo(existing)
		blocked.createErr = &clinicapi.APIError{StatusCode: http.StatusUnprocessableEntity, Message: "Overlaps an appointment"}
		f := newAccessFixture(newMockAppointmentRepo(), blocked)

		_, err := f.usecase.UpdateBlockedTime(principalCtx(doctorUser), "15", next)
		if !errors.Is(err, ErrBlockedTimeUpdatePartial) {
			t.Fatalf("expected ErrBlockedTimeUpdatePartial, got %v", err)
		}
		if clinicapi.StatusCode(err) != http.StatusUnprocessableEntity {
			t.Errorf("cause should stay reachable, got %v", err)
		}
		if len(blocked.records) != 0 {
			t.Errorf("expected no slot left, got %v", blocked.records)
		}
		if got := f.audit.last(); got.Outcome != entity.AuditOutcomePartial {
			t.Errorf("expected partial outcome, got %+v", got)
		}
	})

	t.Run("delete failure leaves the slot", func(t *testing.T) {
		blocked := newMockBlockedRepo(existing)
		blocked.deleteErr = &clinicapi.APIError{StatusCode: http.StatusForbidden, Message: "Forbidden"}
		f := newAccessFixture(newMockAppointmentRepo(), blocked)

		_, err := f.usecase.UpdateBlockedTime(principalCtx(doctorUser), "15", next)
		if err == nil || errors.Is(err, ErrBlockedTimeUpdatePartial) {
			t.Fatalf("expected a plain failure, got %v", err)
		}
		if _, ok := blocked.records["15"]; !ok {
			t.Error("slot should still exist")
		}
	})
}

func TestAppointmentUsecase_AvailableSlotsAreCachedUntilABookingChanges(t *testing.T) {
	repo := newMockAppointmentRepo()
	repo.slots = []entity.AvailableSlotPayload{{Start: "2025-07-08 09:00:00", End: "2025-07-08 09:30:00"}}
	f := newAccessFixture(repo, newMockBlockedRepo())
	ctx := principalCtx(receptionistUser)
	date := time.Date(2025, 7, 8, 0, 0, 0, 0, time.Local)

	for i := 0; i < 2; i++ {
		slots, err := f.usecase.AvailableSlots(ctx, "d1", date, 30)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(slots) != 1 {
			t.Fatalf("expected 1 slot, got %d", len(slots))
		}
	}
	if repo.slotCalls != 1 {
		t.Fatalf("expected one backend call, got %d", repo.slotCalls)
	}

	if err := f.cache.Get(ctx, cache.SlotsKey("d1", "2025-07-08", 30), &[]entity.AvailableSlot{}); err != nil {
		t.Fatalf("expected cached slots: %v", err)
	}

	start := time.Now().Add(48 * time.Hour)
	if _, err := f.usecase.Create(ctx, &entity.Appointment{Start: start, End: start.Add(30 * time.Minute), DoctorID: "d1", PatientID: "p1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.usecase.AvailableSlots(ctx, "d1", date, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.slotCalls != 2 {
		t.Errorf("booking should invalidate the doctor's slots, got %d calls", repo.slotCalls)
	}
}

func TestAppointmentUsecase_ListResourcesCached(t *testing.T) {
	f := newAccessFixture(newMockAppointmentRepo(), newMockBlockedRepo())
	ctx := principalCtx(adminUser)

	for i := 0; i < 3; i++ {
		resources, err := f.usecase.ListResources(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(resources) != 2 || resources[0].Title != "Dr. Ana Putri" {
			t.Fatalf("unexpected resources %+v", resources)
		}
	}
	if f.doctors.calls != 1 {
		t.Errorf("expected one doctor fetch, got %d", f.doctors.calls)
	}
}

func TestAppointmentUsecase_ListFilteredByPatient(t *testing.T) {
	start, end := futureSlot(9)
	repo := newMockAppointmentRepo(
		appointmentPayload("1", "d1", "p1", start, end, entity.AppointmentStatusScheduled),
		appointmentPayload("2", "d2", "p2", start, end, entity.AppointmentStatusScheduled),
	)
	f := newAccessFixture(repo, newMockBlockedRepo())

	got, err := f.usecase.ListFiltered(principalCtx(adminUser), time.Time{}, time.Time{}, "", "p2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("unexpected appointments %+v", got)
	}
}
