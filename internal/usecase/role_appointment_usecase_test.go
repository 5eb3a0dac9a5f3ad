package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic-calendar/internal/domain/entity"
)

func TestEligibility(t *testing.T) {
	now := time.Date(2025, 7, 8, 10, 0, 0, 0, time.Local)
	at := func(offset time.Duration, status entity.AppointmentStatus) *entity.Appointment {
		return &entity.Appointment{ID: "1", Start: now.Add(offset), End: now.Add(offset + 30*time.Minute), Status: status}
	}

	tests := []struct {
		name           string
		appt           *entity.Appointment
		wantPast       bool
		wantCancel     bool
		wantReschedule bool
	}{
		{"upcoming scheduled", at(time.Hour, entity.AppointmentStatusScheduled), false, true, true},
		{"upcoming confirmed", at(time.Hour, entity.AppointmentStatusConfirmed), false, true, true},
		{"already started", at(-10*time.Minute, entity.AppointmentStatusScheduled), true, false, false},
		{"upcoming cancelled", at(time.Hour, entity.AppointmentStatusCancelled), false, false, false},
		{"upcoming completed", at(time.Hour, entity.AppointmentStatusCompleted), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Eligibility(tt.appt, now)
			if got.IsInPast != tt.wantPast || got.CanCancel != tt.wantCancel || got.CanReschedule != tt.wantReschedule {
				t.Errorf("Eligibility() = %+v", got)
			}
		})
	}
}

func TestPatientAppointmentUsecase_OwnsOnlyOwnAppointments(t *testing.T) {
	start, end := futureSlot(10)
	repo := newMockAppointmentRepo(
		appointmentPayload("1", "d1", "p1", start, end, entity.AppointmentStatusScheduled),
		appointmentPayload("2", "d1", "p9", start, end, entity.AppointmentStatusScheduled),
	)
	f := newAccessFixture(repo, newMockBlockedRepo())
	patient := NewPatientAppointmentUsecase(testLogger(), f.usecase, nil)
	ctx := principalCtx(patientUser)

	list, err := patient.ListByDateRange(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].ID != "1" {
		t.Errorf("expected own appointment only, got %+v", list)
	}

	if _, err := patient.Cancel(ctx, "2", "travel"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if repo.called("cancel 2") {
		t.Error("backend must not be called for a foreign appointment")
	}

	cancelled, err := patient.Cancel(ctx, "1", "travel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != entity.AppointmentStatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}

	blocked, err := patient.ListBlockedTime(ctx, time.Time{}, time.Time{})
	if err != nil || len(blocked) != 0 {
		t.Errorf("patients see no blocked time, got %v %v", blocked, err)
	}
}

func TestPatientAppointmentUsecase_RejectsIneligibleChanges(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour).Format("2006-01-02 15:04:05")
	pastEnd := time.Now().Add(-90 * time.Minute).Format("2006-01-02 15:04:05")
	repo := newMockAppointmentRepo(appointmentPayload("3", "d1", "p1", past, pastEnd, entity.AppointmentStatusScheduled))
	f := newAccessFixture(repo, newMockBlockedRepo())
	patient := NewPatientAppointmentUsecase(testLogger(), f.usecase, nil)
	ctx := principalCtx(patientUser)

	eligibility, err := patient.Eligibility(ctx, "3", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eligibility.IsInPast || eligibility.CanReschedule {
		t.Errorf("unexpected eligibility %+v", eligibility)
	}

	next := time.Now().Add(72 * time.Hour)
	if _, err := patient.Reschedule(ctx, "3", next, next.Add(30*time.Minute)); !errors.Is(err, ErrNotEligible) {
		t.Errorf("expected ErrNotEligible, got %v", err)
	}

	yesterday := time.Now().AddDate(0, 0, -1)
	_, err = patient.Book(ctx, &entity.AppointmentForm{
		Date:     yesterday.Format("2006-01-02"),
		Time:     "09:00",
		DoctorID: "d1",
	})
	if !errors.Is(err, ErrNotEligible) {
		t.Errorf("booking in the past should fail, got %v", err)
	}
}

func TestPatientAppointmentUsecase_BookUsesOwnProfile(t *testing.T) {
	repo := newMockAppointmentRepo()
	f := newAccessFixture(repo, newMockBlockedRepo())
	patient := NewPatientAppointmentUsecase(testLogger(), f.usecase, nil)

	day := time.Now().AddDate(0, 0, 5)
	created, err := patient.Book(principalCtx(patientUser), &entity.AppointmentForm{
		Date:      day.Format("2006-01-02"),
		Time:      "10:30",
		DoctorID:  "d2",
		PatientID: "someone-else",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.PatientID != "p1" {
		t.Errorf("expected booking for p1, got %s", created.PatientID)
	}
	if created.End.Sub(created.Start) != 30*time.Minute {
		t.Errorf("expected default duration, got %s", created.End.Sub(created.Start))
	}

	if _, err := patient.Book(principalCtx(doctorUser), &entity.AppointmentForm{}); !errors.Is(err, ErrNoPatientProfile) {
		t.Errorf("expected ErrNoPatientProfile, got %v", err)
	}
	if _, err := patient.Book(context.Background(), &entity.AppointmentForm{}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestDoctorAppointmentUsecase_ScopesToOwnLane(t *testing.T) {
	start, end := futureSlot(11)
	repo := newMockAppointmentRepo(
		appointmentPayload("1", "d1", "p1", start, end, entity.AppointmentStatusScheduled),
		appointmentPayload("2", "d2", "p2", start, end, entity.AppointmentStatusScheduled),
	)
	blocked := newMockBlockedRepo()
	f := newAccessFixture(repo, blocked)
	doctor := NewDoctorAppointmentUsecase(testLogger(), f.usecase, nil)
	ctx := principalCtx(doctorUser)

	resources, err := doctor.ListResources(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resources) != 1 || resources[0].ID != "d1" {
		t.Errorf("expected own lane only, got %+v", resources)
	}

	if _, err := doctor.Confirm(ctx, "2"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if _, err := doctor.Complete(ctx, "1"); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("scheduled appointment must be confirmed first, got %v", err)
	}
	if _, err := doctor.Confirm(ctx, "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := doctor.Complete(ctx, "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := doctor.MarkNoShow(ctx, "1"); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("completed appointment cannot become no-show, got %v", err)
	}

	day := time.Now().AddDate(0, 0, 2)
	slot, err := doctor.BlockTime(ctx, &entity.AppointmentForm{
		Date:          day.Format("2006-01-02"),
		Time:          "12:00",
		Duration:      60,
		DoctorID:      "d2",
		BlockCategory: entity.BlockCategoryBreak,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot.DoctorID != "d1" || !slot.IsBlockedTime {
		t.Errorf("block must land on the caller's lane, got %+v", slot)
	}
	if slot.End.Sub(slot.Start) != time.Hour {
		t.Errorf("expected one hour block, got %s", slot.End.Sub(slot.Start))
	}
}

func TestReceptionistAppointmentUsecase_ConflictBlocksBooking(t *testing.T) {
	start, end := futureSlot(14)
	repo := newMockAppointmentRepo(appointmentPayload("5", "d1", "p1", start, end, entity.AppointmentStatusScheduled))
	f := newAccessFixture(repo, newMockBlockedRepo())
	reception := NewReceptionistAppointmentUsecase(testLogger(), f.usecase, nil)
	ctx := principalCtx(receptionistUser)

	day := time.Now().AddDate(0, 0, 3)
	form := &entity.AppointmentForm{Date: day.Format("2006-01-02"), Time: "14:00", DoctorID: "d1", PatientID: "p2"}

	repo.conflict = &entity.ConflictCheckPayload{HasConflict: true, Conflicts: []entity.AppointmentPayload{repo.records["5"]}}
	if _, err := reception.Book(ctx, form); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
	if repo.called("create") {
		t.Error("conflicting booking must not reach the backend")
	}

	repo.conflict = nil
	if _, err := reception.Book(ctx, form); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	next := time.Now().Add(96 * time.Hour)
	if _, err := reception.Reschedule(ctx, "5", next, next.Add(30*time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.called("conflict 5") {
		t.Error("reschedule should exclude the moved appointment from the conflict check")
	}
}

func TestDoctorAppointmentUsecase_UnblockOnlyOwnSlots(t *testing.T) {
	blocked := newMockBlockedRepo(
		entity.BlockedTimePayload{ID: "15", DoctorID: "d1", StartDatetime: "2025-07-08 12:00:00", EndDatetime: "2025-07-08 13:00:00"},
		entity.BlockedTimePayload{ID: "16", DoctorID: "d2", StartDatetime: "2025-07-08 12:00:00", EndDatetime: "2025-07-08 13:00:00"},
	)
	f := newAccessFixture(newMockAppointmentRepo(), blocked)
	doctor := NewDoctorAppointmentUsecase(testLogger(), f.usecase, nil)
	ctx := principalCtx(doctorUser)

	if err := doctor.UnblockTime(ctx, "16"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if err := doctor.UnblockTime(ctx, "404"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("unknown slot should be refused, got %v", err)
	}
	day := time.Now().AddDate(0, 0, 2)
	form := &entity.AppointmentForm{Date: day.Format("2006-01-02"), Time: "12:00", Duration: 30}
	if _, err := doctor.UpdateBlockedTime(ctx, "16", form); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner on update, got %v", err)
	}
	if blocked.called("delete 16") {
		t.Error("a colleague's slot must not be deleted")
	}

	if err := doctor.UnblockTime(ctx, "15"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !blocked.called("delete 15") {
		t.Error("own slot should be deleted")
	}
}
