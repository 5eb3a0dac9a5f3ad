package usecase

import (
	"context"

	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/service"
)

// calendarProjection patches the caller's open calendar after a workflow action succeeds
// on the backend. Sessions that never opened a calendar are skipped; a nil registry
// turns every call into a no-op.
type calendarProjection struct {
	registry *service.CalendarSessionRegistry
}

func (c calendarProjection) store(ctx context.Context) (*service.CalendarStore, bool) {
	if c.registry == nil {
		return nil, false
	}
	p, ok := entity.PrincipalFromContext(ctx)
	if !ok {
		return nil, false
	}
	return c.registry.Lookup(p.SessionID)
}

// added shows a newly created appointment.
func (c calendarProjection) added(ctx context.Context, a *entity.Appointment) {
	if store, ok := c.store(ctx); ok && a != nil {
		store.AddEvent(a)
	}
}

// changed refreshes a loaded appointment after a status change or a move. Cancelled
// appointments stay listed with their new status.
func (c calendarProjection) changed(ctx context.Context, a *entity.Appointment) {
	if store, ok := c.store(ctx); ok && a != nil {
		store.ReplaceEvent(a)
	}
}

func (c calendarProjection) blocked(ctx context.Context, a *entity.Appointment) {
	if store, ok := c.store(ctx); ok && a != nil {
		store.AddBlockedTime(a)
	}
}

func (c calendarProjection) unblocked(ctx context.Context, id string) {
	if store, ok := c.store(ctx); ok {
		store.RemoveBlockedTime(id)
	}
}
