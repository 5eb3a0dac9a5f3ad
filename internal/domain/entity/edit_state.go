package entity

import "time"

// EditPhase names the lifecycle step of the appointment being edited in a session.
type EditPhase string

const (
	EditPhaseIdle            EditPhase = "idle"
	EditPhaseCreating        EditPhase = "creating"
	EditPhaseEditingExisting EditPhase = "editing_existing"
	EditPhaseDraft           EditPhase = "draft"
	EditPhaseSaving          EditPhase = "saving"
)

// DraftKind selects which form a draft represents.
type DraftKind string

const (
	DraftKindAppointment DraftKind = "appointment"
	DraftKindBlockedTime DraftKind = "blocked_time"
)

// EditState is a closed set of variants; each carries only the data valid in its phase.
type EditState interface {
	Phase() EditPhase
	isEditState()
}

type IdleState struct{}

// CreatingState follows a date click or a range selection on an empty slot.
type CreatingState struct {
	Start      time.Time
	End        time.Time
	ResourceID string
	Kind       DraftKind
}

// EditingExistingState follows a click on a loaded event.
type EditingExistingState struct {
	Event CalendarEvent
}

// DraftState is an open form. Original is nil for new entries.
type DraftState struct {
	Kind      DraftKind
	Form      AppointmentForm
	Original  *Appointment
	LastError string
}

// SavingState is a draft whose backend call is in flight.
type SavingState struct {
	Draft DraftState
}

func (IdleState) Phase() EditPhase            { return EditPhaseIdle }
func (CreatingState) Phase() EditPhase        { return EditPhaseCreating }
func (EditingExistingState) Phase() EditPhase { return EditPhaseEditingExisting }
func (DraftState) Phase() EditPhase           { return EditPhaseDraft }
func (SavingState) Phase() EditPhase          { return EditPhaseSaving }

func (IdleState) isEditState()            {}
func (CreatingState) isEditState()        {}
func (EditingExistingState) isEditState() {}
func (DraftState) isEditState()           {}
func (SavingState) isEditState()          {}

// IsNew reports whether the draft creates a new entry rather than editing one.
func (d DraftState) IsNew() bool {
	return d.Original == nil
}

var editTransitions = map[EditPhase][]EditPhase{
	EditPhaseIdle:            {EditPhaseCreating, EditPhaseEditingExisting},
	EditPhaseCreating:        {EditPhaseDraft, EditPhaseIdle},
	EditPhaseEditingExisting: {EditPhaseDraft, EditPhaseIdle},
	EditPhaseDraft:           {EditPhaseSaving, EditPhaseIdle, EditPhaseDraft},
	EditPhaseSaving:          {EditPhaseIdle, EditPhaseDraft},
}

// CanTransition reports whether the edit lifecycle allows moving from one phase to another.
func CanTransition(from, to EditPhase) bool {
	for _, p := range editTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}
