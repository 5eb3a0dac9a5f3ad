package entity

// Role names as issued by the clinic backend.
const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RolePatient      = "patient"
	RoleReceptionist = "receptionist"
)

// IsKnownRole reports whether the gateway serves the given backend role.
func IsKnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDoctor, RolePatient, RoleReceptionist:
		return true
	}
	return false
}

// DefaultDraftKind picks the form a click on an empty slot opens for a role:
// doctors block their own time, everyone else books an appointment.
func DefaultDraftKind(role string) DraftKind {
	if role == RoleDoctor {
		return DraftKindBlockedTime
	}
	return DraftKindAppointment
}
