package converter

import (
	"clinic-calendar/internal/delivery/dto"
	"clinic-calendar/internal/domain/entity"
)

func AppointmentFormRequestToForm(req *dto.AppointmentFormRequest) entity.AppointmentForm {
	return entity.AppointmentForm{
		Date:          req.Date,
		Time:          req.Time,
		Duration:      req.Duration,
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		Type:          entity.AppointmentType(req.Type),
		Reason:        req.Reason,
		Notes:         req.Notes,
		IsBlockedTime: req.IsBlockedTime,
		BlockCategory: entity.BlockCategory(req.BlockCategory),
	}
}

func DraftToResponse(d entity.DraftState) *dto.DraftResponse {
	return &dto.DraftResponse{
		Phase:     d.Phase(),
		Kind:      d.Kind,
		IsNew:     d.IsNew(),
		Form:      d.Form,
		Original:  d.Original,
		LastError: d.LastError,
	}
}

func AppointmentsToListResponse(appointments []entity.Appointment) *dto.AppointmentListResponse {
	if appointments == nil {
		appointments = []entity.Appointment{}
	}
	return &dto.AppointmentListResponse{
		Appointments: appointments,
		Total:        len(appointments),
	}
}

func SessionUserToResponse(u entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		DoctorID:  u.DoctorID,
		PatientID: u.PatientID,
	}
}
