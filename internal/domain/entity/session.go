package entity

import "time"

// User is the authenticated backend account behind a gateway session.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	DoctorID  string `json:"doctor_id,omitempty"`
	PatientID string `json:"patient_id,omitempty"`
}

// TokenPair is the backend credential set held for a session.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session binds a gateway token to backend credentials. Stored in Redis.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	Tokens    TokenPair `json:"tokens"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginPayload is the backend login response.
type LoginPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID        FlexibleID `json:"id"`
		Email     string     `json:"email"`
		FullName  string     `json:"full_name"`
		Role      string     `json:"role"`
		DoctorID  FlexibleID `json:"doctor_id"`
		PatientID FlexibleID `json:"patient_id"`
	} `json:"user"`
}
