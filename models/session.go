package models

import "time"

// Session status values. Canceled is terminal.
const (
	SessionPending   = "pending"
	SessionConfirmed = "confirmed"
	SessionCanceled  = "canceled"
)

// Session is a reserved appointment. It is never deleted; cancellation marks
// it canceled and frees the interval for future reservations.
type Session struct {
	ID            string    `bson:"id" json:"id"`
	TherapistID   string    `bson:"therapistId" json:"therapistId"`
	TherapistName string    `bson:"therapistName" json:"therapistName"`
	SessionTypeID string    `bson:"sessionTypeId" json:"sessionTypeId"`
	SessionType   string    `bson:"sessionType" json:"sessionType"`
	StartUTC      time.Time `bson:"startUtc" json:"startUtc"`
	EndUTC        time.Time `bson:"endUtc" json:"endUtc"`
	PatientID     string    `bson:"patientId" json:"patientId"`
	PatientName   string    `bson:"patientName" json:"patientName"`
	PatientEmail  string    `bson:"patientEmail" json:"patientEmail"`
	PatientTz     string    `bson:"patientTz" json:"patientTz"`
	Status        string    `bson:"status" json:"status"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Canceled reports whether the session reached its terminal state.
func (s *Session) Canceled() bool {
	return s.Status == SessionCanceled
}

// CreateSessionRequest is the POST /sessions payload.
type CreateSessionRequest struct {
	TherapistID   string `json:"therapistId" binding:"required"`
	SessionTypeID string `json:"sessionTypeId" binding:"required"`
	StartUTC      string `json:"startUtc" binding:"required"` // RFC 3339
	PatientID     string `json:"patientId" binding:"required"`
	PatientName   string `json:"patientName" binding:"required"`
	PatientEmail  string `json:"patientEmail" binding:"required,email"`
	PatientTz     string `json:"patientTz" binding:"required"`
}
