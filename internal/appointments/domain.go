package appointments

import "time"

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment links a patient with a doctor at a point in time.
type Appointment struct {
	ID              int64     `json:"id"`
	PatientID       int64     `json:"patientId"`
	PatientName     string    `json:"patientName,omitempty"`
	PatientEmail    string    `json:"-"`
	DoctorID        int64     `json:"doctorId"`
	DoctorName      string    `json:"doctorName,omitempty"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Reason          string    `json:"reason"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Filter narrows appointment listings.
type Filter struct {
	PatientID int64
	DoctorID  int64
	From      time.Time
	To        time.Time
	Status    string
	Page      int
	PerPage   int
}
