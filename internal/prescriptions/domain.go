package prescriptions

import "time"

// MedicationLine is a single prescribed medication.
type MedicationLine struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration,omitempty"`
}

// Prescription records medications issued to a patient by a doctor.
type Prescription struct {
	ID          int64            `json:"id"`
	PatientID   int64            `json:"patientId"`
	PatientName string           `json:"patientName,omitempty"`
	DoctorID    int64            `json:"doctorId"`
	DoctorName  string           `json:"doctorName,omitempty"`
	Medications []MedicationLine `json:"medications"`
	Notes       string           `json:"notes,omitempty"`
	IssuedAt    time.Time        `json:"issuedAt"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Filter narrows prescription listings.
type Filter struct {
	PatientID int64
	DoctorID  int64
	Page      int
	PerPage   int
}
