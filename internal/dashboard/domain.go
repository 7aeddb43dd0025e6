package dashboard

import "time"

// Summary aggregates headline clinic numbers for the landing dashboard.
type Summary struct {
	Patients          int       `json:"patients"`
	AppointmentsToday int       `json:"appointmentsToday"`
	AppointmentsWeek  int       `json:"appointmentsWeek"`
	PendingInvoices   int       `json:"pendingInvoices"`
	RevenueCents      int64     `json:"revenueCents"`
	LowStockItems     int       `json:"lowStockItems"`
	GeneratedAt       time.Time `json:"generatedAt"`
}
