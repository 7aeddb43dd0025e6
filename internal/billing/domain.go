package billing

import (
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Invoice statuses.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusVoid    = "void"
)

// LineItem is a single charge on an invoice.
type LineItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitCents   int64  `json:"unitCents"`
}

// Total returns the line total in cents.
func (li LineItem) Total() int64 {
	return int64(li.Quantity) * li.UnitCents
}

// Invoice is a bill issued to a patient.
type Invoice struct {
	ID          int64      `json:"id"`
	PatientID   int64      `json:"patientId"`
	PatientName string     `json:"patientName,omitempty"`
	Currency    string     `json:"currency"`
	Items       []LineItem `json:"items"`
	TotalCents  int64      `json:"totalCents"`
	Display     string     `json:"display"`
	Status      string     `json:"status"`
	IssuedAt    time.Time  `json:"issuedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Filter narrows invoice listings.
type Filter struct {
	PatientID int64
	Status    string
	Page      int
	PerPage   int
}

// FormatAmount renders cents in the invoice currency for human display.
func FormatAmount(code string, cents int64) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
	}
	amount := unit.Amount(float64(cents) / 100)
	p := message.NewPrinter(language.English)
	return p.Sprintf("%v", currency.Symbol(amount))
}
