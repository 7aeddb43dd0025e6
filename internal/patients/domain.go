package patients

import "time"

// Patient is a clinic patient record. A patient may optionally be linked to a
// login account through UserID, which powers the self-service profile.
type Patient struct {
	ID          int64      `json:"id"`
	UserID      *int64     `json:"userId,omitempty"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Address     string     `json:"address,omitempty"`
	BloodGroup  string     `json:"bloodGroup,omitempty"`
	Allergies   string     `json:"allergies,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Filter narrows patient listings.
type Filter struct {
	Search  string
	Page    int
	PerPage int
}
