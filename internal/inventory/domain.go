package inventory

import "time"

// Item is a stocked clinic supply.
type Item struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Quantity     int       `json:"quantity"`
	ReorderLevel int       `json:"reorderLevel"`
	Unit         string    `json:"unit,omitempty"`
	LowStock     bool      `json:"lowStock"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Filter narrows inventory listings.
type Filter struct {
	Search  string
	LowOnly bool
	Page    int
	PerPage int
}
