package domain

import (
	"time"
)

// Product represents one catalog entry.
type Product struct {
	ProductID    string    `json:"_id"`
	Name         string    `json:"name"`
	Image        string    `json:"image"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	Brand        string    `json:"brand"`
	CountInStock int       `json:"countInStock"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"numReviews"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InStock returns true if at least one unit can be ordered.
func (p *Product) InStock() bool {
	return p.CountInStock > 0
}
