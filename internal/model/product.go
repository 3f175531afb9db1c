package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a hardware item in the catalogue.
type Product struct {
	ID        string           `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Price     decimal.Decimal  `json:"price" db:"price"`
	Weight    *decimal.Decimal `json:"weight,omitempty" db:"weight"` // kg, nil when not recorded
	Category  string           `json:"category" db:"category"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

// ShippingWeight returns the product weight, defaulting to 1 kg when the
// catalogue has no positive weight recorded.
func (p Product) ShippingWeight() decimal.Decimal {
	if p.Weight == nil || !p.Weight.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return *p.Weight
}
