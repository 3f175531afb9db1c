package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceTier maps an inclusive maximum cart weight (kg) to a shipping price.
type PriceTier struct {
	MaxWeight decimal.Decimal `json:"maxWeight"`
	Price     decimal.Decimal `json:"price"`
}

// ShippingSettings is the admin-editable pricing snapshot, loaded per request.
type ShippingSettings struct {
	Tiers []PriceTier `json:"tiers"`
	// FreeShippingThreshold waives the shipping fee when the subtotal reaches
	// it. Zero disables free shipping.
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold"`
}

// Validate rejects snapshots that would make pricing meaningless.
func (s ShippingSettings) Validate() error {
	for i, tier := range s.Tiers {
		if !tier.MaxWeight.IsPositive() {
			return fmt.Errorf("tier %d: max weight must be positive", i)
		}
		if tier.Price.IsNegative() {
			return fmt.Errorf("tier %d: price must not be negative", i)
		}
	}
	if s.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("free shipping threshold must not be negative")
	}
	return nil
}
