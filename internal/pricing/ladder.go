package pricing

import (
	"hirdavat/internal/model"

	"github.com/shopspring/decimal"
)

// defaultBands is the built-in shipping ladder used when no tier table is
// configured: {maxWeight kg, price TRY}.
var defaultBands = [][2]int64{
	{1, 65},
	{2, 85},
	{3, 95},
	{5, 145},
	{10, 215},
	{15, 290},
	{20, 360},
	{30, 520},
	{50, 780},
	{75, 1150},
	{100, 1600},
}

// DefaultLadder returns a fresh copy of the built-in 11-band ladder.
func DefaultLadder() []model.PriceTier {
	tiers := make([]model.PriceTier, len(defaultBands))
	for i, band := range defaultBands {
		tiers[i] = model.PriceTier{
			MaxWeight: decimal.NewFromInt(band[0]),
			Price:     decimal.NewFromInt(band[1]),
		}
	}
	return tiers
}
