// Package pricing computes checkout totals and shipping fees. Everything in
// it is pure: callers pass the catalogue and the settings snapshot in.
package pricing

import (
	"sort"

	"hirdavat/internal/model"

	"github.com/shopspring/decimal"
)

// MaxOrderWeight is the hard per-order ceiling in kg, independent of the tier table.
var MaxOrderWeight = decimal.NewFromInt(100)

// CartItem is a requested product and quantity.
type CartItem struct {
	ProductID string
	Quantity  int
}

// Catalog resolves current product data by id.
type Catalog map[string]model.Product

// NewCatalog indexes products by id.
func NewCatalog(products []model.Product) Catalog {
	c := make(Catalog, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

// Line is a priced cart line.
type Line struct {
	Product   model.Product
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	Weight    decimal.Decimal
}

// Totals is the result of pricing a cart.
type Totals struct {
	Lines       []Line
	Subtotal    decimal.Decimal
	TotalWeight decimal.Decimal
	// ShippingFee is nil when no tier covers the weight and the order
	// needs a manual shipping quote.
	ShippingFee *decimal.Decimal
	GrandTotal  decimal.Decimal
}

// Shippable reports whether a shipping fee was resolved.
func (t Totals) Shippable() bool {
	return t.ShippingFee != nil
}

// ComputeCheckoutTotals prices items against the catalogue and the settings
// snapshot. It fails with model.ErrWeightLimitExceeded when the cart weighs
// more than MaxOrderWeight.
func ComputeCheckoutTotals(items []CartItem, catalog Catalog, settings model.ShippingSettings) (Totals, error) {
	totals := Totals{
		Lines:       make([]Line, 0, len(items)),
		Subtotal:    decimal.Zero,
		TotalWeight: decimal.Zero,
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			return Totals{}, model.ErrInvalidQuantity
		}

		product, ok := catalog[item.ProductID]
		if !ok {
			return Totals{}, model.ErrProductNotFound.WithMessage("Product %s not found", item.ProductID)
		}

		qty := decimal.NewFromInt(int64(item.Quantity))
		unitPrice := roundCurrency(product.Price)
		lineTotal := roundCurrency(unitPrice.Mul(qty))
		weight := product.ShippingWeight().Mul(qty)

		totals.Lines = append(totals.Lines, Line{
			Product:   product,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
			Weight:    weight,
		})
		totals.Subtotal = totals.Subtotal.Add(lineTotal)
		totals.TotalWeight = totals.TotalWeight.Add(weight)
	}

	if totals.TotalWeight.GreaterThan(MaxOrderWeight) {
		return Totals{}, model.ErrWeightLimitExceeded
	}

	totals.Subtotal = roundCurrency(totals.Subtotal)
	totals.GrandTotal = totals.Subtotal

	fee, ok := ResolveShippingFee(totals.TotalWeight, settings.Tiers)
	if !ok {
		return totals, nil
	}

	threshold := settings.FreeShippingThreshold
	if threshold.IsPositive() && totals.Subtotal.GreaterThanOrEqual(threshold) {
		fee = decimal.Zero
	}

	fee = roundCurrency(fee)
	totals.ShippingFee = &fee
	totals.GrandTotal = roundCurrency(totals.Subtotal.Add(fee))

	return totals, nil
}

// ResolveShippingFee returns the fee for weight. A non-empty tier table is
// sorted ascending by MaxWeight and the first tier with weight <= MaxWeight
// applies. An empty table falls back to the built-in ladder. The boolean is
// false when nothing covers the weight.
func ResolveShippingFee(weight decimal.Decimal, tiers []model.PriceTier) (decimal.Decimal, bool) {
	if len(tiers) == 0 {
		tiers = DefaultLadder()
	}

	sorted := make([]model.PriceTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MaxWeight.LessThan(sorted[j].MaxWeight)
	})

	for _, tier := range sorted {
		if weight.LessThanOrEqual(tier.MaxWeight) {
			return tier.Price, true
		}
	}
	return decimal.Zero, false
}

// roundCurrency fixes a value to kuruş precision, rounding half away from zero.
func roundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
