package cart

import (
	"github.com/shopspring/decimal"

	"github.com/izzy-ti/go-storefront-client/internal/model"
)

// Shipping and tax policy. The fee is flat 10.00 and waived strictly above
// 100.00; tax is 8%, rounded half away from zero to cents at output.
var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShippingFee       = decimal.NewFromInt(10)
	taxRate               = decimal.NewFromFloat(0.08)
)

type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals is a pure function of the given lines. The subtotal is
// exact; tax and total are rounded to 2 decimals.
func ComputeTotals(lines []model.CartLine) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Snapshot.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	shipping := flatShippingFee
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(shipping).Add(tax).Round(2)

	return Totals{Subtotal: subtotal, Shipping: shipping, Tax: tax, Total: total}
}
