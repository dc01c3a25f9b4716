package model

import "github.com/shopspring/decimal"

// TaxRate: ставка IGV, применяемая ко всем заказам.
var TaxRate = decimal.RequireFromString("0.18")

// Totals содержит денежные итоги заказа.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// LineSubtotal вычисляет сумму позиции по количеству и цене.
func LineSubtotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity)).Round(2)
}

// ComputeTotals вычисляет subtotal, налог и итог по позициям заказа.
// Налог округляется до копеек от суммы позиций, а не построчно.
func ComputeTotals(lines []OrderLine) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
