package billing

import "github.com/shopspring/decimal"

// Amounts holds the computed monetary values of a single invoice line.
type Amounts struct {
	Net   float64 `json:"net_amount"`
	Vat   float64 `json:"vat_amount"`
	Gross float64 `json:"gross_amount"`
}

// Totals holds the computed monetary values of a whole invoice.
type Totals struct {
	Net   float64 `json:"net_total"`
	Vat   float64 `json:"vat_total"`
	Gross float64 `json:"gross_total"`
}

// Line is the calculation input of one invoice position.
type Line struct {
	Quantity  float64
	UnitPrice float64
	VatRate   float64
}

var hundred = decimal.NewFromInt(100)

// round2 rounds to 2 decimal places, ties away from zero.
func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// ItemAmounts computes net, VAT and gross for a single line.
// net = quantity * unitPrice, vat = net * vatRate/100, gross = net + vat.
// Each result is rounded independently from the unrounded products,
// so gross is round(net+vat), not round(net)+round(vat).
// Range checks (quantity > 0, unitPrice >= 0, 0 <= vatRate <= 100) are the
// caller's responsibility.
func ItemAmounts(quantity, unitPrice, vatRate float64) Amounts {
	net := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice))
	vat := net.Mul(decimal.NewFromFloat(vatRate)).Div(hundred)

	return Amounts{
		Net:   round2(net),
		Vat:   round2(vat),
		Gross: round2(net.Add(vat)),
	}
}

// InvoiceTotals sums the unrounded per-line net and VAT amounts and rounds
// each of the three sums exactly once. Summing already-rounded line values
// would drift for fractional prices, so the raw products are accumulated
// first. An empty slice yields all-zero totals.
func InvoiceTotals(lines []Line) Totals {
	netSum := decimal.Zero
	vatSum := decimal.Zero

	for _, l := range lines {
		net := decimal.NewFromFloat(l.Quantity).Mul(decimal.NewFromFloat(l.UnitPrice))
		vat := net.Mul(decimal.NewFromFloat(l.VatRate)).Div(hundred)
		netSum = netSum.Add(net)
		vatSum = vatSum.Add(vat)
	}

	return Totals{
		Net:   round2(netSum),
		Vat:   round2(vatSum),
		Gross: round2(netSum.Add(vatSum)),
	}
}
