package domain

import "github.com/shopspring/decimal"

// ComputeAmount derives a commission amount from a sale value and a
// percentage rate, rounded half-up to two decimal places of currency
// precision. It is pure and deterministic: retries of the same input
// always produce the same amount, which the ledger's idempotency key
// depends on.
func ComputeAmount(saleValue, percentage decimal.Decimal) decimal.Decimal {
	return saleValue.Mul(percentage).Div(decimal.NewFromInt(100)).Round(2)
}
