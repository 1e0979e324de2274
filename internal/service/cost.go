package service

import "github.com/shopspring/decimal"

var million = decimal.NewFromInt(1_000_000)

// CalculateCost converts token usage into USD given per-1M-token
// prices.
func CalculateCost(promptTokens, completionTokens int, promptPrice, completionPrice float64) decimal.Decimal {
	prompt := decimal.NewFromInt(int64(promptTokens)).
		Mul(decimal.NewFromFloat(promptPrice)).
		Div(million)
	completion := decimal.NewFromInt(int64(completionTokens)).
		Mul(decimal.NewFromFloat(completionPrice)).
		Div(million)
	return prompt.Add(completion)
}
