package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	// 1M prompt tokens at $0.50/1M plus 500k completion tokens at $1.50/1M
	cost := CalculateCost(1_000_000, 500_000, 0.5, 1.5)
	assert.True(t, cost.Equal(decimal.NewFromFloat(1.25)), "got %s", cost)
}

func TestCalculateCostZero(t *testing.T) {
	cost := CalculateCost(0, 0, 0.5, 1.5)
	assert.True(t, cost.IsZero())

	cost = CalculateCost(12345, 678, 0, 0)
	assert.True(t, cost.IsZero())
}
