package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// parseAmount parses a decimal string field, failing the request on
// malformed input.
func parseAmount(c *gin.Context, field, value string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		SendBadRequest(c, "invalid decimal value", map[string]interface{}{"field": field})
		return decimal.Decimal{}, false
	}
	return d, true
}

// parsePositiveAmount parses a decimal string that must be greater than
// zero.
func parsePositiveAmount(c *gin.Context, field, value string) (decimal.Decimal, bool) {
	d, ok := parseAmount(c, field, value)
	if !ok {
		return decimal.Decimal{}, false
	}
	if !d.IsPositive() {
		SendBadRequest(c, "amount must be positive", map[string]interface{}{"field": field})
		return decimal.Decimal{}, false
	}
	return d, true
}

// parseNonNegativeAmount parses a decimal string that must not be negative.
func parseNonNegativeAmount(c *gin.Context, field, value string) (decimal.Decimal, bool) {
	d, ok := parseAmount(c, field, value)
	if !ok {
		return decimal.Decimal{}, false
	}
	if d.IsNegative() {
		SendBadRequest(c, "amount must not be negative", map[string]interface{}{"field": field})
		return decimal.Decimal{}, false
	}
	return d, true
}
