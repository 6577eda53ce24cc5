package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// MaxDecimalExponent bounds the exponent of prices and consumption in
	// either direction. Arithmetic on decimals rescales to the smaller
	// exponent, so an unbounded exponent means unbounded work.
	MaxDecimalExponent = 18
	// MaxCoefficientBits bounds the number of significant digits, about 28
	// decimal digits.
	MaxCoefficientBits = 96
)

// DecimalInBounds returns true if v is small enough in both exponent and
// coefficient to take part in price arithmetic. It never rescales v.
func DecimalInBounds(v decimal.Decimal) bool {
	e := v.Exponent()
	if e < -MaxDecimalExponent || e > MaxDecimalExponent {
		return false
	}
	return v.Coefficient().BitLen() <= MaxCoefficientBits
}

// DecimalLabel formats v for an error message. Out of bounds values are shown
// in scientific form so the label stays short.
func DecimalLabel(v decimal.Decimal) string {
	if DecimalInBounds(v) {
		return v.String()
	}
	c := v.Coefficient()
	if c.BitLen() > MaxCoefficientBits {
		return fmt.Sprintf("%d-bit coefficient e%d", c.BitLen(), v.Exponent())
	}
	return fmt.Sprintf("%se%d", c.String(), v.Exponent())
}
