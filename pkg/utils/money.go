package utils

import (
	"github.com/shopspring/decimal"
)

// MinorUnitsToMajor converts an integer minor-unit amount (paise) into a decimal major amount
func MinorUnitsToMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// FormatMinorUnits renders paise as a rupee string, e.g. 100 -> "₹1.00"
func FormatMinorUnits(minor int64) string {
	return "₹" + MinorUnitsToMajor(minor).StringFixed(2)
}
