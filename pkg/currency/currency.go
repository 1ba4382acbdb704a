// Package currency provides standardized money rendering for chat replies and
// alert messages. Amounts travel as decimal.Decimal end to end; every chat
// surface renders the ISO code rather than the symbol so prices survive any
// messaging client's font.
package currency

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents an ISO 4217 currency code.
type Currency string

// Supported currencies.
const (
	INR Currency = "INR" // Indian Rupee
	USD Currency = "USD" // US Dollar
)

// DefaultCurrency is the currency assumed when a product carries none.
const DefaultCurrency = INR

// Info contains metadata about a currency.
type Info struct {
	Code          Currency
	Name          string
	Symbol        string
	DecimalPlaces int
}

var currencies = map[Currency]Info{
	INR: {Code: INR, Name: "Indian Rupee", Symbol: "₹", DecimalPlaces: 2},
	USD: {Code: USD, Name: "US Dollar", Symbol: "$", DecimalPlaces: 2},
}

// SupportedCurrencies returns a list of all supported currency codes.
func SupportedCurrencies() []Currency {
	return []Currency{INR, USD}
}

// IsValid checks if a currency code is supported.
func IsValid(code string) bool {
	_, ok := currencies[Currency(code)]
	return ok
}

// GetInfo returns metadata for a currency code.
func GetInfo(code Currency) (Info, bool) {
	info, ok := currencies[code]
	return info, ok
}

// Format renders an amount with its ISO code, e.g. "INR 2499.00". Unknown
// codes fall back to two decimal places.
func Format(amount decimal.Decimal, curr Currency) string {
	info, ok := currencies[curr]
	if !ok {
		return fmt.Sprintf("%s %s", curr, amount.StringFixed(2))
	}
	return fmt.Sprintf("%s %s", info.Code, amount.StringFixed(int32(info.DecimalPlaces)))
}

// Rupees is shorthand for the INR rendering used across chat replies.
func Rupees(amount decimal.Decimal) string {
	return Format(amount, INR)
}
