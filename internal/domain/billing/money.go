package billing

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// MoneyScale is the number of fraction digits kept on every money amount.
const MoneyScale int32 = 2

// DefaultCurrency is used when an enrollment carries no currency code.
const DefaultCurrency = "MXN"

// MoneyTolerance is the slack allowed when two money values are compared.
var MoneyTolerance = decimal.New(1, -4)

// RoundMoney rounds d half-up to the cent.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// ParseMoney parses a user supplied amount. Both "." and "," are accepted as
// decimal separator; the result is rounded to the cent.
func ParseMoney(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundMoney(d), nil
}

// SumMoney adds amounts and rounds the total.
func SumMoney(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return RoundMoney(total)
}

// MoneyEqual reports whether a and b differ by no more than MoneyTolerance.
func MoneyEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(MoneyTolerance)
}

// MoneyExceeds reports whether a is greater than limit plus MoneyTolerance.
func MoneyExceeds(a, limit decimal.Decimal) bool {
	return a.GreaterThan(limit.Add(MoneyTolerance))
}

// ClampZero returns d, or zero when d is negative.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// NormalizeCurrency upper-cases code and checks it against ISO 4217. An empty
// code resolves to DefaultCurrency.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", ErrInvalidCurrency
	}
	return unit.String(), nil
}
