package billing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Trend compares a current period value with the previous period
type Trend struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Amount   decimal.Decimal `json:"amount"`
	Percent  decimal.Decimal `json:"percent"`
}

// ComputeTrend returns the delta between current and previous. When previous
// is zero the percent is 0 for no activity and 100 for any new activity.
func ComputeTrend(current, previous decimal.Decimal) Trend {
	current = RoundMoney(current)
	previous = RoundMoney(previous)
	t := Trend{
		Current:  current,
		Previous: previous,
		Amount:   RoundMoney(current.Sub(previous)),
	}
	switch {
	case previous.IsZero() && current.IsZero():
		t.Percent = decimal.Zero
	case previous.IsZero():
		t.Percent = hundred
	default:
		t.Percent = current.Sub(previous).Div(previous).Mul(hundred).Round(2)
	}
	return t
}

// DashboardData is the KPI snapshot for a campus (or all campuses) and month
type DashboardData struct {
	SelectedMonth           string          `json:"selected_month"`
	ActiveEnrollments       int64           `json:"active_enrollments"`
	PendingBalance          decimal.Decimal `json:"pending_balance"`
	PaymentsToday           decimal.Decimal `json:"payments_today"`
	PaymentsThisMonth       decimal.Decimal `json:"payments_this_month"`
	MonthlyPaymentsPrevious decimal.Decimal `json:"monthly_payments_previous"`
	MonthlyChargesThisMonth decimal.Decimal `json:"monthly_charges_this_month"`
	MonthlyChargesPrevious  decimal.Decimal `json:"monthly_charges_previous"`
	PaymentsTrend           Trend           `json:"payments_trend"`
	ChargesTrend            Trend           `json:"charges_trend"`
}
