package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// MethodTotal aggregates posted payments of one method
type MethodTotal struct {
	Method PaymentMethod   `json:"method"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
	Share  decimal.Decimal `json:"share"`
}

// SummarizeByMethod groups posted payments by method in display order.
// Every method is listed, with zero totals when absent. Share is the
// percentage of the grand total.
func SummarizeByMethod(payments []Payment) ([]MethodTotal, decimal.Decimal) {
	counts := make(map[PaymentMethod]int)
	totals := make(map[PaymentMethod]decimal.Decimal)
	grand := decimal.Zero
	for i := range payments {
		p := &payments[i]
		if !p.IsPosted() {
			continue
		}
		counts[p.Method]++
		totals[p.Method] = totals[p.Method].Add(p.Amount)
		grand = grand.Add(p.Amount)
	}
	grand = RoundMoney(grand)

	out := make([]MethodTotal, 0, len(AllPaymentMethods))
	for _, m := range AllPaymentMethods {
		mt := MethodTotal{Method: m, Count: counts[m], Total: RoundMoney(totals[m]), Share: decimal.Zero}
		if grand.IsPositive() {
			mt.Share = mt.Total.Div(grand).Mul(hundred).Round(2)
		}
		out = append(out, mt)
	}
	return out, grand
}

// DailyCashCut is the daily close of posted payments
type DailyCashCut struct {
	Date         string          `json:"date"`
	Methods      []MethodTotal   `json:"methods"`
	PaymentCount int             `json:"payment_count"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	CashExpected decimal.Decimal `json:"cash_expected"`
}

// BuildDailyCashCut summarizes the payments posted on day
func BuildDailyCashCut(day time.Time, payments []Payment) DailyCashCut {
	methods, grand := SummarizeByMethod(payments)
	cut := DailyCashCut{
		Date:         day.Format(time.DateOnly),
		Methods:      methods,
		GrandTotal:   grand,
		CashExpected: decimal.Zero,
	}
	for _, m := range methods {
		cut.PaymentCount += m.Count
		if m.Method == PaymentMethodCash {
			cut.CashExpected = m.Total
		}
	}
	return cut
}

// MonthlySummary is the month close across charges and payments
type MonthlySummary struct {
	Month          string          `json:"month"`
	ChargesTotal   decimal.Decimal `json:"charges_total"`
	PaymentsTotal  decimal.Decimal `json:"payments_total"`
	PendingBalance decimal.Decimal `json:"pending_balance"`
	Methods        []MethodTotal   `json:"methods"`
}
