package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"400", "400.00"},
		{"1250.5", "1250.50"},
		{"0.005", "0.01"},
		{"0", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Money(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestNewLedgerResponse(t *testing.T) {
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	enrollmentID := uuid.New()
	charge := billing.Charge{
		BaseEntity:   shared.BaseEntity{ID: uuid.New(), CreatedAt: due},
		EnrollmentID: enrollmentID,
		Description:  "Mensualidad abril",
		Amount:       decimal.RequireFromString("1000"),
		Currency:     "MXN",
		Status:       billing.ChargeStatusPending,
		DueDate:      &due,
	}
	ledger := &billing.Ledger{
		Enrollment: billing.Enrollment{ID: enrollmentID, PlayerName: "Mateo Ruiz", Currency: "MXN"},
		Totals: billing.Totals{
			Currency:      "MXN",
			TotalCharges:  decimal.RequireFromString("1000"),
			TotalPayments: decimal.RequireFromString("600"),
			Balance:       decimal.RequireFromString("400"),
		},
		Charges: []billing.ChargeLine{{
			Charge:          charge,
			AllocatedAmount: decimal.RequireFromString("600"),
			PendingAmount:   decimal.RequireFromString("400"),
		}},
	}

	resp := NewLedgerResponse(ledger)

	assert.Equal(t, "400.00", resp.Totals.Balance)
	require.Len(t, resp.Charges, 1)
	assert.Equal(t, "1000.00", resp.Charges[0].Amount)
	require.NotNil(t, resp.Charges[0].PendingAmount)
	assert.Equal(t, "400.00", *resp.Charges[0].PendingAmount)
	require.NotNil(t, resp.Charges[0].DueDate)
	assert.Equal(t, "2026-04-01", *resp.Charges[0].DueDate)
	assert.Empty(t, resp.Payments)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"payments":[]`)
}
