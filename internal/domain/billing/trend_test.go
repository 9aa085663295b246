package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTrend(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		previous string
		amount   string
		percent  string
	}{
		{"no activity", "0", "0", "0.00", "0.00"},
		{"new activity from nothing", "250", "0", "250.00", "100.00"},
		{"growth", "1500", "1000", "500.00", "50.00"},
		{"decline", "750", "1000", "-250.00", "-25.00"},
		{"drop to zero", "0", "400", "-400.00", "-100.00"},
		{"repeating fraction", "200", "300", "-100.00", "-33.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := ComputeTrend(dec(tt.current), dec(tt.previous))
			assert.Equal(t, tt.amount, trend.Amount.StringFixed(2))
			assert.Equal(t, tt.percent, trend.Percent.StringFixed(2))
		})
	}
}
