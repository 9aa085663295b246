package persistence

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The balance view is a cache of billing.ComputeTotals. For randomized
// ledgers the view must agree with the pure computation on every row.
func TestBalanceView_MatchesComputeTotals(t *testing.T) {
	chargeStatuses := []billing.ChargeStatus{billing.ChargeStatusPending, billing.ChargeStatusPosted, billing.ChargeStatusVoid}
	paymentStatuses := []billing.PaymentStatus{billing.PaymentStatusPosted, billing.PaymentStatusVoid, billing.PaymentStatusRefunded}

	for seed := uint64(1); seed <= 5; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed*7919))
			db := setupTestDB(t)
			f := newFixtures(t, db)
			ctx := context.Background()

			campus := f.campus("Centro", "CEN")
			typeID := f.chargeType("monthly_tuition", "Mensualidad", true)
			randomAmount := func() string {
				cents := rng.IntN(500_000) + 1
				return decimal.New(int64(cents), -2).StringFixed(2)
			}

			enrollments := make([]uuid.UUID, 8)
			for i := range enrollments {
				enrollments[i] = f.activeEnrollment(campus, fmt.Sprintf("Jugador%d", i), "Prueba")
				for range rng.IntN(6) {
					status := chargeStatuses[rng.IntN(len(chargeStatuses))]
					created := fixtureTime.Add(time.Duration(rng.IntN(1000)) * time.Minute)
					f.charge(enrollments[i], typeID, randomAmount(), status, created, nil)
				}
				for range rng.IntN(6) {
					status := paymentStatuses[rng.IntN(len(paymentStatuses))]
					paid := fixtureTime.Add(time.Duration(rng.IntN(1000)) * time.Minute)
					f.payment(enrollments[i], randomAmount(), billing.PaymentMethodCash, status, paid)
				}
			}

			charges := NewGormChargeRepository(db)
			payments := NewGormPaymentRepository(db)
			balances := NewGormBalanceRepository(db)

			positive := make(map[uuid.UUID]bool)
			for _, id := range enrollments {
				cs, err := charges.FindByEnrollment(ctx, id)
				require.NoError(t, err)
				ps, err := payments.FindByEnrollment(ctx, id)
				require.NoError(t, err)
				want := billing.ComputeTotals(id, cs, ps)

				got, err := balances.FindByEnrollment(ctx, id)
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Truef(t, want.Agrees(*got), "enrollment %s: view %+v, computed %+v", id, *got, want)

				if want.Balance.IsPositive() {
					positive[id] = true
				}
			}

			rows, err := balances.FindPositive(ctx)
			require.NoError(t, err)
			assert.Len(t, rows, len(positive))
			for _, row := range rows {
				assert.True(t, positive[row.EnrollmentID])
			}
		})
	}
}

func TestBalanceViewSQL_MatchesMigration(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "20260301090200_enrollment_balances_view.up.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), BalanceViewSQL+";")
}
