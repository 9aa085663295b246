package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var fixtureTime = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

// setupTestDB opens an in-memory SQLite store with the billing schema and
// the balance view
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// every pooled connection would otherwise get its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, db.Exec(BalanceViewSQL).Error)
	return db
}

// newMockDB opens GORM on a sqlmock connection using the postgres dialect
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

// fixtures seeds academy records the billing repositories read
type fixtures struct {
	t  *testing.T
	db *gorm.DB
}

func newFixtures(t *testing.T, db *gorm.DB) *fixtures {
	return &fixtures{t: t, db: db}
}

func (f *fixtures) create(value any) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(value).Error)
}

func (f *fixtures) campus(name, code string) uuid.UUID {
	m := &models.CampusModel{BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: fixtureTime}, Name: name, Code: code, IsActive: true}
	f.create(m)
	return m.ID
}

func (f *fixtures) plan(name, currency string) uuid.UUID {
	m := &models.PricingPlanModel{BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: fixtureTime}, Name: name, Currency: currency, IsActive: true}
	f.create(m)
	return m.ID
}

func (f *fixtures) player(first, last string) uuid.UUID {
	m := &models.PlayerModel{BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: fixtureTime}, FirstName: first, LastName: last}
	f.create(m)
	return m.ID
}

func (f *fixtures) enrollment(playerID, campusID uuid.UUID, planID *uuid.UUID, status billing.EnrollmentStatus) uuid.UUID {
	m := &models.EnrollmentModel{
		BaseModel:     models.BaseModel{ID: uuid.New(), CreatedAt: fixtureTime},
		PlayerID:      playerID,
		CampusID:      campusID,
		PricingPlanID: planID,
		Status:        status,
		StartDate:     fixtureTime,
	}
	f.create(m)
	return m.ID
}

// activeEnrollment creates a player and an active MXN enrollment
func (f *fixtures) activeEnrollment(campusID uuid.UUID, first, last string) uuid.UUID {
	planID := f.plan("Mensual", "MXN")
	return f.enrollment(f.player(first, last), campusID, &planID, billing.EnrollmentStatusActive)
}

func (f *fixtures) chargeType(code, name string, active bool) uuid.UUID {
	m := &models.ChargeTypeModel{ID: uuid.New(), Code: code, Name: name, IsActive: active}
	f.create(m)
	return m.ID
}

func (f *fixtures) charge(enrollmentID, typeID uuid.UUID, amount string, status billing.ChargeStatus, createdAt time.Time, due *time.Time) *billing.Charge {
	c := &billing.Charge{
		BaseEntity:   shared.BaseEntity{ID: uuid.New(), CreatedAt: createdAt},
		EnrollmentID: enrollmentID,
		ChargeTypeID: typeID,
		Description:  "Mensualidad",
		Amount:       decimal.RequireFromString(amount),
		Currency:     "MXN",
		Status:       status,
		DueDate:      due,
	}
	require.NoError(f.t, NewGormChargeRepository(f.db).Create(f.t.Context(), c))
	return c
}

func (f *fixtures) payment(enrollmentID uuid.UUID, amount string, method billing.PaymentMethod, status billing.PaymentStatus, paidAt time.Time) *billing.Payment {
	p := &billing.Payment{
		BaseEntity:     shared.BaseEntity{ID: uuid.New(), CreatedAt: paidAt},
		EnrollmentID:   enrollmentID,
		Amount:         decimal.RequireFromString(amount),
		Currency:       "MXN",
		Method:         method,
		Status:         status,
		PaidAt:         paidAt,
		ProviderRef:    "manual-" + uuid.NewString(),
		ExternalSource: billing.ExternalSourceManual,
	}
	require.NoError(f.t, NewGormPaymentRepository(f.db).Create(f.t.Context(), p))
	return p
}

func (f *fixtures) guardian(playerID uuid.UUID, phone *string, primary bool, linkedAt time.Time) {
	g := &models.GuardianModel{BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: linkedAt}, FirstName: "Tutor", LastName: "Apellido", PhonePrimary: phone}
	f.create(g)
	f.create(&models.PlayerGuardianModel{PlayerID: playerID, GuardianID: g.ID, IsPrimary: primary, CreatedAt: linkedAt})
}

func (f *fixtures) team(campusID uuid.UUID, name string, active bool) uuid.UUID {
	m := &models.TeamModel{BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: fixtureTime}, CampusID: campusID, Name: name, IsActive: active}
	f.create(m)
	return m.ID
}

func (f *fixtures) assign(enrollmentID, teamID uuid.UUID, primary bool, end *time.Time) {
	f.create(&models.TeamAssignmentModel{
		BaseModel:    models.BaseModel{ID: uuid.New(), CreatedAt: fixtureTime},
		EnrollmentID: enrollmentID,
		TeamID:       teamID,
		IsPrimary:    primary,
		StartDate:    fixtureTime,
		EndDate:      end,
	})
}

func ptr[T any](v T) *T {
	return &v
}
