package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	billingapp "github.com/academy/backend/internal/application/billing"
	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type collectionsRig struct {
	worklist  *MockWorklistQueries
	dashboard *MockDashboardQueries
	reports   *MockReportQueries
	router    *gin.Engine
}

func newCollectionsRig() *collectionsRig {
	rig := &collectionsRig{
		worklist:  new(MockWorklistQueries),
		dashboard: new(MockDashboardQueries),
		reports:   new(MockReportQueries),
	}
	h := NewCollectionsHandler(rig.worklist, rig.dashboard, rig.reports)
	r := gin.New()
	r.Use(withActor(testActor))
	r.GET("/pending", h.ListPending)
	r.GET("/teams", h.ListTeams)
	r.GET("/dashboard", h.GetDashboard)
	r.GET("/reports/daily-cut", h.DailyCut)
	r.GET("/reports/monthly-summary", h.MonthlySummary)
	rig.router = r
	return rig
}

func (rig *collectionsRig) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	rig.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestCollectionsHandler_ListPending(t *testing.T) {
	t.Run("parses filters and returns meta", func(t *testing.T) {
		rig := newCollectionsRig()
		campus := uuid.New()
		phone := "5553334444"
		due := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
		row := billing.WorklistRow{
			EnrollmentID: uuid.New(),
			PlayerName:   "Zoe Lara",
			TeamName:     "Sub-12",
			PrimaryPhone: &phone,
			Balance:      dec("3500"),
			DueDate:      &due,
			OverdueDays:  10,
		}
		rig.worklist.On("ListPendingEnrollments", mock.Anything, testActor, billing.WorklistFilter{
			Query:    "zoe",
			CampusID: &campus,
			Bucket:   billing.BalanceBucketHigh,
			Overdue:  billing.OverdueFilter7Plus,
			Page:     2,
		}).Return(shared.NewPaginated([]billing.WorklistRow{row}, 21, 2, billing.WorklistPageSize), nil)

		w := rig.get("/pending?q=zoe&campus_id=" + campus.String() + "&bucket=HIGH&overdue=7plus&page=2")

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(21), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 2, resp.Meta.TotalPages)
		items := resp.Data.([]any)
		require.Len(t, items, 1)
		first := items[0].(map[string]any)
		assert.Equal(t, "3500.00", first["balance"])
		assert.Equal(t, "2026-02-28", first["due_date"])
		assert.Equal(t, float64(10), first["overdue_days"])
	})

	t.Run("unknown filter values fall back to all", func(t *testing.T) {
		rig := newCollectionsRig()
		rig.worklist.On("ListPendingEnrollments", mock.Anything, testActor, billing.WorklistFilter{
			Bucket:  billing.BalanceBucketAll,
			Overdue: billing.OverdueFilterAll,
			Page:    1,
		}).Return(shared.NewPaginated[billing.WorklistRow](nil, 0, 1, billing.WorklistPageSize), nil)

		w := rig.get("/pending?bucket=huge&overdue=soon&page=-3")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeResponse(t, w).Data)
		rig.worklist.AssertExpectations(t)
	})

	t.Run("malformed campus id", func(t *testing.T) {
		rig := newCollectionsRig()
		w := rig.get("/pending?campus_id=north")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		rig.worklist.AssertNotCalled(t, "ListPendingEnrollments", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("coaches are forbidden", func(t *testing.T) {
		rig := newCollectionsRig()
		rig.worklist.On("ListPendingEnrollments", mock.Anything, testActor, mock.Anything).
			Return(shared.Paginated[billing.WorklistRow]{}, billing.ErrForbidden)

		w := rig.get("/pending")

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCollectionsHandler_ListTeams(t *testing.T) {
	rig := newCollectionsRig()
	rig.worklist.On("ListTeams", mock.Anything, testActor, (*uuid.UUID)(nil)).
		Return([]billing.Team{{ID: uuid.New(), Name: "Sub-10"}}, nil)

	w := rig.get("/teams")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeResponse(t, w).Data, 1)
}

func TestCollectionsHandler_GetDashboard(t *testing.T) {
	rig := newCollectionsRig()
	campus := uuid.New()
	rig.dashboard.On("GetDashboardData", mock.Anything, testActor, billingapp.DashboardQuery{CampusID: &campus, Month: "2026-02"}).
		Return(&billing.DashboardData{
			SelectedMonth:     "2026-02",
			ActiveEnrollments: 42,
			PendingBalance:    dec("1200"),
			PaymentsThisMonth: dec("1500"),
			PaymentsTrend:     billing.Trend{Current: dec("1500"), Previous: dec("1000"), Amount: dec("500"), Percent: dec("50")},
		}, nil)

	w := rig.get("/dashboard?campus_id=" + campus.String() + "&month=2026-02")

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "1200.00", data["pending_balance"])
	assert.Equal(t, float64(42), data["active_enrollments"])
	trend := data["payments_trend"].(map[string]any)
	assert.Equal(t, "50.00", trend["percent"])
	assert.Equal(t, "500.00", trend["amount"])
}

func TestCollectionsHandler_Reports(t *testing.T) {
	t.Run("daily cut", func(t *testing.T) {
		rig := newCollectionsRig()
		rig.reports.On("DailyCashCut", mock.Anything, testActor, billingapp.DailyCutQuery{Date: "2026-03-02"}).
			Return(&billing.DailyCashCut{
				Date:         "2026-03-02",
				PaymentCount: 3,
				GrandTotal:   dec("1000"),
				CashExpected: dec("500"),
				Methods: []billing.MethodTotal{
					{Method: billing.PaymentMethodCash, Count: 2, Total: dec("500"), Share: dec("50")},
				},
			}, nil)

		w := rig.get("/reports/daily-cut?date=2026-03-02")

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "1000.00", data["grand_total"])
		assert.Equal(t, "500.00", data["cash_expected"])
		methods := data["methods"].([]any)
		require.Len(t, methods, 1)
		assert.Equal(t, "cash", methods[0].(map[string]any)["method"])
	})

	t.Run("malformed date is a bad request", func(t *testing.T) {
		rig := newCollectionsRig()
		rig.reports.On("DailyCashCut", mock.Anything, testActor, mock.Anything).Return(nil, billing.ErrInvalidForm)

		w := rig.get("/reports/daily-cut?date=02/03/2026")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("monthly summary", func(t *testing.T) {
		rig := newCollectionsRig()
		rig.reports.On("MonthlySummary", mock.Anything, testActor, billingapp.MonthlySummaryQuery{Month: "2026-03"}).
			Return(&billing.MonthlySummary{
				Month:          "2026-03",
				ChargesTotal:   dec("3000"),
				PaymentsTotal:  dec("1000"),
				PendingBalance: dec("2000"),
			}, nil)

		w := rig.get("/reports/monthly-summary?month=2026-03")

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "3000.00", data["charges_total"])
		assert.Empty(t, data["methods"])
	})
}
