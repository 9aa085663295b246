package handler

import (
	"context"

	billingapp "github.com/academy/backend/internal/application/billing"
	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WorklistQueries lists enrollments with outstanding balances
type WorklistQueries interface {
	ListPendingEnrollments(ctx context.Context, actor *billing.Actor, filter billing.WorklistFilter) (shared.Paginated[billing.WorklistRow], error)
	ListTeams(ctx context.Context, actor *billing.Actor, campusID *uuid.UUID) ([]billing.Team, error)
}

// DashboardQueries computes the dashboard KPIs
type DashboardQueries interface {
	GetDashboardData(ctx context.Context, actor *billing.Actor, q billingapp.DashboardQuery) (*billing.DashboardData, error)
}

// ReportQueries builds the cash reports
type ReportQueries interface {
	DailyCashCut(ctx context.Context, actor *billing.Actor, q billingapp.DailyCutQuery) (*billing.DailyCashCut, error)
	MonthlySummary(ctx context.Context, actor *billing.Actor, q billingapp.MonthlySummaryQuery) (*billing.MonthlySummary, error)
}

// CollectionsHandler serves the pending worklist, dashboard and reports
type CollectionsHandler struct {
	BaseHandler
	worklist  WorklistQueries
	dashboard DashboardQueries
	reports   ReportQueries
}

// NewCollectionsHandler creates a new CollectionsHandler
func NewCollectionsHandler(worklist WorklistQueries, dashboard DashboardQueries, reports ReportQueries) *CollectionsHandler {
	return &CollectionsHandler{worklist: worklist, dashboard: dashboard, reports: reports}
}

// ListPending godoc
// @Summary      Pending enrollments worklist
// @Description  Active enrollments with a positive balance, most urgent first, 20 per page
// @Tags         collections
// @Produce      json
// @Param        q query string false "Player name contains"
// @Param        campus_id query string false "Campus ID"
// @Param        team_id query string false "Team ID"
// @Param        bucket query string false "all, small, medium or high"
// @Param        overdue query string false "all, overdue, 7plus or 30plus"
// @Param        page query int false "Page number"
// @Router       /pending [get]
func (h *CollectionsHandler) ListPending(c *gin.Context) {
	campusID, err := optionalUUIDQuery(c, "campus_id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	teamID, err := optionalUUIDQuery(c, "team_id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, err := h.worklist.ListPendingEnrollments(c.Request.Context(), actor(c), billing.WorklistFilter{
		Query:    c.Query("q"),
		CampusID: campusID,
		TeamID:   teamID,
		Bucket:   billing.ParseBalanceBucket(c.Query("bucket")),
		Overdue:  billing.ParseOverdueFilter(c.Query("overdue")),
		Page:     pageQuery(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.NewWorklistRows(page.Items), page.Total, page.Page, page.PageSize)
}

// ListTeams godoc
// @Summary      Active teams
// @Tags         collections
// @Produce      json
// @Param        campus_id query string false "Campus ID"
// @Router       /teams [get]
func (h *CollectionsHandler) ListTeams(c *gin.Context) {
	campusID, err := optionalUUIDQuery(c, "campus_id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	teams, err := h.worklist.ListTeams(c.Request.Context(), actor(c), campusID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, teams)
}

// GetDashboard godoc
// @Summary      Dashboard KPIs
// @Tags         collections
// @Produce      json
// @Param        campus_id query string false "Campus ID"
// @Param        month query string false "YYYY-MM, defaults to the current month"
// @Router       /dashboard [get]
func (h *CollectionsHandler) GetDashboard(c *gin.Context) {
	campusID, err := optionalUUIDQuery(c, "campus_id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	data, err := h.dashboard.GetDashboardData(c.Request.Context(), actor(c), billingapp.DashboardQuery{
		CampusID: campusID,
		Month:    c.Query("month"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewDashboardResponse(data))
}

// DailyCut godoc
// @Summary      Daily cash cut
// @Tags         reports
// @Produce      json
// @Param        campus_id query string false "Campus ID"
// @Param        date query string false "YYYY-MM-DD, defaults to today"
// @Router       /reports/daily-cut [get]
func (h *CollectionsHandler) DailyCut(c *gin.Context) {
	campusID, err := optionalUUIDQuery(c, "campus_id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	cut, err := h.reports.DailyCashCut(c.Request.Context(), actor(c), billingapp.DailyCutQuery{
		CampusID: campusID,
		Date:     c.Query("date"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewDailyCashCutResponse(cut))
}

// MonthlySummary godoc
// @Summary      Monthly summary
// @Tags         reports
// @Produce      json
// @Param        campus_id query string false "Campus ID"
// @Param        month query string false "YYYY-MM, defaults to the current month"
// @Router       /reports/monthly-summary [get]
func (h *CollectionsHandler) MonthlySummary(c *gin.Context) {
	campusID, err := optionalUUIDQuery(c, "campus_id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	summary, err := h.reports.MonthlySummary(c.Request.Context(), actor(c), billingapp.MonthlySummaryQuery{
		CampusID: campusID,
		Month:    c.Query("month"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewMonthlySummaryResponse(summary))
}
