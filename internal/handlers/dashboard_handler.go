package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kumoney/internal/services"
)

// DashboardHandler serves the aggregated dashboard view.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary returns balance and transaction totals
// @Summary     Dashboard summary
// @Description Total balance across accounts plus incomes and expenses totals for the range
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       from_date  query string false "Start of the range (RFC3339 or YYYY-MM-DD)"
// @Param       to_date    query string false "End of the range (RFC3339 or YYYY-MM-DD)"
// @Param       account_id query string false "Restrict to one account"
// @Success     200 {object} services.DashboardSummary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var filter services.DashboardFilter
	if filter.FromDate, filter.ToDate, err = parseDateRange(c); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.AccountID, err = parseOptionalID(c, "account_id"); err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.GetSummary(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
