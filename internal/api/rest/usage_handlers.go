package rest

import (
	"net/http"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/errors"
	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/repository"
)

// UsagePage handles GET /admin/usage. A missing or empty usage log is an
// empty state, not an error.
func (h *Handler) UsagePage(w http.ResponseWriter, r *http.Request) {
	page := newUsagePage()

	report, err := h.services.Usage.Report(r.Context(), r.URL.Query().Get("month"))
	switch {
	case err == nil:
		page.Report = report
		page.Selected = report.Month.String()
		h.pages.render(w, r, http.StatusOK, pageUsage, page)
	case errors.IsType(err, errors.ErrorTypeMissingResource):
		page.Notice = repository.NoUsageLogsMessage
		h.pages.render(w, r, http.StatusOK, pageUsage, page)
	default:
		status, _, message, _ := h.errorHandler.HandleError(err)
		if status >= http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "usage report failed", "error", err)
		}
		page.Error = message
		h.pages.render(w, r, status, pageUsage, page)
	}
}

// UsageMonthsAPI handles GET /api/v1/usage/months
func (h *Handler) UsageMonthsAPI(w http.ResponseWriter, r *http.Request) {
	months, err := h.services.Usage.Months(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeSuccess(w, r, http.StatusOK, UsageMonthsResponse{Months: months})
}

// UsageSummaryAPI handles GET /api/v1/usage/summary?month=YYYY-MM
func (h *Handler) UsageSummaryAPI(w http.ResponseWriter, r *http.Request) {
	report, err := h.services.Usage.Report(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeSuccess(w, r, http.StatusOK, report)
}
