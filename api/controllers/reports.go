package controllers

import (
	"net/http"

	"github.com/angelmondragon/warehousepos-backend/api/responses"
	"github.com/angelmondragon/warehousepos-backend/api/validators"
	"github.com/angelmondragon/warehousepos-backend/internal/reports"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
)

func ReportsSales(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("report service"))
			return
		}
		window, err := parseReportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.SalesSummary(r.Context(), window)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func ReportsTopProducts(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("report service"))
			return
		}
		window, err := parseReportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 10, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		top, err := svc.TopProducts(r.Context(), window, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, top)
	}
}

func parseReportRange(r *http.Request) (reports.Range, error) {
	from, err := parseTimeQuery(r, "from", false)
	if err != nil {
		return reports.Range{}, err
	}
	to, err := parseTimeQuery(r, "to", true)
	if err != nil {
		return reports.Range{}, err
	}
	if from == nil || to == nil {
		return reports.Range{}, pkgerrors.New(pkgerrors.CodeValidation, "from and to are required")
	}
	return reports.Range{From: *from, To: *to}, nil
}

