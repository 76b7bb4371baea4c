package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/warehousepos-backend/api/middleware"
	"github.com/angelmondragon/warehousepos-backend/api/responses"
	"github.com/angelmondragon/warehousepos-backend/api/validators"
	"github.com/angelmondragon/warehousepos-backend/internal/orders"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
	"github.com/angelmondragon/warehousepos-backend/pkg/pagination"
	"github.com/angelmondragon/warehousepos-backend/pkg/pricing"
)

// OrdersCreate accepts a wire order request. Totals are recomputed server
// side from catalog prices.
func OrdersCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("order service"))
			return
		}
		actorID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body pricing.OrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Create(r.Context(), actorID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, order)
	}
}

// OrdersList pages the order history newest first.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("order service"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := buildOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), orders.ListOrdersInput{
			Filters: filters,
			Limit:   limit,
			Cursor:  cursorQuery(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func OrdersGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("order service"))
			return
		}
		id, err := parseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func buildOrderFilters(r *http.Request) (orders.ListFilters, error) {
	var filters orders.ListFilters
	var err error

	if filters.CustomerID, err = parseUUIDQuery(r, "customer_id"); err != nil {
		return filters, err
	}
	if filters.CreatedBy, err = parseUUIDQuery(r, "created_by"); err != nil {
		return filters, err
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_method")); raw != "" {
		method, parseErr := enums.ParsePaymentMethod(strings.ToLower(raw))
		if parseErr != nil {
			return filters, pkgerrors.Invalid("payment_method", "unknown payment method")
		}
		filters.PaymentMethod = &method
	}
	if filters.From, err = parseTimeQuery(r, "from", false); err != nil {
		return filters, err
	}
	if filters.To, err = parseTimeQuery(r, "to", true); err != nil {
		return filters, err
	}
	return filters, nil
}
