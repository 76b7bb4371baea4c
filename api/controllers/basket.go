package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/warehousepos-backend/api/middleware"
	"github.com/angelmondragon/warehousepos-backend/api/responses"
	"github.com/angelmondragon/warehousepos-backend/api/validators"
	"github.com/angelmondragon/warehousepos-backend/internal/basket"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
)

// BasketGet returns the caller's basket. A view served from the cache while
// the database is unreachable carries stale=true.
func BasketGet(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("basket service"))
			return
		}
		userID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func BasketAddItem(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("basket service"))
			return
		}
		userID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body basket.AddItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.AddItem(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func BasketUpdateQuantity(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return basketLineHandler(svc, logg, func(r *http.Request, userID, itemID uuid.UUID) (*basket.View, error) {
		var body basket.UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.UpdateQuantity(r.Context(), userID, itemID, body.Quantity)
	})
}

func BasketRemoveItem(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return basketLineHandler(svc, logg, func(r *http.Request, userID, itemID uuid.UUID) (*basket.View, error) {
		return svc.RemoveItem(r.Context(), userID, itemID)
	})
}

func BasketAttachCutting(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return basketLineHandler(svc, logg, func(r *http.Request, userID, itemID uuid.UUID) (*basket.View, error) {
		var body basket.AttachCuttingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.AttachCutting(r.Context(), userID, itemID, body)
	})
}

func BasketDetachCutting(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return basketLineHandler(svc, logg, func(r *http.Request, userID, itemID uuid.UUID) (*basket.View, error) {
		return svc.DetachCutting(r.Context(), userID, itemID)
	})
}

func BasketAttachEdgeBanding(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return basketLineHandler(svc, logg, func(r *http.Request, userID, itemID uuid.UUID) (*basket.View, error) {
		var body basket.AttachEdgeBandingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.AttachEdgeBanding(r.Context(), userID, itemID, body)
	})
}

func BasketDetachEdgeBanding(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return basketLineHandler(svc, logg, func(r *http.Request, userID, itemID uuid.UUID) (*basket.View, error) {
		return svc.DetachEdgeBanding(r.Context(), userID, itemID)
	})
}

func BasketClear(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("basket service"))
			return
		}
		userID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

type basketLineFunc func(r *http.Request, userID, itemID uuid.UUID) (*basket.View, error)

// basketLineHandler resolves the caller and the {itemID} path parameter
// before running a line mutation.
func basketLineHandler(svc basket.Service, logg *logger.Logger, fn basketLineFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("basket service"))
			return
		}
		userID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := parseUUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := fn(r, userID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
