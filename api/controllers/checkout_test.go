package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warehousepos-backend/api/middleware"
	checkoutsvc "github.com/angelmondragon/warehousepos-backend/internal/checkout"
	"github.com/angelmondragon/warehousepos-backend/internal/orders"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
)

type stubCheckoutService struct {
	result *checkoutsvc.Result
	err    error
	input  checkoutsvc.Input
	userID uuid.UUID
}

func (s *stubCheckoutService) Execute(ctx context.Context, userID uuid.UUID, input checkoutsvc.Input) (*checkoutsvc.Result, error) {
	s.userID = userID
	s.input = input
	return s.result, s.err
}

func (s *stubCheckoutService) Preview(ctx context.Context, userID uuid.UUID, input checkoutsvc.Input) (*checkoutsvc.Preview, error) {
	return &checkoutsvc.Preview{LineCount: 2, ExtraCuttingServices: 1}, s.err
}

func (s *stubCheckoutService) Status(ctx context.Context, userID uuid.UUID) (*checkoutsvc.Status, error) {
	return &checkoutsvc.Status{State: enums.CheckoutStateIdle}, s.err
}

func withActor(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(enums.UserRoleCashier))
	return req.WithContext(ctx)
}

func TestCheckoutSuccess(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	orderID := uuid.New()
	svc := &stubCheckoutService{result: &checkoutsvc.Result{
		State: enums.CheckoutStateSuccess,
		Order: &orders.OrderDTO{ID: orderID, OrderNumber: "ORD-20260101-ABCDEF12", TotalPrice: decimal.RequireFromString("287.5")},
	}}

	body := `{"discount":{"type":"percentage","magnitude":"10"},"payment_method":"cash","amount_paid":"300"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body)), userID)
	resp := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.userID != userID {
		t.Fatalf("expected actor %s got %s", userID, svc.userID)
	}
	if svc.input.PaymentMethod != enums.PaymentMethodCash || !svc.input.Discount.Magnitude.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected decoded input %+v", svc.input)
	}

	var payload struct {
		Data struct {
			State string `json:"state"`
			Order struct {
				ID         string `json:"id"`
				TotalPrice string `json:"total_price"`
			} `json:"order"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.State != string(enums.CheckoutStateSuccess) || payload.Data.Order.ID != orderID.String() {
		t.Fatalf("unexpected payload %+v", payload.Data)
	}
	if payload.Data.Order.TotalPrice != "287.5" {
		t.Fatalf("expected decimal string total, got %q", payload.Data.Order.TotalPrice)
	}
}

func TestCheckoutBusy(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already in progress")}
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"payment_method":"card"}`)), uuid.New())
	resp := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestCheckoutRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{}
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"payment_method":"cash","total":"1"}`)), uuid.New())
	resp := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.userID != uuid.Nil {
		t.Fatal("service should not be called")
	}
}

func TestCheckoutRequiresActor(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"payment_method":"cash"}`))
	resp := httptest.NewRecorder()
	Checkout(&stubCheckoutService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutPreviewAndStatus(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{}
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/checkout/preview", strings.NewReader(`{"payment_method":"nasiya"}`)), uuid.New())
	resp := httptest.NewRecorder()
	CheckoutPreview(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("preview: expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"extra_cutting_services":1`) {
		t.Fatalf("preview body missing extra service count: %s", resp.Body.String())
	}

	req = withActor(httptest.NewRequest(http.MethodGet, "/api/v1/checkout/status", nil), uuid.New())
	resp = httptest.NewRecorder()
	CheckoutStatus(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"state":"idle"`) {
		t.Fatalf("status: unexpected %d %s", resp.Code, resp.Body.String())
	}
}

func TestCheckoutServiceMissing(t *testing.T) {
	t.Parallel()

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`)), uuid.New())
	resp := httptest.NewRecorder()
	Checkout(nil, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
