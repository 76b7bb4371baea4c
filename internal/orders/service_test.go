package orders

import (
	"context"
	"testing"

	"github.com/angelmondragon/warehousepos-backend/internal/catalog"
	"github.com/angelmondragon/warehousepos-backend/internal/customers"
	"github.com/angelmondragon/warehousepos-backend/pkg/db"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/angelmondragon/warehousepos-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc       Service
	conn      *gorm.DB
	catalog   catalog.Service
	customers customers.Service
}

func newFixture(t *testing.T, wrap func(Repository) Repository) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	cat, err := catalog.NewService(catalog.NewRepository(conn), nil)
	require.NoError(t, err)
	cust, err := customers.NewService(customers.NewRepository(conn), db.NewFromConn(conn), nil)
	require.NoError(t, err)

	var r Repository = NewRepository(conn)
	if wrap != nil {
		r = wrap(r)
	}
	svc, err := NewService(ServiceParams{
		Repo:      r,
		Tx:        db.NewFromConn(conn),
		Catalog:   cat,
		Customers: cust,
	})
	require.NoError(t, err)
	return &fixture{svc: svc, conn: conn, catalog: cat, customers: cust}
}

func (f *fixture) product(t *testing.T, sku, price string, stock int) uuid.UUID {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), catalog.CreateProductRequest{
		Name:      "Board " + sku,
		SKU:       sku,
		UnitPrice: decimal.RequireFromString(price),
		StockQty:  stock,
	})
	require.NoError(t, err)
	return p.ID
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.conn.First(&p, "id = ?", id).Error)
	return p.StockQty
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&n).Error)
	return n
}

func TestCreateRepricesFromCatalog(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	boardID := f.product(t, "MDF-18", "100.00", 10)
	tier, err := f.catalog.CreateTier(ctx, catalog.CreateTierRequest{
		Label:         "1mm",
		SizeMM:        decimal.NewFromInt(1),
		PricePerMeter: decimal.RequireFromString("2.50"),
	})
	require.NoError(t, err)

	actor := uuid.New()
	order, err := f.svc.Create(ctx, actor, pricing.OrderRequest{
		Items:          []pricing.OrderItem{{ProductID: boardID, Quantity: 3}},
		Discount:       decimal.NewFromInt(50),
		CuttingService: &pricing.CuttingSpec{NumberOfBoards: 2, PricePerCut: decimal.NewFromInt(15)},
		EdgeBandingService: &pricing.EdgeBandingSpec{
			ThicknessID: tier.ID,
			Width:       decimal.NewFromInt(1000),
			Height:      decimal.NewFromInt(500),
		},
		PaymentMethod: enums.PaymentMethodCash,
	})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("337.5").Equal(order.Subtotal), "subtotal %s", order.Subtotal)
	assert.True(t, decimal.NewFromInt(50).Equal(order.Discount))
	assert.True(t, decimal.RequireFromString("287.5").Equal(order.TotalPrice))
	assert.True(t, order.TotalPrice.Equal(order.CoveredAmount))
	assert.True(t, order.RemainingDebt.IsZero())
	assert.Equal(t, enums.DiscountTypeFixed, order.DiscountType)
	assert.Equal(t, actor, order.CreatedBy)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, order.OrderNumber)

	require.Len(t, order.Items, 1)
	assert.True(t, decimal.NewFromInt(300).Equal(order.Items[0].LineTotal))
	require.Len(t, order.Services, 2)
	assert.Equal(t, 7, f.stock(t, boardID))

	loaded, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, loaded.OrderNumber)
	require.Len(t, loaded.Services, 2)
}

func TestCreateRejectsInvalidRequests(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	boardID := f.product(t, "PLY-12", "40.00", 5)

	cases := map[string]pricing.OrderRequest{
		"unknown method": {
			Items:         []pricing.OrderItem{{ProductID: boardID, Quantity: 1}},
			PaymentMethod: "barter",
		},
		"zero quantity": {
			Items:         []pricing.OrderItem{{ProductID: boardID, Quantity: 0}},
			PaymentMethod: enums.PaymentMethodCash,
		},
		"discount above subtotal": {
			Items:         []pricing.OrderItem{{ProductID: boardID, Quantity: 1}},
			Discount:      decimal.NewFromInt(41),
			PaymentMethod: enums.PaymentMethodCash,
		},
		"unknown product": {
			Items:         []pricing.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
			PaymentMethod: enums.PaymentMethodCard,
		},
		"credit debt without customer": {
			Items:         []pricing.OrderItem{{ProductID: boardID, Quantity: 2}},
			CoveredAmount: "10",
			PaymentMethod: enums.PaymentMethodNasiya,
		},
		"covered above total": {
			Items:         []pricing.OrderItem{{ProductID: boardID, Quantity: 1}},
			CoveredAmount: "100",
			PaymentMethod: enums.PaymentMethodNasiya,
		},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, uuid.New(), req)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
		})
	}
	assert.Equal(t, 5, f.stock(t, boardID))
	assert.Zero(t, f.orderCount(t))
}

func TestCreateCreditOrderWithCustomer(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	boardID := f.product(t, "OSB-9", "60.00", 4)
	cust, err := f.customers.Create(ctx, customers.CreateCustomerRequest{Name: "Dilnoza", Phone: "+998901112233"})
	require.NoError(t, err)

	order, err := f.svc.Create(ctx, uuid.New(), pricing.OrderRequest{
		Items:         []pricing.OrderItem{{ProductID: boardID, Quantity: 2}},
		CoveredAmount: "45.50",
		CustomerID:    &cust.ID,
		PaymentMethod: enums.PaymentMethodNasiya,
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("45.50").Equal(order.CoveredAmount))
	assert.True(t, decimal.RequireFromString("74.50").Equal(order.RemainingDebt))

	got, err := f.customers.Get(ctx, cust.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("74.50").Equal(got.Balance))

	stranger := uuid.New()
	_, err = f.svc.Create(ctx, uuid.New(), pricing.OrderRequest{
		Items:         []pricing.OrderItem{{ProductID: boardID, Quantity: 1}},
		CustomerID:    &stranger,
		PaymentMethod: enums.PaymentMethodNasiya,
	})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestCreateRejectsStockShortfall(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	boardID := f.product(t, "HDF-3", "12.00", 3)

	_, err := f.svc.Create(ctx, uuid.New(), pricing.OrderRequest{
		Items: []pricing.OrderItem{
			{ProductID: boardID, Quantity: 2},
			{ProductID: boardID, Quantity: 2},
		},
		PaymentMethod: enums.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	assert.Equal(t, 3, f.stock(t, boardID))
}

// racingRepo loses the stock race for one product inside the transaction.
type racingRepo struct {
	Repository
	lose uuid.UUID
}

func (r *racingRepo) WithTx(tx *gorm.DB) Repository {
	return &racingRepo{Repository: r.Repository.WithTx(tx), lose: r.lose}
}

func (r *racingRepo) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	if productID == r.lose {
		return false, nil
	}
	return r.Repository.DecrementStock(ctx, productID, quantity)
}

func TestCreateRollsBackWhenStockRaceIsLost(t *testing.T) {
	race := &racingRepo{}
	f := newFixture(t, func(r Repository) Repository {
		race.Repository = r
		return race
	})
	ctx := context.Background()
	first := f.product(t, "A-1", "10.00", 5)
	second := f.product(t, "B-1", "20.00", 5)
	race.lose = second

	_, err := f.svc.Create(ctx, uuid.New(), pricing.OrderRequest{
		Items: []pricing.OrderItem{
			{ProductID: first, Quantity: 2},
			{ProductID: second, Quantity: 1},
		},
		PaymentMethod: enums.PaymentMethodCard,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	assert.Equal(t, 5, f.stock(t, first))
	assert.Equal(t, 5, f.stock(t, second))
	assert.Zero(t, f.orderCount(t))
}

func TestListFiltersAndPages(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	boardID := f.product(t, "CHIP-16", "25.00", 50)
	cashier := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, cashier, pricing.OrderRequest{
			Items:         []pricing.OrderItem{{ProductID: boardID, Quantity: 1}},
			PaymentMethod: enums.PaymentMethodCash,
		})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, uuid.New(), pricing.OrderRequest{
		Items:         []pricing.OrderItem{{ProductID: boardID, Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCard,
	})
	require.NoError(t, err)

	cash := enums.PaymentMethodCash
	page, err := f.svc.List(ctx, ListOrdersInput{Filters: ListFilters{PaymentMethod: &cash}, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	next, err := f.svc.List(ctx, ListOrdersInput{Filters: ListFilters{PaymentMethod: &cash}, Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Items, 1)
	assert.Empty(t, next.NextCursor)
	assert.NotEqual(t, page.Items[1].ID, next.Items[0].ID)

	byCashier, err := f.svc.List(ctx, ListOrdersInput{Filters: ListFilters{CreatedBy: &cashier}})
	require.NoError(t, err)
	assert.Len(t, byCashier.Items, 3)
	for _, o := range byCashier.Items {
		require.Len(t, o.Items, 1)
	}
}

func TestGetMissingOrder(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Get(context.Background(), uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
