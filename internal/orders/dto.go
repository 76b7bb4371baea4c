package orders

import (
	"time"

	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is a created order as returned to the till.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerID    *uuid.UUID          `json:"customer_id,omitempty"`
	CreatedBy     uuid.UUID           `json:"created_by"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	DiscountType  enums.DiscountType  `json:"discount_type"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	CoveredAmount decimal.Decimal     `json:"covered_amount"`
	RemainingDebt decimal.Decimal     `json:"remaining_debt"`
	Items         []ItemDTO           `json:"items"`
	Services      []ServiceDTO        `json:"services"`
	CreatedAt     time.Time           `json:"created_at"`
}

type ItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// ServiceDTO is a cutting or edge-banding charge. Only the fields of its
// kind are set.
type ServiceDTO struct {
	Kind          enums.ServiceKind `json:"kind"`
	Boards        *int              `json:"number_of_boards,omitempty"`
	PricePerCut   *decimal.Decimal  `json:"price_per_cut,omitempty"`
	ThicknessID   *uuid.UUID        `json:"thickness_id,omitempty"`
	Width         *decimal.Decimal  `json:"width,omitempty"`
	Height        *decimal.Decimal  `json:"height,omitempty"`
	LinearMeters  *decimal.Decimal  `json:"linear_meters,omitempty"`
	PricePerMeter *decimal.Decimal  `json:"price_per_meter,omitempty"`
	Total         decimal.Decimal   `json:"total"`
}

// ListOrdersInput carries history filters from the controller.
type ListOrdersInput struct {
	Filters ListFilters
	Limit   int
	Cursor  string
}

func FromModel(o *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		CreatedBy:     o.CreatedBy,
		PaymentMethod: o.PaymentMethod,
		DiscountType:  o.DiscountType,
		Subtotal:      o.Subtotal,
		Discount:      o.DiscountAmount,
		TotalPrice:    o.TotalPrice,
		CoveredAmount: o.CoveredAmount,
		RemainingDebt: o.RemainingDebt,
		Items:         make([]ItemDTO, 0, len(o.Items)),
		Services:      make([]ServiceDTO, 0, len(o.Services)),
		CreatedAt:     o.CreatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	for _, svc := range o.Services {
		dto.Services = append(dto.Services, ServiceDTO{
			Kind:          svc.Kind,
			Boards:        svc.Boards,
			PricePerCut:   nullable(svc.PricePerCut),
			ThicknessID:   svc.ThicknessID,
			Width:         nullable(svc.WidthMM),
			Height:        nullable(svc.HeightMM),
			LinearMeters:  nullable(svc.LinearMeters),
			PricePerMeter: nullable(svc.PricePerMeter),
			Total:         svc.Total,
		})
	}
	return dto
}

func nullable(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}
