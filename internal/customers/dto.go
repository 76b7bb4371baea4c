package customers

import (
	"time"

	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	"github.com/angelmondragon/warehousepos-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerDTO is a customer with their outstanding credit balance.
type CustomerDTO struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Address   *string         `json:"address,omitempty"`
	Email     *string         `json:"email,omitempty"`
	Notes     *string         `json:"notes,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type PaymentDTO struct {
	ID         uuid.UUID       `json:"id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       *string         `json:"note,omitempty"`
	RecordedBy uuid.UUID       `json:"recorded_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PaymentResult is the recorded payment plus the balance left after it.
type PaymentResult struct {
	Payment PaymentDTO      `json:"payment"`
	Balance decimal.Decimal `json:"balance"`
}

type CreateCustomerRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Phone   string  `json:"phone" validate:"required,max=32"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Notes   *string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateCustomerRequest patches a customer. Optional text fields can be
// cleared with an explicit null.
type UpdateCustomerRequest struct {
	Name    *string              `json:"name" validate:"omitempty,max=200"`
	Phone   *string              `json:"phone" validate:"omitempty,max=32"`
	Address types.NullableString `json:"address"`
	Email   types.NullableString `json:"email"`
	Notes   types.NullableString `json:"notes"`
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"dgt0"`
	Note   *string         `json:"note" validate:"omitempty,max=500"`
}

type ListCustomersInput struct {
	Search string
	Limit  int
	Cursor string
}

func fromModel(c *models.Customer, balance decimal.Decimal) CustomerDTO {
	return CustomerDTO{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		Email:     c.Email,
		Notes:     c.Notes,
		Balance:   balance,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func paymentFromModel(p *models.CustomerPayment) PaymentDTO {
	return PaymentDTO{
		ID:         p.ID,
		CustomerID: p.CustomerID,
		Amount:     p.Amount,
		Note:       p.Note,
		RecordedBy: p.RecordedBy,
		CreatedAt:  p.CreatedAt,
	}
}
