package pricing

import (
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var mmPerMeter = decimal.NewFromInt(1000)

// CuttingTotal prices a cutting job. Boards and price must be positive.
func CuttingTotal(boards int, pricePerCut decimal.Decimal) (decimal.Decimal, error) {
	if err := validateCutting(boards, pricePerCut); err != nil {
		return decimal.Zero, err
	}
	return CuttingService{Boards: boards, PricePerCut: pricePerCut}.Total(), nil
}

// NewCuttingService validates the parameters and returns a service with a fresh id.
func NewCuttingService(boards int, pricePerCut decimal.Decimal) (*CuttingService, error) {
	if err := validateCutting(boards, pricePerCut); err != nil {
		return nil, err
	}
	return &CuttingService{ID: uuid.New(), Boards: boards, PricePerCut: pricePerCut}, nil
}

func validateCutting(boards int, pricePerCut decimal.Decimal) error {
	if boards <= 0 {
		return pkgerrors.Invalid("number_of_boards", "number of boards must be positive")
	}
	if !pricePerCut.IsPositive() {
		return pkgerrors.Invalid("price_per_cut", "price per cut must be positive")
	}
	return nil
}

// LinearMeters is 2 × (width + height) / 1000.
func LinearMeters(widthMM, heightMM decimal.Decimal) decimal.Decimal {
	return widthMM.Add(heightMM).Mul(decimal.NewFromInt(2)).Div(mmPerMeter)
}

// EdgeBandingTotal prices edge banding for one panel size and tier.
func EdgeBandingTotal(widthMM, heightMM decimal.Decimal, tier *ThicknessTier) (decimal.Decimal, error) {
	if err := validateEdgeBanding(widthMM, heightMM, tier); err != nil {
		return decimal.Zero, err
	}
	return LinearMeters(widthMM, heightMM).Mul(tier.PricePerMeter), nil
}

// NewEdgeBandingService validates the parameters and returns a service with a fresh id.
func NewEdgeBandingService(widthMM, heightMM decimal.Decimal, tier *ThicknessTier) (*EdgeBandingService, error) {
	if err := validateEdgeBanding(widthMM, heightMM, tier); err != nil {
		return nil, err
	}
	return &EdgeBandingService{ID: uuid.New(), Thickness: *tier, WidthMM: widthMM, HeightMM: heightMM}, nil
}

func validateEdgeBanding(widthMM, heightMM decimal.Decimal, tier *ThicknessTier) error {
	if !widthMM.IsPositive() {
		return pkgerrors.Invalid("width", "width must be positive")
	}
	if !heightMM.IsPositive() {
		return pkgerrors.Invalid("height", "height must be positive")
	}
	if tier == nil {
		return pkgerrors.Invalid("thickness_id", "a thickness must be selected")
	}
	return nil
}
