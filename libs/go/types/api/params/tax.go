package params

import (
	"time"

	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

// TaxCalculationParams contains parameters for a standalone tax calculation
type TaxCalculationParams struct {
	Breakdown        business.PriceBreakdown
	JurisdictionCode string
	PostalCode       string
	DealType         business.DealType
}

// ReciprocityParams contains parameters for a cross-jurisdiction credit
// evaluation. SellingStateTax and TaxPaidAtSale come from the already
// computed primary tax result.
type ReciprocityParams struct {
	HomeState        string
	SellingState     string
	DealType         business.DealType
	TaxableBase      float64
	SellingStateTax  float64
	TaxPaidAtSale    float64
	TaxPaidDate      *time.Time
	RegistrationDate *time.Time
}

// MatrixParams contains parameters for payment-matrix generation. Terms
// defaults to {36, 48, 60, 72, 84} when empty.
type MatrixParams struct {
	AmountFinanced float64
	BaseAPR        float64
	Terms          []int
}
