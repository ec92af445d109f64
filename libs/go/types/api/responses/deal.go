package responses

import (
	"time"

	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

// HealthResponse is the health-check payload
type HealthResponse struct {
	Status string `json:"status"`
}

// DealResponse wraps a computed deal for the API layer
type DealResponse struct {
	Deal business.DealResult `json:"deal"`
}

// ValidationErrorResponse carries the full violation list back to the
// caller so every problem can be displayed at once
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

// JurisdictionResponse describes one loaded jurisdiction policy
type JurisdictionResponse struct {
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	StateRate        float64 `json:"state_rate"`
	HasLocalTax      bool    `json:"has_local_tax"`
	AverageLocalRate float64 `json:"average_local_rate"`
	VehicleTaxScheme string  `json:"vehicle_tax_scheme"`
	TradeCredit      string  `json:"trade_credit"`
	LeaseMethod      string  `json:"lease_method"`
}

// PaymentMatrixRow is one term's payment scenario
type PaymentMatrixRow struct {
	TermMonths     int     `json:"term_months"`
	APR            float64 `json:"apr"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalInterest  float64 `json:"total_interest"`
	TotalCost      float64 `json:"total_cost"`
}

// PaymentMatrix is a comparison table of payment scenarios across terms
type PaymentMatrix struct {
	AmountFinanced float64            `json:"amount_financed"`
	BaseAPR        float64            `json:"base_apr"`
	Rows           []PaymentMatrixRow `json:"rows"`
	GeneratedAt    time.Time          `json:"generated_at"`
}
