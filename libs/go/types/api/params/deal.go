package params

import (
	"time"

	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

// RebateInput is one rebate on a deal. Taxable, when set, overrides the
// jurisdiction's rebate-origin default.
type RebateInput struct {
	Name    string                `json:"name"`
	Amount  float64               `json:"amount"`
	Origin  business.RebateOrigin `json:"origin"`
	Taxable *bool                 `json:"taxable,omitempty"`
}

// FeeInput is one fee on a deal. Taxable, when set, overrides the
// jurisdiction's per-fee-code table. Capitalize rolls the fee into the
// financed or leased amount instead of collecting it in cash.
type FeeInput struct {
	Code       string  `json:"code"`
	Name       string  `json:"name,omitempty"`
	Amount     float64 `json:"amount"`
	Taxable    *bool   `json:"taxable,omitempty"`
	Capitalize bool    `json:"capitalize"`
}

// ProductInput is one F&I or accessory product on a deal
type ProductInput struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"` // "service_contract", "gap", "accessory"
	Price           float64 `json:"price"`
	Cost            float64 `json:"cost,omitempty"`
	Taxable         *bool   `json:"taxable,omitempty"`
	FinanceWithDeal bool    `json:"finance_with_deal"`
}

// TradeInInput is the customer's trade vehicle
type TradeInInput struct {
	Allowance float64 `json:"allowance"`
	Payoff    float64 `json:"payoff"`
}

// FinanceTerms are required for finance deals. PaymentFrequency defaults
// to monthly; monthly is the only frequency the amortization supports,
// and anything else is rejected by validation.
type FinanceTerms struct {
	APR              float64 `json:"apr"`
	TermMonths       int     `json:"term_months"`
	PaymentFrequency string  `json:"payment_frequency,omitempty"`
}

// LeaseTerms are required for lease deals. DispositionFee is the
// end-of-term turn-in charge; it is disclosed on the lease result, not
// collected at signing or in the payment.
type LeaseTerms struct {
	TermMonths               int      `json:"term_months"`
	MoneyFactor              float64  `json:"money_factor"`
	ResidualValue            *float64 `json:"residual_value,omitempty"`
	ResidualPercent          *float64 `json:"residual_percent,omitempty"`
	AcquisitionFee           float64  `json:"acquisition_fee"`
	CapitalizeAcquisitionFee bool     `json:"capitalize_acquisition_fee"`
	DispositionFee           float64  `json:"disposition_fee"`
	SecurityDeposit          float64  `json:"security_deposit"`
	WaiveSecurityDeposit     bool     `json:"waive_security_deposit"`
	SignAndDrive             bool     `json:"sign_and_drive"`
	CapReductionAtSigning    bool     `json:"cap_reduction_at_signing"`
	FirstPaymentAtSigning    bool     `json:"first_payment_at_signing"`
}

// DealInput is the raw deal submitted for pricing. RegistrationState,
// when present and different from JurisdictionCode, triggers the
// reciprocity evaluation.
type DealInput struct {
	DealType         business.DealType `json:"deal_type"`
	JurisdictionCode string            `json:"jurisdiction_code"`
	PostalCode       string            `json:"postal_code,omitempty"`

	MSRP         float64 `json:"msrp"`
	InvoicePrice float64 `json:"invoice_price,omitempty"`
	SellingPrice float64 `json:"selling_price"`

	TradeIn  *TradeInInput  `json:"trade_in,omitempty"`
	Rebates  []RebateInput  `json:"rebates,omitempty"`
	Fees     []FeeInput     `json:"fees,omitempty"`
	Products []ProductInput `json:"products,omitempty"`

	CashDown float64 `json:"cash_down"`

	FinanceTerms *FinanceTerms `json:"finance_terms,omitempty"`
	LeaseTerms   *LeaseTerms   `json:"lease_terms,omitempty"`

	RegistrationState string     `json:"registration_state,omitempty"`
	TaxPaidDate       *time.Time `json:"tax_paid_date,omitempty"`
	RegistrationDate  *time.Time `json:"registration_date,omitempty"`
}
