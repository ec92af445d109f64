package business

import (
	"time"

	"github.com/google/uuid"
)

// DealType identifies how the vehicle transaction is structured
type DealType string

const (
	CashDeal    DealType = "cash"
	FinanceDeal DealType = "finance"
	LeaseDeal   DealType = "lease"
)

// PriceBreakdown is the assembled view of a deal's raw inputs: every
// figure is the arithmetic sum of the corresponding input list, split by
// taxability and financeability. It carries no tax amounts itself.
type PriceBreakdown struct {
	SellingPrice float64 `json:"selling_price"`
	MSRP         float64 `json:"msrp"`
	InvoicePrice float64 `json:"invoice_price,omitempty"`

	TradeAllowance float64 `json:"trade_allowance"`
	TradePayoff    float64 `json:"trade_payoff"`
	// NetTrade may be negative, representing negative equity
	NetTrade float64 `json:"net_trade"`

	TotalRebates      float64 `json:"total_rebates"`
	TaxableRebates    float64 `json:"taxable_rebates"`
	NonTaxableRebates float64 `json:"non_taxable_rebates"`

	TotalFees        float64 `json:"total_fees"`
	TaxableFees      float64 `json:"taxable_fees"`
	NonTaxableFees   float64 `json:"non_taxable_fees"`
	CapitalizedFees  float64 `json:"capitalized_fees"`

	TotalProducts    float64 `json:"total_products"`
	TaxableProducts  float64 `json:"taxable_products"`
	FinancedProducts float64 `json:"financed_products"`
	CashProducts     float64 `json:"cash_products"`

	CashDown float64 `json:"cash_down"`
}

// TaxLineItem is one component of a tax breakdown
type TaxLineItem struct {
	Category      string  `json:"category"` // "vehicle", "fees", "products", "cap_reduction", "upfront"
	Description   string  `json:"description"`
	Rate          float64 `json:"rate"`
	TaxableAmount float64 `json:"taxable_amount"`
	TaxAmount     float64 `json:"tax_amount"`
}

// TaxAuditTrail contains audit information for tax calculations
type TaxAuditTrail struct {
	RulesVersion    string     `json:"rules_version"`
	LocalRateSource RateSource `json:"local_rate_source"`
	AppliedRules    []string   `json:"applied_rules"`
	Notes           []string   `json:"notes,omitempty"`
}

// TaxBreakdown is the full result of a tax computation. For lease deals
// taxed on the payment stream, MonthlyTaxRate is the rate the payment
// calculator applies to each base payment and UpfrontTax is the portion
// collected at signing.
type TaxBreakdown struct {
	JurisdictionCode string         `json:"jurisdiction_code"`
	DealType         DealType       `json:"deal_type"`
	TaxableBase      float64        `json:"taxable_base"`
	StateRate        float64        `json:"state_rate"`
	LocalRate        float64        `json:"local_rate"`
	CombinedRate     float64        `json:"combined_rate"`
	TotalTax         float64        `json:"total_tax"`
	UpfrontTax       float64        `json:"upfront_tax,omitempty"`
	MonthlyTaxRate   float64        `json:"monthly_tax_rate,omitempty"`
	LeaseMethod      LeaseTaxMethod `json:"lease_method,omitempty"`
	LineItems        []TaxLineItem  `json:"line_items"`
	AuditTrail       TaxAuditTrail  `json:"audit_trail"`
	CalculatedAt     time.Time      `json:"calculated_at"`
}

// ReciprocityOutcome is the result of a cross-jurisdiction credit
// evaluation. It never replaces the primary tax result; the caller
// composes the two explicitly.
type ReciprocityOutcome struct {
	HomeState       string   `json:"home_state"`
	SellingState    string   `json:"selling_state"`
	HomeStateTax    float64  `json:"home_state_tax"`
	SellingStateTax float64  `json:"selling_state_tax"`
	TaxPaidAtSale   float64  `json:"tax_paid_at_sale"`
	CreditGranted   float64  `json:"credit_granted"`
	TaxOwed         float64  `json:"tax_owed"`
	Exempt          bool     `json:"exempt"`
	NonReciprocal   bool     `json:"non_reciprocal"`
	ProofExpired    bool     `json:"proof_expired"`
	Notes           []string `json:"notes,omitempty"`
}

// AmortizationEntry is one period of a fixed-rate amortization schedule
type AmortizationEntry struct {
	Period    int     `json:"period"`
	Payment   float64 `json:"payment"`
	Interest  float64 `json:"interest"`
	Principal float64 `json:"principal"`
	Balance   float64 `json:"balance"`
}

// CashResult holds the totals for a cash deal
type CashResult struct {
	TotalDue   float64 `json:"total_due"`
	BalanceDue float64 `json:"balance_due"`
}

// FinanceResult holds the computed installment terms for a financed deal
type FinanceResult struct {
	AmountFinanced  float64             `json:"amount_financed"`
	APR             float64             `json:"apr"`
	TermMonths      int                 `json:"term_months"`
	MonthlyPayment  float64             `json:"monthly_payment"`
	TotalOfPayments float64             `json:"total_of_payments"`
	TotalInterest   float64             `json:"total_interest"`
	Schedule        []AmortizationEntry `json:"schedule,omitempty"`
}

// LeaseResult holds the computed lease terms. DispositionFee is the
// disclosed end-of-term charge; it is not part of the payment or the
// due-at-signing figure.
type LeaseResult struct {
	GrossCapCost     float64 `json:"gross_cap_cost"`
	CapCostReduction float64 `json:"cap_cost_reduction"`
	AdjustedCapCost  float64 `json:"adjusted_cap_cost"`
	Residual         float64 `json:"residual"`
	MoneyFactor      float64 `json:"money_factor"`
	TermMonths       int     `json:"term_months"`
	Depreciation     float64 `json:"depreciation"`
	RentCharge       float64 `json:"rent_charge"`
	BasePayment      float64 `json:"base_payment"`
	MonthlyTax       float64 `json:"monthly_tax"`
	TotalMonthly     float64 `json:"total_monthly"`
	DueAtSigning     float64 `json:"due_at_signing"`
	DispositionFee   float64 `json:"disposition_fee,omitempty"`
}

// PaymentResult is the deal-type-specific payment computation. Exactly
// one of Cash, Finance or Lease is set, matching DealType.
type PaymentResult struct {
	DealType DealType       `json:"deal_type"`
	Cash     *CashResult    `json:"cash,omitempty"`
	Finance  *FinanceResult `json:"finance,omitempty"`
	Lease    *LeaseResult   `json:"lease,omitempty"`
}

// DealResult is the complete priced deal: breakdown, tax, payment and,
// when the buyer registers out of state, the reciprocity outcome.
// Results are derived per request and never cached against mutable input.
type DealResult struct {
	ID          uuid.UUID           `json:"id"`
	Breakdown   PriceBreakdown      `json:"breakdown"`
	Tax         TaxBreakdown        `json:"tax"`
	Payment     PaymentResult       `json:"payment"`
	Reciprocity *ReciprocityOutcome `json:"reciprocity,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}
