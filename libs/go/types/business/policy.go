package business

import "time"

// TradeCreditPolicy controls how much of a trade-in allowance reduces the
// taxable base on a retail sale.
type TradeCreditPolicy string

const (
	TradeCreditFull    TradeCreditPolicy = "full"
	TradeCreditCapped  TradeCreditPolicy = "capped"
	TradeCreditPartial TradeCreditPolicy = "partial"
	TradeCreditNone    TradeCreditPolicy = "none"
)

// RebateOrigin identifies who funds a rebate
type RebateOrigin string

const (
	ManufacturerRebate RebateOrigin = "manufacturer"
	DealerRebate       RebateOrigin = "dealer"
)

// VehicleTaxScheme selects which rate components apply to vehicle sales
type VehicleTaxScheme string

const (
	StateOnlyScheme      VehicleTaxScheme = "state_only"
	StatePlusLocalScheme VehicleTaxScheme = "state_plus_local"
)

// LeaseTaxMethod selects how a jurisdiction taxes leases
type LeaseTaxMethod string

const (
	LeaseTaxMonthly     LeaseTaxMethod = "monthly"
	LeaseTaxFullUpfront LeaseTaxMethod = "full_upfront"
	LeaseTaxHybrid      LeaseTaxMethod = "hybrid"
	LeaseTaxNetCapCost  LeaseTaxMethod = "net_cap_cost"
	LeaseTaxReducedBase LeaseTaxMethod = "reduced_base"
)

// DocFeeLeaseRule controls doc-fee taxability on leases
type DocFeeLeaseRule string

const (
	DocFeeNever  DocFeeLeaseRule = "never"
	DocFeeAlways DocFeeLeaseRule = "always"
)

// LeaseTradeCredit controls trade-in credit availability on leases
type LeaseTradeCredit string

const (
	LeaseTradeCreditFull LeaseTradeCredit = "full"
	LeaseTradeCreditNone LeaseTradeCredit = "none"
)

// ReciprocityScope limits which deal types reciprocity applies to
type ReciprocityScope string

const (
	ReciprocityRetailOnly ReciprocityScope = "retail_only"
	ReciprocityLeaseOnly  ReciprocityScope = "lease_only"
	ReciprocityBoth       ReciprocityScope = "both"
)

// HomeStateBehavior controls how the registration state treats tax paid at sale
type HomeStateBehavior string

const (
	HomeStateNone           HomeStateBehavior = "none"
	HomeStateCreditUpToRate HomeStateBehavior = "credit_up_to_state_rate"
	HomeStateFullCredit     HomeStateBehavior = "full_credit"
)

// ReciprocityCreditBasis selects what the credit is measured against
type ReciprocityCreditBasis string

const (
	CreditBasisTaxPaid ReciprocityCreditBasis = "tax_paid"
	CreditBasisRate    ReciprocityCreditBasis = "rate"
)

// LeaseRules holds the lease-specific taxation rules for a jurisdiction
type LeaseRules struct {
	Method            LeaseTaxMethod   `json:"method"`
	TaxCapReduction   bool             `json:"tax_cap_reduction"`
	TaxRebates        bool             `json:"tax_rebates"`
	DocFee            DocFeeLeaseRule  `json:"doc_fee"`
	TradeCredit       LeaseTradeCredit `json:"trade_credit"`
	TaxNegativeEquity bool             `json:"tax_negative_equity"`
	FeeTaxability     map[string]bool  `json:"fee_taxability"`
	TaxFeesUpfront    bool             `json:"tax_fees_upfront"`
}

// ReciprocityRules holds a jurisdiction's cross-state credit rules. The
// proof-of-payment window is per jurisdiction; there is no uniform
// statutory window across states.
type ReciprocityRules struct {
	Enabled               bool                   `json:"enabled"`
	Scope                 ReciprocityScope       `json:"scope"`
	HomeStateBehavior     HomeStateBehavior      `json:"home_state_behavior"`
	RequireProofOfPayment bool                   `json:"require_proof_of_payment"`
	ProofWindowDays       int                    `json:"proof_window_days"`
	CreditBasis           ReciprocityCreditBasis `json:"credit_basis"`
	CapAtStateRate        bool                   `json:"cap_at_state_rate"`
	LeaseException        bool                   `json:"lease_exception"`
	ExemptStates          []string               `json:"exempt_states,omitempty"`
	NonReciprocalStates   []string               `json:"non_reciprocal_states,omitempty"`
}

// JurisdictionPolicy is the complete, immutable rule set for one taxing
// jurisdiction. Policies are never mutated after load; dataset reloads
// replace the whole snapshot.
type JurisdictionPolicy struct {
	Code                string                `json:"code"`
	Name                string                `json:"name"`
	StateRate           float64               `json:"state_rate"`
	HasLocalTax         bool                  `json:"has_local_tax"`
	AverageLocalRate    float64               `json:"average_local_rate"`
	VehicleTaxScheme    VehicleTaxScheme      `json:"vehicle_tax_scheme"`
	TradeCredit         TradeCreditPolicy     `json:"trade_credit"`
	TradeCreditCap      float64               `json:"trade_credit_cap,omitempty"`
	RebateTaxability    map[RebateOrigin]bool `json:"rebate_taxability"`
	DocFeeTaxable       bool                  `json:"doc_fee_taxable"`
	DocFeeCap           float64               `json:"doc_fee_cap,omitempty"`
	FeeTaxability       map[string]bool       `json:"fee_taxability"`
	DefaultFeeTaxable   *bool                 `json:"default_fee_taxable,omitempty"`
	TaxAccessories      bool                  `json:"tax_accessories"`
	TaxNegativeEquity   bool                  `json:"tax_negative_equity"`
	TaxServiceContracts bool                  `json:"tax_service_contracts"`
	TaxGAP              bool                  `json:"tax_gap"`
	Lease               LeaseRules            `json:"lease"`
	Reciprocity         ReciprocityRules      `json:"reciprocity"`
	EffectiveDate       time.Time             `json:"effective_date"`
}

// CombinedRate returns the rate applied to vehicle sales given the resolved
// local rate for the buyer's location.
func (p *JurisdictionPolicy) CombinedRate(localRate float64) float64 {
	if p.VehicleTaxScheme == StatePlusLocalScheme {
		return p.StateRate + localRate
	}
	return p.StateRate
}
