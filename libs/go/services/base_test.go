package services_test

import (
	"github.com/dealgrid/dealgrid-api/libs/go/logger"
	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

func init() {
	logger.InitLogger("test")
}

// stubPolicyProvider serves fixed policies without a dataset load
type stubPolicyProvider struct {
	policies map[string]*business.JurisdictionPolicy
}

func (s *stubPolicyProvider) GetPolicy(code string) (*business.JurisdictionPolicy, error) {
	if p, ok := s.policies[code]; ok {
		return p, nil
	}
	return nil, &business.UnknownJurisdictionError{Code: code}
}

func (s *stubPolicyProvider) Version() string { return "test.1" }

// stubRateResolver serves fixed local rates
type stubRateResolver struct {
	exact    map[string]float64
	averages map[string]float64
}

func (s *stubRateResolver) Resolve(postalCode, stateCode string) business.LocalRateResult {
	if rate, ok := s.exact[postalCode]; ok {
		return business.LocalRateResult{Rate: rate, Source: business.RateSourceExact}
	}
	if avg, ok := s.averages[stateCode]; ok {
		return business.LocalRateResult{Rate: avg, Source: business.RateSourceAverage}
	}
	return business.LocalRateResult{Source: business.RateSourceNone}
}

func boolPtr(b bool) *bool { return &b }

// cappedStatePolicy is a 6% state-only jurisdiction with an $11,000
// trade-in credit cap, the shape used across the tax examples
func cappedStatePolicy() *business.JurisdictionPolicy {
	return &business.JurisdictionPolicy{
		Code:             "MI",
		Name:             "Michigan",
		StateRate:        0.06,
		VehicleTaxScheme: business.StateOnlyScheme,
		TradeCredit:      business.TradeCreditCapped,
		TradeCreditCap:   11000,
		RebateTaxability: map[business.RebateOrigin]bool{
			business.ManufacturerRebate: false,
			business.DealerRebate:       false,
		},
		DocFeeTaxable:     true,
		DocFeeCap:         260,
		FeeTaxability:     map[string]bool{"title": false, "registration": false},
		DefaultFeeTaxable: boolPtr(false),
		TaxAccessories:    true,
		Lease: business.LeaseRules{
			Method:          business.LeaseTaxMonthly,
			TaxCapReduction: true,
			DocFee:          business.DocFeeAlways,
			TradeCredit:     business.LeaseTradeCreditFull,
			FeeTaxability:   map[string]bool{"title": false},
		},
		Reciprocity: business.ReciprocityRules{
			Enabled:               true,
			Scope:                 business.ReciprocityBoth,
			HomeStateBehavior:     business.HomeStateCreditUpToRate,
			RequireProofOfPayment: true,
			ProofWindowDays:       90,
			CreditBasis:           business.CreditBasisTaxPaid,
			CapAtStateRate:        true,
		},
	}
}

// localSchemePolicy is a state-plus-local jurisdiction that taxes
// manufacturer rebates and negative equity
func localSchemePolicy() *business.JurisdictionPolicy {
	return &business.JurisdictionPolicy{
		Code:             "IL",
		Name:             "Illinois",
		StateRate:        0.0625,
		HasLocalTax:      true,
		AverageLocalRate: 0.0257,
		VehicleTaxScheme: business.StatePlusLocalScheme,
		TradeCredit:      business.TradeCreditFull,
		RebateTaxability: map[business.RebateOrigin]bool{
			business.ManufacturerRebate: true,
			business.DealerRebate:       false,
		},
		DocFeeTaxable:     true,
		FeeTaxability:     map[string]bool{"title": false, "registration": false},
		DefaultFeeTaxable: boolPtr(false),
		TaxAccessories:    true,
		TaxNegativeEquity: true,
		Lease: business.LeaseRules{
			Method:          business.LeaseTaxHybrid,
			TaxCapReduction: true,
			TaxRebates:      true,
			DocFee:          business.DocFeeAlways,
			TradeCredit:     business.LeaseTradeCreditNone,
			FeeTaxability:   map[string]bool{"title": false},
		},
	}
}

// zeroRatePolicy is a jurisdiction with no sales tax at all
func zeroRatePolicy() *business.JurisdictionPolicy {
	return &business.JurisdictionPolicy{
		Code:             "OR",
		Name:             "Oregon",
		StateRate:        0,
		VehicleTaxScheme: business.StateOnlyScheme,
		TradeCredit:      business.TradeCreditFull,
		RebateTaxability: map[business.RebateOrigin]bool{
			business.ManufacturerRebate: false,
			business.DealerRebate:       false,
		},
		FeeTaxability:     map[string]bool{},
		DefaultFeeTaxable: boolPtr(false),
		Lease: business.LeaseRules{
			Method:      business.LeaseTaxMonthly,
			DocFee:      business.DocFeeNever,
			TradeCredit: business.LeaseTradeCreditFull,
		},
	}
}

// upfrontLeasePolicy taxes the full capitalized cost at signing
func upfrontLeasePolicy() *business.JurisdictionPolicy {
	p := cappedStatePolicy()
	p.Code = "TX"
	p.Name = "Texas"
	p.StateRate = 0.0625
	p.TradeCredit = business.TradeCreditFull
	p.TradeCreditCap = 0
	p.Lease = business.LeaseRules{
		Method:         business.LeaseTaxFullUpfront,
		DocFee:         business.DocFeeAlways,
		TradeCredit:    business.LeaseTradeCreditNone,
		FeeTaxability:  map[string]bool{"title": false},
		TaxFeesUpfront: true,
	}
	return p
}

func testProviders() (*stubPolicyProvider, *stubRateResolver) {
	provider := &stubPolicyProvider{
		policies: map[string]*business.JurisdictionPolicy{
			"MI": cappedStatePolicy(),
			"IL": localSchemePolicy(),
			"OR": zeroRatePolicy(),
			"TX": upfrontLeasePolicy(),
		},
	}
	rates := &stubRateResolver{
		exact:    map[string]float64{"60601": 0.04},
		averages: map[string]float64{"IL": 0.0257},
	}
	return provider, rates
}
