package services

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/dealgrid/dealgrid-api/libs/go/helpers"
	"github.com/dealgrid/dealgrid-api/libs/go/logger"
	"github.com/dealgrid/dealgrid-api/libs/go/types/api/params"
	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

// PolicyProvider is a local interface over the jurisdiction policy store
type PolicyProvider interface {
	GetPolicy(code string) (*business.JurisdictionPolicy, error)
	Version() string
}

// RateResolver is a local interface over the local-rate resolver
type RateResolver interface {
	Resolve(postalCode, stateCode string) business.LocalRateResult
}

// TaxService applies a jurisdiction's policy to an assembled price
// breakdown and produces the tax line-item breakdown. It is a pure
// computation over the active policy snapshot; nothing is cached.
type TaxService struct {
	policies PolicyProvider
	rates    RateResolver
	logger   *zap.Logger
}

// NewTaxService creates a new tax service
func NewTaxService(policies PolicyProvider, rates RateResolver) *TaxService {
	return &TaxService{
		policies: policies,
		rates:    rates,
		logger:   logger.Log,
	}
}

// Calculate computes the tax breakdown for an assembled deal. Unknown
// jurisdiction codes fail closed; no default policy is substituted.
func (s *TaxService) Calculate(p params.TaxCalculationParams) (*business.TaxBreakdown, error) {
	policy, err := s.policies.GetPolicy(p.JurisdictionCode)
	if err != nil {
		return nil, err
	}

	local := business.LocalRateResult{Source: business.RateSourceNone}
	if policy.HasLocalTax {
		local = s.rates.Resolve(p.PostalCode, policy.Code)
	}
	combinedRate := policy.CombinedRate(local.Rate)

	result := &business.TaxBreakdown{
		JurisdictionCode: policy.Code,
		DealType:         p.DealType,
		StateRate:        policy.StateRate,
		LocalRate:        local.Rate,
		CombinedRate:     combinedRate,
		CalculatedAt:     time.Now(),
		AuditTrail: business.TaxAuditTrail{
			RulesVersion:    s.policies.Version(),
			LocalRateSource: local.Source,
			AppliedRules:    []string{},
		},
	}

	s.logger.Info("calculating tax",
		zap.String("jurisdiction", policy.Code),
		zap.String("deal_type", string(p.DealType)),
		zap.Float64("selling_price", p.Breakdown.SellingPrice),
		zap.Float64("combined_rate", combinedRate),
		zap.String("local_rate_source", string(local.Source)))

	if p.DealType == business.LeaseDeal {
		s.calculateLeaseTax(p.Breakdown, policy, result)
	} else {
		s.calculateRetailTax(p.Breakdown, policy, result)
	}

	return result, nil
}

// calculateRetailTax handles cash and finance deals: a vehicle base net
// of trade credit, plus taxable rebates, fees and products, at the
// combined rate.
func (s *TaxService) calculateRetailTax(breakdown business.PriceBreakdown, policy *business.JurisdictionPolicy, result *business.TaxBreakdown) {
	tradeCredit := s.retailTradeCredit(breakdown, policy, result)

	// Trade credit never drives the base below zero
	vehicleBase := breakdown.SellingPrice - tradeCredit
	if vehicleBase < 0 {
		vehicleBase = 0
	}

	// Taxable rebates increase the base: tax is computed pre-rebate in
	// jurisdictions that tax them. Non-taxable rebates never touch it.
	if breakdown.TaxableRebates > 0 {
		vehicleBase += breakdown.TaxableRebates
		result.AuditTrail.AppliedRules = append(result.AuditTrail.AppliedRules, "TAXABLE_REBATES")
	}

	feeBase := breakdown.TaxableFees

	productBase := breakdown.TaxableProducts
	if policy.TaxNegativeEquity && breakdown.NetTrade < 0 {
		productBase += -breakdown.NetTrade
		result.AuditTrail.AppliedRules = append(result.AuditTrail.AppliedRules, "TAX_NEGATIVE_EQUITY")
	}

	rate := result.CombinedRate
	result.TaxableBase = vehicleBase + feeBase + productBase
	result.TotalTax = helpers.RoundToCents(result.TaxableBase * rate)

	result.LineItems = appendLineItem(result.LineItems, "vehicle", "Vehicle sales tax", rate, vehicleBase)
	result.LineItems = appendLineItem(result.LineItems, "fees", "Taxable fees", rate, feeBase)
	result.LineItems = appendLineItem(result.LineItems, "products", "Taxable products and add-ons", rate, productBase)

	s.reconcileLineItems(result)
}

// calculateLeaseTax applies the jurisdiction's lease method. Upfront
// components are computed here; for payment-stream methods the monthly
// tax rate is reported and the payment calculator applies it to each
// base payment.
func (s *TaxService) calculateLeaseTax(breakdown business.PriceBreakdown, policy *business.JurisdictionPolicy, result *business.TaxBreakdown) {
	rules := policy.Lease
	rate := result.CombinedRate
	result.LeaseMethod = rules.Method

	tradeCredit := 0.0
	if rules.TradeCredit == business.LeaseTradeCreditFull && breakdown.NetTrade > 0 {
		tradeCredit = breakdown.NetTrade
	}
	capReduction := tradeCredit + breakdown.TotalRebates + breakdown.CashDown

	// Vehicle-level base taxed at signing, per method
	var vehicleBase float64
	switch rules.Method {
	case business.LeaseTaxMonthly, business.LeaseTaxHybrid:
		result.MonthlyTaxRate = rate
		result.AuditTrail.Notes = append(result.AuditTrail.Notes,
			"monthly payments taxed at combined rate; applied by the payment calculator")
	case business.LeaseTaxFullUpfront:
		vehicleBase = breakdown.SellingPrice + breakdown.FinancedProducts
	case business.LeaseTaxNetCapCost:
		vehicleBase = breakdown.SellingPrice + breakdown.FinancedProducts - capReduction
	case business.LeaseTaxReducedBase:
		vehicleBase = breakdown.SellingPrice - tradeCredit - breakdown.TotalRebates
	}
	if vehicleBase < 0 {
		vehicleBase = 0
	}
	if vehicleBase > 0 && rules.TaxRebates && breakdown.TaxableRebates > 0 && rules.Method != business.LeaseTaxReducedBase {
		vehicleBase += breakdown.TaxableRebates
		result.AuditTrail.AppliedRules = append(result.AuditTrail.AppliedRules, "LEASE_TAXABLE_REBATES")
	}

	// Cap-cost reduction taxed as a notional first payment when the
	// policy says so. Hybrid is monthly-plus-upfront-reduction by
	// construction, so the reduction component does not depend on the
	// flag there.
	taxReduction := rules.TaxCapReduction || rules.Method == business.LeaseTaxHybrid
	var reductionBase float64
	if taxReduction && capReduction > 0 && rules.Method != business.LeaseTaxNetCapCost {
		reductionBase = capReduction
		result.AuditTrail.AppliedRules = append(result.AuditTrail.AppliedRules, "TAX_CAP_REDUCTION")
	}

	var feeBase float64
	if rules.TaxFeesUpfront && breakdown.TaxableFees > 0 {
		feeBase = breakdown.TaxableFees
		result.AuditTrail.AppliedRules = append(result.AuditTrail.AppliedRules, "LEASE_FEES_UPFRONT")
	}

	var negEquityBase float64
	if rules.TaxNegativeEquity && breakdown.NetTrade < 0 {
		negEquityBase = -breakdown.NetTrade
		result.AuditTrail.AppliedRules = append(result.AuditTrail.AppliedRules, "TAX_NEGATIVE_EQUITY")
	}

	result.TaxableBase = vehicleBase + reductionBase + feeBase + negEquityBase
	result.UpfrontTax = helpers.RoundToCents(result.TaxableBase * rate)
	result.TotalTax = result.UpfrontTax

	result.LineItems = appendLineItem(result.LineItems, "vehicle", fmt.Sprintf("Lease base (%s)", rules.Method), rate, vehicleBase)
	result.LineItems = appendLineItem(result.LineItems, "cap_reduction", "Capitalized cost reduction", rate, reductionBase)
	result.LineItems = appendLineItem(result.LineItems, "fees", "Taxable fees collected upfront", rate, feeBase)
	result.LineItems = appendLineItem(result.LineItems, "products", "Negative equity", rate, negEquityBase)

	s.reconcileLineItems(result)
}

// retailTradeCredit applies the jurisdiction's trade-in credit policy.
// FULL is clamped at the selling price; CAPPED and PARTIAL are clamped
// at the configured cap.
func (s *TaxService) retailTradeCredit(breakdown business.PriceBreakdown, policy *business.JurisdictionPolicy, result *business.TaxBreakdown) float64 {
	if breakdown.TradeAllowance <= 0 {
		return 0
	}

	switch policy.TradeCredit {
	case business.TradeCreditFull:
		result.AuditTrail.AppliedRules = append(result.AuditTrail.AppliedRules, "TRADE_CREDIT_FULL")
		return math.Min(breakdown.TradeAllowance, breakdown.SellingPrice)
	case business.TradeCreditCapped, business.TradeCreditPartial:
		result.AuditTrail.AppliedRules = append(result.AuditTrail.AppliedRules,
			fmt.Sprintf("TRADE_CREDIT_CAPPED_%.0f", policy.TradeCreditCap))
		return math.Min(breakdown.TradeAllowance, policy.TradeCreditCap)
	case business.TradeCreditNone:
		result.AuditTrail.AppliedRules = append(result.AuditTrail.AppliedRules, "TRADE_CREDIT_NONE")
		return 0
	default:
		return 0
	}
}

// reconcileLineItems checks that independently rounded components sum to
// within one cent of the total. The total is authoritative; the check is
// reconciliation, not re-derivation.
func (s *TaxService) reconcileLineItems(result *business.TaxBreakdown) {
	var sum float64
	for _, item := range result.LineItems {
		sum += item.TaxAmount
	}
	target := result.TotalTax
	if result.UpfrontTax > 0 {
		target = result.UpfrontTax
	}
	diff := math.Abs(helpers.RoundToCents(sum) - target)
	if diff > 0.01 {
		s.logger.Warn("tax line items do not reconcile with total",
			zap.String("jurisdiction", result.JurisdictionCode),
			zap.Float64("line_item_sum", sum),
			zap.Float64("total", target))
		result.AuditTrail.Notes = append(result.AuditTrail.Notes,
			fmt.Sprintf("line items differ from total by %s", helpers.FormatUSD(diff)))
	} else if diff > 0 {
		result.AuditTrail.Notes = append(result.AuditTrail.Notes,
			"line item rounding differs from total by at most one cent")
	}
}

func appendLineItem(items []business.TaxLineItem, category, description string, rate, base float64) []business.TaxLineItem {
	if base <= 0 {
		return items
	}
	return append(items, business.TaxLineItem{
		Category:      category,
		Description:   description,
		Rate:          rate,
		TaxableAmount: base,
		TaxAmount:     helpers.RoundToCents(base * rate),
	})
}
