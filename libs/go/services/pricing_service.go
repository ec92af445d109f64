package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dealgrid/dealgrid-api/libs/go/constants"
	"github.com/dealgrid/dealgrid-api/libs/go/helpers"
	"github.com/dealgrid/dealgrid-api/libs/go/logger"
	"github.com/dealgrid/dealgrid-api/libs/go/types/api/params"
	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

// PricingService assembles raw deal inputs into a PriceBreakdown. Every
// derived figure is the arithmetic sum of the corresponding input list;
// the only resolution logic is the documented taxability order:
// explicit override, then per-code/origin policy table, then category flag.
type PricingService struct {
	logger *zap.Logger
}

// NewPricingService creates a new pricing service
func NewPricingService() *PricingService {
	return &PricingService{logger: logger.Log}
}

// AssembleBreakdown computes the priced view of a deal under one
// jurisdiction's taxability rules. It performs no tax-rate lookups.
func (s *PricingService) AssembleBreakdown(input params.DealInput, policy *business.JurisdictionPolicy) (*business.PriceBreakdown, error) {
	breakdown := &business.PriceBreakdown{
		SellingPrice: input.SellingPrice,
		MSRP:         input.MSRP,
		InvoicePrice: input.InvoicePrice,
		CashDown:     input.CashDown,
	}

	if input.TradeIn != nil {
		breakdown.TradeAllowance = input.TradeIn.Allowance
		breakdown.TradePayoff = input.TradeIn.Payoff
		// Negative equity shows up here as a negative net trade
		breakdown.NetTrade = input.TradeIn.Allowance - input.TradeIn.Payoff
	}

	for _, rebate := range input.Rebates {
		breakdown.TotalRebates += rebate.Amount
		if s.rebateTaxable(rebate, input.DealType, policy) {
			breakdown.TaxableRebates += rebate.Amount
		} else {
			breakdown.NonTaxableRebates += rebate.Amount
		}
	}

	for _, fee := range input.Fees {
		breakdown.TotalFees += fee.Amount
		if fee.Capitalize {
			breakdown.CapitalizedFees += fee.Amount
		}
		taxablePortion, err := s.taxableFeePortion(fee, input.DealType, policy)
		if err != nil {
			return nil, err
		}
		breakdown.TaxableFees += taxablePortion
		breakdown.NonTaxableFees += fee.Amount - taxablePortion
	}

	for _, product := range input.Products {
		breakdown.TotalProducts += product.Price
		taxable, err := s.productTaxable(product, policy)
		if err != nil {
			return nil, err
		}
		if taxable {
			breakdown.TaxableProducts += product.Price
		}
		if product.FinanceWithDeal {
			breakdown.FinancedProducts += product.Price
		} else {
			breakdown.CashProducts += product.Price
		}
	}

	s.logger.Debug("assembled price breakdown",
		zap.String("jurisdiction", policy.Code),
		zap.String("deal_type", string(input.DealType)),
		zap.Float64("selling_price", breakdown.SellingPrice),
		zap.Float64("net_trade", breakdown.NetTrade),
		zap.Float64("taxable_fees", breakdown.TaxableFees),
		zap.Float64("taxable_rebates", breakdown.TaxableRebates))

	return breakdown, nil
}

// rebateTaxable resolves rebate taxability: explicit override first, then
// the policy default for the rebate's origin (on leases, the lease-level
// rebate flag).
func (s *PricingService) rebateTaxable(rebate params.RebateInput, dealType business.DealType, policy *business.JurisdictionPolicy) bool {
	if rebate.Taxable != nil {
		return *rebate.Taxable
	}
	if dealType == business.LeaseDeal {
		return policy.Lease.TaxRebates
	}
	return policy.RebateTaxability[rebate.Origin]
}

// taxableFeePortion resolves fee taxability and returns the taxable part
// of the fee amount. Doc fees honor the policy's doc-fee cap: only the
// portion up to the cap is taxable when a cap is configured.
func (s *PricingService) taxableFeePortion(fee params.FeeInput, dealType business.DealType, policy *business.JurisdictionPolicy) (float64, error) {
	if fee.Taxable != nil {
		if *fee.Taxable {
			return fee.Amount, nil
		}
		return 0, nil
	}

	if fee.Code == constants.DocFeeCode {
		return s.taxableDocFeePortion(fee.Amount, dealType, policy), nil
	}

	table := policy.FeeTaxability
	if dealType == business.LeaseDeal && policy.Lease.FeeTaxability != nil {
		table = policy.Lease.FeeTaxability
	}
	if taxable, ok := table[fee.Code]; ok {
		if taxable {
			return fee.Amount, nil
		}
		return 0, nil
	}

	if policy.DefaultFeeTaxable != nil {
		if *policy.DefaultFeeTaxable {
			return fee.Amount, nil
		}
		return 0, nil
	}

	// No table entry and no category default is a configuration defect,
	// not something to silently paper over.
	return 0, &business.RuleConfigError{
		Detail: fmt.Sprintf("fee code %q has no taxability entry and no default in jurisdiction %s", fee.Code, policy.Code),
	}
}

func (s *PricingService) taxableDocFeePortion(amount float64, dealType business.DealType, policy *business.JurisdictionPolicy) float64 {
	if dealType == business.LeaseDeal {
		if policy.Lease.DocFee != business.DocFeeAlways {
			return 0
		}
	} else if !policy.DocFeeTaxable {
		return 0
	}
	if policy.DocFeeCap > 0 && amount > policy.DocFeeCap {
		return helpers.RoundToCents(policy.DocFeeCap)
	}
	return amount
}

// productTaxable resolves F&I/accessory taxability: explicit override,
// then the policy's category flag.
func (s *PricingService) productTaxable(product params.ProductInput, policy *business.JurisdictionPolicy) (bool, error) {
	if product.Taxable != nil {
		return *product.Taxable, nil
	}
	switch product.Category {
	case constants.ServiceContractCategory:
		return policy.TaxServiceContracts, nil
	case constants.GAPCategory:
		return policy.TaxGAP, nil
	case constants.AccessoryCategory:
		return policy.TaxAccessories, nil
	default:
		return false, &business.RuleConfigError{
			Detail: fmt.Sprintf("product %q has unknown category %q and no taxable override", product.Name, product.Category),
		}
	}
}
