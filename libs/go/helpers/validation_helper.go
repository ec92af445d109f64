package helpers

import (
	"fmt"

	"github.com/dealgrid/dealgrid-api/libs/go/types/api/params"
	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

// Validation bounds for deal inputs. Violations are collected into a
// single list so callers can present all of them at once.
const (
	MaxAPR             = 99.9
	MinFinanceTerm     = 12
	MaxFinanceTerm     = 96
	MaxMoneyFactor     = 0.01
	MinLeaseTerm       = 12
	MaxLeaseTerm       = 60
	MinResidualPercent = 20.0
	MaxResidualPercent = 90.0

	// MonthlyFrequency is the only payment frequency the amortization
	// supports
	MonthlyFrequency = "monthly"
)

// EnsureRequiredTerms checks the structural contract between deal type
// and terms. A finance deal without finance terms (or a lease deal
// without lease terms) is a caller-contract defect, surfaced as a fatal
// MissingTermsError rather than a validation entry.
func EnsureRequiredTerms(input params.DealInput) error {
	switch input.DealType {
	case business.FinanceDeal:
		if input.FinanceTerms == nil {
			return &business.MissingTermsError{DealType: business.FinanceDeal}
		}
	case business.LeaseDeal:
		if input.LeaseTerms == nil {
			return &business.MissingTermsError{DealType: business.LeaseDeal}
		}
	case business.CashDeal:
		// no terms required
	default:
		return &business.RuleConfigError{Detail: fmt.Sprintf("unsupported deal type %q", input.DealType)}
	}
	return nil
}

// ValidateDealInput checks value bounds and returns every violation
// found. Structural problems (missing terms, unknown deal type) are not
// reported here; see EnsureRequiredTerms.
func ValidateDealInput(input params.DealInput) business.ValidationErrors {
	var errs business.ValidationErrors

	if input.SellingPrice <= 0 {
		errs = append(errs, "selling price must be greater than zero")
	}
	if input.MSRP <= 0 {
		errs = append(errs, "MSRP must be greater than zero")
	}
	if input.CashDown < 0 {
		errs = append(errs, "cash down cannot be negative")
	}
	if input.TradeIn != nil {
		if input.TradeIn.Allowance < 0 {
			errs = append(errs, "trade-in allowance cannot be negative")
		}
		if input.TradeIn.Payoff < 0 {
			errs = append(errs, "trade-in payoff cannot be negative")
		}
	}

	for _, rebate := range input.Rebates {
		if rebate.Amount < 0 {
			errs = append(errs, fmt.Sprintf("rebate %q amount cannot be negative", rebate.Name))
		}
	}
	for _, fee := range input.Fees {
		if fee.Amount < 0 {
			errs = append(errs, fmt.Sprintf("fee %q amount cannot be negative", fee.Code))
		}
	}
	for _, product := range input.Products {
		if product.Price < 0 {
			errs = append(errs, fmt.Sprintf("product %q price cannot be negative", product.Name))
		}
	}

	if input.DealType == business.FinanceDeal && input.FinanceTerms != nil {
		errs = append(errs, validateFinanceTerms(*input.FinanceTerms)...)
	}
	if input.DealType == business.LeaseDeal && input.LeaseTerms != nil {
		errs = append(errs, validateLeaseTerms(*input.LeaseTerms)...)
	}

	return errs
}

func validateFinanceTerms(terms params.FinanceTerms) business.ValidationErrors {
	var errs business.ValidationErrors

	if terms.APR < 0 || terms.APR > MaxAPR {
		errs = append(errs, fmt.Sprintf("APR must be between 0 and %.1f%%", MaxAPR))
	}
	if terms.TermMonths < MinFinanceTerm || terms.TermMonths > MaxFinanceTerm {
		errs = append(errs, fmt.Sprintf("finance term must be between %d and %d months", MinFinanceTerm, MaxFinanceTerm))
	}
	if terms.PaymentFrequency != "" && terms.PaymentFrequency != MonthlyFrequency {
		errs = append(errs, fmt.Sprintf("payment frequency %q is not supported; only %q", terms.PaymentFrequency, MonthlyFrequency))
	}

	return errs
}

func validateLeaseTerms(terms params.LeaseTerms) business.ValidationErrors {
	var errs business.ValidationErrors

	if terms.MoneyFactor < 0 || terms.MoneyFactor > MaxMoneyFactor {
		errs = append(errs, fmt.Sprintf("money factor must be between 0 and %.2f", MaxMoneyFactor))
	}
	if terms.TermMonths < MinLeaseTerm || terms.TermMonths > MaxLeaseTerm {
		errs = append(errs, fmt.Sprintf("lease term must be between %d and %d months", MinLeaseTerm, MaxLeaseTerm))
	}
	if terms.ResidualValue == nil && terms.ResidualPercent == nil {
		errs = append(errs, "lease requires a residual value or residual percent")
	}
	if terms.ResidualPercent != nil {
		if *terms.ResidualPercent < MinResidualPercent || *terms.ResidualPercent > MaxResidualPercent {
			errs = append(errs, fmt.Sprintf("residual percent must be between %.0f and %.0f", MinResidualPercent, MaxResidualPercent))
		}
	}
	if terms.ResidualValue != nil && *terms.ResidualValue < 0 {
		errs = append(errs, "residual value cannot be negative")
	}
	if terms.AcquisitionFee < 0 {
		errs = append(errs, "acquisition fee cannot be negative")
	}
	if terms.SecurityDeposit < 0 {
		errs = append(errs, "security deposit cannot be negative")
	}
	if terms.DispositionFee < 0 {
		errs = append(errs, "disposition fee cannot be negative")
	}

	return errs
}
