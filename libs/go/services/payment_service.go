package services

import (
	"math"

	"go.uber.org/zap"

	"github.com/dealgrid/dealgrid-api/libs/go/helpers"
	"github.com/dealgrid/dealgrid-api/libs/go/logger"
	"github.com/dealgrid/dealgrid-api/libs/go/types/api/params"
	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

// PaymentService turns a priced breakdown plus its computed tax into the
// deal-type-specific payment result: cash totals, installment
// amortization or lease payment.
type PaymentService struct {
	logger *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService() *PaymentService {
	return &PaymentService{logger: logger.Log}
}

// Calculate dispatches on deal type. Finance and lease deals without
// their terms fail with a MissingTermsError.
func (s *PaymentService) Calculate(
	dealType business.DealType,
	breakdown business.PriceBreakdown,
	tax business.TaxBreakdown,
	financeTerms *params.FinanceTerms,
	leaseTerms *params.LeaseTerms,
) (*business.PaymentResult, error) {
	result := &business.PaymentResult{DealType: dealType}

	switch dealType {
	case business.CashDeal:
		result.Cash = s.CalculateCash(breakdown, tax)
	case business.FinanceDeal:
		if financeTerms == nil {
			return nil, &business.MissingTermsError{DealType: business.FinanceDeal}
		}
		result.Finance = s.CalculateFinance(breakdown, tax, *financeTerms)
	case business.LeaseDeal:
		if leaseTerms == nil {
			return nil, &business.MissingTermsError{DealType: business.LeaseDeal}
		}
		result.Lease = s.CalculateLease(breakdown, tax, *leaseTerms)
	default:
		return nil, &business.RuleConfigError{Detail: "unsupported deal type " + string(dealType)}
	}

	return result, nil
}

// CalculateCash computes the totals for a cash purchase
func (s *PaymentService) CalculateCash(breakdown business.PriceBreakdown, tax business.TaxBreakdown) *business.CashResult {
	totalDue := breakdown.SellingPrice -
		breakdown.TotalRebates +
		breakdown.TotalFees +
		breakdown.TotalProducts +
		tax.TotalTax -
		breakdown.NetTrade

	return &business.CashResult{
		TotalDue:   helpers.RoundToCents(totalDue),
		BalanceDue: helpers.RoundToCents(totalDue - breakdown.CashDown),
	}
}

// CalculateFinance computes the installment payment and the full
// amortization schedule. The final payment absorbs rounding residue so
// the principal column sums exactly to the amount financed.
func (s *PaymentService) CalculateFinance(breakdown business.PriceBreakdown, tax business.TaxBreakdown, terms params.FinanceTerms) *business.FinanceResult {
	amountFinanced := breakdown.SellingPrice -
		breakdown.TotalRebates -
		breakdown.CashDown -
		breakdown.NetTrade +
		tax.TotalTax +
		breakdown.TotalFees +
		breakdown.FinancedProducts
	if amountFinanced < 0 {
		amountFinanced = 0
	}
	amountFinanced = helpers.RoundToCents(amountFinanced)

	payment := helpers.MonthlyPayment(amountFinanced, terms.APR, terms.TermMonths)
	schedule := s.BuildAmortizationSchedule(amountFinanced, terms.APR, terms.TermMonths)

	var totalInterest, totalOfPayments float64
	for _, entry := range schedule {
		totalInterest += entry.Interest
		totalOfPayments += entry.Payment
	}

	s.logger.Debug("computed finance payment",
		zap.Float64("amount_financed", amountFinanced),
		zap.Float64("apr", terms.APR),
		zap.Int("term_months", terms.TermMonths),
		zap.Float64("monthly_payment", payment))

	return &business.FinanceResult{
		AmountFinanced:  amountFinanced,
		APR:             terms.APR,
		TermMonths:      terms.TermMonths,
		MonthlyPayment:  payment,
		TotalOfPayments: helpers.RoundToCents(totalOfPayments),
		TotalInterest:   helpers.RoundToCents(math.Max(0, totalInterest)),
		Schedule:        schedule,
	}
}

// BuildAmortizationSchedule produces the per-period schedule for a
// fixed-rate loan. Interest is computed on the running balance and the
// last payment retires whatever balance remains after rounding.
func (s *PaymentService) BuildAmortizationSchedule(amount, apr float64, termMonths int) []business.AmortizationEntry {
	if termMonths <= 0 || amount <= 0 {
		return nil
	}

	payment := helpers.MonthlyPayment(amount, apr, termMonths)
	r := helpers.MonthlyRate(apr)
	schedule := make([]business.AmortizationEntry, 0, termMonths)
	balance := amount

	for period := 1; period <= termMonths; period++ {
		interest := helpers.RoundToCents(balance * r)
		principal := helpers.RoundToCents(payment - interest)
		entryPayment := payment

		if period == termMonths || principal >= balance {
			// Final payment absorbs the residual cents
			principal = helpers.RoundToCents(balance)
			entryPayment = helpers.RoundToCents(principal + interest)
		}

		balance = helpers.RoundToCents(balance - principal)
		schedule = append(schedule, business.AmortizationEntry{
			Period:    period,
			Payment:   entryPayment,
			Interest:  interest,
			Principal: principal,
			Balance:   balance,
		})
		if balance <= 0 {
			break
		}
	}

	return schedule
}

// CalculateLease computes the lease payment from depreciation and rent
// charge, applies any monthly tax rate from the tax breakdown, and
// assembles the due-at-signing figure.
func (s *PaymentService) CalculateLease(breakdown business.PriceBreakdown, tax business.TaxBreakdown, terms params.LeaseTerms) *business.LeaseResult {
	residual := 0.0
	if terms.ResidualValue != nil {
		residual = *terms.ResidualValue
	} else if terms.ResidualPercent != nil {
		residual = helpers.RoundToCents(breakdown.MSRP * *terms.ResidualPercent / 100)
	}

	grossCapCost := breakdown.SellingPrice + breakdown.CapitalizedFees + breakdown.FinancedProducts
	if terms.CapitalizeAcquisitionFee {
		grossCapCost += terms.AcquisitionFee
	}

	capReduction := breakdown.NetTrade + breakdown.TotalRebates + breakdown.CashDown
	adjustedCapCost := math.Max(0, grossCapCost-capReduction)

	depreciation := helpers.RoundToCents((adjustedCapCost - residual) / float64(terms.TermMonths))
	rentCharge := helpers.RoundToCents((adjustedCapCost + residual) * terms.MoneyFactor)
	basePayment := helpers.RoundToCents(depreciation + rentCharge)

	monthlyTax := 0.0
	if tax.MonthlyTaxRate > 0 {
		monthlyTax = helpers.RoundToCents(basePayment * tax.MonthlyTaxRate)
	}
	totalMonthly := helpers.RoundToCents(basePayment + monthlyTax)

	result := &business.LeaseResult{
		GrossCapCost:     helpers.RoundToCents(grossCapCost),
		CapCostReduction: helpers.RoundToCents(capReduction),
		AdjustedCapCost:  helpers.RoundToCents(adjustedCapCost),
		Residual:         residual,
		MoneyFactor:      terms.MoneyFactor,
		TermMonths:       terms.TermMonths,
		Depreciation:     depreciation,
		RentCharge:       rentCharge,
		BasePayment:      basePayment,
		MonthlyTax:       monthlyTax,
		TotalMonthly:     totalMonthly,
		DispositionFee:   terms.DispositionFee,
	}

	result.DueAtSigning = s.dueAtSigning(result, tax, terms)

	s.logger.Debug("computed lease payment",
		zap.Float64("adjusted_cap_cost", result.AdjustedCapCost),
		zap.Float64("residual", residual),
		zap.Float64("base_payment", basePayment),
		zap.Float64("due_at_signing", result.DueAtSigning))

	return result
}

// dueAtSigning assembles the cash collected at lease inception. A
// sign-and-drive lease rolls everything into the cap and collects
// nothing.
func (s *PaymentService) dueAtSigning(lease *business.LeaseResult, tax business.TaxBreakdown, terms params.LeaseTerms) float64 {
	if terms.SignAndDrive {
		return 0
	}

	due := 0.0
	if terms.FirstPaymentAtSigning {
		due += lease.TotalMonthly
	}
	if !terms.WaiveSecurityDeposit {
		due += terms.SecurityDeposit
	}
	if !terms.CapitalizeAcquisitionFee {
		due += terms.AcquisitionFee
	}
	if terms.CapReductionAtSigning && lease.CapCostReduction > 0 {
		due += lease.CapCostReduction
	}
	due += tax.UpfrontTax

	return helpers.RoundToCents(due)
}
