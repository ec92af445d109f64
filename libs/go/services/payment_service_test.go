package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealgrid/dealgrid-api/libs/go/services"
	"github.com/dealgrid/dealgrid-api/libs/go/types/api/params"
	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

func TestPaymentService_CalculateCash(t *testing.T) {
	svc := services.NewPaymentService()

	breakdown := business.PriceBreakdown{
		SellingPrice:  30000,
		TotalRebates:  1000,
		TotalFees:     500,
		TotalProducts: 800,
		TradeAllowance: 5000,
		NetTrade:      5000,
		CashDown:      2000,
	}
	tax := business.TaxBreakdown{TotalTax: 1140}

	result := svc.CalculateCash(breakdown, tax)

	assert.InDelta(t, 26440.00, result.TotalDue, 1e-9)
	assert.InDelta(t, 24440.00, result.BalanceDue, 1e-9)
}

func TestPaymentService_CalculateFinance(t *testing.T) {
	svc := services.NewPaymentService()

	// $20,000 at 6% for 60 months
	result := svc.CalculateFinance(
		business.PriceBreakdown{SellingPrice: 20000},
		business.TaxBreakdown{},
		params.FinanceTerms{APR: 6.0, TermMonths: 60},
	)

	assert.InDelta(t, 20000.0, result.AmountFinanced, 1e-9)
	assert.InDelta(t, 386.66, result.MonthlyPayment, 0.01)
	assert.Greater(t, result.TotalInterest, 0.0)
	assert.InDelta(t, result.AmountFinanced+result.TotalInterest, result.TotalOfPayments, 0.02)
}

func TestPaymentService_AmortizationScheduleRetiresPrincipal(t *testing.T) {
	svc := services.NewPaymentService()

	schedule := svc.BuildAmortizationSchedule(20000, 6.0, 60)
	require.NotEmpty(t, schedule)
	require.LessOrEqual(t, len(schedule), 60)

	var principal float64
	for i, entry := range schedule {
		principal += entry.Principal
		assert.GreaterOrEqual(t, entry.Interest, 0.0, "period %d", i+1)
		assert.GreaterOrEqual(t, entry.Principal, 0.0, "period %d", i+1)
	}

	// The final payment absorbs rounding so principal sums exactly
	assert.InDelta(t, 20000.0, principal, 0.01)
	assert.InDelta(t, 0.0, schedule[len(schedule)-1].Balance, 1e-9)
}

func TestPaymentService_AmortizationZeroAPR(t *testing.T) {
	svc := services.NewPaymentService()

	schedule := svc.BuildAmortizationSchedule(12000, 0, 48)
	require.Len(t, schedule, 48)

	for _, entry := range schedule {
		assert.Zero(t, entry.Interest)
		assert.InDelta(t, 250.00, entry.Principal, 1e-9)
	}
}

func TestPaymentService_FinanceNeverNegative(t *testing.T) {
	svc := services.NewPaymentService()

	// Rebates and trade exceed the price; nothing is financed
	result := svc.CalculateFinance(
		business.PriceBreakdown{
			SellingPrice: 10000,
			TotalRebates: 4000,
			NetTrade:     8000,
		},
		business.TaxBreakdown{},
		params.FinanceTerms{APR: 5.0, TermMonths: 36},
	)

	assert.Zero(t, result.AmountFinanced)
	assert.Zero(t, result.MonthlyPayment)
	assert.Empty(t, result.Schedule)
}

func TestPaymentService_CalculateLease(t *testing.T) {
	svc := services.NewPaymentService()

	residual := 15000.0
	result := svc.CalculateLease(
		business.PriceBreakdown{SellingPrice: 25000},
		business.TaxBreakdown{},
		params.LeaseTerms{
			TermMonths:    36,
			MoneyFactor:   0.0025,
			ResidualValue: &residual,
		},
	)

	// Depreciation and rent charge rounded separately, then summed
	assert.InDelta(t, 277.78, result.Depreciation, 1e-9)
	assert.InDelta(t, 100.00, result.RentCharge, 1e-9)
	assert.InDelta(t, 377.78, result.BasePayment, 1e-9)
	assert.Zero(t, result.MonthlyTax)
	assert.InDelta(t, 377.78, result.TotalMonthly, 1e-9)
}

func TestPaymentService_LeaseDispositionFeeDisclosedOnly(t *testing.T) {
	svc := services.NewPaymentService()
	residual := 15000.0

	result := svc.CalculateLease(
		business.PriceBreakdown{SellingPrice: 25000},
		business.TaxBreakdown{},
		params.LeaseTerms{
			TermMonths:     36,
			MoneyFactor:    0.0025,
			ResidualValue:  &residual,
			DispositionFee: 395,
		},
	)

	// Carried through for disclosure, never in the payment or signing cash
	assert.InDelta(t, 395.00, result.DispositionFee, 1e-9)
	assert.InDelta(t, 377.78, result.TotalMonthly, 1e-9)
	assert.Zero(t, result.DueAtSigning)
}

func TestPaymentService_LeaseResidualFromPercent(t *testing.T) {
	svc := services.NewPaymentService()

	pct := 55.0
	result := svc.CalculateLease(
		business.PriceBreakdown{SellingPrice: 30000, MSRP: 32000},
		business.TaxBreakdown{},
		params.LeaseTerms{TermMonths: 36, MoneyFactor: 0.002, ResidualPercent: &pct},
	)

	assert.InDelta(t, 17600.00, result.Residual, 1e-9)
}

func TestPaymentService_LeaseMonthlyTaxApplied(t *testing.T) {
	svc := services.NewPaymentService()

	residual := 15000.0
	result := svc.CalculateLease(
		business.PriceBreakdown{SellingPrice: 25000},
		business.TaxBreakdown{MonthlyTaxRate: 0.06},
		params.LeaseTerms{TermMonths: 36, MoneyFactor: 0.0025, ResidualValue: &residual},
	)

	assert.InDelta(t, 22.67, result.MonthlyTax, 1e-9)
	assert.InDelta(t, 400.45, result.TotalMonthly, 1e-9)
}

func TestPaymentService_LeaseDueAtSigning(t *testing.T) {
	svc := services.NewPaymentService()
	residual := 15000.0

	t.Run("itemized signing costs", func(t *testing.T) {
		result := svc.CalculateLease(
			business.PriceBreakdown{SellingPrice: 25000, CashDown: 2000},
			business.TaxBreakdown{MonthlyTaxRate: 0.06, UpfrontTax: 120},
			params.LeaseTerms{
				TermMonths:            36,
				MoneyFactor:           0.0025,
				ResidualValue:         &residual,
				AcquisitionFee:        695,
				SecurityDeposit:       300,
				FirstPaymentAtSigning: true,
				CapReductionAtSigning: true,
			},
		)

		// $23,000 adjusted cap: 222.22 depreciation + 95.00 rent
		assert.InDelta(t, 317.22, result.BasePayment, 1e-9)
		assert.InDelta(t, 336.25, result.TotalMonthly, 1e-9)
		// first payment + deposit + acq fee + cap reduction + upfront tax
		assert.InDelta(t, 336.25+300+695+2000+120, result.DueAtSigning, 1e-9)
	})

	t.Run("sign and drive collects nothing", func(t *testing.T) {
		result := svc.CalculateLease(
			business.PriceBreakdown{SellingPrice: 25000, CashDown: 2000},
			business.TaxBreakdown{MonthlyTaxRate: 0.06, UpfrontTax: 120},
			params.LeaseTerms{
				TermMonths:      36,
				MoneyFactor:     0.0025,
				ResidualValue:   &residual,
				AcquisitionFee:  695,
				SecurityDeposit: 300,
				SignAndDrive:    true,
			},
		)

		assert.Zero(t, result.DueAtSigning)
	})

	t.Run("waived deposit and capitalized acquisition fee", func(t *testing.T) {
		result := svc.CalculateLease(
			business.PriceBreakdown{SellingPrice: 25000},
			business.TaxBreakdown{},
			params.LeaseTerms{
				TermMonths:               36,
				MoneyFactor:              0.0025,
				ResidualValue:            &residual,
				AcquisitionFee:           695,
				CapitalizeAcquisitionFee: true,
				SecurityDeposit:          300,
				WaiveSecurityDeposit:     true,
			},
		)

		// Acquisition fee rolled into the cap cost instead
		assert.InDelta(t, 25695.00, result.GrossCapCost, 1e-9)
		assert.Zero(t, result.DueAtSigning)
	})
}

func TestPaymentService_CalculateDispatch(t *testing.T) {
	svc := services.NewPaymentService()
	breakdown := business.PriceBreakdown{SellingPrice: 20000}
	tax := business.TaxBreakdown{TotalTax: 1200}

	t.Run("finance without terms is fatal", func(t *testing.T) {
		_, err := svc.Calculate(business.FinanceDeal, breakdown, tax, nil, nil)
		var missing *business.MissingTermsError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, business.FinanceDeal, missing.DealType)
	})

	t.Run("lease without terms is fatal", func(t *testing.T) {
		_, err := svc.Calculate(business.LeaseDeal, breakdown, tax, nil, nil)
		var missing *business.MissingTermsError
		require.True(t, errors.As(err, &missing))
	})

	t.Run("exactly one result branch is populated", func(t *testing.T) {
		result, err := svc.Calculate(business.CashDeal, breakdown, tax, nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, result.Cash)
		assert.Nil(t, result.Finance)
		assert.Nil(t, result.Lease)
	})
}
