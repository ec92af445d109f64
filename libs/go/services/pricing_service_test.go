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

func TestPricingService_NetTrade(t *testing.T) {
	svc := services.NewPricingService()

	breakdown, err := svc.AssembleBreakdown(params.DealInput{
		DealType:     business.FinanceDeal,
		SellingPrice: 20000,
		TradeIn:      &params.TradeInInput{Allowance: 5000, Payoff: 8000},
	}, cappedStatePolicy())
	require.NoError(t, err)

	assert.InDelta(t, 5000.0, breakdown.TradeAllowance, 1e-9)
	assert.InDelta(t, 8000.0, breakdown.TradePayoff, 1e-9)
	// Payoff above allowance is negative equity
	assert.InDelta(t, -3000.0, breakdown.NetTrade, 1e-9)
}

func TestPricingService_RebateTaxability(t *testing.T) {
	svc := services.NewPricingService()
	policy := localSchemePolicy() // taxes manufacturer rebates, not dealer

	t.Run("origin table drives the split", func(t *testing.T) {
		breakdown, err := svc.AssembleBreakdown(params.DealInput{
			DealType:     business.FinanceDeal,
			SellingPrice: 25000,
			Rebates: []params.RebateInput{
				{Name: "factory cash", Amount: 2000, Origin: business.ManufacturerRebate},
				{Name: "dealer discount", Amount: 500, Origin: business.DealerRebate},
			},
		}, policy)
		require.NoError(t, err)

		assert.InDelta(t, 2500.0, breakdown.TotalRebates, 1e-9)
		assert.InDelta(t, 2000.0, breakdown.TaxableRebates, 1e-9)
		assert.InDelta(t, 500.0, breakdown.NonTaxableRebates, 1e-9)
	})

	t.Run("explicit override beats the table", func(t *testing.T) {
		breakdown, err := svc.AssembleBreakdown(params.DealInput{
			DealType:     business.FinanceDeal,
			SellingPrice: 25000,
			Rebates: []params.RebateInput{
				{Name: "dealer discount", Amount: 500, Origin: business.DealerRebate, Taxable: boolPtr(true)},
			},
		}, policy)
		require.NoError(t, err)

		assert.InDelta(t, 500.0, breakdown.TaxableRebates, 1e-9)
	})

	t.Run("lease uses the lease-level rebate flag", func(t *testing.T) {
		// Dealer rebates are retail-exempt here but the lease flag taxes all
		breakdown, err := svc.AssembleBreakdown(params.DealInput{
			DealType:     business.LeaseDeal,
			SellingPrice: 25000,
			Rebates: []params.RebateInput{
				{Name: "dealer discount", Amount: 500, Origin: business.DealerRebate},
			},
		}, policy)
		require.NoError(t, err)

		assert.InDelta(t, 500.0, breakdown.TaxableRebates, 1e-9)
	})
}

func TestPricingService_DocFeeCap(t *testing.T) {
	svc := services.NewPricingService()
	policy := cappedStatePolicy() // doc fee taxable, capped at $260

	breakdown, err := svc.AssembleBreakdown(params.DealInput{
		DealType:     business.FinanceDeal,
		SellingPrice: 25000,
		Fees: []params.FeeInput{
			{Code: "doc", Name: "Documentation fee", Amount: 340},
		},
	}, policy)
	require.NoError(t, err)

	// Only the portion up to the cap is taxable
	assert.InDelta(t, 340.0, breakdown.TotalFees, 1e-9)
	assert.InDelta(t, 260.0, breakdown.TaxableFees, 1e-9)
	assert.InDelta(t, 80.0, breakdown.NonTaxableFees, 1e-9)
}

func TestPricingService_FeeTaxabilityResolution(t *testing.T) {
	svc := services.NewPricingService()

	t.Run("per-code table entry", func(t *testing.T) {
		breakdown, err := svc.AssembleBreakdown(params.DealInput{
			DealType:     business.FinanceDeal,
			SellingPrice: 25000,
			Fees: []params.FeeInput{
				{Code: "title", Amount: 75},
			},
		}, cappedStatePolicy())
		require.NoError(t, err)

		assert.Zero(t, breakdown.TaxableFees)
		assert.InDelta(t, 75.0, breakdown.NonTaxableFees, 1e-9)
	})

	t.Run("unlisted code falls back to the default", func(t *testing.T) {
		breakdown, err := svc.AssembleBreakdown(params.DealInput{
			DealType:     business.FinanceDeal,
			SellingPrice: 25000,
			Fees: []params.FeeInput{
				{Code: "electronic_filing", Amount: 30},
			},
		}, cappedStatePolicy())
		require.NoError(t, err)

		assert.Zero(t, breakdown.TaxableFees)
	})

	t.Run("no entry and no default is a configuration defect", func(t *testing.T) {
		policy := cappedStatePolicy()
		policy.DefaultFeeTaxable = nil

		_, err := svc.AssembleBreakdown(params.DealInput{
			DealType:     business.FinanceDeal,
			SellingPrice: 25000,
			Fees: []params.FeeInput{
				{Code: "electronic_filing", Amount: 30},
			},
		}, policy)
		require.Error(t, err)

		var ruleErr *business.RuleConfigError
		assert.True(t, errors.As(err, &ruleErr))
	})

	t.Run("capitalized fee is tracked separately", func(t *testing.T) {
		breakdown, err := svc.AssembleBreakdown(params.DealInput{
			DealType:     business.LeaseDeal,
			SellingPrice: 25000,
			Fees: []params.FeeInput{
				{Code: "title", Amount: 75, Capitalize: true},
			},
		}, cappedStatePolicy())
		require.NoError(t, err)

		assert.InDelta(t, 75.0, breakdown.CapitalizedFees, 1e-9)
	})

	t.Run("lease doc fee honors the lease rule", func(t *testing.T) {
		breakdown, err := svc.AssembleBreakdown(params.DealInput{
			DealType:     business.LeaseDeal,
			SellingPrice: 25000,
			Fees: []params.FeeInput{
				{Code: "doc", Amount: 200},
			},
		}, zeroRatePolicy()) // lease doc fee rule: never
		require.NoError(t, err)

		assert.Zero(t, breakdown.TaxableFees)
	})
}

func TestPricingService_Products(t *testing.T) {
	svc := services.NewPricingService()
	policy := cappedStatePolicy() // accessories taxable, GAP and VSC not

	breakdown, err := svc.AssembleBreakdown(params.DealInput{
		DealType:     business.FinanceDeal,
		SellingPrice: 25000,
		Products: []params.ProductInput{
			{Name: "roof rack", Category: "accessory", Price: 400, FinanceWithDeal: true},
			{Name: "gap waiver", Category: "gap", Price: 800, FinanceWithDeal: true},
			{Name: "floor mats", Category: "accessory", Price: 150},
		},
	}, policy)
	require.NoError(t, err)

	assert.InDelta(t, 1350.0, breakdown.TotalProducts, 1e-9)
	assert.InDelta(t, 550.0, breakdown.TaxableProducts, 1e-9)
	assert.InDelta(t, 1200.0, breakdown.FinancedProducts, 1e-9)
	assert.InDelta(t, 150.0, breakdown.CashProducts, 1e-9)
}

func TestPricingService_ProductUnknownCategory(t *testing.T) {
	svc := services.NewPricingService()

	t.Run("explicit override permits it", func(t *testing.T) {
		breakdown, err := svc.AssembleBreakdown(params.DealInput{
			DealType:     business.FinanceDeal,
			SellingPrice: 25000,
			Products: []params.ProductInput{
				{Name: "paint protection", Category: "chemical", Price: 600, Taxable: boolPtr(true)},
			},
		}, cappedStatePolicy())
		require.NoError(t, err)

		assert.InDelta(t, 600.0, breakdown.TaxableProducts, 1e-9)
	})

	t.Run("no override fails closed", func(t *testing.T) {
		_, err := svc.AssembleBreakdown(params.DealInput{
			DealType:     business.FinanceDeal,
			SellingPrice: 25000,
			Products: []params.ProductInput{
				{Name: "paint protection", Category: "chemical", Price: 600},
			},
		}, cappedStatePolicy())
		require.Error(t, err)

		var ruleErr *business.RuleConfigError
		assert.True(t, errors.As(err, &ruleErr))
	})
}
