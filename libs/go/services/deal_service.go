package services

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dealgrid/dealgrid-api/libs/go/helpers"
	"github.com/dealgrid/dealgrid-api/libs/go/logger"
	"github.com/dealgrid/dealgrid-api/libs/go/types/api/params"
	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

// DealService orchestrates the full pricing chain: structural checks,
// validation, breakdown assembly, tax, payment and the optional
// reciprocity evaluation. Every result is derived fresh from the input
// and the active policy snapshot; nothing is cached.
type DealService struct {
	policies    PolicyProvider
	pricing     *PricingService
	tax         *TaxService
	payments    *PaymentService
	reciprocity *ReciprocityService
	logger      *zap.Logger
}

// NewDealService creates a new deal service
func NewDealService(
	policies PolicyProvider,
	pricing *PricingService,
	tax *TaxService,
	payments *PaymentService,
	reciprocity *ReciprocityService,
) *DealService {
	return &DealService{
		policies:    policies,
		pricing:     pricing,
		tax:         tax,
		payments:    payments,
		reciprocity: reciprocity,
		logger:      logger.Log,
	}
}

// ComputeDeal prices a deal end to end. Structural defects (missing
// terms, unknown jurisdiction, broken rule configuration) abort with a
// fatal error; value violations come back together as ValidationErrors.
func (s *DealService) ComputeDeal(input params.DealInput) (*business.DealResult, error) {
	if err := helpers.EnsureRequiredTerms(input); err != nil {
		return nil, err
	}

	if errs := helpers.ValidateDealInput(input); errs.HasErrors() {
		s.logger.Info("deal input failed validation",
			zap.String("jurisdiction", input.JurisdictionCode),
			zap.Int("violations", len(errs)))
		return nil, errs
	}

	policy, err := s.policies.GetPolicy(input.JurisdictionCode)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.pricing.AssembleBreakdown(input, policy)
	if err != nil {
		return nil, err
	}

	taxResult, err := s.tax.Calculate(params.TaxCalculationParams{
		Breakdown:        *breakdown,
		JurisdictionCode: policy.Code,
		PostalCode:       input.PostalCode,
		DealType:         input.DealType,
	})
	if err != nil {
		return nil, err
	}

	payment, err := s.payments.Calculate(input.DealType, *breakdown, *taxResult, input.FinanceTerms, input.LeaseTerms)
	if err != nil {
		return nil, err
	}

	result := &business.DealResult{
		ID:        uuid.New(),
		Breakdown: *breakdown,
		Tax:       *taxResult,
		Payment:   *payment,
		CreatedAt: time.Now(),
	}

	if s.needsReciprocity(input) {
		outcome, err := s.reciprocity.Resolve(params.ReciprocityParams{
			HomeState:        input.RegistrationState,
			SellingState:     policy.Code,
			DealType:         input.DealType,
			TaxableBase:      taxResult.TaxableBase,
			SellingStateTax:  taxResult.TotalTax,
			TaxPaidAtSale:    taxResult.TotalTax,
			TaxPaidDate:      input.TaxPaidDate,
			RegistrationDate: input.RegistrationDate,
		})
		if err != nil {
			return nil, err
		}
		result.Reciprocity = outcome
	}

	s.logger.Info("computed deal",
		zap.String("deal_id", result.ID.String()),
		zap.String("jurisdiction", policy.Code),
		zap.String("deal_type", string(input.DealType)),
		zap.Float64("total_tax", taxResult.TotalTax))

	return result, nil
}

// ComputeTax exposes the standalone tax calculation for callers that
// assemble their own breakdowns.
func (s *DealService) ComputeTax(p params.TaxCalculationParams) (*business.TaxBreakdown, error) {
	return s.tax.Calculate(p)
}

func (s *DealService) needsReciprocity(input params.DealInput) bool {
	return input.RegistrationState != "" &&
		input.RegistrationState != input.JurisdictionCode
}
