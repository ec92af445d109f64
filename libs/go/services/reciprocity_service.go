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

// ReciprocityService computes the cross-jurisdiction credit owed when a
// vehicle is taxed at sale in one state and registered in another. It
// evaluates the buyer's home-state policy and never mutates the primary
// tax result.
type ReciprocityService struct {
	policies PolicyProvider
	logger   *zap.Logger
}

// NewReciprocityService creates a new reciprocity service
func NewReciprocityService(policies PolicyProvider) *ReciprocityService {
	return &ReciprocityService{
		policies: policies,
		logger:   logger.Log,
	}
}

// Resolve evaluates the home state's reciprocity rules against the tax
// already computed for the selling state.
func (s *ReciprocityService) Resolve(p params.ReciprocityParams) (*business.ReciprocityOutcome, error) {
	home, err := s.policies.GetPolicy(p.HomeState)
	if err != nil {
		return nil, err
	}

	homeRate := home.StateRate
	if home.VehicleTaxScheme == business.StatePlusLocalScheme {
		homeRate += home.AverageLocalRate
	}
	homeTax := helpers.RoundToCents(p.TaxableBase * homeRate)

	outcome := &business.ReciprocityOutcome{
		HomeState:       home.Code,
		SellingState:    p.SellingState,
		HomeStateTax:    homeTax,
		SellingStateTax: p.SellingStateTax,
		TaxPaidAtSale:   p.TaxPaidAtSale,
	}

	s.logger.Info("resolving reciprocity",
		zap.String("home_state", home.Code),
		zap.String("selling_state", p.SellingState),
		zap.String("deal_type", string(p.DealType)),
		zap.Float64("home_state_tax", homeTax),
		zap.Float64("tax_paid_at_sale", p.TaxPaidAtSale))

	rules := home.Reciprocity
	if !rules.Enabled {
		outcome.TaxOwed = homeTax
		outcome.Notes = append(outcome.Notes, "home state does not participate in reciprocity")
		return outcome, nil
	}

	if !scopeCovers(rules.Scope, p.DealType) {
		outcome.TaxOwed = homeTax
		outcome.Notes = append(outcome.Notes,
			fmt.Sprintf("reciprocity scope %q does not cover %s deals", rules.Scope, p.DealType))
		return outcome, nil
	}
	if rules.LeaseException && p.DealType == business.LeaseDeal {
		outcome.TaxOwed = homeTax
		outcome.Notes = append(outcome.Notes, "home state excepts leases from reciprocity credit")
		return outcome, nil
	}

	if containsState(rules.ExemptStates, p.SellingState) {
		outcome.Exempt = true
		outcome.TaxOwed = 0
		outcome.Notes = append(outcome.Notes, "selling state is exempt; no home-state tax owed")
		return outcome, nil
	}

	if containsState(rules.NonReciprocalStates, p.SellingState) {
		outcome.NonReciprocal = true
		outcome.TaxOwed = homeTax
		outcome.Notes = append(outcome.Notes,
			"selling state is non-reciprocal; full home-state tax owed regardless of tax paid at sale")
		return outcome, nil
	}

	if rules.RequireProofOfPayment && s.proofExpired(rules, p) {
		outcome.ProofExpired = true
		outcome.TaxOwed = homeTax
		outcome.Notes = append(outcome.Notes,
			fmt.Sprintf("proof of payment outside the %d-day window; credit forfeited", rules.ProofWindowDays))
		return outcome, nil
	}

	switch rules.HomeStateBehavior {
	case business.HomeStateNone:
		outcome.TaxOwed = homeTax
		outcome.Notes = append(outcome.Notes, "home state grants no credit for tax paid at sale")
	case business.HomeStateFullCredit:
		outcome.CreditGranted = math.Min(p.TaxPaidAtSale, homeTax)
		outcome.TaxOwed = helpers.RoundToCents(math.Max(0, homeTax-outcome.CreditGranted))
	case business.HomeStateCreditUpToRate:
		paid := p.TaxPaidAtSale
		if rules.CreditBasis == business.CreditBasisRate {
			paid = p.SellingStateTax
		}
		credit := paid
		if rules.CapAtStateRate {
			// The dealer collects the lesser of the two rates; the home
			// state credits tax paid up to its own rate
			credit = math.Min(paid, homeTax)
		}
		outcome.CreditGranted = credit
		outcome.TaxOwed = helpers.RoundToCents(math.Max(0, homeTax-credit))
	}

	return outcome, nil
}

// proofExpired checks the per-jurisdiction proof-of-payment window. A
// missing paid date counts as no proof.
func (s *ReciprocityService) proofExpired(rules business.ReciprocityRules, p params.ReciprocityParams) bool {
	if p.TaxPaidDate == nil {
		return true
	}
	registered := time.Now()
	if p.RegistrationDate != nil {
		registered = *p.RegistrationDate
	}
	window := time.Duration(rules.ProofWindowDays) * 24 * time.Hour
	return registered.Sub(*p.TaxPaidDate) > window
}

func scopeCovers(scope business.ReciprocityScope, dealType business.DealType) bool {
	switch scope {
	case business.ReciprocityBoth:
		return true
	case business.ReciprocityRetailOnly:
		return dealType != business.LeaseDeal
	case business.ReciprocityLeaseOnly:
		return dealType == business.LeaseDeal
	default:
		return false
	}
}

func containsState(states []string, code string) bool {
	for _, s := range states {
		if s == code {
			return true
		}
	}
	return false
}
