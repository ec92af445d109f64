package policy

import (
	_ "embed"
	"sort"
	"strings"
	"sync/atomic"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dealgrid/dealgrid-api/libs/go/logger"
	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

//go:embed data/jurisdictions.json
var defaultDataset []byte

// Dataset is the on-disk shape of a jurisdiction policy file
type Dataset struct {
	Version       string                        `json:"version"`
	Jurisdictions []business.JurisdictionPolicy `json:"jurisdictions"`
}

// snapshot is one immutable generation of loaded policies. Reloads build
// a new snapshot and swap the pointer; concurrent readers never observe
// a partially updated policy.
type snapshot struct {
	version  string
	policies map[string]*business.JurisdictionPolicy
}

// Store holds the active jurisdiction policy snapshot. All reads go
// through the atomic pointer; no lock is required.
type Store struct {
	current atomic.Pointer[snapshot]
	logger  *zap.Logger
}

// NewStore creates a policy store loaded with the embedded default
// dataset.
func NewStore() (*Store, error) {
	s := &Store{logger: logger.Log}
	if err := s.LoadDataset(defaultDataset); err != nil {
		return nil, errors.Wrap(err, "loading embedded jurisdiction dataset")
	}
	return s, nil
}

// LoadDataset parses and validates a policy dataset, then atomically
// replaces the active snapshot.
func (s *Store) LoadDataset(data []byte) error {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return errors.Wrap(err, "parsing jurisdiction dataset")
	}
	if ds.Version == "" {
		return errors.New("jurisdiction dataset has no version")
	}

	policies := make(map[string]*business.JurisdictionPolicy, len(ds.Jurisdictions))
	for i := range ds.Jurisdictions {
		p := ds.Jurisdictions[i]
		code := strings.ToUpper(strings.TrimSpace(p.Code))
		if len(code) != 2 {
			return errors.Errorf("invalid jurisdiction code %q in dataset %s", p.Code, ds.Version)
		}
		if _, exists := policies[code]; exists {
			return errors.Errorf("duplicate jurisdiction code %q in dataset %s", code, ds.Version)
		}
		if err := validatePolicy(&p); err != nil {
			return errors.Wrapf(err, "jurisdiction %s", code)
		}
		p.Code = code
		policies[code] = &p
	}

	s.current.Store(&snapshot{version: ds.Version, policies: policies})
	s.logger.Info("jurisdiction dataset loaded",
		zap.String("version", ds.Version),
		zap.Int("jurisdictions", len(policies)))

	return nil
}

// GetPolicy returns the active policy for a two-letter jurisdiction
// code. Unknown codes fail closed with an UnknownJurisdictionError.
func (s *Store) GetPolicy(code string) (*business.JurisdictionPolicy, error) {
	snap := s.current.Load()
	p, ok := snap.policies[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, &business.UnknownJurisdictionError{Code: code}
	}
	return p, nil
}

// ListJurisdictions returns the loaded jurisdiction codes in sorted order
func (s *Store) ListJurisdictions() []string {
	snap := s.current.Load()
	codes := make([]string, 0, len(snap.policies))
	for code := range snap.policies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Version returns the active dataset version
func (s *Store) Version() string {
	return s.current.Load().version
}

func validatePolicy(p *business.JurisdictionPolicy) error {
	if p.StateRate < 0 || p.StateRate > 0.5 {
		return errors.Errorf("state rate %.4f out of range", p.StateRate)
	}
	if p.AverageLocalRate < 0 || p.AverageLocalRate > 0.2 {
		return errors.Errorf("average local rate %.4f out of range", p.AverageLocalRate)
	}
	switch p.VehicleTaxScheme {
	case business.StateOnlyScheme, business.StatePlusLocalScheme:
	default:
		return errors.Errorf("unknown vehicle tax scheme %q", p.VehicleTaxScheme)
	}
	switch p.TradeCredit {
	case business.TradeCreditFull, business.TradeCreditNone:
	case business.TradeCreditCapped, business.TradeCreditPartial:
		if p.TradeCreditCap <= 0 {
			return errors.Errorf("trade credit policy %q requires a positive cap", p.TradeCredit)
		}
	default:
		return errors.Errorf("unknown trade credit policy %q", p.TradeCredit)
	}
	switch p.Lease.Method {
	case business.LeaseTaxMonthly, business.LeaseTaxFullUpfront, business.LeaseTaxHybrid,
		business.LeaseTaxNetCapCost, business.LeaseTaxReducedBase:
	default:
		return errors.Errorf("unknown lease tax method %q", p.Lease.Method)
	}
	if p.Reciprocity.Enabled {
		switch p.Reciprocity.HomeStateBehavior {
		case business.HomeStateNone, business.HomeStateCreditUpToRate, business.HomeStateFullCredit:
		default:
			return errors.Errorf("unknown home state behavior %q", p.Reciprocity.HomeStateBehavior)
		}
		if p.Reciprocity.RequireProofOfPayment && p.Reciprocity.ProofWindowDays <= 0 {
			return errors.New("proof of payment required but no proof window configured")
		}
	}
	return nil
}
