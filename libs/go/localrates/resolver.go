package localrates

import (
	_ "embed"
	"strings"
	"sync/atomic"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dealgrid/dealgrid-api/libs/go/logger"
	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

//go:embed data/local_rates.json
var defaultDataset []byte

// Dataset is the on-disk shape of a local-rate file. StateAverages feeds
// the fallback path for postal codes with no exact record.
type Dataset struct {
	Version       string                     `json:"version"`
	StateAverages map[string]float64         `json:"state_averages"`
	Records       []business.LocalRateRecord `json:"records"`
}

type snapshot struct {
	version  string
	byPostal map[string]*business.LocalRateRecord
	averages map[string]float64
}

// Resolver maps postal codes to combined local tax rates. Lookups never
// fail: exact record, then state average, then zero, with the path taken
// reported in the result.
type Resolver struct {
	current atomic.Pointer[snapshot]
	logger  *zap.Logger
}

// NewResolver creates a resolver loaded with the embedded default dataset
func NewResolver() (*Resolver, error) {
	r := &Resolver{logger: logger.Log}
	if err := r.LoadDataset(defaultDataset); err != nil {
		return nil, errors.Wrap(err, "loading embedded local rate dataset")
	}
	return r, nil
}

// LoadDataset parses and validates a local-rate dataset, then atomically
// replaces the active snapshot.
func (r *Resolver) LoadDataset(data []byte) error {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return errors.Wrap(err, "parsing local rate dataset")
	}
	if ds.Version == "" {
		return errors.New("local rate dataset has no version")
	}

	byPostal := make(map[string]*business.LocalRateRecord, len(ds.Records))
	for i := range ds.Records {
		rec := ds.Records[i]
		code := strings.TrimSpace(rec.PostalCode)
		if code == "" {
			return errors.Errorf("record %d has no postal code", i)
		}
		if _, exists := byPostal[code]; exists {
			return errors.Errorf("duplicate postal code %q in dataset %s", code, ds.Version)
		}
		if err := validateRecord(&rec); err != nil {
			return errors.Wrapf(err, "postal code %s", code)
		}
		byPostal[code] = &rec
	}

	averages := make(map[string]float64, len(ds.StateAverages))
	for state, avg := range ds.StateAverages {
		averages[strings.ToUpper(state)] = avg
	}

	r.current.Store(&snapshot{version: ds.Version, byPostal: byPostal, averages: averages})
	r.logger.Info("local rate dataset loaded",
		zap.String("version", ds.Version),
		zap.Int("records", len(byPostal)),
		zap.Int("state_averages", len(averages)))

	return nil
}

// Resolve returns the combined local rate for a postal code. An exact
// record wins; otherwise the state-level average applies; a state with
// no local tax data yields zero with source "none".
func (r *Resolver) Resolve(postalCode, stateCode string) business.LocalRateResult {
	snap := r.current.Load()

	if rec, ok := snap.byPostal[strings.TrimSpace(postalCode)]; ok {
		return business.LocalRateResult{
			Rate:   rec.CombinedRate,
			Source: business.RateSourceExact,
			Record: rec,
		}
	}

	if avg, ok := snap.averages[strings.ToUpper(strings.TrimSpace(stateCode))]; ok {
		return business.LocalRateResult{
			Rate:   avg,
			Source: business.RateSourceAverage,
		}
	}

	return business.LocalRateResult{Source: business.RateSourceNone}
}

// Version returns the active dataset version
func (r *Resolver) Version() string {
	return r.current.Load().version
}

// validateRecord checks the component-sum invariant: the combined rate
// must equal county + city + district components.
func validateRecord(rec *business.LocalRateRecord) error {
	sum := rec.CountyRate + rec.CityRate
	for _, d := range rec.DistrictRates {
		sum += d.Rate
	}
	if diff := sum - rec.CombinedRate; diff > 1e-9 || diff < -1e-9 {
		return errors.Errorf("combined rate %.5f does not equal component sum %.5f", rec.CombinedRate, sum)
	}
	if rec.CombinedRate < 0 || rec.CombinedRate > 0.2 {
		return errors.Errorf("combined rate %.5f out of range", rec.CombinedRate)
	}
	return nil
}
