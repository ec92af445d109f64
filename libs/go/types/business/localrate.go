package business

// DistrictRate is one special-district component of a local rate
type DistrictRate struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// LocalRateRecord maps a postal code to its combined local tax rate.
// CombinedRate is the sum of county, city and district components.
type LocalRateRecord struct {
	PostalCode    string         `json:"postal_code"`
	State         string         `json:"state"`
	County        string         `json:"county"`
	City          string         `json:"city"`
	CountyRate    float64        `json:"county_rate"`
	CityRate      float64        `json:"city_rate"`
	DistrictRates []DistrictRate `json:"district_rates,omitempty"`
	CombinedRate  float64        `json:"combined_rate"`
}

// RateSource records which lookup path produced a local rate
type RateSource string

const (
	RateSourceExact   RateSource = "exact"
	RateSourceAverage RateSource = "average"
	RateSourceNone    RateSource = "none"
)

// LocalRateResult is the outcome of a local-rate lookup. Lookups never
// fail; absence of data degrades to the state average or zero, and the
// Source field reports which path was taken.
type LocalRateResult struct {
	Rate   float64          `json:"rate"`
	Source RateSource       `json:"source"`
	Record *LocalRateRecord `json:"record,omitempty"`
}
