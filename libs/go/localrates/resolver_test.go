package localrates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealgrid/dealgrid-api/libs/go/localrates"
	"github.com/dealgrid/dealgrid-api/libs/go/logger"
	"github.com/dealgrid/dealgrid-api/libs/go/types/business"
)

func init() {
	logger.InitLogger("test")
}

func TestResolver_ExactRecord(t *testing.T) {
	resolver, err := localrates.NewResolver()
	require.NoError(t, err)

	result := resolver.Resolve("60601", "IL")

	assert.Equal(t, business.RateSourceExact, result.Source)
	assert.InDelta(t, 0.04, result.Rate, 1e-12)
	require.NotNil(t, result.Record)
	assert.Equal(t, "Chicago", result.Record.City)
}

func TestResolver_StateAverageFallback(t *testing.T) {
	resolver, err := localrates.NewResolver()
	require.NoError(t, err)

	result := resolver.Resolve("62701", "IL")

	assert.Equal(t, business.RateSourceAverage, result.Source)
	assert.InDelta(t, 0.0257, result.Rate, 1e-12)
	assert.Nil(t, result.Record)
}

func TestResolver_NeverFails(t *testing.T) {
	resolver, err := localrates.NewResolver()
	require.NoError(t, err)

	// A state with no local data yields zero, not an error
	result := resolver.Resolve("48201", "MI")

	assert.Equal(t, business.RateSourceNone, result.Source)
	assert.Zero(t, result.Rate)
}

func TestResolver_NormalizesInputs(t *testing.T) {
	resolver, err := localrates.NewResolver()
	require.NoError(t, err)

	assert.Equal(t, business.RateSourceExact, resolver.Resolve(" 60601 ", "IL").Source)
	assert.Equal(t, business.RateSourceAverage, resolver.Resolve("", " il ").Source)
}

func TestResolver_LoadDatasetValidation(t *testing.T) {
	tests := []struct {
		name    string
		dataset string
	}{
		{
			name:    "missing version",
			dataset: `{"records": []}`,
		},
		{
			name: "record without postal code",
			dataset: `{"version": "x", "records": [
				{"state": "IL", "county_rate": 0.01, "combined_rate": 0.01}
			]}`,
		},
		{
			name: "duplicate postal code",
			dataset: `{"version": "x", "records": [
				{"postal_code": "60601", "state": "IL", "county_rate": 0.01, "combined_rate": 0.01},
				{"postal_code": "60601", "state": "IL", "county_rate": 0.01, "combined_rate": 0.01}
			]}`,
		},
		{
			name: "combined rate does not equal component sum",
			dataset: `{"version": "x", "records": [
				{"postal_code": "60601", "state": "IL", "county_rate": 0.01, "city_rate": 0.005, "combined_rate": 0.02}
			]}`,
		},
		{
			name: "combined rate out of range",
			dataset: `{"version": "x", "records": [
				{"postal_code": "60601", "state": "IL", "county_rate": 0.3, "combined_rate": 0.3}
			]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, err := localrates.NewResolver()
			require.NoError(t, err)

			err = resolver.LoadDataset([]byte(tt.dataset))
			require.Error(t, err)

			// The embedded snapshot stays active after a rejected load
			assert.Equal(t, business.RateSourceExact, resolver.Resolve("60601", "IL").Source)
		})
	}
}

func TestResolver_LoadDatasetSwapsSnapshot(t *testing.T) {
	resolver, err := localrates.NewResolver()
	require.NoError(t, err)

	err = resolver.LoadDataset([]byte(`{
		"version": "test.9",
		"state_averages": {"mi": 0.005},
		"records": [
			{"postal_code": "48201", "state": "MI", "county_rate": 0.0075, "combined_rate": 0.0075}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "test.9", resolver.Version())
	assert.Equal(t, business.RateSourceExact, resolver.Resolve("48201", "MI").Source)
	// State keys normalize to uppercase on load
	assert.Equal(t, business.RateSourceAverage, resolver.Resolve("00000", "MI").Source)
	// Old records are gone
	assert.Equal(t, business.RateSourceNone, resolver.Resolve("60601", "XX").Source)
}
