package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsYearKey(t *testing.T) {
	assert.True(t, IsYearKey("2019"))
	assert.True(t, IsYearKey("0199"))
	assert.False(t, IsYearKey("Pop_2019"))
	assert.False(t, IsYearKey("201"))
	assert.False(t, IsYearKey("20a9"))
	assert.False(t, IsYearKey("1e10"))
	assert.False(t, IsYearKey(" 201"))
}

func TestExtractYears_OnlyFourDigitKeys(t *testing.T) {
	p := NewProperties("State", "AL", "2019", 3, "Pop_2019", 100, "Rate_2019", 3.0, "Notes", "x")

	assert.Equal(t, []Year{"2019"}, ExtractYears(p))
}

func TestExtractYears_EnumerationOrder(t *testing.T) {
	p := NewProperties("State", "AL", "2021", 1, "0999", 1, "2019", 1, "2020", 1)

	// Canonical integer keys ascend; "0999" keeps its document position after them.
	assert.Equal(t, []Year{"2019", "2020", "2021", "0999"}, ExtractYears(p))
}

func TestExtractYears_NoYears(t *testing.T) {
	assert.Empty(t, ExtractYears(NewProperties("State", "AL")))
}

func TestYearsFromCollection_Empty(t *testing.T) {
	_, err := YearsFromCollection(&FeatureCollection{})
	require.ErrorIs(t, err, ErrEmptyDataset)

	_, err = YearsFromCollection(nil)
	require.ErrorIs(t, err, ErrEmptyDataset)
}

func TestYearsFromCollection_UsesFirstFeature(t *testing.T) {
	fc := &FeatureCollection{Features: []Feature{
		{Properties: NewProperties("State", "AL", "2018", 1, "2019", 2)},
		{Properties: NewProperties("State", "AK", "2018", 1, "2019", 2)},
	}}

	years, err := YearsFromCollection(fc)
	require.NoError(t, err)
	assert.Equal(t, []Year{"2018", "2019"}, years)
}

func TestValidateSchema(t *testing.T) {
	t.Run("uniform", func(t *testing.T) {
		fc := &FeatureCollection{Features: []Feature{
			{Properties: NewProperties("State", "AL", "2019", 1, "2020", 2)},
			{Properties: NewProperties("State", "AK", "2020", 1, "2019", 2)},
		}}
		assert.NoError(t, ValidateSchema(fc))
	})

	t.Run("missing year", func(t *testing.T) {
		fc := &FeatureCollection{Features: []Feature{
			{Properties: NewProperties("State", "AL", "2019", 1, "2020", 2)},
			{Properties: NewProperties("State", "AK", "2019", 1)},
		}}
		err := ValidateSchema(fc)
		require.ErrorIs(t, err, ErrInconsistentSchema)
		assert.Contains(t, err.Error(), `missing year "2020"`)
		assert.Contains(t, err.Error(), "AK")
	})

	t.Run("extra year", func(t *testing.T) {
		fc := &FeatureCollection{Features: []Feature{
			{Properties: NewProperties("State", "AL", "2019", 1)},
			{Properties: NewProperties("State", "AK", "2019", 1, "2021", 4)},
		}}
		err := ValidateSchema(fc)
		require.ErrorIs(t, err, ErrInconsistentSchema)
		assert.Contains(t, err.Error(), `extra year "2021"`)
	})

	t.Run("empty", func(t *testing.T) {
		require.ErrorIs(t, ValidateSchema(&FeatureCollection{}), ErrEmptyDataset)
	})
}

func TestYearKeys(t *testing.T) {
	y := Year("2019")
	assert.Equal(t, "Pop_2019", y.PopulationKey())
	assert.Equal(t, "Rate_2019", y.RateKey())
}
