package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperties_UnmarshalPreservesOrder(t *testing.T) {
	var p Properties
	require.NoError(t, json.Unmarshal([]byte(`{"State":"Alabama","2020":934,"Pop_2020":5024279,"2019":930,"Notes":"x"}`), &p))

	assert.Equal(t, []string{"State", "2020", "Pop_2020", "2019", "Notes"}, p.Keys())
	assert.Equal(t, 5, p.Len())

	v, ok := p.Get("2020")
	require.True(t, ok)
	assert.Equal(t, json.Number("934"), v)
}

func TestProperties_DuplicateKeyKeepsFirstPositionLastValue(t *testing.T) {
	var p Properties
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":2,"a":3}`), &p))

	assert.Equal(t, []string{"a", "b"}, p.Keys())
	v, _ := p.Get("a")
	assert.Equal(t, json.Number("3"), v)
}

func TestProperties_NullAndInvalid(t *testing.T) {
	var p Properties
	require.NoError(t, json.Unmarshal([]byte(`null`), &p))
	assert.Equal(t, 0, p.Len())

	err := json.Unmarshal([]byte(`[1,2]`), &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode properties")
}

func TestProperties_MarshalRoundTripsOrder(t *testing.T) {
	p := NewProperties("State", "Texas", "2019", 3615, "Rate_2019", 12.5)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"State":"Texas","2019":3615,"Rate_2019":12.5}`, string(data))
}

func TestFeature_State(t *testing.T) {
	assert.Equal(t, "Ohio", Feature{Properties: NewProperties("State", "Ohio")}.State())
	assert.Equal(t, "", Feature{}.State())
	assert.Equal(t, "", Feature{Properties: NewProperties("State", nil)}.State())
}

func TestFeatureCollection_Decode(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type":"Feature","properties":{"State":"Alabama","2019":930},"geometry":{"type":"Point","coordinates":[-86.8,32.8]}}
		]
	}`)
	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(data, &fc))

	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Alabama", fc.Features[0].State())
	require.NotNil(t, fc.Features[0].Geometry)
	assert.Equal(t, "Point", fc.Features[0].Geometry.Type)
}
