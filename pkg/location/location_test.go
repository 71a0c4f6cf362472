package location

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtras(t *testing.T) {
	e := Extras{}
	e.PutInt("extraTest", 24)
	e.PutString("source", "fixture")

	v, ok := e.Int("extraTest")
	assert.True(t, ok)
	assert.Equal(t, 24, v)

	_, ok = e.Int("source")
	assert.False(t, ok)

	s, ok := e.String("source")
	assert.True(t, ok)
	assert.Equal(t, "fixture", s)

	var empty Extras
	_, ok = empty.Int("extraTest")
	assert.False(t, ok)
	_, ok = empty.String("source")
	assert.False(t, ok)
	assert.Nil(t, empty.Clone())
}

func TestExtrasCloneIsIndependent(t *testing.T) {
	e := Extras{}
	e.PutInt("extraTest", 24)

	c := e.Clone()
	c.PutInt("extraTest", 1)

	v, _ := e.Int("extraTest")
	assert.Equal(t, 24, v)
}

func TestLocationJSON(t *testing.T) {
	loc := Location{
		Provider:  "test",
		Longitude: 3,
		Altitude:  10000,
		Speed:     10,
		Bearing:   3,
		Status:    StatusAvailable,
		Time:      15000,
		Extras:    Extras{"extraTest": 24},
	}

	data, err := json.Marshal(loc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"test","lat":0,"lon":3,"alt":10000,"speed":10,"bearing":3,"status":2,"time":15000,"extras":{"extraTest":24}}`, string(data))

	var decoded Location
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Numbers come back as float64 but Int still finds them
	v, ok := decoded.Extras.Int("extraTest")
	assert.True(t, ok)
	assert.Equal(t, 24, v)
}

func TestCriteriaStrings(t *testing.T) {
	assert.Equal(t, "coarse", AccuracyCoarse.String())
	assert.Equal(t, "fine", AccuracyFine.String())
	assert.Equal(t, "7", Accuracy(7).String())
	assert.Equal(t, "none", PowerNoRequirement.String())
	assert.Equal(t, "high", PowerHigh.String())
	assert.Equal(t, "available", StatusAvailable.String())
	assert.Equal(t, "out_of_service", StatusOutOfService.String())
}
