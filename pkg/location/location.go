package location

import (
	"fmt"
)

// Location is a single position sample produced by a provider.
// It is passed by value, providers attach a fresh Extras for every sample.
type Location struct {
	Provider  string  `json:"provider"`
	Latitude  float64 `json:"lat"`     // degrees
	Longitude float64 `json:"lon"`     // degrees
	Altitude  float64 `json:"alt"`     // meters
	Speed     float32 `json:"speed"`   // m/s
	Bearing   float32 `json:"bearing"` // degrees
	Status    Status  `json:"status"`

	// Time is the capture time in monotonic milliseconds, not a wall-clock time
	Time int64 `json:"time"`

	Extras Extras `json:"extras,omitempty"`
}

func New(provider string) Location {
	return Location{Provider: provider}
}

func (l Location) String() string {
	return fmt.Sprintf("Location[%s](%d) lat: %f lon: %f alt: %f speed: %f bearing: %f status: %s",
		l.Provider, l.Time, l.Latitude, l.Longitude, l.Altitude, l.Speed, l.Bearing, l.Status)
}

// Extras is the auxiliary key-value attachment of a Location
type Extras map[string]any

// PutInt stores an integer value
func (e Extras) PutInt(key string, value int) {
	e[key] = value
}

// Int returns the integer stored under key
func (e Extras) Int(key string) (int, bool) {
	if e == nil {
		return 0, false
	}

	switch v := e[key].(type) {
	case int:
		return v, true
	// JSON decoded extras come back as float64
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func (e Extras) PutString(key string, value string) {
	e[key] = value
}

func (e Extras) String(key string) (string, bool) {
	if e == nil {
		return "", false
	}

	v, ok := e[key].(string)
	return v, ok
}

// Clone returns a shallow copy, nil stays nil
func (e Extras) Clone() Extras {
	if e == nil {
		return nil
	}

	c := make(Extras, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}
