package location

import "context"

// Reporter accepts samples from a provider, the Manager is the usual implementation
type Reporter interface {
	ReportLocationChanged(loc Location) error
}

// Provider is the capability interface every location source registers with
type Provider interface {
	Name() string
	Accuracy() Accuracy
	PowerRequirement() Power

	Enable()
	Disable()
	IsEnabled() bool

	Status(extras Extras) Status
}

// Capabilities are optional static properties of a provider
type Capabilities interface {
	HasMonetaryCost() bool
	RequiresCell() bool
	RequiresNetwork() bool
	RequiresSatellite() bool
	SupportsAltitude() bool
	SupportsBearing() bool
	SupportsSpeed() bool
}

// Listener receives samples fanned out by the Manager
type Listener interface {
	OnLocationChanged(ctx context.Context, loc Location) error
	Close() error
}

// Description is a snapshot of the static properties of a provider
type Description struct {
	Name              string   `json:"name"`
	Accuracy          Accuracy `json:"accuracy"`
	PowerRequirement  Power    `json:"power"`
	Enabled           bool     `json:"enabled"`
	HasMonetaryCost   bool     `json:"hasMonetaryCost"`
	RequiresCell      bool     `json:"requiresCell"`
	RequiresNetwork   bool     `json:"requiresNetwork"`
	RequiresSatellite bool     `json:"requiresSatellite"`
	SupportsAltitude  bool     `json:"supportsAltitude"`
	SupportsBearing   bool     `json:"supportsBearing"`
	SupportsSpeed     bool     `json:"supportsSpeed"`
}

func Describe(p Provider) Description {
	d := Description{
		Name:             p.Name(),
		Accuracy:         p.Accuracy(),
		PowerRequirement: p.PowerRequirement(),
		Enabled:          p.IsEnabled(),
	}

	if c, ok := p.(Capabilities); ok {
		d.HasMonetaryCost = c.HasMonetaryCost()
		d.RequiresCell = c.RequiresCell()
		d.RequiresNetwork = c.RequiresNetwork()
		d.RequiresSatellite = c.RequiresSatellite()
		d.SupportsAltitude = c.SupportsAltitude()
		d.SupportsBearing = c.SupportsBearing()
		d.SupportsSpeed = c.SupportsSpeed()
	}

	return d
}

// ListenerFunc adapts a plain function to a Listener without a Close step
type ListenerFunc func(ctx context.Context, loc Location) error

func (f ListenerFunc) OnLocationChanged(ctx context.Context, loc Location) error {
	return f(ctx, loc)
}

func (f ListenerFunc) Close() error {
	return nil
}
