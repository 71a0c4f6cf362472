package location

import "fmt"

// Accuracy is the horizontal accuracy class of a provider
type Accuracy int32

const (
	AccuracyFine   Accuracy = 1
	AccuracyCoarse Accuracy = 2
)

func (a Accuracy) String() string {
	switch a {
	case AccuracyFine:
		return "fine"
	case AccuracyCoarse:
		return "coarse"
	default:
		return fmt.Sprintf("%d", int(a))
	}
}

// Power is the power requirement class of a provider
type Power int32

const (
	PowerNoRequirement Power = 0
	PowerLow           Power = 1
	PowerMedium        Power = 2
	PowerHigh          Power = 3
)

func (p Power) String() string {
	switch p {
	case PowerNoRequirement:
		return "none"
	case PowerLow:
		return "low"
	case PowerMedium:
		return "medium"
	case PowerHigh:
		return "high"
	default:
		return fmt.Sprintf("%d", int(p))
	}
}

// Status is the availability of a provider
type Status int32

const (
	StatusOutOfService           Status = 0
	StatusTemporarilyUnavailable Status = 1
	StatusAvailable              Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOutOfService:
		return "out_of_service"
	case StatusTemporarilyUnavailable:
		return "temporarily_unavailable"
	case StatusAvailable:
		return "available"
	default:
		return fmt.Sprintf("%d", int(s))
	}
}
