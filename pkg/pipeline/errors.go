package pipeline

import "errors"

var (
	// ErrAlreadyProcessed means the input carries the processed marker
	ErrAlreadyProcessed = errors.New("image has already been processed")
	// ErrConfigurationAborted means the parameter provider was cancelled
	ErrConfigurationAborted = errors.New("configuration aborted")
	// ErrEmptyRegionSet means no region survived detection and sampling. The
	// outputs are still produced with every cell unassigned.
	ErrEmptyRegionSet = errors.New("no plant regions found")
)

// Status is the outcome of a run
type Status int

const (
	StatusOK Status = iota
	StatusAlreadyProcessed
	StatusCancelled
	StatusNoRegions
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusAlreadyProcessed:
		return "already_processed"
	case StatusCancelled:
		return "cancelled"
	case StatusNoRegions:
		return "no_regions"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
