package engine

import "fmt"

// ValidationError is raised at the batch boundary before any computation:
// empty exposure set, unresolved scenario, non-positive horizon, or an
// exposure missing a required field. It names the offending field and is
// never retried.
type ValidationError struct {
	Field      string
	Reason     string
	ExposureID uint
}

func (e *ValidationError) Error() string {
	if e.ExposureID != 0 {
		return fmt.Sprintf("validation failed on exposure %d, field %s: %s", e.ExposureID, e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ComputationError is raised when an intermediate result is numerically
// invalid. It is always raised before persistence, so a corrupt artifact is
// never stored.
type ComputationError struct {
	ExposureID uint
	Reason     string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation failed on exposure %d: %s", e.ExposureID, e.Reason)
}
