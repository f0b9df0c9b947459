package sketch

import "errors"

var (
	// ErrInvalidConfiguration is returned by constructors when a sizing
	// parameter is out of range. No usable instance is returned with it.
	ErrInvalidConfiguration = errors.New("sketch: invalid configuration")

	// ErrIncompatibleEstimator is returned when merging estimators whose
	// register counts or hashers differ.
	ErrIncompatibleEstimator = errors.New("sketch: incompatible estimator")
)
