package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrInvalidThresholds = errors.New("invalid scoring thresholds")
	ErrInvalidTuning     = errors.New("invalid difficulty tuning")
)
