package wbp

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrDataIntegrity indicates inputs that do not fit together: corpora
	// with different sentence counts, misaligned sentences, a normalized
	// corpus that is not a single line, or an output of the wrong length.
	ErrDataIntegrity = errors.New("wbp: data integrity violation")

	// ErrConfiguration indicates an unusable option value.
	ErrConfiguration = errors.New("wbp: invalid configuration")

	// ErrWorkerFailure indicates a scoring worker failed and the pass was aborted.
	ErrWorkerFailure = errors.New("wbp: scoring worker failed")
)
