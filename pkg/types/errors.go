package types

import "errors"

// Domain errors for corpus validation
var (
	ErrCorpusMisaligned  = errors.New("corpus documents and vectors are misaligned")
	ErrDuplicatePath     = errors.New("duplicate relative path in corpus")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
