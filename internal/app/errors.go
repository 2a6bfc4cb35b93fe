package app

import (
	"errors"
	"fmt"
)

// Failure kinds reported by Run. Match with errors.Is.
var (
	ErrMissingInput      = errors.New("missing input")
	ErrFeatureExtraction = errors.New("feature extraction failed")
	ErrEncoding          = errors.New("encoding failed")
	ErrSimulation        = errors.New("simulation failed")
	ErrMuxing            = errors.New("muxing failed")
)

// Error ties a failure kind to the operation that hit it and its cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

func fail(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}
