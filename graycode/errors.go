package graycode

import "github.com/pkg/errors"

var (
	// ErrInvalidInput is wrapped by every error reported for a malformed
	// frame sequence or mismatched dimensions.
	ErrInvalidInput = errors.New("invalid structured light input")

	// ErrInsufficientCorrespondence is returned when no error tolerance level
	// yields the minimum required number of reliable correspondence pairs.
	ErrInsufficientCorrespondence = errors.New("not enough reliable correspondence points")
)
