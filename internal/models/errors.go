package models

import "errors"

// Custom errors
var (
	// ErrNotFound indicates reconciliation against a nonexistent prediction, model or game id
	ErrNotFound = errors.New("record not found")

	// ErrDataInsufficient indicates fewer rows than the minimum sample threshold
	ErrDataInsufficient = errors.New("insufficient data")

	// ErrUpstreamUnavailable indicates a provider call failed or timed out
	ErrUpstreamUnavailable = errors.New("upstream provider unavailable")

	// ErrInvalid indicates malformed input
	ErrInvalid = errors.New("invalid input")

	// ErrAlreadyReconciled indicates an outcome write against an already reconciled prediction
	ErrAlreadyReconciled = errors.New("prediction already reconciled")

	// ErrDuplicateKey indicates a duplicate key violation
	ErrDuplicateKey = errors.New("duplicate key violation")
)
