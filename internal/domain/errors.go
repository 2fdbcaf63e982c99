package domain

import "errors"

var (
	ErrInvalidArea            = errors.New("invalid area")
	ErrInsufficientSpace      = errors.New("insufficient space")
	ErrBatchNotFound          = errors.New("batch not found")
	ErrInvalidBatchTransition = errors.New("invalid batch transition")
	ErrPersistence            = errors.New("persistence failure")
)
