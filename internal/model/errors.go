package model

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrNoActiveTimer       = errors.New("no active timer")
	ErrInvalidTransition   = errors.New("invalid timer transition")
	ErrDuplicateCompletion = errors.New("timer already completed")
)
