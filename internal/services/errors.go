package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation wraps every request-shape failure; handlers map it to 400.
	ErrValidation      = errors.New("validation failed")
	ErrChannelNotFound = errors.New("channel not found")
	ErrAlertNotFound   = errors.New("alert not found")
	ErrLabNotFound     = errors.New("lab not found")
	ErrApiKeyNotFound  = errors.New("api key not found")
	ErrAccessNotFound  = errors.New("access grant not found")
	ErrAlreadyGranted  = errors.New("access already granted")
	ErrChannelExists   = errors.New("channel already exists")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
