package apperror

import "errors"

var (
	ErrStepOutOfRange  = errors.New("step is out of history range")
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrSessionNotFound = errors.New("session not found")
)
