package consts

import "fmt"

var (
	ErrNotFound        = fmt.Errorf("not found")
	ErrAlreadyExists   = fmt.Errorf("already exists")
	ErrNoUUID          = fmt.Errorf("uuid is required")
	ErrInvalidArg      = fmt.Errorf("invalid value of argument")
	ErrAccessForbidden = fmt.Errorf("access forbidden")
	ErrNotConfigured   = fmt.Errorf("not configured")
	ErrImmutableRecord = fmt.Errorf("record is immutable")
	ErrWrongType       = fmt.Errorf("wrong type")
)
