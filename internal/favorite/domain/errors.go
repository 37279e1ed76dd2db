package domain

import "errors"

// Error kinds. Callers test for them with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)

// InfrastructureError reports an unexpected failure of a backing store.
// Err keeps the original cause for diagnostics.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return e.Op + ": infrastructure failure: " + e.Err.Error()
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// IsInfrastructure reports whether err carries an InfrastructureError.
func IsInfrastructure(err error) bool {
	var infraErr *InfrastructureError
	return errors.As(err, &infraErr)
}
