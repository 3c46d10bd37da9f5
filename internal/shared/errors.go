package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Persistence errors
	ErrPersistence   = fmt.Errorf("persistence write failed")
	ErrQuotaExceeded = fmt.Errorf("storage quota exceeded")
	ErrNoMigrations  = fmt.Errorf("no applied migrations to roll back")

	// Input validation errors
	ErrInvalidPayload  = fmt.Errorf("invalid payload")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
