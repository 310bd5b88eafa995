package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidIdentity    = errors.New("invalid identity")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidInput       = errors.New("invalid input")

	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantExists   = errors.New("tenant already exists")

	ErrTransactionFailed = errors.New("transaction failed")

	ErrAPIKeyRequired = errors.New("api key required")
	ErrInvalidAPIKey  = errors.New("invalid api key")
)

// ForbiddenError is returned when an identity was resolved but its role or
// scope is insufficient. Requirement names the class of access that was
// missing ("ADMIN", "tenant scope", ...) and never the specific resource.
type ForbiddenError struct {
	Requirement string
}

func (e *ForbiddenError) Error() string {
	if e.Requirement == "" {
		return ErrForbidden.Error()
	}
	return fmt.Sprintf("forbidden: requires %s", e.Requirement)
}

// Is makes errors.Is(err, ErrForbidden) true for every ForbiddenError.
func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// Forbidden returns a ForbiddenError for the given requirement.
func Forbidden(requirement string) error {
	return &ForbiddenError{Requirement: requirement}
}
