package service

import (
	"errors"
	"fmt"

	"llm_gateway/internal/policy"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ValidationError reports bad or missing user input. Message is safe to show.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// AuthorizationError means a known user lacks the entitlement for a model.
type AuthorizationError struct {
	Reason  policy.Reason
	ModelID string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("access to model %q denied: %s", e.ModelID, e.Reason)
}

// PersistenceError wraps store failures the user is waiting on.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
