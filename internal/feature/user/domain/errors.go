// Package domain defines domain-level errors for the user feature.
package domain

import "errors"

// Domain errors for the user/subscription store.
// Adapters wrap driver errors into these so that upper layers can map them with errors.Is.
var (
	// ErrUserNotFound indicates that no user exists for the given identity key.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateIdentity indicates that a user with the same identity key already exists.
	// This is returned by Create when two first logins race.
	ErrDuplicateIdentity = errors.New("user with this identity already exists")

	// ErrValidation indicates that a schema constraint was violated on save
	// (duplicate email, negative counters, duplicate usage days, ...).
	ErrValidation = errors.New("validation failed")

	// ErrInvalidPlan indicates that a subscription plan is not one of Free, Starter or Pro.
	ErrInvalidPlan = errors.New("invalid subscription plan")

	// ErrUpstreamUnavailable indicates that the store or an external API could not be reached in time.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
