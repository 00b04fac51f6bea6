package service

import "errors"

var (
	// ErrUnauthorized is returned by mutations attempted without an identity
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUserNotFound is returned when the identity has no user record
	ErrUserNotFound = errors.New("user not found")

	// ErrIntegrityViolation is returned when a unique key matches more than one record
	ErrIntegrityViolation = errors.New("integrity violation: more than one user matches subject")

	// ErrDuplicateSubject is returned by UserRepository.Create on a unique key conflict
	ErrDuplicateSubject = errors.New("user with subject already exists")

	// ErrInvalidPoints is returned for negative point values
	ErrInvalidPoints = errors.New("points must not be negative")

	// ErrUnknownChallenge is returned by a PointsPolicy for ids outside the catalog
	ErrUnknownChallenge = errors.New("unknown challenge")

	// ErrPointsMismatch is returned by a PointsPolicy when points differ from the catalog value
	ErrPointsMismatch = errors.New("points do not match challenge value")
)
