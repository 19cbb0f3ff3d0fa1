package models

import (
	"errors"
	"fmt"
)

var (
	ErrLeagueNotFound   = errors.New("league not found")
	ErrVersionConflict  = errors.New("league document was modified concurrently")
	ErrWeekSubmitted    = errors.New("week already submitted")
	ErrFixtureNotFound  = errors.New("fixture not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrInvalidPassword  = errors.New("invalid username or password")
	ErrAdminUnavailable = errors.New("admin password not configured")
	ErrForbidden        = errors.New("not allowed to act for this user")
)

// ValidationError reports malformed input: team lists, week counts, picks and
// anything else rejected before it reaches the document.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// AggregationError reports settings the scoring engine cannot work with.
type AggregationError struct {
	Reason string
}

func (e *AggregationError) Error() string {
	return "cannot compute scores: " + e.Reason
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsAggregationError reports whether err wraps an AggregationError.
func IsAggregationError(err error) bool {
	var a *AggregationError
	return errors.As(err, &a)
}
