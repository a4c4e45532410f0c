/*
errors.go - Centralized error types for the engine and its stores

PURPOSE:
  All error types in one place for consistency and discoverability.
  The pure calculation functions never return errors; these are raised by
  the service layer and the stores around it.

ERROR CATEGORIES:
  1. Lookup errors - Missing employee or record
  2. Validation errors - Malformed records, patterns, or periods
  3. Conflict errors - Overlapping sickness records

USAGE:
  if errors.Is(err, generic.ErrOverlappingRecord) {
      var overlap *sickness.OverlapError
      errors.As(err, &overlap)
  }

SEE ALSO:
  - sickness/record_service.go: Raises overlap/validation errors
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRecordNotFound is returned when a sickness record doesn't exist.
	ErrRecordNotFound = errors.New("sickness record not found")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidRecord is returned when a sickness record fails validation.
	ErrInvalidRecord = errors.New("invalid sickness record")

	// ErrOverlappingRecord is returned when a sickness record would overlap
	// another record of the same employee.
	ErrOverlappingRecord = errors.New("sickness record overlaps an existing record")

	// ErrDuplicateWeekday is returned when a work pattern has two entries for
	// the same weekday.
	ErrDuplicateWeekday = errors.New("work pattern has more than one entry for a weekday")

	// ErrInvalidWorkPattern is returned when a replacement pattern names a
	// weekday that does not exist.
	ErrInvalidWorkPattern = errors.New("invalid work pattern")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidRecord) ||
		errors.Is(err, ErrDuplicateWeekday) ||
		errors.Is(err, ErrInvalidWorkPattern)
}

// IsConflict returns true if the error reports a clash with stored data.
func IsConflict(err error) bool {
	return errors.Is(err, ErrOverlappingRecord)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}
