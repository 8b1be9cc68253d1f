package assignment

import "time"

// Transition derives the lifecycle status of an assignment from its date range and today's date.
// All inputs are compared as calendar dates; callers pass dates already truncated to the day.
func Transition(current Status, start time.Time, end *time.Time, today time.Time) (Status, error) {
	if current == StatusCancelled {
		return StatusCancelled, nil
	}

	if end == nil {
		if start.After(today) {
			return StatusPending, nil
		}
		return StatusApproved, nil
	}

	if !start.Before(*end) {
		return "", ErrInvalidDateRange
	}

	switch {
	case end.Before(today):
		return StatusExpired, nil
	case start.After(today):
		return StatusPending, nil
	default:
		return StatusApproved, nil
	}
}
