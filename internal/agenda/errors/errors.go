package errors

import "errors"

var (
	// ErrDailyLimitReached means the date bucket is already at capacity.
	ErrDailyLimitReached = errors.New("daily collection limit reached for date")

	// ErrUnknownWeekday means the name is not part of the weekly collection pattern.
	ErrUnknownWeekday = errors.New("weekday is not a collection day")
)
