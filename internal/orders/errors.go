package orders

import "errors"

var (
	// ErrStoreUnavailable wraps every failure returned by the backing table.
	ErrStoreUnavailable = errors.New("order store unavailable")
	// ErrPublishUnavailable wraps every failure returned by the event publisher.
	ErrPublishUnavailable = errors.New("event publish unavailable")
)
