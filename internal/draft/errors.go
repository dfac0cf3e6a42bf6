package draft

import "errors"

var (
	// ErrStoreFrozen is returned when a structural mutation arrives while a
	// save is in flight.
	ErrStoreFrozen = errors.New("draft is frozen while a save is in progress")
)
