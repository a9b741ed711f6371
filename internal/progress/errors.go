package progress

import "errors"

var (
	// ErrNotFound is returned by a Backend when nothing is persisted for a user.
	ErrNotFound = errors.New("progress not found")

	// ErrInvalidUsername is returned for usernames that cannot name a progress table.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrNotLoaded is returned when mutating a table that was never loaded in this process.
	ErrNotLoaded = errors.New("progress table not loaded")

	// ErrUnknownBird is returned when a bird name is not part of the user's table.
	ErrUnknownBird = errors.New("unknown bird")
)
