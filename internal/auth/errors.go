package auth

import "errors"

// ErrNoDatabase is returned when the sqlite session store is selected without a database.
var ErrNoDatabase = errors.New("sqlite session store requires a database")
