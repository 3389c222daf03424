package secondary

import "errors"

// ErrUnknownID is returned when a stream names a secondary ID this
// registry has no backend for.
var ErrUnknownID = errors.New("secondary: unknown backend id")
