package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. malformed subdomain, missing spreadsheet column).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write collides with a uniqueness rule,
// such as a subdomain or email that is already taken.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrUnauthorized is returned when a request carries no session, an unknown
// session, or credentials that do not match.
// Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the session is valid but the user may not
// act on the target resource (another merchant's store, an admin route).
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")
