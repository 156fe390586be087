package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails field
// validation (e.g. missing name, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when well-formed input breaks a domain rule:
// activity dates outside the trip, duplicate or self invitations, moving a
// started trip into the past.
// Handlers should map this to HTTP 400.
var ErrConflict = errors.New("domain conflict")

// ErrForbidden is returned when the caller is not the owner, not a member,
// or not the target of the resource being touched.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthenticated is returned when a request carries no usable bearer token.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrInvalidExternalToken is returned when a third-party identity token
// fails verification.
var ErrInvalidExternalToken = errors.New("invalid external token")

// ErrTokenIssue is returned when a signed token cannot be produced.
var ErrTokenIssue = errors.New("token issue")

// ErrDataAccess wraps any failure to load data from the store.
// The caller should treat the request as failed and retryable.
var ErrDataAccess = errors.New("data access error")

// ErrPersistence wraps any failure to write a mutation to the store.
// The operation must be treated as not applied.
var ErrPersistence = errors.New("persistence error")

// ErrEmailNotSent is returned when the email sender reports a failed delivery.
// Handlers should map this to HTTP 502.
var ErrEmailNotSent = errors.New("email not sent")
