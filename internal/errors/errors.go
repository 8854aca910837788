package errors

import "errors"

// Sentinel errors shared by the service and API layers. Services wrap them with
// fmt.Errorf("...: %w", err) and the API layer maps them to HTTP statuses with errors.Is.

var (
	// ErrNotFound signifies that a requested session, character or row does not exist.
	// Mapped to 404 Not Found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that client input failed validation, e.g. an empty turn.
	// Mapped to 400 Bad Request.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that the operation conflicts with the current resource state.
	// Mapped to 409 Conflict.
	ErrConflict = errors.New("resource conflict")

	// ErrResponsePending is returned when a send is attempted while the previous
	// send of the same session is still awaiting its reply.
	// Mapped to 409 Conflict.
	ErrResponsePending = errors.New("a response is already pending")

	// ErrSessionClosed is returned by operations on a session that has been closed.
	// Mapped to 410 Gone.
	ErrSessionClosed = errors.New("session closed")

	// ErrPermission signifies that the caller does not own the requested resource.
	// Mapped to 403 Forbidden.
	ErrPermission = errors.New("permission denied")

	// ErrUnauthenticated signifies that the request carried neither a valid token nor a device id.
	// Mapped to 401 Unauthorized.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInternal signifies an unexpected server-side failure.
	// Mapped to 500 Internal Server Error.
	ErrInternal = errors.New("internal server error")
)
