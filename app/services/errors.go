package services

import "errors"

// Sentinel errors surfaced across the service layer. Controllers map these
// onto HTTP status codes; nothing below the transport retries them.
var (
	// ErrInvalidQuery marks malformed search or record input the
	// normalizer could not reduce to something usable.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrNoActiveSession means a classification arrived for a user with
	// no active batch. User-correctable: start a session first.
	ErrNoActiveSession = errors.New("no active data-entry session")

	// ErrSessionConflict means two session starts for the same user
	// raced; the loser retries rather than silently merging.
	ErrSessionConflict = errors.New("another session start is in flight for this user")

	// ErrCollectorNotFound rejects a session start against an unknown
	// collector.
	ErrCollectorNotFound = errors.New("collector not found")

	// ErrStorageUnavailable wraps persistence-layer failures. Fatal for
	// the request; retrying a non-idempotent signature insert without a
	// deduplication token risks duplicate rows, so retries belong to the
	// caller.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
