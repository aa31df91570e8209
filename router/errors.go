package router

import "errors"

var (
	// ErrUnknownFriend is returned when an operation names a friend the
	// Router has no token channel for.
	ErrUnknownFriend = errors.New("router: unknown friend")

	// ErrInvalidRoute is returned by SendLocalRequest when the supplied
	// route doesn't start with the local public key.
	ErrInvalidRoute = errors.New("router: route does not start at local node")

	// ErrDuplicateRequestID is returned when a locally originated
	// request reuses a request_id already outstanding.
	ErrDuplicateRequestID = errors.New("router: duplicate request_id")
)
