package transport

import "errors"

var (
	// ErrLinkClosed is returned by SendMessage when the Link has shut
	// down by the time the send completes.
	ErrLinkClosed = errors.New("transport: link closed")

	// ErrSendQueueFull names a full outgoing queue. Link does not return
	// it: SendMessage blocks until the write completes instead.
	ErrSendQueueFull = errors.New("transport: send queue full")
)
