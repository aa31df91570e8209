package channelpool

import "errors"

var (
	// ErrUnknownChannelID is returned by Lookup when no live receiving
	// entry carries the given channel_id.
	ErrUnknownChannelID = errors.New("channelpool: unknown channel id")

	// ErrUnknownPeer is returned by SendingKey for a peer that has no
	// entry in the pool, or whose sending entry has been dropped.
	ErrUnknownPeer = errors.New("channelpool: unknown peer")
)
