package handshake

import "context"

// IdentityClient is the sole writer of this node's signatures, mirroring
// tokenchannel.IdentityClient — the handshake package never holds a
// private key itself, it asks this collaborator for every sig_i/sig_r.
type IdentityClient interface {
	Sign(ctx context.Context, buf []byte) ([64]byte, error)
	PublicKey() [32]byte
}
