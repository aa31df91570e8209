package tokenchannel

import "context"

// IdentityClient is the sole writer of this node's signatures. A token
// channel never holds a private key itself: every new_token, reset_token
// and receipt signature is requested from this interface, matching §5's
// "identity signer is the sole writer of signatures" and grounded on
// components/identity/src/client.rs in the original implementation plus
// the teacher's actor-style Config structs (htlcswitch/switch.go's Config
// wires in collaborators as interfaces rather than concrete types).
type IdentityClient interface {
	// Sign requests a detached signature over buf under this node's
	// long-term identity key.
	Sign(ctx context.Context, buf []byte) ([64]byte, error)

	// PublicKey returns this node's long-term identity public key.
	PublicKey() [32]byte
}
