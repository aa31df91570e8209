package asyncrpc

import (
	"context"

	"github.com/creditmesh/corenet/ccrypto"
)

type signReq struct {
	buf []byte
}

// IdentityService is the sole writer of this node's long-term signing
// key: one goroutine owns the ccrypto.PrivateKey outright and signs
// every buffer handed to it through its op channel, so every other
// actor in the process (token channels, the handshake machine, the
// router) only ever touches it through Sign/PublicKey and the key
// material itself never escapes this one goroutine. Implements the
// IdentityClient interface both tokenchannel and handshake depend on.
type IdentityService struct {
	priv *ccrypto.PrivateKey
	pub  [32]byte

	ops  chan *Call[signReq, [64]byte]
	quit chan struct{}
}

// NewIdentityService starts an IdentityService actor signing with priv.
func NewIdentityService(priv *ccrypto.PrivateKey) *IdentityService {
	s := &IdentityService{
		priv: priv,
		pub:  priv.PublicKey(),
		ops:  make(chan *Call[signReq, [64]byte]),
		quit: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *IdentityService) run() {
	for {
		select {
		case call := <-s.ops:
			sig := s.priv.Sign(call.Req.buf)
			call.Reply(sig)
		case <-s.quit:
			return
		}
	}
}

// Stop shuts the actor's goroutine down. Calls already in flight on ops
// when Stop is called may never receive a reply; callers should bound
// every Sign with a context deadline, as tokenchannel and handshake do.
func (s *IdentityService) Stop() {
	close(s.quit)
}

// Sign requests a detached signature over buf. Safe for concurrent use
// by any number of callers.
func (s *IdentityService) Sign(ctx context.Context, buf []byte) ([64]byte, error) {
	return Do(ctx, s.ops, signReq{buf: buf})
}

// PublicKey returns this node's long-term identity public key. No
// round trip through the actor is needed: the key is immutable for the
// service's lifetime.
func (s *IdentityService) PublicKey() [32]byte {
	return s.pub
}
