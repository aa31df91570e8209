package tokenchannel

import (
	"context"
	"sort"

	"github.com/creditmesh/corenet/ccrypto"
	"github.com/creditmesh/corenet/mcwire"
	"github.com/creditmesh/corenet/mutualcredit"
)

// EmitOutgoing implements §4.2.2: batch the queued operations, apply
// them locally, bump move_token_counter, compute info_hash and request
// new_token from the identity service. Must only be called while the
// channel holds the token (StatusConsistentIn).
func (c *Channel) EmitOutgoing(ctx context.Context) (*mcwire.MoveToken, error) {
	if c.status == StatusInconsistent {
		return nil, ErrChannelInconsistent
	}
	if c.status != StatusConsistentIn {
		return nil, ErrNotTokenHolder
	}

	tags := make([]string, 0, len(c.pendingOps))
	for tag, ops := range c.pendingOps {
		if len(ops) > 0 {
			tags = append(tags, string(tag))
		}
	}
	sort.Strings(tags)

	currencyOps := make([]mcwire.CurrencyOps, 0, len(tags))
	for _, tag := range tags {
		currency := mcwire.Currency(tag)
		currencyOps = append(currencyOps, mcwire.CurrencyOps{
			Currency: currency,
			Ops:      c.pendingOps[currency],
		})
	}

	staged := cloneCurrencies(c.currencies)
	applyCurrencyDiff(staged, c.pendingDiff, uint128Zero, uint128Zero)
	if err := applyCurrencyOps(c.localPK, staged, currencyOps, mutualcredit.Outgoing); err != nil {
		// A locally queued op was invalid against our own ledger
		// (caller's bug): report it without touching the channel.
		return nil, err
	}

	counter := c.moveTokenCounter + 1
	hash := balancesHash(staged)
	infoHash := ccrypto.InfoHash(c.localPK, c.remotePK, hash, counter)

	var oldToken [64]byte
	if c.lastIn != nil {
		oldToken = c.lastIn.NewToken
	}

	sigBuf := ccrypto.MoveTokenSigBuf(oldToken, infoHash)
	newToken, err := c.identity.Sign(ctx, sigBuf)
	if err != nil {
		return nil, err
	}

	mt := &mcwire.MoveToken{
		OldToken:         oldToken,
		CurrenciesOps:    currencyOps,
		CurrenciesDiff:   c.pendingDiff,
		RelaysDiff:       c.pendingRelays,
		InfoHash:         infoHash,
		MoveTokenCounter: counter,
		NewToken:         newToken,
	}

	c.currencies = staged
	c.moveTokenCounter = counter
	c.lastOut = mt
	c.pendingOps = make(map[mcwire.Currency][]mcwire.McOp)
	c.pendingDiff = nil
	c.pendingRelays = nil
	c.status = StatusConsistentOut

	return mt, nil
}
