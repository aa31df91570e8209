package mutualcredit

import "github.com/btcsuite/btclog"

var log = btclog.Disabled

// UseLogger lets a calling subsystem link its own btclog.Logger
// implementation into mutualcredit.
func UseLogger(logger btclog.Logger) {
	log = logger
}
