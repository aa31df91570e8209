package tokenchannel

import "github.com/btcsuite/btclog"

var log = btclog.Disabled

// UseLogger lets a calling subsystem link its own btclog.Logger
// implementation into tokenchannel.
func UseLogger(logger btclog.Logger) {
	log = logger
}
