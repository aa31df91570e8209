package handshake

import "github.com/btcsuite/btclog"

// log is the package-level logger for handshake. It is set to the
// disabled backend until UseLogger overrides it, matching the rest of
// this repo's subsystems.
var log = btclog.Disabled

// UseLogger lets a calling subsystem link its own btclog.Logger
// implementation into handshake.
func UseLogger(logger btclog.Logger) {
	log = logger
}
