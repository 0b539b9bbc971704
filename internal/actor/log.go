package actor

import "github.com/btcsuite/btclog/v2"

// log is the package-level subsystem logger. It defaults to a no-op
// implementation so the package is silent until a caller wires up a real
// logger via UseLogger, matching the lnd/btcsuite convention used
// throughout this module's dependency stack.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the subsystem logger used by the actor package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
