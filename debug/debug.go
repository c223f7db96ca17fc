// Package debug provides a cheap, env-gated trace logger for the wire-level
// internals of the client (chunks, sequence numbers, tokens). It is not
// meant for application-level events; see the root package's use of
// go-kit/log for that.
package debug

import (
	"fmt"
	"log"
	"os"
)

// Enabled controls whether Printf writes anything. It defaults to the
// presence of the OPCUA_DEBUG environment variable so that tests and
// production builds stay quiet unless explicitly asked for chatter.
var Enabled = os.Getenv("OPCUA_DEBUG") != ""

var logger = log.New(os.Stderr, "[opcua] ", log.Lmicroseconds)

// Printf writes a trace line when debugging is enabled. format follows the
// usual fmt verbs.
func Printf(format string, v ...interface{}) {
	if !Enabled {
		return
	}
	logger.Output(2, fmt.Sprintf(format, v...))
}

// Enable turns tracing on for the remainder of the process.
func Enable() { Enabled = true }

// Disable turns tracing back off.
func Disable() { Enabled = false }
