// Package osproc probes and signals processes on the local host. The
// probe never affects its target; the signal is either a graceful stop or
// an immediate, unrecoverable kill.
package osproc
