//go:build !windows

package osproc

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// probe sends signal 0. Any error, including EPERM, counts as not
// signalable: the caller falls back to the stop flag in that case.
func probe(_ context.Context, pid int) bool {
	return unix.Kill(pid, 0) == nil
}

func signal(_ context.Context, pid int, kind SignalKind) error {
	sig := unix.SIGTERM
	if kind == Immediate {
		sig = unix.SIGKILL
	}
	if err := unix.Kill(pid, sig); err != nil {
		return fmt.Errorf("send %s to process %d: %w", unix.SignalName(sig), pid, err)
	}
	return nil
}
