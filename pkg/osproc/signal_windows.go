//go:build windows

package osproc

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
)

func probe(ctx context.Context, pid int) bool {
	ok, err := process.PidExistsWithContext(ctx, int32(pid))
	return err == nil && ok
}

// signal has no graceful variant on Windows beyond TerminateProcess, so both
// kinds end the process; Immediate goes through Kill for parity with unix.
func signal(ctx context.Context, pid int, kind SignalKind) error {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return fmt.Errorf("open process %d: %w", pid, err)
	}
	if kind == Immediate {
		err = p.KillWithContext(ctx)
	} else {
		err = p.TerminateWithContext(ctx)
	}
	if err != nil {
		return fmt.Errorf("terminate process %d: %w", pid, err)
	}
	return nil
}
