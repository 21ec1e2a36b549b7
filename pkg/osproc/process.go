package osproc

import (
	"context"
	"fmt"
	"math"

	"github.com/shirou/gopsutil/v3/process"
)

// SignalKind selects how a process is asked to stop.
type SignalKind int

const (
	// Graceful lets the process run its shutdown path (SIGTERM on unix).
	Graceful SignalKind = iota
	// Immediate kills the process without giving it a chance to react
	// (SIGKILL on unix).
	Immediate
)

func (k SignalKind) String() string {
	switch k {
	case Graceful:
		return "graceful"
	case Immediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// validPID rejects pids the kernel would read as a process group, as -1
// (every process), or truncate to an unrelated pid_t.
func validPID(pid int) bool {
	return pid > 0 && pid <= math.MaxInt32
}

// Local implements probing and signalling against this host's process table.
type Local struct{}

func New() *Local {
	return &Local{}
}

// Probe reports whether pid can be signalled. It never delivers a signal.
func (l *Local) Probe(ctx context.Context, pid int) bool {
	if !validPID(pid) {
		return false
	}
	return probe(ctx, pid)
}

// Signal delivers kind to pid.
func (l *Local) Signal(ctx context.Context, pid int, kind SignalKind) error {
	if !validPID(pid) {
		return fmt.Errorf("refusing to signal pid %d", pid)
	}
	return signal(ctx, pid, kind)
}

// Describe returns the process name for log lines, or "" when it cannot be
// read.
func Describe(ctx context.Context, pid int) string {
	if !validPID(pid) {
		return ""
	}
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return ""
	}
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return ""
	}
	return name
}
