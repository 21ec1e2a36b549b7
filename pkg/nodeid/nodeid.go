// Package nodeid computes the identity the leader publishes for its host, so
// a caller can tell whether it shares that host.
package nodeid

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"leaderkill/pkg/logger"
)

// ErrUnavailable means no identity source produced a usable value. Callers
// must treat it as fatal: a guessed id could wrongly match the leader's host.
var ErrUnavailable = errors.New("node identity unavailable")

// DefaultFiles are read in order before falling back to the platform host id.
// The order matches the one the leader uses when publishing its own id.
var DefaultFiles = []string{
	"/var/lib/dbus/machine-id",
	"/proc/sys/kernel/random/boot_id",
}

// Resolver derives the node id from the first usable source.
type Resolver struct {
	Files  []string
	HostID func(ctx context.Context) (string, error)

	mu sync.Mutex
	id string
}

// NewResolver returns a Resolver over DefaultFiles and gopsutil's host id.
func NewResolver() *Resolver {
	return &Resolver{
		Files:  DefaultFiles,
		HostID: host.HostIDWithContext,
	}
}

var defaultResolver = NewResolver()

// Current returns this host's id, cached for the process once resolved.
func Current(ctx context.Context) (string, error) {
	return defaultResolver.Current(ctx)
}

// Current returns the cached id, resolving it on first use. Only a resolved
// id is cached; a failure, such as one caused by an expired ctx, is retried
// on the next call.
func (r *Resolver) Current(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.id != "" {
		return r.id, nil
	}
	id, err := r.resolve(ctx)
	if err != nil {
		return "", err
	}
	r.id = id
	return id, nil
}

func (r *Resolver) resolve(ctx context.Context) (string, error) {
	for _, path := range r.Files {
		id, err := readFirstLine(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Debug("Node id source unreadable", zap.String("path", path), zap.Error(err))
			}
			continue
		}
		if valid(id) {
			logger.Debug("Obtained node id", zap.String("source", path), zap.String("node_id", id))
			return id, nil
		}
		logger.Warn("Ignoring malformed node id", zap.String("source", path), zap.String("value", id))
	}

	if r.HostID != nil {
		id, err := r.HostID(ctx)
		if err == nil {
			id = strings.TrimSpace(id)
			if valid(id) {
				logger.Debug("Obtained node id", zap.String("source", "host"), zap.String("node_id", id))
				return id, nil
			}
		}
		if err != nil {
			return "", fmt.Errorf("%w: host id lookup failed: %w", ErrUnavailable, err)
		}
	}
	return "", fmt.Errorf("%w: no source in %v yielded an id", ErrUnavailable, r.Files)
}

func valid(id string) bool {
	return id != "" && len(strings.Fields(id)) == 1
}

func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text()), nil
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", nil
}
