package leader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"leaderkill/pkg/storage"
)

// Shared file names. They are part of the on-store format and must not change.
const (
	PIDFile    = "pid.log"
	NodeIDFile = "leader_node_id.log"
)

var (
	// ErrRecordMissing means no leader is publishing state: a record is
	// absent or unparsable.
	ErrRecordMissing = errors.New("leader record missing")
	// ErrStoreUnavailable means a record could not be read for any reason
	// other than its absence.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Record is what the leader publishes about itself at startup.
type Record struct {
	PID    int
	NodeID string
}

// Locate reads the leader's pid and node id from the store. It never retries:
// a missing leader is a legitimate answer for a kill request.
func Locate(ctx context.Context, store storage.SharedStore) (Record, error) {
	rawPID, err := read(ctx, store, PIDFile)
	if err != nil {
		return Record{}, err
	}
	// The kernel takes a 32-bit pid_t; a wider value would wrap to another
	// process or to -1 (every process).
	pid, err := strconv.ParseInt(rawPID, 10, 32)
	if err != nil || pid <= 0 {
		return Record{}, fmt.Errorf("%w: %s holds %q, not a process id", ErrRecordMissing, PIDFile, rawPID)
	}

	nodeID, err := read(ctx, store, NodeIDFile)
	if err != nil {
		return Record{}, err
	}
	if nodeID == "" {
		return Record{}, fmt.Errorf("%w: %s is empty", ErrRecordMissing, NodeIDFile)
	}

	return Record{PID: int(pid), NodeID: nodeID}, nil
}

// Publish writes the record in the format Locate reads.
func Publish(ctx context.Context, store storage.SharedStore, rec Record) error {
	if err := store.WriteSharedFile(ctx, PIDFile, []byte(strconv.Itoa(rec.PID))); err != nil {
		return fmt.Errorf("failed to publish %s: %w", PIDFile, err)
	}
	if err := store.WriteSharedFile(ctx, NodeIDFile, []byte(rec.NodeID)); err != nil {
		return fmt.Errorf("failed to publish %s: %w", NodeIDFile, err)
	}
	return nil
}

func read(ctx context.Context, store storage.SharedStore, name string) (string, error) {
	data, err := store.ReadSharedFile(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%w: %w", ErrRecordMissing, err)
		}
		return "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return strings.TrimSpace(string(data)), nil
}
