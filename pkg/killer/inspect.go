package killer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"leaderkill/pkg/leader"
	"leaderkill/pkg/storage"
)

// Status is a read-only view of a store's leader.
type Status struct {
	Leader      leader.Record
	LocalNodeID string
	// SameNode is set when the leader published this node's identity.
	SameNode bool
	// Alive is the probe result; only meaningful when SameNode is set.
	Alive bool
	// Process is the leader's process name when it could be read locally.
	Process string
	// StopRequested is set when the stop flag is already in the store.
	StopRequested bool
}

// Inspect reports what Dispatch would act on without signalling anything or
// writing to the store. A node identity failure is not fatal here: the
// status is still useful without it.
func (d *Dispatcher) Inspect(ctx context.Context, locator string) (Status, error) {
	ctx, span := d.tracer.Start(ctx, "killer.Inspect")
	defer span.End()

	var st Status

	store, err := d.open(ctx, locator)
	if err != nil {
		return st, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			d.log.Debug("Failed to close store", zap.Error(err))
		}
	}()

	rec, err := d.locate(ctx, store)
	if err != nil {
		if errors.Is(err, leader.ErrRecordMissing) {
			return st, fmt.Errorf("%w: %w", ErrLeaderRecordMissing, err)
		}
		return st, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	st.Leader = rec

	flag, err := store.ReadSharedFile(ctx, StopFlagFile)
	switch {
	case err == nil:
		st.StopRequested = len(flag) > 0
	case errors.Is(err, storage.ErrNotFound):
	default:
		return st, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	localID, err := d.nodeID(ctx)
	if err != nil {
		d.log.Warn("Cannot determine the identity of this node", zap.Error(err))
		return st, nil
	}
	st.LocalNodeID = localID

	if rec.NodeID == localID {
		st.SameNode = true
		st.Alive = d.prober.Probe(ctx, rec.PID)
		if st.Alive {
			st.Process = d.describe(ctx, rec.PID)
		}
	}
	return st, nil
}
