// Package killer asks a job-system leader to stop, either by signalling its
// process directly when it runs on this node, or by writing a stop flag into
// the shared store for the leader to pick up.
package killer

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"leaderkill/pkg/leader"
	"leaderkill/pkg/logger"
	"leaderkill/pkg/metrics"
	"leaderkill/pkg/nodeid"
	tracing "leaderkill/pkg/observability"
	"leaderkill/pkg/osproc"
	"leaderkill/pkg/storage"
)

// StopFlagFile is the shared file the leader polls for a stop request.
const StopFlagFile = "_toil_kill_flag"

// StopFlagPayload is the affirmative marker written to StopFlagFile.
var StopFlagPayload = []byte("YES")

// Prober checks whether a local process can be signalled without affecting it.
type Prober interface {
	Probe(ctx context.Context, pid int) bool
}

// Signaler delivers a stop signal to a local process.
type Signaler interface {
	Signal(ctx context.Context, pid int, kind osproc.SignalKind) error
}

// Options are the per-invocation inputs of a dispatch.
type Options struct {
	// Force selects an immediate kill instead of a graceful stop when the
	// leader is signalled directly.
	Force bool
}

// Result describes how a dispatch ended.
type Result struct {
	State       State
	Leader      leader.Record
	LocalNodeID string
	// Probed is set when the leader's node matched and a liveness probe ran.
	Probed bool
	// Signal is the kind delivered; meaningful only when State is StateSignaled.
	Signal osproc.SignalKind
}

// Dispatcher runs one termination attempt per Dispatch call. It holds no
// state between calls.
type Dispatcher struct {
	opener   storage.Opener
	nodeID   func(ctx context.Context) (string, error)
	prober   Prober
	signaler Signaler
	describe func(ctx context.Context, pid int) string
	log      *zap.Logger
	tracer   trace.Tracer
}

type Option func(*Dispatcher)

// WithLogger sets the logger used for transitions and outcomes.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// WithTracer sets the tracer used for dispatch spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = t
	}
}

// WithNodeID replaces the local node identity source.
func WithNodeID(fn func(ctx context.Context) (string, error)) Option {
	return func(d *Dispatcher) {
		d.nodeID = fn
	}
}

// WithProcess replaces the local probe and signal capabilities.
func WithProcess(p Prober, s Signaler) Option {
	return func(d *Dispatcher) {
		d.prober = p
		d.signaler = s
	}
}

// WithDescriber replaces the lookup that names the target process in logs.
func WithDescriber(fn func(ctx context.Context, pid int) string) Option {
	return func(d *Dispatcher) {
		d.describe = fn
	}
}

// New returns a Dispatcher that opens stores through opener and talks to
// this host's process table.
func New(opener storage.Opener, opts ...Option) *Dispatcher {
	local := osproc.New()
	d := &Dispatcher{
		opener:   opener,
		nodeID:   nodeid.Current,
		prober:   local,
		signaler: local,
		describe: osproc.Describe,
		log:      logger.Get(),
		tracer:   otel.Tracer("leaderkill/killer"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch resolves the store, locates the leader and stops it. Exactly one
// of {signal, flag write} happens on success. The only fallback is from a
// failed local probe to the flag write.
func (d *Dispatcher) Dispatch(ctx context.Context, locator string, opts Options) (Result, error) {
	ctx, span := d.tracer.Start(ctx, "killer.Dispatch", trace.WithAttributes(
		attribute.String("store", locator),
		attribute.Bool("force", opts.Force),
	))
	defer span.End()

	res := Result{State: StateStart}
	err := d.run(ctx, locator, opts, &res)

	span.SetAttributes(attribute.String("state", res.State.String()))
	if err != nil {
		tracing.RecordError(span, err)
	}
	metrics.RecordDispatch(res.State.String(), Kind(err))
	return res, err
}

func (d *Dispatcher) run(ctx context.Context, locator string, opts Options, res *Result) error {
	store, err := d.open(ctx, locator)
	if err != nil {
		return d.fail(res, fmt.Errorf("%w: %w", ErrStoreUnavailable, err),
			"The job store does not exist or cannot be reached")
	}
	defer func() {
		if err := store.Close(); err != nil {
			d.log.Debug("Failed to close store", zap.Error(err))
		}
	}()

	rec, err := d.locate(ctx, store)
	if err != nil {
		if errors.Is(err, leader.ErrRecordMissing) {
			return d.fail(res, fmt.Errorf("%w: %w", ErrLeaderRecordMissing, err),
				"No leader state is published in the job store. Has the leader already stopped?")
		}
		return d.fail(res, fmt.Errorf("%w: %w", ErrStoreUnavailable, err),
			"Failed to read the leader state from the job store")
	}
	res.Leader = rec
	d.transition(res, StateLocated)

	localID, err := d.nodeID(ctx)
	if err != nil {
		return d.fail(res, fmt.Errorf("%w: %w", ErrNodeIdentity, err),
			"Cannot determine the identity of this node")
	}
	res.LocalNodeID = localID

	log := d.log.With(
		zap.Int("pid", rec.PID),
		zap.String("leader_node", rec.NodeID),
		zap.String("local_node", localID),
	)

	if rec.NodeID == localID {
		d.transition(res, StateLocalProbe)
		res.Probed = true
		if d.probe(ctx, rec.PID) {
			return d.signal(ctx, res, opts, log)
		}
		// Same node id but no signalable process: the leader may sit behind a
		// container boundary, or its pid was reused. Let it read the flag.
		log.Info("Leader process is not signalable from here, falling back to the stop flag")
	}

	d.transition(res, StateRemote)
	if err := d.writeFlag(ctx, store); err != nil {
		return d.fail(res, fmt.Errorf("%w: %w", ErrStoreUnavailable, err),
			"Failed to write the stop flag to the job store")
	}
	d.transition(res, StateFlagged)
	log.Info("Asked the leader to terminate")
	return nil
}

func (d *Dispatcher) open(ctx context.Context, locator string) (storage.SharedStore, error) {
	ctx, span := d.tracer.Start(ctx, "store.Open")
	defer span.End()

	store, err := d.opener.Open(ctx, locator)
	if err != nil {
		tracing.RecordError(span, err)
	}
	return store, err
}

func (d *Dispatcher) locate(ctx context.Context, store storage.SharedStore) (leader.Record, error) {
	ctx, span := d.tracer.Start(ctx, "leader.Locate")
	defer span.End()

	rec, err := leader.Locate(ctx, store)
	if err != nil {
		tracing.RecordError(span, err)
		return rec, err
	}
	span.SetAttributes(attribute.Int("pid", rec.PID), attribute.String("leader_node", rec.NodeID))
	return rec, nil
}

func (d *Dispatcher) probe(ctx context.Context, pid int) bool {
	ctx, span := d.tracer.Start(ctx, "process.Probe", trace.WithAttributes(attribute.Int("pid", pid)))
	defer span.End()

	alive := d.prober.Probe(ctx, pid)
	span.SetAttributes(attribute.Bool("alive", alive))
	metrics.RecordProbe(alive)
	return alive
}

func (d *Dispatcher) signal(ctx context.Context, res *Result, opts Options, log *zap.Logger) error {
	kind := osproc.Graceful
	if opts.Force {
		kind = osproc.Immediate
	}

	sctx, span := d.tracer.Start(ctx, "process.Signal", trace.WithAttributes(
		attribute.Int("pid", res.Leader.PID),
		attribute.String("kind", kind.String()),
	))
	defer span.End()

	name := d.describe(sctx, res.Leader.PID)
	if err := d.signaler.Signal(sctx, res.Leader.PID, kind); err != nil {
		tracing.RecordError(span, err)
		// The process changed between probe and send; a retry would see the
		// same state, so report it to the operator instead.
		return d.fail(res, fmt.Errorf("%w: %w", ErrSignalDeliveryFailed, err),
			"Could not signal the leader process. Is it still running?")
	}
	res.Signal = kind
	d.transition(res, StateSignaled)
	log.Info("Leader process successfully terminated",
		zap.String("signal", kind.String()),
		zap.String("process", name),
	)
	return nil
}

func (d *Dispatcher) writeFlag(ctx context.Context, store storage.SharedStore) error {
	ctx, span := d.tracer.Start(ctx, "store.WriteStopFlag")
	defer span.End()

	if err := store.WriteSharedFile(ctx, StopFlagFile, StopFlagPayload); err != nil {
		tracing.RecordError(span, err)
		return err
	}
	return nil
}

func (d *Dispatcher) transition(res *Result, next State) {
	d.log.Debug("Dispatch transition",
		zap.Stringer("from", res.State),
		zap.Stringer("to", next),
	)
	res.State = next
}

func (d *Dispatcher) fail(res *Result, err error, msg string) error {
	d.transition(res, StateFailed)
	d.log.Error(msg, zap.Error(err))
	return err
}
