package killer

import "errors"

// Error kinds of a failed dispatch. Each wraps the underlying cause, so
// errors.Is matches both the kind and, for example, storage.ErrNoSuchStore.
var (
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrLeaderRecordMissing  = errors.New("leader record missing")
	ErrSignalDeliveryFailed = errors.New("signal delivery failed")
	ErrNodeIdentity         = errors.New("node identity unavailable")
)

// Kind returns a short label for a dispatch error, used in metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrLeaderRecordMissing):
		return "leader_record_missing"
	case errors.Is(err, ErrSignalDeliveryFailed):
		return "signal_delivery_failed"
	case errors.Is(err, ErrNodeIdentity):
		return "node_identity"
	default:
		return "unknown"
	}
}
