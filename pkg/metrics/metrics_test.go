package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaderkill/pkg/metrics"
)

func TestRecordDispatch(t *testing.T) {
	before := testutil.ToFloat64(metrics.DispatchTotal.WithLabelValues("FLAGGED"))
	metrics.RecordDispatch("FLAGGED", "")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.DispatchTotal.WithLabelValues("FLAGGED")))

	errBefore := testutil.ToFloat64(metrics.DispatchErrors.WithLabelValues("leader_record_missing"))
	metrics.RecordDispatch("FAILED", "leader_record_missing")
	assert.Equal(t, errBefore+1, testutil.ToFloat64(metrics.DispatchErrors.WithLabelValues("leader_record_missing")))
}

func TestRecordProbe(t *testing.T) {
	alive := testutil.ToFloat64(metrics.ProbeTotal.WithLabelValues("alive"))
	absent := testutil.ToFloat64(metrics.ProbeTotal.WithLabelValues("absent"))

	metrics.RecordProbe(true)
	metrics.RecordProbe(false)
	metrics.RecordProbe(false)

	assert.Equal(t, alive+1, testutil.ToFloat64(metrics.ProbeTotal.WithLabelValues("alive")))
	assert.Equal(t, absent+2, testutil.ToFloat64(metrics.ProbeTotal.WithLabelValues("absent")))
}

func TestPush(t *testing.T) {
	var hits int32
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/metrics/job/leaderkill", r.URL.Path)
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	metrics.RecordDispatch("SIGNALED", "")
	require.NoError(t, metrics.Push(context.Background(), srv.URL, "leaderkill"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.NotEmpty(t, body)
}

func TestPush_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := metrics.Push(context.Background(), srv.URL, "leaderkill")
	assert.Error(t, err)
}
