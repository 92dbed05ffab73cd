package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	runStartedTotal   atomic.Uint64
	runCompletedTotal atomic.Uint64
	runFailedTotal    atomic.Uint64

	generateCallsTotal    atomic.Uint64
	generateFailuresTotal atomic.Uint64

	runDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncRunStarted increments the started counter.
func IncRunStarted() {
	runStartedTotal.Add(1)
}

// IncRunCompleted increments the completed counter.
func IncRunCompleted() {
	runCompletedTotal.Add(1)
}

// IncRunFailed increments the failed counter.
func IncRunFailed() {
	runFailedTotal.Add(1)
}

// IncGenerateCall increments the generator call counter.
func IncGenerateCall() {
	generateCallsTotal.Add(1)
}

// IncGenerateFailure increments the generator failure counter.
func IncGenerateFailure() {
	generateFailuresTotal.Add(1)
}

// ObserveRunDurationMs records an optimization run duration in milliseconds.
func ObserveRunDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	runDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "run_started_total", "Total optimization runs started", runStartedTotal.Load())
	writeCounter(&buf, "run_completed_total", "Total optimization runs completed", runCompletedTotal.Load())
	writeCounter(&buf, "run_failed_total", "Total optimization runs failed", runFailedTotal.Load())
	writeCounter(&buf, "generate_calls_total", "Total generator calls", generateCallsTotal.Load())
	writeCounter(&buf, "generate_failures_total", "Total generator failures", generateFailuresTotal.Load())
	writeHistogram(&buf, "run_duration_ms", "Optimization run duration in milliseconds", runDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
