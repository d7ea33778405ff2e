package metrics

import "sync/atomic"

// Counter is a monotonically increasing event count.
type Counter struct {
	name string
	n    atomic.Int64
}

func newCounter(name string) *Counter { return &Counter{name: name} }

// Inc adds one.
func (c *Counter) Inc() {
	if Enabled() {
		c.n.Add(1)
	}
}

// Add adds delta.
func (c *Counter) Add(delta int64) {
	if Enabled() {
		c.n.Add(delta)
	}
}

// Name returns the counter name.
func (c *Counter) Name() string { return c.name }

// Value returns the current count.
func (c *Counter) Value() int64 { return c.n.Load() }

// Reset zeroes the counter.
func (c *Counter) Reset() { c.n.Store(0) }

// Counters.
var (
	BatchesApplied   = newCounter("batches_applied")
	EchoesSuppressed = newCounter("echoes_suppressed")
	FillChunks       = newCounter("fill_chunks")
	DriveWrites      = newCounter("drive_writes")
	DriveWriteErrors = newCounter("drive_write_errors")
)

// AllCounters returns every counter.
func AllCounters() []*Counter {
	return []*Counter{BatchesApplied, EchoesSuppressed, FillChunks, DriveWrites, DriveWriteErrors}
}

// CounterValues returns the counters keyed by name.
func CounterValues() map[string]int64 {
	out := make(map[string]int64)
	for _, c := range AllCounters() {
		out[c.name] = c.Value()
	}
	return out
}
