package engine

// Metrics is the optional hook the engine reports operational counters
// through. The default is a no-op so the engine package carries no
// dependency on any particular metrics backend; cmd/docdb-server wires
// in a Prometheus-backed implementation.
type Metrics interface {
	RecordSplit()
	RecordRewrite(durationSeconds float64)
	SetBucketCount(n int)
}

type noopMetrics struct{}

func (noopMetrics) RecordSplit()                          {}
func (noopMetrics) RecordRewrite(durationSeconds float64) {}
func (noopMetrics) SetBucketCount(n int)                  {}

// Config configures a new Engine.
type Config struct {
	// DataDir is the directory bucket files live in. If empty, it
	// defaults to "db" under the process's current working directory.
	DataDir string

	// Trace enables per-lookup diagnostic logging of which bucket a
	// record resolves to. It is off by default: the original
	// implementation this store is modeled on logged this
	// unconditionally, which floods the log under any real workload.
	Trace bool

	// Metrics receives operational counters. Defaults to a no-op.
	Metrics Metrics

	// Lock, if true, acquires an exclusive advisory lock on DataDir
	// for the lifetime of the engine, refusing to start if another
	// process already holds it.
	Lock bool
}

// Option configures a Config.
type Option func(*Config)

// WithDataDir overrides the default data directory.
func WithDataDir(dir string) Option {
	return func(c *Config) { c.DataDir = dir }
}

// WithTrace enables or disables per-lookup bucket-resolution logging.
func WithTrace(enabled bool) Option {
	return func(c *Config) { c.Trace = enabled }
}

// WithMetrics installs a Metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(c *Config) { c.Metrics = m }
}

// WithLock enables advisory directory locking.
func WithLock(enabled bool) Option {
	return func(c *Config) { c.Lock = enabled }
}

// DefaultConfig returns the zero-value configuration with its no-op
// metrics recorder filled in.
func DefaultConfig() Config {
	return Config{Metrics: noopMetrics{}}
}
