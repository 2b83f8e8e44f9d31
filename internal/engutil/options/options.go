// Package options holds the engine's caller-tunable knobs, configured via
// functional setters in the teacher's style (segmentmanager.DiskSegmentManagerOption).
package options

// Option mutates an Options value during construction.
type Option func(*Options)

// Options collects every caller-tunable knob across the engine's
// subsystems. Zero value is invalid; use New to get the defaults below.
type Options struct {
	// CreateIfNotExists creates the database directory on open if absent.
	CreateIfNotExists bool
	// BitsPerKey configures each SSTable's Bloom filter.
	BitsPerKey int
	// MemtableMaxBytes is the freeze threshold an orchestrator polls against.
	MemtableMaxBytes int64
	// BlockCacheCapacity is the block cache's entry-count bound.
	BlockCacheCapacity int
	// BackgroundWorkers sizes the flush/compaction worker pool.
	BackgroundWorkers int
	// SyncWrites fsyncs the WAL on every append when true.
	SyncWrites bool
	// LevelFilesLimit is the per-level file count that triggers compaction
	// (informational: compaction itself is out of scope).
	LevelFilesLimit int
}

const (
	defaultBitsPerKey         = 10
	defaultMemtableMaxBytes   = 4 << 20
	defaultBlockCacheCapacity = 2048
	defaultBackgroundWorkers  = 1
	defaultLevelFilesLimit    = 4
)

// New returns an Options populated with the engine's defaults, then applies opts in order.
func New(opts ...Option) Options {
	o := Options{
		BitsPerKey:         defaultBitsPerKey,
		MemtableMaxBytes:   defaultMemtableMaxBytes,
		BlockCacheCapacity: defaultBlockCacheCapacity,
		BackgroundWorkers:  defaultBackgroundWorkers,
		LevelFilesLimit:    defaultLevelFilesLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithCreateIfNotExists(v bool) Option { return func(o *Options) { o.CreateIfNotExists = v } }

func WithBitsPerKey(n int) Option { return func(o *Options) { o.BitsPerKey = n } }

func WithMemtableMaxBytes(n int64) Option { return func(o *Options) { o.MemtableMaxBytes = n } }

func WithBlockCacheCapacity(n int) Option { return func(o *Options) { o.BlockCacheCapacity = n } }

func WithBackgroundWorkers(n int) Option { return func(o *Options) { o.BackgroundWorkers = n } }

func WithSyncWrites(v bool) Option { return func(o *Options) { o.SyncWrites = v } }

func WithLevelFilesLimit(n int) Option { return func(o *Options) { o.LevelFilesLimit = n } }
