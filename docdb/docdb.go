package docdb

import (
	"sync"

	"github.com/konbelyavskyi/docdb/internal/bucketfs"
	"github.com/konbelyavskyi/docdb/internal/engine"
)

// Document is a single stored record: an id and its opaque payload.
type Document struct {
	ID   int64
	Data []byte
}

// DB is the facade the rest of this module programs against.
type DB interface {
	Exists(id int64) bool
	Get(id int64) (Document, error)
	Insert(id int64, data []byte) error
	Update(id int64, data []byte) error
	Remove(id int64) error
	Close() error
}

// Option configures a DB opened with NewDiskDB.
type Option = engine.Option

// WithDataDir overrides the default data directory ("db" under the
// process's current working directory).
func WithDataDir(dir string) Option { return engine.WithDataDir(dir) }

// WithTrace enables per-lookup bucket-resolution logging.
func WithTrace(enabled bool) Option { return engine.WithTrace(enabled) }

// WithMetrics installs an engine.Metrics recorder.
func WithMetrics(m engine.Metrics) Option { return engine.WithMetrics(m) }

// WithLock enables advisory directory locking, refusing to start if
// another process already owns the data directory.
func WithLock(enabled bool) Option { return engine.WithLock(enabled) }

type diskDB struct {
	eng *engine.Engine
}

// NewDiskDB opens (or creates) a disk-backed document store.
func NewDiskDB(opts ...Option) (DB, error) {
	cfg := engine.DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	eng, err := engine.New(bucketfs.NewOSFS(), cfg)
	if err != nil {
		return nil, err
	}
	return &diskDB{eng: eng}, nil
}

func (d *diskDB) Exists(id int64) bool { return d.eng.Exists(id) }

func (d *diskDB) Get(id int64) (Document, error) {
	data, err := d.eng.Get(id)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: data}, nil
}

func (d *diskDB) Insert(id int64, data []byte) error { return d.eng.Insert(id, data) }
func (d *diskDB) Update(id int64, data []byte) error { return d.eng.Update(id, data) }
func (d *diskDB) Remove(id int64) error              { return d.eng.Remove(id) }
func (d *diskDB) Close() error                       { return d.eng.Close() }

var (
	instance     DB
	instanceOnce sync.Once
	instanceErr  error
)

// GetInstance returns the process-wide DB, opening it with opts on the
// first call and ignoring opts on every subsequent call. This mirrors
// the store's original single-process-owns-the-directory design: most
// programs want exactly one store instance regardless of how many
// callers reach for one.
func GetInstance(opts ...Option) (DB, error) {
	instanceOnce.Do(func() {
		instance, instanceErr = NewDiskDB(opts...)
	})
	return instance, instanceErr
}
