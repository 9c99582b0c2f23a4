// Package engine implements the bucket-file storage engine: the
// on-disk layout, the routing of an id to its bucket, the
// insert/update/remove rewrite algorithm (including bucket splitting
// and renaming), and the recovery scan that rebuilds the in-memory
// index from disk at startup.
//
// All public operations are serialised by a single exclusive lock.
// Insert and Update internally resolve existence before deciding
// whether to promote to the other operation; they do so by calling an
// unexported, already-locked helper rather than re-entering the public
// API, since Go's sync.Mutex is not reentrant.
package engine

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/konbelyavskyi/docdb/internal/bucket"
	"github.com/konbelyavskyi/docdb/internal/bucketfs"
	"github.com/konbelyavskyi/docdb/internal/index"
	"github.com/konbelyavskyi/docdb/internal/lock"
)

// Engine is the bucket-file storage engine described in the design:
// it owns the data directory, the in-memory index, and serialises all
// mutation and lookup through a single mutex.
type Engine struct {
	fs      bucketfs.FS
	dataDir string
	idx     *index.Index
	trace   bool
	metrics Metrics
	logger  *log.Logger

	mu       sync.Mutex
	lockFile *os.File
}

// New constructs an Engine, ensuring the data directory exists and
// recovering the in-memory index from whatever bucket files are
// already there.
func New(fs bucketfs.FS, cfg Config) (*Engine, error) {
	if fs == nil {
		fs = bucketfs.NewOSFS()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		cwd, err := fs.Cwd()
		if err != nil {
			return nil, fmt.Errorf("engine: resolve data directory: %w", err)
		}
		dataDir = filepath.Join(cwd, "db")
	}

	e := &Engine{
		fs:      fs,
		dataDir: dataDir,
		idx:     index.New(),
		trace:   cfg.Trace,
		metrics: cfg.Metrics,
		logger:  log.New(os.Stderr, "docdb: ", log.LstdFlags),
	}

	if err := e.fs.EnsureDir(e.dataDir); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	if cfg.Lock {
		lf, err := lock.LockDirectory(e.dataDir)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.lockFile = lf
	}

	if err := e.recover(); err != nil {
		if e.lockFile != nil {
			lock.UnlockDirectory(e.lockFile)
		}
		return nil, err
	}

	e.metrics.SetBucketCount(e.idx.Len())
	return e, nil
}

// Close releases the directory lock, if one was acquired.
func (e *Engine) Close() error {
	if e.lockFile != nil {
		lock.UnlockDirectory(e.lockFile)
		e.lockFile = nil
	}
	return nil
}

// Exists reports whether id is present in the store.
func (e *Engine) Exists(id int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.existsLocked(id)
}

// Get returns the payload stored for id, or ErrNotFound.
func (e *Engine) Get(id int64) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bid, ok := e.idx.OwningBucket(id)
	if !ok {
		return nil, ErrNotFound
	}
	if e.trace {
		e.logger.Printf("get(%d): resolved to bucket %d", id, bid)
	}
	hdr, err := e.readHeader(bid)
	if err != nil {
		return nil, fmt.Errorf("engine: get %d: %w", id, err)
	}
	if _, err := hdr.Validate(bid); err != nil {
		return nil, fmt.Errorf("engine: get %d: bucket %d: %w: %v", id, bid, ErrCorruptBucket, err)
	}
	pos, found := hdr.Find(id)
	if !found {
		return nil, ErrNotFound
	}
	ent := hdr.Entries[pos]
	if ent.Size == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, ent.Size)
	if err := e.fs.ReadAt(e.bucketPath(bid), buf, ent.Offset); err != nil {
		return nil, fmt.Errorf("engine: get %d: read payload: %w", id, err)
	}
	return buf, nil
}

// Insert stores data under id. If id already exists this is
// equivalent to Update.
func (e *Engine) Insert(id int64, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	defer func() { e.metrics.RecordRewrite(time.Since(start).Seconds()) }()

	if e.existsLocked(id) {
		return e.updateLocked(id, data)
	}
	return e.insertLocked(id, data)
}

// Update replaces the payload stored for id. If id does not exist this
// is equivalent to Insert.
func (e *Engine) Update(id int64, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	defer func() { e.metrics.RecordRewrite(time.Since(start).Seconds()) }()

	if !e.existsLocked(id) {
		return e.insertLocked(id, data)
	}
	return e.updateLocked(id, data)
}

// Remove deletes the record stored for id. If it does not exist,
// ErrNotFound is returned and the store is left unchanged.
func (e *Engine) Remove(id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.existsLocked(id) {
		return ErrNotFound
	}

	start := time.Now()
	defer func() { e.metrics.RecordRewrite(time.Since(start).Seconds()) }()

	return e.removeLocked(id)
}

func (e *Engine) existsLocked(id int64) bool {
	bid, ok := e.idx.OwningBucket(id)
	if !ok {
		return false
	}
	if e.trace {
		e.logger.Printf("exists(%d): resolved to bucket %d", id, bid)
	}
	hdr, err := e.readHeader(bid)
	if err != nil {
		e.logger.Printf("exists(%d): read bucket %d: %v", id, bid, err)
		return false
	}
	if _, err := hdr.Validate(bid); err != nil {
		e.logger.Printf("exists(%d): bucket %d corrupt: %v", id, bid, err)
		return false
	}
	_, found := hdr.Find(id)
	return found
}

func (e *Engine) bucketPath(bid int64) string {
	return filepath.Join(e.dataDir, bucket.Filename(bid))
}

func (e *Engine) readHeader(bid int64) (bucket.Header, error) {
	return e.readHeaderNamed(bucket.Filename(bid))
}

func (e *Engine) readHeaderNamed(name string) (bucket.Header, error) {
	buf := make([]byte, bucket.HeaderSize)
	if err := e.fs.ReadAt(filepath.Join(e.dataDir, name), buf, 0); err != nil {
		return bucket.Header{}, err
	}
	return bucket.DecodeHeader(buf)
}

