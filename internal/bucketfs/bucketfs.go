// Package bucketfs is the narrow filesystem abstraction the storage
// engine depends on: resolve the working directory, ensure a directory
// exists, list entries, and read/write/remove/rename files. It is the
// only part of the engine that talks to the host filesystem.
package bucketfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// FS is the abstract filesystem surface the storage engine is built
// against. OSFS is the only implementation; tests may substitute a
// fake to exercise engine failure paths without touching disk.
type FS interface {
	Cwd() (string, error)
	EnsureDir(path string) error
	ListDir(path string) ([]string, error)
	ReadAt(path string, buf []byte, offset int64) error
	WriteAt(path string, data []byte, offset int64, truncate bool) error
	Remove(path string) error
	Rename(oldpath, newpath string) error
}

// OSFS implements FS over the host operating system's filesystem.
type OSFS struct{}

// NewOSFS returns the default, disk-backed FS implementation.
func NewOSFS() *OSFS { return &OSFS{} }

// Cwd returns the process's current working directory. Unlike the
// other methods, a failure here is treated as fatal by the caller: the
// store cannot place its data directory without it.
func (OSFS) Cwd() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("bucketfs: getwd: %w", err)
	}
	return dir, nil
}

// EnsureDir creates path if it does not already exist. It fails if
// path exists but is not a directory.
func (OSFS) EnsureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("bucketfs: %s exists and is not a directory", path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("bucketfs: stat %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0o777); err != nil {
		return fmt.Errorf("bucketfs: mkdir %s: %w", path, err)
	}
	return nil
}

// ListDir returns the names (not full paths) of the regular files
// directly inside path.
func (OSFS) ListDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("bucketfs: readdir %s: %w", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// ReadAt reads exactly len(buf) bytes from path starting at offset. A
// short read is an error, not a partial result.
func (OSFS) ReadAt(path string, buf []byte, offset int64) error {
	f, err := openRetryEINTR(path, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("bucketfs: open %s: %w", path, err)
	}
	defer f.Close()

	if len(buf) == 0 {
		return nil
	}
	if _, err := io.ReadFull(newRetryingReaderAt(f, offset), buf); err != nil {
		return fmt.Errorf("bucketfs: read %s at %d: %w", path, offset, err)
	}
	return nil
}

// WriteAt writes data to path at offset, creating the file with mode
// 0640 if it does not exist. If truncate is set the file is truncated
// to offset+len(data) afterward. fsync is issued before the file is
// closed.
func (OSFS) WriteAt(path string, data []byte, offset int64, truncate bool) error {
	f, err := openRetryEINTR(path, os.O_RDWR|os.O_CREATE, 0o640)
	if err != nil {
		return fmt.Errorf("bucketfs: open %s: %w", path, err)
	}
	defer f.Close()

	if len(data) > 0 {
		if err := writeAtRetryEINTR(f, data, offset); err != nil {
			return fmt.Errorf("bucketfs: write %s at %d: %w", path, offset, err)
		}
	}
	if truncate {
		if err := retryEINTR(func() error { return f.Truncate(offset + int64(len(data))) }); err != nil {
			return fmt.Errorf("bucketfs: truncate %s: %w", path, err)
		}
	}
	if err := retryEINTR(f.Sync); err != nil {
		return fmt.Errorf("bucketfs: fsync %s: %w", path, err)
	}
	return nil
}

// Remove deletes path.
func (OSFS) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("bucketfs: remove %s: %w", path, err)
	}
	return nil
}

// Rename renames oldpath to newpath.
func (OSFS) Rename(oldpath, newpath string) error {
	if err := os.Rename(oldpath, newpath); err != nil {
		return fmt.Errorf("bucketfs: rename %s to %s: %w", oldpath, newpath, err)
	}
	return nil
}

// retryEINTR runs fn, retrying as long as it reports EINTR. The Go
// runtime already retries EINTR internally for most syscalls it makes
// on the caller's behalf; this loop exists for the handful of
// operations (Sync, Truncate) where that is not guaranteed on every
// platform, matching the explicit retry-on-EINTR contract the engine
// is specified against.
func retryEINTR(fn func() error) error {
	for {
		err := fn()
		if errors.Is(err, syscall.EINTR) {
			continue
		}
		return err
	}
}

func openRetryEINTR(path string, flag int, perm os.FileMode) (*os.File, error) {
	var f *os.File
	err := retryEINTR(func() error {
		var openErr error
		f, openErr = os.OpenFile(path, flag, perm)
		return openErr
	})
	return f, err
}

type retryingReaderAt struct {
	f      *os.File
	offset int64
}

func newRetryingReaderAt(f *os.File, offset int64) io.Reader {
	return &retryingReaderAt{f: f, offset: offset}
}

func (r *retryingReaderAt) Read(p []byte) (int, error) {
	var n int
	err := retryEINTR(func() error {
		var readErr error
		n, readErr = r.f.ReadAt(p, r.offset)
		return readErr
	})
	r.offset += int64(n)
	return n, err
}

func writeAtRetryEINTR(f *os.File, data []byte, offset int64) error {
	for len(data) > 0 {
		var n int
		err := retryEINTR(func() error {
			var writeErr error
			n, writeErr = f.WriteAt(data, offset)
			return writeErr
		})
		if err != nil {
			return err
		}
		data = data[n:]
		offset += int64(n)
	}
	return nil
}
