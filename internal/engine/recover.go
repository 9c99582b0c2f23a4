package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/konbelyavskyi/docdb/internal/bucket"
)

// recover scans the data directory, validates every bucket file's
// header, and repopulates the in-memory index from what it finds.
// A file whose name is not a valid bucket filename is skipped. A file
// whose header fails validation is quarantined by renaming it with a
// ".bad" suffix rather than aborting startup; the rest of the
// directory still loads.
func (e *Engine) recover() error {
	names, err := e.fs.ListDir(e.dataDir)
	if err != nil {
		return fmt.Errorf("engine: recover: list %s: %w", e.dataDir, err)
	}

	for _, name := range names {
		if !bucket.IsValidName(name) {
			continue
		}
		bid, err := bucket.ParseID(name)
		if err != nil {
			e.logger.Printf("recover: %s: %v, quarantining", name, err)
			e.quarantine(name)
			continue
		}

		hdr, err := e.readHeaderNamed(name)
		if err != nil {
			e.logger.Printf("recover: %s: read header: %v, quarantining", name, err)
			e.quarantine(name)
			continue
		}
		if _, err := hdr.Validate(bid); err != nil {
			e.logger.Printf("recover: bucket %d header failed validation: %v, quarantining", bid, err)
			e.quarantine(name)
			continue
		}

		e.idx.Insert(bid, hdr.Count())
	}
	return nil
}

// quarantine renames a bucket file that failed validation so it no
// longer participates in routing, without destroying the evidence.
// A file already ending in ".bad" is left alone to avoid an infinite
// chain of suffixes across repeated failed recoveries.
func (e *Engine) quarantine(name string) {
	if strings.HasSuffix(name, ".bad") {
		return
	}
	src := filepath.Join(e.dataDir, name)
	dst := filepath.Join(e.dataDir, name+".bad")
	if err := e.fs.Rename(src, dst); err != nil {
		e.logger.Printf("recover: quarantine %s: %v", name, err)
	}
}
