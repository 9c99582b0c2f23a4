package engine

import (
	"fmt"

	"github.com/konbelyavskyi/docdb/internal/bucket"
)

// insertLocked inserts a new record for an id that is not yet present
// anywhere in the store. Callers must hold e.mu.
func (e *Engine) insertLocked(id int64, data []byte) error {
	bid, ok := e.idx.OwningBucket(id)
	if !ok {
		return e.createBucket(id, data)
	}

	hdr, err := e.readHeader(bid)
	if err != nil {
		return fmt.Errorf("engine: insert %d: %w", id, err)
	}

	count := hdr.Count()
	if count < bucket.RecordsPerBucket {
		return e.insertIntoBucket(bid, hdr, count, id, data)
	}
	return e.splitBucket(bid, hdr, id, data)
}

// createBucket creates the very first bucket, or a new bucket rooted
// at id when id is smaller than every existing bucket id.
func (e *Engine) createBucket(id int64, data []byte) error {
	hdr := bucket.Header{}
	hdr.Entries[0] = bucket.Entry{Offset: bucket.HeaderSize, Size: int64(len(data)), ID: id}

	if err := e.writeBucketFile(id, hdr, data); err != nil {
		return fmt.Errorf("engine: create bucket %d: %w", id, err)
	}
	e.idx.Insert(id, 1)
	e.metrics.SetBucketCount(e.idx.Len())
	return nil
}

// insertIntoBucket inserts id into a bucket that has fewer than
// RecordsPerBucket records. Payloads must stay packed in id order (so
// offsets stay in the same order as ids), so the whole bucket is
// repacked with id's payload slotted into its sorted position, even
// when id is the new largest entry.
func (e *Engine) insertIntoBucket(bid int64, hdr bucket.Header, count int, id int64, data []byte) error {
	existingPayloads, err := e.readPayloads(bid, hdr.Entries[:count])
	if err != nil {
		return fmt.Errorf("engine: insert %d into bucket %d: %w", id, bid, err)
	}

	pos := count
	for pos > 0 && hdr.Entries[pos-1].ID > id {
		pos--
	}

	entries := make([]bucket.Entry, count+1)
	payloads := make([][]byte, count+1)
	copy(entries[:pos], hdr.Entries[:pos])
	copy(payloads[:pos], existingPayloads[:pos])
	entries[pos] = bucket.Entry{ID: id, Size: int64(len(data))}
	payloads[pos] = data
	copy(entries[pos+1:], hdr.Entries[pos:count])
	copy(payloads[pos+1:], existingPayloads[pos:count])

	if err := e.rewriteBucketWithPayloads(bid, entries, payloads); err != nil {
		return fmt.Errorf("engine: insert %d into bucket %d: %w", id, bid, err)
	}
	e.idx.SetCount(bid, count+1)
	return nil
}

// splitBucket handles inserting id into a full bucket: the bucket's
// existing records are divided in half, the upper half becomes a new
// bucket, and id is then inserted into whichever half now owns it.
// The split point is fixed at the midpoint rather than at id's
// position, since id may sort before every existing entry or after
// all of them, and either half must still end up non-empty.
func (e *Engine) splitBucket(bid int64, hdr bucket.Header, id int64, data []byte) error {
	const mid = bucket.RecordsPerBucket / 2
	retained := hdr.Entries[:mid]
	promoted := hdr.Entries[mid:bucket.RecordsPerBucket]

	newBucketID := promoted[0].ID

	retainedBuf, err := e.readPayloads(bid, retained)
	if err != nil {
		return fmt.Errorf("engine: split bucket %d: %w", bid, err)
	}
	promotedBuf, err := e.readPayloads(bid, promoted)
	if err != nil {
		return fmt.Errorf("engine: split bucket %d: %w", bid, err)
	}

	if err := e.rewriteBucketWithPayloads(bid, retained, retainedBuf); err != nil {
		return fmt.Errorf("engine: split bucket %d: rewrite retained half: %w", bid, err)
	}
	if err := e.writeNewBucket(newBucketID, promoted, promotedBuf); err != nil {
		return fmt.Errorf("engine: split bucket %d: write new bucket %d: %w", bid, newBucketID, err)
	}

	e.idx.SetCount(bid, len(retained))
	e.idx.Insert(newBucketID, len(promoted))
	e.metrics.RecordSplit()
	e.metrics.SetBucketCount(e.idx.Len())

	return e.insertLocked(id, data)
}

// readPayloads reads every payload named by entries out of bid's
// current file, in entry order, before any of those bytes are
// overwritten by a subsequent rewrite.
func (e *Engine) readPayloads(bid int64, entries []bucket.Entry) ([][]byte, error) {
	path := e.bucketPath(bid)
	out := make([][]byte, len(entries))
	for i, ent := range entries {
		buf := make([]byte, ent.Size)
		if ent.Size > 0 {
			if err := e.fs.ReadAt(path, buf, ent.Offset); err != nil {
				return nil, err
			}
		}
		out[i] = buf
	}
	return out, nil
}

// rewriteBucketWithPayloads rewrites bid's file in place from
// scratch: a fresh header for entries, immediately followed by their
// payloads packed contiguously in order. payloads must already have
// been read off disk before this call, since it may overwrite the
// same offsets it is reading from.
func (e *Engine) rewriteBucketWithPayloads(bid int64, entries []bucket.Entry, payloads [][]byte) error {
	hdr := bucket.Header{}
	offset := int64(bucket.HeaderSize)
	for i, ent := range entries {
		hdr.Entries[i] = bucket.Entry{Offset: offset, Size: ent.Size, ID: ent.ID}
		offset += ent.Size
	}
	encoded, err := bucket.EncodeHeader(hdr)
	if err != nil {
		return err
	}
	path := e.bucketPath(bid)
	if err := e.fs.WriteAt(path, encoded, 0, true); err != nil {
		return err
	}
	off := int64(bucket.HeaderSize)
	for _, p := range payloads {
		if len(p) > 0 {
			if err := e.fs.WriteAt(path, p, off, false); err != nil {
				return err
			}
		}
		off += int64(len(p))
	}
	return nil
}

func (e *Engine) writeNewBucket(bid int64, entries []bucket.Entry, payloads [][]byte) error {
	return e.rewriteBucketWithPayloads(bid, entries, payloads)
}

func (e *Engine) writeBucketFile(bid int64, hdr bucket.Header, payload []byte) error {
	encoded, err := bucket.EncodeHeader(hdr)
	if err != nil {
		return err
	}
	path := e.bucketPath(bid)
	if err := e.fs.WriteAt(path, encoded, 0, true); err != nil {
		return err
	}
	if len(payload) > 0 {
		if err := e.fs.WriteAt(path, payload, bucket.HeaderSize, false); err != nil {
			return err
		}
	}
	return nil
}

// updateLocked replaces the payload for an id known to already exist.
// If the new payload is the same size as the old one it is written
// in place; otherwise the whole bucket is repacked to keep payloads
// contiguous.
func (e *Engine) updateLocked(id int64, data []byte) error {
	bid, ok := e.idx.OwningBucket(id)
	if !ok {
		return ErrInternalInvariant
	}
	hdr, err := e.readHeader(bid)
	if err != nil {
		return fmt.Errorf("engine: update %d: %w", id, err)
	}
	pos, found := hdr.Find(id)
	if !found {
		return ErrInternalInvariant
	}

	old := hdr.Entries[pos]
	if int64(len(data)) == old.Size {
		if err := e.fs.WriteAt(e.bucketPath(bid), data, old.Offset, false); err != nil {
			return fmt.Errorf("engine: update %d: write payload: %w", id, err)
		}
		return nil
	}

	count := hdr.Count()
	entries := make([]bucket.Entry, count)
	copy(entries, hdr.Entries[:count])
	entries[pos].Size = int64(len(data))

	payloads, err := e.readPayloads(bid, hdr.Entries[:count])
	if err != nil {
		return fmt.Errorf("engine: update %d: %w", id, err)
	}
	payloads[pos] = data

	if err := e.rewriteBucketWithPayloads(bid, entries, payloads); err != nil {
		return fmt.Errorf("engine: update %d: %w", id, err)
	}
	return nil
}

// removeLocked deletes id from its bucket, compacting the header and
// shifting trailing payload bytes to close the gap. If the removed
// record held the bucket's smallest id, the file is renamed to the
// new smallest id; if the bucket becomes empty, the file is deleted
// and the bucket is erased from the index.
func (e *Engine) removeLocked(id int64) error {
	bid, ok := e.idx.OwningBucket(id)
	if !ok {
		return ErrInternalInvariant
	}
	hdr, err := e.readHeader(bid)
	if err != nil {
		return fmt.Errorf("engine: remove %d: %w", id, err)
	}
	pos, found := hdr.Find(id)
	if !found {
		return ErrInternalInvariant
	}

	count := hdr.Count()
	remaining := make([]bucket.Entry, 0, count-1)
	for i := 0; i < count; i++ {
		if i == pos {
			continue
		}
		remaining = append(remaining, hdr.Entries[i])
	}

	if len(remaining) == 0 {
		if err := e.fs.Remove(e.bucketPath(bid)); err != nil {
			return fmt.Errorf("engine: remove %d: delete empty bucket %d: %w", id, bid, err)
		}
		e.idx.Erase(bid)
		e.metrics.SetBucketCount(e.idx.Len())
		return nil
	}

	payloads, err := e.readPayloads(bid, hdr.Entries[:count])
	if err != nil {
		return fmt.Errorf("engine: remove %d: %w", id, err)
	}
	remainingPayloads := make([][]byte, 0, len(remaining))
	for i := 0; i < count; i++ {
		if i == pos {
			continue
		}
		remainingPayloads = append(remainingPayloads, payloads[i])
	}

	newBucketID := bid
	renamed := pos == 0 && remaining[0].ID != bid
	if renamed {
		newBucketID = remaining[0].ID
	}

	if err := e.rewriteBucketWithPayloads(bid, remaining, remainingPayloads); err != nil {
		return fmt.Errorf("engine: remove %d: %w", id, err)
	}

	if renamed {
		if err := e.fs.Rename(e.bucketPath(bid), e.bucketPath(newBucketID)); err != nil {
			return fmt.Errorf("engine: remove %d: rename bucket %d to %d: %w", id, bid, newBucketID, err)
		}
		e.idx.Rename(bid, newBucketID)
	} else {
		e.idx.SetCount(bid, len(remaining))
	}
	return nil
}
