// Package index implements the engine's in-memory sorted map from
// bucket id to record count, supporting predecessor lookup ("owning
// bucket") in O(log B) time over the number of buckets.
package index

import (
	"sync"

	"github.com/google/btree"
)

type slot struct {
	id    int64
	count int
}

func less(a, b slot) bool { return a.id < b.id }

// Index holds one engine's bucket-id -> record-count mapping; each
// Engine creates its own. It is safe for concurrent use, though the
// engine additionally serialises all access under its own lock.
type Index struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[slot]
}

// New returns an empty Index.
func New() *Index {
	return &Index{tree: btree.NewG(32, less)}
}

// OwningBucket returns the largest bucket id <= id, i.e. the bucket
// that would own a record with that id, and whether any bucket
// qualifies.
func (idx *Index) OwningBucket(id int64) (bucketID int64, ok bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	idx.tree.DescendLessOrEqual(slot{id: id}, func(s slot) bool {
		bucketID, ok = s.id, true
		return false
	})
	return bucketID, ok
}

// Count returns the current record count for bucketID, and whether it
// is present in the index at all.
func (idx *Index) Count(bucketID int64) (int, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	s, ok := idx.tree.Get(slot{id: bucketID})
	return s.count, ok
}

// Insert adds a new bucket to the index.
func (idx *Index) Insert(bucketID int64, count int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.tree.ReplaceOrInsert(slot{id: bucketID, count: count})
}

// SetCount updates the record count of an existing bucket.
func (idx *Index) SetCount(bucketID int64, count int) {
	idx.Insert(bucketID, count)
}

// Erase removes a bucket from the index, e.g. after its last record is
// removed.
func (idx *Index) Erase(bucketID int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.tree.Delete(slot{id: bucketID})
}

// Rename re-keys a bucket, preserving its record count. It is used
// when a bucket's smallest id changes after removing its first entry.
func (idx *Index) Rename(oldID, newID int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	s, ok := idx.tree.Delete(slot{id: oldID})
	if !ok {
		return
	}
	idx.tree.ReplaceOrInsert(slot{id: newID, count: s.count})
}

// Len returns the number of buckets currently tracked.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.tree.Len()
}

// Keys returns the bucket ids currently tracked, in ascending order.
func (idx *Index) Keys() []int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	keys := make([]int64, 0, idx.tree.Len())
	idx.tree.Ascend(func(s slot) bool {
		keys = append(keys, s.id)
		return true
	})
	return keys
}
