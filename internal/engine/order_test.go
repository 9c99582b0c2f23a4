package engine

import "testing"

// Regression test: inserting an id smaller than the bucket's current
// maximum, into a bucket that still has room, must keep on-disk
// offsets in the same order as ids (invariant 3), not just append the
// new payload at the file tail. The bucket is rooted at 1 first, since
// an id smaller than every bucket id roots a new bucket of its own.
func TestInsertOutOfOrderKeepsOffsetsInIDOrder(t *testing.T) {
	e := newTestEngine(t)

	if err := e.Insert(1, []byte("one")); err != nil {
		t.Fatalf("insert 1: %v", err)
	}
	if err := e.Insert(10, []byte("ten")); err != nil {
		t.Fatalf("insert 10: %v", err)
	}
	if err := e.Insert(5, []byte("five")); err != nil {
		t.Fatalf("insert 5: %v", err)
	}

	bid, ok := e.idx.OwningBucket(5)
	if !ok {
		t.Fatalf("expected a bucket owning id 5")
	}
	hdr, err := e.readHeader(bid)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	count := hdr.Count()
	if count != 3 {
		t.Fatalf("expected 3 entries, got %d", count)
	}
	for i := 1; i < count; i++ {
		prev, cur := hdr.Entries[i-1], hdr.Entries[i]
		if prev.ID >= cur.ID {
			t.Fatalf("entries not in ascending id order: %+v", hdr.Entries[:count])
		}
		if prev.Offset >= cur.Offset {
			t.Fatalf("offset order does not match id order: %+v", hdr.Entries[:count])
		}
	}

	got5, err := e.Get(5)
	if err != nil {
		t.Fatalf("get 5: %v", err)
	}
	if string(got5) != "five" {
		t.Fatalf("get 5 = %q, want %q", got5, "five")
	}
	got10, err := e.Get(10)
	if err != nil {
		t.Fatalf("get 10: %v", err)
	}
	if string(got10) != "ten" {
		t.Fatalf("get 10 = %q, want %q", got10, "ten")
	}
}

// Inserting five ids into a single bucket in mixed order (the smallest
// first, since it roots the bucket, then a middle id, one below it,
// the largest, and one between the last two) must still leave every
// payload addressable and offsets ascending with ids.
func TestInsertFullyOutOfOrderSequence(t *testing.T) {
	e := newTestEngine(t)

	order := []int64{10, 50, 30, 90, 70}
	for _, id := range order {
		if err := e.Insert(id, []byte{byte(id)}); err != nil {
			t.Fatalf("insert %d: %v", id, err)
		}
	}

	bid, ok := e.idx.OwningBucket(10)
	if !ok {
		t.Fatalf("expected a bucket owning id 10")
	}
	hdr, err := e.readHeader(bid)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	count := hdr.Count()
	if count != len(order) {
		t.Fatalf("expected %d entries, got %d", len(order), count)
	}
	for i := 1; i < count; i++ {
		prev, cur := hdr.Entries[i-1], hdr.Entries[i]
		if prev.ID >= cur.ID || prev.Offset >= cur.Offset {
			t.Fatalf("order violated at slot %d: %+v", i, hdr.Entries[:count])
		}
	}

	for _, id := range order {
		got, err := e.Get(id)
		if err != nil {
			t.Fatalf("get %d: %v", id, err)
		}
		if len(got) != 1 || got[0] != byte(id) {
			t.Fatalf("get %d = %v", id, got)
		}
	}
}
