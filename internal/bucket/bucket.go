// Package bucket implements the on-disk bucket-file format: the fixed-size
// header of entries, its binary codec, and bucket filename validation.
package bucket

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
)

const (
	// RecordsPerBucket is B, the maximum number of records held by a
	// single bucket file.
	RecordsPerBucket = 10

	// IDDigits is the zero-padded decimal width of a bucket filename's
	// numeric prefix.
	IDDigits = 20

	// Ext is the bucket filename extension.
	Ext = ".db"

	entryWidth = 24 // Offset int64 + Size int64 + ID int64

	// HeaderSize is the fixed byte length of a bucket's header.
	HeaderSize = RecordsPerBucket * entryWidth

	filenameLength = IDDigits + len(Ext)
)

// Entry is one header slot: the payload's location and the id it holds.
// Offset == 0 marks an unused slot, since the header itself occupies
// offset 0..HeaderSize and no real payload can start there.
type Entry struct {
	Offset int64
	Size   int64
	ID     int64
}

func (e Entry) used() bool { return e.Offset != 0 }

// Header is the fixed-size array of RecordsPerBucket entries at the
// start of every bucket file.
type Header struct {
	Entries [RecordsPerBucket]Entry
}

// Count returns the number of used slots in h, assuming the invariant
// that used slots are packed into the prefix [0, count).
func (h Header) Count() int {
	n := 0
	for _, e := range h.Entries {
		if !e.used() {
			break
		}
		n++
	}
	return n
}

// Find returns the slot holding id, scanning only the used prefix.
func (h Header) Find(id int64) (pos int, found bool) {
	for i, e := range h.Entries {
		if !e.used() {
			break
		}
		if e.ID == id {
			return i, true
		}
		if e.ID > id {
			break
		}
	}
	return 0, false
}

// Validate checks the invariants of §3: strictly ascending ids packed
// from slot 0, a sentinel tail, and a smallest id matching bid.
func (h Header) Validate(bid int64) (count int, err error) {
	count = h.Count()
	if count == 0 {
		return 0, fmt.Errorf("bucket: header has no used entries")
	}
	for i := 0; i < count; i++ {
		e := h.Entries[i]
		if e.Offset < int64(HeaderSize) || e.Size < 0 {
			return 0, fmt.Errorf("bucket: entry %d has invalid region [%d,+%d)", i, e.Offset, e.Size)
		}
		if i > 0 && h.Entries[i-1].ID >= e.ID {
			return 0, fmt.Errorf("bucket: entries out of order at slot %d", i)
		}
	}
	for i := count; i < RecordsPerBucket; i++ {
		if h.Entries[i].used() {
			return 0, fmt.Errorf("bucket: used entry found after sentinel at slot %d", i)
		}
	}
	if h.Entries[0].ID != bid {
		return 0, fmt.Errorf("bucket: smallest id %d does not match filename id %d", h.Entries[0].ID, bid)
	}
	return count, nil
}

// EncodeHeader serializes h field-by-field in little-endian order, the
// same way a fixed wire record is built elsewhere in this codebase.
func EncodeHeader(h Header) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	for _, e := range h.Entries {
		if err := binary.Write(buf, binary.LittleEndian, e.Offset); err != nil {
			return nil, fmt.Errorf("bucket: encode header: %w", err)
		}
		if err := binary.Write(buf, binary.LittleEndian, e.Size); err != nil {
			return nil, fmt.Errorf("bucket: encode header: %w", err)
		}
		if err := binary.Write(buf, binary.LittleEndian, e.ID); err != nil {
			return nil, fmt.Errorf("bucket: encode header: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeHeader parses a HeaderSize-length byte slice produced by
// EncodeHeader.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) != HeaderSize {
		return Header{}, fmt.Errorf("bucket: decode header: want %d bytes, got %d", HeaderSize, len(data))
	}
	var h Header
	r := bytes.NewReader(data)
	for i := range h.Entries {
		if err := binary.Read(r, binary.LittleEndian, &h.Entries[i].Offset); err != nil {
			return Header{}, fmt.Errorf("bucket: decode header: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &h.Entries[i].Size); err != nil {
			return Header{}, fmt.Errorf("bucket: decode header: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &h.Entries[i].ID); err != nil {
			return Header{}, fmt.Errorf("bucket: decode header: %w", err)
		}
	}
	return h, nil
}

// IsValidName reports whether name has the shape of a bucket filename:
// IDDigits decimal digits followed by Ext.
func IsValidName(name string) bool {
	if len(name) != filenameLength {
		return false
	}
	if name[IDDigits:] != Ext {
		return false
	}
	for i := 0; i < IDDigits; i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}

// Filename returns the bucket filename for bid: its zero-padded decimal
// representation followed by Ext. Callers are expected to pass
// non-negative ids; a negative id does not round-trip through
// ParseID, matching the legacy layout this format is inherited from.
func Filename(bid int64) string {
	return fmt.Sprintf("%0*d%s", IDDigits, bid, Ext)
}

// ParseID extracts the bucket id encoded in a valid bucket filename.
func ParseID(name string) (int64, error) {
	if !IsValidName(name) {
		return 0, fmt.Errorf("bucket: invalid filename %q", name)
	}
	return strconv.ParseInt(name[:IDDigits], 10, 64)
}
