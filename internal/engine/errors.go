package engine

import "errors"

// The taxonomy of failure kinds the engine surfaces, per the store's
// error handling design: presence errors, I/O errors (wrapped rather
// than sentineled, since their detail matters), corrupt on-disk state
// found outside recovery, and disagreements between the index and the
// directory that should never happen.
var (
	// ErrNotFound is returned when an operation requires a record to
	// exist (get, remove) and it does not.
	ErrNotFound = errors.New("engine: record not found")

	// ErrCorruptBucket is returned when a bucket's header fails
	// validation at a point other than recovery (recovery quarantines
	// the file instead of returning an error to any caller).
	ErrCorruptBucket = errors.New("engine: corrupt bucket header")

	// ErrInternalInvariant is returned when the index and the on-disk
	// directory disagree about whether a record or bucket exists. The
	// engine does not attempt to self-repair; it reports the failure
	// and leaves state untouched.
	ErrInternalInvariant = errors.New("engine: internal invariant violation")
)
