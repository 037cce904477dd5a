// Package heap animates a simulated memory allocator.
//
// A Simulator owns one heap of a fixed size, partitioned into an address-ordered chain of
// blocks. Callers ask it to allocate, free or reset; it answers immediately with what it intends
// to do and then plays the operation out as a series of timed phases on a timing.Engine, so that
// a presentation layer can show each intermediate state.
//
// # Operations
//
// Allocate selects a free block with the chosen strategy (first, best or worst fit). After a
// short pause the block is either split, leaving a new free block behind it, or handed over
// whole when the remainder would be smaller than metadata.MinBlockSize. Requests larger than
// every free block report out of memory and leave the heap unchanged.
//
// Free marks a block free and, after a pause, merges it with any free neighbour. Merging runs
// as a sequence of highlight and merge steps followed by a finalize step that removes the
// absorbed blocks (see package coalesce).
//
// Reset returns the heap to a single free block from any state, discarding pending phases.
//
// # Concurrency
//
// Only one operation runs at a time. While a phase is pending, Allocate and Free return
// ErrOperationsDisabled. The Simulator is safe for concurrent use unless it was created with
// CreateExternallySynchronized. Hooks run while the Simulator's lock is held and must not call
// back into it; everything they need is carried in the Event they receive.
package heap
