package trace

import (
	"slices"
	"sync"
)

// MemoryWriter keeps every record in memory
type MemoryWriter struct {
	lock    sync.Mutex
	records []Record
	limit   int
}

var _ Writer = &MemoryWriter{}

// NewMemoryWriter creates a MemoryWriter that keeps the most recent limit records, or every
// record if limit is 0
func NewMemoryWriter(limit int) *MemoryWriter {
	return &MemoryWriter{limit: limit}
}

func (w *MemoryWriter) Init() error {
	return nil
}

func (w *MemoryWriter) Write(record Record) {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.records = append(w.records, record)
	if w.limit > 0 && len(w.records) > w.limit {
		w.records = slices.Delete(w.records, 0, len(w.records)-w.limit)
	}
}

func (w *MemoryWriter) Flush() error {
	return nil
}

// Records returns a copy of the stored records, oldest first
func (w *MemoryWriter) Records() []Record {
	w.lock.Lock()
	defer w.lock.Unlock()

	return slices.Clone(w.records)
}

// Reset drops every stored record
func (w *MemoryWriter) Reset() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.records = nil
}
