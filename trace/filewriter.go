package trace

import (
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

const defaultBufferSize = 1000

// fileWriter owns the output file shared by the file based writers. Records are buffered and
// written when the buffer fills, on Flush, and when the program exits through atexit.
type fileWriter struct {
	lock       sync.Mutex
	path       string
	extension  string
	file       *os.File
	records    []Record
	bufferSize int
	closed     bool
	// writeErr holds failed flushes of a full buffer until Close reports them
	writeErr error

	writeHeader  func(w io.Writer) error
	writeRecords func(w io.Writer, records []Record) error
}

func (t *fileWriter) init() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.file != nil {
		return errors.Newf("trace file %s is already open", t.filename())
	}

	if t.path == "" {
		t.path = "heapsim_trace_" + xid.New().String()
	}

	filename := t.filename()
	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return errors.Newf("file %s already exists", filename)
	} else if err != nil {
		return errors.Wrapf(err, "create trace file %s", filename)
	}

	if t.writeHeader != nil {
		err = t.writeHeader(file)
		if err != nil {
			err = errors.Wrapf(err, "write trace header to %s", filename)
			return errors.CombineErrors(err, errors.CombineErrors(file.Close(), os.Remove(filename)))
		}
	}
	t.file = file

	atexit.Register(func() {
		_ = t.Close()
	})

	return nil
}

func (t *fileWriter) filename() string {
	return t.path + "." + t.extension
}

// Filename returns the name of the trace file
func (t *fileWriter) Filename() string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.filename()
}

func (t *fileWriter) write(record Record) {
	t.lock.Lock()
	t.records = append(t.records, record)
	full := len(t.records) >= t.bufferSize
	t.lock.Unlock()

	if full {
		err := t.Flush()
		if err != nil {
			t.lock.Lock()
			t.writeErr = errors.CombineErrors(t.writeErr, err)
			t.lock.Unlock()
		}
	}
}

// Flush writes every buffered record to the trace file
func (t *fileWriter) Flush() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.flushLocked()
}

func (t *fileWriter) flushLocked() error {
	if t.file == nil || t.closed {
		return errors.New("trace file is not open")
	}

	if len(t.records) == 0 {
		return nil
	}

	err := t.writeRecords(t.file, t.records)
	t.records = nil
	return err
}

// Close flushes the buffer and closes the trace file. It also reports any failed flush of a full
// buffer since the file was opened. Calling it more than once is harmless.
func (t *fileWriter) Close() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.file == nil || t.closed {
		return nil
	}

	err := errors.CombineErrors(t.writeErr, t.flushLocked())
	t.writeErr = nil
	t.closed = true

	return errors.CombineErrors(err, t.file.Close())
}
