package trace

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Writer receives records from a Tracer
type Writer interface {
	// Init prepares the writer. It must be called before the first Write.
	Init() error
	Write(record Record)
	// Flush pushes buffered records to their destination
	Flush() error
}

// Format selects the file format of NewFileWriter
type Format uint32

const (
	FormatCSV Format = iota
	FormatJSON
)

var formatMapping = map[Format]string{
	FormatCSV:  "csv",
	FormatJSON: "json",
}

func (f Format) String() string {
	return formatMapping[f]
}

// ParseFormat converts "csv" or "json" to a Format
func ParseFormat(text string) (Format, error) {
	for format, name := range formatMapping {
		if strings.EqualFold(name, text) {
			return format, nil
		}
	}

	return 0, errors.Newf("unknown trace format %q", text)
}

// NewFileWriter creates an uninitialized writer that stores records at path + "." + format
func NewFileWriter(format Format, path string) (Writer, error) {
	switch format {
	case FormatCSV:
		return NewCSVTraceWriter(path), nil
	case FormatJSON:
		return NewJSONTraceWriter(path), nil
	}

	return nil, errors.Newf("unknown trace format %d", format)
}
