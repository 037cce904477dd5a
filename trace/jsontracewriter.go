package trace

import (
	"io"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// JSONTraceWriter is a trace writer that stores records in a file with one json object per line
type JSONTraceWriter struct {
	fileWriter
}

var _ Writer = &JSONTraceWriter{}

// NewJSONTraceWriter creates a JSONTraceWriter that will write to path + ".json". An empty path
// picks a unique name when Init is called.
func NewJSONTraceWriter(path string) *JSONTraceWriter {
	return &JSONTraceWriter{
		fileWriter: fileWriter{
			path:         path,
			extension:    "json",
			bufferSize:   defaultBufferSize,
			writeRecords: writeJSONRecords,
		},
	}
}

// Init creates the trace file. It fails if the file already exists.
func (t *JSONTraceWriter) Init() error {
	return t.init()
}

func (t *JSONTraceWriter) Write(record Record) {
	t.write(record)
}

func writeJSONRecords(w io.Writer, records []Record) error {
	for _, record := range records {
		writer := jwriter.NewWriter()
		obj := writer.Object()
		record.writeJson(&obj)
		obj.End()

		err := writer.Error()
		if err != nil {
			return err
		}

		_, err = w.Write(append(writer.Bytes(), '\n'))
		if err != nil {
			return err
		}
	}

	return nil
}
