package trace

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{"ID", "Time", "Kind", "Blocks", "Strategy", "RequestedSize", "Message", "UsedBytes", "FreeBytes"}

// CSVTraceWriter is a trace writer that stores records in a CSV file
type CSVTraceWriter struct {
	fileWriter
}

var _ Writer = &CSVTraceWriter{}

// NewCSVTraceWriter creates a CSVTraceWriter that will write to path + ".csv". An empty path
// picks a unique name when Init is called.
func NewCSVTraceWriter(path string) *CSVTraceWriter {
	return &CSVTraceWriter{
		fileWriter: fileWriter{
			path:       path,
			extension:  "csv",
			bufferSize: defaultBufferSize,
			writeHeader: func(w io.Writer) error {
				writer := csv.NewWriter(w)
				_ = writer.Write(csvHeader)
				writer.Flush()
				return writer.Error()
			},
			writeRecords: writeCSVRecords,
		},
	}
}

// Init creates the trace file. It fails if the file already exists.
func (t *CSVTraceWriter) Init() error {
	return t.init()
}

func (t *CSVTraceWriter) Write(record Record) {
	t.write(record)
}

func writeCSVRecords(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)

	for _, record := range records {
		_ = writer.Write([]string{
			record.ID,
			strconv.FormatFloat(record.Time.Seconds(), 'f', 3, 64),
			record.Kind,
			record.blockList(),
			record.Strategy,
			strconv.Itoa(record.RequestedSize),
			record.Message,
			strconv.Itoa(record.UsedBytes),
			strconv.Itoa(record.FreeBytes),
		})
	}

	writer.Flush()
	return writer.Error()
}
