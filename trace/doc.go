// Package trace records what a heap.Simulator does.
//
// A Tracer is registered as a hook on a simulator. Each hook invocation becomes a Record that is
// handed to a Writer: CSVTraceWriter and JSONTraceWriter buffer records into a file, and
// MemoryWriter keeps them for inspection.
package trace
