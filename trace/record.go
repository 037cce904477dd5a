package trace

import (
	"strconv"
	"strings"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
	"github.com/vkngwrapper/heapsim/timing"
)

// Record is a single traced simulator event
type Record struct {
	// ID is unique for every record
	ID string
	// Time is the engine time of the event
	Time timing.VTime
	// Kind is the name of the hook position that produced the record
	Kind string
	// Blocks are the ids of the blocks involved
	Blocks []metadata.BlockID
	// Strategy is the allocation strategy, for allocation events
	Strategy string
	// RequestedSize is the allocation size, for allocation events
	RequestedSize int
	// Message is the simulator status message at the time of the event
	Message   string
	UsedBytes int
	FreeBytes int
}

func (r Record) blockList() string {
	ids := make([]string, 0, len(r.Blocks))
	for _, id := range r.Blocks {
		ids = append(ids, strconv.Itoa(int(id)))
	}

	return strings.Join(ids, " ")
}

func (r Record) writeJson(obj *jwriter.ObjectState) {
	obj.Name("ID").String(r.ID)
	obj.Name("Time").Float64(r.Time.Seconds())
	obj.Name("Kind").String(r.Kind)

	blocks := obj.Name("Blocks").Array()
	for _, id := range r.Blocks {
		blocks.Int(int(id))
	}
	blocks.End()

	if r.Strategy != "" {
		obj.Name("Strategy").String(r.Strategy)
	}
	if r.RequestedSize != 0 {
		obj.Name("RequestedSize").Int(r.RequestedSize)
	}
	obj.Name("Message").String(r.Message)
	obj.Name("UsedBytes").Int(r.UsedBytes)
	obj.Name("FreeBytes").Int(r.FreeBytes)
}

// WriteRecordsJson writes records to writer as a json array
func WriteRecordsJson(writer *jwriter.Writer, records []Record) {
	arr := writer.Array()
	defer arr.End()

	for _, record := range records {
		obj := arr.Object()
		record.writeJson(&obj)
		obj.End()
	}
}
