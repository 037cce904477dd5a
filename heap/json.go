package heap

import (
	"strconv"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/heapsim/memutils"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
)

// PrintDetailedMap writes the simulator's full state to writer as a single json object: the
// heap summary and blocks, plus the status and animation state of the operation in progress
func (s *Simulator) PrintDetailedMap(writer *jwriter.Writer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	objState := writer.Object()
	defer objState.End()

	objState.Name("Time").String(s.engine.Now().String())
	objState.Name("Status").String(s.status)
	objState.Name("OperationsDisabled").Bool(s.operationsDisabled)
	objState.Name("Coalescing").Bool(s.coalescing)

	animating := objState.Name("Animating").Array()
	for _, id := range s.animating {
		animating.Int(int(id))
	}
	animating.End()

	heapObj := objState.Name("Heap").Object()
	s.metadata.BlockJsonData(heapObj)
	heapObj.End()

	var stats memutils.DetailedStatistics
	stats.Clear()
	s.metadata.AddDetailedStatistics(&stats)

	statsObj := objState.Name("Statistics").Object()
	printDetailedStatistics(&statsObj, &stats)
	statsObj.End()

	transitions := objState.Name("Transitions").Object()
	_ = s.metadata.VisitAllBlocks(func(block metadata.Block) error {
		transition, ok := s.transitions[block.ID]
		if ok && transition != TransitionNone {
			transitions.Name(strconv.Itoa(int(block.ID))).String(transition.String())
		}
		return nil
	})
	transitions.End()
}

func printDetailedStatistics(json *jwriter.ObjectState, stats *memutils.DetailedStatistics) {
	json.Name("BlockCount").Int(stats.BlockCount)
	json.Name("UsedBlockCount").Int(stats.UsedBlockCount)
	json.Name("FreeBlockCount").Int(stats.FreeBlockCount())
	json.Name("UsedBytes").Int(stats.UsedBytes)
	json.Name("FreeBytes").Int(stats.FreeBytes())
	json.Name("RequestedBytes").Int(stats.RequestedBytes)

	if stats.UsedBlockCount > 0 {
		json.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}
	if stats.FreeBlockCount() > 0 {
		json.Name("FreeBlockSizeMin").Int(stats.FreeBlockSizeMin)
		json.Name("FreeBlockSizeMax").Int(stats.FreeBlockSizeMax)
	}

	json.Name("ExternalFragmentation").Float64(stats.ExternalFragmentation())
}
