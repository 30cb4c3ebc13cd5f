package cycle

import (
	"fmt"

	"WaveBench/internal/factory"
)

// BuildLanes instantiates one lane per codec name and memory budget via
// the codec factory, the sweep the config describes.
func BuildLanes(codecs []string, memoriesKB []uint32, windowUS uint64) ([]Lane, error) {
	lanes := make([]Lane, 0, len(codecs)*len(memoriesKB))
	for _, name := range codecs {
		for _, memoryKB := range memoriesKB {
			codec, err := factory.Create(name, factory.Params{MemoryKB: memoryKB, WindowUS: windowUS})
			if err != nil {
				return nil, fmt.Errorf("building lane %s/%dKB: %w", name, memoryKB, err)
			}
			lane := Lane{Codec: codec, MemoryKB: memoryKB}
			// Sparsifying codecs report their retained-coefficient count.
			if ka, ok := codec.(interface{ K() uint32 }); ok {
				lane.K = ka.K()
			}
			lanes = append(lanes, lane)
		}
	}
	return lanes, nil
}
