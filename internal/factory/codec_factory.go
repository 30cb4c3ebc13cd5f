package factory

import (
	"fmt"
	"sort"

	"WaveBench/internal/model"
)

// Params carries the per-run configuration a codec needs at construction.
type Params struct {
	// MemoryKB is the memory budget; codecs derive their retention from it.
	MemoryKB uint32
	// WindowUS is the aggregation window width in microseconds.
	WindowUS uint64
}

// CodecFactory builds one codec instance for a run.
type CodecFactory func(p Params) (model.Codec, error)

// registry maps algorithm names to their factory functions.
var registry = make(map[string]CodecFactory)

// RegisterCodec registers a new codec under its algorithm name.
// Registering the same name twice is a programming error.
func RegisterCodec(name string, f CodecFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("codec '%s' already registered", name))
	}
	registry[name] = f
}

// Create instantiates the named codec.
func Create(name string, p Params) (model.Codec, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown codec: '%s'", name)
	}
	return f(p)
}

// Names returns all registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
