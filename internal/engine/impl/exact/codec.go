// Package exact provides the lossless baseline codec: it stores every
// windowed count verbatim and rebuilds them unchanged. Fidelity metrics
// against it should be perfect; it anchors the report's upper bound and
// exercises the codec registry with a second scheme.
package exact

import (
	"WaveBench/internal/factory"
	"WaveBench/internal/model"
)

func init() {
	factory.RegisterCodec("exact", func(p factory.Params) (model.Codec, error) {
		return New(p.WindowUS), nil
	})
}

// Codec keeps per-flow window counts in full.
type Codec struct {
	windowUS uint64
	counts   map[model.FlowKey]map[uint64]float64
}

func New(windowUS uint64) *Codec {
	return &Codec{
		windowUS: windowUS,
		counts:   make(map[model.FlowKey]map[uint64]float64),
	}
}

func (c *Codec) Name() string {
	return "exact"
}

func (c *Codec) Reset() {
	c.counts = make(map[model.FlowKey]map[uint64]float64)
}

func (c *Codec) Count(flow model.FlowKey, timeUS uint64, amount uint32) {
	w := timeUS / c.windowUS
	buckets, ok := c.counts[flow]
	if !ok {
		buckets = make(map[uint64]float64)
		c.counts[flow] = buckets
	}
	buckets[w] += float64(amount)
}

func (c *Codec) Flush() {}

func (c *Codec) Rebuild(query map[model.FlowKey][]model.Point) map[model.FlowKey][]model.Point {
	out := make(map[model.FlowKey][]model.Point, len(query))
	for flow, points := range query {
		buckets := c.counts[flow]
		estimates := make([]model.Point, len(points))
		for i, pt := range points {
			w := pt.TimeUS / c.windowUS
			estimates[i] = model.Point{TimeUS: pt.TimeUS, Value: buckets[w]}
		}
		out[flow] = estimates
	}
	return out
}
