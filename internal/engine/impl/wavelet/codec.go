package wavelet

import (
	"WaveBench/internal/factory"
	"WaveBench/internal/model"
)

func init() {
	factory.RegisterCodec("wavesketch-ideal", func(p factory.Params) (model.Codec, error) {
		return NewCodec(p.MemoryKB, p.WindowUS), nil
	})
}

// Codec is the idealized wavelet scheme: it keeps every flow's windowed
// counts exactly and applies the lossy Haar round trip only at rebuild
// time. It is the upper bound the hashed in-network variants are compared
// against.
type Codec struct {
	windowUS uint64
	k        uint32
	counts   map[model.FlowKey]map[uint64]float64
}

// NewCodec creates the ideal wavelet codec for one memory budget.
func NewCodec(memoryKB uint32, windowUS uint64) *Codec {
	return &Codec{
		windowUS: windowUS,
		k:        KForBudget(memoryKB * 1024),
		counts:   make(map[model.FlowKey]map[uint64]float64),
	}
}

func (c *Codec) Name() string {
	return "wavesketch-ideal"
}

// K returns the coefficient retention derived from the memory budget.
func (c *Codec) K() uint32 {
	return c.k
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

// Flush is a no-op: the ideal codec defers all work to Rebuild.
func (c *Codec) Flush() {}

// Rebuild compresses each queried flow's curve over the span covered by the
// query timestamps and returns the reconstruction sampled at those
// timestamps. Windows the codec never saw rebuild as zeros.
func (c *Codec) Rebuild(query map[model.FlowKey][]model.Point) map[model.FlowKey][]model.Point {
	out := make(map[model.FlowKey][]model.Point, len(query))

	for flow, points := range query {
		if len(points) == 0 {
			continue
		}
		startWin := points[0].TimeUS / c.windowUS
		endWin := startWin
		for _, pt := range points {
			w := pt.TimeUS / c.windowUS
			if w < startWin {
				startWin = w
			}
			if w > endWin {
				endWin = w
			}
		}

		curve := make([]float64, endWin-startWin+1)
		if buckets, ok := c.counts[flow]; ok {
			for w, v := range buckets {
				if w >= startWin && w <= endWin {
					curve[w-startWin] = v
				}
			}
		}

		reconstructed := CompressAndReconstruct(curve, int(c.k))

		estimates := make([]model.Point, len(points))
		for i, pt := range points {
			w := pt.TimeUS / c.windowUS
			estimates[i] = model.Point{TimeUS: pt.TimeUS, Value: reconstructed[w-startWin]}
		}
		out[flow] = estimates
	}
	return out
}
