// Package congestion correlates sampled congestion-mark events against
// ground-truth queue occupancy to measure how reliably congestion windows
// are detected under probabilistic sampling.
package congestion

import (
	"fmt"
	"math/rand/v2"
)

// Evaluator owns the per-run mark and occupancy state explicitly; there are
// no process-wide counters. Both feeds are keyed by window index and live
// for the whole run; ComputeRecall reads them once at finalization.
type Evaluator struct {
	windowUS      uint64
	samplingRatio float64

	maxQueue map[uint64]float64
	marks    map[uint64]uint64

	sample func() bool
}

// New creates an evaluator. samplingRatio must be in [0, 1]; 1 records
// every mark, 0 records none.
func New(windowUS uint64, samplingRatio float64) (*Evaluator, error) {
	if windowUS == 0 {
		return nil, fmt.Errorf("window width must be positive")
	}
	if samplingRatio < 0 || samplingRatio > 1 {
		return nil, fmt.Errorf("sampling ratio %g outside [0, 1]", samplingRatio)
	}
	return &Evaluator{
		windowUS:      windowUS,
		samplingRatio: samplingRatio,
		maxQueue:      make(map[uint64]float64),
		marks:         make(map[uint64]uint64),
		sample: func() bool {
			return rand.Float64() < samplingRatio
		},
	}, nil
}

// RecordOccupancy keeps the running per-window maximum of queue bytes.
// Smaller samples within the same window are ignored.
func (e *Evaluator) RecordOccupancy(timeUS uint64, bytes float64) {
	w := timeUS / e.windowUS
	if bytes > e.maxQueue[w] {
		e.maxQueue[w] = bytes
	}
}

// RecordMark notes one congestion-mark event, kept with probability
// samplingRatio (an independent Bernoulli trial per event). Ratio 1 always
// keeps, ratio 0 never does.
func (e *Evaluator) RecordMark(timeUS uint64) {
	if e.samplingRatio >= 1.0 {
		e.marks[timeUS/e.windowUS]++
		return
	}
	if e.samplingRatio <= 0.0 {
		return
	}
	if e.sample() {
		e.marks[timeUS/e.windowUS]++
	}
}

// EstimatedMarks returns the unbiased per-window mark estimate: the sampled
// count rescaled by 1/samplingRatio. Zero ratio estimates zero.
func (e *Evaluator) EstimatedMarks(window uint64) float64 {
	if e.samplingRatio <= 0.0 {
		return 0.0
	}
	return float64(e.marks[window]) / e.samplingRatio
}

// Occupancy returns the recorded per-window maximum queue bytes.
func (e *Evaluator) Occupancy() map[uint64]float64 {
	return e.maxQueue
}

// ComputeRecall counts every window whose recorded maximum occupancy
// exceeds thresholdBytes as a true congestion window, and as captured if at
// least one mark was sampled in it. The mark test is binary presence, not
// magnitude: rescaling does not apply here. Recall is 0.0 when there are no
// congestion windows.
func (e *Evaluator) ComputeRecall(thresholdBytes float64) (captured, total int, recall float64) {
	for w, maxBytes := range e.maxQueue {
		if maxBytes <= thresholdBytes {
			continue
		}
		total++
		if e.marks[w] > 0 {
			captured++
		}
	}
	if total == 0 {
		return 0, 0, 0.0
	}
	return captured, total, float64(captured) / float64(total)
}
