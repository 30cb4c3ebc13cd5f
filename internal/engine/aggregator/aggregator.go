// Package aggregator buckets raw per-flow events into fixed-width time
// windows. It is the ground-truth side of the evaluation: codecs summarize
// the same event stream lossily, the aggregator keeps it exactly until the
// cycle scheduler consumes and trims it.
package aggregator

import (
	"WaveBench/internal/model"
)

// Aggregator maintains a sparse window->value map per flow. It is an
// evaluation tool, not a fixed-memory sketch: the only bound on flows and
// windows is available memory.
//
// All methods must be called from a single goroutine, or externally
// serialized; the live engine wraps it in a mutex.
type Aggregator struct {
	windowUS uint64
	flows    map[model.FlowKey]map[uint64]float64
	// horizon is the earliest retained window. Events strictly older than
	// it are dropped; Trim advances it.
	horizon uint64
}

func New(windowUS uint64) *Aggregator {
	return &Aggregator{
		windowUS: windowUS,
		flows:    make(map[model.FlowKey]map[uint64]float64),
	}
}

// WindowUS returns the configured window width in microseconds.
func (a *Aggregator) WindowUS() uint64 {
	return a.windowUS
}

// Record adds amount to the bucket timeUS falls in. Late events behind the
// retention horizon are a silent no-op: their window has already been
// processed and trimmed, so counting them would double-report.
func (a *Aggregator) Record(flow model.FlowKey, timeUS uint64, amount float64) {
	w := timeUS / a.windowUS
	if w < a.horizon {
		return
	}
	buckets, ok := a.flows[flow]
	if !ok {
		buckets = make(map[uint64]float64)
		a.flows[flow] = buckets
	}
	buckets[w] += amount
}

// RecordMax keeps the running maximum of the bucket instead of a sum; used
// for gauge-style inputs such as queue occupancy.
func (a *Aggregator) RecordMax(flow model.FlowKey, timeUS uint64, value float64) {
	w := timeUS / a.windowUS
	if w < a.horizon {
		return
	}
	buckets, ok := a.flows[flow]
	if !ok {
		buckets = make(map[uint64]float64)
		a.flows[flow] = buckets
	}
	if value > buckets[w] {
		buckets[w] = value
	}
}

// ActiveFlows returns every flow with at least one nonzero bucket in
// [startWin, endWin).
func (a *Aggregator) ActiveFlows(startWin, endWin uint64) []model.FlowKey {
	var active []model.FlowKey
	for flow, buckets := range a.flows {
		for w := range buckets {
			if w >= startWin && w < endWin {
				active = append(active, flow)
				break
			}
		}
	}
	return active
}

// ExtractCurve copies the flow's values over [startWin, endWin) into a
// dense zero-filled vector. The copy shares no storage with the live
// buckets, so compression snapshots never alias the aggregation buffer.
// The second return reports whether any bucket in the span was nonzero.
func (a *Aggregator) ExtractCurve(flow model.FlowKey, startWin, endWin uint64) ([]float64, bool) {
	curve := make([]float64, endWin-startWin)
	hasActivity := false
	buckets, ok := a.flows[flow]
	if !ok {
		return curve, false
	}
	for w, v := range buckets {
		if w >= startWin && w < endWin && v != 0 {
			curve[w-startWin] = v
			hasActivity = true
		}
	}
	return curve, hasActivity
}

// Trim discards all windows before beforeWin and advances the retention
// horizon. Flows left with no buckets are removed entirely.
func (a *Aggregator) Trim(beforeWin uint64) {
	if beforeWin <= a.horizon {
		return
	}
	a.horizon = beforeWin
	for flow, buckets := range a.flows {
		for w := range buckets {
			if w < beforeWin {
				delete(buckets, w)
			}
		}
		if len(buckets) == 0 {
			delete(a.flows, flow)
		}
	}
}
