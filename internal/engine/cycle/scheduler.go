// Package cycle drives the periodic compress-and-score loop. At each cycle
// boundary it extracts the newly completed window span per flow, asks every
// codec lane for a rebuild, scores the reconstruction, and advances the
// processed-time watermark so no span is ever scored twice.
package cycle

import (
	"fmt"
	"log"

	"WaveBench/internal/engine/aggregator"
	"WaveBench/internal/engine/fidelity"
	"WaveBench/internal/model"
)

// Lane is one codec under one memory budget. Several lanes share the same
// ground-truth aggregator, which is what collapses the near-identical
// per-algorithm agents of the original harness into a single pipeline.
type Lane struct {
	Codec    model.Codec
	MemoryKB uint32
	K        uint32
}

// Scheduler holds the watermark state machine. It must not be invoked
// concurrently with itself; drivers re-arm their timer only after OnTick
// returns.
type Scheduler struct {
	windowUS uint64
	cycleUS  uint64
	agg      *aggregator.Aggregator
	lanes    []Lane
	writer   model.Writer

	lastProcessedUS uint64
	maxEventUS      uint64
}

// New validates the cycle geometry and builds a scheduler.
func New(agg *aggregator.Aggregator, cycleUS uint64, lanes []Lane, writer model.Writer) (*Scheduler, error) {
	windowUS := agg.WindowUS()
	if cycleUS == 0 {
		return nil, fmt.Errorf("cycle duration must be positive")
	}
	if cycleUS%windowUS != 0 {
		return nil, fmt.Errorf("cycle duration %dus is not a multiple of window width %dus", cycleUS, windowUS)
	}
	if len(lanes) == 0 {
		return nil, fmt.Errorf("at least one codec lane required")
	}
	return &Scheduler{
		windowUS: windowUS,
		cycleUS:  cycleUS,
		agg:      agg,
		lanes:    lanes,
		writer:   writer,
	}, nil
}

// Ingest feeds one event to the ground-truth aggregator and every lane's
// codec. Curves count packets; byte volume is a reporting concern handled
// by the rate logger.
func (s *Scheduler) Ingest(ev model.FlowEvent) {
	if ev.TimeUS > s.maxEventUS {
		s.maxEventUS = ev.TimeUS
	}
	s.agg.Record(ev.Flow, ev.TimeUS, 1)
	for _, lane := range s.lanes {
		lane.Codec.Count(ev.Flow, ev.TimeUS, 1)
	}
}

// OnTick processes the span between the watermark and the boundary at or
// before nowUS. Duplicate or premature firings are an idempotent no-op.
// Returns the number of records emitted.
func (s *Scheduler) OnTick(nowUS uint64) (int, error) {
	boundary := nowUS / s.cycleUS * s.cycleUS
	if boundary <= s.lastProcessedUS {
		return 0, nil
	}
	startWin := s.lastProcessedUS / s.windowUS
	endWin := boundary / s.windowUS
	if endWin == startWin {
		return 0, nil
	}

	active := s.agg.ActiveFlows(startWin, endWin)
	if len(active) == 0 {
		// Nothing to score, but the span is still consumed.
		s.agg.Trim(endWin)
		s.lastProcessedUS = boundary
		return 0, nil
	}

	// One rebuild query shared by all lanes: each active flow, sampled at
	// every window start in the span. Values are placeholders.
	query := make(map[model.FlowKey][]model.Point, len(active))
	for _, flow := range active {
		points := make([]model.Point, 0, endWin-startWin)
		for w := startWin; w < endWin; w++ {
			points = append(points, model.Point{TimeUS: w * s.windowUS})
		}
		query[flow] = points
	}

	timeS := float64(boundary) / 1e6
	emitted := 0

	for _, lane := range s.lanes {
		lane.Codec.Flush()
		rebuilt := lane.Codec.Rebuild(query)

		records := make([]model.FidelityRecord, 0, len(active))
		for _, flow := range active {
			original, hasActivity := s.agg.ExtractCurve(flow, startWin, endWin)
			if !hasActivity {
				continue
			}
			reconstructed := make([]float64, endWin-startWin)
			for _, pt := range rebuilt[flow] {
				w := pt.TimeUS / s.windowUS
				if w >= startWin && w < endWin {
					reconstructed[w-startWin] += pt.Value
				}
			}

			totalPackets := 0.0
			for _, v := range original {
				totalPackets += v
			}

			records = append(records, model.FidelityRecord{
				TimeS:         timeS,
				Algorithm:     lane.Codec.Name(),
				MemoryKB:      lane.MemoryKB,
				FlowID:        flow,
				K:             lane.K,
				WindowUS:      s.windowUS,
				Packets:       totalPackets,
				ARE:           fidelity.ARE(original, reconstructed),
				CosineSim:     fidelity.CosineSimilarity(original, reconstructed),
				EuclideanDist: fidelity.EuclideanDistance(original, reconstructed),
				EnergySim:     fidelity.EnergySimilarity(original, reconstructed),
			})
		}

		if len(records) == 0 {
			continue
		}
		if err := s.writer.Write(records); err != nil {
			return emitted, fmt.Errorf("writing fidelity records for codec '%s': %w", lane.Codec.Name(), err)
		}
		emitted += len(records)
	}

	s.agg.Trim(endWin)
	s.lastProcessedUS = boundary
	log.Printf("Cycle at %.6fs: scored %d flows across %d lanes (%d records)", timeS, len(active), len(s.lanes), emitted)
	return emitted, nil
}

// LastProcessedUS exposes the watermark, mainly for drivers deciding when a
// final partial cycle remains.
func (s *Scheduler) LastProcessedUS() uint64 {
	return s.lastProcessedUS
}

// MaxEventUS is the highest event timestamp ingested so far. Drivers use
// it to flush the trailing partial cycle on shutdown.
func (s *Scheduler) MaxEventUS() uint64 {
	return s.maxEventUS
}
