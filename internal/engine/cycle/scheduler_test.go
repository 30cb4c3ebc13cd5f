package cycle

import (
	"testing"

	"WaveBench/internal/engine/aggregator"
	"WaveBench/internal/engine/impl/exact"
	"WaveBench/internal/engine/impl/wavelet"
	"WaveBench/internal/model"
)

// captureWriter collects written records in memory.
type captureWriter struct {
	batches [][]model.FidelityRecord
}

func (w *captureWriter) Write(records []model.FidelityRecord) error {
	batch := make([]model.FidelityRecord, len(records))
	copy(batch, records)
	w.batches = append(w.batches, batch)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func (w *captureWriter) all() []model.FidelityRecord {
	var out []model.FidelityRecord
	for _, b := range w.batches {
		out = append(out, b...)
	}
	return out
}

func newTestScheduler(t *testing.T, codec model.Codec) (*Scheduler, *captureWriter) {
	t.Helper()
	writer := &captureWriter{}
	lanes := []Lane{{Codec: codec, MemoryKB: 4}}
	s, err := New(aggregator.New(100), 1000, lanes, writer)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}
	return s, writer
}

func TestNewValidatesGeometry(t *testing.T) {
	writer := &captureWriter{}
	lanes := []Lane{{Codec: exact.New(100)}}

	if _, err := New(aggregator.New(100), 0, lanes, writer); err == nil {
		t.Error("Expected error for zero cycle")
	}
	if _, err := New(aggregator.New(100), 150, lanes, writer); err == nil {
		t.Error("Expected error for cycle not a multiple of the window")
	}
	if _, err := New(aggregator.New(100), 1000, nil, writer); err == nil {
		t.Error("Expected error for empty lane list")
	}
}

func TestOnTickScoresExactCodecPerfectly(t *testing.T) {
	s, writer := newTestScheduler(t, exact.New(100))

	s.Ingest(model.FlowEvent{TimeUS: 50, Flow: 1, Bytes: 100})
	s.Ingest(model.FlowEvent{TimeUS: 150, Flow: 1, Bytes: 100})
	s.Ingest(model.FlowEvent{TimeUS: 150, Flow: 1, Bytes: 100})

	emitted, err := s.OnTick(1000)
	if err != nil {
		t.Fatalf("OnTick failed: %v", err)
	}
	if emitted != 1 {
		t.Fatalf("Expected 1 record, got %d", emitted)
	}

	r := writer.all()[0]
	if r.Algorithm != "exact" || r.FlowID != 1 {
		t.Errorf("Unexpected record identity: %+v", r)
	}
	if r.Packets != 3 {
		t.Errorf("Expected 3 packets, got %g", r.Packets)
	}
	if r.ARE != 0 || r.EuclideanDist != 0 || r.CosineSim != 1 || r.EnergySim != 1 {
		t.Errorf("Lossless codec should score perfectly, got %+v", r)
	}
	if r.TimeS != 0.001 {
		t.Errorf("Expected cycle timestamp 0.001s, got %g", r.TimeS)
	}
}

func TestOnTickIsIdempotent(t *testing.T) {
	s, writer := newTestScheduler(t, exact.New(100))
	s.Ingest(model.FlowEvent{TimeUS: 50, Flow: 1, Bytes: 100})

	if _, err := s.OnTick(1000); err != nil {
		t.Fatalf("OnTick failed: %v", err)
	}
	if s.LastProcessedUS() != 1000 {
		t.Errorf("Expected watermark 1000, got %d", s.LastProcessedUS())
	}
	if s.MaxEventUS() != 50 {
		t.Errorf("Expected max event time 50, got %d", s.MaxEventUS())
	}

	// Same boundary again, and a time inside the next cycle: both no-ops.
	for _, now := range []uint64{1000, 1500, 999} {
		emitted, err := s.OnTick(now)
		if err != nil {
			t.Fatalf("OnTick(%d) failed: %v", now, err)
		}
		if emitted != 0 {
			t.Errorf("OnTick(%d) re-emitted %d records", now, emitted)
		}
	}

	if len(writer.all()) != 1 {
		t.Errorf("Expected exactly 1 record total, got %d", len(writer.all()))
	}
}

func TestOnTickBeforeFirstBoundary(t *testing.T) {
	s, writer := newTestScheduler(t, exact.New(100))
	s.Ingest(model.FlowEvent{TimeUS: 50, Flow: 1, Bytes: 100})

	emitted, err := s.OnTick(999)
	if err != nil {
		t.Fatalf("OnTick failed: %v", err)
	}
	if emitted != 0 || len(writer.all()) != 0 {
		t.Error("Nothing should be emitted before the first cycle boundary")
	}
}

func TestLateEventAfterTrimIsDropped(t *testing.T) {
	s, writer := newTestScheduler(t, exact.New(100))
	s.Ingest(model.FlowEvent{TimeUS: 50, Flow: 1, Bytes: 100})
	if _, err := s.OnTick(1000); err != nil {
		t.Fatalf("OnTick failed: %v", err)
	}

	// This window was already processed and trimmed.
	s.Ingest(model.FlowEvent{TimeUS: 60, Flow: 1, Bytes: 100})

	emitted, err := s.OnTick(2000)
	if err != nil {
		t.Fatalf("OnTick failed: %v", err)
	}
	if emitted != 0 {
		t.Errorf("Late event was scored again: %d records", emitted)
	}
	if len(writer.all()) != 1 {
		t.Errorf("Expected 1 record total, got %d", len(writer.all()))
	}
}

func TestMultipleLanesShareGroundTruth(t *testing.T) {
	writer := &captureWriter{}
	lanes := []Lane{
		{Codec: exact.New(100), MemoryKB: 4},
		{Codec: wavelet.NewCodec(64, 100), MemoryKB: 64, K: wavelet.KForBudget(64 * 1024)},
	}
	s, err := New(aggregator.New(100), 1000, lanes, writer)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}

	s.Ingest(model.FlowEvent{TimeUS: 250, Flow: 9, Bytes: 100})
	s.Ingest(model.FlowEvent{TimeUS: 251, Flow: 9, Bytes: 100})

	emitted, err := s.OnTick(1000)
	if err != nil {
		t.Fatalf("OnTick failed: %v", err)
	}
	if emitted != 2 {
		t.Fatalf("Expected one record per lane, got %d", emitted)
	}
	// A generous wavelet budget is lossless over a 10-window span, so both
	// lanes score the same curve perfectly.
	for _, r := range writer.all() {
		if r.ARE != 0 || r.CosineSim != 1 {
			t.Errorf("Lane %s scored imperfectly on reconstructible input: %+v", r.Algorithm, r)
		}
	}
}

func TestBuildLanes(t *testing.T) {
	lanes, err := BuildLanes([]string{"exact", "wavesketch-ideal"}, []uint32{4, 8}, 100)
	if err != nil {
		t.Fatalf("BuildLanes failed: %v", err)
	}
	if len(lanes) != 4 {
		t.Fatalf("Expected 4 lanes, got %d", len(lanes))
	}
	for _, lane := range lanes {
		if lane.Codec.Name() == "wavesketch-ideal" && lane.K == 0 {
			t.Errorf("Wavelet lane at %dKB should report nonzero K", lane.MemoryKB)
		}
	}
}

func TestBuildLanesUnknownCodec(t *testing.T) {
	if _, err := BuildLanes([]string{"no-such-codec"}, []uint32{4}, 100); err == nil {
		t.Error("Expected error for unregistered codec")
	}
}
