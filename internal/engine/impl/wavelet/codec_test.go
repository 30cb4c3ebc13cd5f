package wavelet

import (
	"math"
	"testing"

	"WaveBench/internal/model"
)

func TestCodecRebuildExactWithLargeBudget(t *testing.T) {
	// 64KB keeps thousands of coefficients, far more than the span has,
	// so the lossy round trip degenerates to identity.
	c := NewCodec(64, 100)

	c.Count(1, 50, 3)
	c.Count(1, 150, 2)
	c.Count(1, 350, 1)

	query := map[model.FlowKey][]model.Point{
		1: {{TimeUS: 0}, {TimeUS: 100}, {TimeUS: 200}, {TimeUS: 300}},
	}
	rebuilt := c.Rebuild(query)

	want := []float64{3, 2, 0, 1}
	points := rebuilt[1]
	if len(points) != len(want) {
		t.Fatalf("Expected %d points, got %d", len(want), len(points))
	}
	for i, pt := range points {
		if math.Abs(pt.Value-want[i]) > 1e-6 {
			t.Errorf("Window %d: want %g, got %g", i, want[i], pt.Value)
		}
	}
}

func TestCodecRebuildUnknownFlowIsZero(t *testing.T) {
	c := NewCodec(4, 100)

	query := map[model.FlowKey][]model.Point{
		99: {{TimeUS: 0}, {TimeUS: 100}},
	}
	for _, pt := range c.Rebuild(query)[99] {
		if pt.Value != 0 {
			t.Errorf("Unseen flow should rebuild to zero, got %g at %dus", pt.Value, pt.TimeUS)
		}
	}
}

func TestCodecReset(t *testing.T) {
	c := NewCodec(64, 100)
	c.Count(1, 50, 5)
	c.Reset()

	query := map[model.FlowKey][]model.Point{1: {{TimeUS: 0}}}
	if v := c.Rebuild(query)[1][0].Value; v != 0 {
		t.Errorf("Expected zero after reset, got %g", v)
	}
}

func TestCodecKFromBudget(t *testing.T) {
	c := NewCodec(4, 100)
	if c.K() != KForBudget(4*1024) {
		t.Errorf("Expected k=%d for 4KB, got %d", KForBudget(4*1024), c.K())
	}
}
