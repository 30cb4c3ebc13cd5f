package aggregator

import (
	"testing"
)

func TestRecordAndExtractCurve(t *testing.T) {
	a := New(100)
	a.Record(1, 50, 1)
	a.Record(1, 80, 1)
	a.Record(1, 150, 1)
	a.Record(1, 350, 2)

	curve, hasActivity := a.ExtractCurve(1, 0, 4)
	if !hasActivity {
		t.Fatal("Expected activity for flow 1")
	}
	want := []float64{2, 1, 0, 2}
	for i := range want {
		if curve[i] != want[i] {
			t.Errorf("Window %d: want %g, got %g", i, want[i], curve[i])
		}
	}
}

func TestExtractCurveUnknownFlow(t *testing.T) {
	a := New(100)
	curve, hasActivity := a.ExtractCurve(42, 0, 3)
	if hasActivity {
		t.Error("Unknown flow should report no activity")
	}
	if len(curve) != 3 {
		t.Errorf("Expected dense zero curve of length 3, got %d", len(curve))
	}
}

func TestExtractCurveDoesNotAlias(t *testing.T) {
	a := New(100)
	a.Record(1, 50, 5)

	curve, _ := a.ExtractCurve(1, 0, 1)
	curve[0] = 999

	fresh, _ := a.ExtractCurve(1, 0, 1)
	if fresh[0] != 5 {
		t.Errorf("Extracted curve aliases live buckets: got %g", fresh[0])
	}
}

func TestActiveFlows(t *testing.T) {
	a := New(100)
	a.Record(1, 50, 1)
	a.Record(2, 550, 1)

	active := a.ActiveFlows(0, 5)
	if len(active) != 1 || active[0] != 1 {
		t.Errorf("Expected only flow 1 active in [0,5), got %v", active)
	}
	if got := a.ActiveFlows(5, 10); len(got) != 1 || got[0] != 2 {
		t.Errorf("Expected only flow 2 active in [5,10), got %v", got)
	}
}

func TestTrimDropsLateEvents(t *testing.T) {
	a := New(100)
	a.Record(1, 50, 1)
	a.Trim(5)

	// Behind the horizon now; must be silently ignored.
	a.Record(1, 50, 1)

	if _, hasActivity := a.ExtractCurve(1, 0, 5); hasActivity {
		t.Error("Late event behind the trim horizon was counted")
	}
}

func TestTrimRemovesEmptyFlows(t *testing.T) {
	a := New(100)
	a.Record(1, 50, 1)
	a.Record(2, 650, 1)
	a.Trim(5)

	active := a.ActiveFlows(0, 100)
	if len(active) != 1 || active[0] != 2 {
		t.Errorf("Expected only flow 2 to survive the trim, got %v", active)
	}
}

func TestRecordMax(t *testing.T) {
	a := New(100)
	a.RecordMax(1, 50, 300)
	a.RecordMax(1, 60, 100)
	a.RecordMax(1, 70, 700)

	curve, _ := a.ExtractCurve(1, 0, 1)
	if curve[0] != 700 {
		t.Errorf("Expected window maximum 700, got %g", curve[0])
	}
}
