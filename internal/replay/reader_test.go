package replay

import (
	"os"
	"path/filepath"
	"testing"

	"WaveBench/internal/model"
)

func TestParseLinePrimaryLayout(t *testing.T) {
	ev, ok := ParseLine("12345,1500,2750")
	if !ok {
		t.Fatal("Expected line to parse")
	}
	if ev.Flow != 12345 || ev.Bytes != 1500 || ev.TimeUS != 2750 {
		t.Errorf("Unexpected event: %+v", ev)
	}
}

func TestParseLineTrailingColumns(t *testing.T) {
	ev, ok := ParseLine("7,64,100,extra,columns")
	if !ok {
		t.Fatal("Expected line with trailing columns to parse")
	}
	if ev.Flow != 7 || ev.Bytes != 64 || ev.TimeUS != 100 {
		t.Errorf("Unexpected event: %+v", ev)
	}
}

func TestParseLineGenericFallback(t *testing.T) {
	// Seconds-first layouts fall back to column sniffing.
	ev, ok := ParseLine("0.5,42")
	if !ok {
		t.Fatal("Expected fallback line to parse")
	}
	if ev.TimeUS != 500000 {
		t.Errorf("Expected 500000us, got %d", ev.TimeUS)
	}
	if ev.Flow != 42 {
		t.Errorf("Expected flow 42, got %d", ev.Flow)
	}
	if ev.Bytes != 1 {
		t.Errorf("Fallback events are packet-sized, got %d bytes", ev.Bytes)
	}
}

func TestParseLineHashedFlowID(t *testing.T) {
	ev1, ok1 := ParseLine("1.5,host-a")
	ev2, ok2 := ParseLine("1.5,host-a")
	ev3, ok3 := ParseLine("1.5,host-b")
	if !ok1 || !ok2 || !ok3 {
		t.Fatal("Expected all lines to parse")
	}
	if ev1.Flow != ev2.Flow {
		t.Error("Same line must hash to the same flow key")
	}
	if ev1.Flow == ev3.Flow {
		t.Error("Different lines should hash to different flow keys")
	}
}

func TestParseLineRejectsMalformed(t *testing.T) {
	for _, line := range []string{"", "   ", "justonecolumn", "a,b", "-1.0,5"} {
		if _, ok := ParseLine(line); ok {
			t.Errorf("Expected line %q to be rejected", line)
		}
	}
}

func TestReadEventsSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.csv")
	content := "1,100,50\nnot,a,line\n2,200,150\n\n3,300,250\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write trace: %v", err)
	}

	var events []model.FlowEvent
	parsed, skipped, err := NewReader(path).ReadEvents(func(ev model.FlowEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if parsed != 3 || skipped != 2 {
		t.Errorf("Expected 3 parsed and 2 skipped, got %d and %d", parsed, skipped)
	}
	if len(events) != 3 || events[2].Flow != 3 {
		t.Errorf("Unexpected events: %+v", events)
	}
}

func TestReadEventsMissingFile(t *testing.T) {
	if _, _, err := NewReader("/nonexistent/trace.csv").ReadEvents(func(model.FlowEvent) {}); err == nil {
		t.Error("Expected error for missing trace file")
	}
}
