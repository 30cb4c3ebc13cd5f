package report

import (
	"fmt"
	"os"
	"sort"
)

// RateLogger accumulates the aggregate byte volume per window across all
// flows, for the throughput-over-time ground truth report.
type RateLogger struct {
	windowUS uint64
	totals   map[uint64]uint64
}

func NewRateLogger(windowUS uint64) *RateLogger {
	return &RateLogger{windowUS: windowUS, totals: make(map[uint64]uint64)}
}

// Record adds bytes to the window timeUS falls in.
func (l *RateLogger) Record(timeUS uint64, bytes uint32) {
	l.totals[timeUS/l.windowUS] += uint64(bytes)
}

// WriteCSV writes one row per window with the aggregate rate in Gbps and
// the (rescaled) estimated congestion-mark count for that window.
func (l *RateLogger) WriteCSV(path string, estimatedMarks func(window uint64) float64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open rate report '%s': %w", path, err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "time_s,total_rate_gbps,ecn_marks\n"); err != nil {
		return err
	}

	windows := make([]uint64, 0, len(l.totals))
	for w := range l.totals {
		windows = append(windows, w)
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i] < windows[j] })

	for _, w := range windows {
		timeS := float64(w*l.windowUS) / 1e6
		// bytes per window -> Gbps: bits / nanoseconds.
		rateGbps := float64(l.totals[w]) * 8.0 / (float64(l.windowUS) * 1e3)
		marks := 0.0
		if estimatedMarks != nil {
			marks = estimatedMarks(w)
		}
		if _, err := fmt.Fprintf(file, "%g,%g,%g\n", timeS, rateGbps, marks); err != nil {
			return fmt.Errorf("failed to write rate row: %w", err)
		}
	}
	return nil
}

// WriteQueueGroundTruth writes the per-window maximum queue occupancy in
// window order: columns time_s,max_queue_bytes.
func WriteQueueGroundTruth(path string, occupancy map[uint64]float64, windowUS uint64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open queue report '%s': %w", path, err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "time_s,max_queue_bytes\n"); err != nil {
		return err
	}

	windows := make([]uint64, 0, len(occupancy))
	for w := range occupancy {
		windows = append(windows, w)
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i] < windows[j] })

	for _, w := range windows {
		timeS := float64(w*windowUS) / 1e6
		if _, err := fmt.Fprintf(file, "%g,%g\n", timeS, occupancy[w]); err != nil {
			return fmt.Errorf("failed to write queue row: %w", err)
		}
	}
	return nil
}
