package report

import (
	"bufio"
	"fmt"
	"os"

	"WaveBench/internal/model"
)

// fidelityHeader is the report contract; downstream analysis tooling
// depends on this exact column order.
const fidelityHeader = "time_s,algorithm,memory_kb,flow_id,k,window_us,packets,are,cosine_sim,euclidean_dist,energy_sim\n"

// CSVWriter appends fidelity records to a CSV file. The file is opened in
// append mode and the header is written only when the file is empty, so
// sweeps across codecs and budgets can share one report.
type CSVWriter struct {
	file *os.File
	buf  *bufio.Writer
}

// NewCSVWriter opens (or creates) the report file. Failure here is fatal to
// the run's purpose; callers should abort.
func NewCSVWriter(path string) (*CSVWriter, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file '%s': %w", path, err)
	}
	w := &CSVWriter{file: file, buf: bufio.NewWriter(file)}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat report file '%s': %w", path, err)
	}
	if info.Size() == 0 {
		if _, err := w.buf.WriteString(fidelityHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write report header: %w", err)
		}
	}
	return w, nil
}

// Write appends one batch of records.
func (w *CSVWriter) Write(records []model.FidelityRecord) error {
	for _, r := range records {
		_, err := fmt.Fprintf(w.buf, "%g,%s,%d,%d,%d,%d,%g,%g,%g,%g,%g\n",
			r.TimeS, r.Algorithm, r.MemoryKB, r.FlowID, r.K, r.WindowUS,
			r.Packets, r.ARE, r.CosineSim, r.EuclideanDist, r.EnergySim)
		if err != nil {
			return fmt.Errorf("failed to write fidelity record: %w", err)
		}
	}
	return w.buf.Flush()
}

// Close flushes and closes the report file.
func (w *CSVWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
