package report

import "WaveBench/internal/model"

// MultiWriter fans records out to several sinks, e.g. CSV plus ClickHouse.
type MultiWriter struct {
	writers []model.Writer
}

func NewMultiWriter(writers ...model.Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (m *MultiWriter) Write(records []model.FidelityRecord) error {
	for _, w := range m.writers {
		if err := w.Write(records); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiWriter) Close() error {
	var firstErr error
	for _, w := range m.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
