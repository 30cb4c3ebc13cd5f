package model

// Writer defines a generic interface for persisting fidelity records.
type Writer interface {
	// Write appends a batch of records. Implementations must not reorder
	// records within a batch.
	Write(records []FidelityRecord) error

	// Close flushes buffered output and releases the underlying resource.
	Close() error
}
