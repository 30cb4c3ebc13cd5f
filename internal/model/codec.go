package model

// Codec is the common interface for a flow-curve compression scheme,
// allowing different algorithms (wavelet, exact baseline, future sketches)
// to be used interchangeably by the cycle scheduler.
type Codec interface {
	// Name returns the algorithm name used in report rows.
	Name() string

	// Reset clears all internal state, preparing for a new run.
	Reset()

	// Count feeds one event into the codec's internal summary.
	Count(flow FlowKey, timeUS uint64, amount uint32)

	// Flush finalizes any pending internal state before a Rebuild.
	Flush()

	// Rebuild returns estimated values at the requested timestamps for each
	// queried flow. The values in the query points are placeholders; only
	// the timestamps matter.
	Rebuild(query map[FlowKey][]Point) map[FlowKey][]Point
}
