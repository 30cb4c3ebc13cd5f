package model

// FlowKey identifies one flow. Probes derive it from the 5-tuple, trace
// readers take it straight from the trace; the pipeline treats it as opaque.
type FlowKey uint64

// FlowEvent is one packet (or packet batch) observed for a flow. Timestamps
// are microseconds from the start of the run, matching the trace format.
type FlowEvent struct {
	TimeUS uint64
	Flow   FlowKey
	Bytes  uint32
}

// Point is a (timestamp, value) sample of a flow curve. Codec rebuilds
// return estimates at the requested timestamps.
type Point struct {
	TimeUS uint64
	Value  float64
}

// FidelityRecord is one row of the evaluation report: how well one codec,
// under one memory budget, reproduced one flow's curve over one cycle.
// Records are append-only; the CSV column order follows the field order here.
type FidelityRecord struct {
	TimeS         float64
	Algorithm     string
	MemoryKB      uint32
	FlowID        FlowKey
	K             uint32
	WindowUS      uint64
	Packets       float64
	ARE           float64
	CosineSim     float64
	EuclideanDist float64
	EnergySim     float64
}
