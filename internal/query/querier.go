package query

import (
	"context"
	"fmt"
	"strings"

	"WaveBench/internal/config"
	"WaveBench/internal/report"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// AlgorithmSummary aggregates fidelity results for one codec at one
// memory budget.
type AlgorithmSummary struct {
	Algorithm    string  `json:"algorithm"`
	MemoryKB     uint32  `json:"memory_kb"`
	Flows        uint64  `json:"flows"`
	AvgARE       float64 `json:"avg_are"`
	AvgCosineSim float64 `json:"avg_cosine_sim"`
	AvgEnergySim float64 `json:"avg_energy_sim"`
	MaxEuclidean float64 `json:"max_euclidean_dist"`
}

// FlowSeriesPoint is one scored window span for a single flow.
type FlowSeriesPoint struct {
	TimeS         float64 `json:"time_s"`
	Packets       float64 `json:"packets"`
	ARE           float64 `json:"are"`
	CosineSim     float64 `json:"cosine_sim"`
	EuclideanDist float64 `json:"euclidean_dist"`
	EnergySim     float64 `json:"energy_sim"`
}

// Querier reads back fidelity results stored by the evaluation pipeline.
type Querier interface {
	SummarizeAlgorithms(ctx context.Context, algorithm string) ([]AlgorithmSummary, error)
	TraceFlow(ctx context.Context, algorithm string, memoryKB uint32, flowID uint64) ([]FlowSeriesPoint, error)
}

type clickhouseQuerier struct {
	conn clickhouse.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := report.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

// SummarizeAlgorithms groups stored fidelity rows by algorithm and
// memory budget.
func (q *clickhouseQuerier) SummarizeAlgorithms(ctx context.Context, algorithm string) ([]AlgorithmSummary, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			Algorithm,
			MemoryKB,
			COUNT(*) AS Flows,
			AVG(ARE) AS AvgARE,
			AVG(CosineSim) AS AvgCosineSim,
			AVG(EnergySim) AS AvgEnergySim,
			MAX(EuclideanDist) AS MaxEuclidean
		FROM flow_fidelity
	`)

	args := []interface{}{}
	if algorithm != "" {
		queryBuilder.WriteString(" WHERE Algorithm = ?")
		args = append(args, algorithm)
	}
	queryBuilder.WriteString(`
		GROUP BY Algorithm, MemoryKB
		ORDER BY Algorithm, MemoryKB
	`)

	rows, err := q.conn.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var summaries []AlgorithmSummary
	for rows.Next() {
		var s AlgorithmSummary
		if err := rows.Scan(&s.Algorithm, &s.MemoryKB, &s.Flows, &s.AvgARE, &s.AvgCosineSim, &s.AvgEnergySim, &s.MaxEuclidean); err != nil {
			return nil, fmt.Errorf("failed to scan aggregation result: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}

// TraceFlow returns the per-cycle score series of a single flow under
// one codec and budget.
func (q *clickhouseQuerier) TraceFlow(ctx context.Context, algorithm string, memoryKB uint32, flowID uint64) ([]FlowSeriesPoint, error) {
	rows, err := q.conn.Query(ctx, `
		SELECT TimeS, Packets, ARE, CosineSim, EuclideanDist, EnergySim
		FROM flow_fidelity
		WHERE Algorithm = ? AND MemoryKB = ? AND FlowID = ?
		ORDER BY TimeS
	`, algorithm, memoryKB, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var series []FlowSeriesPoint
	for rows.Next() {
		var p FlowSeriesPoint
		if err := rows.Scan(&p.TimeS, &p.Packets, &p.ARE, &p.CosineSim, &p.EuclideanDist, &p.EnergySim); err != nil {
			return nil, fmt.Errorf("failed to scan flow series result: %w", err)
		}
		series = append(series, p)
	}

	return series, nil
}
