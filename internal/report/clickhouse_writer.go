package report

import (
	"context"
	"fmt"
	"log"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"WaveBench/internal/config"
	"WaveBench/internal/model"
)

const createFidelityTableStatement = `
CREATE TABLE IF NOT EXISTS flow_fidelity (
    TimeS         Float64,
    Algorithm     String,
    MemoryKB      UInt32,
    FlowID        UInt64,
    K             UInt32,
    WindowUS      UInt64,
    Packets       Float64,
    ARE           Float64,
    CosineSim     Float64,
    EuclideanDist Float64,
    EnergySim     Float64
) ENGINE = MergeTree()
ORDER BY (Algorithm, MemoryKB, TimeS);
`

// ClickHouseWriter implements the model.Writer interface for ClickHouse.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects and ensures the fidelity table exists.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (*ClickHouseWriter, error) {
	conn, err := Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createFidelityTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create flow_fidelity table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured flow_fidelity table exists.")

	return &ClickHouseWriter{conn: conn}, nil
}

// Connect opens and pings a ClickHouse connection.
func Connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

// Write appends one batch of fidelity records.
func (w *ClickHouseWriter) Write(records []model.FidelityRecord) error {
	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO flow_fidelity")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(r.TimeS, r.Algorithm, r.MemoryKB, uint64(r.FlowID), r.K,
			r.WindowUS, r.Packets, r.ARE, r.CosineSim, r.EuclideanDist, r.EnergySim)
		if err != nil {
			return fmt.Errorf("failed to append fidelity record to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

// Close closes the connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}
