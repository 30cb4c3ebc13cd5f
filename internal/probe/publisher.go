// Package probe moves flow events across NATS between the capture side and
// the live evaluation engine. Events travel as compact JSON frames.
package probe

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"WaveBench/internal/config"
	"WaveBench/internal/model"
)

// eventFrame is the wire form of a FlowEvent.
type eventFrame struct {
	TimeUS uint64 `json:"t"`
	Flow   uint64 `json:"f"`
	Bytes  uint32 `json:"b"`
}

// Publisher publishes flow events to a NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to NATS.
func NewPublisher(cfg config.ProbeConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Publish serializes one event and publishes it.
func (p *Publisher) Publish(ev model.FlowEvent) error {
	data, err := json.Marshal(eventFrame{TimeUS: ev.TimeUS, Flow: uint64(ev.Flow), Bytes: ev.Bytes})
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
