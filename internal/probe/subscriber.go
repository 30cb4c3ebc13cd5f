package probe

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"WaveBench/internal/config"
	"WaveBench/internal/model"
)

// Subscriber consumes flow events from NATS and forwards them to a channel.
type Subscriber struct {
	nc  *nats.Conn
	sub *nats.Subscription
	out chan<- model.FlowEvent
}

// NewSubscriber connects and subscribes; decoded events are sent to out.
// Malformed frames are logged and dropped, matching the pipeline's
// skip-bad-records policy.
func NewSubscriber(cfg config.ProbeConfig, out chan<- model.FlowEvent) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATSURL, err)
	}

	s := &Subscriber{nc: nc, out: out}
	s.sub, err = nc.Subscribe(cfg.Subject, s.handle)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to '%s': %w", cfg.Subject, err)
	}
	log.Printf("Subscribed to '%s' at %s", cfg.Subject, cfg.NATSURL)
	return s, nil
}

func (s *Subscriber) handle(msg *nats.Msg) {
	var frame eventFrame
	if err := json.Unmarshal(msg.Data, &frame); err != nil {
		log.Printf("Error unmarshalling event frame: %v", err)
		return
	}
	s.out <- model.FlowEvent{TimeUS: frame.TimeUS, Flow: model.FlowKey(frame.Flow), Bytes: frame.Bytes}
}

// Close unsubscribes and closes the connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
