// Package live runs the evaluation pipeline against a real-time event
// stream. The reference pipeline is single-threaded over a discrete
// timeline; here the consumer goroutine and the cycle ticker share the
// scheduler, so a single mutex serializes them.
package live

import (
	"log"
	"sync"
	"time"

	"WaveBench/internal/engine/cycle"
	"WaveBench/internal/model"
)

// Engine consumes events from a channel and fires cycle ticks from a
// wall-clock ticker.
type Engine struct {
	scheduler *cycle.Scheduler
	cycleUS   uint64

	input chan model.FlowEvent
	mu    sync.Mutex
	start time.Time

	done     chan struct{}
	workerWg sync.WaitGroup
	tickerWg sync.WaitGroup
}

func NewEngine(scheduler *cycle.Scheduler, cycleUS uint64, channelSize int) *Engine {
	return &Engine{
		scheduler: scheduler,
		cycleUS:   cycleUS,
		input:     make(chan model.FlowEvent, channelSize),
		done:      make(chan struct{}),
	}
}

// Input returns the channel events should be sent to.
func (e *Engine) Input() chan<- model.FlowEvent {
	return e.input
}

// Start launches the consumer and the cycle ticker.
func (e *Engine) Start() {
	e.start = time.Now()

	e.workerWg.Add(1)
	go e.consume()

	e.tickerWg.Add(1)
	go e.runTicker()

	log.Printf("Live engine started, cycle %dus", e.cycleUS)
}

func (e *Engine) consume() {
	defer e.workerWg.Done()
	for ev := range e.input {
		e.mu.Lock()
		e.scheduler.Ingest(ev)
		e.mu.Unlock()
	}
}

func (e *Engine) runTicker() {
	defer e.tickerWg.Done()
	ticker := time.NewTicker(time.Duration(e.cycleUS) * time.Microsecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.tick(uint64(time.Since(e.start).Microseconds()))
		case <-e.done:
			e.finalTick()
			return
		}
	}
}

func (e *Engine) tick(nowUS uint64) {
	e.mu.Lock()
	_, err := e.scheduler.OnTick(nowUS)
	e.mu.Unlock()
	if err != nil {
		log.Printf("Error processing cycle: %v", err)
	}
}

// finalTick flushes the trailing partial cycle. Sources replaying faster
// than real time can be ahead of the wall clock, so the flush boundary is
// one cycle past the later of the two.
func (e *Engine) finalTick() {
	nowUS := uint64(time.Since(e.start).Microseconds())
	e.mu.Lock()
	if maxEvent := e.scheduler.MaxEventUS(); maxEvent > nowUS {
		nowUS = maxEvent
	}
	_, err := e.scheduler.OnTick(nowUS + e.cycleUS)
	e.mu.Unlock()
	if err != nil {
		log.Printf("Error processing final cycle: %v", err)
	}
}

// Stop drains the input, fires one final cycle and shuts down.
func (e *Engine) Stop() {
	log.Println("Live engine stopping...")
	close(e.input)
	e.workerWg.Wait()
	close(e.done)
	e.tickerWg.Wait()
	log.Println("Live engine stopped.")
}
