package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"WaveBench/internal/config"
	"WaveBench/internal/engine/aggregator"
	"WaveBench/internal/engine/cycle"
	"WaveBench/internal/engine/live"
	"WaveBench/internal/model"
	"WaveBench/internal/probe"
	"WaveBench/internal/report"

	_ "WaveBench/internal/engine/impl/exact"
	_ "WaveBench/internal/engine/impl/wavelet"
)

const eventChannelSize = 65536

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	log.Println("Starting wb-engine...")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	windowUS, _ := cfg.WindowUS()
	cycleUS, _ := cfg.CycleUS()

	writer, err := buildWriter(cfg)
	if err != nil {
		log.Fatalf("Failed to create report writer: %v", err)
	}

	lanes, err := cycle.BuildLanes(cfg.Evaluation.Codecs, cfg.Evaluation.MemoriesKB, windowUS)
	if err != nil {
		log.Fatalf("Failed to build codec lanes: %v", err)
	}

	scheduler, err := cycle.New(aggregator.New(windowUS), cycleUS, lanes, writer)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	engine := live.NewEngine(scheduler, cycleUS, eventChannelSize)
	engine.Start()

	sub, err := probe.NewSubscriber(cfg.Probe, engine.Input())
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping engine...")
	sub.Close()
	engine.Stop()
	if err := writer.Close(); err != nil {
		log.Printf("Error closing report writer: %v", err)
	}
	log.Println("Shutdown complete.")
}

// buildWriter assembles the fidelity sinks: always the CSV report, plus
// ClickHouse when enabled.
func buildWriter(cfg *config.Config) (model.Writer, error) {
	csvWriter, err := report.NewCSVWriter(cfg.Evaluation.Output)
	if err != nil {
		return nil, err
	}
	if !cfg.ClickHouse.Enabled {
		return csvWriter, nil
	}
	chWriter, err := report.NewClickHouseWriter(cfg.ClickHouse)
	if err != nil {
		csvWriter.Close()
		return nil, err
	}
	return report.NewMultiWriter(csvWriter, chWriter), nil
}
