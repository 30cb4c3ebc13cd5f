// wb-eval replays a recorded trace through the full evaluation pipeline:
// windowed aggregation, one codec lane per algorithm and memory budget,
// periodic compress-and-score cycles, and the congestion-recall branch.
package main

import (
	"flag"
	"log"
	"os"

	"WaveBench/internal/config"
	"WaveBench/internal/engine/aggregator"
	"WaveBench/internal/engine/congestion"
	"WaveBench/internal/engine/cycle"
	"WaveBench/internal/model"
	"WaveBench/internal/replay"
	"WaveBench/internal/report"
	"WaveBench/pkg/pcap"

	_ "WaveBench/internal/engine/impl/exact"
	_ "WaveBench/internal/engine/impl/wavelet"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	tracePath := flag.String("trace", "", "Text trace file to replay.")
	pcapPath := flag.String("pcap", "", "Pcap file to replay instead of a text trace.")
	flag.Parse()

	if (*tracePath == "") == (*pcapPath == "") {
		log.Println("Error: exactly one of -trace or -pcap is required.")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	windowUS, _ := cfg.WindowUS()
	cycleUS, _ := cfg.CycleUS()

	writer, err := buildWriter(cfg)
	if err != nil {
		log.Fatalf("Failed to create report writer: %v", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Printf("Error closing report writer: %v", err)
		}
	}()

	lanes, err := cycle.BuildLanes(cfg.Evaluation.Codecs, cfg.Evaluation.MemoriesKB, windowUS)
	if err != nil {
		log.Fatalf("Failed to build codec lanes: %v", err)
	}
	log.Printf("Evaluating %d lanes (%v x %vKB), window %dus, cycle %dus",
		len(lanes), cfg.Evaluation.Codecs, cfg.Evaluation.MemoriesKB, windowUS, cycleUS)

	scheduler, err := cycle.New(aggregator.New(windowUS), cycleUS, lanes, writer)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	cong, err := congestion.New(windowUS, cfg.Sampling.Ratio)
	if err != nil {
		log.Fatalf("Failed to create congestion evaluator: %v", err)
	}
	rate := report.NewRateLogger(windowUS)

	// Queue occupancy proxy: the running byte total inside the current
	// window. Events past the congestion threshold get marked, the way an
	// ECN queue marks packets once its depth crosses the threshold.
	var curWin, lastTimeUS uint64
	var curBytes float64
	events := 0

	handle := func(ev model.FlowEvent) {
		scheduler.Ingest(ev)
		rate.Record(ev.TimeUS, ev.Bytes)

		if win := ev.TimeUS / windowUS; win != curWin {
			curWin = win
			curBytes = 0
		}
		curBytes += float64(ev.Bytes)
		cong.RecordOccupancy(ev.TimeUS, curBytes)
		if curBytes > cfg.Sampling.CongestionThresholdBytes {
			cong.RecordMark(ev.TimeUS)
		}

		if ev.TimeUS > lastTimeUS {
			lastTimeUS = ev.TimeUS
		}
		events++

		if _, err := scheduler.OnTick(ev.TimeUS); err != nil {
			log.Fatalf("Cycle processing failed: %v", err)
		}
	}

	if *tracePath != "" {
		parsed, skipped, err := replay.NewReader(*tracePath).ReadEvents(handle)
		if err != nil {
			log.Fatalf("Failed to replay trace %s: %v", *tracePath, err)
		}
		log.Printf("Trace replay finished: %d events parsed, %d lines skipped", parsed, skipped)
	} else {
		reader, err := pcap.NewReader(*pcapPath)
		if err != nil {
			log.Fatalf("Failed to open pcap %s: %v", *pcapPath, err)
		}
		reader.ReadEvents(handle)
		reader.Close()
		log.Printf("Pcap replay finished: %d events", events)
	}

	if events == 0 {
		log.Println("No events replayed, nothing to report.")
		return
	}

	// Flush the trailing partial cycle.
	if _, err := scheduler.OnTick(lastTimeUS/cycleUS*cycleUS + cycleUS); err != nil {
		log.Fatalf("Final cycle processing failed: %v", err)
	}

	if cfg.Sampling.QueueOutput != "" {
		if err := report.WriteQueueGroundTruth(cfg.Sampling.QueueOutput, cong.Occupancy(), windowUS); err != nil {
			log.Fatalf("Failed to write queue ground truth: %v", err)
		}
	}
	if cfg.Sampling.RateOutput != "" {
		if err := rate.WriteCSV(cfg.Sampling.RateOutput, cong.EstimatedMarks); err != nil {
			log.Fatalf("Failed to write rate report: %v", err)
		}
	}

	captured, total, recall := cong.ComputeRecall(cfg.Sampling.CongestionThresholdBytes)
	log.Printf("Congestion recall at ratio %g: %d/%d windows captured (recall %.4f)",
		cfg.Sampling.Ratio, captured, total, recall)
	log.Printf("Fidelity report written to %s", cfg.Evaluation.Output)
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
