package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"WaveBench/internal/config"
	"WaveBench/internal/model"
	"WaveBench/internal/probe"
	"WaveBench/pkg/pcap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	pcapFile := flag.String("pcap", "", "Pcap file to replay and publish.")
	iface := flag.String("iface", "", "Interface to capture packets from (live mode).")
	flag.Parse()

	if (*pcapFile == "") == (*iface == "") {
		log.Println("Error: exactly one of -pcap or -iface is required.")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pub, err := probe.NewPublisher(cfg.Probe)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer pub.Close()

	var reader *pcap.Reader
	if *pcapFile != "" {
		reader, err = pcap.NewReader(*pcapFile)
		if err != nil {
			log.Fatalf("Error opening pcap file %s: %v", *pcapFile, err)
		}
		log.Printf("Publishing events from pcap file: %s", *pcapFile)
	} else {
		reader, err = pcap.NewLiveReader(*iface)
		if err != nil {
			log.Fatalf("Error opening device %s: %v", *iface, err)
		}
		log.Printf("Publishing events from live capture on: %s", *iface)
	}
	defer reader.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		published := 0
		reader.ReadEvents(func(ev model.FlowEvent) {
			if err := pub.Publish(ev); err != nil {
				log.Printf("Failed to publish event: %v", err)
				return
			}
			published++
			if published%10000 == 0 {
				log.Printf("%d events published...", published)
			}
		})
		log.Printf("Capture source exhausted, %d events published.", published)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Shutdown signal received, cleaning up...")
	case <-done:
	}
}
