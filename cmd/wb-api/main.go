package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"WaveBench/internal/config"
	"WaveBench/internal/query"

	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.ClickHouse.Enabled {
		log.Fatalf("ClickHouse is disabled in config. API server cannot start.")
	}

	querier, err := query.NewClickHouseQuerier(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to create querier: %v", err)
	}

	r := mux.NewRouter()
	apiHandler := &APIHandler{querier: querier}
	r.HandleFunc("/api/v1/fidelity/summary", apiHandler.summaryHandler).Methods("GET")
	r.HandleFunc("/api/v1/fidelity/flows/{flowID}", apiHandler.traceFlowHandler).Methods("GET")

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}

// APIHandler holds the dependencies for API handlers.
type APIHandler struct {
	querier query.Querier
}

// summaryHandler returns per-algorithm fidelity aggregates, optionally
// filtered by ?algorithm=.
func (h *APIHandler) summaryHandler(w http.ResponseWriter, r *http.Request) {
	algorithm := r.URL.Query().Get("algorithm")

	summaries, err := h.querier.SummarizeAlgorithms(r.Context(), algorithm)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query summaries: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, summaries)
}

// traceFlowHandler returns the score series of one flow under one codec
// and memory budget.
func (h *APIHandler) traceFlowHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	flowID, err := strconv.ParseUint(vars["flowID"], 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid flow id: %v", err), http.StatusBadRequest)
		return
	}

	algorithm := r.URL.Query().Get("algorithm")
	if algorithm == "" {
		http.Error(w, "missing required query parameter: algorithm", http.StatusBadRequest)
		return
	}
	memoryKB, err := strconv.ParseUint(r.URL.Query().Get("memory_kb"), 10, 32)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid memory_kb: %v", err), http.StatusBadRequest)
		return
	}

	series, err := h.querier.TraceFlow(r.Context(), algorithm, uint32(memoryKB), flowID)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to trace flow: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, series)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}
