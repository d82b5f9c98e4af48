package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"logguard/internal/alerts"
	"logguard/internal/config"
)

// Server exposes read-only introspection over the alert store and the
// running configuration.
type Server struct {
	cfg      *config.Manager
	alerts   *alerts.Store
	strategy string
	logger   *slog.Logger
	version  string
}

type statusResponse struct {
	Status    string          `json:"status"`
	Time      string          `json:"time"`
	Version   string          `json:"version"`
	Strategy  string          `json:"strategy"`
	Alerts    int             `json:"alerts"`
	Detection detectionStatus `json:"detection"`
	Collector collectorStatus `json:"collector"`
}

type detectionStatus struct {
	BruteForceThreshold int     `json:"brute_force_threshold"`
	NSigma              float64 `json:"n_sigma"`
	Contamination       float64 `json:"contamination"`
}

type collectorStatus struct {
	File  bool `json:"file"`
	Kafka bool `json:"kafka"`
	REST  bool `json:"rest"`
}

func Start(ctx context.Context, cfg *config.Manager, alertStore *alerts.Store, strategy string, logger *slog.Logger, version string) *http.Server {
	if cfg == nil {
		return nil
	}
	current := cfg.Get().API
	if !current.Enabled {
		if logger != nil {
			logger.Info("api disabled")
		}
		return nil
	}
	if logger != nil {
		logger.Info("api enabled", "addr", current.Addr)
	}
	server := &Server{
		cfg:      cfg,
		alerts:   alertStore,
		strategy: strategy,
		logger:   logger,
		version:  version,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/status", server.handleStatus)
	mux.HandleFunc("/alerts", server.handleAlerts)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	httpServer := &http.Server{Addr: current.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Error("api server error", "err", err)
			}
		}
	}()
	return httpServer
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cfg := s.cfg.Get()
	resp := statusResponse{
		Status:   "ok",
		Time:     time.Now().UTC().Format(time.RFC3339Nano),
		Version:  s.version,
		Strategy: s.strategy,
		Alerts:   s.alerts.Len(),
		Detection: detectionStatus{
			BruteForceThreshold: cfg.Detection.BruteForceThreshold,
			NSigma:              cfg.Detection.NSigma,
			Contamination:       cfg.Detection.Contamination,
		},
		Collector: collectorStatus{
			File:  cfg.Collector.File.Enabled,
			Kafka: cfg.Collector.Kafka.Enabled,
			REST:  cfg.Collector.REST.Enabled,
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	sinceStr := r.URL.Query().Get("since")
	var list []alerts.Entry
	if sinceStr != "" {
		ts, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		list = s.alerts.Since(ts)
	} else {
		list = s.alerts.List(limit)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": list,
		"count":  len(list),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
