package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"logguard/internal/config"
	"logguard/internal/model"
)

// RESTSource accepts events over HTTP POST and buffers them until the
// next Collect drains the buffer. It doubles as a Source so serve mode
// can run a detection pass per accumulated batch.
type RESTSource struct {
	mu     sync.Mutex
	buf    []model.RawEvent
	logger *slog.Logger
}

func NewRESTSource(logger *slog.Logger) *RESTSource {
	return &RESTSource{logger: logger}
}

// Collect drains and returns the buffered events.
func (s *RESTSource) Collect(_ context.Context) ([]model.RawEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.buf
	s.buf = nil
	if out == nil {
		out = []model.RawEvent{}
	}
	return out, nil
}

func (s *RESTSource) add(events []model.RawEvent) {
	s.mu.Lock()
	s.buf = append(s.buf, events...)
	s.mu.Unlock()
}

// Pending reports the number of buffered events.
func (s *RESTSource) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Start serves POST /events accepting a single JSON object or an array of
// objects. The server shuts down when ctx is cancelled.
func (s *RESTSource) Start(ctx context.Context, cfg config.RESTConfig) *http.Server {
	if !cfg.Enabled {
		if s.logger != nil {
			s.logger.Info("rest collector disabled")
		}
		return nil
	}
	if s.logger != nil {
		s.logger.Info("rest collector enabled", "addr", cfg.Addr)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	httpServer := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Error("rest collector server error", "err", err)
			}
		}
	}()
	return httpServer
}

func (s *RESTSource) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 2<<20))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	trim := bytes.TrimSpace(body)
	if len(trim) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var events []model.RawEvent
	if trim[0] == '[' {
		if err := json.Unmarshal(trim, &events); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	} else {
		ev, err := ParseJSONBytes(trim)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		events = []model.RawEvent{ev}
	}
	s.add(events)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"accepted": len(events)})
}
