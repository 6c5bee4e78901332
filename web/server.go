package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"lautenbacher.net/gosignal/config"
	"lautenbacher.net/gosignal/driver"
	"lautenbacher.net/gosignal/history"
	"lautenbacher.net/gosignal/metrics"
	"lautenbacher.net/gosignal/remote"
	"lautenbacher.net/gosignal/util"
)

const maxCommandSize = 64

// Server is the HTTP API of the signal.
type Server struct {
	driver  *driver.Driver
	history *history.History
	metrics *metrics.Metrics
	cfile   string
	srv     *http.Server
}

func NewServer(listen string, d *driver.Driver, h *history.History, m *metrics.Metrics, cfile string) *Server {
	s := &Server{
		driver:  d,
		history: h,
		metrics: m,
		cfile:   cfile,
	}
	s.srv = &http.Server{
		Addr:              listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.statusHandler)
	mux.HandleFunc("POST /api/mode", s.modeHandler)
	mux.HandleFunc("GET /api/history", s.historyHandler)
	mux.Handle("/api/config", config.ConfigHandler(s.cfile))
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("can't listen on %s: %w", s.srv.Addr, err)
	}
	slog.Info("Web API listening", "address", ln.Addr().String())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Web API stopped", "error", err)
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.driver.CurrentStatus())
}

func (s *Server) modeHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCommandSize+1))
	if err != nil {
		http.Error(w, "Can't read request body", http.StatusBadRequest)
		return
	}
	if len(body) > maxCommandSize {
		http.Error(w, "Command too long", http.StatusRequestEntityTooLarge)
		return
	}
	kind, err := remote.ParseCommand(string(body))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.driver.Submit(util.NewRequest("http", kind, time.Now())) {
		http.Error(w, "Too many pending requests", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, "Request %s accepted.", kind)
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	n := 0
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			http.Error(w, "n must be a non-negative number", http.StatusBadRequest)
			return
		}
		n = parsed
	}
	writeJSON(w, s.history.Last(n))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}
