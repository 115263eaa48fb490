// Package server exposes the answerer over the JSON /chat endpoint the chat
// client talks to.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diogo/wikichat/internal/models"
)

const (
	maxRequestBytes = 1 << 20
	shutdownTimeout = 10 * time.Second

	msgNoMessage   = "No message provided"
	msgInvalidMode = "Invalid mode"
	msgInvalidJSON = "Invalid JSON body"
)

// Answerer produces the answer to a message in a mode
type Answerer interface {
	Answer(ctx context.Context, mode models.Mode, question string) (string, error)
}

// Server is the chat backend
type Server struct {
	answerer Answerer
	addr     string
	logger   *zap.Logger
}

// New creates a Server listening on addr
func New(answerer Answerer, addr string, logger *zap.Logger) (*Server, error) {
	if answerer == nil {
		return nil, errors.New("answerer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if addr == "" {
		addr = models.DefaultListenAddr
	}
	return &Server{answerer: answerer, addr: addr, logger: logger}, nil
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the HTTP handler with CORS and request logging applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(models.ChatPath, s.handleChat)
	mux.HandleFunc("/healthz", s.handleHealth)
	return s.logRequests(cors(mux))
}

// Run listens on the configured address and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("chat backend listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down chat backend")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: http.StatusText(http.StatusMethodNotAllowed)})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil || !gjson.ValidBytes(body) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidJSON})
		return
	}

	message := gjson.GetBytes(body, "message")
	if message.Type != gjson.String || message.String() == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: msgNoMessage})
		return
	}

	mode, err := models.ParseMode(gjson.GetBytes(body, "mode").String())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidMode})
		return
	}

	s.logger.Info("received message",
		zap.String("mode", mode.String()),
		zap.Int("message_len", len(message.String())))

	answer, err := s.answerer.Answer(r.Context(), mode, message.String())
	if err != nil {
		s.logger.Error("answer failed", zap.String("mode", mode.String()), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Answer: answer})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// cors allows the chat widget to call the backend from any origin
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}
