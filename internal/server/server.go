// Package server exposes the book library over the /load, /ask and /books
// JSON endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apierrors "github.com/diogo/bookchat/internal/errors"
	"github.com/diogo/bookchat/internal/models"
)

// Library ingests the books folder
type Library interface {
	Load(ctx context.Context) (*models.BookLoadResult, error)
	Describe(err error) string
}

// Catalog lists the names of the stored books
type Catalog interface {
	Sources(ctx context.Context) ([]string, error)
}

// Retriever returns the chunk texts relevant to a question
type Retriever interface {
	Search(ctx context.Context, question string) ([]string, error)
}

// Answerer produces an answer from a question and its context chunks
type Answerer interface {
	Answer(ctx context.Context, question string, chunks []string) (string, error)
}

const (
	maxRequestBody  = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Server serves the backend endpoints
type Server struct {
	library   Library
	catalog   Catalog
	retriever Retriever
	answerer  Answerer
	logger    *zap.Logger
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server over the given components
func New(library Library, catalog Catalog, retriever Retriever, answerer Answerer, opts ...Option) *Server {
	s := &Server{
		library:   library,
		catalog:   catalog,
		retriever: retriever,
		answerer:  answerer,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed and logged HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+models.EndpointLoad, s.handleLoad)
	mux.HandleFunc("GET "+models.EndpointBooks, s.handleBooks)
	mux.HandleFunc("POST "+models.EndpointAsk, s.handleAsk)
	return s.logRequests(mux)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return err
		}
		return nil
	})
	return g.Wait()
}

// Run listens on addr and serves until ctx is canceled
func (s *Server) Run(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	result, err := s.library.Load(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apierrors.ErrNoBooksFolder) || errors.Is(err, apierrors.ErrNoTextFiles) {
			status = http.StatusOK
		} else {
			s.logger.Error("load failed", zap.Error(err))
		}
		if result == nil {
			writeJSON(w, status, models.ErrorResponse{Error: s.library.Describe(err)})
			return
		}
		result.Error = s.library.Describe(err)
		writeJSON(w, status, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	sources, err := s.catalog.Sources(r.Context())
	if err != nil {
		s.logger.Error("list books failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	books := slices.Clone(sources)
	slices.Sort(books)
	if books == nil {
		books = []string{}
	}
	writeJSON(w, http.StatusOK, models.BookListResult{Books: books})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "failed to read request body"})
		return
	}
	if !gjson.ValidBytes(body) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "request body is not valid JSON"})
		return
	}

	question := strings.TrimSpace(gjson.GetBytes(body, "question").String())
	if question == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: apierrors.ErrEmptyQuestion.Error()})
		return
	}

	chunks, err := s.retriever.Search(r.Context(), question)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	if len(chunks) == 0 {
		writeJSON(w, http.StatusOK, models.AskResponse{Answer: models.TextAnswerNotFound})
		return
	}

	answer, err := s.answerer.Answer(r.Context(), question, chunks)
	if err != nil {
		s.logger.Error("answer failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.AskResponse{Answer: answer})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
