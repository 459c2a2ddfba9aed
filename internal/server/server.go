// Package server exposes a database as the JSON schema service read by the
// api client.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"schemaview/internal/column"
	"schemaview/internal/db"
	"schemaview/internal/logger"
	"schemaview/internal/query"
	"schemaview/internal/table"
)

// Source provides schemas and rows. *db.Source implements it.
type Source interface {
	Tables(ctx context.Context) ([]table.Schema, error)
	Items(ctx context.Context, tableID string, f query.Filter) ([]column.Entry, error)
	Item(ctx context.Context, tableID string, id int64) (column.Entry, error)
}

// maxBody caps the size of a filter request body.
const maxBody = 1 << 20

type Server struct {
	src Source
	mux *http.ServeMux
	log *zap.SugaredLogger
}

// New registers the service endpoints for src.
func New(src Source) *Server {
	s := &Server{
		src: src,
		mux: http.NewServeMux(),
		log: logger.With("component", "server"),
	}
	s.mux.HandleFunc("GET /api/tables", s.handleTables)
	s.mux.HandleFunc("GET /api/definitions", s.handleDefinitions)
	s.mux.HandleFunc("GET /api/items/{table}", s.handleItems)
	s.mux.HandleFunc("GET /api/item/{table}/{id}", s.handleItem)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.log.Debugw("request", "method", r.Method, "path", r.URL.Path,
		"status", rec.status, "elapsed", time.Since(start))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Infow("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.src.Tables(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, tables)
}

// definitionsResponse is the body of /api/definitions.
type definitionsResponse struct {
	Definitions []table.Definition `json:"definitions"`
	Orphans     []string           `json:"orphans"`
}

func (s *Server) handleDefinitions(w http.ResponseWriter, r *http.Request) {
	tables, err := s.src.Tables(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	resp := definitionsResponse{Orphans: []string{}}
	defs, err := table.Definitions(tables)
	var se *table.SchemaError
	if errors.As(err, &se) {
		for _, o := range se.Orphans {
			resp.Orphans = append(resp.Orphans, o.Table)
		}
		s.log.Warnw("orphan tables", "tables", resp.Orphans)
	}
	resp.Definitions = defs
	s.writeJSON(w, resp)
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	f, err := readFilter(r)
	if err != nil {
		http.Error(w, "invalid filter: "+err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := s.src.Items(r.Context(), r.PathValue("table"), f)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, rows)
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id: "+r.PathValue("id"), http.StatusBadRequest)
		return
	}
	row, err := s.src.Item(r.Context(), r.PathValue("table"), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, row)
}

// readFilter decodes the request body. An absent body selects every row.
func readFilter(r *http.Request) (query.Filter, error) {
	f := query.NewFilter()
	if r.Body == nil {
		return f, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return f, err
	}
	if strings.TrimSpace(string(body)) == "" {
		return f, nil
	}
	if err := json.Unmarshal(body, &f); err != nil {
		return f, err
	}
	return f, nil
}

// fail maps source errors to HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, db.ErrUnknownTable),
		errors.Is(err, db.ErrUnknownColumn),
		errors.Is(err, db.ErrNoPrimaryKey),
		errors.Is(err, query.ErrOperand),
		errors.Is(err, query.ErrUnknownOperator):
		status = http.StatusBadRequest
	default:
		s.log.Errorw("request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}

// writeJSON writes v as the response body, or fails with a 500 when v cannot
// be encoded.
func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.fail(w, fmt.Errorf("encode response: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := buf.WriteTo(w); err != nil {
		s.log.Warnw("write response", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
