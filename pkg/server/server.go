package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/elonfeng/stayradar/internal/store"
	"github.com/elonfeng/stayradar/pkg/report"
	"github.com/elonfeng/stayradar/pkg/shell"
)

// Server provides a read-only HTTP API over the stored reports.
type Server struct {
	store    shell.Querier
	denylist *report.Denylist
	port     int
}

// New creates a new HTTP server.
func New(s shell.Querier, denylist *report.Denylist, port int) *Server {
	if port == 0 {
		port = 8080
	}
	if denylist == nil {
		denylist = report.NewDenylist(nil)
	}
	return &Server{
		store:    s,
		denylist: denylist,
		port:     port,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/reports/monthly", s.handleMonthly)
	mux.HandleFunc("/api/v1/reports/yearly", s.handleYearly)
	mux.HandleFunc("/api/v1/query", s.handleQuery)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("stayradar server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rows, err := s.store.MonthlyReport(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  rows,
		"count": len(rows),
	})
}

func (s *Server) handleYearly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rows, err := s.store.YearlyReport(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  rows,
		"count": len(rows),
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing q"})
		return
	}
	if word, blocked := s.denylist.Blocked(q); blocked {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("queries containing %q are not allowed", word)})
		return
	}

	table, err := s.store.RawQuery(r.Context(), q)
	if err != nil {
		status := http.StatusInternalServerError
		var qErr *store.QueryError
		if errors.As(err, &qErr) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  table,
		"count": len(table.Rows),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	report.WriteJSON(w, data)
}
