package server

import (
	"net/http"
	"time"

	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/gorilla/mux"
)

// registerRoutes sets up all REST API routes on the router.
func (s *Server) registerRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	// Subrouters do not inherit these from their parent.
	for _, router := range []*mux.Router{r, api} {
		router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			WriteError(w, http.StatusNotFound, "Not found")
		})
		router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		})
	}

	// System
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/shutdown", s.handleShutdown).Methods(http.MethodPost)

	// Ad-hoc analytics
	api.HandleFunc("/xirr", s.handleXIRR).Methods(http.MethodPost)
	api.HandleFunc("/compare", s.handleCompare).Methods(http.MethodPost)
	api.HandleFunc("/report", s.handleReport).Methods(http.MethodPost)
	api.HandleFunc("/import", s.handleImportDocument).Methods(http.MethodPost)

	// Stored funds
	api.HandleFunc("/funds", s.handleFundList).Methods(http.MethodGet)
	api.HandleFunc("/funds", s.handleFundCreate).Methods(http.MethodPost)
	api.HandleFunc("/funds/{id}", s.handleFundGet).Methods(http.MethodGet)
	api.HandleFunc("/funds/{id}", s.handleFundUpdate).Methods(http.MethodPut)
	api.HandleFunc("/funds/{id}", s.handleFundDelete).Methods(http.MethodDelete)
	api.HandleFunc("/funds/{id}/report", s.handleFundReport).Methods(http.MethodGet)
	api.HandleFunc("/funds/{id}/export", s.handleFundExport).Methods(http.MethodGet)
	api.HandleFunc("/funds/{id}/records", s.handleRecordList).Methods(http.MethodGet)
	api.HandleFunc("/funds/{id}/records/import", s.handleRecordImport).Methods(http.MethodPost)
	api.HandleFunc("/funds/{id}/records/{month}", s.handleRecordPut).Methods(http.MethodPut)
	api.HandleFunc("/funds/{id}/records/{month}", s.handleRecordDelete).Methods(http.MethodDelete)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
