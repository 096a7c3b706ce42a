package server

import (
	"context"
	"encoding/json"
	"net/http"

	"bikeshop-prices/services"
	"bikeshop-prices/utils"
)

// Server exposes the dashboard views to the presentation layer. The only
// value it accepts back is a replacement SelectionSettings.
type Server struct {
	dash   *services.Dashboard
	logger *utils.Logger
}

func NewServer(dash *services.Dashboard, logger *utils.Logger) *Server {
	return &Server{dash: dash, logger: logger}
}

func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.HealthCheck)
	mux.HandleFunc("GET /api/v1/records", s.Records)
	mux.HandleFunc("GET /api/v1/histogram", s.Histogram)
	mux.HandleFunc("GET /api/v1/scatter", s.Scatter)
	mux.HandleFunc("GET /api/v1/summary", s.Summary)
	mux.HandleFunc("GET /api/v1/settings", s.GetSettings)
	mux.HandleFunc("PUT /api/v1/settings", s.ReplaceSettings)
	mux.HandleFunc("POST /api/v1/reload", s.Reload)
	mux.HandleFunc("GET /api/v1/export.csv", s.ExportCSV)

	return mux
}

// ListenAndServe runs until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.SetupRoutes()}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	s.logger.Info("[server] Listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	snap := s.dash.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"snapshot": snap.ID,
		"records":  len(snap.Records),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
