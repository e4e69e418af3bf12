package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dgallion1/docversions/internal/script"
)

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"versions":     s.store.Get(),
		"prefix":       s.opts.PathPrefix,
		"container_id": s.opts.ContainerID,
		"loaded_at":    s.store.LoadedAt().Format(time.RFC3339),
	})
}

// handleReloadVersions re-reads the data file. A failed reload leaves the
// served list untouched.
func (s *Server) handleReloadVersions(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.Reload()
	if err != nil {
		s.log.Error("reload versions failed", "error", err)
		jsonError(w, "reload failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.log.Info("versions reloaded via api", "count", len(list))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"versions": list,
		"count":    len(list),
	})
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := script.Render(w, s.store.Get(), s.opts); err != nil {
		s.log.Error("render script failed", "error", err)
	}
}

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"stats": s.renderer.Stats().Snapshot(),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
