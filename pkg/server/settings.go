package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sitariff/sitariff/pkg/controller"
	"github.com/sitariff/sitariff/pkg/log"
	"github.com/sitariff/sitariff/pkg/types"
)

const (
	defaultRevisionsLimit = 20
	maxRevisionsLimit     = 100
)

type settingsResponse struct {
	Schedule         string `json:"schedule"`
	Supplier         string `json:"supplier"`
	Version          int    `json:"version"`
	Revision         uint64 `json:"revision"`
	PricesConfigured bool   `json:"pricesConfigured"`
}

func newSettingsResponse(snap *controller.Snapshot) settingsResponse {
	return settingsResponse{
		Schedule:         snap.Settings.Schedule,
		Supplier:         snap.Settings.Supplier,
		Version:          snap.Version,
		Revision:         snap.Revision,
		PricesConfigured: snap.PricesConfigured(),
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	snap := s.controller.Snapshot()
	if snap == nil {
		writeError(w, r, controller.ErrNotLoaded)
		return
	}
	writeJSON(w, http.StatusOK, newSettingsResponse(snap))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req controller.SettingsUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to decode settings", slog.Any("error", err))
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	snap, err := s.controller.UpdateSettings(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Ctx(ctx).InfoContext(ctx, "settings updated via api", slog.String("operator", operatorEmail(r)))
	writeJSON(w, http.StatusOK, newSettingsResponse(snap))
}

func (s *Server) handleListRevisions(w http.ResponseWriter, r *http.Request) {
	limit := defaultRevisionsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSONError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRevisionsLimit)
	}

	revs, err := s.controller.Revisions(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if revs == nil {
		revs = []types.SettingsRevision{}
	}
	writeJSON(w, http.StatusOK, revs)
}
