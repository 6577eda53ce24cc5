package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sitariff/sitariff/pkg/controller"
	"github.com/sitariff/sitariff/pkg/log"
	"github.com/sitariff/sitariff/pkg/types"
)

type pricesResponse struct {
	Prices     types.PriceConfiguration `json:"prices"`
	Configured bool                     `json:"configured"`
	Supplier   string                   `json:"supplier"`
	Revision   uint64                   `json:"revision"`
}

func newPricesResponse(snap *controller.Snapshot) pricesResponse {
	return pricesResponse{
		Prices:     snap.Settings.Prices,
		Configured: snap.PricesConfigured(),
		Supplier:   snap.Settings.Supplier,
		Revision:   snap.Revision,
	}
}

func (s *Server) handleGetPrices(w http.ResponseWriter, r *http.Request) {
	snap := s.controller.Snapshot()
	if snap == nil {
		writeError(w, r, controller.ErrNotLoaded)
		return
	}
	writeJSON(w, http.StatusOK, newPricesResponse(snap))
}

func (s *Server) handleDefaultPrices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.DefaultPrices())
}

// handleUpdatePrices replaces the whole price configuration. The body is an
// object with all nine components under their canonical or legacy names.
func (s *Server) handleUpdatePrices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var fields map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to decode prices", slog.Any("error", err))
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	prices, err := types.ParsePriceConfiguration(fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := s.controller.UpdatePrices(ctx, prices)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Ctx(ctx).InfoContext(ctx, "prices updated via api", slog.String("operator", operatorEmail(r)), slog.Uint64("revision", snap.Revision))
	writeJSON(w, http.StatusOK, newPricesResponse(snap))
}
