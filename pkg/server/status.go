package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sitariff/sitariff/pkg/log"
	"github.com/sitariff/sitariff/pkg/types"
)

// parseTimestamp reads an optional RFC3339 timestamp from the query. A
// missing value is the zero time, meaning now.
func parseTimestamp(r *http.Request, key string) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, types.NewError(types.ErrorKindInvalidDate, key, v)
	}
	return ts, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ts, err := parseTimestamp(r, "ts")
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := s.controller.CurrentStatus(r.Context(), ts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type costRequest struct {
	ConsumptionKWH decimal.NullDecimal `json:"consumptionKWH"`
	Timestamp      *time.Time          `json:"timestamp,omitempty"`
}

func (s *Server) handleCost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req costRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCostBodyBytes)).Decode(&req); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to decode cost request", slog.Any("error", err))
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !req.ConsumptionKWH.Valid {
		writeError(w, r, types.NewError(types.ErrorKindInvalidConsumption, "consumptionKWH", nil))
		return
	}
	var ts time.Time
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	est, err := s.controller.CalculateCost(ctx, req.ConsumptionKWH.Decimal, ts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est.Rounded())
}
