package server

import (
	"net/http"

	"github.com/sitariff/sitariff/pkg/tariff"
	"github.com/sitariff/sitariff/pkg/types"
)

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tariff.Variants())
}

func (s *Server) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.Suppliers)
}
