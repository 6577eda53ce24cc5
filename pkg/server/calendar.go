package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sitariff/sitariff/pkg/calendar"
	"github.com/sitariff/sitariff/pkg/tariff"
	"github.com/sitariff/sitariff/pkg/types"
)

type holidaysResponse struct {
	Year     int             `json:"year"`
	Holidays []types.Holiday `json:"holidays"`
}

func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	year := s.now().In(tariff.Location).Year()
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, types.NewError(types.ErrorKindInvalidDate, "year", v))
			return
		}
		year = n
	}
	holidays, err := calendar.Holidays(year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, holidaysResponse{
		Year:     year,
		Holidays: holidays,
	})
}

type timelineResponse struct {
	Date    string               `json:"date"`
	Periods []types.TariffPeriod `json:"periods"`
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	day := s.now().In(tariff.Location)
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.ParseInLocation(time.DateOnly, v, tariff.Location)
		if err != nil {
			writeError(w, r, types.NewError(types.ErrorKindInvalidDate, "date", v))
			return
		}
		day = d
	}
	periods, err := s.controller.Timeline(r.Context(), day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, timelineResponse{
		Date:    day.Format(time.DateOnly),
		Periods: periods,
	})
}
