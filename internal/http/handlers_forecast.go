package http

import (
	"log/slog"
	"net/http"

	"saldo/internal/forecast"
)

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	accountID, opts, err := parseForecastQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	timeline, err := s.forecasts.Timeline(r.Context(), accountID, opts)
	if err != nil {
		slog.ErrorContext(r.Context(), "timeline", "account_id", accountID, "error", err)
		writeStoreError(w, err)
		return
	}
	if timeline == nil {
		timeline = []forecast.DailyPoint{}
	}
	writeJSON(w, http.StatusOK, timeline)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	accountID, opts, err := parseForecastQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.forecasts.Analytics(r.Context(), accountID, opts)
	if err != nil {
		slog.ErrorContext(r.Context(), "analytics", "account_id", accountID, "error", err)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
