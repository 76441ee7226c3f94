package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status          string `json:"status"`
	RateCardVersion string `json:"rate_card_version"`
	RateCardEntries int    `json:"rate_card_entries"`
	PlanningVersion string `json:"planning_version"`
}

// HealthHandler responds with a simple status check and the versions of the
// active rate card and planning config.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "health"
	const method = "GET"

	snap := s.RateCards.Snapshot()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:          "ok",
		RateCardVersion: snap.Version,
		RateCardEntries: snap.EntryCount(),
		PlanningVersion: s.Engine().Config().Version,
	})

	s.observe(endpoint, method, http.StatusOK, start)
}
