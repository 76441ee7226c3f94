package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/patrickwarner/openmediaplan/internal/middleware"
	"github.com/patrickwarner/openmediaplan/internal/ratelimit"
)

// Routes registers the HTTP surface on r. Plan generation and quoting are
// rate limited per client when limiter is non-nil.
func (s *Server) Routes(r *mux.Router, limiter *ratelimit.ClientLimiter) {
	r.Use(mux.MiddlewareFunc(middleware.WithTraceLogger(s.Logger)))

	limited := func(endpoint string, h http.HandlerFunc) http.Handler {
		if limiter == nil {
			return h
		}
		return middleware.RateLimit(limiter, endpoint, s.Logger)(h)
	}

	r.HandleFunc("/health", s.HealthHandler).Methods("GET")
	r.HandleFunc("/reload", s.ReloadHandler).Methods("POST")

	r.Handle("/plans", limited("plans", s.CreatePlanHandler)).Methods("POST")
	r.HandleFunc("/plans/{id}", s.GetPlanHandler).Methods("GET")
	r.HandleFunc("/plans/{id}/export.xlsx", s.ExportPlanHandler).Methods("GET")

	r.HandleFunc("/ratecard", s.RateCardHandler).Methods("GET")
	r.HandleFunc("/ratecard/options", s.RateCardOptionsHandler).Methods("GET")
	r.HandleFunc("/ratecard/price", s.PriceHandler).Methods("GET")
	r.Handle("/placements/quote", limited("placements_quote", s.QuoteHandler)).Methods("POST")

	crud := r.PathPrefix("/api").Subrouter()
	crud.HandleFunc("/campaigns", s.ListCampaigns).Methods("GET")
	crud.HandleFunc("/campaigns", s.CreateCampaign).Methods("POST")
	crud.HandleFunc("/campaigns/{id}", s.GetCampaign).Methods("GET")
	crud.HandleFunc("/campaigns/{id}", s.UpdateCampaign).Methods("PUT")
	crud.HandleFunc("/campaigns/{id}", s.DeleteCampaign).Methods("DELETE")
	crud.HandleFunc("/campaigns/{id}/placements", s.ListPlacements).Methods("GET")
	crud.HandleFunc("/campaigns/{id}/placements", s.CreatePlacement).Methods("POST")
	crud.HandleFunc("/campaigns/{id}/report", s.CampaignReportHandler).Methods("GET")
	crud.HandleFunc("/campaigns/{id}/export.xlsx", s.CampaignExportHandler).Methods("GET")
	crud.HandleFunc("/placements/{id}", s.UpdatePlacement).Methods("PUT")
	crud.HandleFunc("/placements/{id}", s.DeletePlacement).Methods("DELETE")
	crud.HandleFunc("/reports/activity", s.ActivityReportHandler).Methods("GET")
}
