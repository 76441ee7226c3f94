package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/patrickwarner/openmediaplan/internal/analytics"
	"github.com/patrickwarner/openmediaplan/internal/export"
	"github.com/patrickwarner/openmediaplan/internal/middleware"
	"github.com/patrickwarner/openmediaplan/internal/reporting"
)

// CampaignReportHandler handles GET /api/campaigns/{id}/report.
// The report carries the booking totals, per-publication breakdown, budget
// usage and the monthly schedule of the campaign.
func (s *Server) CampaignReportHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaign_report"
	const method = "GET"

	report, err := reporting.GenerateCampaignReport(r.Context(), s.Campaigns, mux.Vars(r)["id"], s.now())
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}

	middleware.LoggerFromRequest(r, s.Logger).Info("campaign report generated",
		zap.String("campaign_id", report.Campaign.ID),
		zap.Int("placements", report.Totals.Placements),
		zap.Float64("total_cost", report.Totals.TotalCost))

	writeJSON(w, http.StatusOK, report)
	s.observe(endpoint, method, http.StatusOK, start)
}

// CampaignExportHandler handles GET /api/campaigns/{id}/export.xlsx.
func (s *Server) CampaignExportHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaign_export"
	const method = "GET"

	c, err := s.loadCampaign(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	f, err := export.CampaignWorkbook(*c)
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename("campaign", c.Name)+`"`)
	if err := export.Write(w, f); err != nil {
		middleware.LoggerFromRequest(r, s.Logger).Error("campaign export failed", zap.String("campaign_id", c.ID), zap.Error(err))
		s.observe(endpoint, method, http.StatusInternalServerError, start)
		return
	}
	s.observe(endpoint, method, http.StatusOK, start)
}

// ActivityReportHandler handles GET /api/reports/activity.
//
// Query Parameters:
//   - days: Number of days to include (default: 7, max: 365)
func (s *Server) ActivityReportHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "activity_report"
	const method = "GET"

	if s.Analytics == nil {
		s.observe(endpoint, method, s.writeError(w, r, analytics.ErrUnavailable), start)
		return
	}

	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			s.observe(endpoint, method, s.writeError(w, r, badRequest("invalid days parameter")), start)
			return
		}
		days = min(parsed, 365)
	}

	report, err := reporting.GenerateActivityReport(r.Context(), s.Analytics, days, s.now())
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	writeJSON(w, http.StatusOK, report)
	s.observe(endpoint, method, http.StatusOK, start)
}
