package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/patrickwarner/openmediaplan/internal/analytics"
	"github.com/patrickwarner/openmediaplan/internal/middleware"
	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/pricing"
)

// ===== Campaigns =====

type campaignInput struct {
	Name      string                `json:"name"`
	Client    string                `json:"client"`
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	Budget    float64               `json:"budget"`
	Status    models.CampaignStatus `json:"status"`
	CreatedBy string                `json:"created_by"`
}

func (in campaignInput) campaign() (models.Campaign, error) {
	c := models.Campaign{
		Name:      in.Name,
		Client:    in.Client,
		Budget:    in.Budget,
		Status:    in.Status,
		CreatedBy: in.CreatedBy,
	}
	var err error
	if in.StartDate != "" {
		if c.StartDate, err = parseDay(in.StartDate); err != nil {
			return c, err
		}
	}
	if in.EndDate != "" {
		if c.EndDate, err = parseDay(in.EndDate); err != nil {
			return c, err
		}
	}
	if c.Status == "" {
		c.Status = models.StatusDraft
	}
	return c, nil
}

// readCampaign decodes and validates a campaign body.
func (s *Server) readCampaign(r *http.Request) (models.Campaign, error) {
	var in campaignInput
	if err := decodeJSON(r, &in); err != nil {
		return models.Campaign{}, err
	}
	c, err := in.campaign()
	if err != nil {
		return c, err
	}
	if err := s.Validator.Validate(c); err != nil {
		return c, err
	}
	return c, nil
}

func (s *Server) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaigns"
	const method = "GET"

	cs, err := s.Campaigns.ListCampaigns(r.Context())
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	writeJSON(w, http.StatusOK, cs)
	s.observe(endpoint, method, http.StatusOK, start)
}

func (s *Server) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaigns"
	const method = "POST"

	c, err := s.readCampaign(r)
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	now := s.now().UTC()
	c.ID = s.newID()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.Campaigns.CreateCampaign(r.Context(), &c); err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	middleware.LoggerFromRequest(r, s.Logger).Info("campaign created",
		zap.String("campaign_id", c.ID), zap.String("client", c.Client))
	writeJSON(w, http.StatusCreated, c)
	s.observe(endpoint, method, http.StatusCreated, start)
}

// GetCampaign returns a campaign with its placements.
func (s *Server) GetCampaign(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaign"
	const method = "GET"

	c, err := s.loadCampaign(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	writeJSON(w, http.StatusOK, c)
	s.observe(endpoint, method, http.StatusOK, start)
}

func (s *Server) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaign"
	const method = "PUT"

	c, err := s.readCampaign(r)
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	c.ID = mux.Vars(r)["id"]
	c.UpdatedAt = s.now().UTC()
	if err := s.Campaigns.UpdateCampaign(r.Context(), &c); err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	updated, err := s.loadCampaign(r.Context(), c.ID)
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	writeJSON(w, http.StatusOK, updated)
	s.observe(endpoint, method, http.StatusOK, start)
}

func (s *Server) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaign"
	const method = "DELETE"

	if err := s.Campaigns.DeleteCampaign(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	s.observe(endpoint, method, http.StatusNoContent, start)
}

// loadCampaign returns the campaign with its placements attached.
func (s *Server) loadCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := s.Campaigns.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	pls, err := s.Campaigns.ListPlacements(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Placements = pls
	return c, nil
}

// ===== Placements =====

func (s *Server) ListPlacements(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaign_placements"
	const method = "GET"

	pls, err := s.Campaigns.ListPlacements(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	writeJSON(w, http.StatusOK, pls)
	s.observe(endpoint, method, http.StatusOK, start)
}

func placementFrom(in placementInput, req pricing.Request) models.Placement {
	return models.Placement{
		Publication: req.Publication,
		AdType:      req.AdType,
		Position:    req.Position,
		Size:        req.Size,
		Dates:       req.Dates,
		Quantity:    req.Quantity,
		Discount:    req.Discount,
		Notes:       in.Notes,
	}
}

// CreatePlacement books a priced placement on a campaign and refreshes the
// campaign totals.
func (s *Server) CreatePlacement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "campaign_placements"
	const method = "POST"
	ctx := r.Context()
	campaignID := mux.Vars(r)["id"]

	if _, err := s.Campaigns.GetCampaign(ctx, campaignID); err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	in, req, err := s.quoteRequest(r)
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	pl := placementFrom(in, req)
	pl.ID = s.newID()
	pl.CampaignID = campaignID
	if err := s.Pricer.Price(&pl); err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	if err := s.Campaigns.CreatePlacement(ctx, &pl); err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}

	s.Metrics.IncrementPlacementsQuoted(pl.Publication)
	s.Recorder.Placement(analytics.NewPlacementEvent(middleware.RequestIDFromContext(ctx), &pl, s.now().UTC()))
	writeJSON(w, http.StatusCreated, pl)
	s.observe(endpoint, method, http.StatusCreated, start)
}

// UpdatePlacement replaces the selection and schedule of a placement,
// reprices it and refreshes the campaign totals. The campaign of a
// placement never changes.
func (s *Server) UpdatePlacement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "placement"
	const method = "PUT"
	ctx := r.Context()

	existing, err := s.Campaigns.GetPlacement(ctx, mux.Vars(r)["id"])
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	in, req, err := s.quoteRequest(r)
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	pl := placementFrom(in, req)
	pl.ID = existing.ID
	pl.CampaignID = existing.CampaignID
	if err := s.Pricer.Price(&pl); err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	if err := s.Campaigns.UpdatePlacement(ctx, &pl); err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	writeJSON(w, http.StatusOK, pl)
	s.observe(endpoint, method, http.StatusOK, start)
}

func (s *Server) DeletePlacement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "placement"
	const method = "DELETE"
	ctx := r.Context()

	existing, err := s.Campaigns.GetPlacement(ctx, mux.Vars(r)["id"])
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	if err := s.Campaigns.DeletePlacement(ctx, existing.ID); err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	s.observe(endpoint, method, http.StatusNoContent, start)
}
