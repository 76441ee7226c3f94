package api

import (
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/pricing"
)

// RateCardHandler handles GET /ratecard and returns the active rate card.
func (s *Server) RateCardHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "ratecard"
	const method = "GET"

	writeJSON(w, http.StatusOK, s.RateCards.Snapshot())
	s.observe(endpoint, method, http.StatusOK, start)
}

type sizeOption struct {
	Key         string  `json:"key"`
	Size        string  `json:"size"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

// optionsResponse lists the choices at the next level of a selection.
type optionsResponse struct {
	Level   string       `json:"level"` // publication, ad_type, position or size
	Options []string     `json:"options,omitempty"`
	Sizes   []sizeOption `json:"sizes,omitempty"`
}

// RateCardOptionsHandler handles GET /ratecard/options. Each query
// parameter given (publication, ad_type, position) narrows the selection by
// one level and the response lists the choices at the next level.
func (s *Server) RateCardOptionsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "ratecard_options"
	const method = "GET"

	q := r.URL.Query()
	pub, adType, position := q.Get("publication"), q.Get("ad_type"), q.Get("position")

	var resp optionsResponse
	switch {
	case pub == "":
		resp = optionsResponse{Level: "publication", Options: s.RateCards.Publications()}
	case adType == "":
		resp = optionsResponse{Level: "ad_type", Options: s.RateCards.AdTypes(pub)}
	case position == "":
		resp = optionsResponse{Level: "position", Options: s.RateCards.Positions(pub, adType)}
	default:
		resp = optionsResponse{Level: "size"}
		for _, sz := range s.RateCards.Sizes(pub, adType, position) {
			resp.Sizes = append(resp.Sizes, sizeOption{Key: sz.Key(), Size: sz.Size, Description: sz.Description, Price: sz.Price})
		}
	}
	if resp.Options == nil && resp.Sizes == nil {
		s.observe(endpoint, method, s.writeError(w, r, models.ErrNotFound), start)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	s.observe(endpoint, method, http.StatusOK, start)
}

type priceResponse struct {
	UnitPrice float64 `json:"unit_price"`
	Version   string  `json:"rate_card_version"`
}

// PriceHandler handles GET /ratecard/price. The price is 0 while the
// selection is incomplete or unknown.
func (s *Server) PriceHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "ratecard_price"
	const method = "GET"

	q := r.URL.Query()
	writeJSON(w, http.StatusOK, priceResponse{
		UnitPrice: s.Pricer.LookupPrice(q.Get("publication"), q.Get("ad_type"), q.Get("position"), q.Get("size")),
		Version:   s.RateCards.Version(),
	})
	s.observe(endpoint, method, http.StatusOK, start)
}

// placementInput is the wire form of a placement selection. Dates are
// calendar days (YYYY-MM-DD) or RFC 3339 timestamps.
type placementInput struct {
	Publication string   `json:"publication"`
	AdType      string   `json:"ad_type"`
	Position    string   `json:"position"`
	Size        string   `json:"size"`
	Dates       []string `json:"dates"`
	Quantity    int      `json:"quantity"`
	Discount    float64  `json:"discount"`
	Notes       string   `json:"notes,omitempty"`
}

func parseDay(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if d, err := time.Parse(time.DateOnly, v); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, badRequest("invalid date %q", v)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func (in placementInput) request() (pricing.Request, error) {
	req := pricing.Request{
		Publication: in.Publication,
		AdType:      in.AdType,
		Position:    in.Position,
		Size:        in.Size,
		Quantity:    in.Quantity,
		Discount:    in.Discount,
		Dates:       make([]time.Time, 0, len(in.Dates)),
	}
	for _, v := range in.Dates {
		d, err := parseDay(v)
		if err != nil {
			return req, err
		}
		req.Dates = append(req.Dates, d)
	}
	return req, nil
}

// quoteRequest validates and parses the body of a placement request.
func (s *Server) quoteRequest(r *http.Request) (placementInput, pricing.Request, error) {
	var in placementInput
	if err := decodeJSON(r, &in); err != nil {
		return in, pricing.Request{}, err
	}
	req, err := in.request()
	if err != nil {
		return in, req, err
	}
	if err := s.Validator.Validate(req); err != nil {
		return in, req, err
	}
	return in, req, nil
}

// QuoteHandler handles POST /placements/quote and prices a selection
// without booking it.
func (s *Server) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "QuoteHandler",
		trace.WithAttributes(
			attribute.String("http.method", "POST"),
			attribute.String("http.route", "/placements/quote"),
		))
	defer span.End()

	start := time.Now()
	const endpoint = "placements_quote"
	const method = "POST"

	_, req, err := s.quoteRequest(r)
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	span.SetAttributes(attribute.String("publication", req.Publication))

	quote, err := s.Pricer.Quote(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quote failed")
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	s.Metrics.IncrementPlacementsQuoted(req.Publication)
	writeJSON(w, http.StatusOK, quote)
	s.observe(endpoint, method, http.StatusOK, start)
}
