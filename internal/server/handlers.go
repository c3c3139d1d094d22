package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/chitlens/internal/interfaces"
	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/bobmcallan/chitlens/internal/services/analytics"
	"github.com/shopspring/decimal"
)

type xirrEventRequest struct {
	Amount decimal.Decimal `json:"amount"`
	When   string          `json:"when"`
}

type xirrRequest struct {
	Events []xirrEventRequest `json:"events"`
}

type xirrResponse struct {
	Available bool     `json:"available"`
	Rate      *float64 `json:"rate"`
	RatePct   *float64 `json:"rate_pct"`
	Reason    string   `json:"reason,omitempty"`
}

type compareRequest struct {
	FundRatePct      *float64 `json:"fund_rate_pct"`
	ReferenceRatePct *float64 `json:"reference_rate_pct"`
}

type reportRequest struct {
	Fund             models.FundConfig      `json:"fund"`
	Records          []models.MonthlyRecord `json:"records"`
	ReferenceRatePct *float64               `json:"reference_rate_pct"`
}

// parseEventDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func parseEventDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// handleXIRR handles POST /api/xirr. Unusable input yields available=false, not an error.
func (s *Server) handleXIRR(w http.ResponseWriter, r *http.Request) {
	var req xirrRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	events := make([]models.CashFlowEvent, 0, len(req.Events))
	for _, e := range req.Events {
		when, ok := parseEventDate(e.When)
		if !ok {
			WriteJSON(w, http.StatusOK, xirrResponse{Reason: "unparseable date: " + e.When})
			return
		}
		events = append(events, models.CashFlowEvent{Amount: e.Amount, When: when})
	}

	rate, pct := s.app.Analytics.XIRR(r.Context(), events)
	resp := xirrResponse{Available: rate != nil, Rate: rate, RatePct: pct}
	if rate == nil {
		resp.Reason = "no solvable rate for these cash flows"
	}
	WriteJSON(w, http.StatusOK, resp)
}

// handleCompare handles POST /api/compare. A missing reference uses the configured default.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	ref := s.app.Config.Analytics.ReferenceRatePct
	if req.ReferenceRatePct != nil {
		ref = *req.ReferenceRatePct
	}

	result, err := s.app.Analytics.Compare(req.FundRatePct, ref)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// handleReport handles POST /api/report for an unsaved fund.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	report, err := s.app.Analytics.Analyze(r.Context(), req.Fund, req.Records, req.ReferenceRatePct)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// parseReferenceRate reads the optional reference_rate query parameter.
func parseReferenceRate(r *http.Request) (*float64, error) {
	raw := r.URL.Query().Get("reference_rate")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, analytics.ErrInvalidReferenceRate
	}
	return &v, nil
}

// writeServiceError maps service and store errors onto HTTP responses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interfaces.ErrFundNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), CodeFundNotFound)
	case errors.Is(err, analytics.ErrInvalidFundConfiguration):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeInvalidFundConfiguration)
	case errors.Is(err, analytics.ErrInvalidReferenceRate):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeInvalidReferenceRate)
	default:
		s.logger.Error().Err(err).Msg("Request failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
