package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/chitlens/internal/app"
	"github.com/bobmcallan/chitlens/internal/impexp"
	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/bobmcallan/chitlens/internal/services/analytics"
	"github.com/gorilla/mux"
)

// validateFund normalises a fund from a request body and checks it.
func validateFund(fund *models.FundConfig) error {
	fund.Name = strings.TrimSpace(fund.Name)
	if fund.Name == "" {
		return fmt.Errorf("%w: name is required", analytics.ErrInvalidFundConfiguration)
	}
	if fund.InstallmentAmount.IsNegative() || fund.ChitValue.IsNegative() || fund.ExitPayout.IsNegative() {
		return fmt.Errorf("%w: amounts must not be negative", analytics.ErrInvalidFundConfiguration)
	}
	fund.ResolveEndMonth()
	return analytics.ValidateFundConfig(*fund)
}

func validateRecord(rec models.MonthlyRecord) error {
	if rec.Dividend.IsNegative() || rec.PrizeMoney.IsNegative() {
		return errors.New("dividend and prize_money must not be negative")
	}
	return nil
}

func (s *Server) handleFundList(w http.ResponseWriter, r *http.Request) {
	funds, err := s.app.Store.ListFunds(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"funds": funds})
}

func (s *Server) handleFundCreate(w http.ResponseWriter, r *http.Request) {
	var fund models.FundConfig
	if !DecodeJSON(w, r, &fund) {
		return
	}
	fund.ID = ""
	if err := validateFund(&fund); err != nil {
		s.writeServiceError(w, err)
		return
	}
	if err := s.app.Store.SaveFund(r.Context(), &fund); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logger.Info().Str("fund_id", fund.ID).Str("name", fund.Name).Msg("Fund created")
	WriteJSON(w, http.StatusCreated, fund)
}

func (s *Server) handleFundGet(w http.ResponseWriter, r *http.Request) {
	fund, err := s.app.Store.GetFund(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, fund)
}

func (s *Server) handleFundUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	existing, err := s.app.Store.GetFund(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var fund models.FundConfig
	if !DecodeJSON(w, r, &fund) {
		return
	}
	fund.ID = id
	fund.CreatedAt = existing.CreatedAt
	if err := validateFund(&fund); err != nil {
		s.writeServiceError(w, err)
		return
	}
	if err := s.app.Store.SaveFund(r.Context(), &fund); err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, fund)
}

func (s *Server) handleFundDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.app.Store.DeleteFund(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logger.Info().Str("fund_id", id).Msg("Fund deleted")
	w.WriteHeader(http.StatusNoContent)
}

// handleFundReport handles GET /api/funds/{id}/report?reference_rate=.
func (s *Server) handleFundReport(w http.ResponseWriter, r *http.Request) {
	ref, err := parseReferenceRate(r)
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "reference_rate must be a number", CodeInvalidReferenceRate)
		return
	}
	report, err := s.app.Analytics.ReportForFund(r.Context(), mux.Vars(r)["id"], ref)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handleFundExport(w http.ResponseWriter, r *http.Request) {
	doc, err := app.ExportDocument(r.Context(), s.app.Store, mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

// handleImportDocument handles POST /api/import with a {fund, records} document.
func (s *Server) handleImportDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	doc, err := impexp.DecodeDocument(r.Body)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc.Fund.ID = ""
	if err := validateFund(&doc.Fund); err != nil {
		s.writeServiceError(w, err)
		return
	}
	for _, rec := range doc.Records {
		if err := validateRecord(rec); err != nil {
			WriteErrorWithCode(w, http.StatusBadRequest, fmt.Sprintf("record %s: %v", rec.Month, err), CodeInvalidRecord)
			return
		}
	}

	fund, imported, skipped, err := app.ImportDocument(r.Context(), s.app.Store, s.logger, doc)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"fund":     fund,
		"imported": imported,
		"skipped":  skipped,
	})
}

func (s *Server) handleRecordList(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.app.Store.GetFund(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	records, err := s.app.Store.ListRecords(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

// handleRecordPut handles PUT /api/funds/{id}/records/{month}. The path month wins over the body.
func (s *Server) handleRecordPut(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	month, err := models.ParseMonthKey(vars["month"])
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeInvalidRecord)
		return
	}

	var rec models.MonthlyRecord
	if !DecodeJSON(w, r, &rec) {
		return
	}
	rec.Month = month
	if err := validateRecord(rec); err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeInvalidRecord)
		return
	}

	if err := s.app.Store.PutRecord(r.Context(), vars["id"], rec); err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRecordDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	month, err := models.ParseMonthKey(vars["month"])
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeInvalidRecord)
		return
	}
	if err := s.app.Store.DeleteRecord(r.Context(), vars["id"], month); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRecordImport handles POST /api/funds/{id}/records/import with a CSV sheet body.
func (s *Server) handleRecordImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	imported, skipped, err := app.ImportRecordsCSV(r.Context(), s.app.Store, s.logger, mux.Vars(r)["id"], r.Body)
	if err != nil {
		if errors.Is(err, impexp.ErrInvalidSheet) {
			WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeInvalidRecord)
			return
		}
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"imported": imported, "skipped": skipped})
}
