package service

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/deductfinder/backend/internal/model"
	"github.com/deductfinder/backend/internal/scan"
	"github.com/deductfinder/backend/internal/tax"
)

// maxReceiptBytes caps receipt uploads at 10 MiB.
const maxReceiptBytes = 10 << 20

// RegisterRoutes mounts the JSON API onto mux.
func (s *DeductionService) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/expenses", s.handleAddExpense)
	mux.HandleFunc("GET /v1/expenses", s.handleListExpenses)
	mux.HandleFunc("DELETE /v1/expenses/{id}", s.handleRemoveExpense)

	mux.HandleFunc("POST /v1/mileage", s.handleAddMileage)
	mux.HandleFunc("GET /v1/mileage", s.handleListMileage)
	mux.HandleFunc("DELETE /v1/mileage/{id}", s.handleRemoveMileage)

	mux.HandleFunc("POST /v1/clients", s.handleAddClient)
	mux.HandleFunc("GET /v1/clients", s.handleListClients)
	mux.HandleFunc("DELETE /v1/clients/{id}", s.handleRemoveClient)

	mux.HandleFunc("GET /v1/recurring", s.handleListRecurring)

	mux.HandleFunc("POST /v1/analysis", s.handleAnalyze)
	mux.HandleFunc("GET /v1/analysis", s.handleCurrentAnalysis)
	mux.HandleFunc("POST /v1/estimate", s.handleEstimate)
	mux.HandleFunc("GET /v1/export/csv", s.handleExportCSV)
	mux.HandleFunc("POST /v1/receipts/scan", s.handleScanReceipt)

	mux.HandleFunc("GET /v1/audit", s.handleListAudit)

	mux.HandleFunc("GET /v1/jurisdiction", s.handleGetJurisdiction)
	mux.HandleFunc("PUT /v1/jurisdiction", s.handleSetJurisdiction)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] encode response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := tax.CodeOf(err)
	switch {
	case code != "":
		status = http.StatusBadRequest
	case strings.Contains(err.Error(), "not found"):
		status = http.StatusNotFound
	case strings.Contains(err.Error(), "scan receipt"):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: string(code)})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func pageParams(r *http.Request) (int32, string) {
	pageSize := int32(0)
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			pageSize = int32(n)
		}
	}
	return pageSize, r.URL.Query().Get("pageToken")
}

func (s *DeductionService) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var in ExpenseInput
	if err := decodeBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	expense, err := s.AddExpense(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (s *DeductionService) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	pageSize, pageToken := pageParams(r)
	expenses, nextToken, err := s.store.ListExpenses(r.Context(), pageSize, pageToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses, "nextPageToken": nextToken})
}

func (s *DeductionService) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.RemoveExpense(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *DeductionService) handleAddMileage(w http.ResponseWriter, r *http.Request) {
	var in MileageInput
	if err := decodeBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	entry, err := s.AddMileage(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *DeductionService) handleListMileage(w http.ResponseWriter, r *http.Request) {
	pageSize, pageToken := pageParams(r)
	entries, nextToken, err := s.store.ListMileage(r.Context(), pageSize, pageToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mileage": entries, "nextPageToken": nextToken})
}

func (s *DeductionService) handleRemoveMileage(w http.ResponseWriter, r *http.Request) {
	if err := s.RemoveMileage(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *DeductionService) handleAddClient(w http.ResponseWriter, r *http.Request) {
	var in ClientInput
	if err := decodeBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	client, err := s.AddClient(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (s *DeductionService) handleListClients(w http.ResponseWriter, r *http.Request) {
	pageSize, pageToken := pageParams(r)
	clients, nextToken, err := s.store.ListClients(r.Context(), pageSize, pageToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": clients, "nextPageToken": nextToken})
}

func (s *DeductionService) handleRemoveClient(w http.ResponseWriter, r *http.Request) {
	if err := s.RemoveClient(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *DeductionService) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	recurring, err := s.ListRecurring(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recurring": recurring})
}

func (s *DeductionService) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.Analyze(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// handleCurrentAnalysis serves the cached analysis. 404 means the analysis
// is stale or absent and must be recomputed via POST /v1/analysis.
func (s *DeductionService) handleCurrentAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, ok := s.CurrentAnalysis()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no current analysis; run POST /v1/analysis"})
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *DeductionService) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var in EstimateTaxInput
	if err := decodeBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	estimate, err := s.EstimateTax(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}

func (s *DeductionService) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.ExportCSV(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("[HTTP] write csv: %v", err)
	}
}

func (s *DeductionService) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("parse upload: %v", err)})
		return
	}
	file, header, err := r.FormFile("receipt")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "receipt file is required"})
		return
	}
	file.Close()

	draft, err := s.ImportScannedReceipt(r.Context(), scan.File{
		Name:        header.Filename,
		SizeBytes:   header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *DeductionService) handleListAudit(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	entries, err := s.ListAudit(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"audit": entries})
}

func (s *DeductionService) handleGetJurisdiction(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]model.Jurisdiction{"jurisdiction": s.Jurisdiction()})
}

func (s *DeductionService) handleSetJurisdiction(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Jurisdiction model.Jurisdiction `json:"jurisdiction"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.SetJurisdiction(r.Context(), in.Jurisdiction); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]model.Jurisdiction{"jurisdiction": s.Jurisdiction()})
}
