package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deductfinder/backend/internal/model"
	"github.com/deductfinder/backend/internal/scan"
	"github.com/deductfinder/backend/internal/store"
	"github.com/deductfinder/backend/internal/tax"
)

const listPageSize = 500

// DeductionService owns the record collections and the cached analysis. The
// engine itself is pure; this layer does validation, persistence, audit
// logging and cache invalidation. Any mutation of the expense, mileage or
// client collections discards the cached analysis so a stale one is never
// served.
type DeductionService struct {
	store   store.Store
	scanner scan.Scanner

	mu           sync.Mutex
	jurisdiction model.Jurisdiction
	analyzer     *tax.Analyzer
	analysis     *model.Analysis

	now func() time.Time
}

// NewDeductionService creates the service for a jurisdiction.
func NewDeductionService(st store.Store, scanner scan.Scanner, j model.Jurisdiction) (*DeductionService, error) {
	analyzer, err := tax.NewAnalyzer(j)
	if err != nil {
		return nil, err
	}
	return &DeductionService{
		store:        st,
		scanner:      scanner,
		jurisdiction: j,
		analyzer:     analyzer,
		now:          time.Now,
	}, nil
}

// Jurisdiction returns the active jurisdiction.
func (s *DeductionService) Jurisdiction() model.Jurisdiction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jurisdiction
}

// SetJurisdiction switches the active rule set. Stored records keep their
// currency and category; only future defaults and future analyses change.
func (s *DeductionService) SetJurisdiction(ctx context.Context, j model.Jurisdiction) error {
	analyzer, err := tax.NewAnalyzer(j)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.jurisdiction = j
	s.analyzer = analyzer
	s.analysis = nil
	s.mu.Unlock()

	s.audit(ctx, "Jurisdiction Changed", string(j))
	return nil
}

func (s *DeductionService) invalidateAnalysis() {
	s.mu.Lock()
	s.analysis = nil
	s.mu.Unlock()
}

func (s *DeductionService) currentAnalyzer() *tax.Analyzer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzer
}

// ExpenseInput is the payload for AddExpense. Scan drafts convert to the
// same input and pass through the same validation.
type ExpenseInput struct {
	Description string         `json:"description"`
	Amount      float64        `json:"amount"`
	Currency    model.Currency `json:"currency"`
	Category    model.Category `json:"category"`
	Client      string         `json:"client,omitempty"`
	Receipt     *model.Receipt `json:"receipt,omitempty"`
	IsRecurring bool           `json:"isRecurring,omitempty"`
	Frequency   model.Frequency `json:"frequency,omitempty"`
}

func (s *DeductionService) validateExpense(in ExpenseInput) error {
	if strings.TrimSpace(in.Description) == "" {
		return &tax.Error{Code: tax.ErrMissingRequiredField, Message: "description is required"}
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0 {
		return &tax.Error{Code: tax.ErrInvalidAmount, Message: fmt.Sprintf("amount must be positive, got %v", in.Amount)}
	}
	if !tax.NewConverter().Supports(in.Currency) {
		return &tax.Error{Code: tax.ErrUnsupportedCurrency, Message: fmt.Sprintf("unsupported currency %q", in.Currency)}
	}
	if _, err := s.currentAnalyzer().Rules().Lookup(in.Category); err != nil {
		return err
	}
	return nil
}

// AddExpense validates and stores an expense. Records marked recurring also
// get a projection snapshot with the next due date; the snapshot is not
// kept in sync with later edits.
func (s *DeductionService) AddExpense(ctx context.Context, in ExpenseInput) (*model.Expense, error) {
	if err := s.validateExpense(in); err != nil {
		return nil, err
	}

	now := s.now()
	expense := &model.Expense{
		ID:          uuid.New().String(),
		Description: in.Description,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Category:    in.Category,
		Client:      in.Client,
		Receipt:     in.Receipt,
		IsRecurring: in.IsRecurring,
		Frequency:   in.Frequency,
		CreatedAt:   now,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	if in.IsRecurring {
		rec := &model.RecurringExpense{
			ID:          uuid.New().String(),
			ExpenseID:   expense.ID,
			Description: expense.Description,
			Amount:      expense.Amount,
			Currency:    expense.Currency,
			Category:    expense.Category,
			Frequency:   expense.Frequency,
			NextDue:     tax.NextDue(now, expense.Frequency),
			CreatedAt:   now,
		}
		if err := s.store.CreateRecurringExpense(ctx, rec); err != nil {
			return nil, fmt.Errorf("create recurring projection: %w", err)
		}
	}

	s.invalidateAnalysis()
	s.audit(ctx, "Expense Added", fmt.Sprintf("%s - %.2f %s", expense.Description, expense.Amount, expense.Currency))
	return expense, nil
}

// RemoveExpense deletes an expense and its recurring projections.
func (s *DeductionService) RemoveExpense(ctx context.Context, expenseID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return err
	}
	if err := s.store.DeleteRecurringByExpense(ctx, expenseID); err != nil {
		return err
	}
	s.invalidateAnalysis()
	s.audit(ctx, "Expense Deleted", expense.Description)
	return nil
}

// MileageInput is the payload for AddMileage.
type MileageInput struct {
	Date          time.Time          `json:"date"`
	Distance      float64            `json:"distance"`
	Unit          model.DistanceUnit `json:"unit,omitempty"`
	Purpose       string             `json:"purpose"`
	Client        string             `json:"client,omitempty"`
	StartLocation string             `json:"startLocation,omitempty"`
	EndLocation   string             `json:"endLocation,omitempty"`
}

// AddMileage validates and stores a mileage entry. An empty unit defaults
// to the jurisdiction's native unit.
func (s *DeductionService) AddMileage(ctx context.Context, in MileageInput) (*model.Mileage, error) {
	if strings.TrimSpace(in.Purpose) == "" {
		return nil, &tax.Error{Code: tax.ErrMissingRequiredField, Message: "purpose is required"}
	}
	if math.IsNaN(in.Distance) || math.IsInf(in.Distance, 0) || in.Distance <= 0 {
		return nil, &tax.Error{Code: tax.ErrInvalidAmount, Message: fmt.Sprintf("distance must be positive, got %v", in.Distance)}
	}
	unit := in.Unit
	if unit == "" {
		unit = s.currentAnalyzer().Profile().MileageUnit
	}
	if unit != model.UnitMiles && unit != model.UnitKilometers {
		return nil, &tax.Error{Code: tax.ErrInvalidAmount, Message: fmt.Sprintf("unknown distance unit %q", unit)}
	}

	now := s.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	entry := &model.Mileage{
		ID:            uuid.New().String(),
		Date:          date,
		Distance:      in.Distance,
		Unit:          unit,
		Purpose:       in.Purpose,
		Client:        in.Client,
		StartLocation: in.StartLocation,
		EndLocation:   in.EndLocation,
		CreatedAt:     now,
	}
	if err := s.store.CreateMileage(ctx, entry); err != nil {
		return nil, fmt.Errorf("create mileage: %w", err)
	}

	s.invalidateAnalysis()
	s.audit(ctx, "Mileage Added", fmt.Sprintf("%v %s", entry.Distance, entry.Unit))
	return entry, nil
}

// RemoveMileage deletes a mileage entry.
func (s *DeductionService) RemoveMileage(ctx context.Context, mileageID string) error {
	entry, err := s.store.GetMileage(ctx, mileageID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteMileage(ctx, mileageID); err != nil {
		return err
	}
	s.invalidateAnalysis()
	s.audit(ctx, "Mileage Deleted", entry.Purpose)
	return nil
}

// ClientInput is the payload for AddClient.
type ClientInput struct {
	Name         string `json:"name"`
	BusinessType string `json:"businessType,omitempty"`
	Email        string `json:"email,omitempty"`
	TaxID        string `json:"taxId,omitempty"`
}

// AddClient validates and stores a client.
func (s *DeductionService) AddClient(ctx context.Context, in ClientInput) (*model.Client, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, &tax.Error{Code: tax.ErrMissingRequiredField, Message: "client name is required"}
	}
	client := &model.Client{
		ID:           uuid.New().String(),
		Name:         in.Name,
		BusinessType: in.BusinessType,
		Email:        in.Email,
		TaxID:        in.TaxID,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	s.invalidateAnalysis()
	s.audit(ctx, "Client Added", client.Name)
	return client, nil
}

// RemoveClient deletes a client. Expenses referencing it by name are kept;
// the reference is weak.
func (s *DeductionService) RemoveClient(ctx context.Context, clientID string) error {
	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteClient(ctx, clientID); err != nil {
		return err
	}
	s.invalidateAnalysis()
	s.audit(ctx, "Client Deleted", client.Name)
	return nil
}

// snapshot pages through the store and returns full copies of the three
// record collections.
func (s *DeductionService) snapshot(ctx context.Context) ([]model.Expense, []model.Mileage, []model.Client, error) {
	var expenses []model.Expense
	pageToken := ""
	for {
		batch, nextToken, err := s.store.ListExpenses(ctx, listPageSize, pageToken)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("list expenses: %w", err)
		}
		expenses = append(expenses, batch...)
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	var mileage []model.Mileage
	pageToken = ""
	for {
		batch, nextToken, err := s.store.ListMileage(ctx, listPageSize, pageToken)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("list mileage: %w", err)
		}
		mileage = append(mileage, batch...)
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	var clients []model.Client
	pageToken = ""
	for {
		batch, nextToken, err := s.store.ListClients(ctx, listPageSize, pageToken)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("list clients: %w", err)
		}
		clients = append(clients, batch...)
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	return expenses, mileage, clients, nil
}

// Analyze recomputes the deduction analysis from the current collections
// and caches it until the next mutation.
func (s *DeductionService) Analyze(ctx context.Context) (*model.Analysis, error) {
	expenses, mileage, clients, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	analysis, err := s.currentAnalyzer().Analyze(expenses, mileage, clients)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.analysis = analysis
	s.mu.Unlock()

	s.audit(ctx, "Analysis Generated", fmt.Sprintf("total deductible %.2f %s", analysis.TotalDeductible, analysis.ReportingCurrency))
	return analysis, nil
}

// CurrentAnalysis returns the cached analysis, or false when it is stale
// or has never been computed.
func (s *DeductionService) CurrentAnalysis() (*model.Analysis, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis, s.analysis != nil
}

// EstimateTaxInput is the payload for EstimateTax. Business deductions come
// from the deduction analysis, not the caller.
type EstimateTaxInput struct {
	Income               float64            `json:"income"`
	SelfEmploymentIncome float64            `json:"selfEmploymentIncome"`
	OtherDeductions      float64            `json:"otherDeductions"`
	FilingStatus         model.FilingStatus `json:"filingStatus"`
}

// EstimateTax computes the tax estimate using the current analysis's total
// deductible as the business-deduction input. A stale analysis is
// recomputed first so the estimate never reflects outdated records.
func (s *DeductionService) EstimateTax(ctx context.Context, in EstimateTaxInput) (*model.TaxEstimate, error) {
	analysis, ok := s.CurrentAnalysis()
	if !ok {
		var err error
		analysis, err = s.Analyze(ctx)
		if err != nil {
			return nil, err
		}
	}

	estimate, err := tax.Estimate(tax.EstimateInput{
		Income:               in.Income,
		SelfEmploymentIncome: in.SelfEmploymentIncome,
		OtherDeductions:      in.OtherDeductions,
		BusinessDeductions:   analysis.TotalDeductible,
		FilingStatus:         in.FilingStatus,
		Jurisdiction:         s.Jurisdiction(),
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, "Tax Estimated", fmt.Sprintf("liability %.2f", estimate.TotalLiability))
	return estimate, nil
}

// ExportCSV serializes the current collections as a CSV report and returns
// the payload plus the conventional filename.
func (s *DeductionService) ExportCSV(ctx context.Context) ([]byte, string, error) {
	expenses, mileage, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := s.currentAnalyzer().WriteCSV(&buf, expenses, mileage); err != nil {
		return nil, "", err
	}
	filename := tax.ExportFilename(s.Jurisdiction(), s.now())

	s.audit(ctx, "CSV Exported", filename)
	return buf.Bytes(), filename, nil
}

// ImportScannedReceipt runs the external scan and validates the resulting
// draft with the same strictness as user input: an unsupported currency or
// unknown category is an explicit error, never a silent default. On any
// failure nothing is stored and no draft is returned.
func (s *DeductionService) ImportScannedReceipt(ctx context.Context, file scan.File) (*ExpenseInput, error) {
	if s.scanner == nil {
		return nil, fmt.Errorf("receipt scanning is not configured")
	}
	draft, err := s.scanner.Scan(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("scan receipt: %w", err)
	}

	in := ExpenseInput{
		Description: draft.Description,
		Amount:      draft.Amount,
		Currency:    draft.Currency,
		Category:    draft.Category,
		Receipt: &model.Receipt{
			Filename:   file.Name,
			SizeBytes:  file.SizeBytes,
			UploadedAt: s.now(),
		},
	}
	if err := s.validateExpense(in); err != nil {
		return nil, err
	}

	s.audit(ctx, "Receipt Scanned", file.Name)
	return &in, nil
}

// ListRecurring returns all recurring-expense projections.
func (s *DeductionService) ListRecurring(ctx context.Context) ([]model.RecurringExpense, error) {
	var out []model.RecurringExpense
	pageToken := ""
	for {
		batch, nextToken, err := s.store.ListRecurringExpenses(ctx, listPageSize, pageToken)
		if err != nil {
			return nil, fmt.Errorf("list recurring expenses: %w", err)
		}
		out = append(out, batch...)
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}
	return out, nil
}

// ListAudit returns the most recent audit entries.
func (s *DeductionService) ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	return s.store.ListAudit(ctx, limit)
}

// audit records an action; failures are logged, not fatal.
func (s *DeductionService) audit(ctx context.Context, action, details string) {
	entry := &model.AuditEntry{
		ID:        uuid.New().String(),
		Timestamp: s.now(),
		Action:    action,
		Details:   details,
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		log.Printf("[Audit] failed to record %q: %v", action, err)
	}
}
