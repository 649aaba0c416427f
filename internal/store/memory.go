package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/deductfinder/backend/internal/model"
)

// MemoryStore implements Store with in-memory storage. Records keep their
// insertion order so list output (and therefore analysis and export row
// order) is deterministic.
type MemoryStore struct {
	mu  sync.RWMutex
	seq int64

	expenses  map[string]seqExpense
	mileage   map[string]seqMileage
	clients   map[string]seqClient
	recurring map[string]seqRecurring
	audit     []model.AuditEntry
}

type seqExpense struct {
	seq    int64
	record model.Expense
}

type seqMileage struct {
	seq    int64
	record model.Mileage
}

type seqClient struct {
	seq    int64
	record model.Client
}

type seqRecurring struct {
	seq    int64
	record model.RecurringExpense
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expenses:  make(map[string]seqExpense),
		mileage:   make(map[string]seqMileage),
		clients:   make(map[string]seqClient),
		recurring: make(map[string]seqRecurring),
	}
}

func (m *MemoryStore) nextSeq() int64 {
	m.seq++
	return m.seq
}

// page applies cursor-based pagination to IDs already sorted in insertion
// order. Returns the page and the next page token (empty when exhausted).
func page(ids []string, pageSize int32, pageToken string) ([]string, string, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	startIdx := 0
	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err != nil {
			return nil, "", fmt.Errorf("invalid page token: %w", err)
		}
		found := false
		for i, id := range ids {
			if id == cursorID {
				startIdx = i + 1
				found = true
				break
			}
		}
		if !found || startIdx >= len(ids) {
			return nil, "", nil
		}
	}

	ids = ids[startIdx:]
	var nextToken string
	if int32(len(ids)) > pageSize {
		nextToken = EncodePageToken(ids[pageSize-1])
		ids = ids[:pageSize]
	}
	return ids, nextToken, nil
}

// Expense operations

func (m *MemoryStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	m.expenses[expense.ID] = seqExpense{seq: m.nextSeq(), record: *expense}
	return nil
}

func (m *MemoryStore) GetExpense(ctx context.Context, expenseID string) (model.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.expenses[expenseID]
	if !ok {
		return model.Expense{}, fmt.Errorf("expense not found: %s", expenseID)
	}
	return e.record, nil
}

func (m *MemoryStore) DeleteExpense(ctx context.Context, expenseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.expenses[expenseID]; !ok {
		return fmt.Errorf("expense not found: %s", expenseID)
	}
	delete(m.expenses, expenseID)
	return nil
}

func (m *MemoryStore) ListExpenses(ctx context.Context, pageSize int32, pageToken string) ([]model.Expense, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.expenses))
	for id := range m.expenses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return m.expenses[ids[i]].seq < m.expenses[ids[j]].seq })

	ids, nextToken, err := page(ids, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}
	out := make([]model.Expense, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.expenses[id].record)
	}
	return out, nextToken, nil
}

// Mileage operations

func (m *MemoryStore) CreateMileage(ctx context.Context, entry *model.Mileage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	m.mileage[entry.ID] = seqMileage{seq: m.nextSeq(), record: *entry}
	return nil
}

func (m *MemoryStore) GetMileage(ctx context.Context, mileageID string) (model.Mileage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.mileage[mileageID]
	if !ok {
		return model.Mileage{}, fmt.Errorf("mileage entry not found: %s", mileageID)
	}
	return e.record, nil
}

func (m *MemoryStore) DeleteMileage(ctx context.Context, mileageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.mileage[mileageID]; !ok {
		return fmt.Errorf("mileage entry not found: %s", mileageID)
	}
	delete(m.mileage, mileageID)
	return nil
}

func (m *MemoryStore) ListMileage(ctx context.Context, pageSize int32, pageToken string) ([]model.Mileage, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.mileage))
	for id := range m.mileage {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return m.mileage[ids[i]].seq < m.mileage[ids[j]].seq })

	ids, nextToken, err := page(ids, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}
	out := make([]model.Mileage, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.mileage[id].record)
	}
	return out, nextToken, nil
}

// Client operations

func (m *MemoryStore) CreateClient(ctx context.Context, client *model.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	m.clients[client.ID] = seqClient{seq: m.nextSeq(), record: *client}
	return nil
}

func (m *MemoryStore) GetClient(ctx context.Context, clientID string) (model.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.clients[clientID]
	if !ok {
		return model.Client{}, fmt.Errorf("client not found: %s", clientID)
	}
	return c.record, nil
}

func (m *MemoryStore) DeleteClient(ctx context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[clientID]; !ok {
		return fmt.Errorf("client not found: %s", clientID)
	}
	delete(m.clients, clientID)
	return nil
}

func (m *MemoryStore) ListClients(ctx context.Context, pageSize int32, pageToken string) ([]model.Client, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return m.clients[ids[i]].seq < m.clients[ids[j]].seq })

	ids, nextToken, err := page(ids, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}
	out := make([]model.Client, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.clients[id].record)
	}
	return out, nextToken, nil
}

// Recurring projection operations

func (m *MemoryStore) CreateRecurringExpense(ctx context.Context, rec *model.RecurringExpense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	m.recurring[rec.ID] = seqRecurring{seq: m.nextSeq(), record: *rec}
	return nil
}

func (m *MemoryStore) ListRecurringExpenses(ctx context.Context, pageSize int32, pageToken string) ([]model.RecurringExpense, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.recurring))
	for id := range m.recurring {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return m.recurring[ids[i]].seq < m.recurring[ids[j]].seq })

	ids, nextToken, err := page(ids, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}
	out := make([]model.RecurringExpense, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.recurring[id].record)
	}
	return out, nextToken, nil
}

func (m *MemoryStore) DeleteRecurringByExpense(ctx context.Context, expenseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, rec := range m.recurring {
		if rec.record.ExpenseID == expenseID {
			delete(m.recurring, id)
		}
	}
	return nil
}

// Audit trail operations

func (m *MemoryStore) AppendAudit(ctx context.Context, entry *model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	m.audit = append(m.audit, *entry)
	return nil
}

// ListAudit returns the most recent entries first.
func (m *MemoryStore) ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.audit) {
		limit = len(m.audit)
	}
	out := make([]model.AuditEntry, 0, limit)
	for i := len(m.audit) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.audit[i])
	}
	return out, nil
}
