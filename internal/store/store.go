package store

import (
	"context"
	"encoding/base64"

	"github.com/deductfinder/backend/internal/model"
)

// Store defines the persistence operations used by the service. List
// operations return value copies in insertion order, so callers always work
// on a snapshot that later mutations cannot touch.
type Store interface {
	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) error
	GetExpense(ctx context.Context, expenseID string) (model.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
	ListExpenses(ctx context.Context, pageSize int32, pageToken string) ([]model.Expense, string, error)

	// Mileage operations
	CreateMileage(ctx context.Context, entry *model.Mileage) error
	GetMileage(ctx context.Context, mileageID string) (model.Mileage, error)
	DeleteMileage(ctx context.Context, mileageID string) error
	ListMileage(ctx context.Context, pageSize int32, pageToken string) ([]model.Mileage, string, error)

	// Client operations
	CreateClient(ctx context.Context, client *model.Client) error
	GetClient(ctx context.Context, clientID string) (model.Client, error)
	DeleteClient(ctx context.Context, clientID string) error
	ListClients(ctx context.Context, pageSize int32, pageToken string) ([]model.Client, string, error)

	// Recurring projection operations
	CreateRecurringExpense(ctx context.Context, rec *model.RecurringExpense) error
	ListRecurringExpenses(ctx context.Context, pageSize int32, pageToken string) ([]model.RecurringExpense, string, error)
	DeleteRecurringByExpense(ctx context.Context, expenseID string) error

	// Audit trail operations
	AppendAudit(ctx context.Context, entry *model.AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

// EncodePageToken encodes a record ID into a page token.
func EncodePageToken(id string) string {
	if id == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(id))
}

// DecodePageToken decodes a page token back to a record ID.
func DecodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
