package store

import (
	"context"
	"errors"

	"dukaankhata/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid record")
)

// Repository is the ledger store contract shared by the in-memory and
// postgres implementations. Item-name lookups are case-insensitive on the
// trimmed name; dates are ISO YYYY-MM-DD strings, which sort in calendar
// order under plain string comparison.
type Repository interface {
	ListPrices(ctx context.Context) ([]domain.PriceEntry, error)
	GetPrice(ctx context.Context, itemName string) (*domain.PriceEntry, error)
	UpsertPrice(ctx context.Context, entry domain.PriceEntry) (*domain.PriceEntry, error)
	UpdatePrice(ctx context.Context, itemName string, update domain.PriceUpdateRequest) (*domain.PriceEntry, error)
	DeletePrice(ctx context.Context, itemName string) error

	GetSalesByDate(ctx context.Context, date string) (*domain.SalesRecord, error)
	UpsertSales(ctx context.Context, record domain.SalesRecord) (*domain.SalesRecord, error)

	GetExpensesByDate(ctx context.Context, date string) (*domain.ExpenseRecord, error)
	UpsertExpenses(ctx context.Context, record domain.ExpenseRecord) (*domain.ExpenseRecord, error)

	GetRestocksByDate(ctx context.Context, date string) ([]domain.RestockRecord, error)
	AppendRestock(ctx context.Context, record domain.RestockRecord) (*domain.RestockRecord, error)
	AppendRestocks(ctx context.Context, records []domain.RestockRecord) ([]domain.RestockRecord, error)

	SalesInRange(ctx context.Context, startDate string, endDate string) ([]domain.SalesRecord, error)
	ExpensesInRange(ctx context.Context, startDate string, endDate string) ([]domain.ExpenseRecord, error)
	RestocksInRange(ctx context.Context, startDate string, endDate string) ([]domain.RestockRecord, error)
}
