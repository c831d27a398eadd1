package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"dukaankhata/internal/cache"
	"dukaankhata/internal/domain"
	"dukaankhata/internal/report"
	"dukaankhata/internal/store"
)

// ErrBadDateRange marks a missing or malformed date parameter on a report
// request.
var ErrBadDateRange = errors.New("invalid date range")

// Service validates and normalizes incoming records before they reach the
// store, and assembles reports on the way out. Item names are trimmed here
// so the catalog's case-insensitive keying always sees clean input.
type Service struct {
	repo      store.Repository
	reports   cache.ReportCache
	reportTTL time.Duration
}

func New(repo store.Repository, reports cache.ReportCache, reportTTL time.Duration) *Service {
	if reports == nil {
		reports = cache.NoopReportCache{}
	}
	if reportTTL <= 0 {
		reportTTL = 30 * time.Second
	}

	return &Service{
		repo:      repo,
		reports:   reports,
		reportTTL: reportTTL,
	}
}

func (s *Service) ListPrices(ctx context.Context) ([]domain.PriceEntry, error) {
	return s.repo.ListPrices(ctx)
}

func (s *Service) GetPrice(ctx context.Context, itemName string) (*domain.PriceEntry, error) {
	itemName = strings.TrimSpace(itemName)
	if itemName == "" {
		return nil, fmt.Errorf("%w: itemName is required", store.ErrInvalidRecord)
	}
	return s.repo.GetPrice(ctx, itemName)
}

// SavePrice upserts: submitting an existing item name replaces its prices.
// This mirrors the last-write-wins behavior of the sales and expenses
// tables rather than rejecting duplicates with a conflict.
func (s *Service) SavePrice(ctx context.Context, entry domain.PriceEntry) (*domain.PriceEntry, error) {
	entry.ItemName = strings.TrimSpace(entry.ItemName)
	if entry.ItemName == "" {
		return nil, fmt.Errorf("%w: itemName is required", store.ErrInvalidRecord)
	}
	if entry.WholesalePrice < 0 || entry.RetailPrice < 0 {
		return nil, fmt.Errorf("%w: prices must be >= 0", store.ErrInvalidRecord)
	}
	return s.repo.UpsertPrice(ctx, entry)
}

func (s *Service) UpdatePrice(ctx context.Context, itemName string, update domain.PriceUpdateRequest) (*domain.PriceEntry, error) {
	itemName = strings.TrimSpace(itemName)
	if itemName == "" {
		return nil, fmt.Errorf("%w: itemName is required", store.ErrInvalidRecord)
	}
	if update.WholesalePrice == nil && update.RetailPrice == nil {
		return nil, fmt.Errorf("%w: no fields to update", store.ErrInvalidRecord)
	}
	if (update.WholesalePrice != nil && *update.WholesalePrice < 0) ||
		(update.RetailPrice != nil && *update.RetailPrice < 0) {
		return nil, fmt.Errorf("%w: prices must be >= 0", store.ErrInvalidRecord)
	}
	return s.repo.UpdatePrice(ctx, itemName, update)
}

func (s *Service) DeletePrice(ctx context.Context, itemName string) error {
	itemName = strings.TrimSpace(itemName)
	if itemName == "" {
		return fmt.Errorf("%w: itemName is required", store.ErrInvalidRecord)
	}
	return s.repo.DeletePrice(ctx, itemName)
}

// GetSalesByDate returns nil without error when no record exists for the
// date; absence is an ordinary answer for reads.
func (s *Service) GetSalesByDate(ctx context.Context, date string) (*domain.SalesRecord, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	record, err := s.repo.GetSalesByDate(ctx, date)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return record, err
}

func (s *Service) SaveSales(ctx context.Context, record domain.SalesRecord) (*domain.SalesRecord, error) {
	if err := validateDate(record.Date); err != nil {
		return nil, err
	}
	if record.CashSales < 0 || record.OnlineSales < 0 {
		return nil, fmt.Errorf("%w: sales amounts must be >= 0", store.ErrInvalidRecord)
	}
	return s.repo.UpsertSales(ctx, record)
}

func (s *Service) GetExpensesByDate(ctx context.Context, date string) (*domain.ExpenseRecord, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	record, err := s.repo.GetExpensesByDate(ctx, date)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return record, err
}

func (s *Service) SaveExpenses(ctx context.Context, record domain.ExpenseRecord) (*domain.ExpenseRecord, error) {
	if err := validateDate(record.Date); err != nil {
		return nil, err
	}
	if record.Rent < 0 || record.Electricity < 0 || record.Miscellaneous < 0 {
		return nil, fmt.Errorf("%w: expense amounts must be >= 0", store.ErrInvalidRecord)
	}
	return s.repo.UpsertExpenses(ctx, record)
}

func (s *Service) GetRestocksByDate(ctx context.Context, date string) ([]domain.RestockRecord, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	return s.repo.GetRestocksByDate(ctx, date)
}

func (s *Service) AddRestock(ctx context.Context, record domain.RestockRecord) (*domain.RestockRecord, error) {
	if err := s.validateRestock(record); err != nil {
		return nil, err
	}
	return s.repo.AppendRestock(ctx, record)
}

// AddRestocks validates every line item before any is stored; each record is
// filed under its own date field.
func (s *Service) AddRestocks(ctx context.Context, records []domain.RestockRecord) ([]domain.RestockRecord, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty restock batch", store.ErrInvalidRecord)
	}
	for i, record := range records {
		if err := s.validateRestock(record); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return s.repo.AppendRestocks(ctx, records)
}

func (s *Service) validateRestock(record domain.RestockRecord) error {
	if err := validateDate(record.Date); err != nil {
		return err
	}
	if strings.TrimSpace(record.ItemName) == "" {
		return fmt.Errorf("%w: itemName is required", store.ErrInvalidRecord)
	}
	if record.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be > 0", store.ErrInvalidRecord)
	}
	if record.Price < 0 || record.Total < 0 {
		return fmt.Errorf("%w: price and total must be >= 0", store.ErrInvalidRecord)
	}
	return nil
}

func (s *Service) SalesReport(ctx context.Context, startDate string, endDate string) ([]domain.SalesRecord, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}
	return s.repo.SalesInRange(ctx, startDate, endDate)
}

func (s *Service) ExpensesReport(ctx context.Context, startDate string, endDate string) ([]domain.ExpenseRecord, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}
	return s.repo.ExpensesInRange(ctx, startDate, endDate)
}

func (s *Service) RestocksReport(ctx context.Context, startDate string, endDate string) ([]domain.RestockRecord, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}
	return s.repo.RestocksInRange(ctx, startDate, endDate)
}

// RangeReport assembles all three series for the range in one response,
// memoized through the report cache for reportTTL. Cache failures degrade to
// a direct read.
func (s *Service) RangeReport(ctx context.Context, startDate string, endDate string) (*domain.RangeReport, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("report-range:%s:%s", startDate, endDate)
	if cached, ok, err := s.reports.Get(ctx, cacheKey); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("report cache read failed")
	} else if ok {
		return cached, nil
	}

	sales, err := s.repo.SalesInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	expenses, err := s.repo.ExpensesInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	restocks, err := s.repo.RestocksInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	result := &domain.RangeReport{
		StartDate: startDate,
		EndDate:   endDate,
		Sales:     sales,
		Expenses:  expenses,
		Restocks:  restocks,
	}
	if err := s.reports.Set(ctx, cacheKey, result, s.reportTTL); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("report cache write failed")
	}
	return result, nil
}

func (s *Service) DailyReport(ctx context.Context, date string) (*domain.DailyTotals, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}

	sales, err := s.GetSalesByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	expenses, err := s.GetExpensesByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	restocks, err := s.repo.GetRestocksByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	totals := report.DailyTotals(date, sales, expenses, restocks)
	return &totals, nil
}

func (s *Service) MonthlyReport(ctx context.Context, startDate string, endDate string) (*domain.MonthlyReport, error) {
	combined, err := s.RangeReport(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	summary := report.Monthly(combined.Sales, combined.Expenses, combined.Restocks)
	return &summary, nil
}

func (s *Service) TopItems(ctx context.Context, startDate string, endDate string, limit int) (*domain.TopItemsReport, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}

	restocks, err := s.repo.RestocksInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	prices, err := s.repo.ListPrices(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.TopItemsReport{
		StartDate: startDate,
		EndDate:   endDate,
		Items:     report.TopPerformingItems(restocks, prices, limit),
	}, nil
}

// validateDate accepts ISO calendar dates only. The YYYY-MM-DD form is load
// bearing: range queries rely on it sorting lexicographically in calendar
// order.
func validateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", store.ErrInvalidRecord)
	}
	return nil
}

func validateRange(startDate string, endDate string) error {
	if startDate == "" || endDate == "" {
		return fmt.Errorf("%w: startDate and endDate are required", ErrBadDateRange)
	}
	if _, err := time.Parse("2006-01-02", startDate); err != nil {
		return fmt.Errorf("%w: startDate must be YYYY-MM-DD", ErrBadDateRange)
	}
	if _, err := time.Parse("2006-01-02", endDate); err != nil {
		return fmt.Errorf("%w: endDate must be YYYY-MM-DD", ErrBadDateRange)
	}
	if endDate < startDate {
		return fmt.Errorf("%w: endDate before startDate", ErrBadDateRange)
	}
	return nil
}
