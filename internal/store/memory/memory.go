package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"dukaankhata/internal/domain"
	"dukaankhata/internal/store"
	"dukaankhata/internal/xid"
)

// Store keeps the whole ledger in process memory: prices keyed by the
// normalized item name, sales and expenses keyed by date, restocks as a
// per-date list of line items. A single RWMutex guards everything; the
// workload is one shopkeeper submitting one form at a time.
type Store struct {
	mu             sync.RWMutex
	pricesByKey    map[string]domain.PriceEntry
	salesByDate    map[string]domain.SalesRecord
	expensesByDate map[string]domain.ExpenseRecord
	restocksByDate map[string][]domain.RestockRecord
}

func New() *Store {
	return &Store{
		pricesByKey:    make(map[string]domain.PriceEntry),
		salesByDate:    make(map[string]domain.SalesRecord),
		expensesByDate: make(map[string]domain.ExpenseRecord),
		restocksByDate: make(map[string][]domain.RestockRecord),
	}
}

// NewSeeded returns a store preloaded with a small starter price list so a
// fresh install has something to show on the price page.
func NewSeeded() *Store {
	s := New()
	for _, entry := range []domain.PriceEntry{
		{ItemName: "Rice (1kg)", WholesalePrice: 45, RetailPrice: 60},
		{ItemName: "Eggs (Tray)", WholesalePrice: 180, RetailPrice: 240},
		{ItemName: "Milk (1L)", WholesalePrice: 55, RetailPrice: 65},
		{ItemName: "Sugar (1kg)", WholesalePrice: 40, RetailPrice: 50},
		{ItemName: "Tea (250g)", WholesalePrice: 120, RetailPrice: 150},
	} {
		s.pricesByKey[priceKey(entry.ItemName)] = entry
	}
	return s
}

// priceKey normalizes an item name for lookup: trimmed, lowercased.
func priceKey(itemName string) string {
	return strings.ToLower(strings.TrimSpace(itemName))
}

func (s *Store) ListPrices(_ context.Context) ([]domain.PriceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prices := make([]domain.PriceEntry, 0, len(s.pricesByKey))
	for _, entry := range s.pricesByKey {
		prices = append(prices, entry)
	}
	sort.Slice(prices, func(i, j int) bool {
		return priceKey(prices[i].ItemName) < priceKey(prices[j].ItemName)
	})
	return prices, nil
}

func (s *Store) GetPrice(_ context.Context, itemName string) (*domain.PriceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.pricesByKey[priceKey(itemName)]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := entry
	return &found, nil
}

// UpsertPrice inserts or fully replaces the entry for the item name. Upsert
// rather than strict create keeps the price list consistent with the
// last-write-wins semantics of the sales and expenses tables.
func (s *Store) UpsertPrice(_ context.Context, entry domain.PriceEntry) (*domain.PriceEntry, error) {
	entry.ItemName = strings.TrimSpace(entry.ItemName)
	if entry.ItemName == "" || entry.WholesalePrice < 0 || entry.RetailPrice < 0 {
		return nil, store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pricesByKey[priceKey(entry.ItemName)] = entry
	saved := entry
	return &saved, nil
}

func (s *Store) UpdatePrice(_ context.Context, itemName string, update domain.PriceUpdateRequest) (*domain.PriceEntry, error) {
	if update.WholesalePrice != nil && *update.WholesalePrice < 0 {
		return nil, store.ErrInvalidRecord
	}
	if update.RetailPrice != nil && *update.RetailPrice < 0 {
		return nil, store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := priceKey(itemName)
	entry, ok := s.pricesByKey[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.WholesalePrice != nil {
		entry.WholesalePrice = *update.WholesalePrice
	}
	if update.RetailPrice != nil {
		entry.RetailPrice = *update.RetailPrice
	}
	s.pricesByKey[key] = entry
	updated := entry
	return &updated, nil
}

// DeletePrice is idempotent: deleting an absent entry is a no-op. Historical
// restocks that reference the name are left untouched.
func (s *Store) DeletePrice(_ context.Context, itemName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pricesByKey, priceKey(itemName))
	return nil
}

func (s *Store) GetSalesByDate(_ context.Context, date string) (*domain.SalesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.salesByDate[date]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := record
	return &found, nil
}

// UpsertSales replaces any existing record for the date in full. All three
// fields are overwritten, never merged.
func (s *Store) UpsertSales(_ context.Context, record domain.SalesRecord) (*domain.SalesRecord, error) {
	if record.Date == "" || record.CashSales < 0 || record.OnlineSales < 0 {
		return nil, store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.salesByDate[record.Date] = record
	saved := record
	return &saved, nil
}

func (s *Store) GetExpensesByDate(_ context.Context, date string) (*domain.ExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.expensesByDate[date]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := record
	return &found, nil
}

func (s *Store) UpsertExpenses(_ context.Context, record domain.ExpenseRecord) (*domain.ExpenseRecord, error) {
	if record.Date == "" || record.Rent < 0 || record.Electricity < 0 || record.Miscellaneous < 0 {
		return nil, store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.expensesByDate[record.Date] = record
	saved := record
	return &saved, nil
}

// GetRestocksByDate returns an empty slice, never an error, when no line
// items exist for the date.
func (s *Store) GetRestocksByDate(_ context.Context, date string) ([]domain.RestockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.restocksByDate[date]
	result := make([]domain.RestockRecord, len(records))
	copy(result, records)
	return result, nil
}

func (s *Store) AppendRestock(_ context.Context, record domain.RestockRecord) (*domain.RestockRecord, error) {
	record.ItemName = strings.TrimSpace(record.ItemName)
	if err := validateRestock(record); err != nil {
		return nil, err
	}
	if record.ID == "" {
		record.ID = xid.New("rst")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.restocksByDate[record.Date] = append(s.restocksByDate[record.Date], record)
	saved := record
	return &saved, nil
}

// AppendRestocks files each record under its own Date field. A batch that
// spans several dates lands in several per-date lists. The whole batch is
// validated before any record is stored.
func (s *Store) AppendRestocks(_ context.Context, records []domain.RestockRecord) ([]domain.RestockRecord, error) {
	saved := make([]domain.RestockRecord, 0, len(records))
	for _, record := range records {
		record.ItemName = strings.TrimSpace(record.ItemName)
		if err := validateRestock(record); err != nil {
			return nil, err
		}
		if record.ID == "" {
			record.ID = xid.New("rst")
		}
		saved = append(saved, record)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range saved {
		s.restocksByDate[record.Date] = append(s.restocksByDate[record.Date], record)
	}
	return saved, nil
}

func validateRestock(record domain.RestockRecord) error {
	if record.Date == "" || record.ItemName == "" {
		return store.ErrInvalidRecord
	}
	if record.Quantity < 1 || record.Price < 0 || record.Total < 0 {
		return store.ErrInvalidRecord
	}
	return nil
}

func (s *Store) SalesInRange(_ context.Context, startDate string, endDate string) ([]domain.SalesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.SalesRecord, 0, len(s.salesByDate))
	for date, record := range s.salesByDate {
		if date >= startDate && date <= endDate {
			result = append(result, record)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (s *Store) ExpensesInRange(_ context.Context, startDate string, endDate string) ([]domain.ExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.ExpenseRecord, 0, len(s.expensesByDate))
	for date, record := range s.expensesByDate {
		if date >= startDate && date <= endDate {
			result = append(result, record)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

// RestocksInRange flattens the per-date lists into one sequence sorted
// ascending by date. Line items on the same date keep insertion order.
func (s *Store) RestocksInRange(_ context.Context, startDate string, endDate string) ([]domain.RestockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.RestockRecord, 0, 32)
	for date, records := range s.restocksByDate {
		if date >= startDate && date <= endDate {
			result = append(result, records...)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}
