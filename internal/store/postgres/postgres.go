package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"dukaankhata/internal/domain"
	"dukaankhata/internal/store"
	"dukaankhata/internal/xid"
)

// Store persists the ledger in postgres. Dates are stored as ISO YYYY-MM-DD
// text so BETWEEN and ORDER BY follow the same lexicographic contract as the
// in-memory store. Item names keep their submitted casing; uniqueness and
// lookups go through lower(item_name).
type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(16)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS prices (
			item_name text PRIMARY KEY,
			wholesale_price double precision NOT NULL DEFAULT 0,
			retail_price double precision NOT NULL DEFAULT 0,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS prices_item_name_lower_idx ON prices ((lower(item_name)))`,
		`CREATE TABLE IF NOT EXISTS sales (
			date text PRIMARY KEY,
			cash_sales double precision NOT NULL DEFAULT 0,
			online_sales double precision NOT NULL DEFAULT 0,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			date text PRIMARY KEY,
			rent double precision NOT NULL DEFAULT 0,
			electricity double precision NOT NULL DEFAULT 0,
			miscellaneous double precision NOT NULL DEFAULT 0,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS restocks (
			id text PRIMARY KEY,
			date text NOT NULL,
			item_name text NOT NULL,
			quantity integer NOT NULL,
			price double precision NOT NULL DEFAULT 0,
			total double precision NOT NULL DEFAULT 0,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS restocks_date_idx ON restocks (date)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListPrices(ctx context.Context) ([]domain.PriceEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_name, wholesale_price, retail_price
		FROM prices
		ORDER BY lower(item_name)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make([]domain.PriceEntry, 0, 64)
	for rows.Next() {
		var entry domain.PriceEntry
		if err := rows.Scan(&entry.ItemName, &entry.WholesalePrice, &entry.RetailPrice); err != nil {
			return nil, err
		}
		prices = append(prices, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return prices, nil
}

func (s *Store) GetPrice(ctx context.Context, itemName string) (*domain.PriceEntry, error) {
	var entry domain.PriceEntry
	err := s.db.QueryRowContext(ctx, `
		SELECT item_name, wholesale_price, retail_price
		FROM prices
		WHERE lower(item_name) = lower($1)
	`, strings.TrimSpace(itemName)).Scan(&entry.ItemName, &entry.WholesalePrice, &entry.RetailPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (s *Store) UpsertPrice(ctx context.Context, entry domain.PriceEntry) (*domain.PriceEntry, error) {
	entry.ItemName = strings.TrimSpace(entry.ItemName)
	if entry.ItemName == "" || entry.WholesalePrice < 0 || entry.RetailPrice < 0 {
		return nil, store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prices (item_name, wholesale_price, retail_price, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT ((lower(item_name))) DO UPDATE
		SET item_name = EXCLUDED.item_name,
		    wholesale_price = EXCLUDED.wholesale_price,
		    retail_price = EXCLUDED.retail_price,
		    updated_at = now()
	`, entry.ItemName, entry.WholesalePrice, entry.RetailPrice)
	if err != nil {
		return nil, err
	}
	saved := entry
	return &saved, nil
}

func (s *Store) UpdatePrice(ctx context.Context, itemName string, update domain.PriceUpdateRequest) (*domain.PriceEntry, error) {
	if update.WholesalePrice != nil && *update.WholesalePrice < 0 {
		return nil, store.ErrInvalidRecord
	}
	if update.RetailPrice != nil && *update.RetailPrice < 0 {
		return nil, store.ErrInvalidRecord
	}

	var entry domain.PriceEntry
	err := s.db.QueryRowContext(ctx, `
		UPDATE prices
		SET wholesale_price = COALESCE($2, wholesale_price),
		    retail_price = COALESCE($3, retail_price),
		    updated_at = now()
		WHERE lower(item_name) = lower($1)
		RETURNING item_name, wholesale_price, retail_price
	`, strings.TrimSpace(itemName), update.WholesalePrice, update.RetailPrice).
		Scan(&entry.ItemName, &entry.WholesalePrice, &entry.RetailPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (s *Store) DeletePrice(ctx context.Context, itemName string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM prices WHERE lower(item_name) = lower($1)
	`, strings.TrimSpace(itemName))
	return err
}

func (s *Store) GetSalesByDate(ctx context.Context, date string) (*domain.SalesRecord, error) {
	var record domain.SalesRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT date, cash_sales, online_sales FROM sales WHERE date = $1
	`, date).Scan(&record.Date, &record.CashSales, &record.OnlineSales)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *Store) UpsertSales(ctx context.Context, record domain.SalesRecord) (*domain.SalesRecord, error) {
	if record.Date == "" || record.CashSales < 0 || record.OnlineSales < 0 {
		return nil, store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (date, cash_sales, online_sales, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (date) DO UPDATE
		SET cash_sales = EXCLUDED.cash_sales,
		    online_sales = EXCLUDED.online_sales,
		    updated_at = now()
	`, record.Date, record.CashSales, record.OnlineSales)
	if err != nil {
		return nil, err
	}
	saved := record
	return &saved, nil
}

func (s *Store) GetExpensesByDate(ctx context.Context, date string) (*domain.ExpenseRecord, error) {
	var record domain.ExpenseRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT date, rent, electricity, miscellaneous FROM expenses WHERE date = $1
	`, date).Scan(&record.Date, &record.Rent, &record.Electricity, &record.Miscellaneous)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *Store) UpsertExpenses(ctx context.Context, record domain.ExpenseRecord) (*domain.ExpenseRecord, error) {
	if record.Date == "" || record.Rent < 0 || record.Electricity < 0 || record.Miscellaneous < 0 {
		return nil, store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (date, rent, electricity, miscellaneous, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (date) DO UPDATE
		SET rent = EXCLUDED.rent,
		    electricity = EXCLUDED.electricity,
		    miscellaneous = EXCLUDED.miscellaneous,
		    updated_at = now()
	`, record.Date, record.Rent, record.Electricity, record.Miscellaneous)
	if err != nil {
		return nil, err
	}
	saved := record
	return &saved, nil
}

func (s *Store) GetRestocksByDate(ctx context.Context, date string) ([]domain.RestockRecord, error) {
	return s.queryRestocks(ctx, `
		SELECT id, date, item_name, quantity, price, total
		FROM restocks
		WHERE date = $1
		ORDER BY created_at, id
	`, date)
}

func (s *Store) AppendRestock(ctx context.Context, record domain.RestockRecord) (*domain.RestockRecord, error) {
	record.ItemName = strings.TrimSpace(record.ItemName)
	if err := validateRestock(record); err != nil {
		return nil, err
	}
	if record.ID == "" {
		record.ID = xid.New("rst")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO restocks (id, date, item_name, quantity, price, total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, record.ID, record.Date, record.ItemName, record.Quantity, record.Price, record.Total)
	if err != nil {
		return nil, err
	}
	saved := record
	return &saved, nil
}

// AppendRestocks files each record under its own date inside one database
// transaction, so a malformed line item rejects the whole batch.
func (s *Store) AppendRestocks(ctx context.Context, records []domain.RestockRecord) ([]domain.RestockRecord, error) {
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, record := range saved {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO restocks (id, date, item_name, quantity, price, total)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, record.ID, record.Date, record.ItemName, record.Quantity, record.Price, record.Total)
		if err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Store) SalesInRange(ctx context.Context, startDate string, endDate string) ([]domain.SalesRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, cash_sales, online_sales
		FROM sales
		WHERE date BETWEEN $1 AND $2
		ORDER BY date
	`, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.SalesRecord, 0, 32)
	for rows.Next() {
		var record domain.SalesRecord
		if err := rows.Scan(&record.Date, &record.CashSales, &record.OnlineSales); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) ExpensesInRange(ctx context.Context, startDate string, endDate string) ([]domain.ExpenseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, rent, electricity, miscellaneous
		FROM expenses
		WHERE date BETWEEN $1 AND $2
		ORDER BY date
	`, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.ExpenseRecord, 0, 32)
	for rows.Next() {
		var record domain.ExpenseRecord
		if err := rows.Scan(&record.Date, &record.Rent, &record.Electricity, &record.Miscellaneous); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) RestocksInRange(ctx context.Context, startDate string, endDate string) ([]domain.RestockRecord, error) {
	return s.queryRestocks(ctx, `
		SELECT id, date, item_name, quantity, price, total
		FROM restocks
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, created_at, id
	`, startDate, endDate)
}

func (s *Store) queryRestocks(ctx context.Context, query string, args ...any) ([]domain.RestockRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.RestockRecord, 0, 32)
	for rows.Next() {
		var record domain.RestockRecord
		if err := rows.Scan(&record.ID, &record.Date, &record.ItemName, &record.Quantity, &record.Price, &record.Total); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
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
