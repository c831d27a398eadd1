package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"dukaankhata/internal/cache"
	"dukaankhata/internal/domain"
	"dukaankhata/internal/service"
	"dukaankhata/internal/store/memory"
)

// newTestAPI builds a full API over an empty in-memory store so handler
// tests exercise the complete request path.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	svc := service.New(memory.New(), cache.NoopReportCache{}, 5*time.Second)
	return New(svc, "*").Handler()
}

func doJSON(t *testing.T, handler http.Handler, method string, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestPriceLifecycle(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/prices", domain.PriceEntry{
		ItemName: "Rice (1kg)", WholesalePrice: 45, RetailPrice: 60,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	itemPath := "/api/prices/" + url.PathEscape("Rice (1kg)")
	rec = doJSON(t, handler, http.MethodGet, itemPath, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	var entry domain.PriceEntry
	if err := json.NewDecoder(rec.Body).Decode(&entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.WholesalePrice != 45 || entry.RetailPrice != 60 {
		t.Fatalf("unexpected entry %+v", entry)
	}

	rec = doJSON(t, handler, http.MethodPut, itemPath, map[string]any{"retailPrice": 65})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&entry); err != nil {
		t.Fatalf("decode updated entry: %v", err)
	}
	if entry.WholesalePrice != 45 || entry.RetailPrice != 65 {
		t.Fatalf("expected partial update to preserve wholesale, got %+v", entry)
	}

	rec = doJSON(t, handler, http.MethodDelete, itemPath, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	// Deleting again stays a no-op.
	rec = doJSON(t, handler, http.MethodDelete, itemPath, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("repeat delete: expected 204, got %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodGet, itemPath, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestUpdateMissingPriceReturns404(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPut, "/api/prices/Ghee", map[string]any{"retailPrice": 100})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestSalesUpsertAndFetch(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/sales", domain.SalesRecord{
		Date: "2025-06-14", CashSales: 1000, OnlineSales: 500,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/sales", domain.SalesRecord{
		Date: "2025-06-14", CashSales: 750, OnlineSales: 900,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on resubmission, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/sales/2025-06-14", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var record domain.SalesRecord
	if err := json.NewDecoder(rec.Body).Decode(&record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.CashSales != 750 || record.OnlineSales != 900 {
		t.Fatalf("expected second submission to win, got %+v", record)
	}
}

func TestSalesFetchAbsentReturnsNull(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/sales/2025-06-14", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := bytes.TrimSpace(rec.Body.Bytes()); !bytes.Equal(body, []byte("null")) {
		t.Fatalf("expected null body, got %s", body)
	}
}

func TestSalesRejectsNegative(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/sales", domain.SalesRecord{
		Date: "2025-06-14", CashSales: -10,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRestockBatchSpansDates(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/restocks/batch", []domain.RestockRecord{
		{Date: "2025-06-14", ItemName: "Rice (1kg)", Quantity: 10, Price: 45, Total: 450},
		{Date: "2025-06-15", ItemName: "Eggs (Tray)", Quantity: 2, Price: 180, Total: 360},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/restocks/2025-06-15", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var records []domain.RestockRecord
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 1 || records[0].ItemName != "Eggs (Tray)" {
		t.Fatalf("expected batch record filed under its own date, got %+v", records)
	}
}

func TestRangeReportRequiresDates(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/reports/range?startDate=2025-06-01", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without endDate, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/reports/range?startDate=junk&endDate=2025-06-30", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed startDate, got %d", rec.Code)
	}
}

func TestRangeReportCombined(t *testing.T) {
	handler := newTestAPI(t)

	doJSON(t, handler, http.MethodPost, "/api/sales", domain.SalesRecord{Date: "2025-06-14", CashSales: 1000, OnlineSales: 500})
	doJSON(t, handler, http.MethodPost, "/api/expenses", domain.ExpenseRecord{Date: "2025-06-14", Rent: 200, Electricity: 50, Miscellaneous: 30})
	doJSON(t, handler, http.MethodPost, "/api/restocks", domain.RestockRecord{Date: "2025-06-14", ItemName: "Rice (1kg)", Quantity: 10, Price: 45, Total: 450})

	rec := doJSON(t, handler, http.MethodGet, "/api/reports/range?startDate=2025-06-01&endDate=2025-06-30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var combined domain.RangeReport
	if err := json.NewDecoder(rec.Body).Decode(&combined); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(combined.Sales) != 1 || len(combined.Expenses) != 1 || len(combined.Restocks) != 1 {
		t.Fatalf("expected one record per series, got %d/%d/%d",
			len(combined.Sales), len(combined.Expenses), len(combined.Restocks))
	}
}

func TestDailyReportEndpoint(t *testing.T) {
	handler := newTestAPI(t)

	doJSON(t, handler, http.MethodPost, "/api/sales", domain.SalesRecord{Date: "2025-06-14", CashSales: 1000, OnlineSales: 500})
	doJSON(t, handler, http.MethodPost, "/api/expenses", domain.ExpenseRecord{Date: "2025-06-14", Rent: 200, Electricity: 50, Miscellaneous: 30})
	doJSON(t, handler, http.MethodPost, "/api/restocks", domain.RestockRecord{Date: "2025-06-14", ItemName: "Rice (1kg)", Quantity: 10, Price: 45, Total: 450})

	rec := doJSON(t, handler, http.MethodGet, "/api/reports/daily/2025-06-14", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var totals domain.DailyTotals
	if err := json.NewDecoder(rec.Body).Decode(&totals); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if totals.NetProfit != 770 {
		t.Fatalf("expected netProfit 770, got %v", totals.NetProfit)
	}
}

func TestTopItemsEndpoint(t *testing.T) {
	handler := newTestAPI(t)

	doJSON(t, handler, http.MethodPost, "/api/prices", domain.PriceEntry{ItemName: "Rice (1kg)", WholesalePrice: 45, RetailPrice: 60})
	doJSON(t, handler, http.MethodPost, "/api/restocks/batch", []domain.RestockRecord{
		{Date: "2025-06-14", ItemName: "Rice (1kg)", Quantity: 5, Price: 45, Total: 225},
		{Date: "2025-06-15", ItemName: "Rice (1kg)", Quantity: 5, Price: 45, Total: 225},
		{Date: "2025-06-15", ItemName: "Unlisted Thing", Quantity: 1, Price: 5, Total: 5},
	})

	rec := doJSON(t, handler, http.MethodGet, "/api/reports/top-items?startDate=2025-06-01&endDate=2025-06-30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var ranking domain.TopItemsReport
	if err := json.NewDecoder(rec.Body).Decode(&ranking); err != nil {
		t.Fatalf("decode ranking: %v", err)
	}
	if len(ranking.Items) != 1 || ranking.Items[0].Profit != 150 {
		t.Fatalf("unexpected ranking %+v", ranking.Items)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodDelete, "/api/sales", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/reports/range?startDate=2025-06-01&endDate=2025-06-30", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestUnknownFieldsRejected(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/sales", map[string]any{
		"date": "2025-06-14", "cashSales": 100, "bogus": true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}
