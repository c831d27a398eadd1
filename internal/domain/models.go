package domain

// PriceEntry is one row of the store's price list. ItemName is the sole
// identifying key; lookups treat it as case-insensitive on the trimmed form.
type PriceEntry struct {
	ItemName       string  `json:"itemName"`
	WholesalePrice float64 `json:"wholesalePrice"`
	RetailPrice    float64 `json:"retailPrice"`
}

// PriceUpdateRequest carries a partial price update. Nil fields keep the
// existing value.
type PriceUpdateRequest struct {
	WholesalePrice *float64 `json:"wholesalePrice,omitempty"`
	RetailPrice    *float64 `json:"retailPrice,omitempty"`
}

// SalesRecord holds a single day's takings. At most one record per date;
// saving again for the same date replaces the record in full.
type SalesRecord struct {
	Date        string  `json:"date"`
	CashSales   float64 `json:"cashSales"`
	OnlineSales float64 `json:"onlineSales"`
}

// ExpenseRecord holds a single day's operating expenses, keyed by date with
// the same upsert-replace semantics as SalesRecord.
type ExpenseRecord struct {
	Date          string  `json:"date"`
	Rent          float64 `json:"rent"`
	Electricity   float64 `json:"electricity"`
	Miscellaneous float64 `json:"miscellaneous"`
}

// RestockRecord is one purchase line item. Multiple records are allowed per
// date, including repeated restocks of the same item on the same day. Total
// is stored as submitted, never recomputed from Price and Quantity.
type RestockRecord struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	ItemName string  `json:"itemName"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

type RangeReport struct {
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	Sales     []SalesRecord   `json:"sales"`
	Expenses  []ExpenseRecord `json:"expenses"`
	Restocks  []RestockRecord `json:"restocks"`
}

type DailyTotals struct {
	Date          string  `json:"date"`
	TotalSales    float64 `json:"totalSales"`
	TotalExpenses float64 `json:"totalExpenses"`
	TotalRestock  float64 `json:"totalRestock"`
	NetProfit     float64 `json:"netProfit"`
}

type MonthlyReport struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalCosts    float64 `json:"totalCosts"`
	TotalExpenses float64 `json:"totalExpenses"`
	NetProfit     float64 `json:"netProfit"`
	ProfitMargin  float64 `json:"profitMargin"`
}

type ItemProfit struct {
	ItemName string  `json:"itemName"`
	Profit   float64 `json:"profit"`
}

type TopItemsReport struct {
	StartDate string       `json:"startDate"`
	EndDate   string       `json:"endDate"`
	Items     []ItemProfit `json:"items"`
}
