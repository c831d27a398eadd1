// Package report holds the pure aggregation functions that fold ledger
// records into profit figures. Nothing here touches storage; callers pass in
// snapshots and get values back.
package report

import (
	"sort"
	"strings"

	"dukaankhata/internal/domain"
)

const DefaultTopItemsLimit = 10

// DailyTotals folds one day's records into totals. A nil sales or expenses
// record counts as zero.
//
//	netProfit = totalSales - totalRestock - totalExpenses
func DailyTotals(date string, sales *domain.SalesRecord, expenses *domain.ExpenseRecord, restocks []domain.RestockRecord) domain.DailyTotals {
	totals := domain.DailyTotals{Date: date}
	if sales != nil {
		totals.TotalSales = sales.CashSales + sales.OnlineSales
	}
	if expenses != nil {
		totals.TotalExpenses = expenses.Rent + expenses.Electricity + expenses.Miscellaneous
	}
	for _, restock := range restocks {
		totals.TotalRestock += restock.Total
	}
	totals.NetProfit = totals.TotalSales - totals.TotalRestock - totals.TotalExpenses
	return totals
}

// Monthly sums each series independently over whatever range the caller
// queried. ProfitMargin is a percentage of revenue, defined as 0 when
// revenue is 0.
func Monthly(sales []domain.SalesRecord, expenses []domain.ExpenseRecord, restocks []domain.RestockRecord) domain.MonthlyReport {
	var summary domain.MonthlyReport
	for _, record := range sales {
		summary.TotalRevenue += record.CashSales + record.OnlineSales
	}
	for _, record := range restocks {
		summary.TotalCosts += record.Total
	}
	for _, record := range expenses {
		summary.TotalExpenses += record.Rent + record.Electricity + record.Miscellaneous
	}
	summary.NetProfit = summary.TotalRevenue - summary.TotalCosts - summary.TotalExpenses
	if summary.TotalRevenue > 0 {
		summary.ProfitMargin = summary.NetProfit / summary.TotalRevenue * 100
	}
	return summary
}

// TopPerformingItems ranks restocked items by (retail - wholesale) * quantity
// accumulated per item. Restocks whose item has no price entry are excluded
// from the ranking; they still count toward cost totals elsewhere. Ties break
// alphabetically so the ordering is deterministic.
func TopPerformingItems(restocks []domain.RestockRecord, prices []domain.PriceEntry, limit int) []domain.ItemProfit {
	if limit < 1 {
		limit = DefaultTopItemsLimit
	}

	pricesByKey := make(map[string]domain.PriceEntry, len(prices))
	for _, entry := range prices {
		pricesByKey[itemKey(entry.ItemName)] = entry
	}

	profits := make(map[string]float64)
	displayNames := make(map[string]string)
	for _, restock := range restocks {
		key := itemKey(restock.ItemName)
		entry, ok := pricesByKey[key]
		if !ok {
			continue
		}
		profits[key] += (entry.RetailPrice - entry.WholesalePrice) * float64(restock.Quantity)
		displayNames[key] = entry.ItemName
	}

	ranking := make([]domain.ItemProfit, 0, len(profits))
	for key, profit := range profits {
		ranking = append(ranking, domain.ItemProfit{ItemName: displayNames[key], Profit: profit})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Profit == ranking[j].Profit {
			return ranking[i].ItemName < ranking[j].ItemName
		}
		return ranking[i].Profit > ranking[j].Profit
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}

func itemKey(itemName string) string {
	return strings.ToLower(strings.TrimSpace(itemName))
}
