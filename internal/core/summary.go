package core

import "strings"

// CategoryTotal is an aggregated amount for one category, as produced by the
// store's GROUP BY query.
type CategoryTotal struct {
	Category string
	Total    Money
}

// Summary is the aggregation result for one user: totals split into income
// and expense plus the per-category breakdown. The "income" category
// (case-insensitive) is the only credit; everything else is a debit.
type Summary struct {
	TotalIncome  Money            `json:"total_income"`
	TotalExpense Money            `json:"total_expense"`
	Balance      Money            `json:"balance"`
	ByCategory   map[string]Money `json:"by_category"`
}

// Summarize folds per-category totals into a Summary. A blank category is
// folded into DefaultCategory (legacy rows predating the category column).
// Zero input rows yield all-zero totals and an empty, non-nil map.
func Summarize(totals []CategoryTotal) Summary {
	s := Summary{ByCategory: make(map[string]Money, len(totals))}

	for _, ct := range totals {
		cat := ct.Category
		if cat == "" {
			cat = DefaultCategory
		}
		s.ByCategory[cat] = Money{Cents: s.ByCategory[cat].Cents + ct.Total.Cents}

		if strings.EqualFold(cat, IncomeCategory) {
			s.TotalIncome.Cents += ct.Total.Cents
		} else {
			s.TotalExpense.Cents += ct.Total.Cents
		}
	}

	s.Balance = Money{Cents: s.TotalIncome.Cents - s.TotalExpense.Cents}
	return s
}
