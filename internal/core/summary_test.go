package core

import "testing"

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalIncome.Cents != 0 || s.TotalExpense.Cents != 0 || s.Balance.Cents != 0 {
		t.Fatalf("expected all-zero totals, got %+v", s)
	}
	if s.ByCategory == nil {
		t.Fatal("ByCategory must be an empty map, not nil")
	}
	if len(s.ByCategory) != 0 {
		t.Fatalf("expected empty map, got %v", s.ByCategory)
	}
}

func TestSummarizeIncomeConvention(t *testing.T) {
	s := Summarize([]CategoryTotal{
		{Category: "Income", Total: Money{Cents: 200000}},
		{Category: "Bills", Total: Money{Cents: 80000}},
	})
	if s.TotalIncome.Cents != 200000 {
		t.Fatalf("TotalIncome = %d, want 200000", s.TotalIncome.Cents)
	}
	if s.TotalExpense.Cents != 80000 {
		t.Fatalf("TotalExpense = %d, want 80000", s.TotalExpense.Cents)
	}
	if s.Balance.Cents != 120000 {
		t.Fatalf("Balance = %d, want 120000", s.Balance.Cents)
	}
	if s.ByCategory["Income"].Cents != 200000 || s.ByCategory["Bills"].Cents != 80000 {
		t.Fatalf("ByCategory = %v", s.ByCategory)
	}
}

func TestSummarizeIncomeCaseInsensitive(t *testing.T) {
	for _, cat := range []string{"income", "INCOME", "Income", "iNcOmE"} {
		s := Summarize([]CategoryTotal{{Category: cat, Total: Money{Cents: 100}}})
		if s.TotalIncome.Cents != 100 {
			t.Fatalf("category %q not treated as income", cat)
		}
		if s.TotalExpense.Cents != 0 {
			t.Fatalf("category %q leaked into expenses", cat)
		}
	}
}

func TestSummarizeFoldsBlankCategory(t *testing.T) {
	s := Summarize([]CategoryTotal{
		{Category: "", Total: Money{Cents: 300}},
		{Category: DefaultCategory, Total: Money{Cents: 200}},
	})
	if got := s.ByCategory[DefaultCategory].Cents; got != 500 {
		t.Fatalf("General = %d, want 500", got)
	}
	if s.TotalExpense.Cents != 500 {
		t.Fatalf("TotalExpense = %d, want 500", s.TotalExpense.Cents)
	}
}

func TestSummarizeConsistency(t *testing.T) {
	totals := []CategoryTotal{
		{Category: "Food", Total: Money{Cents: 450}},
		{Category: "Income", Total: Money{Cents: 5000}},
		{Category: "Transport", Total: Money{Cents: 1200}},
	}
	s := Summarize(totals)

	var all int64
	for _, ct := range totals {
		all += ct.Total.Cents
	}
	if s.TotalIncome.Cents+s.TotalExpense.Cents != all {
		t.Fatalf("income+expense = %d, want %d", s.TotalIncome.Cents+s.TotalExpense.Cents, all)
	}
	if s.Balance.Cents != s.TotalIncome.Cents-s.TotalExpense.Cents {
		t.Fatalf("balance = %d, want %d", s.Balance.Cents, s.TotalIncome.Cents-s.TotalExpense.Cents)
	}
}
