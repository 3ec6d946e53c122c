package core

import (
	"errors"
	"testing"
)

func TestValidateNewExpense(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		amount   string
		category string
		want     NewExpense
		wantErr  error
	}{
		{
			name: "valid", title: "Coffee", amount: "4.50", category: "Food",
			want: NewExpense{Title: "Coffee", Amount: Money{Cents: 450}, Category: "Food"},
		},
		{
			name: "trims fields", title: "  Rent  ", amount: "800", category: "  Bills ",
			want: NewExpense{Title: "Rent", Amount: Money{Cents: 80000}, Category: "Bills"},
		},
		{
			name: "blank category defaults", title: "Snack", amount: "2", category: "  ",
			want: NewExpense{Title: "Snack", Amount: Money{Cents: 200}, Category: DefaultCategory},
		},
		{name: "empty title", title: "   ", amount: "5", category: "Food", wantErr: ErrEmptyTitle},
		{name: "zero amount", title: "x", amount: "0", category: "", wantErr: ErrInvalidAmount},
		{name: "garbage amount", title: "x", amount: "abc", category: "", wantErr: ErrInvalidAmount},
		{name: "negative amount", title: "x", amount: "-4", category: "", wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateNewExpense(tt.title, tt.amount, tt.category)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	u, e, p, err := ValidateRegistration(" alice ", " Alice@X.COM ", " pw123 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "alice" || e != "alice@x.com" || p != "pw123" {
		t.Fatalf("got (%q, %q, %q)", u, e, p)
	}

	for _, in := range [][3]string{
		{"", "a@x.com", "pw"},
		{"alice", "", "pw"},
		{"alice", "a@x.com", "   "},
	} {
		if _, _, _, err := ValidateRegistration(in[0], in[1], in[2]); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("ValidateRegistration(%q, %q, %q) err = %v, want ErrInvalidInput", in[0], in[1], in[2], err)
		}
	}
}

func TestExpenseOwnedBy(t *testing.T) {
	owner := int64(7)
	e := Expense{Owner: &owner}
	if !e.OwnedBy(7) {
		t.Fatal("expected owner match")
	}
	if e.OwnedBy(8) {
		t.Fatal("expected owner mismatch")
	}
	if (Expense{}).OwnedBy(7) {
		t.Fatal("legacy unowned row must belong to nobody")
	}
}
