package router

import (
	"testing"

	"github.com/4rinababan/chatfinance/internal/core"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		in   core.Classification
		want Decision
	}{
		{"expense", core.Classification{Label: core.LabelExpense, Confidence: 0.9}, Decision{Kind: Record, Type: core.Expense}},
		{"income", core.Classification{Label: core.LabelIncome, Confidence: 0.8}, Decision{Kind: Record, Type: core.Income}},
		{"summary expense", core.Classification{Label: core.LabelSummaryExpense, Confidence: 0.95}, Decision{Kind: Summarize, Type: core.Expense}},
		{"summary income", core.Classification{Label: core.LabelSummaryIncome, Confidence: 1}, Decision{Kind: Summarize, Type: core.Income}},
		{"balance is not handled", core.Classification{Label: core.LabelBalance, Confidence: 0.99}, Decision{Kind: Unhandled}},
		{"unrecognised label", core.Classification{Label: "transfer", Confidence: 0.99}, Decision{Kind: Unhandled}},
		{"below threshold", core.Classification{Label: core.LabelExpense, Confidence: 0.79}, Decision{Kind: Fallback}},
		{"unknown label", core.Classification{Label: core.LabelUnknown, Confidence: 1}, Decision{Kind: Fallback}},
		{"empty label", core.Classification{Label: "", Confidence: 1}, Decision{Kind: Fallback}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.in, 0.8); got != tt.want {
				t.Errorf("Decide(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	for kind, want := range map[Kind]string{
		Fallback:  "fallback",
		Record:    "record",
		Summarize: "summarize",
		Unhandled: "unhandled",
		Kind(99):  "unknown",
	} {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
