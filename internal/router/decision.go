package router

import (
	"github.com/4rinababan/chatfinance/internal/core"
)

// Kind is what the router does with a message.
type Kind int

const (
	Fallback Kind = iota
	Record
	Summarize
	Unhandled
)

func (k Kind) String() string {
	switch k {
	case Fallback:
		return "fallback"
	case Record:
		return "record"
	case Summarize:
		return "summarize"
	case Unhandled:
		return "unhandled"
	default:
		return "unknown"
	}
}

// Decision is derived solely from a classification. Type is set for
// Record and Summarize.
type Decision struct {
	Kind Kind
	Type core.TransactionType
}

// Decide gates c on threshold and maps its label to a Decision.
func Decide(c core.Classification, threshold float64) Decision {
	if !c.Confident(threshold) {
		return Decision{Kind: Fallback}
	}

	switch c.Label {
	case core.LabelExpense:
		return Decision{Kind: Record, Type: core.Expense}
	case core.LabelIncome:
		return Decision{Kind: Record, Type: core.Income}
	case core.LabelSummaryExpense:
		return Decision{Kind: Summarize, Type: core.Expense}
	case core.LabelSummaryIncome:
		return Decision{Kind: Summarize, Type: core.Income}
	default:
		return Decision{Kind: Unhandled}
	}
}
