// Package core provides the chat domain types and the pure text
// interpretation helpers used by the router.
//
// This file contains amount extraction from free text and the
// formatting of amounts for user-facing replies.
package core

import (
	"errors"
	"math"
	"regexp"
	"strconv"

	"github.com/dustin/go-humanize"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// ExtractAmount returns the largest run of decimal digits found in text.
//
// Messages usually carry one salient amount next to incidental numbers
// (days, counts), and the amount is normally the biggest of them. A message
// that mentions a quantity larger than its amount will therefore pick the
// wrong number; callers live with that.
//
// Returns 0 when text has no digits. A run that does not fit in an int64
// yields ErrAmountOverflow.
//
// Examples:
//
//	ExtractAmount("record expense 50000 for lunch") -> 50000, nil
//	ExtractAmount("2 coffees 30000")                -> 30000, nil
//	ExtractAmount("lunch")                          -> 0, nil
func ExtractAmount(text string) (int64, error) {
	var best int64
	for _, run := range digitRun.FindAllString(text, -1) {
		v, err := strconv.ParseInt(run, 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return 0, ErrAmountOverflow
			}
			return 0, err
		}
		if v > best {
			best = v
		}
	}
	return best, nil
}

// FormatAmount renders amount with thousands separators behind symbol,
// e.g. FormatAmount("Rp", 1250000) -> "Rp1,250,000".
func FormatAmount(symbol string, amount int64) string {
	if amount < 0 {
		return "-" + symbol + humanize.Comma(-amount)
	}
	return symbol + humanize.Comma(amount)
}

// SumAmounts totals the amounts of type t created inside p. Amounts are
// positive, so a total past math.MaxInt64 yields ErrTotalOverflow.
func SumAmounts(txs []Transaction, t TransactionType, p Period) (int64, error) {
	var total int64
	for _, tx := range txs {
		if tx.Type != t || !p.Contains(tx.CreatedAt) {
			continue
		}
		if tx.Amount > math.MaxInt64-total {
			return 0, ErrTotalOverflow
		}
		total += tx.Amount
	}
	return total, nil
}
