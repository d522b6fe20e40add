package router

import (
	"fmt"

	"github.com/4rinababan/chatfinance/internal/core"
)

const (
	ReplyAskAmount = "How much was it? Please include the amount."
	ReplyUnhandled = "Sorry, I can't process that yet."
	ReplyDegraded  = "Sorry, I can't answer that right now. Please try again in a moment."
	ReplyInternal  = "Sorry, something went wrong. Please try again."
)

func recordedReply(currency string, tx core.Transaction) string {
	return fmt.Sprintf("Okay, I recorded your %s of %s.", tx.Type, core.FormatAmount(currency, tx.Amount))
}

func totalReply(currency string, t core.TransactionType, total int64, p core.Period) string {
	reply := fmt.Sprintf("Your total %s: %s", t, core.FormatAmount(currency, total))
	if p.Bounded() {
		reply += " (" + p.String() + ")"
	}
	return reply
}

func storeFailureReply(d Decision) string {
	verb := "recording"
	if d.Kind == Summarize {
		verb = "calculating"
	}
	return fmt.Sprintf("Something went wrong while %s your %s. Please try again.", verb, d.Type)
}
