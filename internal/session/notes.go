package session

import (
	"fmt"
	"strings"

	"github.com/decoykit/scamtrap/internal/domain"
)

// riskLevel buckets the session's peak confidence.
func riskLevel(peak float64) string {
	switch {
	case peak >= 0.8:
		return "high"
	case peak >= 0.6:
		return "medium"
	case peak >= 0.4:
		return "low"
	default:
		return "very_low"
	}
}

// engagementScore blends conversation length and intelligence yield into a
// 0..1 figure: how much the counterpart invested before the session ended.
func engagementScore(rec *Record) float64 {
	turns := float64(rec.TurnCount) * 0.1
	if turns > 1 {
		turns = 1
	}
	yield := 0.0
	for _, c := range domain.Categories {
		if len(rec.Intelligence.Values(c)) > 0 {
			yield += 0.2
		}
	}
	if yield > 1 {
		yield = 1
	}
	return (turns + yield) / 2
}

// buildNotes renders the freeform summary carried in the terminal report.
func buildNotes(rec *Record) string {
	var notes []string

	if rec.ScamConfirmed {
		notes = append(notes, fmt.Sprintf("Scam detected with %.2f peak confidence (%s risk)",
			rec.PeakConfidence, riskLevel(rec.PeakConfidence)))
	}

	if kws := rec.Intelligence.SuspiciousKeywords; len(kws) > 0 {
		top := kws
		if len(top) > 5 {
			top = top[:5]
		}
		notes = append(notes, "Used keywords: "+strings.Join(top, ", "))
	}
	if len(rec.Intelligence.UPIIDs) > 0 {
		notes = append(notes, "Requested UPI payments")
	}
	if len(rec.Intelligence.PhishingLinks) > 0 {
		notes = append(notes, "Shared suspicious links")
	}
	if len(rec.Intelligence.PhoneNumbers) > 0 {
		notes = append(notes, "Provided contact numbers")
	}
	if len(rec.Intelligence.BankAccounts) > 0 || len(rec.Intelligence.CardNumbers) > 0 {
		notes = append(notes, "Disclosed account or card identifiers")
	}

	switch score := engagementScore(rec); {
	case score > 0.7:
		notes = append(notes, "High engagement - persistent scammer")
	case score < 0.3:
		notes = append(notes, "Low engagement - quick exit")
	}

	notes = append(notes, fmt.Sprintf("Engaged for %d turns, final stage %s", rec.TurnCount, rec.Stage))

	if len(notes) == 1 && !rec.ScamConfirmed {
		return "No scam confirmed; " + strings.ToLower(notes[0][:1]) + notes[0][1:]
	}
	return strings.Join(notes, "; ")
}
