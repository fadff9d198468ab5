// Package domain provides the core types shared by the honeypot pipeline:
// inbound messages, detection results, extracted intelligence, and the
// conversation stage machine.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Message is a single inbound message attributed to the counterpart.
// Immutable once received.
type Message struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// DetectionResult is the outcome of scoring a single message.
// Produced fresh per message and never mutated afterwards.
type DetectionResult struct {
	IsScam         bool     `json:"isScam"`
	Confidence     float64  `json:"confidence"`
	MatchedSignals []string `json:"matchedSignals"`
}

// Category identifies one class of extracted artifact.
type Category string

const (
	CategoryUPIID    Category = "upiIds"
	CategoryBankAcct Category = "bankAccounts"
	CategoryLink     Category = "phishingLinks"
	CategoryPhone    Category = "phoneNumbers"
	CategoryCard     Category = "cardNumbers"
	CategoryKeyword  Category = "suspiciousKeywords"
)

// Categories lists every artifact category in extraction order: payment
// handles first, then bank accounts, links, phones, cards, keywords.
var Categories = []Category{
	CategoryUPIID,
	CategoryBankAcct,
	CategoryLink,
	CategoryPhone,
	CategoryCard,
	CategoryKeyword,
}

// Intelligence maps artifact categories to deduplicated values in order of
// first appearance. Values are compared in normalized form (lowercase for
// case-insensitive categories, separator-stripped for digit groups) but
// stored as first seen.
type Intelligence struct {
	UPIIDs             []string `json:"upiIds"`
	BankAccounts       []string `json:"bankAccounts"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	CardNumbers        []string `json:"cardNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// Values returns the slice backing the given category.
func (in *Intelligence) Values(c Category) []string {
	switch c {
	case CategoryUPIID:
		return in.UPIIDs
	case CategoryBankAcct:
		return in.BankAccounts
	case CategoryLink:
		return in.PhishingLinks
	case CategoryPhone:
		return in.PhoneNumbers
	case CategoryCard:
		return in.CardNumbers
	case CategoryKeyword:
		return in.SuspiciousKeywords
	}
	return nil
}

// Add appends v to category c unless an equivalent value (per NormalizeValue)
// is already present. Reports whether the value was added.
func (in *Intelligence) Add(c Category, v string) bool {
	key := NormalizeValue(c, v)
	if key == "" {
		return false
	}
	for _, existing := range in.Values(c) {
		if NormalizeValue(c, existing) == key {
			return false
		}
	}
	switch c {
	case CategoryUPIID:
		in.UPIIDs = append(in.UPIIDs, v)
	case CategoryBankAcct:
		in.BankAccounts = append(in.BankAccounts, v)
	case CategoryLink:
		in.PhishingLinks = append(in.PhishingLinks, v)
	case CategoryPhone:
		in.PhoneNumbers = append(in.PhoneNumbers, v)
	case CategoryCard:
		in.CardNumbers = append(in.CardNumbers, v)
	case CategoryKeyword:
		in.SuspiciousKeywords = append(in.SuspiciousKeywords, v)
	default:
		return false
	}
	return true
}

// Merge folds every value of other into in. The union is monotone: values
// already present are kept, nothing is removed. Reports how many values
// were newly added.
func (in *Intelligence) Merge(other Intelligence) int {
	added := 0
	for _, c := range Categories {
		for _, v := range other.Values(c) {
			if in.Add(c, v) {
				added++
			}
		}
	}
	return added
}

// Count returns the total number of artifacts across all categories.
func (in *Intelligence) Count() int {
	n := 0
	for _, c := range Categories {
		n += len(in.Values(c))
	}
	return n
}

// MarshalJSON renders every category as an array, never null, so external
// consumers of the terminal report can index empty categories.
func (in Intelligence) MarshalJSON() ([]byte, error) {
	type payload struct {
		UPIIDs             []string `json:"upiIds"`
		BankAccounts       []string `json:"bankAccounts"`
		PhishingLinks      []string `json:"phishingLinks"`
		PhoneNumbers       []string `json:"phoneNumbers"`
		CardNumbers        []string `json:"cardNumbers"`
		SuspiciousKeywords []string `json:"suspiciousKeywords"`
	}
	return json.Marshal(payload{
		UPIIDs:             orEmpty(in.UPIIDs),
		BankAccounts:       orEmpty(in.BankAccounts),
		PhishingLinks:      orEmpty(in.PhishingLinks),
		PhoneNumbers:       orEmpty(in.PhoneNumbers),
		CardNumbers:        orEmpty(in.CardNumbers),
		SuspiciousKeywords: orEmpty(in.SuspiciousKeywords),
	})
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// NormalizeValue produces the comparison key for a value within a category.
// URLs, keywords, and payment handles compare case-insensitively; digit
// groups compare with spaces and dashes stripped.
func NormalizeValue(c Category, v string) string {
	v = strings.TrimSpace(v)
	switch c {
	case CategoryLink, CategoryKeyword, CategoryUPIID:
		return strings.ToLower(v)
	case CategoryPhone, CategoryCard, CategoryBankAcct:
		var b strings.Builder
		for _, r := range v {
			if r == ' ' || r == '-' {
				continue
			}
			b.WriteRune(r)
		}
		return b.String()
	}
	return v
}

// Stage is the agent's position in its bounded conversational escalation
// sequence. Stages only ever advance; see the agent package for the
// transition rules.
type Stage int

const (
	StageInitial Stage = iota
	StageEngagement
	StageInformationSeeking
	StageVerification
	StageAdvanced
)

var stageNames = map[Stage]string{
	StageInitial:            "INITIAL",
	StageEngagement:         "ENGAGEMENT",
	StageInformationSeeking: "INFORMATION_SEEKING",
	StageVerification:       "VERIFICATION",
	StageAdvanced:           "ADVANCED",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STAGE(%d)", int(s))
}

// Valid reports whether s is one of the five defined stages.
func (s Stage) Valid() bool {
	_, ok := stageNames[s]
	return ok
}

// MarshalJSON renders the stage by name.
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
