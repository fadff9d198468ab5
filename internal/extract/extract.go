// Package extract recognizes structured artifacts (payment handles, account
// numbers, links, phone numbers, card numbers, keywords) in free text.
// Extraction is stateless and deterministic; the same text always yields the
// same result.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/decoykit/scamtrap/internal/domain"
)

// DefaultKeywords is the stock suspicious keyword list. Overridable via
// configuration.
var DefaultKeywords = []string{
	"urgent", "immediate", "verify", "confirm", "suspended",
	"blocked", "freeze", "expire", "limited", "exclusive",
	"prize", "winner", "lottery", "bonus", "reward",
	"click", "download", "install", "update", "payment",
	"required", "deposit", "transfer", "otp", "cvv", "pin",
}

var (
	upiPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b[a-zA-Z0-9._\-]{2,}@[a-zA-Z][a-zA-Z0-9.\-]+\b`),
	}
	bankPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{10,18}\b`),
		regexp.MustCompile(`\b[A-Z]{4}\d{7,15}\b`),
		regexp.MustCompile(`(?i)\baccount\s*#?\s*[:\-]?\s*\d+`),
		regexp.MustCompile(`(?i)\ba/c\s*[:\-]?\s*\d+`),
	}
	urlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`https?://[^\s]+`),
		regexp.MustCompile(`\bwww\.[^\s]+`),
	}
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+91[-\s]?\d{5}[-\s]?\d{5}`),
		regexp.MustCompile(`\+\d{10,15}`),
		regexp.MustCompile(`\b\d{10}\b`),
	}
	cardPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
		regexp.MustCompile(`\b\d{13,19}\b`),
	}
)

// Extractor applies a fixed ordered set of pattern categories over raw text.
// Safe for concurrent use.
type Extractor struct {
	keywords []string
}

// New creates an Extractor with the given suspicious keyword list. An empty
// list falls back to DefaultKeywords.
func New(keywords []string) *Extractor {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	return &Extractor{keywords: keywords}
}

// Extract scans text for all artifact categories and returns the
// deduplicated findings. An empty result is a normal outcome, not an error;
// the only failure is structurally malformed (non-UTF-8) input.
//
// A token matching more than one category is kept in every category it
// matches; extraction is not mutually exclusive.
func (e *Extractor) Extract(text string) (domain.Intelligence, error) {
	var intel domain.Intelligence
	if !utf8.ValidString(text) {
		return intel, domain.ErrInvalidInput("text", "payload is not valid UTF-8 text")
	}
	if strings.TrimSpace(text) == "" {
		return intel, nil
	}

	collect(&intel, domain.CategoryUPIID, upiPatterns, text)
	collect(&intel, domain.CategoryBankAcct, bankPatterns, text)
	collect(&intel, domain.CategoryLink, urlPatterns, text)
	collect(&intel, domain.CategoryPhone, phonePatterns, text)
	collect(&intel, domain.CategoryCard, cardPatterns, text)

	lower := strings.ToLower(text)
	for _, kw := range e.keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			intel.Add(domain.CategoryKeyword, strings.ToLower(kw))
		}
	}

	return intel, nil
}

func collect(intel *domain.Intelligence, c domain.Category, patterns []*regexp.Regexp, text string) {
	for _, p := range patterns {
		for _, m := range p.FindAllString(text, -1) {
			m = strings.TrimRight(m, ".,;:!?)")
			if c == domain.CategoryLink {
				m = strings.ToLower(m)
			}
			intel.Add(c, m)
		}
	}
}
