// Package detect scores a single message for scam likelihood. The detector
// is pure: all cross-turn context arrives through the caller-supplied prior
// confidence history, and nothing is retained between calls.
package detect

import (
	"regexp"
	"strings"

	"github.com/decoykit/scamtrap/internal/domain"
)

// Signal names, reported in matchedSignals in this declaration order.
const (
	SignalKeyword   = "keyword_match"
	SignalUrgency   = "urgency_tactic"
	SignalFinancial = "financial_threat"
	SignalPhishing  = "phishing_attempt"
	SignalURL       = "suspicious_link"
	SignalPhone     = "phone_number"
)

// Weights holds the contribution of each signal. KeywordPer applies per
// distinct matched keyword, capped at KeywordCap.
type Weights struct {
	KeywordPer float64 `koanf:"keyword_per"`
	KeywordCap float64 `koanf:"keyword_cap"`
	Urgency    float64 `koanf:"urgency"`
	Financial  float64 `koanf:"financial"`
	Phishing   float64 `koanf:"phishing"`
	URL        float64 `koanf:"url"`
	Phone      float64 `koanf:"phone"`
}

// DefaultWeights are the tuned defaults. They are configuration, not law.
func DefaultWeights() Weights {
	return Weights{
		KeywordPer: 0.15,
		KeywordCap: 0.45,
		Urgency:    0.25,
		Financial:  0.30,
		Phishing:   0.20,
		URL:        0.15,
		Phone:      0.10,
	}
}

// DefaultThreshold is the confidence at or above which a message is
// classified as a scam.
const DefaultThreshold = 0.4

// DefaultEscalationBonus is added when the recent prior history is already
// trending at or above the threshold (sustained pressure across turns).
const DefaultEscalationBonus = 0.05

// DefaultKeywords is the stock scam keyword list, matched on word
// boundaries.
var DefaultKeywords = []string{
	"blocked", "verify", "urgent", "upi", "account",
	"suspended", "kyc", "click", "bank", "immediately",
	"limited time", "offer expires", "prize", "winner",
	"lottery", "congratulations", "payment required",
	"act now", "don't miss", "exclusive", "bonus",
	"reward", "claim", "expire", "suspend", "freeze",
	"debit card", "credit card", "cvv", "otp", "pin",
}

var (
	urgencyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\burgent\b`),
		regexp.MustCompile(`\bimmediately\b`),
		regexp.MustCompile(`\bright now\b`),
		regexp.MustCompile(`\blast chance\b`),
		regexp.MustCompile(`\blimited time\b`),
		regexp.MustCompile(`\btoday only\b`),
		regexp.MustCompile(`\bact now\b`),
	}
	financialPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\baccount.*block`),
		regexp.MustCompile(`\baccount.*suspend`),
		regexp.MustCompile(`\bverify.*account\b`),
		regexp.MustCompile(`\bpayment.*required\b`),
		regexp.MustCompile(`\bdeposit.*money\b`),
		regexp.MustCompile(`\btransfer.*fund`),
		regexp.MustCompile(`\bavoid.*suspension\b`),
		regexp.MustCompile(`\blegal action\b`),
	}
	phishingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bclick.*link\b`),
		regexp.MustCompile(`\bclick here\b`),
		regexp.MustCompile(`\bdownload.*app\b`),
		regexp.MustCompile(`\binstall.*software\b`),
		regexp.MustCompile(`\bupdate.*details\b`),
		regexp.MustCompile(`\bconfirm.*information\b`),
	}
	urlPattern   = regexp.MustCompile(`https?://[^\s]+|\bwww\.[^\s]+`)
	hostPattern  = regexp.MustCompile(`https?://([^/\s]+)|\bwww\.([^/\s]+)`)
	phonePattern = regexp.MustCompile(`\+?\d{10,}`)
)

// Config tunes the detector. Zero values fall back to the defaults.
type Config struct {
	Keywords        []string
	AllowedDomains  []string
	Weights         Weights
	Threshold       float64
	EscalationBonus float64
}

// Detector classifies messages. Safe for concurrent use.
type Detector struct {
	keywords        []*regexp.Regexp
	keywordNames    []string
	allowedDomains  []string
	weights         Weights
	threshold       float64
	escalationBonus float64
}

// New builds a Detector from cfg, applying defaults for unset fields.
func New(cfg Config) *Detector {
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultKeywords
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.EscalationBonus == 0 {
		cfg.EscalationBonus = DefaultEscalationBonus
	}

	d := &Detector{
		allowedDomains:  cfg.AllowedDomains,
		weights:         cfg.Weights,
		threshold:       cfg.Threshold,
		escalationBonus: cfg.EscalationBonus,
	}
	for _, kw := range cfg.Keywords {
		d.keywords = append(d.keywords, regexp.MustCompile(`\b`+regexp.QuoteMeta(strings.ToLower(kw))+`\b`))
		d.keywordNames = append(d.keywordNames, strings.ToLower(kw))
	}
	return d
}

// Threshold returns the configured classification threshold.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Detect scores a message against all signals and returns the verdict.
// priorHistory is the session's confidence sequence from earlier turns, used
// only to escalate sustained pressure; it contributes no named signal.
// Empty or whitespace-only text yields a zero result, never an error.
func (d *Detector) Detect(msg domain.Message, priorHistory []float64) domain.DetectionResult {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return domain.DetectionResult{MatchedSignals: []string{}}
	}
	lower := strings.ToLower(text)

	score := 0.0
	signals := []string{}

	if kw := d.keywordScore(lower); kw > 0 {
		score += kw
		signals = append(signals, SignalKeyword)
	}
	if matchAny(urgencyPatterns, lower) {
		score += d.weights.Urgency
		signals = append(signals, SignalUrgency)
	}
	if matchAny(financialPatterns, lower) {
		score += d.weights.Financial
		signals = append(signals, SignalFinancial)
	}
	if matchAny(phishingPatterns, lower) {
		score += d.weights.Phishing
		signals = append(signals, SignalPhishing)
	}
	if d.suspiciousURL(text) {
		score += d.weights.URL
		signals = append(signals, SignalURL)
	}
	if phonePattern.MatchString(text) {
		score += d.weights.Phone
		signals = append(signals, SignalPhone)
	}

	if d.escalating(priorHistory) {
		score += d.escalationBonus
	}

	confidence := clamp01(score)
	return domain.DetectionResult{
		IsScam:         confidence >= d.threshold,
		Confidence:     confidence,
		MatchedSignals: signals,
	}
}

func (d *Detector) keywordScore(lower string) float64 {
	hits := 0
	for _, p := range d.keywords {
		if p.MatchString(lower) {
			hits++
		}
	}
	score := float64(hits) * d.weights.KeywordPer
	if score > d.weights.KeywordCap {
		score = d.weights.KeywordCap
	}
	return score
}

// suspiciousURL reports whether text contains a URL whose host is not
// covered by the allowlist.
func (d *Detector) suspiciousURL(text string) bool {
	if !urlPattern.MatchString(text) {
		return false
	}
	if len(d.allowedDomains) == 0 {
		return true
	}
	for _, m := range hostPattern.FindAllStringSubmatch(text, -1) {
		host := m[1]
		if host == "" {
			host = m[2]
		}
		host = strings.ToLower(host)
		if !d.hostAllowed(host) {
			return true
		}
	}
	return false
}

func (d *Detector) hostAllowed(host string) bool {
	for _, allowed := range d.allowedDomains {
		allowed = strings.ToLower(allowed)
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// escalating reports whether at least two of the last three prior
// confidences already reached the threshold.
func (d *Detector) escalating(priorHistory []float64) bool {
	if len(priorHistory) == 0 {
		return false
	}
	recent := priorHistory
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	hot := 0
	for _, c := range recent {
		if c >= d.threshold {
			hot++
		}
	}
	return hot >= 2
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
