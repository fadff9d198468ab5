package extract

import (
	"errors"
	"reflect"
	"testing"

	"github.com/decoykit/scamtrap/internal/domain"
)

func TestExtract_UPIIDs(t *testing.T) {
	e := New(nil)

	intel, err := e.Extract("Please send money to user@paytm and scammer@phonepe")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	wantValues(t, intel.UPIIDs, "user@paytm", "scammer@phonepe")
}

func TestExtract_UPIScenario(t *testing.T) {
	e := New(nil)

	intel, err := e.Extract("Send ₹500 to verify@upi to avoid suspension")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	wantValues(t, intel.UPIIDs, "verify@upi")
}

func TestExtract_URLs(t *testing.T) {
	e := New(nil)

	intel, err := e.Extract("Visit https://fake-bank.com/verify or www.scam-site.com now")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	wantValues(t, intel.PhishingLinks, "https://fake-bank.com/verify", "www.scam-site.com")
}

func TestExtract_PhoneNumbers(t *testing.T) {
	e := New(nil)

	intel, err := e.Extract("Call me at +919876543210 or 9876543210 for details")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	found := false
	for _, p := range intel.PhoneNumbers {
		if p == "+919876543210" {
			found = true
		}
	}
	if !found {
		t.Errorf("PhoneNumbers = %v, want to contain +919876543210", intel.PhoneNumbers)
	}
	if len(intel.PhoneNumbers) < 2 {
		t.Errorf("PhoneNumbers = %v, want at least 2 entries", intel.PhoneNumbers)
	}
}

func TestExtract_CardAndBankOverlap(t *testing.T) {
	e := New(nil)

	// A 16-digit run is both a bank-account-shaped and a card-shaped token.
	// Extraction keeps it in every category whose pattern matches.
	intel, err := e.Extract("Your account 1234567890123456 needs verification")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(intel.BankAccounts) == 0 {
		t.Errorf("BankAccounts empty, want the digit run retained")
	}
	if len(intel.CardNumbers) == 0 {
		t.Errorf("CardNumbers empty, want the digit run retained")
	}
}

func TestExtract_DedupNormalized(t *testing.T) {
	e := New(nil)

	tests := []struct {
		name string
		text string
		get  func(domain.Intelligence) []string
		want int
	}{
		{
			name: "upi ids dedup case-insensitively",
			text: "pay user@paytm or USER@paytm",
			get:  func(in domain.Intelligence) []string { return in.UPIIDs },
			want: 1,
		},
		{
			name: "card numbers dedup across separator formats",
			text: "card 1234-5678-9012-3456 same as 1234 5678 9012 3456",
			get:  func(in domain.Intelligence) []string { return in.CardNumbers },
			want: 1,
		},
		{
			name: "urls dedup case-insensitively",
			text: "go to https://evil.example/a and https://EVIL.EXAMPLE/a",
			get:  func(in domain.Intelligence) []string { return in.PhishingLinks },
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intel, err := e.Extract(tt.text)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got := tt.get(intel); len(got) != tt.want {
				t.Errorf("got %v, want %d unique value(s)", got, tt.want)
			}
		})
	}
}

func TestExtract_Keywords(t *testing.T) {
	e := New(nil)

	intel, err := e.Extract("URGENT: verify your OTP immediately to claim the prize")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	for _, want := range []string{"urgent", "verify", "otp", "prize"} {
		found := false
		for _, kw := range intel.SuspiciousKeywords {
			if kw == want {
				found = true
			}
		}
		if !found {
			t.Errorf("SuspiciousKeywords = %v, want to contain %q", intel.SuspiciousKeywords, want)
		}
	}
}

func TestExtract_EmptyText(t *testing.T) {
	e := New(nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		intel, err := e.Extract(text)
		if err != nil {
			t.Fatalf("Extract(%q) error = %v", text, err)
		}
		if intel.Count() != 0 {
			t.Errorf("Extract(%q) = %+v, want empty result", text, intel)
		}
	}
}

func TestExtract_NoMatchIsNotError(t *testing.T) {
	e := New(nil)

	intel, err := e.Extract("hello there, lovely weather today")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if intel.Count() != 0 {
		t.Errorf("Extract() = %+v, want empty result", intel)
	}
}

func TestExtract_InvalidUTF8(t *testing.T) {
	e := New(nil)

	_, err := e.Extract(string([]byte{0xff, 0xfe, 0xfd}))
	if err == nil {
		t.Fatal("Extract() error = nil, want InvalidInputError")
	}
	var invalid *domain.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Errorf("Extract() error = %T, want *domain.InvalidInputError", err)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := New(nil)
	text := "URGENT: pay fraud@upi, call +919876543210, visit https://evil.example/verify"

	first, err := e.Extract(text)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	second, err := e.Extract(text)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated extraction differs:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func wantValues(t *testing.T, got []string, want ...string) {
	t.Helper()
	for _, w := range want {
		found := false
		for _, g := range got {
			if g == w {
				found = true
			}
		}
		if !found {
			t.Errorf("got %v, want to contain %q", got, w)
		}
	}
}
