package fingerprint

import (
	"regexp"
	"testing"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestComputeDeterministic(t *testing.T) {
	a := Compute("2024-03-15", "1234.50", "AMAZON PAY INDIA", 42)
	b := Compute("2024-03-15", "1234.50", "AMAZON PAY INDIA", 42)
	if a != b {
		t.Fatalf("same input produced different digests: %s vs %s", a, b)
	}
	if !hexDigest.MatchString(a) {
		t.Fatalf("digest is not 64 hex chars: %q", a)
	}
}

func TestComputeAmountFormatsHashIdentically(t *testing.T) {
	variants := []string{"10", "10.0", "10.00", " 10.00 "}
	want := Compute("2024-01-01", variants[0], "STARBUCKS", 1)
	for _, v := range variants[1:] {
		if got := Compute("2024-01-01", v, "STARBUCKS", 1); got != want {
			t.Errorf("amount %q hashed differently", v)
		}
	}
}

func TestComputeUserScoping(t *testing.T) {
	a := Compute("2024-01-01", "10.00", "STARBUCKS", 1)
	b := Compute("2024-01-01", "10.00", "STARBUCKS", 2)
	if a == b {
		t.Fatal("different users should produce different fingerprints")
	}
}

func TestComputeDescriptionNoiseInvariance(t *testing.T) {
	a := Compute("2024-01-01", "10.00", "DR  AMAZON---PAY  CR", 1)
	b := Compute("2024-01-01", "10.00", "amazon pay", 1)
	if a != b {
		t.Fatal("bank noise in the description should not change the fingerprint")
	}
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234.5", "1234.50"},
		{"1234.50", "1234.50"},
		{"0", "0.00"},
		{"  99.999 ", "100.00"},
		{"-25.5", "-25.50"},
		{"not-a-number", "not-a-number"},
		{"  garbage ", "garbage"},
	}
	for _, tt := range tests {
		if got := NormalizeAmount(tt.in); got != tt.want {
			t.Errorf("NormalizeAmount(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeVendor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AMAZON PAY INDIA", "amazon pay india"},
		{"DR AMAZON PAY", "amazon pay"},
		{"AMAZON PAY CREDIT", "amazon pay"},
		{"UPI/ZOMATO/1234", "upi zomato 1234"},
		{"  Netflix.com  ", "netflix com"},
		{"DR CR", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeVendor(tt.in); got != tt.want {
			t.Errorf("NormalizeVendor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
