package models

import "testing"

func TestValidDomainFormat(t *testing.T) {
	tests := []struct {
		name   string
		domain string
		want   bool
	}{
		{"simple", "example.com", true},
		{"subdomain", "mail.example.com", true},
		{"hyphen inside label", "my-site.co.uk", true},
		{"uppercase", "Example.COM", true},
		{"underscore", "invalid_domain", false},
		{"underscore with dot", "bad_name.com", false},
		{"single label", "localhost", false},
		{"leading hyphen", "-bad.com", false},
		{"empty label", "example..com", false},
		{"trailing dot", "example.com.", false},
		{"empty", "", false},
		{"space", "exa mple.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidDomainFormat(tt.domain); got != tt.want {
				t.Errorf("ValidDomainFormat(%q) = %v, want %v", tt.domain, got, tt.want)
			}
		})
	}
}

func TestNormalizeDomain(t *testing.T) {
	if got := NormalizeDomain("  Mail.Example.COM \t"); got != "mail.example.com" {
		t.Fatalf("expected mail.example.com, got %q", got)
	}
}

func TestSummarize(t *testing.T) {
	results := []ValidationResult{
		{Classification: ClassValid},
		{Classification: ClassValid},
		{Classification: ClassRisky},
		{Classification: ClassInvalid, ParkedDomain: true},
		{Classification: ClassInvalid},
	}

	s := Summarize(results)
	if s.Total != 5 {
		t.Fatalf("expected total 5, got %d", s.Total)
	}
	if s.Valid != 2 || s.Risky != 1 || s.Invalid != 2 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.Parked != 1 {
		t.Fatalf("expected 1 parked, got %d", s.Parked)
	}

	sum := 0
	for _, c := range Classifications {
		sum += s.Count(c)
	}
	if sum != s.Total {
		t.Fatalf("per-class counts sum to %d, want %d", sum, s.Total)
	}
}
