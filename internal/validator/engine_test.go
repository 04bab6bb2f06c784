package validator

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/hakim/domainvet/internal/liveness"
	"github.com/hakim/domainvet/internal/models"
)

type stubDNS struct {
	evidence map[string]models.DNSEvidence
	calls    int
	panicOn  string
}

func (s *stubDNS) Check(_ context.Context, domain string) models.DNSEvidence {
	s.calls++
	if domain == s.panicOn {
		panic("resolver exploded")
	}
	ev := s.evidence[domain]
	ev.Domain = domain
	return ev
}

type stubLive struct {
	outcomes map[string]models.LivenessOutcome
	calls    int
}

func (s *stubLive) Probe(_ context.Context, domain string) models.LivenessOutcome {
	s.calls++
	if out, ok := s.outcomes[domain]; ok {
		return out
	}
	return models.Dead(liveness.DeadDetail)
}

func TestClassify(t *testing.T) {
	live := models.Live(models.ViaHTTPS, "HTTPS: 200")
	dead := models.Dead(liveness.DeadDetail)
	parked := models.Parked("Redirects to parking service")
	escalated := models.LivenessOutcome{
		Kind:       models.LivenessSubdomainDeadRootLive,
		Detail:     "Subdomain is dead, but root domain example.com is live",
		RootDomain: "example.com",
	}

	tests := []struct {
		name       string
		domain     string
		ev         *models.DNSEvidence
		lv         *models.LivenessOutcome
		policy     Policy
		wantClass  models.Classification
		wantLive   bool
		wantParked bool
		wantReason string
	}{
		{"bad format", "invalid_domain", nil, nil, Policy{}, models.ClassInvalid, false, false, ReasonInvalidFormat},
		{"no records", "example.com", &models.DNSEvidence{}, nil, Policy{}, models.ClassInvalid, false, false, ReasonNoRecords},
		{"parking mx", "foo.com", &models.DNSEvidence{HasMX: true, ParkingMXHost: "mx.sedoparking.com"}, nil, Policy{},
			models.ClassInvalid, false, true, "Domain uses parking MX: mx.sedoparking.com"},
		{"parked page", "example.com", &models.DNSEvidence{HasA: true}, &parked, Policy{},
			models.ClassInvalid, false, true, "Redirects to parking service"},
		{"dead with mx and risky tier", "bar.com", &models.DNSEvidence{HasMX: true}, &dead, Policy{RiskyTier: true},
			models.ClassRisky, false, false, ReasonRiskyMX},
		{"dead with mx without risky tier", "bar.com", &models.DNSEvidence{HasMX: true}, &dead, Policy{},
			models.ClassInvalid, false, false, liveness.DeadDetail},
		{"dead without mx", "bar.com", &models.DNSEvidence{HasA: true}, &dead, Policy{RiskyTier: true},
			models.ClassInvalid, false, false, liveness.DeadDetail},
		{"live", "example.com", &models.DNSEvidence{HasA: true}, &live, Policy{},
			models.ClassValid, true, false, ReasonPassed},
		{"root escalation", "mail.example.com", &models.DNSEvidence{HasA: true}, &escalated, Policy{RiskyTier: true},
			models.ClassValid, false, false, escalated.Detail},
		{"missing liveness counts as dead", "example.com", &models.DNSEvidence{HasA: true}, nil, Policy{},
			models.ClassInvalid, false, false, liveness.DeadDetail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.domain, tt.ev, tt.lv, tt.policy)
			if res.Classification != tt.wantClass {
				t.Errorf("Classification = %s, want %s", res.Classification, tt.wantClass)
			}
			if res.SiteLive != tt.wantLive {
				t.Errorf("SiteLive = %v, want %v", res.SiteLive, tt.wantLive)
			}
			if res.ParkedDomain != tt.wantParked {
				t.Errorf("ParkedDomain = %v, want %v", res.ParkedDomain, tt.wantParked)
			}
			if res.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", res.Reason, tt.wantReason)
			}
		})
	}
}

func TestValidateScenarios(t *testing.T) {
	dns := &stubDNS{evidence: map[string]models.DNSEvidence{
		"example.com":      {HasA: true},
		"foo.com":          {HasMX: true, ParkingMXHost: "mx.sedoparking.com"},
		"bar.com":          {HasMX: true},
		"mail.example.com": {HasA: true},
		"parked.com":       {HasA: true},
	}}
	live := liveness.NewEscalator(&stubLive{outcomes: map[string]models.LivenessOutcome{
		"example.com": models.Live(models.ViaHTTPS, "HTTPS: 200"),
		"parked.com":  models.Parked("Contains parking keyword in title: 'domain parking'"),
	}}, false, nil)

	e := NewEngine(dns, live, Policy{RiskyTier: true}, nil)

	tests := []struct {
		domain     string
		wantClass  models.Classification
		wantLive   bool
		wantParked bool
		wantReason string
	}{
		{"invalid_domain", models.ClassInvalid, false, false, ReasonInvalidFormat},
		{"example.com", models.ClassValid, true, false, ReasonPassed},
		{"foo.com", models.ClassInvalid, false, true, "Domain uses parking MX: mx.sedoparking.com"},
		{"bar.com", models.ClassRisky, false, false, ReasonRiskyMX},
		{"mail.example.com", models.ClassValid, false, false, "Subdomain is dead, but root domain example.com is live"},
		{"parked.com", models.ClassInvalid, false, true, "Contains parking keyword in title: 'domain parking'"},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			res := e.Validate(context.Background(), tt.domain)
			if res.Classification != tt.wantClass || res.SiteLive != tt.wantLive || res.ParkedDomain != tt.wantParked {
				t.Fatalf("got %s live=%v parked=%v, want %s live=%v parked=%v",
					res.Classification, res.SiteLive, res.ParkedDomain, tt.wantClass, tt.wantLive, tt.wantParked)
			}
			if res.Reason != tt.wantReason {
				t.Fatalf("Reason = %q, want %q", res.Reason, tt.wantReason)
			}
			if res.CheckedAt.IsZero() {
				t.Fatal("CheckedAt not set")
			}
		})
	}
}

func TestValidateNormalizes(t *testing.T) {
	dns := &stubDNS{evidence: map[string]models.DNSEvidence{"example.com": {HasA: true}}}
	live := &stubLive{outcomes: map[string]models.LivenessOutcome{"example.com": models.Live(models.ViaHTTP, "HTTP: 200")}}

	res := NewEngine(dns, live, Policy{}, nil).Validate(context.Background(), "  Example.COM \t")
	if res.Domain != "example.com" || res.Classification != models.ClassValid {
		t.Fatalf("got %q %s, want example.com Valid", res.Domain, res.Classification)
	}
}

func TestValidateSkipsNetworkForBadFormat(t *testing.T) {
	dns := &stubDNS{}
	live := &stubLive{}

	NewEngine(dns, live, Policy{}, nil).Validate(context.Background(), "not a domain")
	if dns.calls != 0 || live.calls != 0 {
		t.Fatalf("dns calls = %d, probe calls = %d, want none", dns.calls, live.calls)
	}
}

func TestValidateSkipsProbeWhenDNSDecides(t *testing.T) {
	dns := &stubDNS{evidence: map[string]models.DNSEvidence{
		"foo.com": {HasMX: true, ParkingMXHost: "mx.sedoparking.com"},
	}}
	live := &stubLive{}
	e := NewEngine(dns, live, Policy{}, nil)

	e.Validate(context.Background(), "foo.com")
	e.Validate(context.Background(), "norecords.com")

	if live.calls != 0 {
		t.Fatalf("probe calls = %d, want 0", live.calls)
	}
}

func TestValidateRecoversPanic(t *testing.T) {
	dns := &stubDNS{panicOn: "boom.com"}
	res := NewEngine(dns, &stubLive{}, Policy{}, nil).Validate(context.Background(), "boom.com")

	if res.Classification != models.ClassInvalid {
		t.Fatalf("Classification = %s, want Invalid", res.Classification)
	}
	if res.Reason != "Error checking records: resolver exploded" {
		t.Fatalf("Reason = %q", res.Reason)
	}
}

func TestValidateIdempotent(t *testing.T) {
	dns := &stubDNS{evidence: map[string]models.DNSEvidence{"bar.com": {HasMX: true, MXHosts: []string{"mx.bar.com"}}}}
	e := NewEngine(dns, &stubLive{}, Policy{RiskyTier: true}, nil)
	e.now = func() time.Time { return time.Unix(0, 0) }

	first := e.Validate(context.Background(), "bar.com")
	second := e.Validate(context.Background(), "bar.com")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ:\n%+v\n%+v", first, second)
	}
}

// cancelingDNS cancels the run while the lookup is in flight and reports
// no records, the way a resolver cut off mid-query does.
type cancelingDNS struct{ cancel context.CancelFunc }

func (c cancelingDNS) Check(_ context.Context, domain string) models.DNSEvidence {
	c.cancel()
	return models.DNSEvidence{Domain: domain}
}

func TestValidateCancelled(t *testing.T) {
	tests := []struct {
		name  string
		setup func() (context.Context, EvidenceSource)
	}{
		{
			name: "cancelled before lookup",
			setup: func() (context.Context, EvidenceSource) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, &stubDNS{evidence: map[string]models.DNSEvidence{"example.com": {HasA: true}}}
			},
		},
		{
			name: "cancelled during lookup",
			setup: func() (context.Context, EvidenceSource) {
				ctx, cancel := context.WithCancel(context.Background())
				return ctx, cancelingDNS{cancel: cancel}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, dns := tt.setup()
			live := &stubLive{}

			res := NewEngine(dns, live, Policy{}, nil).Validate(ctx, "example.com")
			if res.Classification != models.ClassInvalid {
				t.Fatalf("Classification = %s, want Invalid", res.Classification)
			}
			if res.Reason != ReasonErrorPrefix+context.Canceled.Error() {
				t.Fatalf("Reason = %q", res.Reason)
			}
			if res.CheckedAt.IsZero() {
				t.Fatal("CheckedAt not set")
			}
			if live.calls != 0 {
				t.Fatalf("probe calls = %d, want 0", live.calls)
			}
			if s, ok := dns.(*stubDNS); ok && s.calls != 0 {
				t.Fatalf("dns calls = %d, want 0", s.calls)
			}
		})
	}
}
