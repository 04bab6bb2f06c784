package parking

import (
	"errors"
	"strings"
	"testing"
)

func newTestDetector(t *testing.T, c Corpus) *Detector {
	t.Helper()
	d, err := NewDetector(c, nil)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	return d
}

func page(url, html string) Page {
	return Page{URL: url, Body: []byte(html), ContentType: "text/html; charset=utf-8"}
}

const legitPage = `<html><head><title>Acme Corp - Industrial Widgets</title></head>
<body>
<nav><a href="/">Home</a><a href="/products">Products</a><a href="/contact">Contact</a></nav>
<h1>Industrial widgets since 1974</h1>
<p>Acme Corp manufactures precision widgets for the aerospace and automotive
industries. Our engineering team works with customers to design parts that
meet demanding tolerances. Every shipment is inspected before it leaves our
facility, and our support staff is available around the clock. Our domain name
has been the same for twenty years, and so has our commitment to quality.</p>
</body></html>`

func TestDetect(t *testing.T) {
	manyLinks := strings.Repeat(`<a href="/x">x</a>`, 16)

	tests := []struct {
		name       string
		page       Page
		wantParked bool
		wantReason string
	}{
		{
			name:       "redirect to parking service",
			page:       page("https://www.sedoparking.com/example.com", legitPage),
			wantParked: true,
			wantReason: "Redirects to parking service",
		},
		{
			name:       "title keyword",
			page:       page("https://example.com/", `<html><head><title>Domain Parking</title></head><body>hello</body></html>`),
			wantParked: true,
			wantReason: "Contains parking keyword in title: 'domain parking'",
		},
		{
			name: "body keyword density",
			page: page("https://example.com/", `<html><head><title>Welcome</title></head><body>
				<p>This domain is for sale. Buy this domain today. Contact our domain broker.</p></body></html>`),
			wantParked: true,
			wantReason: "Contains multiple parking keywords (3)",
		},
		{
			name:       "single body keyword is not enough",
			page:       page("https://acme.example/", legitPage),
			wantParked: false,
			wantReason: "Not parked",
		},
		{
			name: "short body with many links",
			page: page("https://example.com/", `<html><head><title>Links</title></head><body><p>domain</p>`+
				manyLinks+`</body></html>`),
			wantParked: true,
			wantReason: "Detected parking page pattern",
		},
		{
			name: "placeholder asset host in markup",
			page: page("https://example.com/", `<html><head><title>Welcome</title></head><body>
				<img src="https://img1.wsimg.com/parking-lander/static/logo.png"><p>Welcome</p></body></html>`),
			wantParked: true,
			wantReason: "Detected parking page pattern",
		},
		{
			name: "whois anchor with short body",
			page: page("https://example.com/", `<html><head><title>Info</title></head><body>
				<a href="/whois">Whois   Lookup</a></body></html>`),
			wantParked: true,
			wantReason: "Detected parking page pattern",
		},
		{
			name: "registrar under construction template",
			page: page("https://example.com/", `<html><head><title>Under Construction</title></head><body>
				<p>This site is hosted by GoDaddy.</p></body></html>`),
			wantParked: true,
			wantReason: "Detected parking page pattern",
		},
		{
			name: "live site mentioning coming soon and a site builder",
			page: page("https://bakery.example/", `<html><head><title>Rosie's Bakery</title></head><body>
				<h1>Fresh bread every morning</h1>
				<p>Online ordering coming soon!</p>
				<footer>Powered by GoDaddy Website Builder</footer></body></html>`),
			wantParked: false,
			wantReason: "Not parked",
		},
		{
			name: "registrar name inside a longer word",
			page: page("https://example.com/", `<html><head><title>Under Construction</title></head><body>
				<p>Contact us at support@username.com while we rebuild.</p></body></html>`),
			wantParked: false,
			wantReason: "Not parked",
		},
		{
			name: "script content is not body text",
			page: page("https://acme.example/", `<html><head><title>Acme</title>
				<script>var a = "domain is for sale buy this domain domain broker";</script></head>
				<body><p>Industrial widgets and precision parts for every application.</p></body></html>`),
			wantParked: false,
			wantReason: "Not parked",
		},
	}

	d := newTestDetector(t, CorpusV2())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := d.Detect("example.com", tt.page)
			if v.IsParked != tt.wantParked {
				t.Fatalf("IsParked = %v, want %v (reason %q)", v.IsParked, tt.wantParked, v.Reason)
			}
			if v.Reason != tt.wantReason {
				t.Fatalf("Reason = %q, want %q", v.Reason, tt.wantReason)
			}
		})
	}
}

func TestCorpusGenerationsDiffer(t *testing.T) {
	p := page("https://example.com/", `<html><head><title>Hello</title></head><body>
		<p>Coming soon! Register now for updates.</p></body></html>`)

	v1 := newTestDetector(t, CorpusV1()).Detect("example.com", p)
	if !v1.IsParked {
		t.Fatalf("v1 corpus should flag coming soon + register, got %q", v1.Reason)
	}

	v2 := newTestDetector(t, CorpusV2()).Detect("example.com", p)
	if v2.IsParked {
		t.Fatalf("v2 corpus requires a domain mention as well, got %q", v2.Reason)
	}
}

func TestInjectedCorpus(t *testing.T) {
	c := Corpus{
		Version:              "test",
		Keywords:             []string{"acme placeholder"},
		BodyKeywordThreshold: 1,
	}
	d := newTestDetector(t, c)

	v := d.Detect("example.com", page("https://example.com/",
		`<html><head><title>Hi</title></head><body>acme placeholder</body></html>`))
	if !v.IsParked {
		t.Fatalf("expected injected keyword to park the page, got %q", v.Reason)
	}

	v = d.Detect("example.com", page("https://sedoparking.com/",
		`<html><head><title>Hi</title></head><body>nothing here</body></html>`))
	if v.IsParked {
		t.Fatalf("injected corpus has no URL patterns, got %q", v.Reason)
	}
}

func TestWithExtrasDoesNotMutateBase(t *testing.T) {
	base := CorpusV2()
	n := len(base.Keywords)

	extended := base.WithExtras([]string{"brand new phrase"}, []string{"newparking.example"}, nil)
	if len(base.Keywords) != n {
		t.Fatalf("base corpus mutated: %d keywords, want %d", len(base.Keywords), n)
	}
	if len(extended.Keywords) != n+1 {
		t.Fatalf("extended corpus has %d keywords, want %d", len(extended.Keywords), n+1)
	}

	d := newTestDetector(t, extended)
	v := d.Detect("example.com", page("https://newparking.example/lander", legitPage))
	if !v.IsParked {
		t.Fatalf("expected extra URL pattern to match")
	}
}

func TestWithBodyKeywordThreshold(t *testing.T) {
	c := CorpusV2().WithBodyKeywordThreshold(5)
	if c.BodyKeywordThreshold != 5 {
		t.Fatalf("threshold = %d, want 5", c.BodyKeywordThreshold)
	}
	if CorpusV2().WithBodyKeywordThreshold(0).BodyKeywordThreshold != 3 {
		t.Fatal("non-positive threshold should keep the default")
	}
}

func TestNewDetectorRejectsUnknownRule(t *testing.T) {
	c := CorpusV2()
	c.Rules = append(c.Rules, "no-such-rule")
	if _, err := NewDetector(c, nil); err == nil {
		t.Fatal("expected error for unknown rule")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestDigestReportsReadFailure(t *testing.T) {
	if _, err := digestFrom(failingReader{}, "text/html", ""); err == nil {
		t.Fatal("expected digest to fail on unreadable body")
	}
}

func TestKnownRulesCoverShippedCorpora(t *testing.T) {
	known := KnownRules()
	for i := 1; i < len(known); i++ {
		if known[i-1] > known[i] {
			t.Fatalf("KnownRules not sorted: %v", known)
		}
	}

	set := make(map[string]bool, len(known))
	for _, name := range known {
		set[name] = true
	}
	for _, c := range []Corpus{CorpusV1(), CorpusV2()} {
		for _, r := range c.Rules {
			if !set[r] {
				t.Errorf("corpus %s enables unknown rule %q", c.Version, r)
			}
		}
	}
}

func TestContainsToken(t *testing.T) {
	names := []string{"name.com", "ionos", "godaddy"}
	tests := []struct {
		text string
		want string
	}{
		{"registered at name.com today", "name.com"},
		{"mail username.com for help", ""},
		{"hosted by ionos.", "ionos"},
		{"questions on conditionos", ""},
		{"(godaddy)", "godaddy"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := containsToken(tt.text, names); got != tt.want {
			t.Errorf("containsToken(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
