package parking

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/hakim/domainvet/internal/logger"
	"github.com/hakim/domainvet/internal/models"
)

// Page is a fetched response already known to have a status below 400.
type Page struct {
	// URL is the final URL after redirects.
	URL         string
	Body        []byte
	ContentType string
}

// Detector evaluates pages against a fixed Corpus.
type Detector struct {
	corpus Corpus
	rules  []rule
	log    logger.Logger
}

// NewDetector builds a detector for corpus c. Unknown rule names are an error
// so a typo in configuration cannot silently disable a check.
func NewDetector(c Corpus, log logger.Logger) (*Detector, error) {
	if log == nil {
		log = logger.NewNop()
	}

	c = c.clone()
	rules := make([]rule, 0, len(c.Rules))
	for _, name := range c.Rules {
		r, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("parking: unknown structural rule %q", name)
		}
		rules = append(rules, r)
	}

	return &Detector{corpus: c, rules: rules, log: log}, nil
}

// Detect decides whether page is a parking or placeholder page. The first
// matching signal wins: URL pattern, title keyword, body keyword density,
// then structural rules. A page that cannot be parsed is never parked.
func (d *Detector) Detect(domain string, page Page) models.ParkingVerdict {
	finalURL := strings.ToLower(page.URL)
	if p := containsAny(finalURL, d.corpus.URLPatterns); p != "" {
		d.log.Debug("parking url pattern matched",
			logger.String("domain", domain), logger.String("pattern", p))
		return models.ParkingVerdict{IsParked: true, Reason: "Redirects to parking service"}
	}

	s, err := digest(page)
	if err != nil {
		return models.ParkingVerdict{IsParked: false, Reason: fmt.Sprintf("Could not parse HTML content: %v", err)}
	}

	if kw := containsAny(s.title, d.corpus.Keywords); kw != "" {
		return models.ParkingVerdict{
			IsParked: true,
			Reason:   fmt.Sprintf("Contains parking keyword in title: '%s'", kw),
		}
	}

	if n := d.countBodyKeywords(s.body); d.corpus.BodyKeywordThreshold > 0 && n >= d.corpus.BodyKeywordThreshold {
		return models.ParkingVerdict{
			IsParked: true,
			Reason:   fmt.Sprintf("Contains multiple parking keywords (%d)", n),
		}
	}

	for i, r := range d.rules {
		if r(s, &d.corpus) {
			d.log.Debug("parking structural rule matched",
				logger.String("domain", domain), logger.String("rule", d.corpus.Rules[i]))
			return models.ParkingVerdict{IsParked: true, Reason: "Detected parking page pattern"}
		}
	}

	return models.ParkingVerdict{IsParked: false, Reason: "Not parked"}
}

// countBodyKeywords returns how many distinct corpus keywords occur in body.
func (d *Detector) countBodyKeywords(body string) int {
	seen := make(map[string]bool, len(d.corpus.Keywords))
	for _, kw := range d.corpus.Keywords {
		k := strings.ToLower(kw)
		if k == "" || seen[k] {
			continue
		}
		if strings.Contains(body, k) {
			seen[k] = true
		}
	}
	return len(seen)
}

// digest decodes the body to UTF-8, parses it, and extracts the lower-cased
// title, visible text, anchor texts, and link count.
func digest(page Page) (*signals, error) {
	return digestFrom(bytes.NewReader(page.Body), page.ContentType, string(page.Body))
}

func digestFrom(in io.Reader, contentType, markup string) (*signals, error) {
	r, err := charset.NewReader(in, contentType)
	if err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	title := strings.ToLower(strings.TrimSpace(doc.Find("title").First().Text()))

	anchors := doc.Find("a")
	anchorTexts := make([]string, 0, anchors.Length())
	anchors.Each(func(_ int, a *goquery.Selection) {
		anchorTexts = append(anchorTexts, a.Text())
	})

	doc.Find("script, style, noscript").Remove()
	body := strings.ToLower(doc.Text())

	return &signals{
		title:   title,
		body:    body,
		bodyLen: utf8.RuneCountInString(strings.TrimSpace(body)),
		links:   anchors.Length(),
		anchors: anchorTexts,
		markup:  strings.ToLower(markup),
	}, nil
}
