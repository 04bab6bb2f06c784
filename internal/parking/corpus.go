// Package parking decides whether a fetched page is a registrar parking,
// for-sale, or "under construction" placeholder.
//
// The keyword lists, URL patterns, and thresholds live in a Corpus value so
// new parking templates can be added as data. CorpusV1 and CorpusV2 are the
// two shipped generations; callers extend them from configuration.
package parking

// Corpus is an immutable set of parking signals and tuning thresholds.
// Use the With* methods to derive modified copies.
type Corpus struct {
	Version string

	// Keywords are matched case-insensitively against the title and body text.
	Keywords []string
	// URLPatterns are matched against the final post-redirect URL.
	URLPatterns []string
	// ParkingMX are substrings of MX targets operated by parking services.
	ParkingMX []string
	// PlaceholderHosts are asset hosts referenced by placeholder templates.
	PlaceholderHosts []string
	// ConstructionPhrases and RegistrarNames feed the registrar template rule.
	ConstructionPhrases []string
	RegistrarNames      []string
	// Rules names the structural checks enabled for this corpus, in order.
	Rules []string

	BodyKeywordThreshold int
	ShortBodyLength      int
	ShortBodyLinks       int
	WhoisBodyLength      int
	RelatedSearchLinks   int
}

var v1Keywords = []string{
	"domain is for sale", "buy this domain",
	"domain parking", "parked domain",
	"domain may be for sale", "domain auction",
	"this web page is parked", "this domain is parked",
	"purchase this domain", "inquire about this domain",
	"domain broker", "domain for purchase",
	"coming soon", "register.com", "domain registration",
	"related searches", "whois lookup", "domain name",
	"this domain is available", "pending renewal or deletion",
}

var v1URLPatterns = []string{
	"sedoparking.com", "hugedomains.com/domain_profile", "godaddyparking.com",
	"parkingcrew.net", "parklogic.com", "fabulous.com/park", "bodis.com/parking",
	"register.com/domain", "registrar.godaddy.com", "networksolutions.com/manage-it",
	"domainsponsor", "domaincontrol.com", "namesilo.com/domain",
	"namedrive.com", "crazydomains.com", "buydomains.com", "parked.namecheap.com",
}

var parkingMX = []string{
	"park-mx.above.com",
	"sedoparking.com",
	"h-email.net",
	"parkingcrew.net",
	"bodis.com/parking",
	"fabulous.com/park",
}

// CorpusV1 returns the first-generation corpus: the original keyword and
// URL lists with the permissive structural checks.
func CorpusV1() Corpus {
	return Corpus{
		Version:     "v1",
		Keywords:    clone(v1Keywords),
		URLPatterns: clone(v1URLPatterns),
		ParkingMX:   clone(parkingMX),
		Rules: []string{
			RuleComingSoonRegister,
			RuleRelatedSearchesLinks,
			RuleDomainTitleRegister,
			RuleWhoisShortBody,
			RuleCopyrightRegisterCom,
			RuleShortBodyManyLinks,
			RuleParkedTitle,
			RuleWhoisAnchor,
		},
		BodyKeywordThreshold: 3,
		ShortBodyLength:      300,
		ShortBodyLinks:       15,
		WhoisBodyLength:      1000,
		RelatedSearchLinks:   10,
	}
}

// CorpusV2 returns the expanded corpus: more registrar and marketplace
// signals, placeholder asset hosts, and stricter structural checks.
func CorpusV2() Corpus {
	c := CorpusV1()
	c.Version = "v2"
	c.Keywords = append(c.Keywords,
		"this domain may be for sale", "make an offer on this domain",
		"get this domain", "this domain has been registered",
		"this domain name has expired", "renew this domain",
		"website coming soon", "launching soon",
		"parked free, courtesy of", "future home of",
		"the domain owner has not yet",
	)
	c.URLPatterns = append(c.URLPatterns,
		"dan.com/buy-domain", "afternic.com/forsale", "sedo.com/search",
		"godaddy.com/forsale", "undeveloped.com", "domainmarket.com",
		"atom.com/name", "hugedomains.com", "uniregistry.com/market",
		"parkingpage.namecheap.com", "://ww1.", "://ww25.",
	)
	c.PlaceholderHosts = []string{
		"img1.wsimg.com/parking-lander", "parking-lander",
		"parkingcrew.net", "sedoparking.com", "bodis.com",
		"parklogic.com", "dsnextgen.com", "skenzo.com",
		"static.namecheap.com/parking", "cdn.dan.com",
	}
	c.ConstructionPhrases = []string{
		"under construction", "launching soon", "coming soon",
		"site is being built", "future home of",
	}
	c.RegistrarNames = []string{
		"godaddy", "namecheap", "register.com", "network solutions",
		"hostinger", "ionos", "name.com", "porkbun", "dynadot",
	}
	c.Rules = []string{
		RuleComingSoonRegisterDomain,
		RuleRelatedSearchesLinks,
		RuleShortBodyManyLinks,
		RuleWhoisAnchorShortBody,
		RulePlaceholderAssetHost,
		RuleRegistrarConstruction,
		RuleCopyrightRegisterCom,
		RuleParkedTitle,
	}
	return c
}

// WithExtras returns a copy of c with additional keywords, URL patterns and
// parking MX substrings appended.
func (c Corpus) WithExtras(keywords, urlPatterns, mx []string) Corpus {
	out := c.clone()
	out.Keywords = append(out.Keywords, keywords...)
	out.URLPatterns = append(out.URLPatterns, urlPatterns...)
	out.ParkingMX = append(out.ParkingMX, mx...)
	return out
}

// WithBodyKeywordThreshold returns a copy of c using n distinct body keywords
// as the parking threshold. n <= 0 keeps the current value.
func (c Corpus) WithBodyKeywordThreshold(n int) Corpus {
	out := c.clone()
	if n > 0 {
		out.BodyKeywordThreshold = n
	}
	return out
}

func (c Corpus) clone() Corpus {
	out := c
	out.Keywords = clone(c.Keywords)
	out.URLPatterns = clone(c.URLPatterns)
	out.ParkingMX = clone(c.ParkingMX)
	out.PlaceholderHosts = clone(c.PlaceholderHosts)
	out.ConstructionPhrases = clone(c.ConstructionPhrases)
	out.RegistrarNames = clone(c.RegistrarNames)
	out.Rules = clone(c.Rules)
	return out
}

func clone(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
