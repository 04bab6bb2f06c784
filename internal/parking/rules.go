package parking

import (
	"regexp"
	"sort"
	"strings"
)

// Structural rule names. A Corpus enables a subset of these by name.
const (
	RuleComingSoonRegister       = "coming-soon-register"
	RuleComingSoonRegisterDomain = "coming-soon-register-domain"
	RuleRelatedSearchesLinks     = "related-searches-links"
	RuleDomainTitleRegister      = "domain-title-register"
	RuleWhoisShortBody           = "whois-short-body"
	RuleCopyrightRegisterCom     = "copyright-register-com"
	RuleShortBodyManyLinks       = "short-body-many-links"
	RuleParkedTitle              = "parked-title"
	RuleWhoisAnchor              = "whois-anchor"
	RuleWhoisAnchorShortBody     = "whois-anchor-short-body"
	RulePlaceholderAssetHost     = "placeholder-asset-host"
	RuleRegistrarConstruction    = "registrar-construction-template"
)

var whoisAnchor = regexp.MustCompile(`(?i)whois\s+lookup`)

// signals is the page digest every structural rule inspects. Text fields are
// lower-cased.
type signals struct {
	title   string
	body    string
	bodyLen int
	links   int
	anchors []string
	markup  string
}

type rule func(s *signals, c *Corpus) bool

var registry = map[string]rule{
	RuleComingSoonRegister: func(s *signals, _ *Corpus) bool {
		return has(s.body, "coming soon") && has(s.body, "register")
	},
	RuleComingSoonRegisterDomain: func(s *signals, _ *Corpus) bool {
		return has(s.body, "coming soon") && has(s.body, "register") && has(s.body, "domain")
	},
	RuleRelatedSearchesLinks: func(s *signals, c *Corpus) bool {
		return has(s.body, "related searches") && s.links > c.RelatedSearchLinks
	},
	RuleDomainTitleRegister: func(s *signals, _ *Corpus) bool {
		return has(s.title, "domain") && has(s.body, "register")
	},
	RuleWhoisShortBody: func(s *signals, c *Corpus) bool {
		return has(s.body, "whois lookup") && s.bodyLen < c.WhoisBodyLength
	},
	RuleCopyrightRegisterCom: func(s *signals, _ *Corpus) bool {
		return has(s.body, "copyright") && has(s.body, "register.com")
	},
	RuleShortBodyManyLinks: func(s *signals, c *Corpus) bool {
		return s.bodyLen < c.ShortBodyLength && s.links > c.ShortBodyLinks && has(s.body, "domain")
	},
	RuleParkedTitle: func(s *signals, _ *Corpus) bool {
		return has(s.title, "coming soon") || has(s.title, "parked")
	},
	RuleWhoisAnchor: func(s *signals, _ *Corpus) bool {
		return anyAnchor(s.anchors)
	},
	RuleWhoisAnchorShortBody: func(s *signals, c *Corpus) bool {
		return anyAnchor(s.anchors) && s.bodyLen < c.WhoisBodyLength
	},
	RulePlaceholderAssetHost: func(s *signals, c *Corpus) bool {
		return containsAny(s.markup, c.PlaceholderHosts) != ""
	},
	// Registrar placeholder templates title the page with the construction
	// phrase. A "coming soon" line inside an ordinary page is not enough.
	RuleRegistrarConstruction: func(s *signals, c *Corpus) bool {
		if containsAny(s.title, c.ConstructionPhrases) == "" {
			return false
		}
		return containsToken(s.body, c.RegistrarNames) != ""
	},
}

// KnownRules lists every structural rule name the detector understands, sorted.
func KnownRules() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func anyAnchor(anchors []string) bool {
	for _, a := range anchors {
		if whoisAnchor.MatchString(a) {
			return true
		}
	}
	return false
}

func has(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}

// containsToken is containsAny restricted to whole-token matches, so
// "name.com" does not match inside "username.com".
func containsToken(haystack string, patterns []string) string {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		re := regexp.MustCompile(`(^|[^a-z0-9.\-])` + regexp.QuoteMeta(strings.ToLower(p)) + `($|[^a-z0-9\-])`)
		if re.MatchString(haystack) {
			return p
		}
	}
	return ""
}

// containsAny returns the first pattern found in haystack (compared
// lower-cased), or "" when none match.
func containsAny(haystack string, patterns []string) string {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(p)) {
			return p
		}
	}
	return ""
}
