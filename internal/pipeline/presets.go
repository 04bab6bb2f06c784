package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hakim/domainvet/internal/parking"
	"github.com/hakim/domainvet/internal/validator"
)

// Profile is a named heuristic generation: a parking corpus plus the
// classification policy it was tuned with.
type Profile struct {
	Name        string
	Description string
	Corpus      func() parking.Corpus
	Policy      validator.Policy
}

// builtinProfiles is the registry of all known profiles.
var builtinProfiles = map[string]Profile{
	"v1": {
		Name:        "v1",
		Description: "Original corpus and permissive structural checks, dead domains are Invalid",
		Corpus:      parking.CorpusV1,
		Policy:      validator.Policy{RiskyTier: false},
	},
	"v2": {
		Name:        "v2",
		Description: "Expanded corpus with placeholder-asset checks, dead domains with MX are Risky",
		Corpus:      parking.CorpusV2,
		Policy:      validator.Policy{RiskyTier: true},
	},
}

// ProfileNames returns the registered profile names in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetProfile returns a profile by name, or an error if not found.
func GetProfile(name string) (*Profile, error) {
	p, ok := builtinProfiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q, available: %s", name, strings.Join(ProfileNames(), ", "))
	}
	cp := p
	return &cp, nil
}
