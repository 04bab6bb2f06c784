package models

import (
	"regexp"
	"strings"
	"time"
)

var domainFormat = regexp.MustCompile(`^[a-zA-Z0-9][-a-zA-Z0-9]*(\.[a-zA-Z0-9][-a-zA-Z0-9]*)+$`)

// NormalizeDomain trims surrounding whitespace and lower-cases the name
func NormalizeDomain(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidDomainFormat reports whether s is a dot-separated sequence of at least
// two labels, each starting with an alphanumeric character and containing
// only alphanumerics and hyphens.
func ValidDomainFormat(s string) bool {
	return domainFormat.MatchString(s)
}

// Labels splits a domain into its dot-separated labels
func Labels(domain string) []string {
	if domain == "" {
		return nil
	}
	return strings.Split(domain, ".")
}

// DNSEvidence holds the DNS facts gathered for a single domain
type DNSEvidence struct {
	Domain        string                     `json:"domain"`
	HasMX         bool                       `json:"has_mx"`
	HasA          bool                       `json:"has_a"`
	MXHosts       []string                   `json:"mx_hosts,omitempty"`
	SPFRecord     string                     `json:"spf_record,omitempty"`
	DMARCRecord   string                     `json:"dmarc_record,omitempty"`
	ParkingMXHost string                     `json:"parking_mx_host,omitempty"`
	Failures      map[RecordType]FailureKind `json:"failures,omitempty"`
}

// ProbeAttempt records one step of the liveness fallback chain
type ProbeAttempt struct {
	Step       string `json:"step"`
	Target     string `json:"target"`
	StatusCode int    `json:"status_code,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// LivenessOutcome is the tagged result of probing a domain.
// Via is set only for LivenessLive; Reason only for LivenessParked;
// RootDomain and RootDetail only for LivenessSubdomainDeadRootLive.
type LivenessOutcome struct {
	Kind       LivenessKind   `json:"kind"`
	Via        ProbeVia       `json:"via,omitempty"`
	Detail     string         `json:"detail,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	RootDomain string         `json:"root_domain,omitempty"`
	RootDetail string         `json:"root_detail,omitempty"`
	Attempts   []ProbeAttempt `json:"attempts,omitempty"`
}

// Live builds a live outcome
func Live(via ProbeVia, detail string) LivenessOutcome {
	return LivenessOutcome{Kind: LivenessLive, Via: via, Detail: detail}
}

// Dead builds a dead outcome
func Dead(detail string) LivenessOutcome {
	return LivenessOutcome{Kind: LivenessDead, Detail: detail}
}

// Parked builds a parked outcome
func Parked(reason string) LivenessOutcome {
	return LivenessOutcome{Kind: LivenessParked, Reason: reason, Detail: reason}
}

// ParkingVerdict is the parking detector's judgment of a fetched page
type ParkingVerdict struct {
	IsParked bool   `json:"is_parked"`
	Reason   string `json:"reason"`
}

// ValidationResult is the single record emitted per domain per run
type ValidationResult struct {
	Domain         string           `json:"domain"`
	DNS            DNSEvidence      `json:"dns"`
	SiteLive       bool             `json:"site_live"`
	ParkedDomain   bool             `json:"parked_domain"`
	Classification Classification   `json:"classification"`
	Reason         string           `json:"reason"`
	Liveness       *LivenessOutcome `json:"liveness,omitempty"`
	CheckedAt      time.Time        `json:"checked_at"`
}

// InvalidResult builds the failure-shaped result used when a domain could
// not be evaluated at all.
func InvalidResult(domain, reason string) ValidationResult {
	return ValidationResult{
		Domain:         domain,
		DNS:            DNSEvidence{Domain: domain},
		Classification: ClassInvalid,
		Reason:         reason,
		CheckedAt:      time.Now(),
	}
}

// BatchSummary counts results per classification
type BatchSummary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Risky   int `json:"risky"`
	Invalid int `json:"invalid"`
	Parked  int `json:"parked"`
}

// Summarize derives a BatchSummary from a result list
func Summarize(results []ValidationResult) BatchSummary {
	var s BatchSummary
	for _, r := range results {
		s.Total++
		switch r.Classification {
		case ClassValid:
			s.Valid++
		case ClassRisky:
			s.Risky++
		default:
			s.Invalid++
		}
		if r.ParkedDomain {
			s.Parked++
		}
	}
	return s
}

// Count returns the number of results carrying class c
func (s BatchSummary) Count(c Classification) int {
	switch c {
	case ClassValid:
		return s.Valid
	case ClassRisky:
		return s.Risky
	case ClassInvalid:
		return s.Invalid
	}
	return 0
}
