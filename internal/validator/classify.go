// Package validator turns DNS evidence and a liveness outcome into a single
// Valid / Risky / Invalid verdict per domain.
package validator

import (
	"fmt"

	"github.com/hakim/domainvet/internal/liveness"
	"github.com/hakim/domainvet/internal/models"
)

// Reason strings shared by the decision table
const (
	ReasonInvalidFormat = "Invalid domain format"
	ReasonNoRecords     = "No MX or A records found"
	ReasonPassed        = "Domain passed all checks"
	ReasonRiskyMX       = "Has MX records but site isn't live"
	ReasonErrorPrefix   = "Error checking records: "
)

// Policy holds the decision switches that differ between heuristic profiles
type Policy struct {
	// RiskyTier classifies dead domains that still route mail as Risky
	// instead of Invalid.
	RiskyTier bool
}

// Classify applies the decision table to already-gathered evidence. The
// first matching row wins. Classify performs no I/O and leaves CheckedAt
// unset. A nil liveness outcome past the DNS rows is treated as dead.
func Classify(domain string, ev *models.DNSEvidence, lv *models.LivenessOutcome, policy Policy) models.ValidationResult {
	res := models.ValidationResult{
		Domain:         domain,
		DNS:            models.DNSEvidence{Domain: domain},
		Classification: models.ClassInvalid,
	}
	if ev != nil {
		res.DNS = *ev
	}

	if !models.ValidDomainFormat(domain) {
		res.Reason = ReasonInvalidFormat
		return res
	}

	if !res.DNS.HasMX && !res.DNS.HasA {
		res.Reason = ReasonNoRecords
		return res
	}

	if res.DNS.ParkingMXHost != "" {
		res.ParkedDomain = true
		res.Reason = fmt.Sprintf("Domain uses parking MX: %s", res.DNS.ParkingMXHost)
		return res
	}

	outcome := models.Dead(liveness.DeadDetail)
	if lv != nil {
		outcome = *lv
	}
	res.Liveness = &outcome

	switch outcome.Kind {
	case models.LivenessParked:
		res.ParkedDomain = true
		res.Reason = outcome.Reason
	case models.LivenessDead:
		if policy.RiskyTier && res.DNS.HasMX {
			res.Classification = models.ClassRisky
			res.Reason = ReasonRiskyMX
			return res
		}
		res.Reason = outcome.Detail
	case models.LivenessLive:
		res.Classification = models.ClassValid
		res.SiteLive = true
		res.Reason = ReasonPassed
	case models.LivenessSubdomainDeadRootLive:
		res.Classification = models.ClassValid
		res.Reason = outcome.Detail
	default:
		res.Reason = fmt.Sprintf("unknown liveness outcome %q", outcome.Kind)
	}

	return res
}

// DecidedByDNS reports whether the evidence alone settles the verdict, in
// which case no liveness probe is needed.
func DecidedByDNS(ev models.DNSEvidence) bool {
	return (!ev.HasMX && !ev.HasA) || ev.ParkingMXHost != ""
}
