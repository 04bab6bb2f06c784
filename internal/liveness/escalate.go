package liveness

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/hakim/domainvet/internal/logger"
	"github.com/hakim/domainvet/internal/models"
)

// Escalator re-probes the root domain when a subdomain is dead. Escalation
// happens at most once per domain and never cascades further up.
type Escalator struct {
	source       Source
	publicSuffix bool
	log          logger.Logger
}

// NewEscalator wraps source. With publicSuffix set, roots are computed as
// eTLD+1 from the public suffix list instead of the last two labels.
func NewEscalator(source Source, publicSuffix bool, log logger.Logger) *Escalator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Escalator{source: source, publicSuffix: publicSuffix, log: log}
}

// Probe probes domain and escalates a dead result to its root domain
func (e *Escalator) Probe(ctx context.Context, domain string) models.LivenessOutcome {
	out := e.source.Probe(ctx, domain)
	if out.Kind != models.LivenessDead {
		return out
	}
	return e.Escalate(ctx, domain, out)
}

// Escalate returns a subdomain_dead_root_live outcome when the root of
// domain is live, otherwise dead unchanged.
func (e *Escalator) Escalate(ctx context.Context, domain string, dead models.LivenessOutcome) models.LivenessOutcome {
	root, ok := RootDomain(domain, e.publicSuffix)
	if !ok {
		return dead
	}

	rootOut := e.source.Probe(ctx, root)
	e.log.Debug("root domain escalation",
		logger.String("domain", domain),
		logger.String("root", root),
		logger.String("root_kind", string(rootOut.Kind)))

	if rootOut.Kind != models.LivenessLive {
		return dead
	}

	attempts := make([]models.ProbeAttempt, 0, len(dead.Attempts)+len(rootOut.Attempts))
	attempts = append(attempts, dead.Attempts...)
	attempts = append(attempts, rootOut.Attempts...)

	return models.LivenessOutcome{
		Kind:       models.LivenessSubdomainDeadRootLive,
		Detail:     fmt.Sprintf("Subdomain is dead, but root domain %s is live", root),
		RootDomain: root,
		RootDetail: rootOut.Detail,
		Attempts:   attempts,
	}
}

// RootDomain returns the registrable root of an apparent subdomain (three or
// more labels). ok is false when domain is not a subdomain or the root would
// equal domain.
func RootDomain(domain string, usePublicSuffix bool) (string, bool) {
	labels := models.Labels(domain)
	if len(labels) < 3 {
		return "", false
	}

	root := strings.Join(labels[len(labels)-2:], ".")
	if usePublicSuffix {
		if etld1, err := publicsuffix.EffectiveTLDPlusOne(domain); err == nil {
			root = etld1
		}
	}

	if root == domain {
		return "", false
	}
	return root, true
}
