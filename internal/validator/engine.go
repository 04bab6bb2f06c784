package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/hakim/domainvet/internal/liveness"
	"github.com/hakim/domainvet/internal/logger"
	"github.com/hakim/domainvet/internal/models"
)

// EvidenceSource gathers DNS evidence for a domain
type EvidenceSource interface {
	Check(ctx context.Context, domain string) models.DNSEvidence
}

// Engine gathers evidence for one domain and classifies it
type Engine struct {
	dns    EvidenceSource
	live   liveness.Source
	policy Policy
	log    logger.Logger
	now    func() time.Time
}

// NewEngine wires the evidence sources. live is typically a
// liveness.Escalator wrapping a liveness.Prober.
func NewEngine(dns EvidenceSource, live liveness.Source, policy Policy, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{dns: dns, live: live, policy: policy, log: log, now: time.Now}
}

// Policy returns the decision policy in use
func (e *Engine) Policy() Policy {
	return e.policy
}

// Validate normalizes raw and produces exactly one result. Malformed names
// never touch the network, DNS-decided names are never probed, and any panic
// along the way becomes an Invalid result.
func (e *Engine) Validate(ctx context.Context, raw string) (res models.ValidationResult) {
	domain := models.NormalizeDomain(raw)

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("validation panicked",
				logger.String("domain", domain), logger.Any("panic", r))
			res = models.InvalidResult(domain, fmt.Sprintf("%s%v", ReasonErrorPrefix, r))
		}
	}()

	if !models.ValidDomainFormat(domain) {
		res = Classify(domain, nil, nil, e.policy)
		res.CheckedAt = e.now()
		return res
	}

	if res, done := e.interrupted(ctx, domain); done {
		return res
	}
	ev := e.dns.Check(ctx, domain)
	// Lookups cut short by cancellation look like missing records.
	if res, done := e.interrupted(ctx, domain); done {
		return res
	}
	if DecidedByDNS(ev) {
		res = Classify(domain, &ev, nil, e.policy)
		res.CheckedAt = e.now()
		return res
	}

	lv := e.live.Probe(ctx, domain)
	if res, done := e.interrupted(ctx, domain); done {
		return res
	}
	res = Classify(domain, &ev, &lv, e.policy)
	res.CheckedAt = e.now()

	e.log.Debug("domain classified",
		logger.String("domain", domain),
		logger.String("class", string(res.Classification)),
		logger.String("liveness", string(lv.Kind)))

	return res
}

// interrupted reports an error result once ctx is done, so a cancelled run
// never classifies a domain from half-finished lookups.
func (e *Engine) interrupted(ctx context.Context, domain string) (models.ValidationResult, bool) {
	err := ctx.Err()
	if err == nil {
		return models.ValidationResult{}, false
	}
	res := models.InvalidResult(domain, ReasonErrorPrefix+err.Error())
	res.CheckedAt = e.now()
	return res, true
}
