package pipeline

import (
	"fmt"

	"github.com/hakim/domainvet/internal/config"
	"github.com/hakim/domainvet/internal/dnscheck"
	"github.com/hakim/domainvet/internal/liveness"
	"github.com/hakim/domainvet/internal/logger"
	"github.com/hakim/domainvet/internal/parking"
	"github.com/hakim/domainvet/internal/validator"
)

// Components holds the collaborators assembled from configuration
type Components struct {
	Profile *Profile
	Corpus  parking.Corpus
	Checker *dnscheck.Checker
	Engine  *validator.Engine
}

// Build assembles the classification engine for cfg: the profile corpus
// extended by heuristics settings, the DNS checker, the prober with root
// escalation, and the decision policy.
func Build(cfg *config.Config, log logger.Logger) (*Components, error) {
	if log == nil {
		log = logger.NewNop()
	}

	profile, err := GetProfile(cfg.Profile)
	if err != nil {
		return nil, err
	}

	corpus := profile.Corpus().
		WithExtras(cfg.Heuristics.ExtraKeywords, cfg.Heuristics.ExtraURLPatterns, cfg.Heuristics.ExtraParkingMX).
		WithBodyKeywordThreshold(cfg.Heuristics.BodyKeywordThreshold)

	detector, err := parking.NewDetector(corpus, log.With(logger.String("component", "parking")))
	if err != nil {
		return nil, fmt.Errorf("building parking detector: %w", err)
	}

	checker := dnscheck.New(dnscheck.Options{
		Nameservers: cfg.DNS.Nameservers,
		Timeout:     cfg.Timeouts.DNS,
		ParkingMX:   corpus.ParkingMX,
		Logger:      log.With(logger.String("component", "dns")),
	})

	prober := liveness.NewProber(liveness.Options{
		UserAgent:     cfg.Probe.UserAgent,
		HTTPTimeout:   cfg.Timeouts.HTTP,
		SocketTimeout: cfg.Timeouts.Socket,
		MaxBodyBytes:  cfg.Probe.MaxBodyBytes,
		InsecureTLS:   cfg.Probe.InsecureTLS,
		Logger:        log.With(logger.String("component", "liveness")),
	}, detector)

	escalator := liveness.NewEscalator(prober, cfg.Escalation.PublicSuffix, log)
	engine := validator.NewEngine(checker, escalator, profile.Policy, log)

	return &Components{
		Profile: profile,
		Corpus:  corpus,
		Checker: checker,
		Engine:  engine,
	}, nil
}
