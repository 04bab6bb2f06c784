// Package dnscheck gathers the MX, A, SPF and DMARC evidence for a domain.
//
// Every lookup is a single query against the first configured nameserver.
// Lookup failures are reported as a models.FailureKind and treated as
// "record absent"; Check never returns an error.
package dnscheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/hakim/domainvet/internal/logger"
	"github.com/hakim/domainvet/internal/models"
)

const (
	resolvConfPath     = "/etc/resolv.conf"
	fallbackNameserver = "8.8.8.8:53"
)

// ErrNoNameservers is returned by Ping when no resolver is configured.
var ErrNoNameservers = errors.New("dnscheck: no nameservers configured")

// Options configures a Checker
type Options struct {
	// Nameservers overrides the system resolvers ("host" or "host:port").
	Nameservers []string
	// Timeout bounds each query. Zero uses the miekg/dns default.
	Timeout time.Duration
	// ParkingMX lists substrings identifying parking-service MX targets.
	ParkingMX []string
	Logger    logger.Logger
}

// Checker performs DNS evidence lookups
type Checker struct {
	client      *dns.Client
	tcpClient   *dns.Client
	nameservers []string
	parkingMX   []string
	log         logger.Logger
}

// Answer is the outcome of a single query: either records or a failure kind.
type Answer struct {
	Records []dns.RR
	Failure models.FailureKind
	Err     error
}

// New creates a Checker. Nameservers fall back to /etc/resolv.conf and then
// to a public resolver.
func New(opts Options) *Checker {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	servers := normalizeServers(opts.Nameservers)
	if len(servers) == 0 {
		servers = systemNameservers()
	}

	patterns := make([]string, 0, len(opts.ParkingMX))
	for _, p := range opts.ParkingMX {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			patterns = append(patterns, p)
		}
	}

	return &Checker{
		client:      &dns.Client{Timeout: opts.Timeout},
		tcpClient:   &dns.Client{Net: "tcp", Timeout: opts.Timeout},
		nameservers: servers,
		parkingMX:   patterns,
		log:         log,
	}
}

// Nameservers returns the resolvers in use, in preference order.
func (c *Checker) Nameservers() []string {
	out := make([]string, len(c.nameservers))
	copy(out, c.nameservers)
	return out
}

// Check gathers DNS evidence for domain. MX, A, TXT and _dmarc TXT are
// queried independently; a failed lookup only marks that record absent.
func (c *Checker) Check(ctx context.Context, domain string) models.DNSEvidence {
	ev := models.DNSEvidence{
		Domain:   domain,
		Failures: make(map[models.RecordType]models.FailureKind),
	}

	if ans := c.Query(ctx, domain, dns.TypeMX); ans.Failure != "" {
		ev.Failures[models.RecordMX] = ans.Failure
	} else {
		c.applyMX(&ev, ans.Records)
	}

	if ans := c.Query(ctx, domain, dns.TypeA); ans.Failure != "" {
		ev.Failures[models.RecordA] = ans.Failure
	} else {
		ev.HasA = true
	}

	if ans := c.Query(ctx, domain, dns.TypeTXT); ans.Failure != "" {
		ev.Failures[models.RecordTXT] = ans.Failure
	} else {
		ev.SPFRecord = firstTXTContaining(ans.Records, "v=spf1")
	}

	if ans := c.Query(ctx, "_dmarc."+domain, dns.TypeTXT); ans.Failure != "" {
		ev.Failures[models.RecordDMARC] = ans.Failure
	} else {
		ev.DMARCRecord = firstTXTContaining(ans.Records, "v=DMARC1")
	}

	if len(ev.Failures) == 0 {
		ev.Failures = nil
	}

	return ev
}

// applyMX records MX targets and flags the first one served by a parking
// provider. Pattern matching stops at the first hit.
func (c *Checker) applyMX(ev *models.DNSEvidence, records []dns.RR) {
	for _, rr := range records {
		mx, ok := rr.(*dns.MX)
		if !ok {
			continue
		}
		ev.HasMX = true

		host := strings.TrimSuffix(strings.ToLower(mx.Mx), ".")
		ev.MXHosts = append(ev.MXHosts, host)

		if ev.ParkingMXHost != "" {
			continue
		}
		for _, pattern := range c.parkingMX {
			if strings.Contains(host, pattern) {
				ev.ParkingMXHost = host
				break
			}
		}
	}
}

// Query sends one question of type qtype for name and keeps only answers of
// that type. One attempt is made against the preferred nameserver, repeated
// over TCP when the UDP answer comes back truncated.
func (c *Checker) Query(ctx context.Context, name string, qtype uint16) Answer {
	if len(c.nameservers) == 0 {
		return Answer{Failure: models.FailureNoNameservers, Err: ErrNoNameservers}
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.SetEdns0(4096, false)

	in, _, err := c.client.ExchangeContext(ctx, m, c.nameservers[0])
	if err != nil {
		c.log.Debug("dns query failed",
			logger.String("name", name),
			logger.String("type", dns.TypeToString[qtype]),
			logger.Error(err))
		return Answer{Failure: models.FailureResolution, Err: err}
	}

	if in.Truncated {
		in, _, err = c.tcpClient.ExchangeContext(ctx, m, c.nameservers[0])
		if err != nil {
			c.log.Debug("dns tcp retry failed",
				logger.String("name", name),
				logger.String("type", dns.TypeToString[qtype]),
				logger.Error(err))
			return Answer{Failure: models.FailureResolution, Err: err}
		}
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return Answer{Failure: models.FailureNXDomain}
	case dns.RcodeServerFailure, dns.RcodeRefused:
		return Answer{Failure: models.FailureNoNameservers}
	default:
		return Answer{
			Failure: models.FailureResolution,
			Err:     fmt.Errorf("dnscheck: rcode %s", dns.RcodeToString[in.Rcode]),
		}
	}

	var records []dns.RR
	for _, rr := range in.Answer {
		if rr.Header().Rrtype == qtype {
			records = append(records, rr)
		}
	}
	if len(records) == 0 {
		return Answer{Failure: models.FailureNoAnswer}
	}

	return Answer{Records: records}
}

// Ping asks the preferred nameserver for the root NS set to confirm it is
// reachable and answering.
func (c *Checker) Ping(ctx context.Context) error {
	if len(c.nameservers) == 0 {
		return ErrNoNameservers
	}
	ans := c.Query(ctx, ".", dns.TypeNS)
	if ans.Failure == models.FailureResolution || ans.Failure == models.FailureNoNameservers {
		if ans.Err != nil {
			return fmt.Errorf("nameserver %s: %w", c.nameservers[0], ans.Err)
		}
		return fmt.Errorf("nameserver %s: %s", c.nameservers[0], ans.Failure)
	}
	return nil
}

func firstTXTContaining(records []dns.RR, marker string) string {
	for _, rr := range records {
		txt, ok := rr.(*dns.TXT)
		if !ok {
			continue
		}
		text := strings.Join(txt.Txt, "")
		if strings.Contains(text, marker) {
			return text
		}
	}
	return ""
}

// normalizeServers adds the default port to bare hosts and drops blanks.
func normalizeServers(servers []string) []string {
	var out []string
	for _, s := range servers {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(s); err != nil {
			s = net.JoinHostPort(s, "53")
		}
		out = append(out, s)
	}
	return out
}

func systemNameservers() []string {
	conf, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil || len(conf.Servers) == 0 {
		return []string{fallbackNameserver}
	}

	servers := make([]string, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		servers = append(servers, net.JoinHostPort(s, conf.Port))
	}
	return servers
}
