// Package liveness decides whether a domain serves anything at all.
//
// The Prober walks a fixed fallback chain (HTTPS, HTTP, TCP :80, TCP :443)
// and hands successful HTTP responses to the parking detector. The Escalator
// wraps any Source and retries a dead subdomain against its root domain.
package liveness

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/hakim/domainvet/internal/logger"
	"github.com/hakim/domainvet/internal/models"
	"github.com/hakim/domainvet/internal/parking"
)

const (
	// DeadDetail is reported when every step of the chain failed.
	DeadDetail = "Failed all connection attempts"
	// SocketDetail is reported when only a raw TCP connect succeeded.
	SocketDetail = "Socket connection successful, but HTTP failed"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Source produces a liveness outcome for a domain
type Source interface {
	Probe(ctx context.Context, domain string) models.LivenessOutcome
}

// Detector judges a fetched page
type Detector interface {
	Detect(domain string, page parking.Page) models.ParkingVerdict
}

// DialFunc matches net.Dialer.DialContext
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Options configures a Prober. Zero values fall back to the defaults used by
// the command line tool.
type Options struct {
	UserAgent     string
	HTTPTimeout   time.Duration
	SocketTimeout time.Duration
	// MaxBodyBytes caps how much of a response body is read for parking
	// inspection.
	MaxBodyBytes int64
	InsecureTLS  bool
	// TLSConfig overrides the client TLS settings entirely when set.
	TLSConfig *tls.Config
	// SocketPorts are tried in order after both HTTP attempts fail.
	SocketPorts []int
	// Dial is used for HTTP(S) connections and socket checks.
	Dial   DialFunc
	Logger logger.Logger
}

// Prober runs the HTTPS → HTTP → socket fallback chain
type Prober struct {
	client        *http.Client
	dial          DialFunc
	detector      Detector
	userAgent     string
	socketTimeout time.Duration
	maxBody       int64
	ports         []int
	log           logger.Logger
}

// NewProber builds a Prober. A nil detector disables parking inspection.
func NewProber(opts Options, detector Detector) *Prober {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 10 * time.Second
	}
	if opts.SocketTimeout <= 0 {
		opts.SocketTimeout = 5 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 2 << 20
	}
	if len(opts.SocketPorts) == 0 {
		opts.SocketPorts = []int{80, 443}
	}
	if opts.Dial == nil {
		d := &net.Dialer{Timeout: opts.SocketTimeout}
		opts.Dial = d.DialContext
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	tlsConfig := opts.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{InsecureSkipVerify: opts.InsecureTLS}
	}

	transport := &http.Transport{
		DialContext:         opts.Dial,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: opts.HTTPTimeout,
		DisableKeepAlives:   true,
	}

	return &Prober{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.HTTPTimeout,
		},
		dial:          opts.Dial,
		detector:      detector,
		userAgent:     opts.UserAgent,
		socketTimeout: opts.SocketTimeout,
		maxBody:       opts.MaxBodyBytes,
		ports:         opts.SocketPorts,
		log:           opts.Logger,
	}
}

// Probe runs the fallback chain for domain. Each step runs only if the
// previous one did not return a status below 400; every step is recorded in
// the outcome's Attempts.
func (p *Prober) Probe(ctx context.Context, domain string) models.LivenessOutcome {
	var attempts []models.ProbeAttempt

	// Step 1 and 2: full HTTP requests, parked pages short-circuit as parked
	for _, via := range []models.ProbeVia{models.ViaHTTPS, models.ViaHTTP} {
		out, ok := p.fetch(ctx, domain, via, &attempts)
		if ok {
			out.Attempts = attempts
			return out
		}
	}

	// Step 3: bare TCP connects prove something is listening
	for _, port := range p.ports {
		if p.connect(ctx, domain, port, &attempts) {
			out := models.Live(models.ViaSocket, SocketDetail)
			out.Attempts = attempts
			return out
		}
	}

	out := models.Dead(DeadDetail)
	out.Attempts = attempts
	return out
}

// fetch performs one GET with redirects followed. It reports ok only for a
// final status below 400.
func (p *Prober) fetch(ctx context.Context, domain string, via models.ProbeVia, attempts *[]models.ProbeAttempt) (models.LivenessOutcome, bool) {
	target := string(via) + "://" + domain
	attempt := models.ProbeAttempt{Step: string(via), Target: target}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		attempt.Error = err.Error()
		*attempts = append(*attempts, attempt)
		return models.LivenessOutcome{}, false
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Debug("probe request failed",
			logger.String("domain", domain), logger.String("step", attempt.Step), logger.Error(err))
		attempt.Error = err.Error()
		*attempts = append(*attempts, attempt)
		return models.LivenessOutcome{}, false
	}
	defer resp.Body.Close()

	attempt.StatusCode = resp.StatusCode
	if resp.StatusCode >= 400 {
		attempt.Error = resp.Status
		*attempts = append(*attempts, attempt)
		return models.LivenessOutcome{}, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBody))
	if err != nil {
		attempt.Error = fmt.Sprintf("reading body: %v", err)
		*attempts = append(*attempts, attempt)
		return models.LivenessOutcome{}, false
	}

	attempt.Success = true
	*attempts = append(*attempts, attempt)

	if p.detector != nil {
		verdict := p.detector.Detect(domain, parking.Page{
			URL:         resp.Request.URL.String(),
			Body:        body,
			ContentType: resp.Header.Get("Content-Type"),
		})
		if verdict.IsParked {
			return models.Parked(verdict.Reason), true
		}
	}

	label := "HTTP"
	if via == models.ViaHTTPS {
		label = "HTTPS"
	}
	return models.Live(via, fmt.Sprintf("%s: %d", label, resp.StatusCode)), true
}

func (p *Prober) connect(ctx context.Context, domain string, port int, attempts *[]models.ProbeAttempt) bool {
	addr := net.JoinHostPort(domain, strconv.Itoa(port))
	attempt := models.ProbeAttempt{Step: "socket:" + strconv.Itoa(port), Target: addr}

	dctx, cancel := context.WithTimeout(ctx, p.socketTimeout)
	defer cancel()

	conn, err := p.dial(dctx, "tcp", addr)
	if err != nil {
		attempt.Error = err.Error()
		*attempts = append(*attempts, attempt)
		return false
	}
	conn.Close()

	attempt.Success = true
	*attempts = append(*attempts, attempt)
	return true
}
