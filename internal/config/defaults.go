package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is the desktop browser identity sent with probe requests
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Workers:      10,
		RateLimit:    0,
		OutputDir:    ".",
		ReportFormat: "csv",
		DBPath:       "domainvet.db",
		Profile:      "v2",
		Probe: ProbeConfig{
			UserAgent:    DefaultUserAgent,
			InsecureTLS:  false,
			MaxBodyBytes: 2 << 20,
		},
		Timeouts: TimeoutsConfig{
			HTTP:   10 * time.Second,
			Socket: 5 * time.Second,
			DNS:    5 * time.Second,
		},
		DNS: DNSConfig{
			Nameservers: []string{},
		},
		Heuristics: HeuristicsConfig{
			ExtraKeywords:        []string{},
			ExtraURLPatterns:     []string{},
			ExtraParkingMX:       []string{},
			BodyKeywordThreshold: 0,
		},
		Log: LogConfig{
			Level:  "warn",
			Pretty: true,
		},
	}
}

// MarshalYAML renders durations in their human form ("10s") instead of
// integer nanoseconds.
func (t TimeoutsConfig) MarshalYAML() (interface{}, error) {
	return map[string]string{
		"http":   t.HTTP.String(),
		"socket": t.Socket.String(),
		"dns":    t.DNS.String(),
	}, nil
}

// WriteDefault writes a default configuration to the specified path
func WriteDefault(path string) error {
	cfg := DefaultConfig()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
