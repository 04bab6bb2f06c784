package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Workers      int              `mapstructure:"workers" yaml:"workers"`
	RateLimit    float64          `mapstructure:"rate_limit" yaml:"rate_limit"`
	OutputDir    string           `mapstructure:"output_dir" yaml:"output_dir"`
	ReportFormat string           `mapstructure:"report_format" yaml:"report_format"`
	DBPath       string           `mapstructure:"db_path" yaml:"db_path"`
	Profile      string           `mapstructure:"profile" yaml:"profile"`
	Probe        ProbeConfig      `mapstructure:"probe" yaml:"probe"`
	Timeouts     TimeoutsConfig   `mapstructure:"timeouts" yaml:"timeouts"`
	DNS          DNSConfig        `mapstructure:"dns" yaml:"dns"`
	Escalation   EscalationConfig `mapstructure:"escalation" yaml:"escalation"`
	Heuristics   HeuristicsConfig `mapstructure:"heuristics" yaml:"heuristics"`
	Notify       NotifyConfig     `mapstructure:"notify" yaml:"notify"`
	Log          LogConfig        `mapstructure:"log" yaml:"log"`
}

// ProbeConfig controls the HTTP side of liveness probing
type ProbeConfig struct {
	UserAgent    string `mapstructure:"user_agent" yaml:"user_agent"`
	InsecureTLS  bool   `mapstructure:"insecure_tls" yaml:"insecure_tls"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

// TimeoutsConfig holds the per-operation network timeouts
type TimeoutsConfig struct {
	HTTP   time.Duration `mapstructure:"http" yaml:"http"`
	Socket time.Duration `mapstructure:"socket" yaml:"socket"`
	DNS    time.Duration `mapstructure:"dns" yaml:"dns"`
}

// DNSConfig selects the resolvers queried by the record checker.
// Empty Nameservers means use the system resolv.conf.
type DNSConfig struct {
	Nameservers []string `mapstructure:"nameservers" yaml:"nameservers"`
}

// EscalationConfig tunes subdomain-to-root escalation
type EscalationConfig struct {
	PublicSuffix bool `mapstructure:"public_suffix" yaml:"public_suffix"`
}

// HeuristicsConfig extends the selected profile's parking corpus
type HeuristicsConfig struct {
	ExtraKeywords        []string `mapstructure:"extra_keywords" yaml:"extra_keywords"`
	ExtraURLPatterns     []string `mapstructure:"extra_url_patterns" yaml:"extra_url_patterns"`
	ExtraParkingMX       []string `mapstructure:"extra_parking_mx" yaml:"extra_parking_mx"`
	BodyKeywordThreshold int      `mapstructure:"body_keyword_threshold" yaml:"body_keyword_threshold"`
}

// NotifyConfig configures the completion webhook
type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

var reportFormats = map[string]bool{"csv": true, "xlsx": true, "both": true}

// Load reads and parses configuration from a YAML file.
// If path is empty, searches for domainvet.yaml in the current directory and
// ~/.config/domainvet/. Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("domainvet")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")

		homeDir, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", "domainvet"))
		}
	}

	v.SetEnvPrefix("DOMAINVET")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers DefaultConfig values with viper so partial files
// only override what they mention.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("workers", d.Workers)
	v.SetDefault("rate_limit", d.RateLimit)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("report_format", d.ReportFormat)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("profile", d.Profile)
	v.SetDefault("probe.user_agent", d.Probe.UserAgent)
	v.SetDefault("probe.insecure_tls", d.Probe.InsecureTLS)
	v.SetDefault("probe.max_body_bytes", d.Probe.MaxBodyBytes)
	v.SetDefault("timeouts.http", d.Timeouts.HTTP)
	v.SetDefault("timeouts.socket", d.Timeouts.Socket)
	v.SetDefault("timeouts.dns", d.Timeouts.DNS)
	v.SetDefault("dns.nameservers", d.DNS.Nameservers)
	v.SetDefault("escalation.public_suffix", d.Escalation.PublicSuffix)
	v.SetDefault("heuristics.body_keyword_threshold", d.Heuristics.BodyKeywordThreshold)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}

	if c.RateLimit < 0 {
		errs = append(errs, errors.New("rate_limit cannot be negative"))
	}

	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir cannot be empty"))
	}

	if !reportFormats[c.ReportFormat] {
		errs = append(errs, fmt.Errorf("report_format %q must be one of csv, xlsx, both", c.ReportFormat))
	}

	if c.Profile == "" {
		errs = append(errs, errors.New("profile cannot be empty"))
	}

	if c.Timeouts.HTTP <= 0 {
		errs = append(errs, errors.New("timeouts.http must be positive"))
	}

	if c.Timeouts.Socket <= 0 {
		errs = append(errs, errors.New("timeouts.socket must be positive"))
	}

	if c.Timeouts.DNS <= 0 {
		errs = append(errs, errors.New("timeouts.dns must be positive"))
	}

	if c.Probe.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("probe.max_body_bytes must be positive"))
	}

	if c.Heuristics.BodyKeywordThreshold < 0 {
		errs = append(errs, errors.New("heuristics.body_keyword_threshold cannot be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
