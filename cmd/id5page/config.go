package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/instance"

	"gopkg.in/yaml.v3"
)

// Env variable names.
const (
	envPageConfig    = "ID5_PAGE_CONFIG"
	envEndpoint      = "ID5_ENDPOINT"
	envRedisAddr     = "REDIS_ADDR"
	envMetricsPort   = "METRICS_PORT"
	envElectionDelay = "ELECTION_DELAY_MS"
	envWaitTimeout   = "WAIT_TIMEOUT_MS"
)

const defaultWaitTimeout = 10 * time.Second

// Config is the simulated page: its frame tree with the integrations living in every frame, plus
// the wiring taken from the environment.
type Config struct {
	Endpoint      string
	Extensions    []string
	Consent       consent.Data
	Page          WindowConfig
	RedisAddr     string
	MetricsPort   int
	ElectionDelay time.Duration
	WaitTimeout   time.Duration
}

// WindowConfig is one frame. Windows sharing an origin share their storage.
type WindowConfig struct {
	Name      string
	Origin    string
	Instances []InstanceConfig
	Frames    []WindowConfig
}

// InstanceConfig is one integration of the SDK.
type InstanceConfig struct {
	Source        string
	SourceVersion string
	Mode          domain.OperatingMode
	PartnerID     int
	Href          string
	Pd            string
	MaxCascades   *int
}

type yamlConfig struct {
	Endpoint   string      `yaml:"endpoint"`
	Extensions []string    `yaml:"extensions"`
	Consent    yamlConsent `yaml:"consent"`
	Page       yamlWindow  `yaml:"page"`
}

type yamlConsent struct {
	APIs           []string `yaml:"apis"`
	GdprApplies    bool     `yaml:"gdpr_applies"`
	ConsentString  string   `yaml:"consent_string"`
	CcpaString     string   `yaml:"ccpa_string"`
	AllowedVendors []string `yaml:"allowed_vendors"`
}

type yamlWindow struct {
	Name      string         `yaml:"name"`
	Origin    string         `yaml:"origin"`
	Instances []yamlInstance `yaml:"instances"`
	Frames    []yamlWindow   `yaml:"frames"`
}

type yamlInstance struct {
	Source        string `yaml:"source"`
	SourceVersion string `yaml:"source_version"`
	Mode          string `yaml:"mode"`
	Partner       int    `yaml:"partner"`
	Href          string `yaml:"href"`
	Pd            string `yaml:"pd"`
	MaxCascades   *int   `yaml:"max_cascades"`
}

func loadYAMLConfig(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out yamlConfig
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadConfig builds the page from the YAML file at ID5_PAGE_CONFIG (required). ID5_ENDPOINT overrides
// the file's endpoint. REDIS_ADDR switches storage to redis. METRICS_PORT (1-65535) serves
// prometheus metrics. ELECTION_DELAY_MS and WAIT_TIMEOUT_MS are optional positive integers.
func LoadConfig() (*Config, error) {
	configPath := strings.TrimSpace(os.Getenv(envPageConfig))
	if configPath == "" {
		return nil, fmt.Errorf("%s is required", envPageConfig)
	}
	if !filepath.IsAbs(configPath) {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return nil, err
		}
		configPath = abs
	}
	raw, err := loadYAMLConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}

	page, err := toWindowConfig(raw.Page, "page")
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Endpoint:      strings.TrimSpace(raw.Endpoint),
		Extensions:    raw.Extensions,
		Consent:       toConsentData(raw.Consent),
		Page:          page,
		RedisAddr:     strings.TrimSpace(os.Getenv(envRedisAddr)),
		ElectionDelay: instance.DefaultElectionDelay,
		WaitTimeout:   defaultWaitTimeout,
	}
	if endpoint := strings.TrimSpace(os.Getenv(envEndpoint)); endpoint != "" {
		cfg.Endpoint = endpoint
	}

	if portStr := strings.TrimSpace(os.Getenv(envMetricsPort)); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("%s must be a valid port (1-65535), got %q", envMetricsPort, portStr)
		}
		cfg.MetricsPort = port
	}
	if cfg.ElectionDelay, err = durationMs(envElectionDelay, cfg.ElectionDelay); err != nil {
		return nil, err
	}
	if cfg.WaitTimeout, err = durationMs(envWaitTimeout, cfg.WaitTimeout); err != nil {
		return nil, err
	}
	return cfg, nil
}

func durationMs(env string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(env))
	if s == "" {
		return def, nil
	}
	ms, err := strconv.Atoi(s)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer (ms), got %q", env, s)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func toWindowConfig(w yamlWindow, defaultName string) (WindowConfig, error) {
	name := strings.TrimSpace(w.Name)
	if name == "" {
		name = defaultName
	}
	origin := strings.TrimSpace(w.Origin)
	if origin == "" {
		return WindowConfig{}, fmt.Errorf("window %s: origin is required", name)
	}
	out := WindowConfig{Name: name, Origin: origin}
	for i, inst := range w.Instances {
		ic, err := toInstanceConfig(inst)
		if err != nil {
			return WindowConfig{}, fmt.Errorf("window %s instance %d: %w", name, i, err)
		}
		out.Instances = append(out.Instances, ic)
	}
	for i, f := range w.Frames {
		fc, err := toWindowConfig(f, fmt.Sprintf("%s.%d", name, i))
		if err != nil {
			return WindowConfig{}, err
		}
		out.Frames = append(out.Frames, fc)
	}
	return out, nil
}

func toInstanceConfig(i yamlInstance) (InstanceConfig, error) {
	if i.Partner <= 0 {
		return InstanceConfig{}, fmt.Errorf("partner must be positive")
	}
	mode := domain.OperatingMode(strings.TrimSpace(i.Mode))
	switch mode {
	case "":
		mode = domain.OperatingModeMultiplexing
	case domain.OperatingModeMultiplexing, domain.OperatingModePassive, domain.OperatingModeSingleton:
	default:
		return InstanceConfig{}, fmt.Errorf("mode must be multiplexing|passive|singleton, got %q", i.Mode)
	}
	source := strings.TrimSpace(i.Source)
	if source == "" {
		source = "api"
	}
	return InstanceConfig{
		Source:        source,
		SourceVersion: strings.TrimSpace(i.SourceVersion),
		Mode:          mode,
		PartnerID:     i.Partner,
		Href:          strings.TrimSpace(i.Href),
		Pd:            i.Pd,
		MaxCascades:   i.MaxCascades,
	}, nil
}

func toConsentData(c yamlConsent) consent.Data {
	apis := make([]consent.API, 0, len(c.APIs))
	for _, a := range c.APIs {
		apis = append(apis, consent.API(strings.TrimSpace(a)))
	}
	if len(apis) == 0 {
		apis = append(apis, consent.APINone)
	}
	return consent.Data{
		APIs:           apis,
		GdprApplies:    c.GdprApplies,
		ConsentString:  c.ConsentString,
		CcpaString:     c.CcpaString,
		AllowedVendors: c.AllowedVendors,
		Source:         "page_config",
	}
}
