package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// StubConfig configures the identity service stub.
type StubConfig struct {
	HTTPPort  int
	MaxAgeSec int
	// Extensions maps an extension name to the lb value it serves.
	Extensions map[string]map[string]any
}

// LoadConfig loads configuration from environment variables.
// SERVICE_PORT_HTTP is required. STUB_MAX_AGE_SEC is optional. STUB_EXTENSIONS is an optional
// comma separated list of extension names, each served as {"<name>":"<name>-value"}.
func LoadConfig() (*StubConfig, error) {
	httpPortStr := strings.TrimSpace(os.Getenv("SERVICE_PORT_HTTP"))
	if httpPortStr == "" {
		return nil, fmt.Errorf("SERVICE_PORT_HTTP is required")
	}
	httpPort, err := strconv.Atoi(httpPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVICE_PORT_HTTP: %w", err)
	}

	cfg := &StubConfig{HTTPPort: httpPort, Extensions: make(map[string]map[string]any)}
	if s := strings.TrimSpace(os.Getenv("STUB_MAX_AGE_SEC")); s != "" {
		if cfg.MaxAgeSec, err = strconv.Atoi(s); err != nil || cfg.MaxAgeSec <= 0 {
			return nil, fmt.Errorf("STUB_MAX_AGE_SEC must be a positive integer, got %q", s)
		}
	}
	for _, name := range strings.Split(os.Getenv("STUB_EXTENSIONS"), ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cfg.Extensions[name] = map[string]any{name: name + "-value"}
	}
	return cfg, nil
}
