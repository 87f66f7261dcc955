package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/instance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageYAML = `
endpoint: https://id5-sync.com/gm/v3
extensions:
  - https://lb.eu-1-id5-sync.com/lb/v1
consent:
  apis: [TCFv2]
  gdpr_applies: true
  consent_string: tcf-string
page:
  name: top
  origin: publisher.com
  instances:
    - source: api
      source_version: 1.0.26
      partner: 99
      max_cascades: 8
  frames:
    - origin: adserver.net
      instances:
        - source: pbjs
          source_version: 1.0.27
          partner: 99
          mode: passive
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func setEnv(t *testing.T, path string) {
	t.Setenv(envPageConfig, path)
	t.Setenv(envEndpoint, "")
	t.Setenv(envRedisAddr, "")
	t.Setenv(envMetricsPort, "")
	t.Setenv(envElectionDelay, "")
	t.Setenv(envWaitTimeout, "")
}

func TestLoadConfig_Ok(t *testing.T) {
	setEnv(t, writeConfig(t, pageYAML))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://id5-sync.com/gm/v3", cfg.Endpoint)
	assert.Equal(t, []string{"https://lb.eu-1-id5-sync.com/lb/v1"}, cfg.Extensions)
	assert.Equal(t, []consent.API{consent.APITCFv2}, cfg.Consent.APIs)
	assert.True(t, cfg.Consent.GdprApplies)
	assert.Equal(t, "tcf-string", cfg.Consent.ConsentString)
	assert.Equal(t, instance.DefaultElectionDelay, cfg.ElectionDelay)
	assert.Equal(t, defaultWaitTimeout, cfg.WaitTimeout)
	assert.Equal(t, 0, cfg.MetricsPort)

	assert.Equal(t, "top", cfg.Page.Name)
	assert.Equal(t, "publisher.com", cfg.Page.Origin)
	require.Len(t, cfg.Page.Instances, 1)
	top := cfg.Page.Instances[0]
	assert.Equal(t, domain.OperatingModeMultiplexing, top.Mode)
	assert.Equal(t, 99, top.PartnerID)
	require.NotNil(t, top.MaxCascades)
	assert.Equal(t, 8, *top.MaxCascades)

	require.Len(t, cfg.Page.Frames, 1)
	frame := cfg.Page.Frames[0]
	assert.Equal(t, "top.0", frame.Name)
	assert.Equal(t, "adserver.net", frame.Origin)
	require.Len(t, frame.Instances, 1)
	assert.Equal(t, domain.OperatingModePassive, frame.Instances[0].Mode)
	assert.Equal(t, "pbjs", frame.Instances[0].Source)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	setEnv(t, writeConfig(t, pageYAML))
	t.Setenv(envEndpoint, "http://localhost:8080/gm/v3")
	t.Setenv(envRedisAddr, "redis://localhost:6379")
	t.Setenv(envMetricsPort, "9100")
	t.Setenv(envElectionDelay, "250")
	t.Setenv(envWaitTimeout, "2000")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/gm/v3", cfg.Endpoint)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 9100, cfg.MetricsPort)
	assert.Equal(t, 250*time.Millisecond, cfg.ElectionDelay)
	assert.Equal(t, 2*time.Second, cfg.WaitTimeout)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		env         map[string]string
		noPath      bool
		wantContain string
	}{
		{name: "config_path_required", noPath: true, wantContain: "ID5_PAGE_CONFIG is required"},
		{name: "invalid_yaml", yaml: "page: [", wantContain: "load config"},
		{name: "origin_required", yaml: "page:\n  name: top\n", wantContain: "window top: origin is required"},
		{name: "partner_required", yaml: "page:\n  origin: a.com\n  instances:\n    - source: api\n", wantContain: "partner must be positive"},
		{name: "bad_mode", yaml: "page:\n  origin: a.com\n  instances:\n    - partner: 1\n      mode: leader\n", wantContain: "mode must be"},
		{name: "bad_metrics_port", yaml: pageYAML, env: map[string]string{envMetricsPort: "70000"}, wantContain: "METRICS_PORT must be a valid port"},
		{name: "bad_election_delay", yaml: pageYAML, env: map[string]string{envElectionDelay: "-1"}, wantContain: "ELECTION_DELAY_MS must be a positive integer"},
		{name: "bad_wait_timeout", yaml: pageYAML, env: map[string]string{envWaitTimeout: "soon"}, wantContain: "WAIT_TIMEOUT_MS must be a positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if !tt.noPath {
				path = writeConfig(t, tt.yaml)
			}
			setEnv(t, path)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantContain)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	setEnv(t, filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestToConsentData_DefaultsToNoApi(t *testing.T) {
	d := toConsentData(yamlConsent{})
	assert.Equal(t, []consent.API{consent.APINone}, d.APIs)
	assert.Equal(t, "page_config", d.Source)
}
