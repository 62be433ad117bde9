package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/beacon/pkg/beacon/config"
	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// TestNew verifies identity fields plus defaults.
func TestNew(t *testing.T) {
	cfg := config.New("https://collect.internal", schema.ServicePatternMatcher)

	assert.Equal(t, "https://collect.internal", cfg.CollectURL)
	assert.Equal(t, schema.ServicePatternMatcher, cfg.Service)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.FlushInterval)
	assert.Equal(t, 1*time.Second, cfg.RetryBaseDelay)
	assert.NoError(t, cfg.Validate())
}

// TestWithDefaults verifies zero and negative tuning fields are repaired.
func TestWithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   config.Config
		want config.Config
	}{
		{
			"zero config gets all defaults",
			config.Config{},
			config.DefaultConfig,
		},
		{
			"negative fields are repaired",
			config.Config{Timeout: -time.Second, MaxRetries: -1, BatchSize: -5},
			config.DefaultConfig,
		},
		{
			"explicit values survive",
			config.Config{
				Timeout:        2 * time.Second,
				MaxRetries:     1,
				BatchSize:      50,
				FlushInterval:  250 * time.Millisecond,
				RetryBaseDelay: 100 * time.Millisecond,
			},
			config.Config{
				Timeout:        2 * time.Second,
				MaxRetries:     1,
				BatchSize:      50,
				FlushInterval:  250 * time.Millisecond,
				RetryBaseDelay: 100 * time.Millisecond,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.WithDefaults())
		})
	}
}

// TestValidate verifies the identity field checks.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{
			"valid http",
			config.New("http://localhost:8080", schema.ServiceQueryExecutor),
			false,
		},
		{
			"valid https",
			config.New("https://collect.internal", schema.ServiceETLPipeline),
			false,
		},
		{
			"missing url",
			config.New("", schema.ServiceQueryExecutor),
			true,
		},
		{
			"unparseable url",
			config.New("://collect.internal", schema.ServiceQueryExecutor),
			true,
		},
		{
			"unsupported scheme",
			config.New("ftp://collect.internal", schema.ServiceQueryExecutor),
			true,
		},
		{
			"host without scheme",
			config.New("collect.internal:8080", schema.ServiceQueryExecutor),
			true,
		},
		{
			"unknown service",
			config.New("https://collect.internal", schema.ServiceIdentity("frontend")),
			true,
		},
		{
			"empty service",
			config.New("https://collect.internal", schema.ServiceIdentity("")),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestFromYAML verifies YAML parsing including both duration spellings.
func TestFromYAML(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
		check   func(*testing.T, config.Config)
	}{
		{
			"full document",
			`collect_url: https://collect.internal
service: search-gateway
api_key: sk-local-1
timeout: 2s
max_retries: 5
batch_size: 25
flush_interval: 500ms
retry_base_delay: 250ms`,
			false,
			func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "https://collect.internal", cfg.CollectURL)
				assert.Equal(t, schema.ServiceSearchGateway, cfg.Service)
				assert.Equal(t, "sk-local-1", cfg.APIKey)
				assert.Equal(t, 2*time.Second, cfg.Timeout)
				assert.Equal(t, 5, cfg.MaxRetries)
				assert.Equal(t, 25, cfg.BatchSize)
				assert.Equal(t, 500*time.Millisecond, cfg.FlushInterval)
				assert.Equal(t, 250*time.Millisecond, cfg.RetryBaseDelay)
			},
		},
		{
			"partial document keeps defaults",
			`collect_url: http://localhost:8080
service: etl-pipeline`,
			false,
			func(t *testing.T, cfg config.Config) {
				assert.Equal(t, schema.ServiceETLPipeline, cfg.Service)
				assert.Equal(t, 5*time.Second, cfg.Timeout)
				assert.Equal(t, 10, cfg.BatchSize)
			},
		},
		{
			"durations as bare seconds",
			`collect_url: http://localhost:8080
service: etl-pipeline
timeout: 10
flush_interval: 0.5`,
			false,
			func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 10*time.Second, cfg.Timeout)
				assert.Equal(t, 500*time.Millisecond, cfg.FlushInterval)
			},
		},
		{
			"wrong type falls back to default",
			`collect_url: http://localhost:8080
service: etl-pipeline
batch_size: many`,
			false,
			func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 10, cfg.BatchSize)
			},
		},
		{
			"invalid yaml",
			`collect_url: [unterminated`,
			true,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.FromYAML([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

// TestFromJSON verifies JSON parsing where all numbers arrive as floats.
func TestFromJSON(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{
		"collect_url": "https://collect.internal",
		"service": "data-collection",
		"timeout": 3,
		"batch_size": 20
	}`))
	require.NoError(t, err)
	assert.Equal(t, schema.ServiceDataCollection, cfg.Service)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.FlushInterval)

	_, err = config.FromJSON([]byte(`{not json`))
	assert.Error(t, err)
}

// TestFromFile verifies file loading with extension detection.
func TestFromFile(t *testing.T) {
	tmpDir := t.TempDir()

	yamlPath := filepath.Join(tmpDir, "beacon.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`collect_url: http://localhost:8080
service: query-executor`), 0o644))

	jsonPath := filepath.Join(tmpDir, "beacon.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"collect_url": "http://localhost:8080", "service": "query-interpreter"}`), 0o644))

	txtPath := filepath.Join(tmpDir, "beacon.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("collect_url=x"), 0o644))

	cfg, err := config.FromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, schema.ServiceQueryExecutor, cfg.Service)

	cfg, err = config.FromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, schema.ServiceQueryInterpreter, cfg.Service)

	_, err = config.FromFile(txtPath)
	assert.ErrorContains(t, err, "unsupported config file extension")

	_, err = config.FromFile(filepath.Join(tmpDir, "missing.yaml"))
	assert.Error(t, err)
}

// TestFromEnv verifies BEACON_ variables override defaults.
func TestFromEnv(t *testing.T) {
	t.Setenv("BEACON_COLLECT_URL", "https://collect.internal")
	t.Setenv("BEACON_SERVICE", "pattern-matcher")
	t.Setenv("BEACON_API_KEY", "sk-local-2")
	t.Setenv("BEACON_TIMEOUT", "2s")
	t.Setenv("BEACON_MAX_RETRIES", "4")
	t.Setenv("BEACON_FLUSH_INTERVAL", "250ms")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://collect.internal", cfg.CollectURL)
	assert.Equal(t, schema.ServicePatternMatcher, cfg.Service)
	assert.Equal(t, "sk-local-2", cfg.APIKey)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.FlushInterval)

	// Untouched keys keep their defaults.
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.RetryBaseDelay)
	assert.NoError(t, cfg.Validate())
}
