package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"leafscan/internal/config"
	"leafscan/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary config file
func createTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const (
	validYAML = `
endpoint:
  base_url: "https://plants.example.com"
  timeout: 10
animation:
  stagger_ms: 200
intake:
  patterns: ["*.jpg", "*.png"]
watch:
  directories: ["/srv/inbox"]
  debounce_ms: 250
theme:
  name: dark
  primary: "99"
`
	validTOML = `
[endpoint]
base_url = "http://10.0.0.5:8080"
predict_path = "/api/predict"

[animation]
disable_animations = true
`
	invalidSyntaxYAML = `
endpoint:
  base_url: "http://localhost
  timeout: [
`
	invalidURLYAML = `
endpoint:
  base_url: "ftp://localhost"
`
	invalidPatternYAML = `
intake:
  patterns: ["[unclosed"]
`
	invalidDirsYAML = `
watch:
  directories: [""]
`
)

func TestLoadConfigFile(t *testing.T) {
	t.Run("load valid yaml", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestFile(t, "config.yaml", validYAML))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "https://plants.example.com", cfg.Endpoint.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.Timeout())
		assert.Equal(t, "/predict", cfg.Endpoint.PredictPath, "unset fields keep defaults")
		assert.Equal(t, 200, cfg.Animation.StaggerMs)
		assert.Equal(t, 50, cfg.Animation.TypeIntervalMs)
		assert.Equal(t, []string{"*.jpg", "*.png"}, cfg.Intake.Patterns)
		assert.Equal(t, []string{"/srv/inbox"}, cfg.Watch.Directories)
		assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
		assert.Equal(t, "dark", cfg.Theme.Name)
		assert.Equal(t, "99", cfg.Theme.Primary, "explicit colors override the theme")
		assert.Equal(t, config.GetTheme("dark")["success"], cfg.Theme.Success)
	})

	t.Run("load valid toml", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestFile(t, "config.toml", validTOML))
		require.NoError(t, err)
		assert.Equal(t, "http://10.0.0.5:8080", cfg.Endpoint.BaseURL)
		assert.Equal(t, "/api/predict", cfg.Endpoint.PredictPath)
		assert.True(t, cfg.Animation.DisableAnimations)
		assert.Equal(t, render.Instant(), cfg.Timing())
	})

	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, config.New(), cfg)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestFile(t, "bad.yaml", invalidSyntaxYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error parsing config file")
	})

	for name, content := range map[string]string{
		"bad url":     invalidURLYAML,
		"bad pattern": invalidPatternYAML,
		"empty dir":   invalidDirsYAML,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadConfigFile(createTestFile(t, "config.yaml", content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"defaults are valid", func(c *config.Config) {}, ""},
		{"no host", func(c *config.Config) { c.Endpoint.BaseURL = "http://" }, "no host"},
		{"bad scheme", func(c *config.Config) { c.Endpoint.BaseURL = "localhost:5000" }, ""},
		{"relative path", func(c *config.Config) { c.Endpoint.PredictPath = "predict" }, "predict_path"},
		{"zero timeout", func(c *config.Config) { c.Endpoint.Timeout = 0 }, "timeout"},
		{"negative stagger", func(c *config.Config) { c.Animation.StaggerMs = -1 }, "stagger_ms"},
		{"zero frame", func(c *config.Config) { c.Animation.CounterFrameMs = 0 }, "counter_frame_ms"},
		{"no patterns", func(c *config.Config) { c.Intake.Patterns = nil }, "at least one pattern"},
		{"negative debounce", func(c *config.Config) { c.Watch.DebounceMs = -5 }, "debounce_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.name == "defaults are valid" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(config.EnvEndpoint, "http://gpu-box:5000")
	t.Setenv(config.EnvTimeout, "90")

	cfg := config.New()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "http://gpu-box:5000", cfg.Endpoint.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Timeout())

	t.Setenv(config.EnvTimeout, "soon")
	assert.Error(t, config.New().ApplyEnv())
}

func TestSaveConfigRoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg := config.New()
			cfg.Endpoint.BaseURL = "https://leaf.example.org"
			cfg.Watch.Directories = []string{"/tmp/inbox"}

			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, config.SaveConfig(cfg, path))

			loaded, err := config.LoadConfigFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.Endpoint, loaded.Endpoint)
			assert.Equal(t, cfg.Watch.Directories, loaded.Watch.Directories)
			assert.Equal(t, cfg.Theme, loaded.Theme)
		})
	}
}

func TestTiming(t *testing.T) {
	timing := config.New().Timing()
	assert.Equal(t, render.DefaultTiming(), timing)
	assert.Equal(t, 4*time.Second, config.New().NotificationTTL())
}

func TestThemes(t *testing.T) {
	for _, name := range config.ListThemes() {
		theme := config.GetTheme(name)
		assert.NotEmpty(t, theme["primary"], name)
	}
	assert.Equal(t, config.GetTheme("default"), config.GetTheme("no-such-theme"))

	cfg := config.New()
	assert.Equal(t, "forest", cfg.Theme.Name)
	cfg.ApplyTheme("light")
	assert.Equal(t, config.GetTheme("light")["error"], cfg.Theme.Error)
}
