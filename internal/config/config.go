package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"leafscan/internal/render"

	"github.com/gobwas/glob"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the configuration file.
const (
	EnvEndpoint = "LEAFSCAN_ENDPOINT"
	EnvTimeout  = "LEAFSCAN_TIMEOUT"
)

// Config represents the application configuration structure.
// It defines the prediction endpoint, animation timings, intake rules,
// watch directories and the color theme.
type Config struct {
	Endpoint struct {
		BaseURL     string `yaml:"base_url" toml:"base_url"`         // Prediction service root, e.g. http://localhost:5000
		PredictPath string `yaml:"predict_path" toml:"predict_path"` // Path of the classification endpoint
		HealthPath  string `yaml:"health_path" toml:"health_path"`   // Path of the health endpoint
		Timeout     int    `yaml:"timeout" toml:"timeout"`           // Request timeout in seconds
	} `yaml:"endpoint" toml:"endpoint"`
	Animation struct {
		TypeIntervalMs    int  `yaml:"type_interval_ms" toml:"type_interval_ms"`       // Delay between typed characters of the disease name
		CounterDelayMs    int  `yaml:"counter_delay_ms" toml:"counter_delay_ms"`       // Delay before the confidence counter starts
		CounterDurationMs int  `yaml:"counter_duration_ms" toml:"counter_duration_ms"` // Duration of the confidence counter
		CounterFrameMs    int  `yaml:"counter_frame_ms" toml:"counter_frame_ms"`       // Counter refresh interval
		StaggerMs         int  `yaml:"stagger_ms" toml:"stagger_ms"`                   // Delay between revealed list items
		NotificationTTLMs int  `yaml:"notification_ttl_ms" toml:"notification_ttl_ms"` // How long a notification stays visible
		DisableAnimations bool `yaml:"disable_animations" toml:"disable_animations"`   // Render results immediately
	} `yaml:"animation" toml:"animation"`
	Intake struct {
		Patterns       []string `yaml:"patterns" toml:"patterns"`               // Glob patterns of accepted image files
		ThumbnailWidth int      `yaml:"thumbnail_width" toml:"thumbnail_width"` // Terminal preview width in cells
	} `yaml:"intake" toml:"intake"`
	Watch struct {
		Directories []string `yaml:"directories" toml:"directories"` // Inbox directories for watch mode
		DebounceMs  int      `yaml:"debounce_ms" toml:"debounce_ms"` // Quiet period before a new file is picked up
	} `yaml:"watch" toml:"watch"`
	Theme struct {
		Name     string `yaml:"name" toml:"name"`         // Theme name (default, dark, light, etc.)
		Primary  string `yaml:"primary" toml:"primary"`   // Primary color for branding
		Success  string `yaml:"success" toml:"success"`   // Success message color
		Warning  string `yaml:"warning" toml:"warning"`   // Warning message color
		Error    string `yaml:"error" toml:"error"`       // Error message color
		Info     string `yaml:"info" toml:"info"`         // Informational message color
		Emphasis string `yaml:"emphasis" toml:"emphasis"` // Emphasis color for text that should stand out
		Border   string `yaml:"border" toml:"border"`     // Border color for frames
	} `yaml:"theme" toml:"theme"`
}

// DefaultPath returns the default configuration location
// (~/.config/leafscan/config.yaml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "leafscan", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(configPath)
}

// LoadConfigFile loads configuration from a specific file path.
// Files ending in .toml are parsed as TOML, everything else as YAML.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &tempCfg)
	} else {
		err = yaml.Unmarshal(data, &tempCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.merge(&tempCfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// merge copies every field set in other over the defaults.
func (c *Config) merge(other *Config) {
	if other.Endpoint.BaseURL != "" {
		c.Endpoint.BaseURL = other.Endpoint.BaseURL
	}
	if other.Endpoint.PredictPath != "" {
		c.Endpoint.PredictPath = other.Endpoint.PredictPath
	}
	if other.Endpoint.HealthPath != "" {
		c.Endpoint.HealthPath = other.Endpoint.HealthPath
	}
	if other.Endpoint.Timeout != 0 {
		c.Endpoint.Timeout = other.Endpoint.Timeout
	}

	mergeInt(&c.Animation.TypeIntervalMs, other.Animation.TypeIntervalMs)
	mergeInt(&c.Animation.CounterDelayMs, other.Animation.CounterDelayMs)
	mergeInt(&c.Animation.CounterDurationMs, other.Animation.CounterDurationMs)
	mergeInt(&c.Animation.CounterFrameMs, other.Animation.CounterFrameMs)
	mergeInt(&c.Animation.StaggerMs, other.Animation.StaggerMs)
	mergeInt(&c.Animation.NotificationTTLMs, other.Animation.NotificationTTLMs)
	c.Animation.DisableAnimations = other.Animation.DisableAnimations

	if len(other.Intake.Patterns) > 0 {
		c.Intake.Patterns = other.Intake.Patterns
	}
	mergeInt(&c.Intake.ThumbnailWidth, other.Intake.ThumbnailWidth)

	if len(other.Watch.Directories) > 0 {
		c.Watch.Directories = other.Watch.Directories
	}
	mergeInt(&c.Watch.DebounceMs, other.Watch.DebounceMs)

	if other.Theme.Name != "" {
		c.ApplyTheme(other.Theme.Name)
	}
	// Explicit colors win over the named theme
	mergeString(&c.Theme.Primary, other.Theme.Primary)
	mergeString(&c.Theme.Success, other.Theme.Success)
	mergeString(&c.Theme.Warning, other.Theme.Warning)
	mergeString(&c.Theme.Error, other.Theme.Error)
	mergeString(&c.Theme.Info, other.Theme.Info)
	mergeString(&c.Theme.Emphasis, other.Theme.Emphasis)
	mergeString(&c.Theme.Border, other.Theme.Border)
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// ApplyEnv overrides the endpoint from LEAFSCAN_ENDPOINT and LEAFSCAN_TIMEOUT.
// Variables loaded from a .env file are visible here as well.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint.BaseURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a number of seconds: %w", EnvTimeout, err)
		}
		c.Endpoint.Timeout = secs
	}
	return c.Validate()
}

// defaultConfig returns the default configuration: 50ms typing, counter
// after 500ms for 1.5s, 100ms list stagger and 4s notifications.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Endpoint.BaseURL = "http://localhost:5000"
	cfg.Endpoint.PredictPath = "/predict"
	cfg.Endpoint.HealthPath = "/health"
	cfg.Endpoint.Timeout = 30

	cfg.Animation.TypeIntervalMs = 50
	cfg.Animation.CounterDelayMs = 500
	cfg.Animation.CounterDurationMs = 1500
	cfg.Animation.CounterFrameMs = 50
	cfg.Animation.StaggerMs = 100
	cfg.Animation.NotificationTTLMs = 4000

	cfg.Intake.Patterns = []string{"*.{jpg,jpeg,png,gif,bmp,webp,tif,tiff}"}
	cfg.Intake.ThumbnailWidth = 32

	cfg.Watch.Directories = []string{}
	cfg.Watch.DebounceMs = 500

	cfg.ApplyTheme("forest")

	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
// Returns error if any settings are invalid.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}

	u, err := url.Parse(c.Endpoint.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid endpoint base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint base_url must use http or https: %q", c.Endpoint.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint base_url has no host: %q", c.Endpoint.BaseURL)
	}
	if !strings.HasPrefix(c.Endpoint.PredictPath, "/") {
		return fmt.Errorf("predict_path must start with '/': %q", c.Endpoint.PredictPath)
	}
	if !strings.HasPrefix(c.Endpoint.HealthPath, "/") {
		return fmt.Errorf("health_path must start with '/': %q", c.Endpoint.HealthPath)
	}
	if c.Endpoint.Timeout < 1 {
		return fmt.Errorf("endpoint timeout must be >= 1 second")
	}

	timings := map[string]int{
		"type_interval_ms":    c.Animation.TypeIntervalMs,
		"counter_delay_ms":    c.Animation.CounterDelayMs,
		"counter_duration_ms": c.Animation.CounterDurationMs,
		"counter_frame_ms":    c.Animation.CounterFrameMs,
		"stagger_ms":          c.Animation.StaggerMs,
		"notification_ttl_ms": c.Animation.NotificationTTLMs,
	}
	for name, v := range timings {
		if v < 0 {
			return fmt.Errorf("animation %s must be >= 0", name)
		}
	}
	if c.Animation.CounterFrameMs == 0 {
		return fmt.Errorf("animation counter_frame_ms must be > 0")
	}
	if c.Animation.NotificationTTLMs == 0 {
		return fmt.Errorf("animation notification_ttl_ms must be > 0")
	}

	if len(c.Intake.Patterns) == 0 {
		return fmt.Errorf("intake needs at least one pattern")
	}
	for i, p := range c.Intake.Patterns {
		if p == "" {
			return fmt.Errorf("intake pattern %d: pattern is required", i)
		}
		if _, err := glob.Compile(strings.ToLower(p)); err != nil {
			return fmt.Errorf("intake pattern %d: %w", i, err)
		}
	}
	if c.Intake.ThumbnailWidth < 0 {
		return fmt.Errorf("thumbnail_width must be >= 0")
	}

	for _, dir := range c.Watch.Directories {
		if dir == "" {
			return fmt.Errorf("watch directory: path cannot be empty")
		}
	}
	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch debounce_ms must be >= 0")
	}

	return nil
}

// Timeout returns the request timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Endpoint.Timeout) * time.Second
}

// NotificationTTL returns how long a notification stays visible
func (c *Config) NotificationTTL() time.Duration {
	return ms(c.Animation.NotificationTTLMs)
}

// Debounce returns the watch quiet period
func (c *Config) Debounce() time.Duration {
	return ms(c.Watch.DebounceMs)
}

// Timing returns the animation timings used to build result timelines
func (c *Config) Timing() render.Timing {
	if c.Animation.DisableAnimations {
		return render.Instant()
	}
	return render.Timing{
		TypeInterval:    ms(c.Animation.TypeIntervalMs),
		CounterDelay:    ms(c.Animation.CounterDelayMs),
		CounterDuration: ms(c.Animation.CounterDurationMs),
		CounterFrame:    ms(c.Animation.CounterFrameMs),
		Stagger:         ms(c.Animation.StaggerMs),
	}
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// NewTestConfig creates a configuration pointing at the given endpoint
// with animations disabled, for tests.
func NewTestConfig(baseURL string) *Config {
	cfg := defaultConfig()
	cfg.Endpoint.BaseURL = baseURL
	cfg.Endpoint.Timeout = 5
	cfg.Animation.DisableAnimations = true
	return cfg
}

// GetTheme returns a predefined theme configuration by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	themes := map[string]map[string]string{
		"default": {
			"primary":  "213", // Purple
			"success":  "114", // Green
			"warning":  "220", // Yellow
			"error":    "196", // Red
			"info":     "39",  // Blue
			"emphasis": "212", // Light Pink
			"border":   "213", // Purple
		},
		"forest": {
			"primary":  "78",  // Leaf Green
			"success":  "48",  // Mint
			"warning":  "214", // Amber
			"error":    "203", // Coral Red
			"info":     "45",  // Sky Blue
			"emphasis": "156", // Light Green
			"border":   "36",  // Teal
		},
		"dark": {
			"primary":  "105", // Dark Blue
			"success":  "78",  // Dark Green
			"warning":  "214", // Dark Yellow
			"error":    "160", // Dark Red
			"info":     "33",  // Dark Blue
			"emphasis": "147", // Light Blue
			"border":   "105", // Dark Blue
		},
		"light": {
			"primary":  "135", // Light Purple
			"success":  "150", // Light Green
			"warning":  "222", // Light Yellow
			"error":    "210", // Light Red
			"info":     "117", // Light Blue
			"emphasis": "219", // Very Light Pink
			"border":   "135", // Light Purple
		},
		"monochrome": {
			"primary":  "245", // Light Grey
			"success":  "252", // White
			"warning":  "241", // Medium Grey
			"error":    "232", // Black
			"info":     "248", // Grey
			"emphasis": "255", // Bright White
			"border":   "245", // Light Grey
		},
	}

	if theme, exists := themes[name]; exists {
		return theme
	}

	return themes["default"]
}

// ApplyTheme sets the theme in the configuration.
// It updates the theme colors based on the theme name.
func (c *Config) ApplyTheme(name string) {
	theme := GetTheme(name)

	c.Theme.Name = name
	c.Theme.Primary = theme["primary"]
	c.Theme.Success = theme["success"]
	c.Theme.Warning = theme["warning"]
	c.Theme.Error = theme["error"]
	c.Theme.Info = theme["info"]
	c.Theme.Emphasis = theme["emphasis"]
	c.Theme.Border = theme["border"]
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "forest", "dark", "light", "monochrome"}
}
