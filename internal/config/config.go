// Package config loads stepforge settings from defaults, an optional
// stepforge.yaml, a .env file and STEPFORGE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/v0xg/stepforge/internal/codegen"
)

// EnvPrefix is prepended to every environment override, e.g. STEPFORGE_BROWSER_HEADLESS
const EnvPrefix = "STEPFORGE"

// Config is the full application configuration
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Browser     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	Executor    ExecutorConfig    `mapstructure:"executor" yaml:"executor"`
	Recording   RecordingConfig   `mapstructure:"recording" yaml:"recording"`
	Screenshots ScreenshotsConfig `mapstructure:"screenshots" yaml:"screenshots"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	AI          AIConfig          `mapstructure:"ai" yaml:"ai"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig controls the launched browser
type BrowserConfig struct {
	Headless   bool   `mapstructure:"headless" yaml:"headless"`
	Proxy      string `mapstructure:"proxy" yaml:"proxy"`
	UserAgent  string `mapstructure:"user_agent" yaml:"user_agent"`
	Stealth    bool   `mapstructure:"stealth" yaml:"stealth"`
	Width      int    `mapstructure:"width" yaml:"width"`
	Height     int    `mapstructure:"height" yaml:"height"`
	ProfileDir string `mapstructure:"profile_dir" yaml:"profile_dir"`
	Bin        string `mapstructure:"bin" yaml:"bin"`
}

// ExecutorConfig bounds element resolution and sets the default settle
// delay after navigation.
type ExecutorConfig struct {
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	NavigateWait int           `mapstructure:"navigate_wait" yaml:"navigate_wait"` // seconds
}

type RecordingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

type ScreenshotsConfig struct {
	Enabled  bool `mapstructure:"enabled" yaml:"enabled"`
	GIFFPS   int  `mapstructure:"gif_fps" yaml:"gif_fps"`
	GIFWidth int  `mapstructure:"gif_width" yaml:"gif_width"`
}

// OutputConfig says where saved logs and scripts go and which script
// language to emit.
type OutputConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir"`
	Target string `mapstructure:"target" yaml:"target"`
}

// AIConfig selects the step suggester. The API key is never written back to YAML.
type AIConfig struct {
	Provider  string `mapstructure:"provider" yaml:"provider"`
	Model     string `mapstructure:"model" yaml:"model"`
	APIKey    string `mapstructure:"api_key" yaml:"-"`
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "stepforge")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.proxy", "")
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.stealth", false)
	v.SetDefault("browser.width", 1280)
	v.SetDefault("browser.height", 720)
	v.SetDefault("browser.profile_dir", "")
	v.SetDefault("browser.bin", "")

	// -- Executor --
	v.SetDefault("executor.timeout", 10*time.Second)
	v.SetDefault("executor.navigate_wait", 10)

	v.SetDefault("recording.enabled", true)

	v.SetDefault("screenshots.enabled", true)
	v.SetDefault("screenshots.gif_fps", 1)
	v.SetDefault("screenshots.gif_width", 800)

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.target", "go")

	// -- AI --
	v.SetDefault("ai.provider", "claude")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.max_tokens", 1024)
}

// Load reads the configuration. An empty path searches the working
// directory for stepforge.yaml; a missing file is not an error, but an
// explicit path that does not exist is.
func Load(v *viper.Viper, path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	SetDefaults(v)
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("stepforge")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper unmarshals and validates an already populated viper instance.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// AutomaticEnv only sees keys viper already knows about
	_ = v.BindEnv("ai.api_key", EnvPrefix+"_AI_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv(EnvPrefix + "_AI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	if c.Executor.Timeout <= 0 {
		return fmt.Errorf("executor.timeout must be positive")
	}
	if c.Executor.NavigateWait < 0 {
		return fmt.Errorf("executor.navigate_wait must not be negative")
	}
	if (c.Browser.Width == 0) != (c.Browser.Height == 0) || c.Browser.Width < 0 || c.Browser.Height < 0 {
		return fmt.Errorf("browser.width and browser.height must both be positive or both be zero")
	}
	if c.Screenshots.GIFFPS <= 0 {
		return fmt.Errorf("screenshots.gif_fps must be a positive integer")
	}
	if c.Screenshots.GIFWidth < 0 {
		return fmt.Errorf("screenshots.gif_width must not be negative")
	}
	if _, err := codegen.ParseTarget(c.Output.Target); err != nil {
		return fmt.Errorf("output.target: %w", err)
	}
	switch strings.ToLower(c.AI.Provider) {
	case "", "claude", "anthropic", "openai", "gpt":
	default:
		return fmt.Errorf("ai.provider must be claude or openai, got %q", c.AI.Provider)
	}
	return nil
}
