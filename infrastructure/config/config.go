package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"captcha_solver/domain/entities"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	DefaultTargetURL      = "https://www.amazon.com/"
	DefaultFieldLocator   = "class=a-span12"
	DefaultScreenshotPath = "captcha_screenshot.png"
	DefaultWaitTimeout    = 10 * time.Second
	DefaultModel          = "gpt-4o"
	DefaultGeminiModel    = "gemini-1.5-pro"
	DefaultGeminiBaseURL  = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultDriverPath     = "chromedriver"

	DriverPlaywright = "playwright"
	DriverSelenium   = "selenium"
)

var (
	// ErrMissingCredential is returned when no model API key is configured
	ErrMissingCredential = errors.New("environment variable OPENAI_API_KEY (or GEMINI_API_KEY) is not set")
	// ErrHelp is returned by Load when -h or --help was given
	ErrHelp = pflag.ErrHelp
)

// Config holds everything a single solve run needs
type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	TargetURL      string
	FieldLocator   entities.ElementLocator
	ScreenshotPath string
	WaitTimeout    time.Duration
	Observe        time.Duration

	Driver       string
	DriverPath   string
	ChromeBinary string
	Headless     bool

	LogLevel    string
	ShowVersion bool
}

// LookupFunc reads an environment variable
type LookupFunc func(key string) (string, bool)

// LoadDotEnv - loads .env files into the process environment; a missing file is not an error
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !isNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load - builds config from environment, then applies command line flags
func Load(args []string, lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	env := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg.APIKey = env("OPENAI_API_KEY", "")
	cfg.Model = env("OPENAI_MODEL", "")
	cfg.BaseURL = env("OPENAI_BASE_URL", "")
	if cfg.APIKey == "" {
		if gemini := env("GEMINI_API_KEY", ""); gemini != "" {
			cfg.APIKey = gemini
			if cfg.BaseURL == "" {
				cfg.BaseURL = DefaultGeminiBaseURL
			}
			if cfg.Model == "" {
				cfg.Model = DefaultGeminiModel
			}
		}
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	waitDefault, err := parseDuration(env("CAPTCHA_WAIT_TIMEOUT", ""), DefaultWaitTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid CAPTCHA_WAIT_TIMEOUT: %w", err)
	}
	observeDefault, err := parseDuration(env("CAPTCHA_OBSERVE", ""), 0)
	if err != nil {
		return nil, fmt.Errorf("invalid CAPTCHA_OBSERVE: %w", err)
	}
	headlessDefault, err := parseBool(env("BROWSER_HEADLESS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid BROWSER_HEADLESS: %w", err)
	}

	cfg.WaitTimeout = waitDefault
	cfg.Observe = observeDefault

	var field string
	flags := pflag.NewFlagSet("captcha_solver", pflag.ContinueOnError)
	flags.StringVar(&cfg.TargetURL, "url", env("CAPTCHA_TARGET_URL", DefaultTargetURL), "Page that presents the challenge")
	flags.StringVar(&field, "field", env("CAPTCHA_FIELD_LOCATOR", DefaultFieldLocator), "Challenge input field as strategy=value (class, css, id, xpath)")
	flags.StringVar(&cfg.ScreenshotPath, "screenshot", env("CAPTCHA_SCREENSHOT_PATH", DefaultScreenshotPath), "Where the captured viewport is written")
	flags.Var((*durationValue)(&cfg.WaitTimeout), "wait", "How long to wait for the challenge to appear (10s or bare seconds)")
	flags.Var((*durationValue)(&cfg.Observe), "observe", "Keep the browser open this long after submitting (0 disables)")
	flags.StringVar(&cfg.Driver, "driver", env("BROWSER_DRIVER", DriverPlaywright), "Browser backend: playwright or selenium")
	flags.StringVar(&cfg.DriverPath, "driver-path", env("BROWSER_DRIVER_PATH", DefaultDriverPath), "chromedriver executable used by the selenium backend")
	flags.StringVar(&cfg.ChromeBinary, "chrome-binary", env("CHROME_BINARY_PATH", ""), "Chrome executable (optional)")
	flags.BoolVar(&cfg.Headless, "headless", headlessDefault, "Run the browser without a window")
	flags.StringVar(&cfg.LogLevel, "log-level", env("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	flags.BoolVarP(&cfg.ShowVersion, "version", "v", false, "Show version and exit")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if cfg.ShowVersion {
		return cfg, nil
	}

	cfg.FieldLocator, err = entities.ParseLocator(field)
	if err != nil {
		return nil, fmt.Errorf("invalid field locator: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate - checks required values and ranges
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingCredential
	}
	if c.TargetURL == "" {
		return fmt.Errorf("target url is required")
	}
	if c.ScreenshotPath == "" {
		return fmt.Errorf("screenshot path is required")
	}
	if c.WaitTimeout < 0 {
		return fmt.Errorf("wait timeout must not be negative: %s", c.WaitTimeout)
	}
	if c.Observe < 0 {
		return fmt.Errorf("observe duration must not be negative: %s", c.Observe)
	}
	switch c.Driver {
	case DriverPlaywright, DriverSelenium:
	default:
		return fmt.Errorf("unknown browser driver: %q", c.Driver)
	}
	return nil
}

// parseDuration - accepts Go durations ("10s") or bare seconds ("10")
func parseDuration(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// durationValue is a pflag.Value with the same syntax as the duration env vars
type durationValue time.Duration

func (d *durationValue) Set(s string) error {
	v, err := parseDuration(strings.TrimSpace(s), 0)
	if err != nil {
		return err
	}
	*d = durationValue(v)
	return nil
}

func (d *durationValue) String() string { return time.Duration(*d).String() }

func (d *durationValue) Type() string { return "duration" }

func parseBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
