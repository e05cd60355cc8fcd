package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"captcha_solver/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, envOf(map[string]string{"OPENAI_API_KEY": "sk-test"}))
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Empty(t, cfg.BaseURL)
	assert.Equal(t, DefaultTargetURL, cfg.TargetURL)
	assert.Equal(t, entities.ByClass("a-span12"), cfg.FieldLocator)
	assert.Equal(t, DefaultScreenshotPath, cfg.ScreenshotPath)
	assert.Equal(t, 10*time.Second, cfg.WaitTimeout)
	assert.Zero(t, cfg.Observe)
	assert.Equal(t, DriverPlaywright, cfg.Driver)
	assert.Equal(t, DefaultDriverPath, cfg.DriverPath)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingCredential(t *testing.T) {
	_, err := Load(nil, envOf(map[string]string{"OPENAI_API_KEY": "   "}))
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestLoadGeminiFallback(t *testing.T) {
	cfg, err := Load(nil, envOf(map[string]string{"GEMINI_API_KEY": "AIza-test"}))
	require.NoError(t, err)

	assert.Equal(t, "AIza-test", cfg.APIKey)
	assert.Equal(t, DefaultGeminiModel, cfg.Model)
	assert.Equal(t, DefaultGeminiBaseURL, cfg.BaseURL)
}

func TestLoadOpenAIKeyWinsOverGemini(t *testing.T) {
	cfg, err := Load(nil, envOf(map[string]string{
		"OPENAI_API_KEY": "sk-test",
		"GEMINI_API_KEY": "AIza-test",
	}))
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Empty(t, cfg.BaseURL)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	cfg, err := Load(nil, envOf(map[string]string{
		"OPENAI_API_KEY":          "sk-test",
		"OPENAI_MODEL":            "gpt-4o-mini",
		"CAPTCHA_TARGET_URL":      "https://example.com/validateCaptcha",
		"CAPTCHA_FIELD_LOCATOR":   "id=captchacharacters",
		"CAPTCHA_SCREENSHOT_PATH": "out/shot.png",
		"CAPTCHA_WAIT_TIMEOUT":    "3",
		"CAPTCHA_OBSERVE":         "1500ms",
		"BROWSER_DRIVER":          "selenium",
		"BROWSER_DRIVER_PATH":     "/usr/bin/chromedriver",
		"BROWSER_HEADLESS":        "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "https://example.com/validateCaptcha", cfg.TargetURL)
	assert.Equal(t, entities.ElementLocator{Strategy: entities.LocatorID, Value: "captchacharacters"}, cfg.FieldLocator)
	assert.Equal(t, "out/shot.png", cfg.ScreenshotPath)
	assert.Equal(t, 3*time.Second, cfg.WaitTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Observe)
	assert.Equal(t, DriverSelenium, cfg.Driver)
	assert.Equal(t, "/usr/bin/chromedriver", cfg.DriverPath)
	assert.True(t, cfg.Headless)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	cfg, err := Load(
		[]string{"--url", "https://flag.example", "--wait", "250ms", "--observe", "2s", "--field", "css=input[name=field-keywords]"},
		envOf(map[string]string{
			"OPENAI_API_KEY":     "sk-test",
			"CAPTCHA_TARGET_URL": "https://env.example",
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example", cfg.TargetURL)
	assert.Equal(t, 250*time.Millisecond, cfg.WaitTimeout)
	assert.Equal(t, 2*time.Second, cfg.Observe)
	assert.Equal(t, entities.ByCSS("input[name=field-keywords]"), cfg.FieldLocator)
}

func TestLoadDurationsAcceptSameSyntaxFromEnvAndFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want time.Duration
	}{
		{name: "env bare seconds", env: map[string]string{"CAPTCHA_WAIT_TIMEOUT": "10"}, want: 10 * time.Second},
		{name: "flag bare seconds", args: []string{"--wait", "10"}, want: 10 * time.Second},
		{name: "env duration", env: map[string]string{"CAPTCHA_WAIT_TIMEOUT": "1m"}, want: time.Minute},
		{name: "flag duration", args: []string{"--wait=1m"}, want: time.Minute},
		{name: "flag zero", args: []string{"--wait", "0"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := map[string]string{"OPENAI_API_KEY": "sk-test"}
			for k, v := range tt.env {
				env[k] = v
			}
			cfg, err := Load(tt.args, envOf(env))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.WaitTimeout)
		})
	}

	cfg, err := Load([]string{"--observe", "5"}, envOf(map[string]string{"OPENAI_API_KEY": "sk-test"}))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Observe)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "bad wait env", env: map[string]string{"CAPTCHA_WAIT_TIMEOUT": "soon"}},
		{name: "bad headless env", env: map[string]string{"BROWSER_HEADLESS": "maybe"}},
		{name: "negative wait", args: []string{"--wait=-1s"}},
		{name: "bad wait flag", args: []string{"--wait", "soon"}},
		{name: "negative bare seconds", args: []string{"--observe=-3"}},
		{name: "unknown driver", args: []string{"--driver", "lynx"}},
		{name: "unknown locator strategy", args: []string{"--field", "name=q"}},
		{name: "unknown flag", args: []string{"--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := map[string]string{"OPENAI_API_KEY": "sk-test"}
			for k, v := range tt.env {
				env[k] = v
			}
			_, err := Load(tt.args, envOf(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CAPTCHA_SOLVER_DOTENV_TEST=loaded\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("CAPTCHA_SOLVER_DOTENV_TEST") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("CAPTCHA_SOLVER_DOTENV_TEST"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
