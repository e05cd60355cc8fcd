package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"captcha_solver/domain/entities"
	"captcha_solver/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

const defaultChromeDriverPort = 9515

// SeleniumOptions configures the chromedriver backend
type SeleniumOptions struct {
	DriverPath   string
	ChromeBinary string
	Headless     bool
	Port         int
	PollInterval time.Duration
}

type SeleniumController struct {
	wd      selenium.WebDriver
	service *selenium.Service
	store   interfaces.ImageStore
	logger  *logrus.Logger

	pollInterval time.Duration

	closeOnce sync.Once
	closeErr  error
}

// resolveChromeDriver - resolves the configured chromedriver path or looks it up in PATH
func resolveChromeDriver(path string) (string, error) {
	if path == "" {
		path = "chromedriver"
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if found, err := exec.LookPath(path); err == nil {
		return found, nil
	}

	return "", fmt.Errorf("chromedriver not found at %q. Please install it or set BROWSER_DRIVER_PATH", path)
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// NewSeleniumController - starts chromedriver and opens a Chrome session
func NewSeleniumController(opts SeleniumOptions, store interfaces.ImageStore, logger *logrus.Logger) (*SeleniumController, error) {
	driverPath, err := resolveChromeDriver(opts.DriverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find chromedriver: %w", err)
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	chromeBinary := findChromeBinary(opts.ChromeBinary)
	if chromeBinary != "" {
		logger.Infof("Using Chrome binary at: %s", chromeBinary)
	}

	port := opts.Port
	if port == 0 {
		port = defaultChromeDriverPort
	}

	service, err := selenium.NewChromeDriverService(driverPath, port)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	caps := selenium.Capabilities{
		"browserName": "chrome",
	}

	chromeCaps := chrome.Capabilities{
		Args: []string{
			"--start-maximized",
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
		},
	}
	if opts.Headless {
		chromeCaps.Args = append(chromeCaps.Args, "--headless=new", "--window-size=1920,1080")
	}
	if chromeBinary != "" {
		chromeCaps.Path = chromeBinary
	}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		service.Stop()
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set CHROME_BINARY_PATH. Error: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &SeleniumController{
		wd:           wd,
		service:      service,
		store:        store,
		logger:       logger,
		pollInterval: pollInterval,
	}, nil
}

// Open - navigates browser to URL and maximizes the window
func (s *SeleniumController) Open(ctx context.Context, url string) error {
	s.logger.WithField("url", url).Info("Navigating")

	if err := s.wd.Get(url); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	if err := s.wd.MaximizeWindow(""); err != nil {
		return fmt.Errorf("failed to maximize window: %w", err)
	}

	return nil
}

// WaitForElement - polls FindElements until the locator matches or timeout elapses
func (s *SeleniumController) WaitForElement(ctx context.Context, locator entities.ElementLocator, timeout time.Duration) (bool, error) {
	by, value, err := seleniumBy(locator)
	if err != nil {
		return false, err
	}

	log := s.logger.WithFields(logrus.Fields{"locator": locator.String(), "timeout": timeout})
	log.Debug("Waiting for element")

	found, err := pollUntil(ctx, timeout, s.pollInterval, func() (bool, error) {
		elements, err := s.wd.FindElements(by, value)
		if err != nil {
			if isNoSuchElement(err) {
				return false, nil
			}
			return false, err
		}
		return len(elements) > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("wait for element failed: %w", err)
	}
	if !found {
		log.Info("Element not present within timeout")
	}
	return found, nil
}

// CaptureScreenshot - saves the current viewport to path and loads it back
func (s *SeleniumController) CaptureScreenshot(ctx context.Context, path string) (entities.CaptchaImage, error) {
	data, err := s.wd.Screenshot()
	if err != nil {
		return entities.CaptchaImage{}, fmt.Errorf("screenshot failed: %w", err)
	}

	if err := s.store.Save(path, data); err != nil {
		return entities.CaptchaImage{}, fmt.Errorf("failed to save screenshot: %w", err)
	}

	s.logger.WithField("path", path).Info("Screenshot captured")
	return s.store.Load(path)
}

// SubmitText - sends text as keystrokes to the element, then Enter
func (s *SeleniumController) SubmitText(ctx context.Context, locator entities.ElementLocator, text string) error {
	s.logger.WithField("locator", locator.String()).Info("Submitting answer")

	by, value, err := seleniumBy(locator)
	if err != nil {
		return err
	}

	element, err := s.wd.FindElement(by, value)
	if err != nil {
		return fmt.Errorf("element not found: %w", err)
	}

	if err := element.SendKeys(text); err != nil {
		return fmt.Errorf("typing into %s failed: %w", locator, err)
	}

	if err := element.SendKeys(selenium.EnterKey); err != nil {
		return fmt.Errorf("submit keystroke failed: %w", err)
	}

	return nil
}

// Close - quits the browser and stops ChromeDriver exactly once
func (s *SeleniumController) Close() error {
	s.closeOnce.Do(func() {
		var errs []error

		if s.wd != nil {
			if err := s.wd.Quit(); err != nil {
				errs = append(errs, fmt.Errorf("failed to quit webdriver: %w", err))
			}
		}

		if s.service != nil {
			if err := s.service.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("failed to stop chromedriver: %w", err))
			}
		}

		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// seleniumBy - maps a locator onto a WebDriver strategy
func seleniumBy(locator entities.ElementLocator) (string, string, error) {
	switch locator.Strategy {
	case entities.LocatorClass:
		return selenium.ByClassName, locator.Value, nil
	case entities.LocatorCSS:
		return selenium.ByCSSSelector, locator.Value, nil
	case entities.LocatorID:
		return selenium.ByID, locator.Value, nil
	case entities.LocatorXPath:
		return selenium.ByXPATH, locator.Value, nil
	default:
		return "", "", fmt.Errorf("unsupported locator strategy: %q", locator.Strategy)
	}
}

func isNoSuchElement(err error) bool {
	return strings.Contains(err.Error(), "no such element")
}

var _ interfaces.BrowserControllable = (*SeleniumController)(nil)
