package browser

import (
	"captcha_solver/domain/entities"
	"captcha_solver/domain/interfaces"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

const (
	defaultNavigationTimeout = 30 * time.Second
	defaultActionTimeout     = 5 * time.Second
)

// PlaywrightOptions configures the playwright backend
type PlaywrightOptions struct {
	Headless          bool
	ChromeBinary      string
	NavigationTimeout time.Duration
	ActionTimeout     time.Duration
}

// PlaywrightController drives a single Chromium page through playwright
type PlaywrightController struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	store    interfaces.ImageStore
	logger   *logrus.Logger
	headless bool

	navigationTimeout time.Duration
	actionTimeout     time.Duration

	closeOnce sync.Once
	closeErr  error
}

// NewPlaywrightController - starts playwright and opens one Chromium page
func NewPlaywrightController(opts PlaywrightOptions, store interfaces.ImageStore, logger *logrus.Logger) (*PlaywrightController, error) {
	pw, err := startPlaywright(logger)
	if err != nil {
		return nil, err
	}

	launchOptions := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--start-maximized",
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--disable-infobars",
		},
	}
	if opts.ChromeBinary != "" {
		logger.Infof("Using Chrome binary at: %s", opts.ChromeBinary)
		launchOptions.ExecutablePath = playwright.String(opts.ChromeBinary)
	}

	browser, err := pw.Chromium.Launch(launchOptions)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	// Headed windows follow --start-maximized; headless has no window to maximize.
	contextOptions := playwright.BrowserNewContextOptions{
		NoViewport: playwright.Bool(!opts.Headless),
	}
	if opts.Headless {
		contextOptions.Viewport = &playwright.Size{Width: 1920, Height: 1080}
	}

	browserContext, err := browser.NewContext(contextOptions)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		browserContext.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	c := &PlaywrightController{
		pw:                pw,
		browser:           browser,
		context:           browserContext,
		page:              page,
		store:             store,
		logger:            logger,
		headless:          opts.Headless,
		navigationTimeout: opts.NavigationTimeout,
		actionTimeout:     opts.ActionTimeout,
	}
	if c.navigationTimeout <= 0 {
		c.navigationTimeout = defaultNavigationTimeout
	}
	if c.actionTimeout <= 0 {
		c.actionTimeout = defaultActionTimeout
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		dialog.Accept()
	})

	return c, nil
}

// startPlaywright - runs the playwright driver, installing it on first use
func startPlaywright(logger *logrus.Logger) (*playwright.Playwright, error) {
	runOptions := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	pw, err := playwright.Run(runOptions)
	if err == nil {
		return pw, nil
	}

	logger.Warnf("Playwright driver not ready (%v), installing", err)
	if err := playwright.Install(runOptions); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err = playwright.Run(runOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	return pw, nil
}

// Open - navigates to the URL and maximizes the viewport
func (b *PlaywrightController) Open(ctx context.Context, url string) error {
	b.logger.WithField("url", url).Info("Navigating")

	_, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   ms(b.navigationTimeout),
	})
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	return b.maximize()
}

// maximize - sizes the viewport to the screen when no window manager does it
func (b *PlaywrightController) maximize() error {
	if !b.headless {
		return nil
	}
	if err := b.page.SetViewportSize(1920, 1080); err != nil {
		return fmt.Errorf("failed to maximize viewport: %w", err)
	}
	return nil
}

// WaitForElement - waits until an element matching locator is attached to the DOM
func (b *PlaywrightController) WaitForElement(ctx context.Context, locator entities.ElementLocator, timeout time.Duration) (bool, error) {
	log := b.logger.WithFields(logrus.Fields{"locator": locator.String(), "timeout": timeout})
	log.Debug("Waiting for element")

	// playwright treats a zero timeout as "wait forever"
	if timeout <= 0 {
		count, err := b.page.Locator(locator.Selector()).Count()
		if err != nil {
			return false, fmt.Errorf("element lookup failed: %w", err)
		}
		return count > 0, nil
	}

	target := b.page.Locator(locator.Selector()).First()
	err := target.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: ms(timeout),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			log.Info("Element not present within timeout")
			return false, nil
		}
		return false, fmt.Errorf("wait for element failed: %w", err)
	}

	return true, nil
}

// CaptureScreenshot - renders the viewport to path and loads it back
func (b *PlaywrightController) CaptureScreenshot(ctx context.Context, path string) (entities.CaptchaImage, error) {
	data, err := b.page.Screenshot()
	if err != nil {
		return entities.CaptchaImage{}, fmt.Errorf("screenshot failed: %w", err)
	}

	if err := b.store.Save(path, data); err != nil {
		return entities.CaptchaImage{}, fmt.Errorf("failed to save screenshot: %w", err)
	}

	b.logger.WithField("path", path).Info("Screenshot captured")
	return b.store.Load(path)
}

// SubmitText - types text into the element as keystrokes, then presses Enter
func (b *PlaywrightController) SubmitText(ctx context.Context, locator entities.ElementLocator, text string) error {
	b.logger.WithField("locator", locator.String()).Info("Submitting answer")

	target := b.page.Locator(locator.Selector()).First()

	if err := target.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Timeout: ms(b.actionTimeout),
	}); err != nil {
		return fmt.Errorf("typing into %s failed: %w", locator, err)
	}

	if err := target.Press("Enter", playwright.LocatorPressOptions{
		Timeout: ms(b.actionTimeout),
	}); err != nil {
		return fmt.Errorf("submit keystroke failed: %w", err)
	}

	return nil
}

// Close - closes context, browser and the playwright driver exactly once
func (b *PlaywrightController) Close() error {
	b.closeOnce.Do(func() {
		var errs []error

		if b.context != nil {
			if err := b.context.Close(); err != nil && !isClosedError(err) {
				errs = append(errs, fmt.Errorf("failed to close context: %w", err))
			}
		}

		if b.browser != nil {
			if err := b.browser.Close(); err != nil && !isClosedError(err) {
				errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
			}
		}

		if b.pw != nil {
			if err := b.pw.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
			}
		}

		b.closeErr = errors.Join(errs...)
	})
	return b.closeErr
}

func isClosedError(err error) bool {
	return errors.Is(err, playwright.ErrTargetClosed)
}

// ms - converts a duration to playwright's millisecond option
func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

var _ interfaces.BrowserControllable = (*PlaywrightController)(nil)
