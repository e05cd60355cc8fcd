package interfaces

import (
	"captcha_solver/domain/entities"
	"context"
	"time"
)

// BrowserControllable defines the browser session used by the solver
type BrowserControllable interface {
	// Open navigates to a URL and maximizes the viewport
	Open(ctx context.Context, url string) error

	// WaitForElement polls until the element is present or timeout elapses.
	// Absence is reported as false with a nil error; the error is reserved
	// for driver failures.
	WaitForElement(ctx context.Context, locator entities.ElementLocator, timeout time.Duration) (bool, error)

	// CaptureScreenshot writes the viewport to path and returns it loaded in memory
	CaptureScreenshot(ctx context.Context, path string) (entities.CaptchaImage, error)

	// SubmitText types text into the element and presses Enter
	SubmitText(ctx context.Context, locator entities.ElementLocator, text string) error

	// Close releases the browser session. Safe to call more than once.
	Close() error
}
