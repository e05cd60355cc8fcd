package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"captcha_solver/application/solver"
	"captcha_solver/domain/entities"
	"captcha_solver/domain/interfaces"
	"captcha_solver/infrastructure/ai"
	"captcha_solver/infrastructure/browser"
	"captcha_solver/infrastructure/config"
	"captcha_solver/infrastructure/security"
	"captcha_solver/infrastructure/storage"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
)

// Version is reported by --version
var Version = "dev"

// ErrSolveFailed is returned by Run when the pipeline ended in failure
var ErrSolveFailed = errors.New("captcha solve failed")

type browserFactory func(cfg *config.Config, store interfaces.ImageStore, logger *logrus.Logger) (interfaces.BrowserControllable, error)

type TerminalInterface struct {
	cfg         *config.Config
	solver      *solver.Solver
	browserCtrl interfaces.BrowserControllable
	redactor    *security.SecurityLayer
	logger      *logrus.Logger

	// solved is set once Solve has taken ownership of the browser session
	solved bool
}

// NewTerminalInterface - loads configuration and wires the solver
func NewTerminalInterface(args []string) (*TerminalInterface, error) {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return newTerminalInterface(args, os.LookupEnv, newBrowser)
}

func newTerminalInterface(args []string, lookup config.LookupFunc, makeBrowser browserFactory) (*TerminalInterface, error) {
	// Configuration errors, including a missing credential, stop here before any browser exists.
	cfg, err := config.Load(args, lookup)
	if err != nil {
		return nil, err
	}
	if cfg.ShowVersion {
		return &TerminalInterface{cfg: cfg}, nil
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	redactor := security.NewSecurityLayer(cfg.APIKey)
	logger.WithFields(logrus.Fields{
		"model":  cfg.Model,
		"key":    security.MaskSecret(cfg.APIKey),
		"driver": cfg.Driver,
	}).Debug("Configuration loaded")

	transcriber, err := ai.NewOpenAIClient(ai.ClientConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI service: %s", redactor.RedactError(err))
	}

	browserCtrl, err := makeBrowser(cfg, storage.NewScreenshotStore(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	s := solver.NewSolver(browserCtrl, transcriber, redactor, logger, solver.Options{
		TargetURL:      cfg.TargetURL,
		FieldLocator:   cfg.FieldLocator,
		ScreenshotPath: cfg.ScreenshotPath,
		WaitTimeout:    cfg.WaitTimeout,
		Observe:        cfg.Observe,
	})

	return &TerminalInterface{
		cfg:         cfg,
		solver:      s,
		browserCtrl: browserCtrl,
		redactor:    redactor,
		logger:      logger,
	}, nil
}

// newBrowser - starts the configured browser backend
func newBrowser(cfg *config.Config, store interfaces.ImageStore, logger *logrus.Logger) (interfaces.BrowserControllable, error) {
	if cfg.Driver == config.DriverSelenium {
		ctrl, err := browser.NewSeleniumController(browser.SeleniumOptions{
			DriverPath:   cfg.DriverPath,
			ChromeBinary: cfg.ChromeBinary,
			Headless:     cfg.Headless,
		}, store, logger)
		if err != nil {
			return nil, err
		}
		return ctrl, nil
	}

	ctrl, err := browser.NewPlaywrightController(browser.PlaywrightOptions{
		Headless:     cfg.Headless,
		ChromeBinary: cfg.ChromeBinary,
	}, store, logger)
	if err != nil {
		return nil, err
	}
	return ctrl, nil
}

func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger, nil
}

// Run - performs one solve attempt and prints its outcome
func (t *TerminalInterface) Run() error {
	if t.cfg.ShowVersion {
		pterm.Printfln("captcha_solver %s", Version)
		return nil
	}

	pterm.DefaultSection.Println("CAPTCHA solver")
	pterm.Info.Printfln("Target: %s", t.cfg.TargetURL)

	t.solved = true
	outcome := t.solver.Solve(context.Background())
	t.printOutcome(outcome)

	if outcome.Status == entities.OutcomeFailed {
		return fmt.Errorf("%w: %s", ErrSolveFailed, t.redactor.RedactError(outcome.Err))
	}
	return nil
}

func (t *TerminalInterface) printOutcome(outcome entities.Outcome) {
	switch outcome.Status {
	case entities.OutcomeDone:
		pterm.Success.Printfln("The extracted CAPTCHA is: %s", outcome.Answer)
	case entities.OutcomeAborted:
		pterm.Info.Printfln("No challenge shown within %s; nothing to solve", t.cfg.WaitTimeout)
	case entities.OutcomeFailed:
		pterm.Error.Printfln("Solve failed during the %s stage", outcome.Stage)
	}
}

// Close - releases the browser when Run never handed it to the solver
func (t *TerminalInterface) Close() error {
	if t.browserCtrl == nil || t.solved {
		return nil
	}
	return t.browserCtrl.Close()
}
