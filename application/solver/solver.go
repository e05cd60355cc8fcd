package solver

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"captcha_solver/domain/entities"
	"captcha_solver/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// ErrAlreadyUsed is returned when Solve is called on a solver whose session is gone
var ErrAlreadyUsed = errors.New("solver already used; its browser session has been released")

// Options fixes the target and timings of one run
type Options struct {
	TargetURL      string
	FieldLocator   entities.ElementLocator
	ScreenshotPath string
	WaitTimeout    time.Duration
	// Observe keeps the browser open after submitting. Zero skips the pause.
	Observe time.Duration
}

// Solver sequences navigate, detect, capture, transcribe and submit over one browser session
type Solver struct {
	browser     interfaces.BrowserControllable
	transcriber interfaces.Transcribable
	redactor    interfaces.SecretRedactor
	logger      *logrus.Logger
	opts        Options

	used  atomic.Bool
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// NewSolver - creates solver owning the given browser session
func NewSolver(browser interfaces.BrowserControllable, transcriber interfaces.Transcribable, redactor interfaces.SecretRedactor, logger *logrus.Logger, opts Options) *Solver {
	return &Solver{
		browser:     browser,
		transcriber: transcriber,
		redactor:    redactor,
		logger:      logger,
		opts:        opts,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Solve - runs the pipeline once. The browser session is released on every path.
func (s *Solver) Solve(ctx context.Context) (outcome entities.Outcome) {
	outcome.StartedAt = s.now()
	if !s.used.CompareAndSwap(false, true) {
		outcome.Status = entities.OutcomeFailed
		outcome.Err = ErrAlreadyUsed
		outcome.FinishedAt = outcome.StartedAt
		return outcome
	}

	stage := entities.StageNavigate

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = entities.OutcomeFailed
			outcome.Stage = stage
			outcome.Err = &entities.StageError{
				Stage:    stage,
				Category: entities.ErrUnexpected,
				Err:      fmt.Errorf("panic: %v", r),
			}
		}
		s.cleanup()
		outcome.FinishedAt = s.now()
		s.report(outcome)
	}()

	s.logger.WithField("url", s.opts.TargetURL).Info("Opening target page")
	if err := s.browser.Open(ctx, s.opts.TargetURL); err != nil {
		return s.fail(outcome, stage, err)
	}

	stage = entities.StageDetect
	found, err := s.browser.WaitForElement(ctx, s.opts.FieldLocator, s.opts.WaitTimeout)
	if err != nil {
		return s.fail(outcome, stage, err)
	}
	if !found {
		outcome.Status = entities.OutcomeAborted
		outcome.Stage = stage
		return outcome
	}

	stage = entities.StageCapture
	image, err := s.browser.CaptureScreenshot(ctx, s.opts.ScreenshotPath)
	if err != nil {
		return s.fail(outcome, stage, err)
	}

	stage = entities.StageTranscribe
	answer, err := s.transcriber.Transcribe(ctx, image)
	if err != nil {
		return s.fail(outcome, stage, err)
	}

	stage = entities.StageSubmit
	if err := s.browser.SubmitText(ctx, s.opts.FieldLocator, answer); err != nil {
		return s.fail(outcome, stage, err)
	}
	outcome.Answer = answer

	if s.opts.Observe > 0 {
		stage = entities.StageObserve
		s.logger.Infof("Keeping the browser open for %s", s.opts.Observe)
		s.sleep(ctx, s.opts.Observe)
	}

	outcome.Status = entities.OutcomeDone
	return outcome
}

func (s *Solver) fail(outcome entities.Outcome, stage entities.Stage, err error) entities.Outcome {
	outcome.Status = entities.OutcomeFailed
	outcome.Stage = stage
	outcome.Err = entities.NewStageError(stage, err)
	return outcome
}

// cleanup - releases the browser session; failures are logged only
func (s *Solver) cleanup() {
	if err := s.browser.Close(); err != nil {
		s.logger.Warnf("Failed to close browser: %s", s.redact(err))
	}
}

func (s *Solver) report(outcome entities.Outcome) {
	log := s.logger.WithFields(logrus.Fields{
		"status":   outcome.Status,
		"duration": outcome.Duration().Round(time.Millisecond),
	})

	switch outcome.Status {
	case entities.OutcomeDone:
		log.Infof("The extracted CAPTCHA is: %s", outcome.Answer)
	case entities.OutcomeAborted:
		log.Infof("Element with locator '%s' not found within %s", s.opts.FieldLocator, s.opts.WaitTimeout)
	case entities.OutcomeFailed:
		log.WithField("stage", outcome.Stage).Errorf("An error occurred: %s", s.redact(outcome.Err))
	}
}

func (s *Solver) redact(err error) string {
	if s.redactor == nil {
		return err.Error()
	}
	return s.redactor.RedactError(err)
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
