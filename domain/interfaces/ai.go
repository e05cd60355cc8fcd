package interfaces

import (
	"captcha_solver/domain/entities"
	"context"
)

// Transcribable converts a captured challenge into its text
type Transcribable interface {
	// Transcribe returns the trimmed text the model read from the image
	Transcribe(ctx context.Context, image entities.CaptchaImage) (string, error)
}
