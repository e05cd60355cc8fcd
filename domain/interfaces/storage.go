package interfaces

import "captcha_solver/domain/entities"

// ImageStore persists and loads captured screenshots
type ImageStore interface {
	// Save writes raw image bytes to path
	Save(path string, data []byte) error

	// Load reads and decodes the image at path
	Load(path string) (entities.CaptchaImage, error)
}
