package storage

import (
	"bytes"
	"captcha_solver/domain/entities"
	"captcha_solver/domain/interfaces"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"
)

type screenshotStore struct {
	now func() time.Time
}

// NewScreenshotStore - creates file-backed screenshot storage
func NewScreenshotStore() interfaces.ImageStore {
	return &screenshotStore{now: time.Now}
}

// Save - writes image bytes to path, creating parent directories
func (s *screenshotStore) Save(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Load - reads the image at path and decodes its dimensions
func (s *screenshotStore) Load(path string) (entities.CaptchaImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.CaptchaImage{}, fmt.Errorf("failed to read screenshot: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return entities.CaptchaImage{}, fmt.Errorf("failed to decode screenshot %s: %w", path, err)
	}

	return entities.CaptchaImage{
		Path:       path,
		Data:       data,
		MIMEType:   "image/" + format,
		Width:      cfg.Width,
		Height:     cfg.Height,
		CapturedAt: s.now(),
	}, nil
}
