package entities

import (
	"encoding/base64"
	"time"
)

// CaptchaImage is a bitmap captured from the viewport at one point in time
type CaptchaImage struct {
	Path       string    `json:"path"`
	Data       []byte    `json:"-"`
	MIMEType   string    `json:"mime_type"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CapturedAt time.Time `json:"captured_at"`
}

// DataURL - returns the image as a base64 data URL
func (c CaptchaImage) DataURL() string {
	mime := c.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(c.Data)
}
