package security

import (
	"strings"

	"captcha_solver/domain/interfaces"
)

const redactedMarker = "[REDACTED]"

// minSecretLen keeps short values from masking unrelated text
const minSecretLen = 8

type SecurityLayer struct {
	secrets []string
}

// NewSecurityLayer - creates redactor for the given credentials
func NewSecurityLayer(secrets ...string) *SecurityLayer {
	s := &SecurityLayer{}
	for _, secret := range secrets {
		secret = strings.TrimSpace(secret)
		if len(secret) < minSecretLen {
			continue
		}
		s.secrets = append(s.secrets, secret)
	}
	return s
}

// Redact - replaces every known secret in text
func (s *SecurityLayer) Redact(text string) string {
	for _, secret := range s.secrets {
		text = strings.ReplaceAll(text, secret, redactedMarker)
	}
	return text
}

// RedactError - returns the redacted error message, empty for nil
func (s *SecurityLayer) RedactError(err error) string {
	if err == nil {
		return ""
	}
	return s.Redact(err.Error())
}

// MaskSecret - renders a credential as its last four characters for display
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 4) + secret[len(secret)-4:]
}

var _ interfaces.SecretRedactor = (*SecurityLayer)(nil)
