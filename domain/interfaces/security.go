package interfaces

// SecretRedactor masks credentials before text reaches logs or the console
type SecretRedactor interface {
	Redact(text string) string
	RedactError(err error) string
}
