package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"captcha_solver/presentation/terminal"

	"github.com/stretchr/testify/assert"
)

func TestReportRunErrorSkipsLoggedFailures(t *testing.T) {
	var out bytes.Buffer
	reportRunError(&out, fmt.Errorf("%w: transcription failed", terminal.ErrSolveFailed))
	assert.Empty(t, out.String())

	reportRunError(&out, errors.New("stdout closed"))
	assert.Equal(t, "Error: stdout closed\n", out.String())
}
