package browser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"captcha_solver/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
)

func TestSeleniumBy(t *testing.T) {
	tests := []struct {
		locator entities.ElementLocator
		by      string
		value   string
	}{
		{locator: entities.ByClass("a-span12"), by: selenium.ByClassName, value: "a-span12"},
		{locator: entities.ByCSS("input#captchacharacters"), by: selenium.ByCSSSelector, value: "input#captchacharacters"},
		{locator: entities.ElementLocator{Strategy: entities.LocatorID, Value: "captchacharacters"}, by: selenium.ByID, value: "captchacharacters"},
		{locator: entities.ElementLocator{Strategy: entities.LocatorXPath, Value: "//input"}, by: selenium.ByXPATH, value: "//input"},
	}

	for _, tt := range tests {
		t.Run(tt.locator.String(), func(t *testing.T) {
			by, value, err := seleniumBy(tt.locator)
			require.NoError(t, err)
			assert.Equal(t, tt.by, by)
			assert.Equal(t, tt.value, value)
		})
	}

	_, _, err := seleniumBy(entities.ElementLocator{Strategy: "name", Value: "q"})
	assert.Error(t, err)
}

func TestCloseWithoutSessionIsNoop(t *testing.T) {
	pc := &PlaywrightController{}
	assert.NoError(t, pc.Close())
	assert.NoError(t, pc.Close())

	sc := &SeleniumController{}
	assert.NoError(t, sc.Close())
	assert.NoError(t, sc.Close())
}

func TestResolveChromeDriver(t *testing.T) {
	dir := t.TempDir()
	driver := filepath.Join(dir, "chromedriver")
	require.NoError(t, os.WriteFile(driver, []byte("#!/bin/sh\n"), 0755))

	got, err := resolveChromeDriver(driver)
	require.NoError(t, err)
	assert.Equal(t, driver, got)

	_, err = resolveChromeDriver(filepath.Join(dir, "missing-chromedriver"))
	assert.ErrorContains(t, err, "chromedriver not found")
}

func TestIsNoSuchElement(t *testing.T) {
	assert.True(t, isNoSuchElement(errors.New("no such element: Unable to locate element")))
	assert.False(t, isNoSuchElement(os.ErrClosed))
}
