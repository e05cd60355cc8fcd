package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestScreenshotStoreSaveAndLoad(t *testing.T) {
	store := NewScreenshotStore()
	path := filepath.Join(t.TempDir(), "shots", "captcha.png")
	data := encodePNG(t, 40, 20)

	require.NoError(t, store.Save(path, data))

	img, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, img.Path)
	assert.Equal(t, data, img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, 40, img.Width)
	assert.Equal(t, 20, img.Height)
	assert.False(t, img.CapturedAt.IsZero())
}

func TestScreenshotStoreSaveOverwrites(t *testing.T) {
	store := NewScreenshotStore()
	path := filepath.Join(t.TempDir(), "captcha.png")

	require.NoError(t, store.Save(path, encodePNG(t, 10, 10)))
	require.NoError(t, store.Save(path, encodePNG(t, 30, 5)))

	img, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, img.Width)
	assert.Equal(t, 5, img.Height)
}

func TestScreenshotStoreLoadErrors(t *testing.T) {
	store := NewScreenshotStore()
	dir := t.TempDir()

	_, err := store.Load(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0644))
	_, err = store.Load(garbage)
	assert.ErrorContains(t, err, "failed to decode screenshot")
}
