package assets

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestPNG writes a solid-color png of the given size.
func writeTestPNG(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: 0xd0, G: 0x43, B: 0x2a, A: 0xff}), image.Point{}, draw.Src)

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestImageResizer(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "icon.png")
	writeTestPNG(t, srcPath, 64, 64)

	destPath := filepath.Join(dir, "out.png")
	resizer := &ImageResizer{}

	err := resizer.Resize(context.Background(), srcPath, 32, 32, destPath, "png")
	require.NoError(t, err)

	out, err := os.Open(destPath)
	require.NoError(t, err)
	defer out.Close()

	img, err := png.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestImageResizer_NonSquareSource(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "icon.png")
	writeTestPNG(t, srcPath, 64, 32)

	destPath := filepath.Join(dir, "out.png")
	resizer := &ImageResizer{}

	err := resizer.Resize(context.Background(), srcPath, 44, 44, destPath, "png")
	require.NoError(t, err)

	out, err := os.Open(destPath)
	require.NoError(t, err)
	defer out.Close()

	// The output stays square; the source is fitted, not stretched.
	img, err := png.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 44, img.Bounds().Dx())
	assert.Equal(t, 44, img.Bounds().Dy())
}

func TestImageResizer_MissingSource(t *testing.T) {
	resizer := &ImageResizer{}

	err := resizer.Resize(context.Background(), "/nonexistent/icon.png", 32, 32, filepath.Join(t.TempDir(), "out.png"), "png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestImageResizer_CorruptSource(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "icon.png")
	require.NoError(t, os.WriteFile(srcPath, []byte("not an image"), 0644))

	resizer := &ImageResizer{}

	err := resizer.Resize(context.Background(), srcPath, 32, 32, filepath.Join(dir, "out.png"), "png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestImageResizer_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "icon.png")
	writeTestPNG(t, srcPath, 16, 16)

	destPath := filepath.Join(dir, "out.tiff")
	resizer := &ImageResizer{}

	err := resizer.Resize(context.Background(), srcPath, 32, 32, destPath, "tiff")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")

	// Nothing half-written remains at the destination.
	assert.NoFileExists(t, destPath)
}

func TestFitRect(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		src      image.Rectangle
		expected image.Rectangle
	}{
		{"square into square", 88, 88, image.Rect(0, 0, 64, 64), image.Rect(0, 0, 88, 88)},
		{"wide into square", 88, 88, image.Rect(0, 0, 200, 100), image.Rect(0, 22, 88, 66)},
		{"tall into square", 88, 88, image.Rect(0, 0, 100, 200), image.Rect(22, 0, 66, 88)},
		{"empty source", 88, 88, image.Rect(0, 0, 0, 0), image.Rect(0, 0, 88, 88)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fitRect(tt.width, tt.height, tt.src))
		})
	}
}
