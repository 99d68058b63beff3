package assets

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/gen2brain/avif"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"

	"github.com/griddeck/griddeck/pkg/observability"
)

// defaultQuality is the lossy encoder quality for generated renditions.
const defaultQuality = 90

// Resizer scales one source image into a fixed-size rendition written to
// destPath in the given output format. The cache hands implementations a
// temporary path and renames the result into place itself.
type Resizer interface {
	Resize(ctx context.Context, sourcePath string, width, height int, destPath, format string) error
}

// ImageResizer is the default Resizer: it decodes common icon formats
// (avif, webp, png, jpeg, gif, bmp), scales with Catmull-Rom resampling,
// and encodes the requested output format.
type ImageResizer struct {
	// Quality overrides the lossy encoder quality. Zero means the default.
	Quality float32
}

// Resize implements Resizer.
func (r *ImageResizer) Resize(ctx context.Context, sourcePath string, width, height int, destPath, format string) (err error) {
	// Decoders fed a corrupt or hostile icon file can panic; surface that
	// as an error on this request instead of killing the daemon.
	defer func() {
		if rec := recover(); rec != nil {
			os.Remove(destPath)
			err = fmt.Errorf("failed to process %s: %w", sourcePath, observability.MustRecover(rec))
		}
	}()

	src, err := decodeImage(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", sourcePath, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, fitRect(width, height, src.Bounds()), src, src.Bounds(), draw.Src, nil)

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}

	if err := encodeImage(out, dst, format, r.quality()); err != nil {
		out.Close()
		os.Remove(destPath)
		return fmt.Errorf("failed to encode %s: %w", destPath, err)
	}

	return out.Close()
}

func (r *ImageResizer) quality() float32 {
	if r.Quality > 0 {
		return r.Quality
	}
	return defaultQuality
}

// fitRect computes the largest centered rectangle inside width x height
// that preserves the source aspect ratio. Non-square icons get
// transparent bars instead of distortion.
func fitRect(width, height int, src image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw == 0 || sh == 0 {
		return image.Rect(0, 0, width, height)
	}

	w, h := width, sh*width/sw
	if h > height {
		w, h = sw*height/sh, height
	}

	x := (width - w) / 2
	y := (height - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// decodeImage opens and decodes a source icon. avif and webp have their
// own decoders; everything else goes through the registered stdlib and
// x/image formats.
func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".avif":
		return avif.Decode(f)
	case ".webp":
		return webp.Decode(f)
	default:
		img, _, err := image.Decode(f)
		return img, err
	}
}

func encodeImage(w io.Writer, img image.Image, format string, quality float32) error {
	switch format {
	case "webp":
		return webp.Encode(w, img, &webp.Options{Quality: quality})
	case "png":
		return png.Encode(w, img)
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: int(quality)})
	case "gif":
		return gif.Encode(w, img, nil)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// placeholderSize matches the largest rendition so the fallback icon
// never upscales.
const placeholderSize = 176

// writePlaceholder renders the neutral icon served when an application
// has no usable source image: a centered lighter square on a dark tile.
func writePlaceholder(path, format string) error {
	img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))

	bg := image.NewUniform(color.NRGBA{R: 0x2e, G: 0x33, B: 0x40, A: 0xff})
	fg := image.NewUniform(color.NRGBA{R: 0x8a, G: 0x91, B: 0x99, A: 0xff})

	draw.Draw(img, img.Bounds(), bg, image.Point{}, draw.Src)

	center := placeholderSize / 2
	quarter := placeholderSize / 4
	inner := image.Rect(center-quarter, center-quarter, center+quarter, center+quarter)
	draw.Draw(img, inner, fg, image.Point{}, draw.Src)

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := encodeImage(f, img, format, defaultQuality); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
