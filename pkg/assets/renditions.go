package assets

import "fmt"

// Rendition identifies one fixed-size derived icon the panel serves.
type Rendition string

const (
	RenditionLargeGrid     Rendition = "largeGridIcon"
	RenditionSmallGrid     Rendition = "smallGridIcon"
	RenditionQuickShortcut Rendition = "quickShortcutIcon"
	RenditionList          Rendition = "listIcon"
)

// renditionSpec fixes the output geometry and encoding of one rendition.
// Renditions are square.
type renditionSpec struct {
	size int    // edge length in pixels
	ext  string // output encoding, doubles as the file extension
}

var renditionSpecs = map[Rendition]renditionSpec{
	RenditionLargeGrid:     {size: 176, ext: "webp"},
	RenditionSmallGrid:     {size: 88, ext: "webp"},
	RenditionQuickShortcut: {size: 64, ext: "webp"},
	RenditionList:          {size: 44, ext: "webp"},
}

// Renditions returns every known rendition, largest first.
func Renditions() []Rendition {
	return []Rendition{
		RenditionLargeGrid,
		RenditionSmallGrid,
		RenditionQuickShortcut,
		RenditionList,
	}
}

// ParseRendition maps a request path segment onto the fixed rendition
// table.
func ParseRendition(name string) (Rendition, error) {
	r := Rendition(name)
	if _, ok := renditionSpecs[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRendition, name)
	}
	return r, nil
}

// Size returns the square edge length of the rendition in pixels.
func (r Rendition) Size() int {
	return renditionSpecs[r].size
}

func contentTypeForExt(ext string) string {
	switch ext {
	case "webp":
		return "image/webp"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
