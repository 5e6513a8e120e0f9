package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/disintegration/imaging"

	"github.com/marcos-nsantos/media-assets/internal/domain"
)

type RenditionSpec struct {
	Name      string
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// Generator derives resized copies of an original image. It is a pure
// transform over bytes: same input and specs, same output.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate produces every spec or nothing. Renditions are encoded as JPEG,
// scaled to fit the bounding box without upscaling, aspect ratio preserved.
func (g *Generator) Generate(original []byte, specs []RenditionSpec) (map[string][]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding original: %v", domain.ErrGenerationFailed, err)
	}

	img = flatten(img)

	out := make(map[string][]byte, len(specs))
	for _, spec := range specs {
		resized := imaging.Fit(img, spec.MaxWidth, spec.MaxHeight, imaging.Lanczos)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: spec.Quality}); err != nil {
			return nil, fmt.Errorf("%w: encoding %s: %v", domain.ErrGenerationFailed, spec.Name, err)
		}
		out[spec.Name] = buf.Bytes()
	}

	return out, nil
}

// flatten composites transparent images onto an opaque white background.
// JPEG has no alpha channel.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	bounds := img.Bounds()
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}
