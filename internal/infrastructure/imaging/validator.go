package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/marcos-nsantos/media-assets/internal/domain"
)

const (
	DefaultMaxBytes     = 5 << 20
	DefaultMinDimension = 200
	DefaultMaxDimension = 5000
)

// Validator inspects raw upload bytes before any storage work happens.
// It is pure: no side effects, no I/O.
type Validator struct {
	maxBytes int
	minDim   int
	maxDim   int
	allowed  map[string]struct{}
}

func NewValidator(maxBytes, minDim, maxDim int) *Validator {
	return &Validator{
		maxBytes: maxBytes,
		minDim:   minDim,
		maxDim:   maxDim,
		allowed: map[string]struct{}{
			"jpeg": {},
			"png":  {},
			"webp": {},
		},
	}
}

func DefaultValidator() *Validator {
	return NewValidator(DefaultMaxBytes, DefaultMinDimension, DefaultMaxDimension)
}

// Validate checks size, decodability, format and dimension bounds, in that
// order, so an oversized payload is rejected without touching the decoder.
func (v *Validator) Validate(data []byte) (width, height int, format string, err error) {
	if len(data) > v.maxBytes {
		return 0, 0, "", fmt.Errorf("%w: %d bytes, limit %d", domain.ErrTooLarge, len(data), v.maxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("%w: %v", domain.ErrUndecodable, err)
	}

	if _, ok := v.allowed[format]; !ok {
		return 0, 0, "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}

	if cfg.Width < v.minDim || cfg.Height < v.minDim || cfg.Width > v.maxDim || cfg.Height > v.maxDim {
		return 0, 0, "", fmt.Errorf("%w: %dx%d, allowed %d-%d px per side",
			domain.ErrDimensionOutOfRange, cfg.Width, cfg.Height, v.minDim, v.maxDim)
	}

	return cfg.Width, cfg.Height, format, nil
}
