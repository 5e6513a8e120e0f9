package imaging_test

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcos-nsantos/media-assets/internal/domain"
	"github.com/marcos-nsantos/media-assets/internal/infrastructure/imaging"
)

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestGenerator_Generate(t *testing.T) {
	g := imaging.NewGenerator()
	specs := []imaging.RenditionSpec{
		{Name: "thumbnail", MaxWidth: 200, MaxHeight: 200, Quality: 80},
		{Name: "medium", MaxWidth: 800, MaxHeight: 800, Quality: 85},
	}

	t.Run("fits renditions inside the bounding box", func(t *testing.T) {
		out, err := g.Generate(pngBytes(t, 400, 300), specs)

		require.NoError(t, err)
		require.Len(t, out, 2)

		w, h := decodeDims(t, out["thumbnail"])
		assert.LessOrEqual(t, w, 200)
		assert.LessOrEqual(t, h, 200)
		assert.Equal(t, 200, w, "longest side should hit its bound")
		assert.Equal(t, 150, h, "aspect ratio must be preserved")
	})

	t.Run("does not upscale smaller originals", func(t *testing.T) {
		out, err := g.Generate(pngBytes(t, 400, 300), specs)

		require.NoError(t, err)
		w, h := decodeDims(t, out["medium"])
		assert.Equal(t, 400, w)
		assert.Equal(t, 300, h)
	})

	t.Run("is deterministic for identical input", func(t *testing.T) {
		src := pngBytes(t, 400, 300)

		first, err := g.Generate(src, specs)
		require.NoError(t, err)
		second, err := g.Generate(src, specs)
		require.NoError(t, err)

		assert.Equal(t, first["thumbnail"], second["thumbnail"])
		assert.Equal(t, first["medium"], second["medium"])
	})

	t.Run("flattens transparency onto an opaque background", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
		// Fully transparent canvas: flattening must yield white, not black.
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))

		out, err := g.Generate(buf.Bytes(), specs[:1])
		require.NoError(t, err)

		decoded, _, err := image.Decode(bytes.NewReader(out["thumbnail"]))
		require.NoError(t, err)
		r, green, b, _ := decoded.At(50, 50).RGBA()
		assert.Greater(t, r, uint32(0xf000))
		assert.Greater(t, green, uint32(0xf000))
		assert.Greater(t, b, uint32(0xf000))
	})

	t.Run("fails whole set on undecodable original", func(t *testing.T) {
		out, err := g.Generate([]byte("garbage"), specs)

		assert.Nil(t, out)
		assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	})
}

func TestGenerator_RenditionsAreJPEG(t *testing.T) {
	g := imaging.NewGenerator()

	out, err := g.Generate(pngBytes(t, 300, 300), []imaging.RenditionSpec{
		{Name: "thumbnail", MaxWidth: 200, MaxHeight: 200, Quality: 80},
	})
	require.NoError(t, err)

	_, format, err := image.DecodeConfig(bytes.NewReader(out["thumbnail"]))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}
