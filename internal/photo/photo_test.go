package photo

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkerboard(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/4+y/4)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 200})
			} else {
				img.SetGray(x, y, color.Gray{Y: 50})
			}
		}
	}
	return img
}

func TestNormalizeRejectsNilImage(t *testing.T) {
	n := New(DefaultConfig())
	_, err := n.Normalize(nil)
	require.Error(t, err)
}

func TestNormalizePreservesDimensions(t *testing.T) {
	n := New(DefaultConfig())
	img := checkerboard(32, 32)
	out, err := n.Normalize(img)
	require.NoError(t, err)
	assert.Equal(t, 32, out.Bounds().Dx())
	assert.Equal(t, 32, out.Bounds().Dy())
}

func TestGenerateVariantsReturnsAllClosedSetMembers(t *testing.T) {
	n := New(DefaultConfig())
	variants, err := n.GenerateVariants(checkerboard(32, 32))
	require.NoError(t, err)
	require.Len(t, variants, len(AllVariants))
	for _, v := range AllVariants {
		img, ok := variants[v]
		assert.True(t, ok, "missing variant %s", v)
		assert.NotNil(t, img)
	}
}

func TestInvertVariantIsComplementOfBaseline(t *testing.T) {
	n := New(DefaultConfig())
	variants, err := n.GenerateVariants(checkerboard(8, 8))
	require.NoError(t, err)
	base := variants[VariantBaseline].(*image.Gray)
	inv := variants[VariantInvert].(*image.Gray)
	for i := range base.Pix {
		assert.Equal(t, uint8(255)-base.Pix[i], inv.Pix[i])
	}
}

func TestNormalizeBrightnessTargetsMean(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 20
	}
	cfg := DefaultConfig()
	cfg.TargetMean = 128
	n := New(cfg)
	out, err := n.Normalize(img)
	require.NoError(t, err)
	g := out.(*image.Gray)
	var sum int
	for _, v := range g.Pix {
		sum += int(v)
	}
	mean := float64(sum) / float64(len(g.Pix))
	assert.Greater(t, mean, 40.0)
}
