package enhance

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stripes(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{40, 40, 40, 255}
			if x >= w/2 {
				c = color.RGBA{200, 200, 200, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestApply_KeepsBounds(t *testing.T) {
	src := stripes(64, 96)
	out, err := NewEnhancer().Apply(src)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds().Dx(), out.Bounds().Dx())
	assert.Equal(t, src.Bounds().Dy(), out.Bounds().Dy())
}

func TestApply_SharpensEdges(t *testing.T) {
	src := stripes(64, 64)
	e := &Enhancer{Amount: 1.0, Sigma: 2.0, Contrast: 1}

	out, err := e.Apply(src)
	require.NoError(t, err)

	// Pixels just left of the edge get darker, just right get brighter
	l, _, _, _ := out.At(31, 32).RGBA()
	r, _, _, _ := out.At(32, 32).RGBA()
	assert.Less(t, l>>8, uint32(40))
	assert.Greater(t, r>>8, uint32(200))

	// Flat regions are unchanged
	far, _, _, _ := out.At(2, 32).RGBA()
	assert.Equal(t, uint32(40), far>>8)
}

func TestApply_Contrast(t *testing.T) {
	src := stripes(16, 16)
	e := &Enhancer{Contrast: 1.0, Brightness: 20}

	out, err := e.Apply(src)
	require.NoError(t, err)
	v, _, _, _ := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(60), v>>8)
}

func TestApply_RejectsEmpty(t *testing.T) {
	_, err := NewEnhancer().Apply(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.Error(t, err)

	_, err = NewEnhancer().PostProcessor()(nil)
	assert.Error(t, err)
}
