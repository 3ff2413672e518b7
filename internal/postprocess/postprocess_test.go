package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestScaleIntoSqueezesIntoHalf(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	src := solid(8, 4, red)
	dst := image.NewNRGBA(image.Rect(0, 0, 8, 4))

	ScaleInto(dst, image.Rect(0, 0, 4, 4), src, src.Bounds())

	assert.Equal(t, red, dst.NRGBAAt(0, 0))
	assert.Equal(t, red, dst.NRGBAAt(3, 3))
	assert.Equal(t, color.NRGBA{}, dst.NRGBAAt(4, 0), "right half untouched")
}

func TestScaleIntoSameSizeCopies(t *testing.T) {
	src := solid(3, 3, color.NRGBA{10, 20, 30, 40})
	dst := image.NewNRGBA(image.Rect(0, 0, 6, 3))
	ScaleInto(dst, image.Rect(3, 0, 6, 3), src, src.Bounds())
	assert.Equal(t, color.NRGBA{10, 20, 30, 40}, dst.NRGBAAt(5, 2))
}

func TestCropIntoTakesCentre(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 2))
	for x := 0; x < 8; x++ {
		src.SetNRGBA(x, 0, color.NRGBA{uint8(x), 0, 0, 255})
		src.SetNRGBA(x, 1, color.NRGBA{uint8(x), 0, 0, 255})
	}
	dst := image.NewNRGBA(image.Rect(0, 0, 8, 2))
	CropInto(dst, image.Rect(4, 0, 8, 2), src)

	for x := 4; x < 8; x++ {
		assert.Equal(t, uint8(x-2), dst.NRGBAAt(x, 0).R, "column %d", x)
	}
}

func TestCoverRect(t *testing.T) {
	wide := image.Rect(0, 0, 400, 100)
	assert.Equal(t, image.Rect(150, 0, 250, 100), CoverRect(wide, 10, 10))

	tall := image.Rect(0, 0, 100, 400)
	assert.Equal(t, image.Rect(0, 150, 100, 250), CoverRect(tall, 10, 10))

	assert.Equal(t, image.Rectangle{}, CoverRect(wide, 0, 10))
}

func TestCenterCrop(t *testing.T) {
	assert.Equal(t, image.Rect(2, 1, 4, 3), CenterCrop(image.Rect(0, 0, 6, 4), 2, 2))
	assert.Equal(t, image.Rect(0, 0, 6, 4), CenterCrop(image.Rect(0, 0, 6, 4), 10, 10))
}

func TestDownsampleAveragesEdges(t *testing.T) {
	// Left half opaque white, right half fully transparent black.
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	Downsample(dst, src)

	assert.GreaterOrEqual(t, dst.NRGBAAt(0, 1).A, uint8(250))
	assert.Less(t, dst.NRGBAAt(3, 1).A, uint8(8))
	// Premultiplied filtering keeps partially covered pixels white, not grey.
	for x := 0; x < 4; x++ {
		if c := dst.NRGBAAt(x, 2); c.A > 16 {
			assert.GreaterOrEqual(t, c.R, uint8(250), "column %d: %v", x, c)
		}
	}
}

func TestSupersampleSize(t *testing.T) {
	w, h := SupersampleSize(640, 360, 2)
	assert.Equal(t, [2]int{1280, 720}, [2]int{w, h})
	w, h = SupersampleSize(640, 360, 0)
	assert.Equal(t, [2]int{640, 360}, [2]int{w, h})
	w, _ = SupersampleSize(640, 360, 9)
	assert.Equal(t, 640*MaxSupersample, w)
}
