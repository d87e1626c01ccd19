package linedet

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func twoLineImage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 100, 60))
	for x := 10; x < 90; x++ {
		for y := 5; y < 15; y++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
		for y := 40; y < 50; y++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}
	for y := 0; y < 60; y++ {
		for x := 0; x < 100; x++ {
			if img.GrayAt(x, y).Y == 0 {
				continue
			}
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return img
}

func TestDetectLinesNeverEmpty(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 50, 50))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}
	d := New(DefaultConfig())
	boxes := d.DetectLines(blank)
	assert.NotEmpty(t, boxes)
}

func TestDetectLinesNilImageReturnsNil(t *testing.T) {
	d := New(DefaultConfig())
	assert.Nil(t, d.DetectLines(nil))
}

func TestDetectLinesOrderedTopToBottom(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RotationCorrection = false
	d := New(cfg)
	boxes := d.DetectLines(twoLineImage())
	for i := 1; i < len(boxes); i++ {
		assert.LessOrEqual(t, boxes[i-1].YCenter(), boxes[i].YCenter())
	}
}

func TestSplitLinesProducesCrops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RotationCorrection = false
	d := New(cfg)
	crops := d.SplitLines(twoLineImage())
	assert.NotEmpty(t, crops)
	for _, c := range crops {
		assert.Greater(t, c.Bounds().Dx(), 0)
		assert.Greater(t, c.Bounds().Dy(), 0)
	}
}

func TestMedianIntOddAndEmpty(t *testing.T) {
	assert.Equal(t, 5, medianInt([]int{1, 5, 9}))
	assert.Equal(t, 0, medianInt(nil))
}

func TestInHeightRangeCountsQualifyingBoxes(t *testing.T) {
	boxes := []Box{{MinY: 0, MaxY: 10}, {MinY: 0, MaxY: 100}}
	count := inHeightRange(boxes, 8)
	assert.GreaterOrEqual(t, count, 1)
}
