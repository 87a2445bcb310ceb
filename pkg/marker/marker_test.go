package marker

import (
	"image"
	"image/color"
	"testing"
)

func TestMarkThenIsMarked(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	if IsMarked(img) {
		t.Fatal("Fresh image should not be marked")
	}

	Mark(img)
	if !IsMarked(img) {
		t.Fatal("Marked image not recognised")
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			blue := img.NRGBAAt(x, y) == color.NRGBA{0, 0, 255, 255}
			if (x < Size && y < Size) != blue {
				t.Errorf("Pixel (%d,%d) marker state wrong: %v", x, y, img.NRGBAAt(x, y))
			}
		}
	}
}

func TestMarkSmallImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	Mark(img)
	if !IsMarked(img) {
		t.Error("1x1 image should still be marked")
	}
}

func TestMarkOffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 15, 15))
	Mark(img)
	if !IsMarked(img) {
		t.Error("Marker should be placed at the bounds origin")
	}
	if img.RGBAAt(7, 7) == Color {
		t.Error("Marker spilled past its block")
	}
}

func TestIsMarkedNearBlue(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{0, 0, 254, 255})
	if IsMarked(img) {
		t.Error("Only exact pure blue counts as the marker")
	}
	img.Set(0, 0, color.RGBA{1, 0, 255, 255})
	if IsMarked(img) {
		t.Error("Only exact pure blue counts as the marker")
	}
}

func TestIsMarkedEmpty(t *testing.T) {
	if IsMarked(nil) {
		t.Error("nil image is not marked")
	}
	if IsMarked(image.NewRGBA(image.Rectangle{})) {
		t.Error("Empty image is not marked")
	}
}
