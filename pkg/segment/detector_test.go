package segment

import (
	"image"
	"image/color"
	"testing"
)

// createTestImage creates a white plate with dark rectangles drawn on it
func createTestImage(width, height int, rects ...image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	for _, r := range rects {
		fillRect(img, r, color.RGBA{40, 90, 30, 255})
	}
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func TestNew(t *testing.T) {
	detector := New()
	if detector == nil {
		t.Fatal("New() returned nil")
	}

	if detector.config.MinArea != 150 {
		t.Errorf("Expected min area 150, got %d", detector.config.MinArea)
	}

	if detector.config.DilationIterations != 3 {
		t.Errorf("Expected 3 dilations, got %d", detector.config.DilationIterations)
	}
}

func TestDetectSingleRegion(t *testing.T) {
	img := createTestImage(100, 100, image.Rect(25, 25, 75, 75))

	regions, err := New().Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(regions))
	}

	r := regions[0]
	// three dilations grow the 50x50 square by 3 pixels on every side
	if r.X != 22 || r.Y != 22 || r.Width != 56 || r.Height != 56 {
		t.Errorf("Unexpected bounds: %+v", r.Bounds())
	}
	if r.Mask != nil {
		t.Error("Rectangular component should not carry a mask")
	}
	cx, cy := r.Center()
	if cx != 50 || cy != 50 {
		t.Errorf("Expected center (50,50), got (%d,%d)", cx, cy)
	}
}

func TestDetectDropsSmallComponents(t *testing.T) {
	// 2x2 speck grows to 8x8 = 64 px, below the minimum area
	img := createTestImage(120, 120, image.Rect(10, 10, 40, 40), image.Rect(90, 90, 92, 92))

	regions, err := New().Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("Expected speck to be discarded, got %d regions", len(regions))
	}
	if regions[0].Area < 150 {
		t.Errorf("Kept region below minimum area: %d", regions[0].Area)
	}
}

func TestDetectMergesNearbyFragments(t *testing.T) {
	// two leaves 4 px apart become one plant after dilation
	img := createTestImage(100, 60, image.Rect(10, 10, 30, 40), image.Rect(34, 10, 54, 40))

	regions, err := New().Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("Expected fragments to merge into 1 region, got %d", len(regions))
	}
}

func TestDetectSeparatesDistantPlants(t *testing.T) {
	img := createTestImage(200, 100, image.Rect(120, 20, 160, 60), image.Rect(20, 40, 60, 80))

	regions, err := New().Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(regions))
	}
	// raster order of first pixel: the upper plant comes first
	if regions[0].Y > regions[1].Y {
		t.Errorf("Regions not in raster order: %v then %v", regions[0].Bounds(), regions[1].Bounds())
	}
}

func TestDetectNonRectangularMask(t *testing.T) {
	// L-shaped plant
	img := createTestImage(120, 120, image.Rect(20, 20, 40, 90), image.Rect(20, 70, 90, 90))

	regions, err := New().Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(regions))
	}

	r := regions[0]
	if r.Mask == nil {
		t.Fatal("L-shaped component should carry a mask")
	}
	if err := r.Validate(); err != nil {
		t.Errorf("Invalid region: %v", err)
	}
	// top-right corner of the box lies outside the L
	if r.Contains(r.Width-1, 0) {
		t.Error("Mask should exclude the empty corner of the L")
	}
	if !r.Contains(0, r.Height-1) {
		t.Error("Mask should include the corner of the L")
	}
}

func TestDetectUniformImage(t *testing.T) {
	img := createTestImage(80, 80)

	regions, err := New().Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("Expected no regions on a blank plate, got %d", len(regions))
	}
}

func TestDetectDoesNotModifyInput(t *testing.T) {
	img := createTestImage(100, 100, image.Rect(25, 25, 75, 75))
	before := make([]uint8, len(img.Pix))
	copy(before, img.Pix)

	if _, err := New().Detect(img); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	for i := range before {
		if before[i] != img.Pix[i] {
			t.Fatalf("Input pixel data changed at byte %d", i)
		}
	}
}

func TestDetectStableOrder(t *testing.T) {
	img := createTestImage(200, 200,
		image.Rect(10, 10, 40, 40), image.Rect(120, 10, 150, 40),
		image.Rect(10, 120, 40, 150), image.Rect(120, 120, 150, 150))

	first, err := New().Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	for run := 0; run < 3; run++ {
		again, err := New().Detect(img)
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("Region count changed between runs: %d vs %d", len(first), len(again))
		}
		for i := range first {
			if first[i].Bounds() != again[i].Bounds() {
				t.Errorf("Region %d moved between runs: %v vs %v", i, first[i].Bounds(), again[i].Bounds())
			}
		}
	}
}

func TestDetectNilImage(t *testing.T) {
	if _, err := New().Detect(nil); err == nil {
		t.Error("Expected error for nil image")
	}
}

func TestThreshold(t *testing.T) {
	img := createTestImage(100, 100, image.Rect(25, 25, 75, 75))

	level, ok := Threshold(img)
	if !ok {
		t.Fatal("Expected a threshold for a two-level image")
	}
	if level >= 255 {
		t.Errorf("Threshold %d would classify the white plate as plant", level)
	}

	if _, ok := Threshold(createTestImage(10, 10)); ok {
		t.Error("Uniform image should have no threshold")
	}
}

func TestLabelComponentsDiagonal(t *testing.T) {
	// diagonal neighbours are connected under 8-connectivity
	mask := []bool{
		true, false, false,
		false, true, false,
		false, false, true,
	}
	labels := labelComponents(mask, 3, 3)
	if labels[0] != 1 || labels[4] != 1 || labels[8] != 1 {
		t.Errorf("Expected one diagonal component, got labels %v", labels)
	}
}

func BenchmarkDetect(b *testing.B) {
	img := createTestImage(600, 400,
		image.Rect(40, 40, 120, 120), image.Rect(240, 40, 320, 120),
		image.Rect(40, 240, 120, 320), image.Rect(240, 240, 320, 320))
	detector := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		detector.Detect(img)
	}
}
