package icon

import (
	"bytes"
	"image/png"
	"testing"
)

func TestRender_CornersTransparentCenterOpaque(t *testing.T) {
	img := Render(32)
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if a := img.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
	center := img.NRGBAAt(16, 16)
	if center.A != 255 {
		t.Errorf("center alpha = %d, want 255", center.A)
	}
	// The inner hexagon is filled white.
	if center.R != 255 || center.G != 255 || center.B != 255 {
		t.Errorf("center = %+v, want white", center)
	}
}

func TestCache_PNG(t *testing.T) {
	c := NewCache()
	b, err := c.PNG(16)
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("width = %d, want 16", img.Bounds().Dx())
	}

	again, err := c.PNG(16)
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	if !bytes.Equal(b, again) {
		t.Error("cached PNG differs")
	}
}

func TestCache_UnsupportedSize(t *testing.T) {
	if _, err := NewCache().PNG(17); err == nil {
		t.Fatal("expected error for unsupported size")
	}
}
