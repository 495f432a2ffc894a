package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestNormalizeJPEG(t *testing.T) {
	data := createTestJPEG(100, 100)
	out, mime, err := Normalize(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Normalize JPEG: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", mime)
	}
	if len(out) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestNormalizePNG(t *testing.T) {
	data := createTestPNG(100, 100)
	_, mime, err := Normalize(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Normalize PNG: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("expected image/jpeg (always outputs JPEG), got %s", mime)
	}
}

func TestNormalizeDownscale(t *testing.T) {
	data := createTestJPEG(2048, 2048)
	out, _, err := Normalize(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Normalize large image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		t.Errorf("expected max %dx%d, got %dx%d", MaxDimension, MaxDimension, bounds.Dx(), bounds.Dy())
	}
}

func TestNormalizeSmallImageNotUpscaled(t *testing.T) {
	data := createTestJPEG(50, 50)
	out, _, err := Normalize(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Normalize small image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("small image should not be resized: got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestNormalizeInvalidFormat(t *testing.T) {
	if _, _, err := Normalize(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestNormalizeGIFRejected(t *testing.T) {
	// GIF magic bytes.
	if _, _, err := Normalize(bytes.NewReader([]byte("GIF89a..."))); err == nil {
		t.Error("expected error for GIF")
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	if _, _, err := Normalize(bytes.NewReader(nil)); err == nil {
		t.Error("expected error for empty upload")
	}
}
