package export

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"wavelab/internal/wave"
)

func testFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(i % 251)
		img.Pix[i+3] = 255
	}
	return img
}

func TestWritePNGKeepsFrameSize(t *testing.T) {
	var buf bytes.Buffer
	err := WritePNG(&buf, Snapshot{
		Frame:   testFrame(48, 32),
		Overlay: make([]byte, 48*32*4),
		Sources: []wave.Source{wave.Point(10, 10, 0.2, 1), wave.Rect(2, 2, 6, 30, 0.1, 1)},
		Markers: true,
	})
	if err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 48 || b.Dy() != 32 {
		t.Fatalf("expected 48x32 snapshot, got %v", b)
	}
}

func TestWritePNGRequiresFrame(t *testing.T) {
	if err := WritePNG(&bytes.Buffer{}, Snapshot{}); err == nil {
		t.Fatalf("expected an error for a snapshot without frame")
	}
}

func TestRecorderWritesFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.avi")
	rec, err := NewRecorder(path, 32, 24, 30)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := rec.AddFrame(testFrame(32, 24)); err != nil {
			t.Fatalf("AddFrame: %v", err)
		}
	}
	if err := rec.AddFrame(testFrame(8, 8)); err == nil {
		t.Fatalf("expected a mismatched frame to be rejected")
	}
	if rec.Frames() != 3 {
		t.Fatalf("expected 3 frames, got %d", rec.Frames())
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected a non-empty recording, got %v %v", info, err)
	}
}

func TestWriteChart(t *testing.T) {
	values := make([]float32, 64)
	for i := range values {
		values[i] = float32(i%16) / 16
	}
	var buf bytes.Buffer
	err := WriteChart(&buf, "probe", 320, 200, []Series{{Name: "centre", Values: values}, {Name: "edge", Start: 10, Values: values[:20]}})
	if err != nil {
		t.Fatalf("WriteChart: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding chart: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Fatalf("expected 320x200 chart, got %v", b)
	}
	if err := WriteChart(&bytes.Buffer{}, "empty", 100, 100, []Series{{Name: "x", Values: []float32{1}}}); err == nil {
		t.Fatalf("expected an error without plottable series")
	}
}
