// Package export writes rendered fields to disk: annotated PNG snapshots,
// MJPEG recordings and probe charts.
package export

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/gogpu/gg"

	"wavelab/internal/wave"
)

// markerRadius is the circle drawn around single-cell sources.
const markerRadius = 4

// Snapshot is one frame ready to be annotated.
type Snapshot struct {
	Frame *image.RGBA
	// Overlay is an optional RGBA8 weight layer, as produced by
	// wave.WeightOverlay, blended over the frame.
	Overlay []byte
	// Sources are outlined when Markers is set.
	Sources []wave.Source
	Markers bool
}

// WritePNG composes the snapshot and encodes it as PNG.
func WritePNG(w io.Writer, s Snapshot) error {
	if s.Frame == nil {
		return fmt.Errorf("snapshot without frame")
	}
	bounds := s.Frame.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	defer dc.Close()

	dc.DrawImage(gg.ImageBufFromImage(s.Frame), 0, 0)
	if len(s.Overlay) == bounds.Dx()*bounds.Dy()*4 {
		layer := &image.NRGBA{Pix: s.Overlay, Stride: 4 * bounds.Dx(), Rect: image.Rect(0, 0, bounds.Dx(), bounds.Dy())}
		dc.DrawImage(gg.ImageBufFromImage(layer), 0, 0)
	}
	if s.Markers {
		if err := drawMarkers(dc, s.Sources); err != nil {
			return err
		}
	}
	return dc.EncodePNG(w)
}

// SavePNG writes the snapshot to path.
func SavePNG(path string, s Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := WritePNG(f, s); err != nil {
		f.Close()
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return f.Close()
}

func drawMarkers(dc *gg.Context, sources []wave.Source) error {
	if len(sources) == 0 {
		return nil
	}
	dc.SetRGBA(1, 1, 1, 0.8)
	dc.SetLineWidth(1)
	for _, src := range sources {
		cx, cy := float64(src.X)+0.5, float64(src.Y)+0.5
		switch src.Kind {
		case wave.SourceRect:
			dc.DrawRectangle(float64(src.X), float64(src.Y), float64(src.X2-src.X), float64(src.Y2-src.Y))
		case wave.SourceDirected:
			dc.DrawCircle(cx, cy, float64(src.BeamSize))
		default:
			dc.DrawCircle(cx, cy, markerRadius)
		}
	}
	return dc.Stroke()
}
