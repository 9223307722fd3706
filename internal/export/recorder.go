package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/icza/mjpeg"
)

// DefaultQuality is the JPEG quality used for recorded frames.
const DefaultQuality = 90

// Recorder appends rendered frames to an MJPEG AVI file.
type Recorder struct {
	aw     mjpeg.AviWriter
	buf    bytes.Buffer
	opts   jpeg.Options
	width  int
	height int
	frames int
}

// NewRecorder creates path and prepares it for width×height frames played
// back at fps.
func NewRecorder(path string, width, height, fps int) (*Recorder, error) {
	if width <= 0 || height <= 0 || fps <= 0 {
		return nil, fmt.Errorf("recorder %dx%d at %d fps: invalid geometry", width, height, fps)
	}
	aw, err := mjpeg.New(path, int32(width), int32(height), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("creating recording %s: %w", path, err)
	}
	return &Recorder{aw: aw, opts: jpeg.Options{Quality: DefaultQuality}, width: width, height: height}, nil
}

// AddFrame encodes img and appends it to the recording.
func (r *Recorder) AddFrame(img image.Image) error {
	if b := img.Bounds(); b.Dx() != r.width || b.Dy() != r.height {
		return fmt.Errorf("frame %dx%d does not match recording %dx%d", b.Dx(), b.Dy(), r.width, r.height)
	}
	r.buf.Reset()
	if err := jpeg.Encode(&r.buf, img, &r.opts); err != nil {
		return fmt.Errorf("encoding frame %d: %w", r.frames, err)
	}
	if err := r.aw.AddFrame(r.buf.Bytes()); err != nil {
		return fmt.Errorf("adding frame %d: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() int { return r.frames }

// Close finalises the AVI index.
func (r *Recorder) Close() error {
	return r.aw.Close()
}
