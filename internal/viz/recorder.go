package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
)

const (
	charW = 8
	charH = 16
)

// Recorder collects canvas frames for an animated GIF.
type Recorder struct {
	frames []*image.Paletted
	// Delay between frames in 100ths of a second.
	Delay int
}

func NewRecorder() *Recorder { return &Recorder{Delay: 2} }

func (r *Recorder) Len() int { return len(r.frames) }

// Capture rasterises the canvas, one 4x4 block per Braille dot.
func (r *Recorder) Capture(cv *Canvas) {
	img := image.NewPaletted(image.Rect(0, 0, cv.Width*charW, cv.Height*charH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4
	sw, sh := cv.Size()
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			if !cv.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Encode writes the frames as a looping GIF.
func (r *Recorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return errors.New("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (r *Recorder) Reset() { r.frames = r.frames[:0] }
