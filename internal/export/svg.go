package export

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// SVGOptions controls ClothToSVG.
type SVGOptions struct {
	Width, Height int
	// Toggles selects which constraint classes are drawn besides the
	// structural mesh.
	Toggles      cloth.Toggles
	GroundHeight float64
	Stroke       string
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 600, GroundHeight: cloth.DefaultGroundHeight, Stroke: "#f0e6d2"}
}

// frame maps a world box onto the image, keeping the aspect ratio.
type frame struct {
	lo     mgl64.Vec3
	scale  float64
	offX   float64
	offY   float64
	height float64
}

func newFrame(lo, hi mgl64.Vec3, width, height int) frame {
	rangeX := hi.X() - lo.X()
	rangeY := hi.Y() - lo.Y()
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	lo = mgl64.Vec3{lo.X() - rangeX*0.1, lo.Y() - rangeY*0.1, 0}
	rangeX *= 1.2
	rangeY *= 1.2

	scale := min(float64(width)/rangeX, float64(height)/rangeY)
	return frame{
		lo:     lo,
		scale:  scale,
		offX:   (float64(width) - rangeX*scale) / 2,
		offY:   (float64(height) - rangeY*scale) / 2,
		height: float64(height),
	}
}

func (f frame) point(p mgl64.Vec3) (float64, float64) {
	x := f.offX + (p.X()-f.lo.X())*f.scale
	y := f.height - f.offY - (p.Y()-f.lo.Y())*f.scale
	return x, y
}

// ClothToSVG draws the cloth as seen from the front (x right, y up).
// Pinned particles are marked with a dot.
func ClothToSVG(c *cloth.Cloth, opts SVGOptions) string {
	if c == nil || c.Len() == 0 {
		return ""
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultSVGOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	if opts.Stroke == "" {
		opts.Stroke = DefaultSVGOptions().Stroke
	}

	lo, hi := c.Bounds()
	lo[1] = min(lo[1], opts.GroundHeight)
	f := newFrame(lo, hi, opts.Width, opts.Height)
	particles := c.Particles()

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, opts.Width, opts.Height, opts.Width, opts.Height)

	_, gy := f.point(mgl64.Vec3{0, opts.GroundHeight, 0})
	fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444444" stroke-width="1"/>
`, gy, opts.Width, gy)

	top := c.Topology()
	for _, k := range cloth.Kinds {
		if k != cloth.Structural && !opts.Toggles.Enabled(k) {
			continue
		}
		width := 1.0
		if k != cloth.Structural {
			width = 0.5
		}
		fmt.Fprintf(&sb, "<g stroke=\"%s\" stroke-width=\"%.1f\" class=\"%s\">\n", opts.Stroke, width, k)
		for _, con := range top.Edges(k) {
			x1, y1 := f.point(particles[con.A].Position)
			x2, y2 := f.point(particles[con.B].Position)
			fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", x1, y1, x2, y2)
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("<g fill=\"#ff4444\">\n")
	for _, p := range particles {
		if !p.Pinned {
			continue
		}
		x, y := f.point(p.Position)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\"/>\n", x, y)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG, one circle per dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	sw, sh := canvas.Size()
	width := int(float64(sw) * scale)
	height := int(float64(sh) * scale)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	sb.WriteString("<g fill=\"#00ff00\">\n")

	dotRadius := scale * 0.4
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TraceToSVG draws a particle trace as a polyline.
func TraceToSVG(trace *analysis.Trace, width, height int, strokeColor string) string {
	if trace == nil || len(trace.Points) < 2 {
		return ""
	}

	lo := mgl64.Vec3{trace.Points[0].X, trace.Points[0].Y, 0}
	hi := lo
	for _, p := range trace.Points {
		lo = mgl64.Vec3{min(lo.X(), p.X), min(lo.Y(), p.Y), 0}
		hi = mgl64.Vec3{max(hi.X(), p.X), max(hi.Y(), p.Y), 0}
	}
	f := newFrame(lo, hi, width, height)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)
	for i, p := range trace.Points {
		x, y := f.point(mgl64.Vec3{p.X, p.Y, 0})
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
