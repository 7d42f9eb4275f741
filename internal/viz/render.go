package viz

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Scene is what RenderCloth draws besides the cloth itself.
type Scene struct {
	GroundHeight float64
	Toggles      cloth.Toggles
	// Cursor is the highlighted particle index, or -1.
	Cursor int
}

// RenderCloth draws the structural mesh, pinned particles, the ground line
// and the cursor. Shear and bend springs are drawn when enabled.
func RenderCloth(cv *Canvas, cam *Camera, c *cloth.Cloth, sc Scene) {
	if cv == nil || cam == nil || c == nil || c.Len() == 0 {
		return
	}
	sw, sh := cv.Size()
	particles := c.Particles()

	lo, hi := c.Bounds()
	g := sc.GroundHeight
	pad := cam.Extent * 0.5
	edge(cv, cam, mgl64.Vec3{lo.X() - pad, g, 0}, mgl64.Vec3{hi.X() + pad, g, 0}, sw, sh)
	edge(cv, cam, mgl64.Vec3{cam.Center.X(), g, lo.Z() - pad}, mgl64.Vec3{cam.Center.X(), g, hi.Z() + pad}, sw, sh)

	top := c.Topology()
	for _, k := range cloth.Kinds {
		if k != cloth.Structural && !sc.Toggles.Enabled(k) {
			continue
		}
		for _, con := range top.Edges(k) {
			edge(cv, cam, particles[con.A].Position, particles[con.B].Position, sw, sh)
		}
	}

	for _, p := range particles {
		if !p.Pinned {
			continue
		}
		if x, y, _, ok := cam.Project(p.Position, sw, sh); ok {
			cv.Block(x-1, y-1, 3)
		}
	}

	if sc.Cursor >= 0 && sc.Cursor < len(particles) {
		if x, y, _, ok := cam.Project(particles[sc.Cursor].Position, sw, sh); ok {
			cv.Plus(x, y, 3)
		}
	}
}

// Draw renders c on a fresh w x h cell canvas from a camera fit to the cloth
// and the ground, with no easing. It is used for still frames.
func Draw(c *cloth.Cloth, sc Scene, w, h int) *Canvas {
	cv := NewCanvas(w, h)
	if c == nil || c.Len() == 0 {
		return cv
	}
	cam := NewCamera(fps)
	lo, hi := c.Bounds()
	lo[1] = min(lo[1], sc.GroundHeight)
	cam.Fit(lo, hi)
	cam.Snap()
	RenderCloth(cv, cam, c, sc)
	return cv
}

func edge(cv *Canvas, cam *Camera, a, b mgl64.Vec3, sw, sh int) {
	x1, y1, _, ok1 := cam.Project(a, sw, sh)
	x2, y2, _, ok2 := cam.Project(b, sw, sh)
	if !ok1 || !ok2 {
		return
	}
	if !onScreen(x1, y1, sw, sh) && !onScreen(x2, y2, sw, sh) {
		return
	}
	cv.DrawLine(x1, y1, x2, y2)
}

func onScreen(x, y, sw, sh int) bool {
	return x >= 0 && x < sw && y >= 0 && y < sh
}
