package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	minZoom   = 0.2
	maxZoom   = 8
	maxPitch  = math.Pi/2 - 0.05
	nearPlane = 0.1
)

// Camera orbits Center. Yaw, pitch and zoom ease towards their targets with
// a critically damped spring every Update.
type Camera struct {
	Center   mgl64.Vec3
	Distance float64
	Extent   float64

	Yaw, Pitch, Zoom float64

	targetYaw, targetPitch, targetZoom float64
	yawVel, pitchVel, zoomVel          float64
	spring                             harmonica.Spring
}

func NewCamera(fps int) *Camera {
	return &Camera{
		Distance:   20,
		Extent:     5,
		Zoom:       1,
		targetZoom: 1,
		spring:     harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Fit centres the camera on the box [lo, hi].
func (c *Camera) Fit(lo, hi mgl64.Vec3) {
	c.Center = lo.Add(hi).Mul(0.5)
	size := hi.Sub(lo)
	c.Extent = math.Max(math.Max(size.X(), size.Y()), math.Max(size.Z(), 1))
	c.Distance = 4 * c.Extent
}

func (c *Camera) Rotate(dyaw, dpitch float64) {
	c.targetYaw += dyaw
	c.targetPitch = mgl64.Clamp(c.targetPitch+dpitch, -maxPitch, maxPitch)
}

func (c *Camera) ZoomBy(factor float64) {
	c.targetZoom = mgl64.Clamp(c.targetZoom*factor, minZoom, maxZoom)
}

// Snap jumps straight to the targets.
func (c *Camera) Snap() {
	c.Yaw, c.Pitch, c.Zoom = c.targetYaw, c.targetPitch, c.targetZoom
	c.yawVel, c.pitchVel, c.zoomVel = 0, 0, 0
}

// Update advances the easing by one frame.
func (c *Camera) Update() {
	c.Yaw, c.yawVel = c.spring.Update(c.Yaw, c.yawVel, c.targetYaw)
	c.Pitch, c.pitchVel = c.spring.Update(c.Pitch, c.pitchVel, c.targetPitch)
	c.Zoom, c.zoomVel = c.spring.Update(c.Zoom, c.zoomVel, c.targetZoom)
}

func (c *Camera) view() mgl64.Mat3 {
	return mgl64.Rotate3DX(c.Pitch).Mul3(mgl64.Rotate3DY(c.Yaw))
}

// Forward is the world-space direction the camera looks along.
func (c *Camera) Forward() mgl64.Vec3 {
	return c.view().Transpose().Mul3x1(mgl64.Vec3{0, 0, -1})
}

// Project maps a world point onto a sw x sh dot canvas. ok is false for
// points behind the near plane.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (x, y int, depth float64, ok bool) {
	q := c.view().Mul3x1(p.Sub(c.Center))
	if q.Z() >= c.Distance-nearPlane {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - q.Z()) * c.Zoom
	pScale := float64(min(sw, sh)) / (1.2 * c.Extent)
	x = int(math.Round(q.X()*scale*pScale)) + sw/2
	y = int(math.Round(-q.Y()*scale*pScale)) + sh/2
	return x, y, q.Z(), true
}
