package analysis

import (
	"strings"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Trace records the path of one particle projected onto two axes.
type Trace struct {
	Index        int
	XAxis, YAxis int
	Points       []struct{ X, Y float64 }
}

// NewTrace follows particle idx on the x/y plane. xAxis and yAxis select
// position components (0, 1 or 2).
func NewTrace(idx, xAxis, yAxis int) *Trace {
	return &Trace{Index: idx, XAxis: xAxis, YAxis: yAxis}
}

// OnTick records the particle position. It satisfies sim.Observer.
func (tr *Trace) OnTick(c *cloth.Cloth) {
	p, err := c.Particle(tr.Index)
	if err != nil {
		return
	}
	tr.Points = append(tr.Points, struct{ X, Y float64 }{p.Position[tr.XAxis], p.Position[tr.YAxis]})
}

// TraceToASCII plots the trace on a width x height character grid.
func TraceToASCII(trace *Trace, width, height int) string {
	if trace == nil || len(trace.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := trace.Points[0].X, trace.Points[0].X
	minY, maxY := trace.Points[0].Y, trace.Points[0].Y
	for _, p := range trace.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	last := len(trace.Points) - 1
	for i, p := range trace.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row < 0 || row >= height || col < 0 || col >= width {
			continue
		}
		if i == last {
			canvas[row][col] = '@'
		} else if canvas[row][col] == ' ' {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
