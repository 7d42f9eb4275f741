package viz

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/metrics"
)

const (
	canvasWidth     = 72
	canvasHeight    = 24
	fps             = 60
	historyCapacity = 300
	gifPath         = "clothsim.gif"
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live cloth view. It owns its cloth and is the only caller of
// Step, so the cloth is never shared across goroutines.
type Model struct {
	name   string
	cfg    *config.Config
	cloth  *cloth.Cloth
	step   cloth.StepConfig
	canvas *Canvas
	camera *Camera

	running   bool
	cursorI   int
	cursorJ   int
	showHelp  bool
	recording bool
	recorder  *Recorder

	strain     *metrics.Strain
	energy     *metrics.KineticEnergy
	strainHist []float64
	energyHist []float64

	message string
	err     error
}

// NewModel builds the cloth described by cfg.
func NewModel(name string, cfg *config.Config) (Model, error) {
	c, err := cfg.NewCloth()
	if err != nil {
		return Model{}, err
	}
	step, err := cfg.StepConfig()
	if err != nil {
		return Model{}, err
	}

	cam := NewCamera(fps)
	lo, hi := c.Bounds()
	lo[1] = min(lo[1], step.GroundHeight)
	cam.Fit(lo, hi)

	return Model{
		name:       name,
		cfg:        cfg,
		cloth:      c,
		step:       step,
		canvas:     NewCanvas(canvasWidth, canvasHeight),
		camera:     cam,
		running:    true,
		cursorI:    cfg.Cloth.Width / 2,
		cursorJ:    cfg.Cloth.Height / 2,
		recorder:   NewRecorder(),
		strain:     metrics.NewStrain(),
		energy:     metrics.NewKineticEnergy(step.SubstepDt()),
		strainHist: make([]float64, 0, historyCapacity),
		energyHist: make([]float64, 0, historyCapacity),
	}, nil
}

func (m Model) Init() tea.Cmd { return tick() }

// Cloth exposes the simulated cloth.
func (m Model) Cloth() *cloth.Cloth { return m.cloth }

// StepConfig is the config the next tick will use.
func (m Model) StepConfig() cloth.StepConfig { return m.step }

// Err is the error that stopped the simulation, if any.
func (m Model) Err() error { return m.err }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.running {
			m.advance()
		}
		m.camera.Update()
		m.draw()
		if m.recording {
			m.recorder.Capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case ".":
		if !m.running {
			m.advance()
			m.draw()
		}
	case "1":
		m.step.Toggles.Structural = !m.step.Toggles.Structural
	case "2":
		m.step.Toggles.Shear = !m.step.Toggles.Shear
	case "3":
		m.step.Toggles.Bend = !m.step.Toggles.Bend
	case "w":
		m.step.Wind.Oscillate = !m.step.Wind.Oscillate
	case "m":
		if m.step.ForceMode == cloth.ForceContinuous {
			m.step.ForceMode = cloth.ForceDisplacement
		} else {
			m.step.ForceMode = cloth.ForceContinuous
		}
	case "d":
		m.cloth.Submit(cloth.Unpin{})
		m.message = "dropped"
	case "r":
		m.cloth.Submit(cloth.Reset{})
		m.message = "reset"
	case "p":
		idx := m.cloth.Grid().Index(m.cursorI, m.cursorJ)
		if p, err := m.cloth.Particle(idx); err == nil {
			m.cloth.Submit(cloth.SetPin{Index: idx, Pinned: !p.Pinned})
		}
	case "left":
		m.cursorI = max(m.cursorI-1, 0)
	case "right":
		m.cursorI = min(m.cursorI+1, m.cloth.Grid().Width-1)
	case "up":
		m.cursorJ = min(m.cursorJ+1, m.cloth.Grid().Height-1)
	case "down":
		m.cursorJ = max(m.cursorJ-1, 0)
	case "enter":
		m.cloth.Submit(cloth.PointForce{Point: m.cursorPosition(), Force: m.cfg.ClickForce()})
		m.message = "poked (" + m.step.ForceMode.String() + ")"
	case "f":
		m.cloth.Submit(cloth.RadiusForce{
			Center:    m.cursorPosition(),
			Radius:    m.cfg.Interaction.Radius,
			MaxForce:  m.cfg.Interaction.RadiusMaxForce,
			Direction: m.camera.Forward(),
		})
		m.message = "pushed"
	case "x":
		m.camera.Rotate(0, 0.15)
	case "X":
		m.camera.Rotate(0, -0.15)
	case "y":
		m.camera.Rotate(0.15, 0)
	case "Y":
		m.camera.Rotate(-0.15, 0)
	case "+", "=":
		m.camera.ZoomBy(1.2)
	case "-", "_":
		m.camera.ZoomBy(1 / 1.2)
	case "t":
		NextTheme()
	case "g":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) cursorPosition() mgl64.Vec3 {
	idx := m.cloth.Grid().Index(m.cursorI, m.cursorJ)
	p, err := m.cloth.Particle(idx)
	if err != nil {
		return mgl64.Vec3{}
	}
	return p.Position
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.recorder.Reset()
		return
	}
	m.recording = false
	f, err := os.Create(gifPath)
	if err != nil {
		m.message = err.Error()
		return
	}
	defer f.Close()
	if err := m.recorder.Encode(f); err != nil {
		m.message = err.Error()
		return
	}
	m.message = fmt.Sprintf("saved %d frames to %s", m.recorder.Len(), gifPath)
}

// advance runs one tick and samples the TUI metrics.
func (m *Model) advance() {
	if m.err != nil {
		return
	}
	if err := m.cloth.Step(m.step); err != nil {
		m.fail(err)
		return
	}
	if err := m.cloth.Validate(); err != nil {
		m.fail(err)
		return
	}
	m.strain.Observe(m.cloth)
	m.energy.Observe(m.cloth)
	m.strainHist = pushHistory(m.strainHist, m.strain.Current())
	m.energyHist = pushHistory(m.energyHist, m.energy.Current())
}

func (m *Model) fail(err error) {
	m.err = err
	m.running = false
	m.message = err.Error()
	log.Printf("viz: simulation stopped: %v", err)
}

func pushHistory(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) draw() {
	m.canvas.Clear()
	RenderCloth(m.canvas, m.camera, m.cloth, Scene{
		GroundHeight: m.step.GroundHeight,
		Toggles:      m.step.Toggles,
		Cursor:       m.cloth.Grid().Index(m.cursorI, m.cursorJ),
	})
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusRecording.Render("UNSTABLE")
	case m.recording:
		return StatusRecording.Render(fmt.Sprintf("● REC %d", m.recorder.Len()))
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	canvasView := canvasStyle.Render(meshStyle().Render(m.canvas.String()))

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.cloth.Time()))
	row("Tick", fmt.Sprintf("%d", m.cloth.Tick()))
	row("Strain", fmt.Sprintf("%.4f", m.strain.Current()))
	row("Energy", fmt.Sprintf("%.3f", m.energy.Current()))
	row("Contacts", fmt.Sprintf("%d", m.cloth.GroundContacts()))
	row("Mode", m.step.ForceMode.String())
	row("Cursor", fmt.Sprintf("(%d, %d)", m.cursorI, m.cursorJ))
	s.WriteString("\n")
	row("[1] struct", toggle(m.step.Toggles.Structural))
	row("[2] shear", toggle(m.step.Toggles.Shear))
	row("[3] bend", toggle(m.step.Toggles.Bend))
	row("[w] gusts", toggle(m.step.Wind.Oscillate))

	s.WriteString("\n" + SparklineChart(m.strainHist, 30) + "\n")
	if len(m.energyHist) > 1 {
		chart := asciigraph.Plot(m.energyHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if m.message != "" {
		s.WriteString(Subtle.Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Render(Separator(30) + "\nSP:Pause R:Reset D:Drop Q:Quit\n←↑↓→:Cursor ⏎:Poke F:Push ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  .        - Single step when paused  ║
║  1 2 3    - Toggle constraint class  ║
║  W        - Toggle oscillating wind  ║
║  M        - Switch force/hit mode    ║
║  D        - Drop (unpin all)         ║
║  R        - Reset cloth              ║
║  P        - Pin/unpin cursor         ║
║  Arrows   - Move cursor              ║
║  Enter    - Poke cursor particle     ║
║  F        - Radius push at cursor    ║
║  x/X y/Y  - Orbit camera             ║
║  +/-      - Zoom                     ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the live view in the alternate screen.
func Run(name string, cfg *config.Config) error {
	m, err := NewModel(name, cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
