package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/clothsim/internal/config"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

var presetInfo = map[string]string{
	"default": "10x10 cotton, light breeze",
	"silk":    "fine and floppy, gusting wind",
	"canvas":  "stiff, stretch limited",
	"flag":    "strong turbulent wind",
	"storm":   "oscillating gale, two sub-steps",
	"large":   "48x48, parallel solver",
}

const (
	stateMenu = iota
	stateSim
)

// menu picks a preset and then hands over to the live Model.
type menu struct {
	state, cursor int
	presets       []string
	base          *config.Config
	live          Model
	err           error
}

// NewInteractiveApp lists the presets. base, when set, is offered first as
// "custom".
func NewInteractiveApp(base *config.Config) tea.Model {
	presets := config.ListPresets()
	if base != nil {
		presets = append([]string{"custom"}, presets...)
	}
	return menu{state: stateMenu, presets: presets, base: base}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter":
		return m.start()
	}
	return m, nil
}

func (m menu) start() (tea.Model, tea.Cmd) {
	name := m.presets[m.cursor]
	cfg := m.base
	if name != "custom" {
		cfg = config.GetPreset(name)
	}
	live, err := NewModel(name, cfg)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live = live
	m.state = stateSim
	return m, live.Init()
}

func (m menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}

	var s strings.Builder
	s.WriteString(cyan.Bold(true).Render("CLOTHSIM") + "\n\n")
	for i, name := range m.presets {
		info := presetInfo[name]
		if name == "custom" {
			info = "from config file"
		}
		line := fmt.Sprintf("%-10s %s", name, dim.Render(info))
		if i == m.cursor {
			s.WriteString(yellow.Render("> ") + white.Render(line) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + StatusRecording.Render(m.err.Error()) + "\n")
	}
	s.WriteString("\n" + dim.Render("↑↓ select  enter start  q quit"))
	return s.String()
}

func RunInteractive(base *config.Config) error {
	_, err := tea.NewProgram(NewInteractiveApp(base), tea.WithAltScreen()).Run()
	return err
}
