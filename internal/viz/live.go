package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/opinionlab/internal/opinion"
)

const (
	historyCapacity = 600
	graphWidth      = 64
	graphHeight     = 12
)

type TickMsg time.Time

// Model drives the live terminal view of a running simulation.
type Model struct {
	build    func() (opinion.Model, error)
	sim      opinion.Model
	step     int
	running  bool
	showHelp bool
	err      error

	obsNames  []string
	histories [][]float64
	shown     int

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int

	stepsPerTick int
}

// NewModel builds the initial simulation and UI state. The build function
// is kept around so "r" can rebuild a fresh model with the current params.
func NewModel(build func() (opinion.Model, error)) (Model, error) {
	sim, err := build()
	if err != nil {
		return Model{}, err
	}

	params := make(map[string]float64)
	if c, ok := sim.(opinion.Configurable); ok {
		for k, v := range c.GetParams() {
			params[k] = v
		}
	}
	keys := make([]string, 0, len(params))
	initialParams := make(map[string]float64)
	for k, v := range params {
		keys = append(keys, k)
		initialParams[k] = v
	}
	sort.Strings(keys)

	names := sim.ObservableNames()
	histories := make([][]float64, len(names))
	for i := range histories {
		histories[i] = make([]float64, 0, historyCapacity)
	}

	return Model{
		build:         build,
		sim:           sim,
		running:       true,
		obsNames:      names,
		histories:     histories,
		params:        params,
		initialParams: initialParams,
		paramKeys:     keys,
		stepsPerTick:  1,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and advances the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "o":
			if len(m.obsNames) > 0 {
				m.shown = (m.shown + 1) % len(m.obsNames)
			}
		case "+", "=":
			if m.stepsPerTick < 64 {
				m.stepsPerTick *= 2
			}
		case "-", "_":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			for i := 0; i < m.stepsPerTick; i++ {
				m.record()
				if c, ok := m.sim.(opinion.Converger); ok && c.Converged() {
					m.running = false
					break
				}
				if err := m.sim.Step(); err != nil {
					m.err = err
					m.running = false
					break
				}
				m.step++
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) record() {
	obs := m.sim.Observe()
	for i := range m.histories {
		if i >= len(obs) {
			break
		}
		m.histories[i] = append(m.histories[i], obs[i])
		if len(m.histories[i]) > historyCapacity {
			m.histories[i] = m.histories[i][1:]
		}
	}
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if c, ok := m.sim.(opinion.Configurable); ok {
		if err := c.SetParam(key, val); err != nil {
			return
		}
	}
	m.params[key] = val
}

// reset rebuilds the model from scratch and reapplies the current params.
func (m *Model) reset() {
	sim, err := m.build()
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.sim = sim
	m.step = 0
	m.err = nil
	m.running = true
	for i := range m.histories {
		m.histories[i] = m.histories[i][:0]
	}
	if c, ok := m.sim.(opinion.Configurable); ok {
		for k, v := range m.params {
			c.SetParam(k, v)
		}
	}
}

// View renders the chart panel and the stats panel side by side.
func (m Model) View() string {
	var chart string
	if m.shown < len(m.histories) && len(m.histories[m.shown]) > 1 {
		chart = asciigraph.Plot(m.histories[m.shown],
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption(m.obsNames[m.shown]))
	} else {
		chart = "collecting data..."
	}
	chartView := graphStyle.Render(chart)

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.sim.Name())) + "\n")

	status := "RUNNING"
	if m.err != nil {
		status = errStyle.Render("ERROR: " + m.err.Error())
	} else if c, ok := m.sim.(opinion.Converger); ok && c.Converged() {
		status = "CONVERGED"
	} else if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d", m.step)) + "\n")
	s.WriteString(labelStyle.Render("Agents") + valueStyle.Render(fmt.Sprintf("%d", m.sim.Agents())) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%d step/tick", m.stepsPerTick)) + "\n")

	obs := m.sim.Observe()
	for i, name := range m.obsNames {
		if i >= len(obs) {
			break
		}
		line := labelStyle.Render(name) + valueStyle.Render(fmt.Sprintf("%.4f", obs[i]))
		if i == m.shown {
			line += valueStyle.Render(" *")
		}
		s.WriteString(line + "\n")
	}
	if len(obs) > 0 && obs[0] >= 0 && obs[0] <= 1 {
		s.WriteString("\n" + ProgressBar(obs[0], 24) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	if len(m.paramKeys) > 0 {
		for i, k := range m.paramKeys {
			line := fmt.Sprintf("%-12s %.3f", k, m.params[k])
			if i == m.selected {
				s.WriteString(activeParamStyle.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + labelStyle.Render(line) + "\n")
			}
		}
	} else {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}

	s.WriteString(helpStyle.Render("\nSP:Pause R:Reset O:Observable Q:Quit\nTab:Select ↑↓:Tune +/-:Speed ?:Help"))
	statsView := statsStyle.Render(s.String())

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, chartView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Rebuild and restart      ║
║  O        - Cycle charted observable ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  + / -    - Steps per tick           ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
