package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/lifesim/internal/experiment"
	"github.com/san-kum/lifesim/internal/life"
	"github.com/san-kum/lifesim/internal/sim"
	"github.com/san-kum/lifesim/internal/store"
)

const (
	frameRate     = time.Second / 30
	speedStep     = 5
	soupDensity   = 0.25
	chartCapacity = 120
)

type TickMsg time.Time

type AppConfig struct {
	BoardFile string
	Theme     string
	Speed     int
	Seed      int64
}

// App is the board editor. The controller runs playback on its own
// goroutine; App only issues commands and redraws on every tick.
type App struct {
	ctx       context.Context
	ctrl      *sim.Controller
	registry  *experiment.Registry
	patterns  []string
	pattern   int
	boardFile string
	theme     Theme
	speed     int
	seed      int64
	row, col  int
	braille   bool
	showHelp  bool
	status    string
	statusErr bool
}

func NewApp(ctx context.Context, ctrl *sim.Controller, cfg AppConfig) App {
	registry := experiment.NewRegistry()
	speed := min(max(cfg.Speed, sim.MinSpeed), sim.MaxSpeed)
	ctrl.SetSpeed(speed)
	return App{
		ctx:       ctx,
		ctrl:      ctrl,
		registry:  registry,
		patterns:  registry.ListPatterns(),
		pattern:   -1,
		boardFile: cfg.BoardFile,
		theme:     GetTheme(cfg.Theme),
		speed:     speed,
		seed:      cfg.Seed,
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m App) Init() tea.Cmd { return tick() }

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		return m, tick()
	}
	return m, nil
}

func (m App) handleKey(msg tea.KeyMsg) (App, tea.Cmd) {
	snap := m.ctrl.Export()
	switch msg.String() {
	case "q", "ctrl+c":
		m.ctrl.Stop()
		return m, tea.Quit
	case "up", "k":
		m.row = max(m.row-1, 0)
	case "down", "j":
		m.row = min(m.row+1, snap.Height-1)
	case "left", "h":
		m.col = max(m.col-1, 0)
	case "right", "l":
		m.col = min(m.col+1, snap.Width-1)
	case "enter", "x":
		if err := m.ctrl.Toggle(m.row, m.col); err != nil {
			m.fail(err)
		}
	case " ":
		if m.ctrl.Running() {
			m.ctrl.Stop()
			m.info("stopped")
		} else if !m.ctrl.Start(m.ctx) {
			m.info("nothing to run: the board is empty")
		} else {
			m.info("running")
		}
	case "n":
		if !m.ctrl.StepOnce(m.ctx) {
			m.info("stop playback to step by hand")
		}
	case "r":
		if m.ctrl.ResetToRunStart() {
			m.info("reset to run start")
		} else {
			m.info("no run to reset to")
		}
	case "c":
		m.ctrl.ClearAll()
		m.info("cleared")
	case "+", "=":
		m.setSpeed(m.speed + speedStep)
	case "-", "_":
		m.setSpeed(m.speed - speedStep)
	case "e":
		m.export()
	case "i":
		m.importFile()
	case "p":
		m.nextPattern(snap)
	case "s":
		m.soup(snap)
	case "b":
		m.braille = !m.braille
	case "t":
		m.theme = NextTheme(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *App) info(s string) { m.status, m.statusErr = s, false }

func (m *App) fail(err error) { m.status, m.statusErr = err.Error(), true }

func (m *App) setSpeed(v int) {
	m.speed = min(max(v, sim.MinSpeed), sim.MaxSpeed)
	m.ctrl.SetSpeed(m.speed)
}

// export stops playback first, matching a save from a paused board.
func (m *App) export() {
	m.ctrl.Stop()
	if err := store.ExportFile(m.boardFile, m.ctrl.Export()); err != nil {
		m.fail(fmt.Errorf("export: %w", err))
		return
	}
	m.info("exported " + m.boardFile)
}

func (m *App) importFile() {
	snap, err := store.ImportFile(m.boardFile)
	if err == nil {
		err = m.ctrl.Import(snap)
	}
	if err != nil {
		var verr *life.ValidationError
		if errors.As(err, &verr) {
			m.fail(fmt.Errorf("import rejected: %w", verr))
		} else {
			m.fail(fmt.Errorf("import: %w", err))
		}
		return
	}
	m.clampCursor(snap)
	m.info("imported " + m.boardFile)
}

func (m *App) nextPattern(cur life.Snapshot) {
	if len(m.patterns) == 0 {
		return
	}
	m.pattern = (m.pattern + 1) % len(m.patterns)
	name := m.patterns[m.pattern]
	snap, err := m.registry.PlacePattern(name, cur.Height, cur.Width)
	if err == nil {
		err = m.ctrl.Import(snap)
	}
	if err != nil {
		m.fail(err)
		return
	}
	m.info("loaded " + name)
}

func (m *App) soup(cur life.Snapshot) {
	m.seed++
	snap, err := life.RandomSnapshot(cur.Height, cur.Width, soupDensity, m.seed)
	if err == nil {
		err = m.ctrl.Import(snap)
	}
	if err != nil {
		m.fail(err)
		return
	}
	m.info(fmt.Sprintf("random soup (seed %d)", m.seed))
}

func (m *App) clampCursor(s life.Snapshot) {
	m.row = min(m.row, s.Height-1)
	m.col = min(m.col, s.Width-1)
}

func (m App) View() string {
	snap := m.ctrl.Export()

	var board string
	if m.braille {
		board = lipgloss.NewStyle().Foreground(m.theme.Alive).Render(BoardCanvas(snap).String())
	} else {
		board = m.renderBoard(snap)
	}

	var s strings.Builder
	title := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)
	s.WriteString(title.Render("LIFE") + "\n")
	if m.ctrl.Running() {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if pop := m.ctrl.Population(); len(pop) > 1 {
		if len(pop) > chartCapacity {
			pop = pop[len(pop)-chartCapacity:]
		}
		series := make([]float64, len(pop))
		for i, p := range pop {
			series[i] = float64(p)
		}
		chart := asciigraph.Plot(series, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Population"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Generation") + valueStyle.Render(fmt.Sprintf("%d", m.ctrl.Generation())) + "\n")
	s.WriteString(labelStyle.Render("Population") + valueStyle.Render(fmt.Sprintf("%d", snap.Population())) + "\n")
	s.WriteString(labelStyle.Render("Board") + valueStyle.Render(fmt.Sprintf("%dx%d", snap.Height, snap.Width)) + "\n")
	s.WriteString(labelStyle.Render("Cursor") + valueStyle.Render(fmt.Sprintf("%d,%d", m.row, m.col)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%3d %s", m.speed, ProgressBar(float64(m.speed)/sim.MaxSpeed, 10))) + "\n")
	s.WriteString(labelStyle.Render("Interval") + valueStyle.Render(m.ctrl.Interval().String()) + "\n")
	s.WriteString(labelStyle.Render("Theme") + valueStyle.Render(m.theme.Name) + "\n")

	if m.status != "" {
		style := lipgloss.NewStyle().Foreground(m.theme.Muted)
		if m.statusErr {
			style = lipgloss.NewStyle().Foreground(m.theme.Error)
		}
		s.WriteString("\n" + style.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("\n" + Separator(30) + "\nSP:Run N:Step R:Reset C:Clear\nE/I:Save/Load +/-:Speed ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, boardStyle.Render(board), statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + main
	}
	return main
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Arrows/hjkl - Move cursor           ║
║  Enter/X     - Toggle cell           ║
║  Space       - Start/Stop            ║
║  N           - Step once             ║
║  R           - Reset to run start    ║
║  C           - Clear board           ║
║  + / -       - Faster / slower       ║
║  E / I       - Export / Import       ║
║  P           - Next prefab pattern   ║
║  S           - Random soup           ║
║  B           - Braille view          ║
║  T           - Cycle themes          ║
║  Q           - Quit                  ║
╚══════════════════════════════════════╝`

// renderBoard draws one character per cell, styling runs of equal cells
// together and highlighting the cursor.
func (m App) renderBoard(s life.Snapshot) string {
	alive := lipgloss.NewStyle().Foreground(m.theme.Alive)
	dead := lipgloss.NewStyle().Foreground(m.theme.Dead)
	cursor := lipgloss.NewStyle().Foreground(m.theme.Cursor).Bold(true)

	var b strings.Builder
	for r, row := range s.Cells {
		var run strings.Builder
		runAlive := false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runAlive {
				b.WriteString(alive.Render(run.String()))
			} else {
				b.WriteString(dead.Render(run.String()))
			}
			run.Reset()
		}
		for c, a := range row {
			if r == m.row && c == m.col {
				flush()
				glyph := "+"
				if a {
					glyph = "#"
				}
				b.WriteString(cursor.Render(glyph))
				continue
			}
			if a != runAlive {
				flush()
				runAlive = a
			}
			if a {
				run.WriteString("█")
			} else {
				run.WriteString("·")
			}
		}
		flush()
		b.WriteString("\n")
	}
	return b.String()
}

// Run starts the editor on the alternate screen and blocks until it quits.
func Run(ctx context.Context, ctrl *sim.Controller, cfg AppConfig) error {
	_, err := tea.NewProgram(NewApp(ctx, ctrl, cfg), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	ctrl.Stop()
	ctrl.Wait()
	return err
}
