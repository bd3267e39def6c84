package viz

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/lifesim/internal/life"
	"github.com/san-kum/lifesim/internal/sim"
	"github.com/san-kum/lifesim/internal/store"
)

func newTestApp(t *testing.T, h, w int) (App, *sim.Controller) {
	t.Helper()
	g, err := life.NewGrid(h, w)
	if err != nil {
		t.Fatal(err)
	}
	ctrl := sim.New(g)
	// playback never advances on its own in these tests
	ctrl.SetSleeper(func(ctx context.Context, _ time.Duration) error {
		<-ctx.Done()
		return ctx.Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		ctrl.Wait()
	})
	app := NewApp(ctx, ctrl, AppConfig{
		BoardFile: filepath.Join(t.TempDir(), "board.json"),
		Theme:     "retro",
		Speed:     50,
	})
	return app, ctrl
}

func press(t *testing.T, m App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(App)
	}
	return m
}

func TestCursorClampsToBoard(t *testing.T) {
	m, _ := newTestApp(t, 3, 4)

	m = press(t, m, "up", "left")
	if m.row != 0 || m.col != 0 {
		t.Errorf("cursor moved off the board: %d,%d", m.row, m.col)
	}
	m = press(t, m, "down", "down", "down", "down", "l", "l", "l", "l", "l")
	if m.row != 2 || m.col != 3 {
		t.Errorf("expected cursor at 2,3, got %d,%d", m.row, m.col)
	}
}

func TestToggleUnderCursor(t *testing.T) {
	m, ctrl := newTestApp(t, 3, 3)

	m = press(t, m, "down", "right", "enter")
	if !ctrl.Export().Alive(1, 1) {
		t.Fatal("expected (1,1) alive after toggle")
	}
	press(t, m, "x")
	if ctrl.Export().Alive(1, 1) {
		t.Error("expected (1,1) dead after second toggle")
	}
}

func TestStartStop(t *testing.T) {
	m, ctrl := newTestApp(t, 3, 3)

	m = press(t, m, " ")
	if ctrl.Running() {
		t.Fatal("empty board should not start")
	}
	if !strings.Contains(m.status, "empty") {
		t.Errorf("unexpected status %q", m.status)
	}

	m = press(t, m, "x", " ")
	if !ctrl.Running() {
		t.Fatal("expected playback to start")
	}
	m = press(t, m, "n")
	if ctrl.Generation() != 0 {
		t.Error("manual step must not run during playback")
	}
	press(t, m, " ")
	if ctrl.Running() {
		t.Error("expected playback to stop")
	}
}

func TestSpeedKeys(t *testing.T) {
	m, ctrl := newTestApp(t, 3, 3)

	m = press(t, m, "+", "+")
	if m.speed != 60 {
		t.Errorf("expected speed 60, got %d", m.speed)
	}
	if ctrl.Interval() != sim.IntervalForSpeed(60) {
		t.Errorf("interval %v does not follow speed", ctrl.Interval())
	}
	for range 30 {
		m = press(t, m, "+")
	}
	if m.speed != sim.MaxSpeed || ctrl.Interval() != 0 {
		t.Errorf("expected max speed with no delay, got %d / %v", m.speed, ctrl.Interval())
	}
}

func TestExportImport(t *testing.T) {
	m, ctrl := newTestApp(t, 3, 3)

	m = press(t, m, "x", "e")
	if m.statusErr {
		t.Fatalf("export failed: %s", m.status)
	}
	saved, err := store.ImportFile(m.boardFile)
	if err != nil {
		t.Fatal(err)
	}
	if !saved.Alive(0, 0) || saved.Population() != 1 {
		t.Errorf("unexpected exported board %+v", saved)
	}

	m = press(t, m, "c")
	if ctrl.HasLiveCells() {
		t.Fatal("expected clear board")
	}
	m = press(t, m, "i")
	if m.statusErr {
		t.Fatalf("import failed: %s", m.status)
	}
	if !ctrl.Export().Equal(saved) {
		t.Error("import did not restore the exported board")
	}
}

func TestImportMissingFile(t *testing.T) {
	m, ctrl := newTestApp(t, 3, 3)
	m = press(t, m, "x")

	m = press(t, m, "i")
	if !m.statusErr {
		t.Error("expected import error for missing file")
	}
	if !ctrl.Export().Alive(0, 0) {
		t.Error("failed import must leave the board alone")
	}
}

func TestResetAfterRun(t *testing.T) {
	m, ctrl := newTestApp(t, 3, 3)

	m = press(t, m, "r")
	if !strings.Contains(m.status, "no run") {
		t.Errorf("unexpected status %q", m.status)
	}

	m = press(t, m, "x", " ", "c", "r")
	if ctrl.Running() {
		t.Error("reset should stop playback")
	}
	if !ctrl.Export().Alive(0, 0) {
		t.Error("reset should restore the run start")
	}
}

func TestPatternAndSoup(t *testing.T) {
	m, ctrl := newTestApp(t, 10, 10)

	m = press(t, m, "p")
	if m.statusErr || !ctrl.HasLiveCells() {
		t.Fatalf("pattern load failed: %s", m.status)
	}
	first := ctrl.Export()
	m = press(t, m, "p")
	if ctrl.Export().Equal(first) {
		t.Error("expected a different pattern")
	}

	m = press(t, m, "s")
	if m.statusErr || !ctrl.HasLiveCells() {
		t.Fatalf("soup failed: %s", m.status)
	}
}

func TestViewModes(t *testing.T) {
	m, _ := newTestApp(t, 4, 4)
	m = press(t, m, "x")

	v := m.View()
	if !strings.Contains(v, "PAUSED") || !strings.Contains(v, "4x4") {
		t.Errorf("unexpected view:\n%s", v)
	}

	m = press(t, m, "?")
	if !strings.Contains(m.View(), "KEYBOARD SHORTCUTS") {
		t.Error("expected help overlay")
	}

	m = press(t, m, "b")
	if !strings.ContainsRune(m.View(), 0x2801) {
		t.Error("expected braille dot for the live corner cell")
	}

	m = press(t, m, "t")
	if m.theme.Name != "cyberpunk" {
		t.Errorf("expected theme after retro, got %s", m.theme.Name)
	}
}

func TestQuit(t *testing.T) {
	m, ctrl := newTestApp(t, 3, 3)
	m = press(t, m, "x", " ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if ctrl.Running() {
		t.Error("quit should stop playback")
	}
}
