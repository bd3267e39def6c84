package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/lifesim/internal/life"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer redraws the board in place after each generation. It is a
// sim.Observer; frames arriving faster than frameRate are dropped.
type LiveRenderer struct {
	out       io.Writer
	name      string
	frameRate int
	lastFrame time.Time
	now       func() time.Time
}

func NewLiveRenderer(out io.Writer, name string, frameRate int) *LiveRenderer {
	return &LiveRenderer{
		out:       out,
		name:      name,
		frameRate: max(frameRate, 1),
		now:       time.Now,
	}
}

func (r *LiveRenderer) OnGeneration(gen int, g *life.Grid) {
	now := r.now()
	if now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = now
	r.render(gen, g)
}

func (r *LiveRenderer) render(gen int, g *life.Grid) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  gen=%d  pop=%d\n", r.name, gen, g.Population()))
	b.WriteString("  +" + strings.Repeat("-", g.Width()) + "+\n")

	for row := range g.Height() {
		b.WriteString("  |")
		for col := range g.Width() {
			if g.Alive(row, col) {
				b.WriteByte('#')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString("|\n")
	}

	b.WriteString("  +" + strings.Repeat("-", g.Width()) + "+\n")
	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
