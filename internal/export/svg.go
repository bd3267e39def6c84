package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/lifesim/internal/life"
)

// BoardToSVG draws every live cell as a scale x scale square.
func BoardToSVG(s life.Snapshot, scale float64) string {
	if s.Height < 1 || s.Width < 1 || scale <= 0 {
		return ""
	}

	width := float64(s.Width) * scale
	height := float64(s.Height) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height))

	inset := scale * 0.1
	for row, cells := range s.Cells {
		for col, alive := range cells {
			if !alive {
				continue
			}
			x := float64(col)*scale + inset
			y := float64(row)*scale + inset
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>
`, x, y, scale-2*inset, scale-2*inset))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// PopulationToSVG plots population per generation as a line chart.
func PopulationToSVG(population []int, width, height int, strokeColor string) string {
	if len(population) < 2 {
		return ""
	}

	maxPop := population[0]
	for _, p := range population {
		maxPop = max(maxPop, p)
	}
	top := float64(maxPop) * 1.1
	if top == 0 {
		top = 1
	}
	last := float64(len(population) - 1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range population {
		x := float64(i) / last * float64(width)
		y := float64(height) - float64(p)/top*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
