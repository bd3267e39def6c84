package config

import "sort"

// Preset is a named board size with a playback speed that suits it.
type Preset struct {
	Height int
	Width  int
	Speed  int
}

var Presets = map[string]Preset{
	"small":   {Height: 16, Width: 32, Speed: 80},
	"classic": {Height: DefaultHeight, Width: DefaultWidth, Speed: 90},
	"large":   {Height: 60, Width: 160, Speed: 95},
	"huge":    {Height: 120, Width: 320, Speed: 100},
}

func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Height, cfg.Width, cfg.Speed = p.Height, p.Width, p.Speed
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
