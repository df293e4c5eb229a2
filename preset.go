package studio

import "strings"

// Preset is a named target canvas size in device pixels.
type Preset struct {
	Name   string
	Width  int
	Height int
}

var presets = []Preset{
	{"Instagram Post", 1080, 1080},
	{"Instagram Story", 1080, 1920},
	{"Instagram Portrait", 1080, 1350},
	{"Facebook Post", 1200, 630},
	{"Facebook Cover", 820, 312},
	{"Twitter Post", 1200, 675},
	{"Twitter Header", 1500, 500},
	{"LinkedIn Post", 1200, 627},
	{"YouTube Thumbnail", 1280, 720},
	{"Pinterest Pin", 1000, 1500},
	{"iPhone 15", 1179, 2556},
	{"iPad", 2048, 2732},
	{"Desktop HD", 1920, 1080},
}

// Presets returns the built-in frame presets.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// LookupPreset finds a preset by name, ignoring case.
func LookupPreset(name string) (Preset, bool) {
	name = strings.TrimSpace(name)
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// fit returns the preset dimensions scaled down to fit a w x h box.
func (p Preset) fit(w, h float64) (float64, float64) {
	s := min(w/float64(p.Width), h/float64(p.Height), 1)
	return float64(p.Width) * s, float64(p.Height) * s
}
