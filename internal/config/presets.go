package config

import "sort"

// Presets tweak the default config. Each preset starts from DefaultConfig.
var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	"silk": func(c *Config) {
		c.Cloth.Width, c.Cloth.Height, c.Cloth.Spacing = 20, 20, 0.25
		c.Solver.StructuralStiffness = 0.02
		c.Solver.BendStiffness = 0.0005
		c.Forces.Wind.Oscillate = true
	},
	"canvas": func(c *Config) {
		c.Solver.StructuralStiffness = 0.8
		c.Solver.ShearStiffness = 0.3
		c.Solver.BendStiffness = 0.2
		c.Solver.MaxStretchRatio = 1.1
	},
	"flag": func(c *Config) {
		c.Cloth.Width, c.Cloth.Height = 16, 10
		c.Solver.StructuralStiffness = 0.5
		c.Solver.ShearStiffness = 0.1
		c.Solver.BendStiffness = 0.05
		c.Forces.Wind.Strength = 6
		c.Forces.Wind.Direction = [3]float64{1, 0, 0.3}
		c.Forces.Wind.Turbulence = 0.4
	},
	"storm": func(c *Config) {
		c.Solver.StructuralStiffness = 0.5
		c.Solver.Substeps = 2
		c.Forces.Wind.Strength = 12
		c.Forces.Wind.Oscillate = true
		c.Forces.Wind.OscillationSpeed = 3
		c.Forces.Wind.Turbulence = 0.8
	},
	"large": func(c *Config) {
		c.Cloth.Width, c.Cloth.Height, c.Cloth.Spacing = 48, 48, 0.125
		c.Solver.StructuralStiffness = 0.5
		c.Solver.Parallel = true
	},
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
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
