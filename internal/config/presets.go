package config

var Presets = map[string]map[string]*Config{
	"social": {
		"baseline": {
			Model: "social", Steps: 20000,
			Social: SocialConfig{Agents: 300, Informed: 0.3, Accuracy: 0.52, Poll: 12},
		},
		"informed-heavy": {
			Model: "social", Steps: 20000,
			Social: SocialConfig{Agents: 300, Informed: 0.6, Accuracy: 0.52, Poll: 12},
		},
		"sparse-informed": {
			Model: "social", Steps: 50000,
			Social: SocialConfig{Agents: 500, Informed: 0.05, Accuracy: 0.6, Poll: 11},
		},
		"small-polls": {
			Model: "social", Steps: 20000,
			Social: SocialConfig{Agents: 300, Informed: 0.3, Accuracy: 0.52, Poll: 3},
		},
	},
	"rfim": {
		"saturated": {
			Model: "rfim", Steps: 200,
			RFIM: RFIMConfig{Agents: 500, Coupling: 1.0, Field: 15.0, Scale: 1.2},
		},
		"neutral": {
			Model: "rfim", Steps: 200,
			RFIM: RFIMConfig{Agents: 500, Coupling: 1.0, Field: 0.0, Scale: 1.2},
		},
		"narrow-disorder": {
			Model: "rfim", Steps: 500,
			RFIM: RFIMConfig{Agents: 500, Coupling: 1.0, Field: 0.0, Scale: 0.6},
		},
		// Disorder comparable to the coupling, where single flips can
		// cascade into system-spanning avalanches.
		"critical": {
			Model: "rfim", Steps: 500,
			RFIM: RFIMConfig{Agents: 500, Coupling: 1.0, Field: 0.0, Scale: 0.8},
		},
		"decoupled": {
			Model: "rfim", Steps: 200,
			RFIM: RFIMConfig{Agents: 500, Coupling: 0.0, Field: 0.3, Scale: 1.0},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
