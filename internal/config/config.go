package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/opinionlab/internal/experiment"
)

const (
	DefaultSteps    = 20000
	DefaultAgents   = 300
	DefaultInformed = 0.3
	DefaultAccuracy = 0.52
	DefaultPoll     = 12

	DefaultRFIMAgents   = 500
	DefaultCoupling     = 1.0
	DefaultScale        = 1.2
	DefaultRFIMMaxSweep = 10000
)

type Config struct {
	Model       string           `yaml:"model"`
	Steps       int              `yaml:"steps"`
	Seed        int64            `yaml:"seed"`
	Replicas    int              `yaml:"replicas"`
	RecordEvery int              `yaml:"record_every"`
	Social      SocialConfig     `yaml:"social"`
	RFIM        RFIMConfig       `yaml:"rfim"`
	FixedPoint  FixedPointConfig `yaml:"fixedpoint"`
}

type SocialConfig struct {
	Agents   int     `yaml:"agents"`
	Informed float64 `yaml:"informed"`
	Accuracy float64 `yaml:"accuracy"`
	Poll     int     `yaml:"poll"`
}

type RFIMConfig struct {
	Agents    int     `yaml:"agents"`
	Coupling  float64 `yaml:"coupling"`
	Field     float64 `yaml:"field"`
	Scale     float64 `yaml:"scale"`
	MaxSweeps int     `yaml:"max_sweeps"`
}

// FixedPointConfig carries the analytic overlay parameters. They default
// to the social simulation parameters but stay independently settable.
type FixedPointConfig struct {
	Informed   float64 `yaml:"informed"`
	Accuracy   float64 `yaml:"accuracy"`
	Poll       int     `yaml:"poll"`
	Iterations int     `yaml:"iterations"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "social",
		Steps:       DefaultSteps,
		Replicas:    1,
		RecordEvery: 1,
		Social: SocialConfig{
			Agents:   DefaultAgents,
			Informed: DefaultInformed,
			Accuracy: DefaultAccuracy,
			Poll:     DefaultPoll,
		},
		RFIM: RFIMConfig{
			Agents:    DefaultRFIMAgents,
			Coupling:  DefaultCoupling,
			Scale:     DefaultScale,
			MaxSweeps: DefaultRFIMMaxSweep,
		},
		FixedPoint: FixedPointConfig{
			Informed: DefaultInformed,
			Accuracy: DefaultAccuracy,
			Poll:     DefaultPoll,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ExperimentParams flattens the per-model section into the parameter bag
// the experiment registry consumes.
func (c *Config) ExperimentParams(model string) experiment.Params {
	switch model {
	case "rfim":
		return experiment.Params{
			"agents":     float64(c.RFIM.Agents),
			"coupling":   c.RFIM.Coupling,
			"field":      c.RFIM.Field,
			"scale":      c.RFIM.Scale,
			"max_sweeps": float64(c.RFIM.MaxSweeps),
		}
	default:
		return experiment.Params{
			"agents":   float64(c.Social.Agents),
			"informed": c.Social.Informed,
			"accuracy": c.Social.Accuracy,
			"poll":     float64(c.Social.Poll),
		}
	}
}
