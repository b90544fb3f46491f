package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"montecarlo/errs"
	"montecarlo/experiment"
	"montecarlo/meta"
	"montecarlo/stats"
)

type Mode string

const (
	ModeFixed    Mode = "fixed"
	ModeAdaptive Mode = "adaptive"
)

// Config is a set of scenarios run together and reported under one name.
type Config struct {
	Name      string     `yaml:"name"`
	Output    string     `yaml:"output"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario is one simulation, possibly repeated. Zero fields take the
// defaults from package meta.
type Scenario struct {
	ID              int               `yaml:"id"`
	Name            string            `yaml:"name"`
	Experiment      experiment.Params `yaml:"experiment"`
	Seed            uint64            `yaml:"seed"`
	Mode            Mode              `yaml:"mode"`
	Level           float64           `yaml:"level"`
	TargetHalfWidth float64           `yaml:"target_half_width"`

	// Fixed mode
	Trials      int64 `yaml:"trials"`
	Extrapolate bool  `yaml:"extrapolate"` // Project the cost of reaching TargetHalfWidth

	// Adaptive mode
	InitialBatch  int64   `yaml:"initial_batch"`
	FollowUpBatch int64   `yaml:"follow_up_batch"`
	BatchGrowth   float64 `yaml:"batch_growth"`
	TrialCap      int64   `yaml:"trial_cap"`

	// Each repetition reseeds with Seed+i and multiplies the target by Shrink
	Repeat int     `yaml:"repeat"`
	Shrink float64 `yaml:"shrink"`
}

// Load reads a scenario file, applies defaults then environment overrides,
// and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config: %w", err)
	}

	config.applyDefaults()
	if err := config.applyEnv(); err != nil {
		return config, err
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "simulation"
	}
	if c.Output == "" {
		c.Output = "results"
	}
	for i := range c.Scenarios {
		c.Scenarios[i].applyDefaults(i)
	}
}

func (s *Scenario) applyDefaults(index int) {
	if s.ID == 0 {
		s.ID = index + 1
	}
	if s.Name == "" {
		s.Name = string(s.Experiment.Kind)
	}
	if s.Seed == 0 {
		s.Seed = meta.Seed
	}
	if s.Mode == "" {
		s.Mode = ModeAdaptive
	}
	if s.Level == 0 {
		s.Level = meta.Level
	}
	if s.InitialBatch == 0 {
		s.InitialBatch = meta.InitialBatch
	}
	if s.FollowUpBatch == 0 {
		s.FollowUpBatch = meta.FollowUpBatch
	}
	if s.BatchGrowth == 0 {
		s.BatchGrowth = meta.BatchGrowth
	}
	if s.TrialCap == 0 {
		s.TrialCap = meta.TrialCap
	}
	if s.Repeat == 0 {
		s.Repeat = 1
	}
	if s.Shrink == 0 {
		s.Shrink = 1
	}
	if s.Experiment.Kind == experiment.KindGamblersRuin && s.Experiment.MaxSteps == 0 {
		s.Experiment.MaxSteps = meta.MaxSteps
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MONTECARLO_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("MONTECARLO_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return fmt.Errorf("MONTECARLO_SEED=%q: %w", v, errs.ErrInvalidArgument)
		}
		for i := range c.Scenarios {
			c.Scenarios[i].Seed = seed
		}
	}
	if v := os.Getenv("MONTECARLO_LEVEL"); v != "" {
		level, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MONTECARLO_LEVEL=%q: %w", v, errs.ErrInvalidArgument)
		}
		for i := range c.Scenarios {
			c.Scenarios[i].Level = level
		}
	}
	if v := os.Getenv("MONTECARLO_TRIAL_CAP"); v != "" {
		trialCap, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MONTECARLO_TRIAL_CAP=%q: %w", v, errs.ErrInvalidArgument)
		}
		for i := range c.Scenarios {
			c.Scenarios[i].TrialCap = trialCap
		}
	}
	return nil
}

func (c Config) Validate() error {
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("no scenarios: %w", errs.ErrInvalidArgument)
	}
	seen := map[int]bool{}
	for _, s := range c.Scenarios {
		if seen[s.ID] {
			return fmt.Errorf("duplicate scenario id %d: %w", s.ID, errs.ErrInvalidArgument)
		}
		seen[s.ID] = true
		if err := s.Validate(); err != nil {
			return fmt.Errorf("scenario %d (%s): %w", s.ID, s.Name, err)
		}
	}
	return nil
}

func (s Scenario) Validate() error {
	if _, err := experiment.New(s.Experiment); err != nil {
		return err
	}
	if _, err := stats.Z(s.Level); err != nil {
		return err
	}
	if s.Repeat < 1 {
		return fmt.Errorf("repeat %d must be at least 1: %w", s.Repeat, errs.ErrInvalidArgument)
	}
	if !(s.Shrink > 0) {
		return fmt.Errorf("shrink %v must be positive: %w", s.Shrink, errs.ErrInvalidArgument)
	}

	switch s.Mode {
	case ModeFixed:
		if s.Trials <= 0 {
			return fmt.Errorf("fixed mode needs a positive trial count, got %d: %w", s.Trials, errs.ErrInvalidArgument)
		}
		if s.Extrapolate && !(s.TargetHalfWidth > 0) {
			return fmt.Errorf("extrapolation needs a positive target half-width: %w", errs.ErrInvalidArgument)
		}
	case ModeAdaptive:
		if !(s.TargetHalfWidth > 0) {
			return fmt.Errorf("adaptive mode needs a positive target half-width: %w", errs.ErrInvalidArgument)
		}
		if s.InitialBatch <= 0 || s.FollowUpBatch <= 0 {
			return fmt.Errorf("batch sizes must be positive: %w", errs.ErrInvalidArgument)
		}
		if s.BatchGrowth < 1 {
			return fmt.Errorf("batch growth %v must be at least 1: %w", s.BatchGrowth, errs.ErrInvalidArgument)
		}
		if s.TrialCap <= 0 {
			return fmt.Errorf("trial cap %d must be positive: %w", s.TrialCap, errs.ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("unknown mode %q: %w", s.Mode, errs.ErrInvalidArgument)
	}
	return nil
}

// Target returns the target half-width of the given zero-based repetition.
func (s Scenario) Target(repetition int) float64 {
	target := s.TargetHalfWidth
	for i := 0; i < repetition; i++ {
		target *= s.Shrink
	}
	return target
}
