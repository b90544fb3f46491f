package experiments

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"montecarlo/config"
	"montecarlo/experiment"
	"montecarlo/experiments/metrics"
	"montecarlo/extrapolate"
	"montecarlo/random"
	"montecarlo/simulation"
	"montecarlo/stats"
)

type Report struct {
	Scenarios []metrics.ScenarioConfig
	Runs      []metrics.RunRecord
	Batches   []metrics.BatchRecord
}

// Run executes every scenario of cfg in order. Each repetition gets a fresh
// collector and its own random source seeded with Seed+repetition.
func Run(cfg config.Config) (Report, error) {
	report := Report{}
	count := 0

	log.Info().Msgf("starting %s experiment...", cfg.Name)

	for si, scenario := range cfg.Scenarios {
		report.Scenarios = append(report.Scenarios, scenarioConfig(scenario))
		exp, err := experiment.New(scenario.Experiment)
		if err != nil {
			return report, fmt.Errorf("scenario %d: %w", scenario.ID, err)
		}

		log.Info().Msgf("starting scenario %d of %d: %s %s...", si+1, len(cfg.Scenarios), scenario.Name, scenario.Experiment)

		for rep := 0; rep < scenario.Repeat; rep++ {
			count++
			record, batches, err := runScenario(scenario, exp, rep)
			record.ID = count
			report.Runs = append(report.Runs, record)
			for _, b := range batches {
				report.Batches = append(report.Batches, metrics.BatchRecord{Run: count, BatchMetric: b})
			}
			if err != nil {
				return report, fmt.Errorf("scenario %d repetition %d: %w", scenario.ID, rep+1, err)
			}

			log.Info().Msgf("completed scenario %d repetition %d of %d: trials=%d mean=%.6f half-width=%.6g (%s) in %v",
				si+1, rep+1, scenario.Repeat, record.Trials, record.Mean, record.HalfWidth, record.Reason, record.Duration)
			if record.ProjectedTrials > 0 {
				log.Info().Msgf("reaching half-width %g needs %d more trials, about %v", record.Target, record.ProjectedTrials, record.ProjectedTime)
			}
		}
		log.Info().Msgf("completed scenario %d of %d", si+1, len(cfg.Scenarios))
	}

	log.Info().Msgf("completed %s experiment", cfg.Name)
	return report, nil
}

func runScenario(scenario config.Scenario, exp experiment.Experiment, rep int) (metrics.RunRecord, []metrics.BatchMetric, error) {
	seed := scenario.Seed + uint64(rep)
	target := scenario.Target(rep)
	rnd := random.New(seed)
	c := stats.NewCollector()

	var (
		result simulation.Result
		err    error
	)
	switch scenario.Mode {
	case config.ModeFixed:
		result, err = simulation.RunFixed(exp, scenario.Trials, rnd, c)
	case config.ModeAdaptive:
		var driver *simulation.Adaptive
		driver, err = simulation.NewAdaptive(scenario.Level, target,
			simulation.WithInitialBatch(scenario.InitialBatch),
			simulation.WithFollowUpBatch(scenario.FollowUpBatch),
			simulation.WithBatchGrowth(scenario.BatchGrowth),
			simulation.WithTrialCap(scenario.TrialCap),
			simulation.WithMetrics(),
		)
		if err == nil {
			result, err = driver.RunUntilPrecision(exp, rnd, c)
		}
	default:
		err = fmt.Errorf("unknown mode %q", scenario.Mode)
	}

	record := metrics.RunRecord{
		Scenario:   scenario.ID,
		Repetition: rep + 1,
		Seed:       seed,
		Target:     target,
		Reason:     result.Reason.String(),
		RunMetric:  result.Metric,
	}
	record.Mean, _ = c.Mean()
	record.HalfWidth, _ = c.HalfWidth(scenario.Level)
	if err != nil {
		record.Reason = simulation.Failed.String()
		return record, result.Batch, err
	}

	if scenario.Mode == config.ModeFixed && scenario.Extrapolate {
		projection, err := extrapolate.FromResult(result, scenario.Level, target)
		if err != nil {
			return record, result.Batch, fmt.Errorf("extrapolating: %w", err)
		}
		record.ProjectedTrials = projection.AdditionalTrials
		record.ProjectedTime = projection.AdditionalTime
	}
	return record, result.Batch, nil
}

func scenarioConfig(s config.Scenario) metrics.ScenarioConfig {
	sc := metrics.ScenarioConfig{
		ID:         s.ID,
		Name:       s.Name,
		Experiment: s.Experiment.String(),
		Mode:       string(s.Mode),
		Seed:       s.Seed,
		Level:      s.Level,
		Target:     s.TargetHalfWidth,
	}
	if s.Mode == config.ModeFixed {
		sc.Trials = s.Trials
	} else {
		sc.TrialCap = s.TrialCap
	}
	return sc
}

// Store writes the report as CSV under <root>/<name>/<timestamp> and
// returns that directory.
func Store(root, name string, report Report) (string, error) {
	writer, err := metrics.NewWriter(root, name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	err = writer.WriteScenarioConfigs(report.Scenarios)
	if err != nil {
		return "", fmt.Errorf("failed to store scenario configs: %w", err)
	}
	log.Info().Msg("stored scenario configs")

	err = writer.WriteRunRecords(report.Runs)
	if err != nil {
		return "", fmt.Errorf("failed to write run records: %w", err)
	}
	log.Info().Msg("stored run records")

	err = writer.WriteBatchRecords(report.Batches)
	if err != nil {
		return "", fmt.Errorf("failed to write batch records: %w", err)
	}
	log.Info().Msg("stored batch records")

	return writer.Dir(), nil
}
