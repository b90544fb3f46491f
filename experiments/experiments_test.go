package experiments

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"montecarlo/config"
	"montecarlo/errs"
)

func testConfig(t *testing.T) config.Config {
	cfg, err := config.Parse([]byte(`
name: smoke
scenarios:
  - id: 1
    name: ruin
    experiment: {kind: gamblers-ruin, p: 0.4864864864864865, stake: 5}
    seed: 11
    target_half_width: 0.02
    initial_batch: 1000
    follow_up_batch: 500
    trial_cap: 100000
    repeat: 2
    shrink: 0.5
  - id: 2
    name: area
    mode: fixed
    experiment: {kind: accept-reject, x_limit: 6, y_limit: 2}
    trials: 20000
    target_half_width: 0.01
    extrapolate: true
`))
	require.NoError(t, err)
	return cfg
}

func TestRun(t *testing.T) {
	t.Run("running every scenario and repetition", func(t *testing.T) {
		report, err := Run(testConfig(t))

		require.NoError(t, err)
		require.Len(t, report.Scenarios, 2)
		require.Len(t, report.Runs, 3, "Two repetitions plus one fixed run")

		first, second, fixed := report.Runs[0], report.Runs[1], report.Runs[2]
		require.Equal(t, []int{1, 2, 3}, []int{first.ID, second.ID, fixed.ID})
		require.Equal(t, uint64(11), first.Seed)
		require.Equal(t, uint64(12), second.Seed, "Each repetition should reseed")
		require.Equal(t, 0.02, first.Target)
		require.Equal(t, 0.01, second.Target, "Each repetition should shrink the target")
		require.Equal(t, "converged", first.Reason)
		require.LessOrEqual(t, second.HalfWidth, 0.01)
		require.Greater(t, second.Trials, first.Trials, "A tighter target should need more trials")

		require.Equal(t, "fixed", fixed.Reason)
		require.Equal(t, int64(20_000), fixed.Trials)
		require.Greater(t, fixed.ProjectedTrials, int64(0), "Fixed run should be extrapolated towards its target")

		for _, b := range report.Batches {
			require.Contains(t, []int{1, 2}, b.Run, "Only adaptive runs record batches")
		}
	})

	t.Run("stopping on a failing experiment", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Scenarios[0].Experiment.MaxSteps = 1

		report, err := Run(cfg)

		require.ErrorIs(t, err, errs.ErrExperimentFailure)
		require.Len(t, report.Runs, 1, "Failed run should still be reported")
		require.Equal(t, "failed", report.Runs[0].Reason)
	})
}

func TestStore(t *testing.T) {
	report, err := Run(testConfig(t))
	require.NoError(t, err)
	root := t.TempDir()

	dir, err := Store(root, "smoke", report)

	require.NoError(t, err)
	for _, file := range []string{"scenario_configs.csv", "run_records.csv", "batch_records.csv"} {
		info, err := os.Stat(filepath.Join(dir, file))
		require.NoError(t, err, "Should write %s", file)
		require.Greater(t, info.Size(), int64(0))
	}
}
