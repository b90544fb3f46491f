package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"montecarlo/config"
	"montecarlo/experiment"
	"montecarlo/experiments"
	"montecarlo/extrapolate"
	"montecarlo/meta"
	"montecarlo/random"
	"montecarlo/simulation"
	"montecarlo/stats"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "montecarlo",
		Short:         "Run Monte Carlo simulations to a fixed trial count or a target precision",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(newFixedCmd(), newAdaptiveCmd(), newRunCmd(), newVarianceCmd())
	return cmd
}

func addExperimentFlags(cmd *cobra.Command, params *experiment.Params, kind experiment.Kind) {
	params.Kind = kind
	cmd.Flags().Var(newKindValue(&params.Kind), "experiment", "experiment kind (accept-reject, uniform, gamblers-ruin)")
	cmd.Flags().StringVar(&params.Function, "function", "damped", "target function of the integration experiments")
	cmd.Flags().Float64Var(&params.Lower, "lower", 0, "lower x bound")
	cmd.Flags().Float64Var(&params.XLimit, "x-limit", 6, "upper x bound")
	cmd.Flags().Float64Var(&params.YLimit, "y-limit", 2, "upper y bound of the accept-reject rectangle")
	cmd.Flags().Float64Var(&params.P, "p", 18.0/37.0, "win probability of one bet")
	cmd.Flags().IntVar(&params.Stake, "stake", 5, "starting stake")
	cmd.Flags().IntVar(&params.MaxSteps, "max-steps", meta.MaxSteps, "step budget of one random walk")
}

func newFixedCmd() *cobra.Command {
	var (
		params experiment.Params
		trials int64
		seed   uint64
		level  float64
		target float64
	)

	cmd := &cobra.Command{
		Use:   "fixed",
		Short: "Run a fixed number of trials, optionally projecting the cost of a target half-width",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := experiment.New(params)
			if err != nil {
				return err
			}

			c := stats.NewCollector()
			result, err := simulation.RunFixed(exp, trials, random.New(seed), c)
			if err != nil {
				return err
			}
			if err := printResult(cmd.OutOrStdout(), params, result, level); err != nil {
				return err
			}

			if target <= 0 {
				return nil
			}
			projection, err := extrapolate.FromResult(result, level, target)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Target half-width:         %g\n", target)
			fmt.Fprintf(out, "Total trials needed:       %.0f\n", projection.TotalTrials)
			fmt.Fprintf(out, "Additional trials needed:  %d\n", projection.AdditionalTrials)
			fmt.Fprintf(out, "Estimated additional time: %v\n", projection.AdditionalTime)
			return nil
		},
	}
	addExperimentFlags(cmd, &params, experiment.KindAcceptReject)
	cmd.Flags().Int64Var(&trials, "trials", 1_000_000, "number of trials")
	cmd.Flags().Uint64Var(&seed, "seed", meta.Seed, "random seed")
	cmd.Flags().Float64Var(&level, "level", meta.Level, "confidence level")
	cmd.Flags().Float64Var(&target, "target", 0, "target half-width to extrapolate to (0 disables)")
	return cmd
}

func newAdaptiveCmd() *cobra.Command {
	var (
		params   experiment.Params
		seed     uint64
		level    float64
		target   float64
		initial  int64
		followUp int64
		growth   float64
		trialCap int64
		repeat   int
		shrink   float64
	)

	cmd := &cobra.Command{
		Use:   "adaptive",
		Short: "Run batches of trials until the confidence interval is narrow enough",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := experiment.New(params)
			if err != nil {
				return err
			}

			for i := 0; i < repeat; i++ {
				driver, err := simulation.NewAdaptive(level, target,
					simulation.WithInitialBatch(initial),
					simulation.WithFollowUpBatch(followUp),
					simulation.WithBatchGrowth(growth),
					simulation.WithTrialCap(trialCap),
				)
				if err != nil {
					return err
				}

				c := stats.NewCollector()
				result, err := driver.RunUntilPrecision(exp, random.New(seed), c)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "*************************************\n")
				fmt.Fprintf(out, "  Simulation results - Experiment %d\n", i+1)
				fmt.Fprintf(out, "*************************************\n")
				fmt.Fprintf(out, "Target half-width: %g (%s after %d batches)\n", target, result.Reason, result.Batches)
				if err := printResult(out, params, result, level); err != nil {
					return err
				}
				fmt.Fprintln(out)

				target *= shrink
			}
			return nil
		},
	}
	addExperimentFlags(cmd, &params, experiment.KindGamblersRuin)
	cmd.Flags().Uint64Var(&seed, "seed", meta.Seed, "random seed")
	cmd.Flags().Float64Var(&level, "level", meta.Level, "confidence level")
	cmd.Flags().Float64Var(&target, "target", 0.0001, "target half-width")
	cmd.Flags().Int64Var(&initial, "initial", meta.InitialBatch, "size of the first batch")
	cmd.Flags().Int64Var(&followUp, "follow-up", meta.FollowUpBatch, "size of the second batch")
	cmd.Flags().Float64Var(&growth, "growth", meta.BatchGrowth, "multiplier applied to each later batch")
	cmd.Flags().Int64Var(&trialCap, "cap", meta.TrialCap, "maximum number of trials")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "number of runs")
	cmd.Flags().Float64Var(&shrink, "shrink", 0.5, "target multiplier between runs")
	return cmd
}

func newRunCmd() *cobra.Command {
	var (
		path   string
		output string
		store  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scenarios of a YAML file and store the results as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Output = output
			}

			report, err := experiments.Run(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, run := range report.Runs {
				fmt.Fprintf(out, "run %d (scenario %d #%d): trials=%d mean=%.6f +/- %.6g [%s]\n",
					run.ID, run.Scenario, run.Repetition, run.Trials, run.Mean, run.HalfWidth, run.Reason)
			}
			if !store {
				return nil
			}
			dir, err := experiments.Store(cfg.Output, cfg.Name, report)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "results stored in %s\n", dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "config", "", "scenario file")
	cmd.Flags().StringVar(&output, "out", "", "output directory (overrides the file)")
	cmd.Flags().BoolVar(&store, "store", true, "write CSV results")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newVarianceCmd() *cobra.Command {
	var (
		exponents []float64
		samples   int
		seed      uint64
	)

	cmd := &cobra.Command{
		Use:   "variance",
		Short: "Compare Welford, two-pass and naive variance on data with a large offset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			rnd := random.New(seed)
			for _, d := range exponents {
				xs := distances(rnd, math.Pow(10, d), samples)

				welford, err := stats.WelfordVariance(xs)
				if err != nil {
					return err
				}
				_, twoPass, err := stats.TwoPassVariance(xs)
				if err != nil {
					return err
				}
				naive, err := stats.NaiveVariance(xs)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Values for d = %g\n", d)
				fmt.Fprintf(out, "Welford variance:  %.12g\n", welford)
				fmt.Fprintf(out, "Two-pass variance: %.12g\n", twoPass)
				fmt.Fprintf(out, "Naive variance:    %.12g\n", naive)
			}
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&exponents, "exponents", []float64{3, 6, 9}, "offsets as powers of ten")
	cmd.Flags().IntVar(&samples, "samples", 1_000_000, "values per offset")
	cmd.Flags().Uint64Var(&seed, "seed", meta.Seed, "random seed")
	return cmd
}

// distances returns the norms of points drawn uniformly from the unit square
// centred on (offset, offset).
func distances(rnd random.Source, offset float64, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		x := rnd.Float64() + offset - 0.5
		y := rnd.Float64() + offset - 0.5
		xs[i] = math.Sqrt(x*x + y*y)
	}
	return xs
}

func printResult(out io.Writer, params experiment.Params, result simulation.Result, level float64) error {
	ci, err := result.Stats.Interval(level)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Experiment:                %s\n", params)
	fmt.Fprintf(out, "Number of trials:          %d\n", result.Stats.Count())
	fmt.Fprintf(out, "Estimated mean:            %.6f\n", ci.Mean)
	fmt.Fprintf(out, "Confidence interval (%g%%): %.6f +/- %.6g\n", level*100, ci.Mean, ci.HalfWidth)
	fmt.Fprintf(out, "Time taken:                %v\n", result.Elapsed.Round(time.Millisecond))
	return nil
}
