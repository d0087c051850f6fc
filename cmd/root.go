package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/hunter-sim/hunter-sim/sim"
	"github.com/hunter-sim/hunter-sim/sim/optimize"
)

var (
	// Shared engine flags
	seed       int64  // Top-level seed; run seeds derive from it
	logLevel   string // Log verbosity level
	simsCount  int    // Simulations per build
	maxStage   int    // Final stage of a run
	actionCap  int    // Per-encounter action cap before a run aborts
	backend    string // Requested engine backend
	workers    int    // Worker pool size for batch fan-out
	coeffsPath string // Optional YAML coefficient table override

	// Optimizer flags
	hunterName       string        // Hunter kind (Borge, Ozzy, Knox)
	hunterLevel      int           // Hunter level; talent budget = level, attribute budget = 3x level
	tiers            int           // Maximum optimizer tiers
	buildsPerTier    int           // Builds scored per tier
	plateauWindow    int           // Tiers without improvement before stopping
	plateauThreshold float64       // Minimum relative improvement per window
	timeBudget       time.Duration // Wall-clock budget, 0 disables
	metricName       string        // Fitness metric
	baselinePath     string        // Optional baseline build file for deviation reporting
	topN             int           // Report lines printed

	// Simulate/parity flags
	buildPath  string // Build file (.yaml or .json)
	parityRuns int    // Shared seed count for the parity check
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "hunter-sim",
	Short: "Combat simulator and build optimizer for hunters",
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func engineConfig() *sim.EngineConfig {
	cfg := sim.DefaultEngineConfig()
	cfg.SimsPerBuild = simsCount
	cfg.MaxStage = maxStage
	cfg.ActionCap = actionCap
	cfg.Seed = seed
	cfg.Workers = workers

	// Optimizer flags only exist on the optimize subcommand; zero values
	// mean "keep the default".
	if tiers > 0 {
		cfg.Tiers = tiers
	}
	if buildsPerTier > 0 {
		cfg.BuildsPerTier = buildsPerTier
	}
	if plateauWindow > 0 {
		cfg.PlateauWindow = plateauWindow
	}
	if plateauThreshold > 0 {
		cfg.PlateauThreshold = plateauThreshold
	}
	if timeBudget > 0 {
		cfg.TimeBudget = timeBudget
	}

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
		logrus.Infof("No seed supplied, using %d", cfg.Seed)
	}

	kind, err := sim.ParseBackend(backend)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	cfg.Backend = kind

	if coeffsPath != "" {
		overrides, err := sim.LoadCoeffsFile(coeffsPath)
		if err != nil {
			logrus.Fatalf("Unable to load coefficient table: %v", err)
		}
		sim.ApplyCoeffsOverrides(overrides)
		logrus.Infof("Applied coefficient overrides from %s", coeffsPath)
	}
	return &cfg
}

// optimizeCmd runs the tiered evolutionary search
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Search for the best build at a kind and level",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := engineConfig()

		kind, err := sim.ParseHunterKind(hunterName)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		metric, err := optimize.ParseMetric(metricName)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		var baseline *sim.Build
		if baselinePath != "" {
			baseline, err = loadBuildFile(baselinePath)
			if err != nil {
				logrus.Fatalf("Unable to load baseline build: %v", err)
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		startTime := time.Now()
		logrus.Infof("Optimizing %s at level %d: %d tiers x %d builds x %d sims, metric=%s",
			kind, hunterLevel, cfg.Tiers, cfg.BuildsPerTier, cfg.SimsPerBuild, metric.Name())

		report, err := optimize.Run(ctx, cfg, kind, hunterLevel, metric, baseline)
		if err != nil {
			logrus.Fatalf("Optimization failed: %v", err)
		}
		printReport(report, topN, startTime)
	},
}

// simulateCmd scores a single build file
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a batch of simulations for one build file",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := engineConfig()

		b, err := loadBuildFile(buildPath)
		if err != nil {
			logrus.Fatalf("Unable to load build: %v", err)
		}
		runner, err := sim.NewBatchRunner(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		sel := runner.Selection()
		if sel.Overridden {
			logrus.Warnf("Backend override: %s", sel.Reason)
		}

		stats, err := runner.Run(context.Background(), b)
		if err != nil {
			logrus.Fatalf("Batch failed: %v", err)
		}
		printStats(b, stats, sel)
	},
}

// parityCmd cross-checks the two backends over a shared seed set
var parityCmd = &cobra.Command{
	Use:   "parity",
	Short: "Compare reference and accelerated backends on one build",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := engineConfig()

		b, err := loadBuildFile(buildPath)
		if err != nil {
			logrus.Fatalf("Unable to load build: %v", err)
		}
		if err := b.Validate(); err != nil {
			logrus.Fatalf("%v", err)
		}

		rep, err := sim.VerifyParity(b, cfg, parityRuns)
		if err != nil {
			var dis *sim.DisagreementError
			if !errors.As(err, &dis) {
				logrus.Fatalf("Parity check failed to run: %v", err)
			}
			logrus.Warnf("%v", dis)
		}
		fmt.Printf("parity over %d runs: reference mean stage %.2f, accelerated %.2f, diff %.2f%% (tolerance %.0f%%) within=%v\n",
			rep.Runs, rep.ReferenceMean, rep.AcceleratedMean, rep.RelDiff*100, sim.ParityTolerance*100, rep.Within)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{optimizeCmd, simulateCmd, parityCmd} {
		c.Flags().Int64Var(&seed, "seed", 0, "Top-level seed (0 derives one from the clock)")
		c.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().IntVar(&simsCount, "sims", 50, "Simulations per build")
		c.Flags().IntVar(&maxStage, "max-stage", 1000, "Final stage of a run")
		c.Flags().IntVar(&actionCap, "action-cap", 5000, "Per-encounter action cap before a run aborts")
		c.Flags().StringVar(&backend, "backend", "accelerated", "Engine backend (reference, accelerated)")
		c.Flags().IntVar(&workers, "workers", sim.DefaultEngineConfig().Workers, "Worker pool size")
		c.Flags().StringVar(&coeffsPath, "coeffs", "", "YAML coefficient table override")
	}

	optimizeCmd.Flags().StringVar(&hunterName, "hunter", "", "Hunter kind (Borge, Ozzy, Knox)")
	optimizeCmd.Flags().IntVar(&hunterLevel, "level", 100, "Hunter level")
	optimizeCmd.Flags().IntVar(&tiers, "tiers", 10, "Maximum optimizer tiers")
	optimizeCmd.Flags().IntVar(&buildsPerTier, "builds-per-tier", 100, "Builds scored per tier")
	optimizeCmd.Flags().IntVar(&plateauWindow, "plateau-window", 3, "Tiers without improvement before stopping")
	optimizeCmd.Flags().Float64Var(&plateauThreshold, "plateau-threshold", 0.01, "Minimum relative improvement per window")
	optimizeCmd.Flags().DurationVar(&timeBudget, "time-budget", 0, "Wall-clock budget (0 disables)")
	optimizeCmd.Flags().StringVar(&metricName, "metric", "avg_stage", "Fitness metric (avg_stage, loot_per_hour, survival_rate, avg_damage)")
	optimizeCmd.Flags().StringVar(&baselinePath, "baseline", "", "Baseline build file for deviation reporting")
	optimizeCmd.Flags().IntVar(&topN, "top", 10, "Report lines printed")
	optimizeCmd.MarkFlagRequired("hunter")

	simulateCmd.Flags().StringVar(&buildPath, "build", "", "Build file (.yaml or .json)")
	simulateCmd.MarkFlagRequired("build")

	parityCmd.Flags().StringVar(&buildPath, "build", "", "Build file (.yaml or .json)")
	parityCmd.Flags().IntVar(&parityRuns, "runs", 25, "Shared seed count for the parity check")
	parityCmd.MarkFlagRequired("build")

	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(parityCmd)
}
