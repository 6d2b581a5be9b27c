package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/gojunction/agent"
	"github.com/samuelfneumann/gojunction/agent/baseline"
	"github.com/samuelfneumann/gojunction/environment"
	"github.com/samuelfneumann/gojunction/environment/junction"
	"github.com/samuelfneumann/gojunction/environment/sumo"
	"github.com/samuelfneumann/gojunction/environment/wrappers"
	"github.com/samuelfneumann/gojunction/experiment"
	"github.com/samuelfneumann/gojunction/experiment/checkpointer"
	"github.com/samuelfneumann/gojunction/experiment/trackers"
	"github.com/samuelfneumann/gojunction/utils/floatutils"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "junction",
})

func main() {
	rootCmd := &cobra.Command{
		Use:           "junction",
		Short:         "Junction runs traffic light control experiments on a SUMO junction.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("data", "", "directory holding the "+
		"SUMO network and configuration (default $JUNCTION_DATA or the "+
		"user cache directory)")

	// SUMO_HOME and JUNCTION_DATA may be kept in a .env file in the
	// working directory or beside the executable
	envFiles := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		envFiles = append(envFiles, filepath.Join(filepath.Dir(exe), ".env"))
	}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCmd.AddCommand(routesCmd(), configCmd(), dataCmd(), baselineCmd(),
		returnsCmd())
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func routesCmd() *cobra.Command {
	var (
		seed    uint64
		ticks   int
		out     string
		arrival junction.Arrival
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Write the demand schedule of a single episode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule := junction.NewDemandGenerator(ticks, arrival).Generate(seed)
			if err := schedule.WriteFile(out); err != nil {
				return fmt.Errorf("routes: %w", err)
			}

			logger.Info("schedule written", "file", out, "seed", seed,
				"vehicles", len(schedule.Vehicles))
			return nil
		},
	}

	f := cmd.Flags()
	f.Uint64Var(&seed, "seed", junction.DefaultSeed, "demand seed")
	f.IntVar(&ticks, "ticks", junction.DefaultEpisodeTicks, "ticks with departures")
	f.StringVar(&out, "out", "cross.rou.xml", "route file to write")
	f.Float64Var(&arrival.WestEast, "we", junction.DefaultArrival.WestEast,
		"west to east arrival probability")
	f.Float64Var(&arrival.EastWest, "ew", junction.DefaultArrival.EastWest,
		"east to west arrival probability")
	f.Float64Var(&arrival.NorthSouth, "ns", junction.DefaultArrival.NorthSouth,
		"north to south arrival probability")
	f.Float64Var(&arrival.SouthNorth, "sn", junction.DefaultArrival.SouthNorth,
		"south to north arrival probability")
	return cmd
}

// dataDir returns the data directory selected on the command line
func dataDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("data"); dir != "" {
		return dir
	}
	return junction.DefaultDataDir()
}

func newLauncher() junction.SumoLauncher {
	return junction.SumoLauncher{Launcher: sumo.Launcher{Logger: logger}}
}

func dataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "data",
		Short: "Write the SUMO configuration and build the road network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dataDir(cmd)
			if err := junction.PrepareData(dir, newLauncher()); err != nil {
				return fmt.Errorf("data: %w", err)
			}
			logger.Info("data prepared", "dir", dir)
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config <file>",
		Short: "Write the default environment configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return junction.DefaultConfig().Save(args[0])
		},
	}
}

// baselineFlags are the flags of the baseline command
type baselineFlags struct {
	config       string
	episodes     int
	policy       string
	period       int
	green        int
	red          int
	initialPhase int
	seed         uint64
	visualize    bool
	out          string
	png          string
	frames       int
	maxSteps     int
}

func baselineCmd() *cobra.Command {
	var flags baselineFlags

	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Run a non-learning controller on the junction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBaseline(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.config, "config", "", "environment configuration "+
		"file (default configuration if empty)")
	f.IntVar(&flags.episodes, "episodes", 1, "episodes to run")
	f.StringVar(&flags.policy, "policy", "fixed", "controller: fixed, "+
		"phase or random")
	f.IntVar(&flags.period, "period", 20, "extra steps each phase is held "+
		"for by the fixed controller")
	f.IntVar(&flags.green, "green", 60, "steps phase 0 is held for by the "+
		"phase controller")
	f.IntVar(&flags.red, "red", 20, "steps phase 1 is held for by the "+
		"phase controller")
	f.IntVar(&flags.initialPhase, "initial-phase", 1, "first phase of the "+
		"controller")
	f.Uint64Var(&flags.seed, "seed", junction.DefaultSeed, "demand seed")
	f.BoolVar(&flags.visualize, "visualize", false, "run the SUMO GUI")
	f.StringVar(&flags.out, "out", ".", "directory to save data in")
	f.StringVar(&flags.png, "png", "", "save the last observation as a "+
		"PNG image")
	f.IntVar(&flags.frames, "frames", 0, "save a PNG of every n-th "+
		"observation (0 to disable)")
	f.IntVar(&flags.maxSteps, "max-steps", 0, "end episodes after this "+
		"many steps (0 for no limit)")
	return cmd
}

func newPolicy(flags baselineFlags) (agent.Policy, error) {
	switch flags.policy {
	case "fixed":
		return baseline.NewFixedCycle(flags.period, flags.initialPhase)
	case "phase":
		return baseline.NewPhaseDependent([2]int{flags.green, flags.red},
			flags.initialPhase)
	case "random":
		return baseline.NewRandom(flags.seed), nil
	}
	return nil, fmt.Errorf("newPolicy: no such controller %q", flags.policy)
}

func runBaseline(cmd *cobra.Command, flags baselineFlags) error {
	launcher := newLauncher()

	c := junction.DefaultConfig()
	if flags.config != "" {
		var err error
		if c, err = junction.LoadConfig(flags.config); err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
	} else {
		dir := dataDir(cmd)
		c.UseDataDir(dir)
		if err := junction.PrepareData(dir, launcher); err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
	}
	if cmd.Flags().Changed("seed") || flags.config == "" {
		c.Seed = flags.seed
	}
	if cmd.Flags().Changed("visualize") {
		c.Visualize = flags.visualize
	}

	policy, err := newPolicy(flags)
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}

	j, err := junction.NewWithLauncher(c, launcher, logger)
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	var env environment.Environment = j
	if flags.maxSteps > 0 {
		if env, err = wrappers.NewStepLimit(j, flags.maxSteps); err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
	}
	if err := os.MkdirAll(flags.out, 0o755); err != nil {
		return fmt.Errorf("baseline: %w", err)
	}

	exp := experiment.NewOnline(env, agent.NonLearning(policy),
		flags.episodes, logger)
	prefix := filepath.Join(flags.out, exp.ID().String()+"_")
	exp.Register(trackers.NewReturn(prefix + "returns.bin"))
	exp.Register(trackers.NewEpisodeLength(prefix + "lengths.bin"))
	exp.Register(trackers.NewInfoFinal(junction.InfoSwitches,
		prefix+"switches.bin"))
	exp.Register(trackers.NewInfoTotal(junction.InfoTeleports,
		prefix+"teleports.bin"))
	if flags.frames > 0 {
		dir := filepath.Join(flags.out, exp.ID().String()+"_frames")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		exp.RegisterCheckpointer(checkpointer.NewNStep(flags.frames,
			checkpointer.Frame(4),
			checkpointer.FilenameEnumerator(0, dir, "frame", ".png")))
	}
	exp.ShowProgress(os.Stdout)

	if err := exp.Run(); err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	fmt.Println()
	if err := exp.Save(); err != nil {
		return fmt.Errorf("baseline: %w", err)
	}

	if flags.png != "" {
		if err := gg.SavePNG(flags.png, j.Render(4)); err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
	}

	logger.Info("data saved", "prefix", prefix)
	return nil
}

func returnsCmd() *cobra.Command {
	var window int

	cmd := &cobra.Command{
		Use:   "returns <file>",
		Short: "Print per-episode data saved by an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := trackers.LoadData(args[0])
			if err != nil {
				return fmt.Errorf("returns: %w", err)
			}
			if len(data) == 0 {
				return fmt.Errorf("returns: %v holds no episodes", args[0])
			}

			avg := floatutils.MovingAverage(data, window)
			for i, v := range data {
				fmt.Printf("%5d  %12.4f  %12.4f\n", i+1, v, avg[i])
			}

			mean, std := stat.MeanStdDev(data, nil)
			fmt.Printf("episodes: %v  mean: %.4f  std: %.4f\n", len(data),
				mean, std)
			return nil
		},
	}

	cmd.Flags().IntVar(&window, "window", 10, "moving average window")
	return cmd
}
