// cmd/opsbench/run.go
package opsbench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/opsbench/internal/bench"
	"github.com/mwiater/opsbench/internal/logging"
	"github.com/mwiater/opsbench/internal/progress"
	"github.com/mwiater/opsbench/internal/report"
	"github.com/mwiater/opsbench/internal/suite"
)

// runBenchmarks is replaced in tests.
var runBenchmarks = runSuite

// runSettings is everything the run command resolved from flags,
// environment and config file.
type runSettings struct {
	Files        []string
	Kernel       string
	Size         int
	Defaults     bench.Options
	Significance float64
	JSON         bool
	NoProgress   bool
	Debug        bool
	LogLevel     string
}

// runCmd implements 'run', which measures the workloads of one or more
// suite files, or a single built-in kernel named with --workload.
var runCmd = &cobra.Command{
	Use:   "run [suite.yaml ...]",
	Short: "Measure workloads from suite files or one built-in kernel",
	Long: `The 'run' command measures workloads one after another and prints one line per
workload:

  <name>: <ops> ops/sec (±<margin>, p=<significance>, n=<retained>[, o=<outliers>/<severe>])

Workloads come from YAML suite files given as arguments, or from a single
built-in kernel given with --workload (see 'opsbench list workloads').
Every workload is validated before the first measurement starts. Ctrl-C
stops the run before the next workload; a workload being measured always
finishes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadRunSettings(args)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runBenchmarks(ctx, s, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	defaults := bench.DefaultOptions()
	flags := runCmd.Flags()
	flags.Duration("duration", defaults.Duration, "time budget of the sample sweep per workload")
	flags.Int("samples", defaults.Samples, "number of timed samples per workload")
	flags.Int("sweep-width", defaults.SweepWidth, "number of invocation-count scales cycled through")
	flags.Int("warmup", defaults.WarmUp, "unmeasured invocations before calibration")
	flags.Float64("significance", bench.DefaultSignificance, "two-sided significance level of the error margin")
	flags.StringP("workload", "w", "", "built-in kernel to run instead of suite files")
	flags.Int("size", 0, "problem size for --workload (0 selects the kernel default)")
	flags.Bool("json", false, "write a JSON report instead of result lines")
	flags.Bool("no-progress", false, "disable the interactive progress display")
	flags.Bool("debug", false, "dump the resolved workloads before measuring")

	for _, name := range []string{"duration", "samples", "sweep-width", "warmup", "significance", "workload", "size", "json", "no-progress", "debug"} {
		viper.BindPFlag(name, flags.Lookup(name))
	}
}

// loadRunSettings reads the run configuration from viper.
func loadRunSettings(args []string) (runSettings, error) {
	s := runSettings{
		Files:  args,
		Kernel: viper.GetString("workload"),
		Size:   viper.GetInt("size"),
		Defaults: bench.Options{
			Duration:   viper.GetDuration("duration"),
			Samples:    viper.GetInt("samples"),
			SweepWidth: viper.GetInt("sweep-width"),
			WarmUp:     viper.GetInt("warmup"),
		},
		Significance: viper.GetFloat64("significance"),
		JSON:         viper.GetBool("json"),
		NoProgress:   viper.GetBool("no-progress"),
		Debug:        viper.GetBool("debug"),
		LogLevel:     viper.GetString("log-level"),
	}

	switch {
	case s.Kernel != "" && len(s.Files) > 0:
		return runSettings{}, errors.New("pass either suite files or --workload, not both")
	case s.Kernel == "" && len(s.Files) == 0:
		return runSettings{}, errors.New("nothing to run: pass suite files or --workload")
	case s.Size < 0:
		return runSettings{}, fmt.Errorf("invalid --size %d: must not be negative", s.Size)
	case !(s.Significance > 0 && s.Significance < 1):
		return runSettings{}, fmt.Errorf("invalid --significance %g: must be between 0 and 1", s.Significance)
	}
	return s, nil
}

func (s runSettings) provider() suite.Provider {
	if s.Kernel != "" {
		return suite.KernelProvider{Kernel: s.Kernel, Size: s.Size, Defaults: s.Defaults}
	}
	return suite.FileProvider{Paths: s.Files, Defaults: s.Defaults}
}

// workloadDump is what --debug prints for each workload.
type workloadDump struct {
	Name    string
	Options bench.Options
}

// runSuite resolves and validates the workloads, measures them in order and
// writes the results to stdout.
func runSuite(ctx context.Context, s runSettings, stdout, stderr io.Writer) error {
	logger, err := logging.New(s.LogLevel, stderr)
	if err != nil {
		return err
	}

	ws, err := s.provider().Workloads(ctx)
	if err != nil {
		return err
	}
	logger.Debug("workloads resolved", "count", len(ws))

	cfg := bench.DefaultConfig()
	cfg.Significance = s.Significance

	if s.Debug {
		dump := make([]workloadDump, len(ws))
		for i, w := range ws {
			dump[i] = workloadDump{Name: w.Name, Options: w.Options}
		}
		pp.Fprintln(stderr, cfg)
		pp.Fprintln(stderr, dump)
	}

	renderer := newRenderer(s, stdout, len(ws))
	runner := bench.NewRunner(cfg, bench.WithLogger(logger))

	renderer.Start()
	results, runErr := runner.RunAll(ctx, ws, renderer)
	if err := renderer.Stop(); err != nil {
		logger.Warn("progress display failed", "error", err)
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("run interrupted after %d of %d workloads: %w", len(results), len(ws), runErr)
		}
		return runErr
	}

	if s.JSON {
		return report.WriteJSON(stdout, report.Build(cfg, results, time.Now()))
	}
	return nil
}

// newRenderer shows interactive progress only when stdout is a terminal and
// text output was asked for.
func newRenderer(s runSettings, stdout io.Writer, total int) progress.Renderer {
	if s.JSON {
		return progress.NewPlainRenderer(stdout, nil)
	}
	f, ok := stdout.(*os.File)
	if !ok {
		return progress.NewPlainRenderer(stdout, report.Line)
	}
	return progress.New(f, total, !s.NoProgress, report.Formatter(progress.IsTerminal(f)))
}
