// cmd/opsbench/root.go
package opsbench

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cfgFile is an optional config file supplying the same keys as the flags.
var cfgFile string

// rootCmd is the base Cobra command for the opsbench application.
// All subcommands are attached to this root to form the complete CLI.
var rootCmd = &cobra.Command{
	Use:   "opsbench",
	Short: "Measure workload throughput in operations per second",
	Long: `opsbench measures how many times per second a workload runs. It calibrates an
invocation count, sweeps samples across several scales, discards outliers and
fits a regression line whose slope is the cost of one invocation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root Cobra command and all registered subcommands.
// It prints any returned error to stderr and exits the process with a
// non-zero status code on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file supplying flag values (any format viper reads)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn or error")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetEnvPrefix("OPSBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// initConfig reads the config file named by --config, if any.
func initConfig() error {
	if cfgFile == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	return nil
}
