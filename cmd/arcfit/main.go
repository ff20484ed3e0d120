package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/arcfit/config"
	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
)

var (
	configFile string
	traceLevel string
	settings   config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "arcfit",
	Short: "Fit node chains to circles and arcs",
	Long: `arcfit reshapes chains of 3D nodes onto circular arcs.

It reads a scene of nodes and connections from a YAML file, runs one editing
operation on the selected nodes and prints the resulting scene. Scene files
are never written back.`,
	Version:           "0.1.0",
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "settings file (YAML)")
	rootCmd.PersistentFlags().StringVar(&traceLevel, "trace", "error", "trace level: debug, info or error")
}

var traceKeys = []string{"arcfit", "arcfit.space", "arcfit.circle", "arcfit.chain",
	"arcfit.edit", "arcfit.graph"}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if settings, err = config.Load(configFile); err != nil {
		return err
	}
	level := strings.ToLower(traceLevel)
	if level != "debug" && level != "info" && level != "error" {
		return fmt.Errorf("unknown trace level %q", traceLevel)
	}
	for _, key := range traceKeys {
		t := tracing.Select(key)
		switch level {
		case "debug":
			t.SetTraceLevel(tracing.LevelDebug)
		case "info":
			t.SetTraceLevel(tracing.LevelInfo)
		default:
			t.SetTraceLevel(tracing.LevelError)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
