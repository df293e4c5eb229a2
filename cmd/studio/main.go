// Command studio composes layered designs from the command line and
// previews them in a window.
//
// # Basic Usage
//
// List frame presets:
//
//	studio presets
//
// Compose a design and export it at 2x:
//
//	studio compose --frame "Instagram Post" --image photo.jpg --sepia --out .
//
// Preview the same composition:
//
//	studio preview --frame "Instagram Post" --image photo.jpg
//
// # Environment Variables
//
//   - STUDIO_CONFIG: path to the YAML configuration (default: ~/.studio/config.yaml)
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/studio"
	"github.com/spf13/cobra"
)

// Build information, set with -ldflags.
var (
	version = "dev"
	commit  = "none"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cfg := &Config{}

	rootCmd := &cobra.Command{
		Use:          "studio",
		Short:        "Layered design editor",
		Version:      fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := setup(flags)
			if err != nil {
				return err
			}
			*cfg = loaded
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to YAML config (or set STUDIO_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		buildPresetsCmd(),
		buildComposeCmd(cfg),
		buildPreviewCmd(cfg),
	)
	return rootCmd
}

// setup loads the configuration and installs the process logger.
func setup(flags *rootFlags) (Config, error) {
	path, required := resolveConfigPath(flags.configPath)
	cfg, err := loadConfig(path)
	if err != nil && (required || !errors.Is(err, errConfigNotFound)) {
		return Config{}, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	lvl, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return Config{}, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	studio.SetLogger(logger)
	return cfg, nil
}

func buildPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List frame presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, p := range studio.Presets() {
				if _, err := fmt.Fprintf(out, "%-20s %5d x %-5d\n", p.Name, p.Width, p.Height); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
