// Package main provides the bimgen binary. bimgen generates a parametric
// row-house model and writes it as an IFC4 STEP file.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "bimgen"
)

// errDiagnostics is returned when a run left requested elements out.
var errDiagnostics = errors.New("some elements could not be synthesized")

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := loadEnv(envFile()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errDiagnostics) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

// globals are the flags shared by every subcommand.
type globals struct {
	logLevel string
}

func rootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Parametric building generator",
		Long: `bimgen generates a parametric row house from a YAML configuration:
stories, walls, slabs, the roof, stairs, windows, doors and fixtures. The
model is classified and written as an IFC4 STEP file.

Openings, partitions and fixtures can be listed inline in the
configuration or declared by a Lisp layout script (layout_script).

Defaults for flags can be set with BIMGEN_* variables, also read from a
.env file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(g.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", envOr("BIMGEN_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")

	cmd.AddCommand(
		generateCmd(),
		validateCmd(),
		watchCmd(),
		initCmd(),
		inspectCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func setupLogging(level string) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)}))
	slog.SetDefault(logger)
}
