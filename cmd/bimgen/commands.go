package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/bimgen/pkg/config"
	"github.com/chazu/bimgen/pkg/ifc"
	"github.com/chazu/bimgen/pkg/model"
	"github.com/chazu/bimgen/pkg/pipeline"
)

// runFlags are shared by generate, validate and watch.
type runFlags struct {
	config  string
	output  string
	metrics string
}

func (f *runFlags) register(cmd *cobra.Command, withOutput bool) {
	cmd.Flags().StringVarP(&f.config, "config", "c", envOr("BIMGEN_CONFIG", ""),
		"Config file path (YAML); the built-in brownstone when empty")
	cmd.Flags().StringVar(&f.metrics, "metrics-textfile", envOr("BIMGEN_METRICS_TEXTFILE", ""),
		"Write run metrics to this file in the Prometheus text format")
	if withOutput {
		cmd.Flags().StringVarP(&f.output, "output", "o", envOr("BIMGEN_OUTPUT", ""),
			"IFC output path; defaults to the config name with an .ifc extension")
	}
}

// outputPath returns where generate writes the IFC file.
func (f *runFlags) outputPath() string {
	if f.output != "" {
		return f.output
	}
	if f.config == "" {
		return "brownstone.ifc"
	}
	return strings.TrimSuffix(f.config, filepath.Ext(f.config)) + ".ifc"
}

func (f *runFlags) run(output string) (*pipeline.RunReport, error) {
	opts := pipeline.Options{
		Output:          output,
		MetricsTextfile: f.metrics,
		Version:         Version,
		Logger:          slog.Default(),
	}
	if f.config == "" {
		return pipeline.Run(config.DefaultConfig(), opts)
	}
	return pipeline.RunFile(f.config, opts)
}

func generateCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the building and write the IFC file",
		Long: `Generate builds the model described by the configuration and writes it
as an IFC4 STEP file. Elements that cannot be synthesized are reported and
left out; the command then exits with status 3.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := f.run(f.outputPath())
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
	f.register(cmd, true)
	return cmd
}

func validateCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Build the model without writing a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := f.run("")
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
	f.register(cmd, false)
	return cmd
}

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default brownstone configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "bimgen.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.ifc>",
		Short: "Summarize an IFC file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			parsed, err := ifc.Parse(f)
			if err != nil {
				return err
			}
			s, err := ifc.Summarize(parsed)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), parsed.Schema, s)
			return nil
		},
	}
}

// printReport writes a run report and returns errDiagnostics when
// elements were left out.
func printReport(w io.Writer, r *pipeline.RunReport) error {
	if r.Output != "" {
		fmt.Fprintf(w, "wrote %s\n", r.Output)
	}
	fmt.Fprintf(w, "elements: %d\n", r.Elements)
	for k := model.KindWall; k <= model.KindFixture; k++ {
		if n := r.ByKind[k]; n > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", k, n)
		}
	}
	if r.Success {
		return nil
	}
	fmt.Fprintf(w, "diagnostics: %d\n", len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		fmt.Fprintf(w, "  %v\n", d)
	}
	return fmt.Errorf("%d diagnostics: %w", len(r.Diagnostics), errDiagnostics)
}

func printSummary(w io.Writer, schema string, s *ifc.Summary) {
	fmt.Fprintf(w, "schema: %s\n", schema)
	fmt.Fprintf(w, "stories: %d\n", len(s.Stories))
	for _, st := range s.Stories {
		fmt.Fprintf(w, "  %-16s %8.3f\n", st.Name, st.Elevation)
	}
	fmt.Fprintf(w, "elements: %d\n", s.Elements)
	types := make([]string, 0, len(s.Types))
	for t := range s.Types {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-32s %d\n", t, s.Types[t])
	}
	fmt.Fprintf(w, "relationships: %d\n", s.Relations)
}
