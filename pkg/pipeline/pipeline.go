// Package pipeline runs a complete generation: configuration, layout
// script, spatial hierarchy, geometry, classification, relationships and
// the IFC file. Each run builds a fresh model.
package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/chazu/bimgen/pkg/classify"
	"github.com/chazu/bimgen/pkg/config"
	"github.com/chazu/bimgen/pkg/engine"
	"github.com/chazu/bimgen/pkg/geometry"
	"github.com/chazu/bimgen/pkg/hierarchy"
	"github.com/chazu/bimgen/pkg/ifc"
	"github.com/chazu/bimgen/pkg/kernel"
	"github.com/chazu/bimgen/pkg/kernel/sdfx"
	"github.com/chazu/bimgen/pkg/model"
	"github.com/chazu/bimgen/pkg/relate"
)

// Options controls a run.
type Options struct {
	// Output is the IFC file to write. When empty the model is built and
	// checked but nothing is written.
	Output string
	// MetricsTextfile, when set, receives the run metrics in the
	// Prometheus text format.
	MetricsTextfile string
	// BaseDir resolves a relative layout script path.
	BaseDir string
	// Version is recorded as the authoring application version.
	Version string

	Logger *slog.Logger
	Kernel kernel.Kernel
}

// RunReport summarizes a run.
type RunReport struct {
	// Success is true when every requested element was synthesized.
	Success     bool
	Diagnostics []*geometry.GeometryError
	// Elements is the number of synthesized building elements.
	Elements int
	ByKind   map[model.Kind]int
	// Entities counts every entity in the model, spatial ones included.
	Entities int
	// Relations counts relationship edges; the file groups them into
	// fewer relationship instances.
	Relations int
	Output    string
	Duration  time.Duration
}

// ScriptError reports a layout script that failed to evaluate.
type ScriptError struct {
	Path   string
	Errors []engine.EvalError
}

func (e *ScriptError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("layout script %s failed", e.Path)
	}
	msg := fmt.Sprintf("layout script %s: %s", e.Path, e.Errors[0].Error())
	if n := len(e.Errors) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// RunFile loads the configuration at path and runs it. A relative layout
// script is resolved against the configuration's directory.
func RunFile(path string, opts Options) (*RunReport, error) {
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(path)
	}
	return Run(cfg, opts)
}

// Run executes every stage for cfg. Geometry errors do not stop the run;
// they are reported in RunReport.Diagnostics and the failed elements are
// left out of the file. Configuration, script, integrity and
// serialization errors are returned.
func Run(cfg *config.Config, opts Options) (*RunReport, error) {
	start := time.Now()
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	metrics := NewMetrics()

	report, err := run(cfg, opts, log)
	if report == nil {
		report = &RunReport{}
	}
	report.Duration = time.Since(start)
	metrics.Observe(report, err)

	if opts.MetricsTextfile != "" {
		if werr := metrics.WriteTextfile(opts.MetricsTextfile); werr != nil {
			log.Warn("Failed to write metrics", "path", opts.MetricsTextfile, "error", werr)
		}
	}
	if err != nil {
		return report, err
	}

	log.Info("Generation finished",
		"success", report.Success,
		"elements", report.Elements,
		"diagnostics", len(report.Diagnostics),
		"duration", report.Duration)
	return report, nil
}

func run(cfg *config.Config, opts Options, log *slog.Logger) (*RunReport, error) {
	// The script's layout goes into a copy so cfg can be run again.
	c := *cfg
	if err := LoadLayout(&c, opts.BaseDir); err != nil {
		return nil, err
	}

	p, err := config.Resolve(&c)
	if err != nil {
		return nil, err
	}
	log.Debug("Parameters resolved",
		"project", p.Project.Name,
		"levels", p.Levels(),
		"openings", len(p.Openings),
		"partitions", len(p.Partitions),
		"fixtures", len(p.Fixtures))

	b := model.NewBuilder()
	spine, err := hierarchy.Build(b, p)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: %w", err)
	}
	log.Info("Spatial hierarchy built", "stories", len(spine.Stories), "entities", b.Len())

	k := opts.Kernel
	if k == nil {
		k = sdfx.New()
	}
	synth := geometry.Synthesize(k, b, spine, p)
	for _, d := range synth.Diagnostics {
		log.Warn("Element skipped",
			"code", d.Code,
			"kind", d.Kind.String(),
			"element", d.Element,
			"level", d.Level,
			"message", d.Message)
	}
	log.Info("Geometry synthesized", kindAttrs(synth.Elements)...)

	m := b.Build()
	n, err := classify.Classify(m)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	log.Info("Entities classified", "count", n)

	g, err := relate.Build(m)
	if err != nil {
		return nil, err
	}
	log.Info("Relationships built",
		"edges", len(g.Edges),
		"aggregates", g.Count(relate.Aggregates),
		"contained", g.Count(relate.ContainedInSpatialStructure),
		"fills", g.Count(relate.FillsOpening),
		"connects", g.Count(relate.ConnectsElements))

	report := &RunReport{
		Success:     synth.Success(),
		Diagnostics: synth.Diagnostics,
		Elements:    synth.Total(),
		ByKind:      synth.Elements,
		Entities:    m.Len(),
		Relations:   len(g.Edges),
	}

	if opts.Output == "" {
		return report, nil
	}
	err = ifc.WriteFile(opts.Output, m, g, ifc.Options{
		Author:       p.Project.Author,
		Organization: p.Project.Organization,
		Timestamp:    p.Timestamp,
		Version:      opts.Version,
	})
	if err != nil {
		return report, err
	}
	report.Output = opts.Output
	log.Info("IFC file written", "path", opts.Output, "entities", m.Len())
	return report, nil
}

// LoadLayout evaluates cfg.LayoutScript, if any, into cfg.Layout.
func LoadLayout(cfg *config.Config, baseDir string) error {
	if cfg.LayoutScript == "" {
		return nil
	}
	if cfg.Layout != nil {
		return &config.ConfigurationError{
			Field:   "layout_script",
			Message: "cannot be combined with an inline layout",
		}
	}
	path := cfg.LayoutScript
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read layout script: %w", err)
	}
	layout, evalErrs, err := engine.NewEngine().Evaluate(string(src))
	if err != nil {
		return fmt.Errorf("layout script %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		return &ScriptError{Path: path, Errors: evalErrs}
	}
	cfg.Layout = layout
	return nil
}

func kindAttrs(counts map[model.Kind]int) []any {
	kinds := make([]model.Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	attrs := make([]any, 0, 2*len(kinds))
	for _, k := range kinds {
		attrs = append(attrs, k.String(), counts[k])
	}
	return attrs
}
