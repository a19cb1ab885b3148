package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/go-drift/filament/pkg/config"
	"github.com/go-drift/filament/pkg/errors"
	"github.com/go-drift/filament/pkg/metrics"
	"github.com/go-drift/filament/pkg/reactive"
	"github.com/go-drift/filament/showcase"
)

type renderOptions struct {
	steps      int
	configPath string
	metrics    bool
}

type renderResult struct {
	Demo      string `json:"demo"`
	StepsRun  int    `json:"steps_run"`
	Remaining int    `json:"remaining"`
	Nodes     int    `json:"nodes"`
	HTML      string `json:"html"`
	Metrics   string `json:"metrics,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <demo>",
		Short: "Mount a demo and print its markup",
		Long: `Mount a showcase demo into an in-memory document, run some of its
scripted steps, and print the resulting HTML.

Runtime settings are read from --config, or from filament.yaml in the
working directory when present.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.steps, "steps", "s", 0, "number of scripted steps to run (-1 for all)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a filament.yaml file")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "print runtime metrics in Prometheus text format")

	return cmd
}

func runRender(rootOpts *RootOptions, opts *renderOptions, name string, cmd *cobra.Command) error {
	f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	d, ok := showcase.Lookup(name)
	if !ok {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("unknown demo %q (available: %s)", name, strings.Join(showcase.Names(), ", ")))
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	handler := cfg.ErrorHandler(cmd.ErrOrStderr())
	handler.Verbose = handler.Verbose || rootOpts.Verbose
	errors.SetHandler(handler)
	defer errors.SetHandler(nil)

	sopts := []showcase.Option{showcase.WithRuntimeOptions(cfg.RuntimeOptions()...)}
	var reg *prometheus.Registry
	if opts.metrics {
		reg = prometheus.NewRegistry()
		m := metrics.NewCollector(reg)
		sopts = append(sopts, showcase.WithRuntimeOptions(reactive.WithObserver(m)), showcase.WithObserver(m))
	}

	s, err := showcase.Start(d, sopts...)
	if err != nil {
		// Uncaptured mount failures have already been reported through the
		// handler; the rest of the tree is still usable.
		f.logf("mount %s: %v", d.Name, err)
	}
	defer s.Close()
	f.logf("mounted %s with %d nodes", d.Name, s.Root().NodeCount())

	before := s.Remaining()
	if err := s.RunSteps(opts.steps); err != nil {
		return WrapExitError(ExitFailure, "render failed", err)
	}

	result := renderResult{
		Demo:      d.Name,
		StepsRun:  before - s.Remaining(),
		Remaining: s.Remaining(),
		Nodes:     s.Root().NodeCount(),
		HTML:      s.HTML(),
	}
	f.logf("ran %d step(s), %d remaining", result.StepsRun, result.Remaining)

	if reg != nil {
		text, err := gatherText(reg)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to gather metrics", err)
		}
		result.Metrics = text
	}

	return f.success(result, func(w io.Writer) error {
		if _, err := fmt.Fprintln(w, result.HTML); err != nil {
			return err
		}
		if result.Metrics != "" {
			_, err := fmt.Fprint(w, "\n", result.Metrics)
			return err
		}
		return nil
	})
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadOptional(".")
	}
	return config.Load(path)
}

// gatherText renders every metric family in reg in the Prometheus text
// exposition format.
func gatherText(reg prometheus.Gatherer) (string, error) {
	families, err := reg.Gather()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&b, mf); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
