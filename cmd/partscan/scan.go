package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chazu/partscan/pkg/build"
	"github.com/chazu/partscan/pkg/config"
	"github.com/chazu/partscan/pkg/engine"
	"github.com/chazu/partscan/pkg/features"
	"github.com/chazu/partscan/pkg/kernel"
	"github.com/chazu/partscan/pkg/kernel/prism"
	"github.com/chazu/partscan/pkg/kernel/sdfx"
	"github.com/chazu/partscan/pkg/logging"
	"github.com/chazu/partscan/pkg/pipeline"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	scanKernel  string
	scanWorkers int
	scanJSON    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan FILE...",
	Short: "Detect features and DFM issues in part scripts",
	Long: `Evaluate each part script, build every part it defines with the selected
geometry kernel and report the detected holes, pockets and DFM issues.

Parts are processed in parallel. The command exits non-zero when any part
failed to evaluate, build or pass the machine envelope check.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if scanKernel != "" {
			cfg.Kernel.Name = scanKernel
		}
		if scanWorkers > 0 {
			cfg.Pipeline.Workers = scanWorkers
		}
		s, err := newScanner(cfg, logger)
		if err != nil {
			return err
		}

		reports := s.scan(cmd.Context(), args)
		out := cmd.OutOrStdout()
		if scanJSON {
			if err := writeJSON(out, reports); err != nil {
				return err
			}
		} else {
			writeReport(out, reports)
		}

		if failed := countFailed(reports); failed > 0 {
			return fmt.Errorf("%d of %d parts failed", failed, len(reports))
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanKernel, "kernel", "k", "", "geometry kernel: prism or sdfx (default from config)")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0, "parts processed in parallel (default from config)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(scanCmd)
}

// partReport is the pipeline result of one part plus the script it came from.
type partReport struct {
	File string `json:"file"`
	pipeline.Result
}

// job is one built part waiting for the pipeline.
type job struct {
	file  string
	name  string
	solid kernel.Solid
}

type scanner struct {
	kernel      kernel.Kernel
	evalTimeout time.Duration
	processor   *pipeline.Processor
	workers     int
	log         *slog.Logger
}

func newKernel(c config.Kernel) (kernel.Kernel, error) {
	switch c.Name {
	case "", "prism":
		return prism.New(), nil
	case "sdfx":
		return sdfx.New(sdfx.WithVolumeCells(c.VolumeCells)), nil
	default:
		return nil, fmt.Errorf("unknown kernel %q (want prism or sdfx)", c.Name)
	}
}

func newScanner(c config.Config, log *slog.Logger) (*scanner, error) {
	k, err := newKernel(c.Kernel)
	if err != nil {
		return nil, err
	}
	log = logging.OrDiscard(log)
	detector := features.New(
		features.WithCalibration(c.Calibration),
		features.WithLogger(log),
	)
	return &scanner{
		kernel:      k,
		evalTimeout: c.Pipeline.EvalTimeout,
		processor: pipeline.New(
			pipeline.WithDetector(detector),
			pipeline.WithLimits(c.Limits),
			pipeline.WithTimeout(c.Pipeline.Timeout),
			pipeline.WithLogger(log),
		),
		workers: max(c.Pipeline.Workers, 1),
		log:     log,
	}, nil
}

// scan loads every file, then runs the pipeline over all parts. Scripts that
// failed to load come first; parts follow in file and declaration order.
func (s *scanner) scan(ctx context.Context, files []string) []partReport {
	loaded := make([][]job, len(files))
	failures := make([][]partReport, len(files))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, file := range files {
		g.Go(func() error {
			src, err := os.ReadFile(file)
			if err != nil {
				failures[i] = []partReport{failedReport(file, fmt.Sprintf("Failed to read part script: %v", err))}
				return nil
			}
			loaded[i], failures[i] = s.load(ctx, file, string(src))
			return nil
		})
	}
	_ = g.Wait()

	var jobs []job
	var reports []partReport
	for i := range files {
		reports = append(reports, failures[i]...)
		jobs = append(jobs, loaded[i]...)
	}

	results := make([]partReport, len(jobs))
	g = errgroup.Group{}
	g.SetLimit(s.workers)
	for i, j := range jobs {
		g.Go(func() error {
			results[i] = partReport{File: j.file, Result: s.processor.Process(ctx, j.name, j.solid)}
			return nil
		})
	}
	_ = g.Wait()

	return append(reports, results...)
}

// load evaluates one script and builds its parts. Evaluation and build
// failures come back as failed reports.
func (s *scanner) load(ctx context.Context, file, src string) ([]job, []partReport) {
	log := s.log.With("file", file)

	g, evalErrs, err := engine.NewEngine(engine.WithTimeout(s.evalTimeout)).Evaluate(ctx, src)
	if err != nil {
		log.Error("evaluation failed", "error", err)
		return nil, []partReport{failedReport(file, fmt.Sprintf("Failed to evaluate part script: %v", err))}
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		log.Error("evaluation errors", "count", len(evalErrs))
		return nil, []partReport{failedReport(file, msgs...)}
	}

	parts, err := build.Solids(g, s.kernel)
	if err != nil {
		log.Error("build failed", "error", err)
		return nil, []partReport{failedReport(file, fmt.Sprintf("Failed to build parts: %v", err))}
	}
	if len(parts) == 0 {
		log.Warn("script defines no parts")
	}

	jobs := make([]job, 0, len(parts))
	for _, p := range parts {
		jobs = append(jobs, job{file: file, name: p.Name, solid: p.Solid})
	}
	return jobs, nil
}

func failedReport(file string, msgs ...string) partReport {
	return partReport{
		File:   file,
		Result: pipeline.Result{Name: filepath.Base(file), Errors: msgs},
	}
}

func countFailed(reports []partReport) int {
	n := 0
	for _, r := range reports {
		if !r.OK() {
			n++
		}
	}
	return n
}
