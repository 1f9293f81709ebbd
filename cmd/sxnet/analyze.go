package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"sxnet/internal/codec"
	"sxnet/internal/config"
	"sxnet/internal/loader"
	"sxnet/internal/report"
	"sxnet/internal/service"
)

// result of one report; output is rendered up front so reports print in
// argument order regardless of which analysis finishes first.
type result struct {
	path     string
	report   string
	hostname string
	output   []byte
	err      error
}

// analyzeReports analyzes every report path with bounded concurrency and
// returns the process exit code.
func analyzeReports(ctx context.Context, svc *service.AnalysisService, cfg *config.Config, paths []string, save bool) int {
	results := make([]result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Analysis.Concurrency)
	for i, p := range paths {
		g.Go(func() error {
			results[i] = analyzeOne(ctx, svc, cfg, p, save)
			// One broken report must not stop the others
			return nil
		})
	}
	_ = g.Wait()

	code := 0
	names := outputNames(results)
	for i, r := range results {
		if r.err != nil {
			log.Printf("%s: %v", r.path, r.err)
			code = 1
			continue
		}
		if err := emit(cfg, r, names[i], i); err != nil {
			log.Printf("%s: %v", r.path, err)
			code = 1
		}
	}
	return code
}

func analyzeOne(ctx context.Context, svc *service.AnalysisService, cfg *config.Config, p string, save bool) result {
	r := result{path: p}

	archive, err := loader.Open(p, loader.WithPaths(cfg.Sources.Paths()...))
	if err != nil {
		r.err = err
		return r
	}

	if timeout := cfg.Analysis.Timeout.Duration(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	analysis, err := svc.Analyze(ctx, archive)
	if err != nil {
		r.err = err
		return r
	}
	r.report = analysis.Report
	r.hostname = analysis.Hostname
	if len(analysis.Missing) > 0 {
		log.Printf("%s: sources not present: %s", analysis.Hostname, strings.Join(analysis.Missing, ", "))
	}

	if save {
		snap, err := svc.Save(ctx, analysis)
		if err != nil {
			r.err = err
			return r
		}
		log.Printf("%s: saved snapshot %s", analysis.Hostname, snap.ID)
	}

	var buf bytes.Buffer
	if err := render(&buf, cfg.Output.Format, analysis); err != nil {
		r.err = err
		return r
	}
	r.output = buf.Bytes()
	return r
}

func render(w io.Writer, format string, analysis *service.Analysis) error {
	if format == config.FormatText {
		return report.Write(w, analysis.Hostname, analysis.Summary(), analysis.Graph)
	}
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	return c.Export(analysis.Fragment(), w)
}

// outputNames picks the output file name of every successful result: its
// hostname, or <hostname>-<report> when the run holds several captures of one
// host, numbered if that still collides.
func outputNames(results []result) []string {
	hosts := make(map[string]int)
	for _, r := range results {
		if r.err == nil {
			hosts[r.hostname]++
		}
	}

	names := make([]string, len(results))
	used := make(map[string]bool)
	for i, r := range results {
		if r.err != nil {
			continue
		}
		base := r.hostname
		if hosts[r.hostname] > 1 {
			base += "-" + r.report
		}
		base = strings.ReplaceAll(base, "/", "_")
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// emit writes a rendered result to stdout, or to <dir>/<name>.<ext>
func emit(cfg *config.Config, r result, name string, index int) error {
	if cfg.Output.Dir == "" {
		if index > 0 {
			fmt.Print(separator(cfg.Output.Format))
		}
		_, err := os.Stdout.Write(r.output)
		return err
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := outputPath(cfg.Output.Dir, name, cfg.Output.Format)
	if err := os.WriteFile(path, r.output, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Printf("%s: wrote %s", r.hostname, path)
	return nil
}

func separator(format string) string {
	switch format {
	case config.FormatYAML:
		return "---\n"
	case config.FormatJSON:
		return ""
	default:
		return "\n"
	}
}

func outputPath(dir, name, format string) string {
	ext := format
	if format == config.FormatText {
		ext = "txt"
	}
	return filepath.Join(dir, strings.ReplaceAll(name, "/", "_")+"."+ext)
}
