package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wdm0006/catfill/pkg/report"
	"github.com/wdm0006/catfill/pkg/table"
	imp "github.com/wdm0006/catfill/pkg/transform/impute"
)

const reportTopK = 3

func newImputeCmd(a *app) *cobra.Command {
	var reportPath string
	cmd := &cobra.Command{
		Use:   "impute <job-file>",
		Short: "Fit the imputer on the reference table and fill the input",
		Long: `Runs the steps of a job file (JSON, YAML or TOML) over the input table.
impute_contingency steps are fitted on the reference table, or on the input
when no reference is given, then applied to the input. With --chunk-size the
apply phase streams the input in chunks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := loadJob(args[0])
			if err != nil {
				return err
			}
			if reportPath != "" {
				job.Report = reportPath
			}
			return a.runImpute(cmd.Context(), job, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&reportPath, "report", "", "write a before/after summary to this path (- for stderr)")
	return cmd
}

func (a *app) runImpute(ctx context.Context, job *Job, stderr io.Writer) error {
	start := time.Now()
	refSrc := job.Input
	if job.Reference != nil {
		refSrc = *job.Reference
	}
	ref, err := readFrame(refSrc)
	if err != nil {
		return fmt.Errorf("read reference: %w", err)
	}
	p, fitted, err := buildPipeline(ctx, job.Steps, ref, a.cfg.Workers, a.log)
	if err != nil {
		return err
	}
	var assocs []imp.AssociationResult
	for _, st := range fitted {
		assocs = append(assocs, st.Associations())
	}
	a.log.Info("fit finished", "reference", refSrc.Path, "rows", ref.Rows(), "steps", p.Steps(), "elapsed", time.Since(start))

	var before, after *report.Collector
	var rows int
	if a.cfg.ChunkSize > 0 {
		src, c, err := openStream(job.Input, a.cfg.ChunkSize)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer func() { _ = c.Close() }()
		sink, err := openSink(job.Output, src.Schema())
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		before = report.NewCollector(src.Schema(), reportTopK)
		after = report.NewCollector(src.Schema(), reportTopK)
		rows, err = table.RunStream(ctx, p, tapSource{src, before}, tapSink{sink, after})
		if err != nil {
			return err
		}
	} else {
		in := ref
		if job.Reference != nil {
			if in, err = readFrame(job.Input); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
		}
		out, err := p.Run(ctx, in)
		if err != nil {
			return err
		}
		if err := writeFrame(job.Output, out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		before = report.NewCollector(in.Schema(), reportTopK)
		after = report.NewCollector(out.Schema(), reportTopK)
		before.ConsumeFrame(in)
		after.ConsumeFrame(out)
		rows = out.Rows()
	}

	afterProfile := after.Profile()
	rep := report.New(before.Profile(), &afterProfile, assocs...)
	if job.Reference != nil {
		seen := report.NewCollector(ref.Schema(), reportTopK)
		seen.ConsumeFrame(ref)
		rep.Alignment = report.Align(seen, before)
		for _, al := range rep.Alignment {
			if len(al.OnlyInput) > 0 {
				a.log.Warn("labels missing from reference", "column", al.Column, "labels", al.OnlyInput)
			}
		}
	}
	filled := 0
	for _, n := range rep.Filled() {
		filled += n
	}
	a.log.Info("impute finished", "output", job.Output.Path, "rows", rows, "filled", filled, "elapsed", time.Since(start))
	if job.Report == "" {
		return nil
	}
	return writeReport(job.Report, rep, stderr)
}

func writeReport(path string, rep *report.Report, stderr io.Writer) error {
	w := stderr
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return rep.WriteJSON(w)
	}
	return rep.WriteText(w)
}

// tapSource profiles chunks as they are read.
type tapSource struct {
	table.ChunkSource
	c *report.Collector
}

func (t tapSource) Next() (*table.Frame, error) {
	f, err := t.ChunkSource.Next()
	if err == nil {
		t.c.ConsumeFrame(f)
	}
	return f, err
}

// tapSink profiles chunks before they are written.
type tapSink struct {
	table.ChunkSink
	c *report.Collector
}

func (t tapSink) Write(f *table.Frame) error {
	t.c.ConsumeFrame(f)
	return t.ChunkSink.Write(f)
}
