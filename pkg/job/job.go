// Package job runs the weather reshaping job: load every input, unpivot the
// measurements, then write, profile and display the results.
package job

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/wdm0006/tidyweather/pkg/config"
	"github.com/wdm0006/tidyweather/pkg/display"
	"github.com/wdm0006/tidyweather/pkg/io/csvio"
	iox "github.com/wdm0006/tidyweather/pkg/io/ioutils"
	"github.com/wdm0006/tidyweather/pkg/logger"
	"github.com/wdm0006/tidyweather/pkg/profile"
	"github.com/wdm0006/tidyweather/pkg/tidy"
)

// Result describes one processed dataset.
type Result struct {
	Dataset Dataset
	Schema  tidy.Schema
	Rows    int
	// Frame is the full result in batch mode and nil when streaming.
	Frame   *tidy.Frame
	Output  string
	Profile *profile.Collector
}

type Job struct {
	datasets []Dataset
	opt      Options
	log      *slog.Logger
}

// New validates opt and binds it to the inputs. A nil logger discards
// everything.
func New(inputs config.Inputs, opt Options, log *slog.Logger) (*Job, error) {
	opt, err := opt.Normalize()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Job{datasets: Datasets(inputs), opt: opt, log: log}, nil
}

func (j *Job) Options() Options { return j.opt }

// plan is what preflight learns about a dataset before any data is read.
type plan struct {
	Dataset
	out  tidy.Schema
	spec *tidy.UnpivotSpec
}

func (p plan) pipeline(log *slog.Logger) *tidy.Pipeline {
	pl := tidy.NewPipeline()
	if p.spec != nil {
		pl.Add(&tidy.Unpivot{
			Keep:            p.spec.Keep,
			DimensionColumn: p.spec.DimensionColumn,
			ValueColumn:     p.spec.ValueColumn,
			Logger:          log,
		})
	}
	return pl
}

// Run executes the job and writes the display and profile reports to out.
// Every input is checked before anything is emitted; in batch mode nothing
// is emitted until every dataset is loaded and reshaped.
func (j *Job) Run(ctx context.Context, out io.Writer) ([]Result, error) {
	plans, err := j.preflight()
	if err != nil {
		return nil, err
	}
	var results []Result
	if j.opt.ChunkSize > 0 {
		results, err = j.runStream(ctx, plans, out)
	} else {
		results, err = j.runBatch(ctx, plans, out)
	}
	if err != nil {
		return nil, err
	}
	if err := j.report(out, results); err != nil {
		return nil, err
	}
	return results, nil
}

func (j *Job) preflight() ([]plan, error) {
	plans := make([]plan, 0, len(j.datasets))
	for _, ds := range j.datasets {
		log := j.log.With("dataset", ds.Name, "path", ds.Path)
		if err := iox.CheckExists(ds.Path); err != nil {
			log.Error("file not found")
			return nil, fmt.Errorf("load %s: %w", ds.Name, err)
		}
		r, err := csvio.Open(ds.Path, csvio.LoaderOptions())
		if err != nil {
			log.Error("cannot open input", "err", err)
			return nil, fmt.Errorf("load %s: %w", ds.Name, err)
		}
		schema, err := r.ReadHeader()
		_ = r.Close()
		if err != nil {
			log.Error("cannot read header", "err", err)
			return nil, fmt.Errorf("load %s: %w", ds.Name, err)
		}
		p := plan{Dataset: ds, out: schema}
		if !ds.Wide() {
			spec, err := tidy.PlanUnpivot(schema, j.opt.KeepColumns, j.opt.DimensionColumn, ds.Measure)
			if err != nil {
				log.Error("cannot plan unpivot", "err", err)
				return nil, fmt.Errorf("unpivot %s: %w", ds.Name, err)
			}
			log.Info("unpivot",
				"columns_to_keep", spec.Keep,
				"dimension_column_name", spec.DimensionColumn,
				"value_column_name", spec.ValueColumn,
				"columns", spec.Labels)
			p.spec = &spec
			p.out = spec.OutputSchema()
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (j *Job) runBatch(ctx context.Context, plans []plan, out io.Writer) ([]Result, error) {
	results := make([]Result, 0, len(plans))
	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log := j.log.With("dataset", p.Name)
		r, err := csvio.Open(p.Path, csvio.LoaderOptions())
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p.Name, err)
		}
		f, err := r.ReadAll()
		if w := r.Warnings(); w != "" {
			log.Warn("ragged records repaired", "warnings", w)
		}
		_ = r.Close()
		if err != nil {
			log.Error("cannot load", "err", err)
			return nil, fmt.Errorf("load %s: %w", p.Name, err)
		}
		log.Debug("loaded", "rows", f.Rows(), "columns", f.Names())
		res, err := p.pipeline(log).Run(ctx, f)
		if err != nil {
			log.Error("cannot reshape", "err", err)
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		results = append(results, Result{Dataset: p.Dataset, Schema: res.Schema(), Rows: res.Rows(), Frame: res})
	}

	// everything loaded; only now touch outputs
	var st staging
	defer st.discard()
	for i := range results {
		res := &results[i]
		if j.opt.OutputDir != "" {
			tmp, final, err := j.stage(&st, res.Dataset.Name)
			if err != nil {
				return nil, fmt.Errorf("write %s: %w", res.Dataset.Name, err)
			}
			if err := j.writeAll(tmp, res.Frame); err != nil {
				return nil, fmt.Errorf("write %s: %w", res.Dataset.Name, err)
			}
			res.Output = final
		}
		if j.opt.Profile != "" {
			res.Profile = profile.NewCollector(res.Schema, j.opt.TopK)
			res.Profile.ConsumeFrame(res.Frame)
		}
	}
	if err := st.commit(); err != nil {
		return nil, fmt.Errorf("write outputs: %w", err)
	}
	j.logOutputs(results)
	if j.opt.ShowRows > 0 {
		for _, res := range results {
			if res.Dataset.Name == j.opt.ShowDataset {
				if err := display.Show(out, res.Frame, j.opt.ShowRows); err != nil {
					return nil, err
				}
			}
		}
	}
	return results, nil
}

func (j *Job) runStream(ctx context.Context, plans []plan, out io.Writer) ([]Result, error) {
	results := make([]Result, 0, len(plans))
	var preview *display.Preview
	// files are staged so a failure in any dataset leaves none behind
	var st staging
	defer st.discard()
	for _, p := range plans {
		log := j.log.With("dataset", p.Name)
		src, err := csvio.NewStreamReader(p.Path, csvio.LoaderOptions(), j.opt.ChunkSize)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p.Name, err)
		}
		res := Result{Dataset: p.Dataset, Schema: p.out}
		counter := &rowCounter{}
		sinks := tidy.MultiSink{counter}
		if j.opt.OutputDir != "" {
			tmp, final, err := j.stage(&st, p.Name)
			if err != nil {
				_ = src.Close()
				return nil, fmt.Errorf("write %s: %w", p.Name, err)
			}
			sink, err := j.openSink(tmp, p.out)
			if err != nil {
				_ = src.Close()
				return nil, fmt.Errorf("write %s: %w", p.Name, err)
			}
			sinks = append(sinks, sink)
			res.Output = final
		}
		if j.opt.Profile != "" {
			res.Profile = profile.NewCollector(p.out, j.opt.TopK)
			sinks = append(sinks, res.Profile)
		}
		if p.Name == j.opt.ShowDataset && j.opt.ShowRows > 0 {
			preview, err = display.NewPreview(p.out, j.opt.ShowRows)
			if err != nil {
				_ = src.Close()
				return nil, err
			}
			sinks = append(sinks, preview)
		}
		err = tidy.RunStream(ctx, p.pipeline(log), src, sinks)
		if w := src.Warnings(); w != "" {
			log.Warn("ragged records repaired", "warnings", w)
		}
		_ = src.Close()
		if err != nil {
			log.Error("stream failed", "err", err, "rows_written", counter.rows)
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		res.Rows = counter.rows
		results = append(results, res)
	}
	if err := st.commit(); err != nil {
		return nil, fmt.Errorf("write outputs: %w", err)
	}
	j.logOutputs(results)
	if preview != nil {
		if err := preview.Render(out); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (j *Job) report(out io.Writer, results []Result) error {
	switch j.opt.Profile {
	case ProfileText:
		for _, res := range results {
			if _, err := fmt.Fprintf(out, "\n[%s]\n%s", res.Dataset.Name, res.Profile.ReportText()); err != nil {
				return err
			}
		}
	case ProfileJSON:
		doc := make(map[string]profile.JSONProfile, len(results))
		for _, res := range results {
			doc[res.Dataset.Name] = res.Profile.ReportJSON()
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	return nil
}

func (j *Job) logOutputs(results []Result) {
	for _, res := range results {
		if res.Output != "" {
			j.log.Info("wrote", "dataset", res.Dataset.Name, "path", res.Output, "rows", res.Rows)
		}
	}
}

type rowCounter struct{ rows int }

func (c *rowCounter) Write(f *tidy.Frame) error { c.rows += f.Rows(); return nil }
func (c *rowCounter) Close() error              { return nil }
