package tidy_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/wdm0006/tidyweather/pkg/tidy"
)

type failing struct{}

func (failing) Name() string { return "failing" }
func (failing) Apply(ctx context.Context, f *tidy.Frame) (*tidy.Frame, error) {
	return nil, errors.New("boom")
}

func wide(t *testing.T, rows int) *tidy.Frame {
	t.Helper()
	f, err := tidy.NewFrame(tidy.NewSchema("datetime", "Vancouver", "Portland"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < rows; i++ {
		f.AppendRecord([]string{"2012-10-01 12:00:00", "76", "81"})
	}
	return f
}

func TestPipeline(t *testing.T) {
	p := tidy.NewPipeline().Add(&tidy.Unpivot{Keep: []string{"datetime"}, DimensionColumn: "country", ValueColumn: "humidity"})
	out, err := p.Run(context.Background(), wide(t, 3))
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 6 {
		t.Fatalf("expected 6 rows, got %d", out.Rows())
	}
	if got := p.Steps(); len(got) != 1 || got[0] != "unpivot" {
		t.Fatalf("unexpected steps %v", got)
	}
}

func TestPipelineWrapsStepErrors(t *testing.T) {
	p := tidy.NewPipeline().Add(&tidy.Unpivot{Keep: []string{"date"}, DimensionColumn: "country", ValueColumn: "humidity"})
	_, err := p.Run(context.Background(), wide(t, 1))
	var se *tidy.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError through pipeline, got %v", err)
	}
	if se.Column != "date" {
		t.Fatalf("expected column date, got %q", se.Column)
	}
}

type chunks struct{ frames []*tidy.Frame }

func (c *chunks) Next() (*tidy.Frame, error) {
	if len(c.frames) == 0 {
		return nil, io.EOF
	}
	f := c.frames[0]
	c.frames = c.frames[1:]
	return f, nil
}

type closeTracker struct {
	tidy.Collector
	closed bool
}

func (c *closeTracker) Close() error { c.closed = true; return nil }

func TestRunStream(t *testing.T) {
	src := &chunks{frames: []*tidy.Frame{wide(t, 2), wide(t, 3)}}
	p := tidy.NewPipeline().Add(&tidy.Unpivot{Keep: []string{"datetime"}, DimensionColumn: "country", ValueColumn: "humidity"})
	var all tidy.Collector
	tracker := &closeTracker{}
	if err := tidy.RunStream(context.Background(), p, src, tidy.MultiSink{&all, tracker}); err != nil {
		t.Fatal(err)
	}
	if all.Frame().Rows() != 10 {
		t.Fatalf("expected 10 rows, got %d", all.Frame().Rows())
	}
	if !tracker.closed {
		t.Fatal("sink was not closed")
	}
}

func TestRunStreamClosesSinkOnError(t *testing.T) {
	tracker := &closeTracker{}
	err := tidy.RunStream(context.Background(), tidy.NewPipeline().Add(failing{}), tidy.NewFrameSource(wide(t, 1)), tracker)
	if err == nil {
		t.Fatal("expected error")
	}
	if !tracker.closed {
		t.Fatal("sink was not closed after failure")
	}
}

func TestFrameSourceServesOnce(t *testing.T) {
	src := tidy.NewFrameSource(wide(t, 1))
	if _, err := src.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
