package csvio

import (
	"path/filepath"
	"testing"

	"github.com/wdm0006/tidyweather/pkg/tidy"
)

func TestWriteAllThenRead(t *testing.T) {
	f, _ := tidy.NewFrame(tidy.NewSchema("datetime", "country", "humidity"))
	f.AppendRecord([]string{"2012-10-01 13:00:00", "San Francisco", "88.0"})
	f.AppendRecord([]string{"2012-10-01 13:00:00", "Seattle", ""})

	for _, name := range []string{"humidity.csv", "humidity.csv.gz"} {
		p := filepath.Join(t.TempDir(), name)
		if err := WriteAll(p, f, WriterOptions{}); err != nil {
			t.Fatal(err)
		}
		r, err := Open(p, ReaderOptions{HasHeader: true})
		if err != nil {
			t.Fatal(err)
		}
		back, err := r.ReadAll()
		_ = r.Close()
		if err != nil {
			t.Fatal(err)
		}
		if back.Rows() != 2 {
			t.Fatalf("%s: expected 2 rows, got %d", name, back.Rows())
		}
		if v, _ := back.Cell(0, "country"); v != "San Francisco" {
			t.Fatalf("%s: got %q", name, v)
		}
		if _, ok := back.Cell(1, "humidity"); ok {
			t.Fatalf("%s: null should round trip as empty field", name)
		}
	}
}

func TestStreamWriterHeaderOnce(t *testing.T) {
	schema := tidy.NewSchema("datetime", "country", "pressure")
	p := filepath.Join(t.TempDir(), "out", "pressure.csv")
	w, err := NewStreamWriter(p, schema, WriterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		f, _ := tidy.NewFrame(schema)
		f.AppendRecord([]string{"2012-10-01 13:00:00", "Vancouver", "1012"})
		if err := w.Write(f); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if w.Rows() != 3 {
		t.Fatalf("expected 3 rows written, got %d", w.Rows())
	}
	r, err := Open(p, ReaderOptions{HasHeader: true})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = r.Close() }()
	back, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if back.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", back.Rows())
	}
}
