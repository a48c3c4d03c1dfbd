package ioutils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/wdm0006/tidyweather/pkg/tidy"
)

func TestGzipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"plain.csv", "nested/packed.csv.gz"} {
		p := filepath.Join(dir, name)
		w, err := CreateMaybeCompressed(p)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, "datetime,Vancouver\n"); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
		r, err := OpenMaybeCompressed(p)
		if err != nil {
			t.Fatal(err)
		}
		b, err := io.ReadAll(r)
		_ = r.Close()
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "datetime,Vancouver\n" {
			t.Fatalf("%s: got %q", name, b)
		}
	}
}

func TestGzipSniffedByMagic(t *testing.T) {
	dir := t.TempDir()
	gz := filepath.Join(dir, "a.csv.gz")
	w, _ := CreateMaybeCompressed(gz)
	_, _ = io.WriteString(w, "x\n")
	_ = w.Close()
	renamed := filepath.Join(dir, "a.csv")
	if err := os.Rename(gz, renamed); err != nil {
		t.Fatal(err)
	}
	r, err := OpenMaybeCompressed(renamed)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = r.Close() }()
	b, _ := io.ReadAll(r)
	if string(b) != "x\n" {
		t.Fatalf("got %q", b)
	}
}

func TestOpenMissing(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope.csv")
	_, err := OpenMaybeCompressed(p)
	var nf *tidy.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Path != p {
		t.Fatalf("expected path %q, got %q", p, nf.Path)
	}
}
