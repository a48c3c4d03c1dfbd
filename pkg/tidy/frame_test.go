package tidy

import (
	"errors"
	"testing"
)

func TestNewFrameRejectsDuplicateNames(t *testing.T) {
	_, err := NewFrame(NewSchema("a", "b", "a"))
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if se.Column != "a" {
		t.Fatalf("expected column a, got %q", se.Column)
	}
}

func TestAppendRecord(t *testing.T) {
	f, _ := NewFrame(NewSchema("a", "b", "c"))
	f.AppendRecord([]string{"1", "", "3", "extra"})
	f.AppendRecord([]string{"4"})
	if f.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %d", f.Rows())
	}
	if _, ok := f.Cell(0, "b"); ok {
		t.Fatal("empty field should be null")
	}
	if v, _ := f.Cell(0, "c"); v != "3" {
		t.Fatalf("got %q", v)
	}
	if _, ok := f.Cell(1, "c"); ok {
		t.Fatal("missing trailing field should be null")
	}
}

func TestSetCell(t *testing.T) {
	f, _ := NewFrame(NewSchema("s"))
	f.AppendNullRow()
	if err := f.SetCell(0, "s", "x"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCell(0, "nope", "x"); err == nil {
		t.Fatal("expected unknown column error")
	}
	if err := f.SetCell(0, "s", 3); err == nil {
		t.Fatal("expected type error")
	}
	if err := f.SetCell(0, "s", nil); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.Cell(0, "s"); ok {
		t.Fatal("expected null after nil set")
	}
}

func TestHeadAndAppendFrame(t *testing.T) {
	f, _ := NewFrame(NewSchema("a"))
	for _, v := range []string{"1", "2", "3"} {
		f.AppendRecord([]string{v})
	}
	h := f.Head(2)
	if h.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %d", h.Rows())
	}
	_ = h.SetCell(0, "a", "changed")
	if v, _ := f.Cell(0, "a"); v != "1" {
		t.Fatal("head must copy, source changed")
	}
	if f.Head(10).Rows() != 3 {
		t.Fatal("head larger than frame should return every row")
	}

	dst, _ := NewFrame(NewSchema("a"))
	n, err := dst.AppendFrame(f, 2)
	if err != nil || n != 2 || dst.Rows() != 2 {
		t.Fatalf("append: n=%d rows=%d err=%v", n, dst.Rows(), err)
	}
	other, _ := NewFrame(NewSchema("b"))
	if _, err := dst.AppendFrame(other, -1); err == nil {
		t.Fatal("expected schema mismatch")
	}
}

func TestNormalizeHeader(t *testing.T) {
	got, err := NormalizeHeader([]string{"\ufeffdatetime", "San Francisco", "Wind Speed"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"datetime", "San_Francisco", "Wind_Speed"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column %d: got %q want %q", i, got[i], want[i])
		}
	}
	if DisplayName(got[1]) != "San Francisco" {
		t.Fatalf("display name: %q", DisplayName(got[1]))
	}
}

func TestNormalizeHeaderCollision(t *testing.T) {
	_, err := NormalizeHeader([]string{"datetime", "New York", "New_York"})
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if se.Column != "New_York" {
		t.Fatalf("expected colliding column New_York, got %q", se.Column)
	}
}
