package display

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/wdm0006/tidyweather/pkg/tidy"
)

func long(rows int) *tidy.Frame {
	f, _ := tidy.NewFrame(tidy.NewSchema("datetime", "country", "weather_description"))
	for i := 0; i < rows; i++ {
		desc := "sky is clear"
		if i == 1 {
			desc = "proximity thunderstorm with drizzle"
		}
		if i == 2 {
			desc = ""
		}
		f.AppendRecord([]string{fmt.Sprintf("2012-10-01 %02d:00:00", i), "Vancouver", desc})
	}
	return f
}

func TestShowCapsRows(t *testing.T) {
	var buf bytes.Buffer
	if err := Show(&buf, long(5), 3); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "weather_description") {
		t.Fatalf("header missing:\n%s", out)
	}
	if strings.Contains(out, "2012-10-01 03:00:00") {
		t.Fatalf("row beyond cap rendered:\n%s", out)
	}
	if !strings.Contains(out, "only showing top 3 rows") {
		t.Fatalf("footer missing:\n%s", out)
	}
	if !strings.Contains(out, "proximity thunder...") {
		t.Fatalf("long cell not truncated:\n%s", out)
	}
	if !strings.Contains(out, "null") {
		t.Fatalf("null not rendered:\n%s", out)
	}
}

func TestShowNoFooterWhenComplete(t *testing.T) {
	var buf bytes.Buffer
	if err := Show(&buf, long(2), 100); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "only showing") {
		t.Fatalf("unexpected footer:\n%s", buf.String())
	}
}

func TestPreviewAcrossChunks(t *testing.T) {
	p, err := NewPreview(long(0).Schema(), 4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := p.Write(long(3)); err != nil {
			t.Fatal(err)
		}
	}
	if p.Total() != 9 {
		t.Fatalf("expected 9 rows seen, got %d", p.Total())
	}
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "only showing top 4 rows") {
		t.Fatalf("footer missing:\n%s", buf.String())
	}
}

func TestPreviewWithoutRowsMatchesShow(t *testing.T) {
	empty := long(0)
	var want bytes.Buffer
	if err := Show(&want, empty, 4); err != nil {
		t.Fatal(err)
	}
	p, err := NewPreview(empty.Schema(), 4)
	if err != nil {
		t.Fatal(err)
	}
	var got bytes.Buffer
	if err := p.Render(&got); err != nil {
		t.Fatal(err)
	}
	if got.String() != want.String() {
		t.Fatalf("preview of no rows:\n%s\nshow of no rows:\n%s", got.String(), want.String())
	}
	if !strings.Contains(got.String(), "weather_description") {
		t.Fatalf("header missing:\n%s", got.String())
	}
}
