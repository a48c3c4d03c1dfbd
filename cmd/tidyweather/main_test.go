package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wdm0006/tidyweather/pkg/tidy"
)

const testdata = "../../pkg/job/testdata"

func inlineConfig(skip string) string {
	var parts []string
	for _, k := range []string{"city_attributes", "humidity", "pressure", "temperature", "weather_description"} {
		if k == skip {
			continue
		}
		parts = append(parts, `"`+k+`":"`+filepath.ToSlash(filepath.Join(testdata, k+".csv"))+`"`)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func runArgs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("TIDYWEATHER_CONFIG", "")
	t.Setenv("TIDYWEATHER_CONFIG_FILE", "")
	t.Setenv("TIDYWEATHER_OUTPUT_DIR", "")
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := runArgs(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "tidyweather ") {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestRunShowsTable(t *testing.T) {
	out, logs, err := runArgs(t, "--config", inlineConfig(""), "--show-rows", "2")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, logs)
	}
	if !strings.Contains(out, "weather_description") || !strings.Contains(out, "only showing top 2 rows") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if !strings.Contains(logs, "run_id=") || !strings.Contains(logs, "columns_to_keep") {
		t.Fatalf("unexpected logs:\n%s", logs)
	}
}

func TestMissingKeyIsConfigError(t *testing.T) {
	_, _, err := runArgs(t, "--config", inlineConfig("pressure"))
	var ce *tidy.ConfigurationError
	if !errors.As(err, &ce) || ce.Param != "pressure" {
		t.Fatalf("expected configuration error for pressure, got %v", err)
	}
	if exitCode(err) != 2 {
		t.Fatalf("exit code %d", exitCode(err))
	}
}

func TestMalformedConfigLogsRaw(t *testing.T) {
	_, logs, err := runArgs(t, "--config", "{oops")
	if exitCode(err) != 2 {
		t.Fatalf("expected exit 2, got %d (%v)", exitCode(err), err)
	}
	if !strings.Contains(logs, "invalid JSON format for --config") || !strings.Contains(logs, "{oops") {
		t.Fatalf("raw config not logged:\n%s", logs)
	}
}

func TestMissingFileExitsOne(t *testing.T) {
	cfg := strings.Replace(inlineConfig(""), "temperature.csv", "absent.csv", 1)
	_, _, err := runArgs(t, "--config", cfg)
	var nf *tidy.NotFoundError
	if !errors.As(err, &nf) || !strings.HasSuffix(nf.Path, "absent.csv") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if exitCode(err) != 1 {
		t.Fatalf("exit code %d", exitCode(err))
	}
}

func TestBadFlag(t *testing.T) {
	_, _, err := runArgs(t, "--no-such-flag")
	if exitCode(err) != 2 {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestOutputDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	t.Setenv("TIDYWEATHER_CONFIG", inlineConfig(""))
	t.Setenv("TIDYWEATHER_CONFIG_FILE", "")
	t.Setenv("TIDYWEATHER_OUTPUT_DIR", dir)
	if err := run(context.Background(), []string{"--show-rows", "0", "--output-format", "jsonl"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("display should be off:\n%s", stdout.String())
	}
	for _, name := range []string{"city_attributes", "humidity", "pressure", "temperature", "weather_description"} {
		if _, err := os.Stat(filepath.Join(dir, name+".jsonl")); err != nil {
			t.Fatal(err)
		}
	}
}
