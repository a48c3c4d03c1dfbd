package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/wdm0006/tidyweather/pkg/config"
	"github.com/wdm0006/tidyweather/pkg/job"
	"github.com/wdm0006/tidyweather/pkg/logger"
	"github.com/wdm0006/tidyweather/pkg/tidy"
)

var version = "0.1.0-dev"

// usageError marks bad command line input.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// a missing .env is fine; real environment variables win
	_ = godotenv.Load()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for configuration and usage errors and 1 for anything else.
func exitCode(err error) int {
	var ce *tidy.ConfigurationError
	var ue usageError
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.As(err, &ce), errors.As(err, &ue):
		return 2
	default:
		return 1
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tidyweather", flag.ContinueOnError)
	fs.SetOutput(stderr)
	versionFlag := fs.Bool("version", false, "print version and exit")
	verboseFlag := fs.Bool("verbose", false, "enable verbose (debug) logging")
	configFlag := fs.String("config", "", "inline JSON naming the five input files (or set TIDYWEATHER_CONFIG env var)")
	configFileFlag := fs.String("config-file", "", "config file, .json, .toml or .yaml (or set TIDYWEATHER_CONFIG_FILE env var)")
	showFlag := fs.String("show", "weather_description", "dataset to display")
	showRowsFlag := fs.Int("show-rows", 100, "rows to display, 0 or less disables the display")
	chunkSizeFlag := fs.Int("chunk-size", 0, "stream each dataset in chunks of this many rows, 0 loads whole files")
	outputDirFlag := fs.String("output-dir", "", "write every result to this directory (or set TIDYWEATHER_OUTPUT_DIR env var)")
	outputFormatFlag := fs.String("output-format", job.FormatCSV, "output file format: csv, jsonl or parquet")
	compressFlag := fs.Bool("compress", false, "gzip csv and jsonl outputs")
	profileFlag := fs.String("profile", "", "print a column profile of every result: text or json")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{err}
	}
	if fs.NArg() > 0 {
		return usageError{fmt.Errorf("unexpected arguments: %v", fs.Args())}
	}
	if *versionFlag {
		fmt.Fprintln(stdout, "tidyweather", version)
		return nil
	}

	envDefault(fs, "config", configFlag, "TIDYWEATHER_CONFIG")
	envDefault(fs, "config-file", configFileFlag, "TIDYWEATHER_CONFIG_FILE")
	envDefault(fs, "output-dir", outputDirFlag, "TIDYWEATHER_OUTPUT_DIR")

	log := logger.New(stderr, *verboseFlag, isTerminal(stderr)).With("run_id", uuid.New().String())

	inputs, err := loadInputs(*configFlag, *configFileFlag)
	if err != nil {
		var ce *tidy.ConfigurationError
		if errors.As(err, &ce) && ce.Param == "config" {
			log.Error("invalid JSON format for --config", "raw", ce.Raw)
		} else {
			log.Error("cannot load configuration", "err", err)
		}
		return err
	}
	log.Debug("configuration", "inputs", inputs)

	showRows := *showRowsFlag
	if showRows <= 0 {
		showRows = -1
	}
	j, err := job.New(inputs, job.Options{
		ShowDataset:  *showFlag,
		ShowRows:     showRows,
		ChunkSize:    *chunkSizeFlag,
		OutputDir:    *outputDirFlag,
		OutputFormat: *outputFormatFlag,
		Compress:     *compressFlag,
		Profile:      *profileFlag,
	}, log)
	if err != nil {
		return err
	}
	results, err := j.Run(ctx, stdout)
	if err != nil {
		return err
	}
	for _, r := range results {
		log.Debug("done", "dataset", r.Dataset.Name, "rows", r.Rows, "columns", r.Schema.Names())
	}
	log.Info("finished", "datasets", len(results))
	return nil
}

func loadInputs(raw, path string) (config.Inputs, error) {
	switch {
	case raw != "" && path != "":
		return config.Inputs{}, &tidy.ConfigurationError{Param: "config", Msg: "--config and --config-file are mutually exclusive"}
	case raw != "":
		return config.Parse(raw)
	case path != "":
		return config.LoadFile(path)
	default:
		return config.Default(), nil
	}
}

// envDefault fills an unset flag from the environment.
func envDefault(fs *flag.FlagSet, name string, v *string, env string) {
	if fs.Changed(name) {
		return
	}
	if s := os.Getenv(env); s != "" {
		*v = s
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	st, err := f.Stat()
	return err == nil && st.Mode()&os.ModeCharDevice != 0
}
