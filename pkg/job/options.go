package job

import (
	"fmt"
	"slices"

	"github.com/wdm0006/tidyweather/pkg/config"
	"github.com/wdm0006/tidyweather/pkg/tidy"
)

const (
	FormatCSV     = "csv"
	FormatJSONL   = "jsonl"
	FormatParquet = "parquet"

	ProfileText = "text"
	ProfileJSON = "json"
)

// Options tune a Job. The zero value is completed by Normalize.
type Options struct {
	KeepColumns     []string
	DimensionColumn string
	// ShowDataset names the dataset displayed at the end of a run; ShowRows
	// caps the rows displayed. ShowRows < 0 disables the display.
	ShowDataset string
	ShowRows    int
	// ChunkSize > 0 streams every dataset in chunks of that many rows.
	ChunkSize int
	// OutputDir, when set, receives one file per dataset.
	OutputDir    string
	OutputFormat string
	Compress     bool
	// Profile is "", "text" or "json".
	Profile string
	TopK    int
}

func DefaultOptions() Options {
	return Options{
		KeepColumns:     []string{"datetime"},
		DimensionColumn: "country",
		ShowDataset:     "weather_description",
		ShowRows:        100,
		TopK:            5,
	}
}

// Normalize fills defaults and rejects contradictory settings with a
// *tidy.ConfigurationError.
func (o Options) Normalize() (Options, error) {
	def := DefaultOptions()
	if len(o.KeepColumns) == 0 {
		o.KeepColumns = def.KeepColumns
	}
	if o.DimensionColumn == "" {
		o.DimensionColumn = def.DimensionColumn
	}
	if o.ShowDataset == "" {
		o.ShowDataset = def.ShowDataset
	}
	if o.ShowRows == 0 {
		o.ShowRows = def.ShowRows
	}
	if o.TopK <= 0 {
		o.TopK = def.TopK
	}
	if !slices.Contains(config.Keys, o.ShowDataset) {
		return o, &tidy.ConfigurationError{Param: "show", Raw: o.ShowDataset, Msg: fmt.Sprintf("unknown dataset, want one of %v", config.Keys)}
	}
	if o.ChunkSize < 0 {
		return o, &tidy.ConfigurationError{Param: "chunk-size", Raw: fmt.Sprint(o.ChunkSize), Msg: "chunk size must not be negative"}
	}
	switch o.OutputFormat {
	case "":
		o.OutputFormat = FormatCSV
	case FormatCSV, FormatJSONL, FormatParquet:
	default:
		return o, &tidy.ConfigurationError{Param: "output-format", Raw: o.OutputFormat, Msg: "unsupported output format"}
	}
	if o.Compress && o.OutputFormat == FormatParquet {
		return o, &tidy.ConfigurationError{Param: "compress", Msg: "gzip applies to csv and jsonl outputs only"}
	}
	switch o.Profile {
	case "", ProfileText, ProfileJSON:
	default:
		return o, &tidy.ConfigurationError{Param: "profile", Raw: o.Profile, Msg: "unsupported profile format"}
	}
	return o, nil
}

// outputName is the file a dataset is written to under OutputDir.
func (o Options) outputName(dataset string) string {
	name := dataset + "." + o.OutputFormat
	if o.Compress {
		name += ".gz"
	}
	return name
}
