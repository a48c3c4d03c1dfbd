package job

import (
	"github.com/wdm0006/tidyweather/pkg/config"
)

// Dataset is one input of the job. Measure names the value column the
// dataset is unpivoted into; an empty Measure keeps the dataset wide.
type Dataset struct {
	Name    string
	Path    string
	Measure string
}

func (d Dataset) Wide() bool { return d.Measure == "" }

// Datasets lists the job inputs in processing order: city attributes
// first, kept wide, then the four measurements.
func Datasets(in config.Inputs) []Dataset {
	out := make([]Dataset, 0, len(config.Keys))
	for _, k := range config.Keys {
		d := Dataset{Name: k, Path: in.Path(k)}
		if k != "city_attributes" {
			d.Measure = k
		}
		out = append(out, d)
	}
	return out
}
