package csvio

import (
	"encoding/csv"

	iox "github.com/wdm0006/tidyweather/pkg/io/ioutils"
	"github.com/wdm0006/tidyweather/pkg/tidy"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Frame to a CSV file with headers. Nulls are written as
// empty fields; a .gz path is compressed.
func WriteAll(path string, f *tidy.Frame, opt WriterOptions) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}
	if err := w.Write(f.Names()); err != nil {
		_ = out.Close()
		return err
	}
	if err := writeRows(w, f); err != nil {
		_ = out.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func writeRows(w *csv.Writer, f *tidy.Frame) error {
	row := make([]string, f.Cols())
	for r := 0; r < f.Rows(); r++ {
		for c := range row {
			row[c], _ = f.Column(c).Get(r)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
