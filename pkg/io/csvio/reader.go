package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	iox "github.com/wdm0006/tidyweather/pkg/io/ioutils"
	"github.com/wdm0006/tidyweather/pkg/tidy"
)

type ReaderOptions struct {
	HasHeader bool
	// SkipRows is the number of records discarded after the header (or at
	// the start of the file without one) before data begins.
	SkipRows  int
	Delimiter rune // default ','
	Strict    bool // if true, error on short/long records
}

// LoaderOptions are the options the weather inputs are read with: header
// row, then one units row.
func LoaderOptions() ReaderOptions {
	return ReaderOptions{HasHeader: true, SkipRows: 1, Delimiter: ','}
}

type Reader struct {
	r      *csv.Reader
	rc     io.Closer
	opt    ReaderOptions
	name   string
	schema *tidy.Schema
	buf    [][]string
	// repair/warning counters
	shortRecords int
	longRecords  int
}

// Open opens a CSV file, gzip or plain, and returns a Reader. A missing
// file yields a *tidy.NotFoundError before anything is read.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	r := NewReaderFrom(rc, opt)
	r.rc = rc
	r.name = path
	return r, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader.
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	rr.ReuseRecord = true
	return &Reader{r: rr, opt: opt, name: "input"}
}

func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	return r.rc.Close()
}

// ReadHeader reads and normalizes the header row and skips the configured
// rows after it. It is safe to call more than once.
func (r *Reader) ReadHeader() (tidy.Schema, error) {
	if r.schema != nil {
		return *r.schema, nil
	}
	var names []string
	if r.opt.HasHeader {
		rec, err := r.r.Read()
		if errors.Is(err, io.EOF) {
			return tidy.Schema{}, &tidy.SchemaError{Msg: fmt.Sprintf("%s: no header row", r.name)}
		}
		if err != nil {
			return tidy.Schema{}, fmt.Errorf("%s: %w", r.name, err)
		}
		names, err = tidy.NormalizeHeader(rec)
		if err != nil {
			return tidy.Schema{}, fmt.Errorf("%s: %w", r.name, err)
		}
	}
	for i := 0; i < r.opt.SkipRows; i++ {
		if _, err := r.r.Read(); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return tidy.Schema{}, fmt.Errorf("%s: %w", r.name, err)
		}
	}
	if names == nil {
		// headerless: width comes from the first data record, which is kept
		rec, err := r.r.Read()
		if errors.Is(err, io.EOF) {
			return tidy.Schema{}, &tidy.SchemaError{Msg: fmt.Sprintf("%s: no records", r.name)}
		}
		if err != nil {
			return tidy.Schema{}, fmt.Errorf("%s: %w", r.name, err)
		}
		r.buf = append(r.buf, append([]string(nil), rec...))
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "_c" + strconv.Itoa(i)
		}
	}
	s := tidy.NewSchema(names...)
	r.schema = &s
	return s, nil
}

// ReadAll loads the remaining records into a Frame.
func (r *Reader) ReadAll() (*tidy.Frame, error) {
	f, err := r.readChunk(-1)
	if errors.Is(err, io.EOF) {
		return f, nil
	}
	return f, err
}

// readChunk reads up to max records (max < 0 reads everything). It
// returns io.EOF together with an empty frame once the input is drained.
func (r *Reader) readChunk(max int) (*tidy.Frame, error) {
	schema, err := r.ReadHeader()
	if err != nil {
		return nil, err
	}
	f, err := tidy.NewFrame(schema)
	if err != nil {
		return nil, err
	}
	width := len(schema.Columns)
	for max < 0 || f.Rows() < max {
		rec, err := r.next()
		if errors.Is(err, io.EOF) {
			if f.Rows() == 0 {
				return f, io.EOF
			}
			return f, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.name, err)
		}
		switch {
		case len(rec) < width:
			r.shortRecords++
			if r.opt.Strict {
				return nil, fmt.Errorf("%s: csv short record: need %d fields, got %d", r.name, width, len(rec))
			}
		case len(rec) > width:
			r.longRecords++
			if r.opt.Strict {
				return nil, fmt.Errorf("%s: csv long record: need %d fields, got %d", r.name, width, len(rec))
			}
		}
		f.AppendRecord(rec)
	}
	return f, nil
}

func (r *Reader) next() ([]string, error) {
	var rec []string
	// drain records buffered while reading the header first
	if len(r.buf) > 0 {
		rec, r.buf = r.buf[0], r.buf[1:]
	} else {
		var err error
		if rec, err = r.r.Read(); err != nil {
			return nil, err
		}
	}
	for i := range rec {
		rec[i] = strings.ToValidUTF8(rec[i], "?")
	}
	return rec, nil
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	if r.shortRecords == 0 && r.longRecords == 0 {
		return ""
	}
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}
