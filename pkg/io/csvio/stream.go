package csvio

import (
	"encoding/csv"
	"io"

	iox "github.com/wdm0006/tidyweather/pkg/io/ioutils"
	"github.com/wdm0006/tidyweather/pkg/tidy"
)

// StreamReader reads CSV into Frame chunks of up to ChunkSize rows.
type StreamReader struct {
	r         *Reader
	schema    tidy.Schema
	chunkSize int
}

// NewStreamReader opens the file, reads the header (respecting options),
// and returns a StreamReader. Close it when done.
func NewStreamReader(path string, opt ReaderOptions, chunkSize int) (*StreamReader, error) {
	rr, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	schema, err := rr.ReadHeader()
	if err != nil {
		_ = rr.Close()
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	return &StreamReader{r: rr, schema: schema, chunkSize: chunkSize}, nil
}

// Next returns the next chunk frame or io.EOF when complete.
func (s *StreamReader) Next() (*tidy.Frame, error) {
	f, err := s.r.readChunk(s.chunkSize)
	if err == io.EOF {
		return nil, io.EOF
	}
	return f, err
}

func (s *StreamReader) Schema() tidy.Schema { return s.schema }
func (s *StreamReader) Warnings() string    { return s.r.Warnings() }
func (s *StreamReader) Close() error        { return s.r.Close() }

// StreamWriter appends frames to a CSV file with a header (written once).
type StreamWriter struct {
	w           *csv.Writer
	out         io.WriteCloser
	wroteHeader bool
	schema      tidy.Schema
	rows        int
}

func NewStreamWriter(path string, schema tidy.Schema, opt WriterOptions) (*StreamWriter, error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}
	return &StreamWriter{w: w, out: out, schema: schema}, nil
}

func (s *StreamWriter) Write(fr *tidy.Frame) error {
	if !s.wroteHeader {
		if err := s.w.Write(s.schema.Names()); err != nil {
			return err
		}
		s.wroteHeader = true
	}
	if err := writeRows(s.w, fr); err != nil {
		return err
	}
	s.rows += fr.Rows()
	s.w.Flush()
	return s.w.Error()
}

// Rows reports how many data rows were written.
func (s *StreamWriter) Rows() int { return s.rows }

func (s *StreamWriter) Close() error {
	if !s.wroteHeader {
		// an empty result still gets its header
		_ = s.w.Write(s.schema.Names())
		s.wroteHeader = true
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.out.Close()
		return err
	}
	return s.out.Close()
}
