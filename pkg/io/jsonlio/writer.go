package jsonlio

import (
	"bufio"
	"encoding/json"
	"io"

	iox "github.com/wdm0006/tidyweather/pkg/io/ioutils"
	"github.com/wdm0006/tidyweather/pkg/tidy"
)

// WriteAll writes one JSON object per row. Nulls are encoded as JSON null;
// a .gz path is compressed.
func WriteAll(path string, f *tidy.Frame) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	if err := encodeRows(json.NewEncoder(w), f); err != nil {
		_ = out.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func encodeRows(enc *json.Encoder, f *tidy.Frame) error {
	names := f.Names()
	for r := 0; r < f.Rows(); r++ {
		m := make(map[string]any, len(names))
		for c, name := range names {
			if v, ok := f.Column(c).Get(r); ok {
				m[name] = v
			} else {
				m[name] = nil
			}
		}
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}

// StreamWriter appends frames to a JSON Lines file.
type StreamWriter struct {
	enc *json.Encoder
	w   *bufio.Writer
	out io.WriteCloser
}

func NewStreamWriter(path string) (*StreamWriter, error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(out)
	return &StreamWriter{enc: json.NewEncoder(w), w: w, out: out}, nil
}

func (s *StreamWriter) Write(f *tidy.Frame) error {
	if err := encodeRows(s.enc, f); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *StreamWriter) Close() error {
	if err := s.w.Flush(); err != nil {
		_ = s.out.Close()
		return err
	}
	return s.out.Close()
}
