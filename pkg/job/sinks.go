package job

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/wdm0006/tidyweather/pkg/io/csvio"
	"github.com/wdm0006/tidyweather/pkg/io/jsonlio"
	"github.com/wdm0006/tidyweather/pkg/io/parquetio"
	"github.com/wdm0006/tidyweather/pkg/tidy"
)

type stagedFile struct {
	tmp, final string
}

// staging tracks output files written under temporary names. commit moves
// them into place; discard removes whatever was not committed.
type staging struct {
	files []stagedFile
}

func (s *staging) commit() error {
	for i, f := range s.files {
		if err := os.Rename(f.tmp, f.final); err != nil {
			for _, done := range s.files[:i] {
				_ = os.Remove(done.final)
			}
			s.files = s.files[i:]
			return err
		}
	}
	s.files = nil
	return nil
}

func (s *staging) discard() {
	for _, f := range s.files {
		_ = os.Remove(f.tmp)
	}
	s.files = nil
}

// stage reserves a temporary path next to the final output of dataset. The
// temporary name keeps the final extension so writers pick the same format.
func (j *Job) stage(st *staging, dataset string) (tmp, final string, err error) {
	if err := os.MkdirAll(j.opt.OutputDir, 0o755); err != nil {
		return "", "", err
	}
	name := j.opt.outputName(dataset)
	final = filepath.Join(j.opt.OutputDir, name)
	tmp = filepath.Join(j.opt.OutputDir, ".staging-"+uuid.NewString()+"-"+name)
	st.files = append(st.files, stagedFile{tmp: tmp, final: final})
	return tmp, final, nil
}

// writeAll writes a complete result to path.
func (j *Job) writeAll(path string, f *tidy.Frame) error {
	switch j.opt.OutputFormat {
	case FormatJSONL:
		return jsonlio.WriteAll(path, f)
	case FormatParquet:
		return parquetio.WriteAll(path, f)
	default:
		return csvio.WriteAll(path, f, csvio.WriterOptions{})
	}
}

// openSink opens a chunk sink for a streamed result at path.
func (j *Job) openSink(path string, schema tidy.Schema) (tidy.ChunkSink, error) {
	var sink tidy.ChunkSink
	var err error
	switch j.opt.OutputFormat {
	case FormatJSONL:
		sink, err = jsonlio.NewStreamWriter(path)
	case FormatParquet:
		sink, err = parquetio.NewStreamWriter(path, schema)
	default:
		sink, err = csvio.NewStreamWriter(path, schema, csvio.WriterOptions{})
	}
	if err != nil {
		return nil, err
	}
	return sink, nil
}
