package parquetio

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	"github.com/wdm0006/tidyweather/pkg/tidy"
)

type jsonField struct {
	Tag string `json:"Tag"`
}

type jsonSchema struct {
	Tag    string      `json:"Tag"`
	Fields []jsonField `json:"Fields"`
}

// tagSafe reports whether name can be spliced into a parquet-go struct tag.
func tagSafe(name string) bool {
	return name != "" && !strings.ContainsAny(name, ",=")
}

// parquetSchemaJSON maps every column to an optional UTF8 byte array.
func parquetSchemaJSON(s tidy.Schema) (string, error) {
	sc := jsonSchema{Tag: "name=tidy, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		if !tagSafe(cs.Name) {
			return "", &tidy.SchemaError{Column: cs.Name, Msg: "name cannot be used in a parquet schema tag"}
		}
		rep := "OPTIONAL"
		if !cs.Nullable {
			rep = "REQUIRED"
		}
		sc.Fields = append(sc.Fields, jsonField{
			Tag: fmt.Sprintf("name=%s, type=UTF8, encoding=PLAIN_DICTIONARY, repetitiontype=%s", cs.Name, rep),
		})
	}
	b, err := json.Marshal(sc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteAll writes a Frame to a Parquet file using parquet-go JSONWriter.
// Frames whose column names cannot be expressed as schema tags go through
// the stream writer instead. A failed write removes the file.
func WriteAll(path string, f *tidy.Frame) error {
	schema, err := parquetSchemaJSON(f.Schema())
	if err != nil {
		return writeStream(path, f)
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	fail := func(err error) error {
		_ = fw.Close()
		_ = os.Remove(path)
		return err
	}
	writer, err := pw.NewJSONWriter(schema, fw, 4)
	if err != nil {
		return fail(fmt.Errorf("parquet writer init: %w", err))
	}
	names := f.Names()
	rec := make(map[string]string, len(names))
	for r := 0; r < f.Rows(); r++ {
		clear(rec)
		for c, name := range names {
			if v, ok := f.Column(c).Get(r); ok {
				rec[name] = v
			}
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return fail(err)
		}
		if err := writer.Write(string(line)); err != nil {
			return fail(fmt.Errorf("parquet write row %d: %w", r, err))
		}
	}
	if err := writer.WriteStop(); err != nil {
		return fail(fmt.Errorf("parquet write stop: %w", err))
	}
	if err := fw.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func writeStream(path string, f *tidy.Frame) error {
	w, err := NewStreamWriter(path, f.Schema())
	if err != nil {
		return err
	}
	if err := w.Write(f); err != nil {
		_ = w.Close()
		_ = os.Remove(path)
		return err
	}
	if err := w.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
