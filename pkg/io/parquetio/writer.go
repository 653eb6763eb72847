package parquetio

import (
	"encoding/json"
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	pw "github.com/xitongsys/parquet-go/writer"

	iox "github.com/wdm0006/catfill/pkg/io/ioutils"
	"github.com/wdm0006/catfill/pkg/table"
)

func parquetSchemaJSON(s table.Schema) string {
	// Build a minimal JSON schema for parquet-go JSONWriter
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case table.KindFloat:
			tag += "DOUBLE"
		case table.KindInt:
			tag += "INT64"
		case table.KindBool:
			tag += "BOOLEAN"
		default:
			// time values are written as RFC 3339 text
			tag += "UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// Writer appends frames to a Parquet file; it satisfies table.ChunkSink.
type Writer struct {
	file source.ParquetFile
	w    *pw.JSONWriter
}

func NewWriter(path string, schema table.Schema) (*Writer, error) {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, err
	}
	w, err := pw.NewJSONWriter(parquetSchemaJSON(schema), fw, 4)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("parquet writer init: %w", err)
	}
	return &Writer{file: fw, w: w}, nil
}

// Write encodes each row as a JSON document; missing cells are omitted and
// land as nulls in the OPTIONAL columns.
func (w *Writer) Write(f *table.Frame) error {
	for r := 0; r < f.Rows(); r++ {
		b, err := json.Marshal(iox.Record(f, r))
		if err != nil {
			return err
		}
		if err := w.w.Write(string(b)); err != nil {
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	return nil
}

func (w *Writer) Close() error {
	if err := w.w.WriteStop(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// WriteAll writes a Frame to a Parquet file.
func WriteAll(path string, f *table.Frame) error {
	w, err := NewWriter(path, f.Schema())
	if err != nil {
		return err
	}
	if err := w.Write(f); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
