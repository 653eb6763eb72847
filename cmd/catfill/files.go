package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/wdm0006/catfill/pkg/io/csvio"
	"github.com/wdm0006/catfill/pkg/io/jsonlio"
	"github.com/wdm0006/catfill/pkg/io/parquetio"
	"github.com/wdm0006/catfill/pkg/table"
)

// formatOf resolves csv, jsonl or parquet from an explicit type or the path,
// ignoring a trailing .gz.
func formatOf(typ, path string) (string, error) {
	if typ == "" {
		ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".gz")))
		typ = strings.TrimPrefix(ext, ".")
	}
	switch typ {
	case "", "-", "csv", "tsv", "txt":
		return "csv", nil
	case "jsonl", "ndjson", "json":
		return "jsonl", nil
	case "parquet":
		return "parquet", nil
	default:
		return "", fmt.Errorf("unsupported format %q", typ)
	}
}

func (s Source) csvOptions() csvio.ReaderOptions {
	opt := csvio.ReaderOptions{HasHeader: true, NullTokens: s.NullTokens, ForceString: s.ForceString}
	if s.HasHeader != nil {
		opt.HasHeader = *s.HasHeader
	}
	if s.Delimiter != "" {
		opt.Delimiter = []rune(s.Delimiter)[0]
	}
	return opt
}

func readFrame(s Source) (*table.Frame, error) {
	format, err := formatOf(s.Type, s.Path)
	if err != nil {
		return nil, err
	}
	switch format {
	case "jsonl":
		return jsonlio.ReadFile(s.Path, jsonlio.ReaderOptions{NullTokens: s.NullTokens, ForceString: s.ForceString})
	case "parquet":
		return parquetio.ReadFile(s.Path, parquetio.ReaderOptions{ForceString: s.ForceString})
	default:
		return csvio.ReadFile(s.Path, s.csvOptions())
	}
}

type chunkReader interface {
	table.ChunkSource
	Schema() table.Schema
}

func openStream(s Source, chunk int) (chunkReader, io.Closer, error) {
	format, err := formatOf(s.Type, s.Path)
	if err != nil {
		return nil, nil, err
	}
	switch format {
	case "jsonl":
		return jsonlio.NewStreamReader(s.Path, jsonlio.ReaderOptions{NullTokens: s.NullTokens, ForceString: s.ForceString}, chunk)
	case "parquet":
		sr, err := parquetio.NewStreamReader(s.Path, parquetio.ReaderOptions{ForceString: s.ForceString}, chunk)
		if err != nil {
			return nil, nil, err
		}
		return sr, sr, nil
	default:
		sr, c, err := csvio.NewStreamReader(s.Path, s.csvOptions(), chunk)
		if err != nil {
			return nil, nil, err
		}
		return sr, c, nil
	}
}

func (s Sink) csvOptions() csvio.WriterOptions {
	opt := csvio.WriterOptions{NullText: s.NullText}
	if s.Delimiter != "" {
		opt.Delimiter = []rune(s.Delimiter)[0]
	}
	return opt
}

func writeFrame(s Sink, f *table.Frame) error {
	format, err := formatOf(s.Type, s.Path)
	if err != nil {
		return err
	}
	switch format {
	case "jsonl":
		return jsonlio.WriteAll(s.Path, f)
	case "parquet":
		return parquetio.WriteAll(s.Path, f)
	default:
		return csvio.WriteAll(s.Path, f, s.csvOptions())
	}
}

func openSink(s Sink, schema table.Schema) (table.ChunkSink, error) {
	format, err := formatOf(s.Type, s.Path)
	if err != nil {
		return nil, err
	}
	switch format {
	case "jsonl":
		return jsonlio.NewStreamWriter(s.Path)
	case "parquet":
		return parquetio.NewWriter(s.Path, schema)
	default:
		return csvio.NewStreamWriter(s.Path, schema, s.csvOptions())
	}
}
