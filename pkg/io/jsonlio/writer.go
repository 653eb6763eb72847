package jsonlio

import (
	"encoding/json"
	"io"

	iox "github.com/wdm0006/catfill/pkg/io/ioutils"
	"github.com/wdm0006/catfill/pkg/table"
)

// WriteAll writes one object per row; missing cells are omitted.
func WriteAll(path string, f *table.Frame) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Write(out, f); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Write encodes f as JSON lines onto w. encoding/json sorts map keys, so
// output is deterministic.
func Write(w io.Writer, f *table.Frame) error {
	enc := json.NewEncoder(w)
	for r := 0; r < f.Rows(); r++ {
		if err := enc.Encode(iox.Record(f, r)); err != nil {
			return err
		}
	}
	return nil
}
