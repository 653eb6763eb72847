package jsonlio

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wdm0006/catfill/pkg/table"
)

var survey = filepath.FromSlash("../../../examples/data/survey.jsonl")

func TestJSONLInferAndRead(t *testing.T) {
	fr, err := ReadFile(survey, ReaderOptions{SampleRows: 10})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(fr.Schema().Names(), ","); got != "device,id,plan,region,score" {
		t.Fatalf("columns %s", got)
	}
	if fr.Rows() != 8 {
		t.Fatalf("expected 8 rows, got %d", fr.Rows())
	}
	plan, err := fr.StringColumn("plan")
	if err != nil {
		t.Fatal(err)
	}
	device, _ := fr.StringColumn("device")
	// explicit null and absent key both read as missing
	if plan.Missing() != 2 || device.Missing() != 1 {
		t.Fatalf("plan missing %d, device missing %d", plan.Missing(), device.Missing())
	}
	if cs, _ := fr.Schema().Lookup("id"); cs.Type != table.KindInt {
		t.Fatalf("id kind %s", cs.Type)
	}
}

func TestForceStringNumbers(t *testing.T) {
	in := `{"code":1,"x":"a"}` + "\n" + `{"code":2,"x":"NA"}` + "\n"
	r := NewReaderFrom(strings.NewReader(in), ReaderOptions{ForceString: []string{"code"}})
	schema, err := r.InferSchema()
	if err != nil {
		t.Fatal(err)
	}
	fr, err := r.ReadAll(schema)
	if err != nil {
		t.Fatal(err)
	}
	code, err := fr.StringColumn("code")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := code.Get(1); v != "2" {
		t.Fatalf("code[1] = %q", v)
	}
	x, _ := fr.StringColumn("x")
	if !x.IsNull(1) {
		t.Fatal("NA string should be missing")
	}
}

func TestStreamReadJSONL(t *testing.T) {
	sr, c, err := NewStreamReader(survey, ReaderOptions{SampleRows: 3}, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close() }()
	total := 0
	for {
		fr, err := sr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		total += fr.Rows()
	}
	if total != 8 {
		t.Fatalf("expected 8 rows, got %d", total)
	}
}

func TestWriteOmitsMissing(t *testing.T) {
	in := `{"a":"x","b":null}` + "\n" + `{"b":"y","a":"z"}` + "\n"
	r := NewReaderFrom(strings.NewReader(in), ReaderOptions{})
	schema, err := r.InferSchema()
	if err != nil {
		t.Fatal(err)
	}
	fr, err := r.ReadAll(schema)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, fr); err != nil {
		t.Fatal(err)
	}
	want := `{"a":"x"}` + "\n" + `{"a":"z","b":"y"}` + "\n"
	if buf.String() != want {
		t.Fatalf("got %q", buf.String())
	}
}
