package table

import (
	"context"
	"errors"
	"io"
	"testing"
)

type fillTransform struct{ value string }

func (t *fillTransform) Name() string { return "fill" }
func (t *fillTransform) Apply(ctx context.Context, f *Frame) (*Frame, error) {
	out := f.Clone()
	s, err := out.StringColumn("s")
	if err != nil {
		return nil, err
	}
	for i := 0; i < s.Len(); i++ {
		if s.IsNull(i) {
			s.Set(i, t.value)
		}
	}
	return out, nil
}

type failTransform struct{}

func (failTransform) Name() string                                  { return "fail" }
func (failTransform) Apply(context.Context, *Frame) (*Frame, error) { return nil, errBoom }

var errBoom = errors.New("boom")

func TestPipeline(t *testing.T) {
	f := makeFrame(14)
	p := NewPipeline().Add(&noopTransform{}).Add(&fillTransform{value: "y"})
	if p.Len() != 2 || p.Steps()[1] != "fill" {
		t.Fatalf("steps %v", p.Steps())
	}
	out, err := p.Run(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := out.StringColumn("s")
	if v, _ := s.Get(7); v != "y" || s.Missing() != 0 {
		t.Fatalf("s[7] = %q, missing %d", v, s.Missing())
	}
	orig, _ := f.StringColumn("s")
	if orig.Missing() != 2 {
		t.Fatalf("input mutated: %d missing", orig.Missing())
	}
}

func TestPipelineWrapsStepError(t *testing.T) {
	_, err := NewPipeline().Add(failTransform{}).Run(context.Background(), makeFrame(1))
	if !errors.Is(err, errBoom) || err.Error() != "fail: boom" {
		t.Fatalf("got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPipeline().Add(&noopTransform{}).Run(ctx, makeFrame(1)); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
}

type sliceSource struct{ chunks []*Frame }

func (s *sliceSource) Next() (*Frame, error) {
	if len(s.chunks) == 0 {
		return nil, io.EOF
	}
	f := s.chunks[0]
	s.chunks = s.chunks[1:]
	return f, nil
}

type collectSink struct {
	frames []*Frame
	closed bool
}

func (c *collectSink) Write(f *Frame) error { c.frames = append(c.frames, f); return nil }
func (c *collectSink) Close() error         { c.closed = true; return nil }

func TestRunStream(t *testing.T) {
	src := &sliceSource{chunks: []*Frame{makeFrame(10), makeFrame(4)}}
	sink := &collectSink{}
	rows, err := RunStream(context.Background(), NewPipeline().Add(&fillTransform{value: "z"}), src, sink)
	if err != nil {
		t.Fatal(err)
	}
	if rows != 14 || len(sink.frames) != 2 || !sink.closed {
		t.Fatalf("rows=%d frames=%d closed=%v", rows, len(sink.frames), sink.closed)
	}
	s, _ := sink.frames[0].StringColumn("s")
	if v, _ := s.Get(0); v != "z" {
		t.Fatalf("s[0] = %q", v)
	}
}

func TestRunStreamClosesSinkOnError(t *testing.T) {
	src := &sliceSource{chunks: []*Frame{makeFrame(3)}}
	sink := &collectSink{}
	if _, err := RunStream(context.Background(), NewPipeline().Add(failTransform{}), src, sink); !errors.Is(err, errBoom) {
		t.Fatalf("got %v", err)
	}
	if !sink.closed {
		t.Fatal("sink not closed")
	}
}
