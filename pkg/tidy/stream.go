package tidy

import (
	"context"
	"errors"
	"io"
)

// ChunkSource yields frames in chunks until io.EOF.
type ChunkSource interface {
	Next() (*Frame, error)
}

// ChunkSink consumes frames, typically writing them out.
type ChunkSink interface {
	Write(*Frame) error
	Close() error
}

// RunStream pulls chunks from src, applies the pipeline, and writes to
// sink. The sink is closed on every path; a close error is reported only
// when nothing else failed.
func RunStream(ctx context.Context, p *Pipeline, src ChunkSource, sink ChunkSink) (err error) {
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		out, err := p.Run(ctx, f)
		if err != nil {
			return err
		}
		if err := sink.Write(out); err != nil {
			return err
		}
	}
}

// FrameSource serves one already materialized frame as a single chunk.
type FrameSource struct {
	frame *Frame
	done  bool
}

func NewFrameSource(f *Frame) *FrameSource { return &FrameSource{frame: f} }

func (s *FrameSource) Next() (*Frame, error) {
	if s.done || s.frame == nil {
		return nil, io.EOF
	}
	s.done = true
	return s.frame, nil
}

// MultiSink fans every chunk out to all of its sinks in order.
type MultiSink []ChunkSink

func (m MultiSink) Write(f *Frame) error {
	for _, s := range m {
		if err := s.Write(f); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Collector is a sink that concatenates every chunk into one frame.
type Collector struct {
	frame *Frame
}

func (c *Collector) Write(f *Frame) error {
	if c.frame == nil {
		nf, err := NewFrame(f.Schema())
		if err != nil {
			return err
		}
		c.frame = nf
	}
	_, err := c.frame.AppendFrame(f, -1)
	return err
}

func (c *Collector) Close() error { return nil }

// Frame returns everything written so far, or nil if nothing was.
func (c *Collector) Frame() *Frame { return c.frame }
