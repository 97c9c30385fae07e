package audio_test

import (
	"testing"

	"github.com/trailmind/trailmind/pkg/audio"
)

// collector accumulates emitted frames, copying each because the Capture
// reuses its frame buffer.
type collector struct {
	frames [][]byte
}

func (c *collector) send(pcm []byte) error {
	frame := make([]byte, len(pcm))
	copy(frame, pcm)
	c.frames = append(c.frames, frame)
	return nil
}

func TestCaptureEmitsFixedFrames(t *testing.T) {
	var got collector
	c, err := audio.NewCapture(audio.CaptureConfig{
		SourceRate: 24000,
		FrameBytes: 8,
		Send:       got.send,
	})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}

	// 10 samples = 20 bytes: two full frames plus 4 leftover bytes.
	if err := c.Push(make([]float32, 10)); err != nil {
		t.Fatalf("Push: %v", err)
	}

	if len(got.frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(got.frames))
	}
	for i, f := range got.frames {
		if len(f) != 8 {
			t.Errorf("frame %d len = %d, want 8", i, len(f))
		}
	}
}

func TestCaptureCarriesPartialFrameAcrossPushes(t *testing.T) {
	var got collector
	c, err := audio.NewCapture(audio.CaptureConfig{
		SourceRate: 24000,
		FrameBytes: 8,
		Send:       got.send,
	})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}

	if err := c.Push(make([]float32, 3)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(got.frames) != 0 {
		t.Fatalf("frames = %d before buffer fills, want 0", len(got.frames))
	}
	if err := c.Push(make([]float32, 1)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(got.frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(got.frames))
	}
}

func TestCaptureStopFlushesPartialFrame(t *testing.T) {
	var got collector
	c, err := audio.NewCapture(audio.CaptureConfig{
		SourceRate: 24000,
		FrameBytes: 8,
		Send:       got.send,
	})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}

	if err := c.Push([]float32{0.5, 0.5, 0.5}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if len(got.frames) != 1 || len(got.frames[0]) != 6 {
		t.Fatalf("frames = %v, want one 6-byte flush", got.frames)
	}
}

func TestCaptureStopIdempotent(t *testing.T) {
	var got collector
	c, err := audio.NewCapture(audio.CaptureConfig{
		SourceRate: 24000,
		FrameBytes: 8,
		Send:       got.send,
	})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}

	c.Push([]float32{0.5})
	c.Stop()
	c.Stop()

	if len(got.frames) != 1 {
		t.Fatalf("frames = %d, partial frame flushed more than once", len(got.frames))
	}
	if err := c.Push([]float32{0.5}); err == nil {
		t.Error("expected error pushing after Stop")
	}
}

func TestCaptureDownmixesStereo(t *testing.T) {
	var got collector
	c, err := audio.NewCapture(audio.CaptureConfig{
		SourceRate:     24000,
		SourceChannels: 2,
		FrameBytes:     4,
		Send:           got.send,
	})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}

	// Two stereo frames downmix to two mono samples, exactly one frame.
	if err := c.Push([]float32{1.0, 0.0, -1.0, 0.0}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(got.frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(got.frames))
	}

	s0 := int16(got.frames[0][0]) | int16(got.frames[0][1])<<8
	if s0 != 16383 {
		t.Errorf("downmixed sample = %d, want 16383", s0)
	}
}

func TestCaptureResamples(t *testing.T) {
	var got collector
	c, err := audio.NewCapture(audio.CaptureConfig{
		SourceRate: 48000,
		TargetRate: 24000,
		FrameBytes: 480,
		Send:       got.send,
	})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}

	// Push one second of 48kHz audio in 10ms chunks. Halving the rate
	// should yield roughly 24000 samples, i.e. about 100 full frames.
	for range 100 {
		if err := c.Push(make([]float32, 480)); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	c.Stop()

	var total int
	for _, f := range got.frames {
		total += len(f)
	}
	samples := total / 2
	if samples < 22000 || samples > 26000 {
		t.Errorf("resampled samples = %d, want about 24000", samples)
	}
}

func TestNewCaptureValidation(t *testing.T) {
	if _, err := audio.NewCapture(audio.CaptureConfig{Send: func([]byte) error { return nil }}); err == nil {
		t.Error("expected error without source rate")
	}
	if _, err := audio.NewCapture(audio.CaptureConfig{SourceRate: 24000}); err == nil {
		t.Error("expected error without send callback")
	}
	if _, err := audio.NewCapture(audio.CaptureConfig{
		SourceRate: 24000,
		FrameBytes: 7,
		Send:       func([]byte) error { return nil },
	}); err == nil {
		t.Error("expected error for odd frame size")
	}
}
