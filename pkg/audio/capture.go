package audio

import (
	"fmt"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"
)

const (
	// DefaultTargetRate is the sample rate the realtime transport expects.
	DefaultTargetRate = 24000

	// DefaultFrameBytes is 100ms of mono PCM16 at the default target rate.
	DefaultFrameBytes = DefaultTargetRate / 10 * 2
)

// CaptureConfig configures a Capture.
type CaptureConfig struct {
	// SourceRate is the sample rate of the incoming audio. Required.
	SourceRate int

	// SourceChannels is the channel count of the incoming audio.
	// Default: 1.
	SourceChannels int

	// TargetRate is the output sample rate. Default: DefaultTargetRate.
	TargetRate int

	// FrameBytes is the size of each emitted frame in bytes. Must be
	// even. Default: DefaultFrameBytes.
	FrameBytes int

	// Send receives each completed PCM16 frame. Required. The slice is
	// reused between calls; the callback must not retain it.
	Send func(pcm []byte) error
}

// Capture turns raw device samples into fixed-size PCM16 frames. Push and
// Stop must be called from a single goroutine, typically the audio
// device's callback thread.
type Capture struct {
	config    CaptureConfig
	resampler resampling.Resampler
	frame     []byte
	filled    int

	stopOnce sync.Once
	stopped  bool
}

// NewCapture creates a Capture. A resampler is only engaged when the
// source and target rates differ.
func NewCapture(config CaptureConfig) (*Capture, error) {
	if config.SourceRate <= 0 {
		return nil, fmt.Errorf("audio: source rate is required")
	}
	if config.Send == nil {
		return nil, fmt.Errorf("audio: send callback is required")
	}
	if config.SourceChannels <= 0 {
		config.SourceChannels = 1
	}
	if config.TargetRate <= 0 {
		config.TargetRate = DefaultTargetRate
	}
	if config.FrameBytes <= 0 {
		config.FrameBytes = DefaultFrameBytes
	}
	if config.FrameBytes%2 != 0 {
		return nil, fmt.Errorf("audio: frame size must be even, got %d", config.FrameBytes)
	}

	c := &Capture{
		config: config,
		frame:  make([]byte, config.FrameBytes),
	}

	if config.SourceRate != config.TargetRate {
		r, err := resampling.New(&resampling.Config{
			InputRate:  float64(config.SourceRate),
			OutputRate: float64(config.TargetRate),
			Channels:   1,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("audio: create resampler: %w", err)
		}
		c.resampler = r
	}

	return c, nil
}

// Push processes one buffer of interleaved float32 samples from the
// device. Completed frames are handed to the Send callback; a partial
// frame is carried over to the next Push.
func (c *Capture) Push(samples []float32) error {
	if c.stopped {
		return fmt.Errorf("audio: capture stopped")
	}
	if len(samples) == 0 {
		return nil
	}

	mono := DownmixToMono(samples, c.config.SourceChannels)

	if c.resampler != nil {
		input := make([]float64, len(mono))
		for i, s := range mono {
			input[i] = float64(s)
		}
		output, err := c.resampler.Process(input)
		if err != nil {
			return fmt.Errorf("audio: resample: %w", err)
		}
		mono = make([]float32, len(output))
		for i, s := range output {
			mono[i] = float32(s)
		}
	}

	return c.emit(Float32ToPCM16(mono))
}

// emit appends PCM bytes to the frame buffer and flushes full frames.
func (c *Capture) emit(pcm []byte) error {
	for len(pcm) > 0 {
		n := copy(c.frame[c.filled:], pcm)
		c.filled += n
		pcm = pcm[n:]
		if c.filled == len(c.frame) {
			c.filled = 0
			if err := c.config.Send(c.frame); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stop flushes the remaining partial frame and shuts the capture down.
// Idempotent; Push calls after Stop fail.
func (c *Capture) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		c.stopped = true
		if c.filled > 0 {
			err = c.config.Send(c.frame[:c.filled])
			c.filled = 0
		}
	})
	return err
}
