package audio_test

import (
	"testing"

	"github.com/trailmind/trailmind/pkg/audio"
)

func TestFloat32ToPCM16(t *testing.T) {
	pcm := audio.Float32ToPCM16([]float32{0, 1.0, -1.0, 0.5})
	if len(pcm) != 8 {
		t.Fatalf("len = %d, want 8", len(pcm))
	}

	sample := func(i int) int16 {
		return int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
	}
	if got := sample(0); got != 0 {
		t.Errorf("sample 0 = %d, want 0", got)
	}
	if got := sample(1); got != 32767 {
		t.Errorf("sample 1 = %d, want 32767", got)
	}
	if got := sample(2); got != -32768 {
		t.Errorf("sample 2 = %d, want -32768", got)
	}
	if got := sample(3); got != 16383 {
		t.Errorf("sample 3 = %d, want 16383", got)
	}
}

func TestFloat32ToPCM16Clamps(t *testing.T) {
	pcm := audio.Float32ToPCM16([]float32{2.5, -3.0})

	if got := int16(pcm[0]) | int16(pcm[1])<<8; got != 32767 {
		t.Errorf("overdriven sample = %d, want 32767", got)
	}
	if got := int16(pcm[2]) | int16(pcm[3])<<8; got != -32768 {
		t.Errorf("overdriven sample = %d, want -32768", got)
	}
}

func TestPCM16ToFloat32RoundTrip(t *testing.T) {
	in := []float32{0, 0.25, -0.25, 0.99}
	out := audio.PCM16ToFloat32(audio.Float32ToPCM16(in))
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		diff := out[i] - in[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > 0.001 {
			t.Errorf("sample %d = %f, want ~%f", i, out[i], in[i])
		}
	}
}

func TestDownmixToMono(t *testing.T) {
	stereo := []float32{0.5, -0.5, 1.0, 0.0}
	mono := audio.DownmixToMono(stereo, 2)
	if len(mono) != 2 {
		t.Fatalf("len = %d, want 2", len(mono))
	}
	if mono[0] != 0 || mono[1] != 0.5 {
		t.Errorf("mono = %v, want [0 0.5]", mono)
	}
}

func TestDownmixToMonoPassthrough(t *testing.T) {
	in := []float32{0.1, 0.2}
	out := audio.DownmixToMono(in, 1)
	if &out[0] != &in[0] {
		t.Error("mono input should pass through without copying")
	}
}
