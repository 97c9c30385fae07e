// Package audio converts captured microphone audio into the PCM16 frames
// the realtime transport expects.
//
// A Capture takes float32 sample buffers as they arrive from the audio
// device, downmixes to mono, resamples to the target rate, and emits
// fixed-size little-endian PCM16 frames through a callback.
package audio
