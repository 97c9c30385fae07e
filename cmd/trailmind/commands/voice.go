package commands

import (
	"fmt"
	"io"
	"iter"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trailmind/trailmind/pkg/audio"
	"github.com/trailmind/trailmind/pkg/realtime"
)

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Voice conversation over the realtime API",
	Long: `Talk to the travel assistant over the realtime voice API.

Audio is read from --input as raw PCM (little-endian 16-bit) or, with
--float, as raw float32 samples, resampled to 24kHz mono, and streamed
to the assistant. Transcripts and trip suggestions are printed as they
arrive. Use "-" to read audio from stdin.

Example:
  arecord -f FLOAT_LE -r 48000 -c 1 -t raw | trailmind voice --input - --float --rate 48000`,
	RunE: runVoice,
}

func init() {
	voiceCmd.Flags().String("input", "", "audio input file (raw PCM16 or float32), '-' for stdin")
	voiceCmd.Flags().Bool("float", false, "input is raw float32 samples instead of PCM16")
	voiceCmd.Flags().Int("rate", audio.DefaultTargetRate, "input sample rate in Hz")
	voiceCmd.Flags().Int("channels", 1, "input channel count")
	voiceCmd.Flags().Bool("websocket", false, "use the WebSocket transport instead of WebRTC")
}

func runVoice(cmd *cobra.Command, args []string) error {
	cliCtx, err := currentContext()
	if err != nil {
		return err
	}
	if cliCtx.APIKey == "" {
		return fmt.Errorf("context %q has no API key", cliCtx.Name)
	}
	ctx := cmd.Context()

	inputPath, _ := cmd.Flags().GetString("input")
	floatInput, _ := cmd.Flags().GetBool("float")
	rate, _ := cmd.Flags().GetInt("rate")
	channels, _ := cmd.Flags().GetInt("channels")
	useWebSocket, _ := cmd.Flags().GetBool("websocket")

	client := realtime.NewClient(cliCtx.APIKey)
	config := &realtime.ConnectConfig{
		Model:        cliCtx.RealtimeModel,
		Voice:        cliCtx.Voice,
		Instructions: voiceInstructions,
	}

	session, err := connectVoice(cmd, client, config, useWebSocket)
	if err != nil {
		return err
	}
	defer session.Close()

	select {
	case <-session.Ready():
	case <-time.After(realtime.DefaultHandshakeTimeout):
		return fmt.Errorf("session never became ready")
	case <-ctx.Done():
		return ctx.Err()
	}
	fmt.Println(styles.Help.Render("Connected. Speak, or Ctrl-C to hang up."))

	handler := realtime.NewHandler(realtime.Callbacks{
		OnTranscriptDelta: func(delta string) { fmt.Print(delta) },
		OnTranscript:      func(string) { fmt.Println() },
		OnTripData: func(data *realtime.TripData) {
			for _, trip := range data.Trips {
				fmt.Println(styles.RenderTripCard(trip))
			}
		},
		OnSpeechStarted: func() { fmt.Println(styles.Help.Render("[listening]")) },
		OnError: func(err error) {
			fmt.Println(styles.Error.Render("voice: " + err.Error()))
		},
	})

	// Hang up on Ctrl-C; closing the session ends the event loop below.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		session.Close()
	}()

	if inputPath != "" {
		go func() {
			if err := streamAudio(session, inputPath, floatInput, rate, channels); err != nil {
				fmt.Println(styles.Error.Render("audio: " + err.Error()))
			}
		}()
	}

	for event, err := range session.Events() {
		if err != nil {
			handler.HandleError(err)
			break
		}
		handler.Handle(event)
	}
	return nil
}

// voiceSession is the transport-independent surface the voice command
// needs.
type voiceSession interface {
	Ready() <-chan struct{}
	AppendAudio(audio []byte) error
	Events() iter.Seq2[*realtime.ServerEvent, error]
	Close() error
}

func connectVoice(cmd *cobra.Command, client *realtime.Client, config *realtime.ConnectConfig, useWebSocket bool) (voiceSession, error) {
	if useWebSocket {
		return client.ConnectWebSocket(cmd.Context(), config)
	}
	return client.ConnectWebRTC(cmd.Context(), config)
}

// streamAudio pumps the input file into the session through a Capture.
func streamAudio(session voiceSession, path string, floatInput bool, rate, channels int) error {
	var in io.Reader
	if path == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	capture, err := audio.NewCapture(audio.CaptureConfig{
		SourceRate:     rate,
		SourceChannels: channels,
		Send:           session.AppendAudio,
	})
	if err != nil {
		return err
	}
	defer capture.Stop()

	buf := make([]byte, 16384)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			samples := toFloat32(buf[:n], floatInput)
			if pushErr := capture.Push(samples); pushErr != nil {
				return pushErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// toFloat32 decodes a raw byte buffer into float32 samples.
func toFloat32(buf []byte, floatInput bool) []float32 {
	if !floatInput {
		return audio.PCM16ToFloat32(buf)
	}
	n := len(buf) / 4
	out := make([]float32, n)
	for i := range n {
		bits := uint32(buf[i*4]) | uint32(buf[i*4+1])<<8 | uint32(buf[i*4+2])<<16 | uint32(buf[i*4+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}

const voiceInstructions = `You are a friendly travel planning assistant for outdoor adventures.
Help the user plan hiking, camping, and backpacking trips. When you have
concrete suggestions, include them as JSON with a "trip" array.`
