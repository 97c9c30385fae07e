// Package realtime implements the low-latency voice pipeline for the trip
// planner: session negotiation with the voice broker, a WebRTC transport
// (with a WebSocket variant for server-side use), and a stream handler that
// reconstructs transcripts and extracts embedded trip data.
//
// # Connecting
//
//	client := realtime.NewClient(apiKey)
//	session, err := client.ConnectWebRTC(ctx, &realtime.ConnectConfig{
//	    Voice: realtime.VoiceAlloy,
//	})
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
// The transport sends the session configuration (modalities, PCM16 formats,
// server-side voice activity detection) as soon as the data channel opens,
// before any audio is streamed. Wait on Ready before appending audio:
//
//	<-session.Ready()
//	session.AppendAudio(pcmFrame)
//
// # Receiving events
//
// Either iterate events directly, or attach a Handler for transcript
// reconstruction and trip-data extraction:
//
//	handler := realtime.NewHandler(realtime.Callbacks{
//	    OnTranscriptDelta: func(delta string) { fmt.Print(delta) },
//	    OnTripData:        func(data *realtime.TripData) { render(data) },
//	})
//	for event, err := range session.Events() {
//	    if err != nil {
//	        handler.HandleError(err)
//	        break
//	    }
//	    handler.Handle(event)
//	}
//
// Failures are not recovered internally: any error surfaces to the caller
// and the session transitions to the error state. Reconnection is an
// explicit caller decision.
package realtime
