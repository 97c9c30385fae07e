package realtime

// State is the lifecycle state of a session. There is no automatic
// reconnection: a failure lands in StateError and stays there until the
// caller opens a fresh session.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateError      State = "error"
)
