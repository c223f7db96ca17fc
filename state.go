package opcua

// ConnState is the client's connection state (spec §3): Disconnected,
// Connected (TCP + Hello/Ack), SecureChannel (OPN complete), Session
// (activated), SessionRenewed (reconnected session continuing an existing
// one). Transitions are monotonic forward except for Disconnected and
// renewal loops.
type ConnState uint8

const (
	Disconnected ConnState = iota
	Connected
	SecureChannelOpen
	SessionActive
	SessionRenewed
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connected:
		return "Connected"
	case SecureChannelOpen:
		return "SecureChannel"
	case SessionActive:
		return "Session"
	case SessionRenewed:
		return "SessionRenewed"
	default:
		return "Unknown"
	}
}
