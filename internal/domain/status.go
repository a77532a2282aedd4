package domain

// Status is the externally observable state of a managed connection.
// It is mutated only by the session machine.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusConnectionLost
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusConnectionLost:
		return "connection_lost"
	default:
		return "unknown"
	}
}
