package util

import "time"

// RequestKind is what a mode request asks for.
type RequestKind int

const (
	// Toggle flips the mode.
	Toggle RequestKind = iota
	// WantNormal and WantEmergency only switch when the mode differs.
	WantNormal
	WantEmergency
)

func (k RequestKind) String() string {
	switch k {
	case Toggle:
		return "toggle"
	case WantNormal:
		return "normal"
	case WantEmergency:
		return "emergency"
	}
	return "unknown"
}

// Request is a mode change asked for by a button, key, HTTP call, MQTT
// message or the night schedule.
type Request struct {
	Source    string
	Kind      RequestKind
	Timestamp time.Time
}

func NewRequest(source string, kind RequestKind, timestamp time.Time) *Request {
	return &Request{
		Source:    source,
		Kind:      kind,
		Timestamp: timestamp,
	}
}
