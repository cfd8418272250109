package dto

const (
	StreamFrameSnapshot = "snapshot"
	StreamFrameError    = "error"
)

// StreamFrame is one websocket message of a snapshot stream.
type StreamFrame struct {
	Type    string      `json:"type"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}
