package api

// Vector3 is a 3D vector as carried in JSON command payloads.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// TwistMsg is the JSON velocity command accepted over the WebSocket and
// HTTP surfaces. It mirrors the Twist wire schema; only linear.x and
// angular.z drive the rover, the remaining axes and the timestamp are
// accepted for client compatibility.
type TwistMsg struct {
	Linear      Vector3 `json:"linear"`
	Angular     Vector3 `json:"angular"`
	TimestampNs int64   `json:"timestamp_ns,omitempty"`
}
