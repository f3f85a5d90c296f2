package ipc

// Request is one newline-delimited JSON message on the control socket.
type Request struct {
	Command string `json:"command,omitempty"`
	// Ping asks for liveness only; Command is ignored.
	Ping bool `json:"ping,omitempty"`
}

// Response answers one Request.
type Response struct {
	OK    bool   `json:"ok"`
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}
