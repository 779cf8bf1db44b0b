package schema

///////////////////////////////////////////////////////////////////////////////
// STREAM FRAME TYPES

// Frame type values carried on the "type" field of each streamed frame.
const (
	EventStart = "start" // Reset local accumulation
	EventChunk = "chunk" // Append content to the running text
	EventError = "error" // Error delta; the stream continues
	EventEnd   = "end"   // Terminator, no payload
)

// Frame is one "data: <json>" line of the streamed assistant response,
// the atomic unit reassembled from raw byte chunks.
type Frame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// SHORT-CIRCUIT RESPONSES

// ShortCircuitScheduleMeeting is returned when the backend decides the turn
// should open the meeting form instead of producing a token stream.
const ShortCircuitScheduleMeeting = "schedule_meeting"

// ShortCircuit is the single structured payload the server may answer with
// instead of a stream, detected by an application/json content type.
type ShortCircuit struct {
	Type string `json:"type"`
}
