package ws

import "encoding/json"

// Client -> server event names.
const (
	EvJoin           = "join"
	EvCodeChange     = "codeChange"
	EvLeaveRoom      = "leaveRoom"
	EvTyping         = "typing"
	EvLanguageChange = "languageChange"
	EvCompileCode    = "compileCode"
)

// Server -> client event names.
const (
	EvCodeUpdate     = "codeUpdate"
	EvUserJoined     = "userJoined"
	EvUserTyping     = "userTyping"
	EvLanguageUpdate = "languageUpdate"
	EvCodeResponse   = "codeResponse"
)

// Envelope is the frame shape in both directions: a named event plus its
// payload, left raw so each handler decodes only its own shape.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type joinPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

type codeChangePayload struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

type typingPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

type languageChangePayload struct {
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
}

type compileCodePayload struct {
	Code     string `json:"code"`
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
	Version  string `json:"version"`
	Input    string `json:"input"`
}

// marshalEvent builds an outbound frame. Payloads are strings and
// string slices; they always marshal.
func marshalEvent(event string, data any) []byte {
	raw, _ := json.Marshal(data)
	b, _ := json.Marshal(Envelope{Event: event, Data: raw})
	return b
}

// marshalRawEvent wraps an already-encoded payload (execution results are
// forwarded verbatim, never re-encoded).
func marshalRawEvent(event string, raw json.RawMessage) []byte {
	b, _ := json.Marshal(Envelope{Event: event, Data: raw})
	return b
}
