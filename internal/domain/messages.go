package domain

// Client message types.
const (
	MessageJoin   = "join"
	MessageVote   = "vote"
	MessageReveal = "reveal"
	MessageReset  = "reset"
	MessageLeave  = "leave"
)

// Server message types.
const (
	MessageUsers    = "users"
	MessageRevealed = "revealed"
	MessageError    = "error"
)

// ClientMessage is an inbound websocket message. Only the fields relevant to
// the message type are set.
type ClientMessage struct {
	Type        string `json:"type"`
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Card        string `json:"card,omitempty"`
	CardType    string `json:"cardType,omitempty"`
	IsSpectator bool   `json:"isSpectator,omitempty"`
}

// ServerMessage is an outbound websocket message. Every attached session of a
// room receives the same serialized payload.
type ServerMessage struct {
	Type     string   `json:"type"`
	Users    []User   `json:"users,omitempty"`
	Revealed *bool    `json:"revealed,omitempty"`
	CardType CardType `json:"cardType,omitempty"`
	Stats    *Stats   `json:"stats,omitempty"`
	Error    string   `json:"error,omitempty"`
}
