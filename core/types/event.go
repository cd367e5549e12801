package types

// Event is the wire representation of a state transition broadcast to
// external observers and indexers.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
