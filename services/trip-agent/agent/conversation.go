package agent

import "encoding/json"

// Turn is one entry of a planning conversation: the user query, a reasoner
// output, or a tool result.
type Turn interface {
	isTurn()
}

// UserQuery opens a conversation.
type UserQuery struct {
	Text string `json:"text"`
}

// ReasonerOutput is one reasoning step: free text plus zero or more tool
// invocation requests.
type ReasonerOutput struct {
	Text         string        `json:"text"`
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`
}

// ToolRequest is produced only by the reasoning step and consumed only by
// the dispatcher. IDs are unique within a conversation.
type ToolRequest struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// ToolResult fulfils exactly one ToolRequest.
type ToolResult struct {
	RequestID string `json:"request_id"`
	Payload   string `json:"payload"`
	IsError   bool   `json:"is_error"`
}

func (*UserQuery) isTurn()      {}
func (*ReasonerOutput) isTurn() {}
func (*ToolResult) isTurn()     {}

// Conversation is the append-only ordered record of turns for one planning
// session. The orchestrator owns it exclusively for the query's lifetime and
// discards it after the final answer.
type Conversation struct {
	turns []Turn
}

func NewConversation(query string) *Conversation {
	return &Conversation{turns: []Turn{&UserQuery{Text: query}}}
}

func (c *Conversation) Append(t Turn) {
	c.turns = append(c.turns, t)
}

// Turns returns a snapshot of the turn sequence.
func (c *Conversation) Turns() []Turn {
	return append([]Turn(nil), c.turns...)
}

func (c *Conversation) Len() int {
	return len(c.turns)
}
