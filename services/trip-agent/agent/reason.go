package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"trip-agent/reasoner"
	"trip-agent/tools"
)

const plannerSystemPrompt = `You are a trip planning assistant. You help the user plan a trip by
calling the provided tools for live data (weather, attractions, restaurants,
activities, transport, currency rates) and for budget arithmetic. Call tools
whenever the answer depends on live data or calculation; never invent such
values. When a tool result is marked degraded=true, mention that the data
came from a fallback source. When a tool result reports an error, work around
it and note the gap in the final answer instead of failing. When you have
everything you need, reply with the final trip plan as plain text and no
further tool calls.`

// Reasoner decides the next action for a conversation: a final answer or a
// batch of tool requests.
type Reasoner interface {
	Reason(ctx context.Context, conv *Conversation) (*ReasonerOutput, error)
}

// llmReasoner performs one reasoning step against the chat-completions
// client. It is stateless: every call submits the full conversation behind
// the fixed system directive.
type llmReasoner struct {
	client *reasoner.Client
	tools  []reasoner.Tool
}

func newLLMReasoner(client *reasoner.Client, defs []tools.ToolDefinition) *llmReasoner {
	wired := make([]reasoner.Tool, 0, len(defs))
	for _, def := range defs {
		wired = append(wired, reasoner.Tool{
			Type: def.Type,
			Function: reasoner.Function{
				Name:        def.Function.Name,
				Description: def.Function.Description,
				Parameters:  def.Function.Parameters,
			},
		})
	}
	return &llmReasoner{client: client, tools: wired}
}

func (r *llmReasoner) Reason(ctx context.Context, conv *Conversation) (*ReasonerOutput, error) {
	resp, err := r.client.Chat(ctx, reasoner.ChatRequest{
		Messages: buildMessages(conv),
		Tools:    r.tools,
	})
	if err != nil {
		return nil, err
	}

	message := resp.Choices[0].Message
	out := &ReasonerOutput{Text: strings.TrimSpace(message.Content)}
	for _, call := range message.ToolCalls {
		id := call.ID
		if id == "" {
			id = uuid.NewString()
		}
		out.ToolRequests = append(out.ToolRequests, ToolRequest{
			ID:   id,
			Name: call.Function.Name,
			Args: json.RawMessage(call.Function.Arguments),
		})
	}
	return out, nil
}

// buildMessages converts conversation turns to chat messages, prepending the
// system directive.
func buildMessages(conv *Conversation) []reasoner.Message {
	messages := []reasoner.Message{{Role: "system", Content: plannerSystemPrompt}}
	for _, turn := range conv.Turns() {
		switch t := turn.(type) {
		case *UserQuery:
			messages = append(messages, reasoner.Message{Role: "user", Content: t.Text})
		case *ReasonerOutput:
			msg := reasoner.Message{Role: "assistant", Content: t.Text}
			for _, req := range t.ToolRequests {
				msg.ToolCalls = append(msg.ToolCalls, reasoner.ToolCall{
					ID:   req.ID,
					Type: "function",
					Function: reasoner.FunctionCall{
						Name:      req.Name,
						Arguments: string(req.Args),
					},
				})
			}
			messages = append(messages, msg)
		case *ToolResult:
			messages = append(messages, reasoner.Message{
				Role:       "tool",
				Content:    t.Payload,
				ToolCallID: t.RequestID,
			})
		}
	}
	return messages
}
