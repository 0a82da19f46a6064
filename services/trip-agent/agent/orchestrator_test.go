package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"trip-agent/providers"
	"trip-agent/tools"
)

// scriptedReasoner replays a fixed sequence of outputs, like a recorded
// model would.
type scriptedReasoner struct {
	outputs []*ReasonerOutput
	err     error
	calls   int
}

func (s *scriptedReasoner) Reason(ctx context.Context, conv *Conversation) (*ReasonerOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.calls >= len(s.outputs) {
		return nil, fmt.Errorf("script exhausted after %d calls", s.calls)
	}
	out := s.outputs[s.calls]
	s.calls++
	return out, nil
}

type fixedBackend struct {
	name string
	data any
}

func (f *fixedBackend) Name() string { return f.name }

func (f *fixedBackend) Fetch(ctx context.Context, q providers.Query) (any, error) {
	return f.data, nil
}

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	weather := providers.NewChain(tools.CapabilityWeather, &fixedBackend{
		name: "open-meteo",
		data: providers.DailyForecast{City: "Paris", Days: []providers.ForecastDay{{Date: "2026-08-27", TempMaxC: 24}}},
	})

	reg := tools.NewRegistry()
	reg.MustRegister(
		tools.NewWeatherTool(weather),
		tools.NewEstimateStayCostTool(),
		tools.NewDailyBudgetTool(),
	)
	return reg
}

func TestRunImmediateAnswer(t *testing.T) {
	r := &scriptedReasoner{outputs: []*ReasonerOutput{{Text: "Pack light."}}}
	o := NewOrchestrator(r, testRegistry(t), 5)

	outcome, err := o.Run(context.Background(), "what should I pack?")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Answer != "Pack light." {
		t.Errorf("Answer = %q", outcome.Answer)
	}
	if outcome.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", outcome.Iterations)
	}
	// Conversation: UserQuery + ReasonerOutput.
	if outcome.Conversation.Len() != 2 {
		t.Errorf("conversation turns = %d, want 2", outcome.Conversation.Len())
	}
}

func TestRunParisWeatherAndStayCost(t *testing.T) {
	r := &scriptedReasoner{outputs: []*ReasonerOutput{
		{
			Text: "",
			ToolRequests: []ToolRequest{
				{ID: "call_1", Name: "get_weather", Args: json.RawMessage(`{"city": "Paris"}`)},
				{ID: "call_2", Name: "estimate_stay_cost", Args: json.RawMessage(`{"nightly_rate": 100, "nights": 3}`)},
			},
		},
		{Text: "Paris peaks at 24C and three nights cost 300 in total."},
	}}
	o := NewOrchestrator(r, testRegistry(t), 5)

	outcome, err := o.Run(context.Background(), "weather in Paris and total cost for 3 nights at $100/night")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(outcome.Answer, "24C") || !strings.Contains(outcome.Answer, "300") {
		t.Errorf("Answer = %q, want both tool values referenced", outcome.Answer)
	}
	if outcome.Iterations != 2 {
		t.Errorf("Iterations = %d, want 2", outcome.Iterations)
	}

	// Turn order: UserQuery, ReasonerOutput, two ToolResults in request
	// order, final ReasonerOutput.
	turns := outcome.Conversation.Turns()
	if len(turns) != 5 {
		t.Fatalf("turns = %d, want 5", len(turns))
	}
	first, ok := turns[2].(*ToolResult)
	if !ok || first.RequestID != "call_1" {
		t.Fatalf("turns[2] = %#v, want ToolResult for call_1", turns[2])
	}
	second, ok := turns[3].(*ToolResult)
	if !ok || second.RequestID != "call_2" {
		t.Fatalf("turns[3] = %#v, want ToolResult for call_2", turns[3])
	}
	if first.IsError || second.IsError {
		t.Errorf("unexpected tool errors: %q / %q", first.Payload, second.Payload)
	}
	if !strings.Contains(second.Payload, "300") {
		t.Errorf("stay cost payload = %q, want 300", second.Payload)
	}
}

func TestRunAlwaysRequestingToolsHitsIterationBound(t *testing.T) {
	const limit = 4
	outputs := make([]*ReasonerOutput, limit+2)
	for i := range outputs {
		outputs[i] = &ReasonerOutput{ToolRequests: []ToolRequest{
			{ID: fmt.Sprintf("call_%d", i), Name: "get_weather", Args: json.RawMessage(`{"city": "Paris"}`)},
		}}
	}
	r := &scriptedReasoner{outputs: outputs}
	o := NewOrchestrator(r, testRegistry(t), limit)

	_, err := o.Run(context.Background(), "loop forever")
	if !errors.Is(err, ErrMaxIterationsExceeded) {
		t.Fatalf("err = %v, want ErrMaxIterationsExceeded", err)
	}
	if r.calls != limit {
		t.Errorf("reasoner calls = %d, want %d", r.calls, limit)
	}
}

func TestRunReasonerFailureIsFatal(t *testing.T) {
	r := &scriptedReasoner{err: fmt.Errorf("connection refused")}
	o := NewOrchestrator(r, testRegistry(t), 5)

	_, err := o.Run(context.Background(), "anything")
	if !errors.Is(err, ErrReasonerUnavailable) {
		t.Fatalf("err = %v, want ErrReasonerUnavailable", err)
	}
}

func TestRunToolFailureDoesNotAbortLoop(t *testing.T) {
	r := &scriptedReasoner{outputs: []*ReasonerOutput{
		{ToolRequests: []ToolRequest{
			{ID: "call_1", Name: "no_such_tool", Args: json.RawMessage(`{}`)},
		}},
		{Text: "Answered despite the tool failure."},
	}}
	o := NewOrchestrator(r, testRegistry(t), 5)

	outcome, err := o.Run(context.Background(), "plan something")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res, ok := outcome.Conversation.Turns()[2].(*ToolResult)
	if !ok || !res.IsError {
		t.Fatalf("turns[2] = %#v, want error ToolResult", outcome.Conversation.Turns()[2])
	}
	if !strings.Contains(res.Payload, "unknown tool") {
		t.Errorf("payload = %q, want unknown tool description", res.Payload)
	}
}

func TestRunCancelledContext(t *testing.T) {
	r := &scriptedReasoner{outputs: []*ReasonerOutput{{Text: "never reached"}}}
	o := NewOrchestrator(r, testRegistry(t), 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := o.Run(ctx, "anything"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

// Every ToolResult must answer exactly one ToolRequest already present in
// the conversation, and no request may be fulfilled twice.
func TestConversationResultInvariant(t *testing.T) {
	r := &scriptedReasoner{outputs: []*ReasonerOutput{
		{ToolRequests: []ToolRequest{
			{ID: "a", Name: "get_weather", Args: json.RawMessage(`{"city": "Paris"}`)},
			{ID: "b", Name: "daily_budget", Args: json.RawMessage(`{"total": 300, "days": 3}`)},
		}},
		{ToolRequests: []ToolRequest{
			{ID: "c", Name: "daily_budget", Args: json.RawMessage(`{"total": 300, "days": 0}`)},
		}},
		{Text: "done"},
	}}
	o := NewOrchestrator(r, testRegistry(t), 5)

	outcome, err := o.Run(context.Background(), "budget check")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	requested := make(map[string]bool)
	fulfilled := make(map[string]int)
	for _, turn := range outcome.Conversation.Turns() {
		switch tt := turn.(type) {
		case *ReasonerOutput:
			for _, req := range tt.ToolRequests {
				if requested[req.ID] {
					t.Errorf("duplicate request id %q", req.ID)
				}
				requested[req.ID] = true
			}
		case *ToolResult:
			if !requested[tt.RequestID] {
				t.Errorf("result %q has no prior request", tt.RequestID)
			}
			fulfilled[tt.RequestID]++
		}
	}
	for id, n := range fulfilled {
		if n != 1 {
			t.Errorf("request %q fulfilled %d times", id, n)
		}
	}
	if len(fulfilled) != 3 {
		t.Errorf("fulfilled %d requests, want 3", len(fulfilled))
	}
}
