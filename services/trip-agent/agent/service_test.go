package agent

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"trip-agent/export"
)

var errTransport = errors.New("connection refused")

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

func planningService(outputs []*ReasonerOutput, exporter *export.Writer) *Service {
	return &Service{
		reasoner:      &scriptedReasoner{outputs: outputs},
		registry:      nil,
		maxIterations: 5,
		exporter:      exporter,
	}
}

func TestRPCPlanSuccess(t *testing.T) {
	svc := &Service{
		reasoner: &scriptedReasoner{outputs: []*ReasonerOutput{
			{ToolRequests: []ToolRequest{
				{ID: "call_1", Name: "get_weather", Args: json.RawMessage(`{"city": "Paris"}`)},
			}},
			{Text: "Sunny trip ahead."},
		}},
		registry:      testRegistry(t),
		maxIterations: 5,
	}

	var resp PlanResponse
	if err := NewRPCService(svc).Plan(PlanRequest{Query: "plan Paris"}, &resp); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if resp.ErrorCode != "" {
		t.Fatalf("ErrorCode = %q: %s", resp.ErrorCode, resp.ErrorMessage)
	}
	if resp.Answer != "Sunny trip ahead." {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Tool != "get_weather" || resp.Sources[0].Status != "success" {
		t.Errorf("Sources = %+v", resp.Sources)
	}
	if _, ok := resp.Raw["get_weather"]; !ok {
		t.Errorf("Raw missing get_weather: %v", resp.Raw)
	}
}

func TestRPCPlanEmptyQuery(t *testing.T) {
	svc := planningService(nil, nil)
	var resp PlanResponse
	if err := NewRPCService(svc).Plan(PlanRequest{Query: "   "}, &resp); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if resp.ErrorCode != "INVALID_QUERY" {
		t.Errorf("ErrorCode = %q, want INVALID_QUERY", resp.ErrorCode)
	}
}

func TestRPCPlanReasonerUnavailableCode(t *testing.T) {
	svc := &Service{
		reasoner:      &scriptedReasoner{err: errTransport},
		registry:      testRegistry(t),
		maxIterations: 3,
	}

	var resp PlanResponse
	if err := NewRPCService(svc).Plan(PlanRequest{Query: "plan"}, &resp); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if resp.ErrorCode != "REASONER_UNAVAILABLE" {
		t.Errorf("ErrorCode = %q, want REASONER_UNAVAILABLE", resp.ErrorCode)
	}
	if resp.Answer != "" {
		t.Errorf("no partial answer expected, got %q", resp.Answer)
	}
}

func TestRPCPlanMaxIterationsCode(t *testing.T) {
	outputs := make([]*ReasonerOutput, 10)
	for i := range outputs {
		outputs[i] = &ReasonerOutput{ToolRequests: []ToolRequest{
			{ID: string(rune('a' + i)), Name: "get_weather", Args: json.RawMessage(`{"city": "Paris"}`)},
		}}
	}
	svc := &Service{
		reasoner:      &scriptedReasoner{outputs: outputs},
		registry:      testRegistry(t),
		maxIterations: 2,
	}

	var resp PlanResponse
	if err := NewRPCService(svc).Plan(PlanRequest{Query: "plan"}, &resp); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if resp.ErrorCode != "MAX_ITERATIONS_EXCEEDED" {
		t.Errorf("ErrorCode = %q, want MAX_ITERATIONS_EXCEEDED", resp.ErrorCode)
	}
}

func TestPlanExportsDocument(t *testing.T) {
	dir := t.TempDir()
	svc := &Service{
		reasoner: &scriptedReasoner{outputs: []*ReasonerOutput{
			{Text: "Stay three nights near the river."},
		}},
		registry:      testRegistry(t),
		maxIterations: 5,
		exporter:      export.NewWriter(dir),
	}

	var resp PlanResponse
	if err := NewRPCService(svc).Plan(PlanRequest{Query: "plan Lyon"}, &resp); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if resp.ErrorCode != "" {
		t.Fatalf("ErrorCode = %q", resp.ErrorCode)
	}

	entries, err := readDirNames(dir)
	if err != nil {
		t.Fatalf("read export dir: %v", err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0], "trip-plan-") {
		t.Fatalf("export dir entries = %v", entries)
	}
}

func TestCollectSourcesMarksErrors(t *testing.T) {
	conv := NewConversation("q")
	conv.Append(&ReasonerOutput{ToolRequests: []ToolRequest{
		{ID: "1", Name: "get_weather"},
		{ID: "2", Name: "find_restaurants"},
	}})
	conv.Append(&ToolResult{RequestID: "1", Payload: `{"ok": true}`})
	conv.Append(&ToolResult{RequestID: "2", Payload: "provider unavailable", IsError: true})

	runs := collectSources(conv)
	if len(runs) != 2 {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Status != "success" || runs[1].Status != "error" {
		t.Errorf("statuses = %q / %q", runs[0].Status, runs[1].Status)
	}
	if runs[1].Error != "provider unavailable" {
		t.Errorf("error = %q", runs[1].Error)
	}
}
