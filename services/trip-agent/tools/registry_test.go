package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"trip-agent/providers"
)

func newEchoTool(name string) Tool {
	return New(name, "echoes its city argument",
		Parameters{
			Properties: map[string]Property{
				"city": {Type: "string", Description: "city"},
			},
			Required: []string{"city"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			return map[string]any{"city": params["city"]}, nil
		})
}

func TestRegisterDuplicateName(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newEchoTool("echo")); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := reg.Register(newEchoTool("echo")); !errors.Is(err, ErrDuplicateToolName) {
		t.Fatalf("second Register err = %v, want ErrDuplicateToolName", err)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	invoked := false
	reg := NewRegistry()
	reg.MustRegister(New("known", "", Parameters{}, func(ctx context.Context, params map[string]any) (any, error) {
		invoked = true
		return nil, nil
	}))

	res := reg.Dispatch(context.Background(), Request{ID: "1", Name: "missing"})
	if !res.IsError || !errors.Is(res.Err, ErrUnknownTool) {
		t.Fatalf("result = %+v, want ErrUnknownTool", res)
	}
	if invoked {
		t.Error("no handler may run for an unknown tool")
	}
}

func TestDispatchInvalidArguments(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(newEchoTool("echo"))

	cases := []struct {
		name string
		args string
	}{
		{"missing required", `{}`},
		{"wrong type", `{"city": 42}`},
		{"not an object", `[1, 2]`},
	}
	for _, tc := range cases {
		res := reg.Dispatch(context.Background(), Request{ID: "1", Name: "echo", Args: json.RawMessage(tc.args)})
		if !res.IsError || !errors.Is(res.Err, ErrInvalidArguments) {
			t.Errorf("%s: result = %+v, want ErrInvalidArguments", tc.name, res)
		}
	}
}

func TestDispatchCapturesHandlerError(t *testing.T) {
	boom := fmt.Errorf("backend exploded")
	reg := NewRegistry()
	reg.MustRegister(New("fragile", "", Parameters{}, func(ctx context.Context, params map[string]any) (any, error) {
		return nil, boom
	}))

	res := reg.Dispatch(context.Background(), Request{ID: "7", Name: "fragile", Args: json.RawMessage(`{}`)})
	if !res.IsError {
		t.Fatal("handler error must surface as an error result")
	}
	if res.RequestID != "7" {
		t.Errorf("RequestID = %q, want 7", res.RequestID)
	}
	if res.Payload != boom.Error() {
		t.Errorf("Payload = %q, want %q", res.Payload, boom.Error())
	}
}

func TestDispatchAllPreservesRequestOrder(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(New("slowfast", "", Parameters{
		Properties: map[string]Property{"n": {Type: "number"}},
		Required:   []string{"n"},
	}, func(ctx context.Context, params map[string]any) (any, error) {
		n := params["n"].(float64)
		// Later requests finish first.
		time.Sleep(time.Duration(50-int(n)*10) * time.Millisecond)
		return map[string]any{"n": n}, nil
	}))

	reqs := make([]Request, 4)
	for i := range reqs {
		reqs[i] = Request{
			ID:   strconv.Itoa(i),
			Name: "slowfast",
			Args: json.RawMessage(fmt.Sprintf(`{"n": %d}`, i)),
		}
	}

	results := reg.DispatchAll(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("got %d results, want %d", len(results), len(reqs))
	}
	for i, res := range results {
		if res.RequestID != strconv.Itoa(i) {
			t.Errorf("results[%d].RequestID = %q, want %d", i, res.RequestID, i)
		}
		if res.IsError {
			t.Errorf("results[%d] unexpected error: %s", i, res.Payload)
		}
	}
}

func TestDispatchCallTimeout(t *testing.T) {
	reg := NewRegistry()
	reg.CallTimeout = 10 * time.Millisecond
	reg.MustRegister(New("stall", "", Parameters{}, func(ctx context.Context, params map[string]any) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return "late", nil
		}
	}))

	res := reg.Dispatch(context.Background(), Request{ID: "1", Name: "stall", Args: json.RawMessage(`{}`)})
	if !res.IsError || !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Fatalf("result = %+v, want deadline exceeded", res)
	}
}

type scriptedBackend struct {
	name string
	data any
	err  error
}

func (s *scriptedBackend) Name() string { return s.name }

func (s *scriptedBackend) Fetch(ctx context.Context, q providers.Query) (any, error) {
	return s.data, s.err
}

func TestConvertCurrencyTool(t *testing.T) {
	chain := providers.NewChain(CapabilityCurrency,
		&scriptedBackend{name: "dead", err: fmt.Errorf("down")},
		&scriptedBackend{name: "live", data: providers.Rate{From: "USD", To: "EUR", Rate: 0.5}},
	)
	reg := NewRegistry()
	reg.MustRegister(NewConvertCurrencyTool(chain))

	res := reg.Dispatch(context.Background(), Request{
		ID:   "1",
		Name: "convert_currency",
		Args: json.RawMessage(`{"amount": 200, "from": "usd", "to": "eur"}`),
	})
	if res.IsError {
		t.Fatalf("dispatch error: %s", res.Payload)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(res.Payload), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["converted"].(float64) != 100 {
		t.Errorf("converted = %v, want 100", payload["converted"])
	}
	if payload["degraded"] != true {
		t.Error("fallback rate must be marked degraded")
	}
	if payload["from"] != "USD" || payload["to"] != "EUR" {
		t.Errorf("codes = %v -> %v, want USD -> EUR", payload["from"], payload["to"])
	}
}

func TestConvertCurrencyToolUnsupportedCode(t *testing.T) {
	chain := providers.NewChain(CapabilityCurrency,
		&scriptedBackend{name: "live", err: fmt.Errorf("%w: ZZZ", providers.ErrUnsupportedCurrency)},
	)
	reg := NewRegistry()
	reg.MustRegister(NewConvertCurrencyTool(chain))

	res := reg.Dispatch(context.Background(), Request{
		ID:   "1",
		Name: "convert_currency",
		Args: json.RawMessage(`{"amount": 10, "from": "USD", "to": "ZZZ"}`),
	})
	if !res.IsError || !errors.Is(res.Err, providers.ErrUnsupportedCurrency) {
		t.Fatalf("result = %+v, want ErrUnsupportedCurrency", res)
	}
}
