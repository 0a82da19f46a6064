package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"
)

var (
	// ErrDuplicateToolName is a startup-time configuration error.
	ErrDuplicateToolName = errors.New("duplicate tool name")
	// ErrUnknownTool means the requested name is not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments means the arguments do not satisfy the tool schema.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Request is a reasoner-issued tool invocation. Args is the raw JSON
// arguments object as produced by the reasoner.
type Request struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Result is the dispatch outcome. A failed invocation is captured here
// instead of propagating: the reasoner reacts to the error text.
type Result struct {
	RequestID string `json:"request_id"`
	Payload   string `json:"payload"`
	IsError   bool   `json:"is_error"`

	// Err carries the typed cause for callers that inspect failures.
	Err error `json:"-"`
}

// Registry maps tool names to implementations. It is built once at startup
// and shared read-only across sessions afterwards.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string

	// CallTimeout bounds a single handler invocation when > 0. Set before
	// the registry starts serving.
	CallTimeout time.Duration
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tl Tool) error {
	name := tl.Definition().Function.Name
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateToolName, name)
	}
	r.tools[name] = tl
	r.order = append(r.order, name)
	return nil
}

// MustRegister panics on registration failure; duplicate names are a fatal
// configuration error at startup.
func (r *Registry) MustRegister(tls ...Tool) {
	for _, tl := range tls {
		if err := r.Register(tl); err != nil {
			log.Fatalf("[Registry] register failed: %v", err)
		}
	}
}

// Get fetches a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tl, ok := r.tools[name]
	return tl, ok
}

// Definitions lists tool definitions in registration order.
func (r *Registry) Definitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Names lists registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Dispatch resolves and executes one request. Lookup, validation, and
// handler failures all land in the Result rather than aborting the caller.
func (r *Registry) Dispatch(ctx context.Context, req Request) Result {
	tl, ok := r.Get(req.Name)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownTool, req.Name)
		log.Printf("[Dispatch] tool=%s status=unknown", req.Name)
		return Result{RequestID: req.ID, Payload: err.Error(), IsError: true, Err: err}
	}

	params, err := parseArguments(req.Args)
	if err == nil {
		err = validateParams(params, tl.Definition().Function.Parameters)
	}
	if err != nil {
		log.Printf("[Dispatch] tool=%s status=invalid_args err=%v", req.Name, err)
		return Result{RequestID: req.ID, Payload: err.Error(), IsError: true, Err: err}
	}

	callCtx := ctx
	if r.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.CallTimeout)
		defer cancel()
	}

	start := time.Now()
	output, err := tl.Execute(callCtx, params)
	duration := time.Since(start)
	if err != nil {
		log.Printf("[Dispatch] tool=%s status=error duration=%s err=%v", req.Name, duration, err)
		return Result{RequestID: req.ID, Payload: err.Error(), IsError: true, Err: err}
	}

	payload, err := json.Marshal(output)
	if err != nil {
		log.Printf("[Dispatch] tool=%s status=marshal_error err=%v", req.Name, err)
		return Result{RequestID: req.ID, Payload: fmt.Sprintf("marshal tool output: %v", err), IsError: true, Err: err}
	}

	log.Printf("[Dispatch] tool=%s status=ok duration=%s", req.Name, duration)
	return Result{RequestID: req.ID, Payload: string(payload)}
}

// DispatchAll executes the requests of one reasoner output concurrently.
// They are mutually independent read-only calls; results come back in
// request order regardless of completion order.
func (r *Registry) DispatchAll(ctx context.Context, reqs []Request) []Result {
	if len(reqs) == 0 {
		return nil
	}
	if len(reqs) == 1 {
		return []Result{r.Dispatch(ctx, reqs[0])}
	}

	results := make([]Result, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			results[i] = r.Dispatch(ctx, req)
		}(i, req)
	}
	wg.Wait()
	return results
}

func parseArguments(raw json.RawMessage) (map[string]any, error) {
	trimmed := string(raw)
	if trimmed == "" || trimmed == "null" {
		return map[string]any{}, nil
	}

	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object: %v", ErrInvalidArguments, err)
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}

// validateParams checks required fields and primitive types against the
// tool's declared schema.
func validateParams(params map[string]any, schema Parameters) error {
	for _, field := range schema.Required {
		if _, exists := params[field]; !exists {
			return fmt.Errorf("%w: missing required field %s", ErrInvalidArguments, field)
		}
	}

	for key, value := range params {
		prop, ok := schema.Properties[key]
		if !ok || prop.Type == "" {
			continue
		}
		if err := validateType(value, prop.Type); err != nil {
			return fmt.Errorf("%w: field %s: %v", ErrInvalidArguments, key, err)
		}
	}
	return nil
}

func validateType(value any, expected string) error {
	switch expected {
	case "string":
		if _, ok := value.(string); ok {
			return nil
		}
	case "number":
		if _, ok := value.(float64); ok {
			return nil
		}
	case "integer":
		if v, ok := value.(float64); ok && math.Trunc(v) == v {
			return nil
		}
	case "boolean":
		if _, ok := value.(bool); ok {
			return nil
		}
	case "object":
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case "array":
		if _, ok := value.([]any); ok {
			return nil
		}
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %T", expected, value)
}
