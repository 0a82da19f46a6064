package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

const defaultPlanTimeout = 120 * time.Second

// PlanRequest is the jsonrpc payload accepted from the backend service.
type PlanRequest struct {
	Query          string            `json:"query"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"`
	Context        map[string]string `json:"context,omitempty"`
}

// PlanResponse carries the answer or, for fatal loop failures, an error code
// the caller can map to its own response format. No raw internals leak
// beyond the message.
type PlanResponse struct {
	Answer       string                 `json:"answer"`
	Sources      []ToolRun              `json:"sources"`
	Raw          map[string]interface{} `json:"raw,omitempty"`
	Iterations   int                    `json:"iterations"`
	ErrorCode    string                 `json:"error_code,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
}

// RPCService exposes the planning service over net/rpc.
type RPCService struct {
	svc *Service
}

func NewRPCService(svc *Service) *RPCService {
	return &RPCService{svc: svc}
}

// Plan answers one trip-planning query. Fatal loop failures are reported in
// the response payload rather than as transport errors, so the caller always
// gets a structured result.
func (r *RPCService) Plan(req PlanRequest, resp *PlanResponse) error {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		resp.ErrorCode = "INVALID_QUERY"
		resp.ErrorMessage = "query must not be empty"
		return nil
	}

	timeout := defaultPlanTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Printf("[Agent] plan_start query=%q timeout=%s", summarizeQuery(query), timeout)

	result, err := r.svc.Plan(ctx, query)
	if err != nil {
		code := "OPERATION_FAILED"
		switch {
		case errors.Is(err, ErrReasonerUnavailable):
			code = "REASONER_UNAVAILABLE"
		case errors.Is(err, ErrMaxIterationsExceeded):
			code = "MAX_ITERATIONS_EXCEEDED"
		case errors.Is(err, context.DeadlineExceeded):
			code = "TIMEOUT"
		}
		log.Printf("[Agent] plan_failed code=%s err=%v", code, err)
		resp.ErrorCode = code
		resp.ErrorMessage = fmt.Sprintf("trip planning failed: %v", err)
		return nil
	}

	resp.Answer = result.Answer
	resp.Sources = result.Sources
	resp.Raw = result.Raw
	resp.Iterations = result.Iterations
	log.Printf("[Agent] plan_done iterations=%d sources=%d", result.Iterations, len(result.Sources))
	return nil
}

// RPCRegistrar is the subset of *rpc.Server used for registration.
type RPCRegistrar interface {
	RegisterName(name string, rcvr interface{}) error
}

func RegisterRPC(server RPCRegistrar, svc *Service) error {
	return server.RegisterName("Agent", NewRPCService(svc))
}

func summarizeQuery(q string) string {
	const max = 80
	q = strings.ReplaceAll(q, "\n", " ")
	q = strings.TrimSpace(q)
	r := []rune(q)
	if len(r) <= max {
		return q
	}
	return string(r[:max-3]) + "..."
}
