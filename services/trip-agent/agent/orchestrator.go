package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"trip-agent/tools"
)

var (
	// ErrReasonerUnavailable is fatal for the current query: the reasoning
	// step could not be completed and no answer exists.
	ErrReasonerUnavailable = errors.New("reasoner unavailable")
	// ErrMaxIterationsExceeded means the reasoner kept requesting tools
	// without converging within the configured bound.
	ErrMaxIterationsExceeded = errors.New("max iterations exceeded")
)

// Outcome is the successful result of one planning loop.
type Outcome struct {
	Answer       string
	Conversation *Conversation
	Iterations   int
}

// Orchestrator drives the reason/dispatch alternation over one conversation.
// It is the only component with cross-cutting control: the reasoner and the
// registry are stateless with respect to the loop.
type Orchestrator struct {
	reasoner      Reasoner
	registry      *tools.Registry
	maxIterations int
}

func NewOrchestrator(r Reasoner, registry *tools.Registry, maxIterations int) *Orchestrator {
	return &Orchestrator{reasoner: r, registry: registry, maxIterations: maxIterations}
}

// Run executes the loop for one query: reason, then dispatch any requested
// tools, until the reasoner answers without tool requests. A reasoner
// transport failure or an exhausted iteration budget aborts the query; tool
// failures never do — they flow back into the conversation as error results.
func (o *Orchestrator) Run(ctx context.Context, query string) (*Outcome, error) {
	conv := NewConversation(query)
	start := time.Now()

	for iteration := 1; iteration <= o.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		output, err := o.reasoner.Reason(ctx, conv)
		if err != nil {
			log.Printf("[Orchestrator] iteration=%d status=reasoner_error err=%v", iteration, err)
			return nil, fmt.Errorf("%w: %v", ErrReasonerUnavailable, err)
		}
		conv.Append(output)

		if len(output.ToolRequests) == 0 {
			log.Printf("[Orchestrator] status=done iterations=%d turns=%d duration=%s",
				iteration, conv.Len(), time.Since(start))
			return &Outcome{Answer: output.Text, Conversation: conv, Iterations: iteration}, nil
		}

		log.Printf("[Orchestrator] iteration=%d dispatching=%d", iteration, len(output.ToolRequests))
		results := o.registry.DispatchAll(ctx, toDispatchRequests(output.ToolRequests))
		for _, res := range results {
			conv.Append(&ToolResult{
				RequestID: res.RequestID,
				Payload:   res.Payload,
				IsError:   res.IsError,
			})
		}
	}

	log.Printf("[Orchestrator] status=failed reason=max_iterations limit=%d duration=%s",
		o.maxIterations, time.Since(start))
	return nil, fmt.Errorf("%w: limit %d", ErrMaxIterationsExceeded, o.maxIterations)
}

func toDispatchRequests(reqs []ToolRequest) []tools.Request {
	out := make([]tools.Request, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, tools.Request{ID: req.ID, Name: req.Name, Args: req.Args})
	}
	return out
}
