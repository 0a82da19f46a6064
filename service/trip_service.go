package service

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"trip-backend/config"
	"trip-backend/helper"
	"trip-backend/models"
	"trip-backend/request"
)

type agentPlanRequest struct {
	Query          string            `json:"query"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"`
	Context        map[string]string `json:"context,omitempty"`
}

type agentPlanResponse struct {
	Answer       string                 `json:"answer"`
	Sources      []models.TripSource    `json:"sources"`
	Raw          map[string]interface{} `json:"raw,omitempty"`
	Iterations   int                    `json:"iterations"`
	ErrorCode    string                 `json:"error_code,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
}

// PlanTrip forwards a planning query to the trip-agent service and maps the
// outcome onto the standard response envelope.
func PlanTrip(req request.TripPlanRequest) models.StandardResponse {
	resp, err := planTrip(req.Ctx, req)
	if err != nil {
		return models.StandardResponse{
			Data:         nil,
			Error:        "OPERATION_FAILED",
			ErrorMessage: err.Error(),
		}
	}

	// Fatal loop failures arrive as structured error codes from the agent.
	if resp.ErrorCode != "" {
		return models.StandardResponse{
			Data:         nil,
			Error:        resp.ErrorCode,
			ErrorMessage: resp.ErrorMessage,
		}
	}

	return models.StandardResponse{
		Data: models.TripPlanResponse{
			Answer:     resp.Answer,
			Sources:    resp.Sources,
			Raw:        resp.Raw,
			Iterations: resp.Iterations,
		},
		Error:        "NO_ERROR",
		ErrorMessage: "Operation completed successfully",
	}
}

func planTrip(ctx context.Context, req request.TripPlanRequest) (agentPlanResponse, error) {
	if config.AppConfig == nil {
		return agentPlanResponse{}, fmt.Errorf("config is not initialised")
	}

	agentCfg := config.AppConfig.Agent
	rpcAddr := config.AppConfig.GetAgentRPCAddr()

	log.Printf("[TripService] plan query=%q agent=%s", helper.SummarizeQuery(req.Query), rpcAddr)

	dialer := &net.Dialer{}
	if agentCfg.Timeout > 0 {
		dialer.Timeout = agentCfg.Timeout
	}

	conn, err := dialer.DialContext(ctx, "tcp", rpcAddr)
	if err != nil {
		return agentPlanResponse{}, fmt.Errorf("dial trip-agent rpc: %w", err)
	}
	defer conn.Close()

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline && agentCfg.Timeout > 0 {
		deadline = time.Now().Add(agentCfg.Timeout)
		hasDeadline = true
	}
	if hasDeadline {
		if err := conn.SetDeadline(deadline); err != nil {
			return agentPlanResponse{}, fmt.Errorf("set deadline: %w", err)
		}
	}

	client := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	defer client.Close()

	timeoutSeconds := req.TimeoutSeconds
	if timeoutSeconds <= 0 && agentCfg.Timeout > 0 {
		timeoutSeconds = int(agentCfg.Timeout / time.Second)
	}

	rpcReq := agentPlanRequest{
		Query:          req.Query,
		TimeoutSeconds: timeoutSeconds,
		Context:        req.Context,
	}

	var rpcResp agentPlanResponse
	done := make(chan error, 1)
	go func() {
		done <- client.Call("Agent.Plan", rpcReq, &rpcResp)
	}()

	select {
	case <-ctx.Done():
		_ = conn.Close()
		return agentPlanResponse{}, fmt.Errorf("rpc call canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return agentPlanResponse{}, fmt.Errorf("call Agent.Plan: %w", err)
		}
	}

	return rpcResp, nil
}
