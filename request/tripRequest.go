package request

import (
	"context"
	"fmt"
	"strings"
)

const maxQueryLength = 2000

// TripPlanRequest 行程规划请求
type TripPlanRequest struct {
	Query          string            `json:"query"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"`
	Context        map[string]string `json:"context,omitempty"`

	Ctx context.Context `json:"-"`
}

func (r *TripPlanRequest) Validate() error {
	query := strings.TrimSpace(r.Query)
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if len([]rune(query)) > maxQueryLength {
		return fmt.Errorf("query exceeds %d characters", maxQueryLength)
	}
	if r.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	return nil
}
